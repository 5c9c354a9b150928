package model

type Tutorial struct {
	ID        uint   `gorm:"primarykey" json:"tutorial_id"`
	JourneyID uint   `json:"journey_id" gorm:"not null;index"`
	Title     string `json:"title"`
}

func (Tutorial) TableName() string { return "tutorials" }
