package dto

// ExamQuestionCreateDTO is used within ExamCreateDTO for admin exam creation.
type ExamQuestionCreateDTO struct {
	QuestionNo    int    `json:"question_no" binding:"required,min=1"`
	QuestionText  string `json:"question_text" binding:"required"`
	OptionA       string `json:"option_a" binding:"required"`
	OptionB       string `json:"option_b" binding:"required"`
	OptionC       string `json:"option_c" binding:"required"`
	OptionD       string `json:"option_d" binding:"required"`
	CorrectAnswer string `json:"correct_answer" binding:"required"`
}

// ExamCreateDTO is for admin to create a final exam with all its questions.
type ExamCreateDTO struct {
	JourneyID       uint                    `json:"journey_id" binding:"required"`
	Title           string                  `json:"title" binding:"required"`
	DurationSeconds int                     `json:"duration_seconds" binding:"required,gt=0"`
	PassingScore    *int                    `json:"passing_score" binding:"omitempty,min=0,max=100"`
	Questions       []ExamQuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

type ExamAdminResponseDTO struct {
	ExamID          uint                    `json:"exam_id"`
	JourneyID       uint                    `json:"journey_id"`
	Title           string                  `json:"title"`
	DurationSeconds int                     `json:"duration_seconds"`
	PassingScore    *int                    `json:"passing_score,omitempty"`
	Questions       []ExamQuestionCreateDTO `json:"questions"`
}
