package dto

import "time"

// ExamQuestionDTO is a question as shown to the examinee: no answer key.
type ExamQuestionDTO struct {
	QuestionID   uint   `json:"question_id"`
	QuestionNo   int    `json:"question_no"`
	QuestionText string `json:"question_text"`
	OptionA      string `json:"option_a"`
	OptionB      string `json:"option_b"`
	OptionC      string `json:"option_c"`
	OptionD      string `json:"option_d"`
}

type ExamSessionInfoDTO struct {
	ExamID           uint      `json:"exam_id"`
	JourneyID        uint      `json:"journey_id"`
	Title            string    `json:"title"`
	DurationSeconds  int       `json:"duration_seconds"`
	PassingScore     int       `json:"passing_score"`
	TotalQuestions   int       `json:"total_questions"`
	RegistrationID   uint      `json:"registration_id"`
	StartedAt        time.Time `json:"started_at"`
	RemainingSeconds int       `json:"remaining_seconds"`
	ElapsedSeconds   int       `json:"elapsed_seconds"`
}

// ExamSessionDTO is the payload of a successful start or resume.
type ExamSessionDTO struct {
	Exam      ExamSessionInfoDTO `json:"exam"`
	Resumed   bool               `json:"resumed"`
	Questions []ExamQuestionDTO  `json:"questions"`
}

type SubmittedAnswerDTO struct {
	QuestionNo     int    `json:"question_no"`
	QuestionID     *uint  `json:"question_id,omitempty"`
	SelectedOption string `json:"selected_option"`
}

// ExamSubmitDTO is the request body of a submission. Answers must be present
// (it may be empty); the client timing fields are informational.
type ExamSubmitDTO struct {
	UserID          *uint                `json:"user_id"`
	Answers         []SubmittedAnswerDTO `json:"answers" binding:"required,dive"`
	StartTime       *time.Time           `json:"start_time"`
	DurationSeconds *int                 `json:"duration_seconds"`
}

type QuestionResultDTO struct {
	QuestionID        *uint   `json:"question_id"`
	QuestionNo        int     `json:"question_no"`
	QuestionText      string  `json:"question_text,omitempty"`
	SelectedOption    string  `json:"selected_option"`
	CorrectAnswer     *string `json:"correct_answer"`
	CorrectOptionText *string `json:"correct_option_text"`
	IsCorrect         bool    `json:"is_correct"`
}

type ExamResultDTO struct {
	ExamID          uint                `json:"exam_id"`
	ExamTitle       string              `json:"exam_title"`
	Score           int                 `json:"score"`
	CorrectAnswers  int                 `json:"correct_answers"`
	TotalQuestions  int                 `json:"total_questions"`
	PassingScore    int                 `json:"passing_score"`
	Passed          bool                `json:"passed"`
	IsLate          bool                `json:"is_late"`
	SubmissionID    *uint               `json:"submission_id"`
	DurationSeconds *int                `json:"duration_seconds"`
	Results         []QuestionResultDTO `json:"results"`
}

type SubmissionSummaryDTO struct {
	SubmissionID    uint      `json:"submission_id"`
	ExamID          uint      `json:"exam_id"`
	Score           int       `json:"score"`
	IsPassed        bool      `json:"is_passed"`
	IsLate          bool      `json:"is_late"`
	StartTime       time.Time `json:"start_time"`
	SubmitTime      time.Time `json:"submit_time"`
	DurationSeconds int       `json:"duration_seconds"`
}

type JourneyExamDTO struct {
	JourneyID uint   `json:"journey_id"`
	ExamID    uint   `json:"exam_id"`
	ExamTitle string `json:"exam_title"`
}
