package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/model"
	"github.com/rs/zerolog/log"
)

// ScoreCard is the outcome of grading one set of answers.
type ScoreCard struct {
	Score          int
	CorrectAnswers int
	TotalQuestions int
	Results        []dto.QuestionResultDTO
}

// ScoreAnswers grades answers against the exam's answer key. An answer is
// matched by question_id when the client sends one, otherwise by question
// number. A later answer for the same question replaces an earlier one.
// Answers that match no question are kept in the results as incorrect.
func ScoreAnswers(questions []model.ExamQuestion, answers []dto.SubmittedAnswerDTO) (ScoreCard, error) {
	if len(questions) == 0 {
		return ScoreCard{}, newError(KindInvalidState, "exam has no questions, submission cannot be scored", nil)
	}

	byNo := make(map[int]*model.ExamQuestion, len(questions))
	byID := make(map[uint]*model.ExamQuestion, len(questions))
	for i := range questions {
		q := &questions[i]
		byNo[q.QuestionNo] = q
		byID[q.ID] = q
	}

	card := ScoreCard{TotalQuestions: len(questions)}
	position := make(map[string]int, len(answers))

	for _, answer := range answers {
		var question *model.ExamQuestion
		if answer.QuestionID != nil {
			question = byID[*answer.QuestionID]
		} else {
			question = byNo[answer.QuestionNo]
		}

		result, key := gradeAnswer(question, answer)
		if idx, seen := position[key]; seen {
			card.Results[idx] = result
			continue
		}
		position[key] = len(card.Results)
		card.Results = append(card.Results, result)
	}

	for _, r := range card.Results {
		if r.IsCorrect {
			card.CorrectAnswers++
		}
	}
	card.Score = PercentScore(card.CorrectAnswers, card.TotalQuestions)
	return card, nil
}

func gradeAnswer(question *model.ExamQuestion, answer dto.SubmittedAnswerDTO) (dto.QuestionResultDTO, string) {
	if question == nil {
		log.Warn().Int("questionNo", answer.QuestionNo).Interface("questionID", answer.QuestionID).Msg("ScoreAnswers: Answer does not match any question of the exam")
		key := fmt.Sprintf("no:%d", answer.QuestionNo)
		if answer.QuestionID != nil {
			key = fmt.Sprintf("id:%d", *answer.QuestionID)
		}
		return dto.QuestionResultDTO{
			QuestionID:     answer.QuestionID,
			QuestionNo:     answer.QuestionNo,
			SelectedOption: answer.SelectedOption,
		}, key
	}

	questionID := question.ID
	label := strings.ToUpper(strings.TrimSpace(question.CorrectAnswer))
	result := dto.QuestionResultDTO{
		QuestionID:     &questionID,
		QuestionNo:     question.QuestionNo,
		QuestionText:   question.QuestionText,
		SelectedOption: answer.SelectedOption,
		CorrectAnswer:  &label,
	}
	correctText, ok := question.CorrectOptionText()
	if !ok {
		log.Error().Uint("questionID", question.ID).Str("correctAnswer", question.CorrectAnswer).Msg("ScoreAnswers: Question has an invalid answer key, scoring as incorrect")
		return result, fmt.Sprintf("q:%d", question.ID)
	}
	result.CorrectOptionText = &correctText
	result.IsCorrect = answer.SelectedOption == correctText
	return result, fmt.Sprintf("q:%d", question.ID)
}

// PercentScore is round(100 * correct / total). total must be positive.
func PercentScore(correct, total int) int {
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// sessionClock derives the elapsed and remaining whole seconds of a session
// from its persisted start. remaining never goes below zero.
func sessionClock(startedAt, now time.Time, durationSeconds int) (elapsed, remaining int) {
	elapsed = int(now.Sub(startedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining = durationSeconds - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return elapsed, remaining
}
