package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/model"
	"github.com/lshigami/learning-insight/internal/repository"
	"github.com/rs/zerolog/log"
)

type ExamAdminService interface {
	CreateExam(ctx context.Context, req dto.ExamCreateDTO) (*dto.ExamAdminResponseDTO, error)
}

type examAdminService struct {
	examRepo repository.ExamRepository
	validate *validator.Validate
}

func NewExamAdminService(examRepo repository.ExamRepository) ExamAdminService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Reuse the gin binding tags on the DTOs.
	validate.SetTagName("binding")
	return &examAdminService{examRepo: examRepo, validate: validate}
}

func (s *examAdminService) CreateExam(ctx context.Context, req dto.ExamCreateDTO) (*dto.ExamAdminResponseDTO, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, newError(KindBadRequest, "invalid exam definition", err).with("fields", fieldErrors(err))
	}

	questions := make([]dto.ExamQuestionCreateDTO, len(req.Questions))
	copy(questions, req.Questions)
	sort.Slice(questions, func(i, j int) bool { return questions[i].QuestionNo < questions[j].QuestionNo })

	var questionModels []model.ExamQuestion
	for i := range questions {
		q := &questions[i]
		if q.QuestionNo != i+1 {
			return nil, newError(KindBadRequest, fmt.Sprintf("question numbers must be unique and run from 1 to %d, found %d at position %d", len(questions), q.QuestionNo, i+1), nil)
		}

		q.CorrectAnswer = strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
		var questionModel model.ExamQuestion
		if err := copier.Copy(&questionModel, q); err != nil {
			return nil, newError(KindBadRequest, "invalid question definition", err)
		}
		if _, ok := questionModel.CorrectOptionText(); !ok {
			return nil, newError(KindBadRequest, fmt.Sprintf("question %d: correct_answer must be one of A, B, C, D", q.QuestionNo), nil)
		}
		if dup := duplicateOption(questionModel); dup != "" {
			return nil, newError(KindBadRequest, fmt.Sprintf("question %d: option text %q appears more than once", q.QuestionNo, dup), nil)
		}
		questionModels = append(questionModels, questionModel)
	}

	exam := model.Exam{
		JourneyID:       req.JourneyID,
		Title:           req.Title,
		DurationSeconds: req.DurationSeconds,
		PassingScore:    req.PassingScore,
		Questions:       questionModels,
	}
	if err := s.examRepo.Create(ctx, &exam); err != nil {
		log.Error().Err(err).Uint("journeyID", req.JourneyID).Msg("CreateExam: Failed to create exam in database")
		return nil, newError(KindStorage, "database error creating exam", err)
	}

	var resp dto.ExamAdminResponseDTO
	if err := copier.Copy(&resp, &exam); err != nil {
		log.Error().Err(err).Msg("CreateExam: Failed to copy exam to response DTO")
		return nil, newError(KindStorage, "error preparing response data", err)
	}
	resp.ExamID = exam.ID
	resp.Questions = questions

	log.Info().Uint("examID", exam.ID).Uint("journeyID", exam.JourneyID).Int("questions", len(questions)).Msg("CreateExam: Exam created")
	return &resp, nil
}

// duplicateOption returns an option text shared by two choices, which would
// make the text based answer match ambiguous.
func duplicateOption(q model.ExamQuestion) string {
	seen := make(map[string]struct{}, 4)
	for _, opt := range []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD} {
		if _, ok := seen[opt]; ok {
			return opt
		}
		seen[opt] = struct{}{}
	}
	return ""
}

func fieldErrors(err error) []string {
	var details []string
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range errs {
			details = append(details, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
		}
	}
	return details
}
