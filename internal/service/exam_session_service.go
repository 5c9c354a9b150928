package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/learning-insight/config"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/model"
	"github.com/lshigami/learning-insight/internal/repository"
	"github.com/rs/zerolog/log"
)

// resumeThresholdSeconds is the elapsed time after which a start is reported
// as a resume of an earlier session.
const resumeThresholdSeconds = 5

// SummaryRefresher recomputes a user's progress summary.
type SummaryRefresher interface {
	RefreshSummary(ctx context.Context, userID uint) (*model.UserProgressSummary, error)
}

// ExamSessionService runs the timed final exam of a journey.
type ExamSessionService interface {
	StartOrResumeSession(ctx context.Context, examID, userID uint) (*dto.ExamSessionDTO, error)
	SubmitSession(ctx context.Context, examID, userID uint, req dto.ExamSubmitDTO) (*dto.ExamResultDTO, error)
	ListSubmissions(ctx context.Context, examID, userID uint) ([]dto.SubmissionSummaryDTO, error)
	GetJourneyExam(ctx context.Context, journeyID uint) (*dto.JourneyExamDTO, error)
}

type examSessionService struct {
	examRepo         repository.ExamRepository
	registrationRepo repository.RegistrationRepository
	submissionRepo   repository.SubmissionRepository
	oracle           PrerequisiteOracle
	summary          SummaryRefresher
	cfg              config.Exam
	now              func() time.Time
}

func NewExamSessionService(
	examRepo repository.ExamRepository,
	registrationRepo repository.RegistrationRepository,
	submissionRepo repository.SubmissionRepository,
	oracle PrerequisiteOracle,
	summary SummaryRefresher,
	cfg *config.Config,
) ExamSessionService {
	return &examSessionService{
		examRepo:         examRepo,
		registrationRepo: registrationRepo,
		submissionRepo:   submissionRepo,
		oracle:           oracle,
		summary:          summary,
		cfg:              cfg.Exam,
		now:              clock,
	}
}

// clock is the server time at the precision postgres keeps for timestamps,
// so a value read back compares equal to the value written.
func clock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *examSessionService) StartOrResumeSession(ctx context.Context, examID, userID uint) (*dto.ExamSessionDTO, error) {
	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	questions, err := s.examRepo.FindQuestions(ctx, examID)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("StartOrResumeSession: Failed to load questions")
		return nil, newError(KindStorage, "failed to load exam questions", err)
	}
	if len(questions) == 0 {
		return nil, newError(KindNotFound, "exam has no questions", nil)
	}

	prerequisitesMet := s.oracle.IsJourneyComplete(ctx, userID, exam.JourneyID)
	if !prerequisitesMet {
		if s.cfg.EnforcePrerequisites {
			return nil, newError(KindForbidden, "complete every tutorial of the journey before taking the exam", nil).
				with("journey_id", exam.JourneyID)
		}
		log.Warn().Uint("userID", userID).Uint("examID", examID).Uint("journeyID", exam.JourneyID).Msg("StartOrResumeSession: Prerequisites not met, allowing access")
	}

	registration, err := s.ensureRegistration(ctx, exam, userID, prerequisitesMet)
	if err != nil {
		return nil, err
	}
	if registration.FinishedAt != nil {
		return nil, newError(KindInvalidState, "exam already completed", nil).
			with("finished_at", *registration.FinishedAt)
	}

	startedAt, err := s.ensureStarted(ctx, registration)
	if err != nil {
		return nil, err
	}

	elapsed, remaining := sessionClock(startedAt, s.now(), exam.DurationSeconds)
	if remaining == 0 {
		log.Info().Uint("userID", userID).Uint("examID", examID).Int("elapsed", elapsed).Msg("StartOrResumeSession: Exam time expired")
		return nil, newError(KindExpired, "exam time has expired", nil).
			with("started_at", startedAt).
			with("elapsed_seconds", elapsed).
			with("time_expired", true)
	}

	var questionDTOs []dto.ExamQuestionDTO
	if err := copier.Copy(&questionDTOs, &questions); err != nil {
		log.Error().Err(err).Msg("StartOrResumeSession: Failed to copy questions to DTO")
		return nil, newError(KindStorage, "failed to build exam session", err)
	}
	for i := range questionDTOs {
		questionDTOs[i].QuestionID = questions[i].ID
	}

	resumed := elapsed >= resumeThresholdSeconds
	log.Info().Uint("userID", userID).Uint("examID", examID).Bool("resumed", resumed).Int("remaining", remaining).Msg("StartOrResumeSession: Session ready")

	return &dto.ExamSessionDTO{
		Exam: dto.ExamSessionInfoDTO{
			ExamID:           exam.ID,
			JourneyID:        exam.JourneyID,
			Title:            exam.Title,
			DurationSeconds:  exam.DurationSeconds,
			PassingScore:     s.passingScore(exam),
			TotalQuestions:   len(questions),
			RegistrationID:   registration.ID,
			StartedAt:        startedAt,
			RemainingSeconds: remaining,
			ElapsedSeconds:   elapsed,
		},
		Resumed:   resumed,
		Questions: questionDTOs,
	}, nil
}

// ensureRegistration returns the user's registration for the exam, creating
// it when missing. A concurrent insert that wins the unique index is re-read.
func (s *examSessionService) ensureRegistration(ctx context.Context, exam *model.Exam, userID uint, prerequisitesMet bool) (*model.ExamRegistration, error) {
	registration, err := s.registrationRepo.FindByUserAndExam(ctx, userID, exam.ID)
	if err == nil {
		return registration, nil
	}
	if !repository.IsNotFound(err) {
		log.Error().Err(err).Uint("userID", userID).Uint("examID", exam.ID).Msg("ensureRegistration: Failed to read registration")
		return nil, newError(KindStorage, "failed to read exam registration", err)
	}

	registration = &model.ExamRegistration{
		UserID:           userID,
		ExamID:           exam.ID,
		JourneyID:        exam.JourneyID,
		PrerequisitesMet: prerequisitesMet,
		RegisteredAt:     s.now(),
	}
	err = s.registrationRepo.Create(ctx, registration)
	if err == nil {
		log.Info().Uint("userID", userID).Uint("examID", exam.ID).Uint("registrationID", registration.ID).Msg("ensureRegistration: Registration created")
		return registration, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		log.Error().Err(err).Uint("userID", userID).Uint("examID", exam.ID).Msg("ensureRegistration: Failed to create registration")
		return nil, newError(KindStorage, "failed to create exam registration", err)
	}

	winner, err := s.registrationRepo.FindByUserAndExam(ctx, userID, exam.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindConflict, "exam registration is being created, retry", nil)
		}
		return nil, newError(KindStorage, "failed to read exam registration", err)
	}
	return winner, nil
}

// ensureStarted returns the persisted start time, setting it once if absent.
func (s *examSessionService) ensureStarted(ctx context.Context, registration *model.ExamRegistration) (time.Time, error) {
	if registration.StartedAt != nil {
		return *registration.StartedAt, nil
	}

	at := s.now()
	set, err := s.registrationRepo.MarkStarted(ctx, registration.ID, at)
	if err != nil {
		log.Error().Err(err).Uint("registrationID", registration.ID).Msg("ensureStarted: Failed to record start time")
		return time.Time{}, newError(KindStorage, "failed to record exam start time", err)
	}
	if set {
		registration.StartedAt = &at
		return at, nil
	}

	// Another request set it first.
	fresh, err := s.registrationRepo.FindByUserAndExam(ctx, registration.UserID, registration.ExamID)
	if err != nil {
		return time.Time{}, newError(KindStorage, "failed to read exam start time", err)
	}
	if fresh.StartedAt == nil {
		return time.Time{}, newError(KindConflict, "exam start time could not be recorded, retry", nil)
	}
	*registration = *fresh
	return *fresh.StartedAt, nil
}

func (s *examSessionService) SubmitSession(ctx context.Context, examID, userID uint, req dto.ExamSubmitDTO) (*dto.ExamResultDTO, error) {
	if req.Answers == nil {
		return nil, newError(KindBadRequest, "answers are required", nil)
	}

	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.examRepo.FindQuestions(ctx, examID)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("SubmitSession: Failed to load questions")
		return nil, newError(KindStorage, "failed to load exam questions", err)
	}
	if len(questions) == 0 {
		return nil, newError(KindInvalidState, "exam has no questions, submission cannot be scored", nil)
	}

	registration, err := s.registrationRepo.FindByUserAndExam(ctx, userID, examID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindInvalidState, "exam session not started", nil)
		}
		log.Error().Err(err).Uint("userID", userID).Uint("examID", examID).Msg("SubmitSession: Failed to read registration")
		return nil, newError(KindStorage, "failed to read exam registration", err)
	}
	if registration.StartedAt == nil {
		return nil, newError(KindInvalidState, "exam session not started", nil)
	}
	if registration.FinishedAt != nil {
		return nil, newError(KindInvalidState, "exam already submitted", nil).
			with("finished_at", *registration.FinishedAt)
	}

	now := s.now()
	startedAt := *registration.StartedAt
	elapsed, _ := sessionClock(startedAt, now, exam.DurationSeconds)
	late := elapsed > exam.DurationSeconds+s.cfg.LateGraceSeconds

	closed, err := s.registrationRepo.MarkFinished(ctx, registration.ID, now)
	if err != nil {
		log.Error().Err(err).Uint("registrationID", registration.ID).Msg("SubmitSession: Failed to close registration")
		return nil, newError(KindStorage, "failed to close exam session", err)
	}
	if !closed {
		return nil, newError(KindInvalidState, "exam already submitted", nil)
	}

	card, err := ScoreAnswers(questions, req.Answers)
	if err != nil {
		return nil, err
	}
	s.logClientDrift(userID, examID, startedAt, elapsed, req)

	submission := model.ExamSubmission{
		RegistrationID:        &registration.ID,
		UserID:                userID,
		ExamID:                examID,
		IsLate:                late,
		StartTime:             startedAt,
		SubmitTime:            now,
		DurationSeconds:       elapsed,
		ClientStartTime:       req.StartTime,
		ClientDurationSeconds: req.DurationSeconds,
	}

	if late && s.cfg.LateSubmissionPolicy != config.LatePolicyFlag {
		// Auto-failed: the attempt is recorded with score 0 so it still counts.
		submissionID := s.recordSubmission(ctx, &submission, card.Results)
		log.Warn().Uint("userID", userID).Uint("examID", examID).Int("elapsed", elapsed).Msg("SubmitSession: Late submission rejected and recorded as failed")
		return nil, newError(KindExpired, "submission received after the exam time limit", nil).
			with("started_at", startedAt).
			with("elapsed_seconds", elapsed).
			with("time_expired", true).
			with("submission_id", submissionID)
	}

	passingScore := s.passingScore(exam)
	passed := card.Score >= passingScore
	submission.Score = card.Score
	submission.IsPassed = passed
	submissionID := s.recordSubmission(ctx, &submission, card.Results)

	log.Info().Uint("userID", userID).Uint("examID", examID).Int("score", card.Score).Bool("passed", passed).Bool("late", late).Msg("SubmitSession: Exam submitted")

	duration := elapsed
	return &dto.ExamResultDTO{
		ExamID:          exam.ID,
		ExamTitle:       exam.Title,
		Score:           card.Score,
		CorrectAnswers:  card.CorrectAnswers,
		TotalQuestions:  card.TotalQuestions,
		PassingScore:    passingScore,
		Passed:          passed,
		IsLate:          late,
		SubmissionID:    submissionID,
		DurationSeconds: &duration,
		Results:         card.Results,
	}, nil
}

// recordSubmission stores the submission, its answers and the refreshed
// summary. Failures are logged; a nil id means the submission row was lost.
func (s *examSessionService) recordSubmission(ctx context.Context, submission *model.ExamSubmission, results []dto.QuestionResultDTO) *uint {
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		log.Error().Err(err).Uint("userID", submission.UserID).Uint("examID", submission.ExamID).Int("score", submission.Score).Msg("SubmitSession: Failed to persist submission, returning result anyway")
		return nil
	}
	id := submission.ID
	if err := s.submissionRepo.CreateAnswers(ctx, answerRows(id, results)); err != nil {
		log.Error().Err(err).Uint("submissionID", id).Msg("SubmitSession: Failed to persist answers")
	}
	if s.summary != nil {
		if _, err := s.summary.RefreshSummary(ctx, submission.UserID); err != nil {
			log.Error().Err(err).Uint("userID", submission.UserID).Msg("SubmitSession: Failed to refresh progress summary")
		}
	}
	return &id
}

func answerRows(submissionID uint, results []dto.QuestionResultDTO) []model.ExamAnswer {
	rows := make([]model.ExamAnswer, 0, len(results))
	for _, r := range results {
		rows = append(rows, model.ExamAnswer{
			SubmissionID:   submissionID,
			QuestionID:     r.QuestionID,
			QuestionNo:     r.QuestionNo,
			SelectedOption: r.SelectedOption,
			IsCorrect:      r.IsCorrect,
		})
	}
	return rows
}

// logClientDrift records client timing that disagrees with the server by
// more than a few seconds. Client values never affect the result.
func (s *examSessionService) logClientDrift(userID, examID uint, startedAt time.Time, elapsed int, req dto.ExamSubmitDTO) {
	const tolerance = 5
	if req.DurationSeconds != nil && math.Abs(float64(*req.DurationSeconds-elapsed)) > tolerance {
		log.Warn().Uint("userID", userID).Uint("examID", examID).Int("client", *req.DurationSeconds).Int("server", elapsed).Msg("SubmitSession: Client duration differs from server")
	}
	if req.StartTime != nil && math.Abs(req.StartTime.Sub(startedAt).Seconds()) > tolerance {
		log.Warn().Uint("userID", userID).Uint("examID", examID).Time("client", *req.StartTime).Time("server", startedAt).Msg("SubmitSession: Client start time differs from server")
	}
}

func (s *examSessionService) ListSubmissions(ctx context.Context, examID, userID uint) ([]dto.SubmissionSummaryDTO, error) {
	if _, err := s.loadExam(ctx, examID); err != nil {
		return nil, err
	}
	submissions, err := s.submissionRepo.FindAllByUserAndExam(ctx, userID, examID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("examID", examID).Msg("ListSubmissions: Failed to fetch submissions")
		return nil, newError(KindStorage, "failed to fetch submissions", err)
	}

	summaries := make([]dto.SubmissionSummaryDTO, 0, len(submissions))
	if err := copier.Copy(&summaries, &submissions); err != nil {
		return nil, newError(KindStorage, "failed to build submission list", err)
	}
	for i := range summaries {
		summaries[i].SubmissionID = submissions[i].ID
	}
	return summaries, nil
}

func (s *examSessionService) GetJourneyExam(ctx context.Context, journeyID uint) (*dto.JourneyExamDTO, error) {
	exam, err := s.examRepo.FindByJourneyID(ctx, journeyID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindNotFound, "journey has no final exam", err)
		}
		log.Error().Err(err).Uint("journeyID", journeyID).Msg("GetJourneyExam: Failed to fetch exam")
		return nil, newError(KindStorage, "failed to fetch journey exam", err)
	}
	return &dto.JourneyExamDTO{JourneyID: journeyID, ExamID: exam.ID, ExamTitle: exam.Title}, nil
}

func (s *examSessionService) loadExam(ctx context.Context, examID uint) (*model.Exam, error) {
	exam, err := s.examRepo.FindByID(ctx, examID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindNotFound, "exam does not exist", err)
		}
		log.Error().Err(err).Uint("examID", examID).Msg("loadExam: Failed to fetch exam")
		return nil, newError(KindStorage, "failed to fetch exam", err)
	}
	return exam, nil
}

func (s *examSessionService) passingScore(exam *model.Exam) int {
	if exam.PassingScore != nil {
		return *exam.PassingScore
	}
	return s.cfg.DefaultPassingScore
}
