package user

import (
	"context"
	"time"

	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/model"
)

type fakeExamSessionService struct {
	err        error
	session    *dto.ExamSessionDTO
	result     *dto.ExamResultDTO
	gotUserID  uint
	gotExamID  uint
	gotRequest dto.ExamSubmitDTO
}

func (f *fakeExamSessionService) StartOrResumeSession(_ context.Context, examID, userID uint) (*dto.ExamSessionDTO, error) {
	f.gotExamID, f.gotUserID = examID, userID
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeExamSessionService) SubmitSession(_ context.Context, examID, userID uint, req dto.ExamSubmitDTO) (*dto.ExamResultDTO, error) {
	f.gotExamID, f.gotUserID, f.gotRequest = examID, userID, req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeExamSessionService) ListSubmissions(_ context.Context, examID, userID uint) ([]dto.SubmissionSummaryDTO, error) {
	f.gotExamID, f.gotUserID = examID, userID
	if f.err != nil {
		return nil, f.err
	}
	return []dto.SubmissionSummaryDTO{{SubmissionID: 1, ExamID: examID, Score: 80, IsPassed: true}}, nil
}

func (f *fakeExamSessionService) GetJourneyExam(_ context.Context, journeyID uint) (*dto.JourneyExamDTO, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.JourneyExamDTO{JourneyID: journeyID, ExamID: 1, ExamTitle: "Final"}, nil
}

type fakeTrackingService struct {
	err           error
	gotUserID     uint
	gotTutorialID uint
	gotAction     string
	gotStart      *time.Time
	gotEnd        *time.Time
	gotLimit      int
	gotOffset     int
}

func (f *fakeTrackingService) TrackTutorial(_ context.Context, userID, tutorialID uint, action string) (*dto.TrackResultDTO, error) {
	f.gotUserID, f.gotTutorialID, f.gotAction = userID, tutorialID, action
	if f.err != nil {
		return nil, f.err
	}
	return &dto.TrackResultDTO{Activity: &dto.ActivityDTO{TutorialID: tutorialID}}, nil
}

func (f *fakeTrackingService) Heartbeat(_ context.Context, userID, tutorialID, journeyID uint) (*dto.ActivityDTO, error) {
	f.gotUserID, f.gotTutorialID = userID, tutorialID
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ActivityDTO{TutorialID: tutorialID, JourneyID: &journeyID}, nil
}

func (f *fakeTrackingService) Summary(_ context.Context, userID uint, start, end *time.Time) (*dto.TrackingSummaryDTO, error) {
	f.gotUserID, f.gotStart, f.gotEnd = userID, start, end
	if f.err != nil {
		return nil, f.err
	}
	return &dto.TrackingSummaryDTO{Completed: 1}, nil
}

func (f *fakeTrackingService) Activities(_ context.Context, userID uint, limit, offset int) (*dto.ActivityPageDTO, error) {
	f.gotUserID, f.gotLimit, f.gotOffset = userID, limit, offset
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ActivityPageDTO{Pagination: dto.PaginationDTO{Limit: limit, Offset: offset}}, nil
}

type fakeSummaryService struct {
	err       error
	refreshed []uint
}

func (f *fakeSummaryService) RefreshSummary(_ context.Context, userID uint) (*model.UserProgressSummary, error) {
	f.refreshed = append(f.refreshed, userID)
	if f.err != nil {
		return nil, f.err
	}
	return &model.UserProgressSummary{UserID: userID}, nil
}

func (f *fakeSummaryService) GetSummary(_ context.Context, userID uint) (*model.UserProgressSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.UserProgressSummary{UserID: userID}, nil
}

type fakeInsightService struct {
	err            error
	gotUserID      uint
	gotStats       *dto.InsightStatsDTO
	gotProfileName string
}

func (f *fakeInsightService) GenerateInsights(_ context.Context, userID uint, stats *dto.InsightStatsDTO, profileName string) (*dto.InsightResponseDTO, error) {
	f.gotUserID, f.gotStats, f.gotProfileName = userID, stats, profileName
	if f.err != nil {
		return nil, f.err
	}
	return &dto.InsightResponseDTO{Provider: "fake", UserID: userID, Insight: []byte(`{"ok":true}`)}, nil
}

func (f *fakeInsightService) Health() dto.InsightHealthDTO {
	return dto.InsightHealthDTO{Status: "ok", Provider: "fake"}
}
