package service

import (
	"context"
	"math"
	"time"

	"github.com/lshigami/learning-insight/internal/model"
	"github.com/lshigami/learning-insight/internal/repository"
	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog/log"
)

// ProgressSummaryService maintains the per-user progress aggregate.
type ProgressSummaryService interface {
	// RefreshSummary recomputes the user's summary from the raw rows and
	// stores it.
	RefreshSummary(ctx context.Context, userID uint) (*model.UserProgressSummary, error)
	// GetSummary returns the stored summary, computing it first if the user
	// has none yet.
	GetSummary(ctx context.Context, userID uint) (*model.UserProgressSummary, error)
}

type progressSummaryService struct {
	trackingRepo   repository.TrackingRepository
	submissionRepo repository.SubmissionRepository
	summaryRepo    repository.SummaryRepository
	now            func() time.Time
}

func NewProgressSummaryService(
	trackingRepo repository.TrackingRepository,
	submissionRepo repository.SubmissionRepository,
	summaryRepo repository.SummaryRepository,
) ProgressSummaryService {
	return &progressSummaryService{
		trackingRepo:   trackingRepo,
		submissionRepo: submissionRepo,
		summaryRepo:    summaryRepo,
		now:            clock,
	}
}

func (s *progressSummaryService) RefreshSummary(ctx context.Context, userID uint) (*model.UserProgressSummary, error) {
	activities, err := s.trackingRepo.FindAllByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("RefreshSummary: Failed to fetch activities")
		return nil, newError(KindStorage, "failed to fetch activities", err)
	}
	submissions, err := s.submissionRepo.FindAllByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("RefreshSummary: Failed to fetch exam submissions")
		return nil, newError(KindStorage, "failed to fetch exam submissions", err)
	}

	summary := ComputeProgressSummary(userID, activities, submissions, s.now())
	if err := s.summaryRepo.Upsert(ctx, &summary); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("RefreshSummary: Failed to upsert summary")
		return nil, newError(KindStorage, "failed to store progress summary", err)
	}

	log.Info().Uint("userID", userID).Int("activities", len(activities)).Int("submissions", len(submissions)).Msg("RefreshSummary: Summary updated")
	return &summary, nil
}

func (s *progressSummaryService) GetSummary(ctx context.Context, userID uint) (*model.UserProgressSummary, error) {
	summary, err := s.summaryRepo.FindByUserID(ctx, userID)
	if err == nil {
		return summary, nil
	}
	if !repository.IsNotFound(err) {
		log.Error().Err(err).Uint("userID", userID).Msg("GetSummary: Failed to fetch summary")
		return nil, newError(KindStorage, "failed to fetch progress summary", err)
	}
	return s.RefreshSummary(ctx, userID)
}

// ComputeProgressSummary aggregates raw activity and submission rows. It has
// no side effects; now only stamps LastUpdated.
func ComputeProgressSummary(userID uint, activities []model.UserActivityTracking, submissions []model.ExamSubmission, now time.Time) model.UserProgressSummary {
	accessed := make(map[uint]struct{})
	completed := make(map[uint]struct{})
	type journeyProgress struct{ total, completed map[uint]struct{} }
	journeys := make(map[uint]*journeyProgress)
	perDay := make(map[string]int)
	var durations []float64

	for _, a := range activities {
		accessed[a.TutorialID] = struct{}{}
		if a.IsCompleted {
			completed[a.TutorialID] = struct{}{}
		}

		if a.JourneyID != nil {
			jp, ok := journeys[*a.JourneyID]
			if !ok {
				jp = &journeyProgress{total: map[uint]struct{}{}, completed: map[uint]struct{}{}}
				journeys[*a.JourneyID] = jp
			}
			jp.total[a.TutorialID] = struct{}{}
			if a.IsCompleted {
				jp.completed[a.TutorialID] = struct{}{}
			}
		}

		if hours := float64(a.DurationSeconds) / 3600; hours > 0 {
			durations = append(durations, hours)
		}
		if !a.LastViewedAt.IsZero() {
			perDay[a.LastViewedAt.UTC().Format("2006-01-02")]++
		}
	}

	journeysCompleted := 0
	for _, jp := range journeys {
		if len(jp.total) > 0 && len(jp.total) == len(jp.completed) {
			journeysCompleted++
		}
	}

	dailyCounts := make([]float64, 0, len(perDay))
	for _, n := range perDay {
		dailyCounts = append(dailyCounts, float64(n))
	}

	passed := 0
	scores := make([]float64, 0, len(submissions))
	for _, sub := range submissions {
		if sub.IsPassed {
			passed++
		}
		scores = append(scores, float64(sub.Score))
	}

	return model.UserProgressSummary{
		UserID:                   userID,
		TotalTutorialAccessed:    len(accessed),
		TotalTutorialCompleted:   len(completed),
		CompletionRate:           round2(ratioPercent(len(completed), len(accessed))),
		TotalJourneysCompleted:   journeysCompleted,
		TotalExamsTaken:          len(submissions),
		TotalExamsPassed:         passed,
		AvgStudyDurationHours:    round5(describe(stats.Mean, durations)),
		MedianStudyDurationHours: round5(describe(stats.Median, durations)),
		MaxStudyDurationHours:    round5(describe(stats.Max, durations)),
		MinStudyDurationHours:    round5(describe(stats.Min, durations)),
		TotalStudyDays:           len(perDay),
		AvgTutorialPerDay:        round2(describe(stats.Mean, dailyCounts)),
		StdTutorialPerDay:        round2(describe(stats.StandardDeviationPopulation, dailyCounts)),
		MaxTutorialInDay:         int(describe(stats.Max, dailyCounts)),
		AvgExamScore:             round2(describe(stats.Mean, scores)),
		ExamPassRate:             round2(ratioPercent(passed, len(submissions))),
		LastUpdated:              now,
	}
}

// describe applies a stats function, treating an empty sample as zero.
func describe(fn func(stats.Float64Data) (float64, error), values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	v, err := fn(values)
	if err != nil {
		return 0
	}
	return v
}

func ratioPercent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round5(v float64) float64 { return math.Round(v*100000) / 100000 }
