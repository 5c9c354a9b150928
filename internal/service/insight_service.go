package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/lshigami/learning-insight/config"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/model"
	"github.com/rs/zerolog/log"
)

const defaultProfileName = "User"

// InsightProvider turns a learner's feature vector into an insight document.
type InsightProvider interface {
	Name() string
	Generate(ctx context.Context, userID uint, stats dto.InsightStatsDTO, profileName string) (json.RawMessage, error)
	Health() dto.InsightHealthDTO
	// Close releases the provider's connections.
	Close() error
}

type InsightService interface {
	// GenerateInsights asks the configured provider for insights. When stats
	// is nil the features are derived from the user's progress summary.
	GenerateInsights(ctx context.Context, userID uint, stats *dto.InsightStatsDTO, profileName string) (*dto.InsightResponseDTO, error)
	Health() dto.InsightHealthDTO
}

type insightService struct {
	provider  InsightProvider
	summaries ProgressSummaryService
}

func NewInsightService(provider InsightProvider, summaries ProgressSummaryService) InsightService {
	return &insightService{provider: provider, summaries: summaries}
}

// NewInsightProvider builds the provider selected by INSIGHTS_PROVIDER.
func NewInsightProvider(cfg *config.Config) (InsightProvider, error) {
	if cfg.Insights.Provider == config.InsightsProviderGemini {
		return NewGeminiInsightProvider(cfg)
	}
	return NewMLInsightProvider(cfg), nil
}

func (s *insightService) GenerateInsights(ctx context.Context, userID uint, stats *dto.InsightStatsDTO, profileName string) (*dto.InsightResponseDTO, error) {
	if userID == 0 {
		return nil, newError(KindBadRequest, "userId is required", nil)
	}

	var features dto.InsightStatsDTO
	if stats != nil {
		features = *stats
	} else {
		summary, err := s.summaries.GetSummary(ctx, userID)
		if err != nil {
			return nil, err
		}
		features = FeaturesFromSummary(summary)
	}
	if profileName == "" {
		profileName = defaultProfileName
	}

	insight, err := s.provider.Generate(ctx, userID, features, profileName)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Str("provider", s.provider.Name()).Msg("GenerateInsights: Provider call failed")
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		return nil, newError(KindUpstream, "failed to generate insights", err)
	}

	log.Info().Uint("userID", userID).Str("provider", s.provider.Name()).Msg("GenerateInsights: Insights generated")
	return &dto.InsightResponseDTO{
		Provider: s.provider.Name(),
		UserID:   userID,
		Stats:    features,
		Insight:  insight,
	}, nil
}

func (s *insightService) Health() dto.InsightHealthDTO {
	return s.provider.Health()
}

// FeaturesFromSummary maps the stored summary onto the provider features.
// Consistency is 100 for a perfectly even daily pace and falls as the daily
// tutorial count varies.
func FeaturesFromSummary(summary *model.UserProgressSummary) dto.InsightStatsDTO {
	consistency := 0.0
	if summary.TotalStudyDays > 0 {
		consistency = round2(100 / (1 + summary.StdTutorialPerDay))
	}
	return dto.InsightStatsDTO{
		AvgStudyDurationHours:  summary.AvgStudyDurationHours,
		TotalTutorialCompleted: summary.TotalTutorialCompleted,
		TotalStudyDays:         summary.TotalStudyDays,
		ConsistencyScore:       consistency,
		AvgExamScore:           summary.AvgExamScore,
	}
}
