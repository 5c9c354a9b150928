package service

import (
	"context"

	"github.com/lshigami/learning-insight/internal/repository"
	"github.com/rs/zerolog/log"
)

// PrerequisiteOracle decides whether a user may take a journey's final exam.
type PrerequisiteOracle interface {
	// IsJourneyComplete reports whether the user completed every tutorial of
	// the journey. Storage failures are logged and reported as false.
	IsJourneyComplete(ctx context.Context, userID, journeyID uint) bool
}

type prerequisiteOracle struct {
	trackingRepo repository.TrackingRepository
}

func NewPrerequisiteOracle(trackingRepo repository.TrackingRepository) PrerequisiteOracle {
	return &prerequisiteOracle{trackingRepo: trackingRepo}
}

func (o *prerequisiteOracle) IsJourneyComplete(ctx context.Context, userID, journeyID uint) bool {
	total, err := o.trackingRepo.CountTutorialsInJourney(ctx, journeyID)
	if err != nil {
		log.Error().Err(err).Uint("journeyID", journeyID).Msg("IsJourneyComplete: Failed to count journey tutorials")
		return false
	}
	if total == 0 {
		return false
	}
	completed, err := o.trackingRepo.CountCompletedTutorials(ctx, userID, journeyID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("journeyID", journeyID).Msg("IsJourneyComplete: Failed to count completed tutorials")
		return false
	}
	return completed == total
}
