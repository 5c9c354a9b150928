package service

import (
	"context"
	"errors"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/model"
	"github.com/lshigami/learning-insight/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	TrackActionStart    = "start"
	TrackActionComplete = "complete"

	// maxHeartbeatGap bounds the time credited between two heartbeats, so an
	// idle or sleeping tab is not counted as study time.
	maxHeartbeatGap = 300 * time.Second

	defaultActivityLimit = 5
	maxActivityLimit     = 100
	defaultSummaryDays   = 7
)

// TrackingService records how users move through tutorials.
type TrackingService interface {
	TrackTutorial(ctx context.Context, userID, tutorialID uint, action string) (*dto.TrackResultDTO, error)
	Heartbeat(ctx context.Context, userID, tutorialID, journeyID uint) (*dto.ActivityDTO, error)
	// Summary counts activity viewed within [start, end]. Nil bounds select the
	// last seven days.
	Summary(ctx context.Context, userID uint, start, end *time.Time) (*dto.TrackingSummaryDTO, error)
	Activities(ctx context.Context, userID uint, limit, offset int) (*dto.ActivityPageDTO, error)
}

type trackingService struct {
	trackingRepo repository.TrackingRepository
	now          func() time.Time
}

func NewTrackingService(trackingRepo repository.TrackingRepository) TrackingService {
	return &trackingService{trackingRepo: trackingRepo, now: clock}
}

func (s *trackingService) TrackTutorial(ctx context.Context, userID, tutorialID uint, action string) (*dto.TrackResultDTO, error) {
	if action != TrackActionStart && action != TrackActionComplete {
		return nil, newError(KindBadRequest, `invalid action, use "start" or "complete"`, nil)
	}

	now := s.now()
	record, err := s.touch(ctx, userID, tutorialID, nil, now)
	if err != nil {
		return nil, err
	}

	if action == TrackActionStart {
		log.Debug().Uint("userID", userID).Uint("tutorialID", tutorialID).Msg("TrackTutorial: Tutorial opened")
		return &dto.TrackResultDTO{Activity: toActivityDTO(record)}, nil
	}

	if record.IsCompleted {
		return &dto.TrackResultDTO{AlreadyCompleted: true, Activity: toActivityDTO(record)}, nil
	}

	// Duration keeps the time accumulated by heartbeats.
	record.IsCompleted = true
	record.CompletedAt = &now
	record.ProgressPercentage = 100
	if err := s.trackingRepo.Update(ctx, record); err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("tutorialID", tutorialID).Msg("TrackTutorial: Failed to mark tutorial completed")
		return nil, newError(KindStorage, "failed to mark tutorial as completed", err)
	}

	log.Info().Uint("userID", userID).Uint("tutorialID", tutorialID).Msg("TrackTutorial: Tutorial completed")
	return &dto.TrackResultDTO{Activity: toActivityDTO(record)}, nil
}

// touch returns the user's record for the tutorial with last_viewed_at set to
// now, creating the record if this is the first visit. A new record takes the
// given journey, or the tutorial's journey when none is given.
func (s *trackingService) touch(ctx context.Context, userID, tutorialID uint, journeyID *uint, now time.Time) (*model.UserActivityTracking, error) {
	record, err := s.trackingRepo.FindByUserAndTutorial(ctx, userID, tutorialID)
	if err != nil && !repository.IsNotFound(err) {
		log.Error().Err(err).Uint("userID", userID).Uint("tutorialID", tutorialID).Msg("touch: Failed to fetch tracking record")
		return nil, newError(KindStorage, "failed to fetch tracking record", err)
	}

	if record == nil {
		record = &model.UserActivityTracking{
			UserID:        userID,
			TutorialID:    tutorialID,
			JourneyID:     s.journeyOf(ctx, tutorialID, journeyID),
			FirstOpenedAt: now,
			LastViewedAt:  now,
		}
		err = s.trackingRepo.Create(ctx, record)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			log.Error().Err(err).Uint("userID", userID).Uint("tutorialID", tutorialID).Msg("touch: Failed to create tracking record")
			return nil, newError(KindStorage, "failed to create tracking record", err)
		}
		// A concurrent request created it; fall through and update that row.
		record, err = s.trackingRepo.FindByUserAndTutorial(ctx, userID, tutorialID)
		if err != nil {
			return nil, newError(KindStorage, "failed to fetch tracking record", err)
		}
	}

	record.LastViewedAt = now
	if err := s.trackingRepo.Update(ctx, record); err != nil {
		log.Error().Err(err).Uint("trackingID", record.ID).Msg("touch: Failed to update last viewed time")
		return nil, newError(KindStorage, "failed to update tracking record", err)
	}
	return record, nil
}

func (s *trackingService) journeyOf(ctx context.Context, tutorialID uint, given *uint) *uint {
	if given != nil {
		return given
	}
	tutorial, err := s.trackingRepo.FindTutorial(ctx, tutorialID)
	if err != nil {
		if !repository.IsNotFound(err) {
			log.Error().Err(err).Uint("tutorialID", tutorialID).Msg("journeyOf: Failed to fetch tutorial")
		} else {
			log.Warn().Uint("tutorialID", tutorialID).Msg("journeyOf: Tutorial not found, tracking without its journey")
		}
		return nil
	}
	journeyID := tutorial.JourneyID
	return &journeyID
}

func (s *trackingService) Heartbeat(ctx context.Context, userID, tutorialID, journeyID uint) (*dto.ActivityDTO, error) {
	if userID == 0 || tutorialID == 0 || journeyID == 0 {
		return nil, newError(KindBadRequest, "tutorialId, journeyId and user_id are required", nil)
	}

	now := s.now()
	record, err := s.trackingRepo.FindByUserAndTutorial(ctx, userID, tutorialID)
	if err != nil && !repository.IsNotFound(err) {
		log.Error().Err(err).Uint("userID", userID).Uint("tutorialID", tutorialID).Msg("Heartbeat: Failed to fetch tracking record")
		return nil, newError(KindStorage, "failed to fetch tracking record", err)
	}
	if record == nil {
		created, err := s.touch(ctx, userID, tutorialID, &journeyID, now)
		if err != nil {
			return nil, err
		}
		return toActivityDTO(created), nil
	}

	if !record.IsCompleted {
		delta := now.Sub(record.LastViewedAt).Truncate(time.Second)
		if delta > 0 && delta < maxHeartbeatGap {
			record.DurationSeconds += int(delta / time.Second)
		} else {
			log.Debug().Uint("trackingID", record.ID).Dur("delta", delta).Msg("Heartbeat: Gap out of range, duration unchanged")
		}
	}
	record.LastViewedAt = now

	if err := s.trackingRepo.Update(ctx, record); err != nil {
		log.Error().Err(err).Uint("trackingID", record.ID).Msg("Heartbeat: Failed to update tracking record")
		return nil, newError(KindStorage, "failed to update tracking record", err)
	}
	return toActivityDTO(record), nil
}

func (s *trackingService) Summary(ctx context.Context, userID uint, start, end *time.Time) (*dto.TrackingSummaryDTO, error) {
	rangeStart, rangeEnd := summaryWindow(s.now(), start, end)
	if rangeEnd.Before(rangeStart) {
		return nil, newError(KindBadRequest, "startDate must not be after endDate", nil)
	}

	records, err := s.trackingRepo.FindByUserViewedBetween(ctx, userID, rangeStart, rangeEnd)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Summary: Failed to fetch activities")
		return nil, newError(KindStorage, "failed to fetch activities", err)
	}

	completed := make(map[uint]struct{})
	inProgress := make(map[uint]struct{})
	totalSeconds := 0
	for _, r := range records {
		if r.IsCompleted {
			completed[r.TutorialID] = struct{}{}
		} else {
			inProgress[r.TutorialID] = struct{}{}
		}
		totalSeconds += r.DurationSeconds
	}

	return &dto.TrackingSummaryDTO{
		Completed:            len(completed),
		InProgress:           len(inProgress),
		TotalDurationSeconds: totalSeconds,
		TotalDurationHours:   round2(float64(totalSeconds) / 3600),
		RangeStart:           rangeStart,
		RangeEnd:             rangeEnd,
	}, nil
}

// summaryWindow resolves the requested date range. The end bound always
// covers its whole day.
func summaryWindow(now time.Time, start, end *time.Time) (time.Time, time.Time) {
	if start != nil && end != nil {
		return start.UTC(), endOfDay(end.UTC())
	}
	now = now.UTC()
	return startOfDay(now.AddDate(0, 0, -defaultSummaryDays)), endOfDay(now)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func (s *trackingService) Activities(ctx context.Context, userID uint, limit, offset int) (*dto.ActivityPageDTO, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := s.trackingRepo.FindPageByUser(ctx, userID, limit, offset)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Activities: Failed to fetch activities")
		return nil, newError(KindStorage, "failed to fetch activities", err)
	}

	activities := make([]dto.ActivityDTO, 0, len(records))
	for i := range records {
		activities = append(activities, *toActivityDTO(&records[i]))
	}

	return &dto.ActivityPageDTO{
		Activities: activities,
		Pagination: dto.PaginationDTO{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+len(records)) < total,
		},
	}, nil
}

func toActivityDTO(record *model.UserActivityTracking) *dto.ActivityDTO {
	var out dto.ActivityDTO
	if err := copier.Copy(&out, record); err != nil {
		log.Error().Err(err).Uint("trackingID", record.ID).Msg("toActivityDTO: Failed to copy tracking record")
	}
	out.TrackingID = record.ID
	if record.Tutorial != nil {
		out.TutorialTitle = record.Tutorial.Title
	}
	return &out
}
