package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coachbook/service-scheduling/internal/domain/schedule"
	"github.com/coachbook/service-scheduling/internal/events"
	"github.com/coachbook/service-scheduling/internal/platform/domain"
	"github.com/coachbook/service-scheduling/internal/platform/kafka"
)

// AddBlackoutRequest holds the data needed to declare a blackout.
type AddBlackoutRequest struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
	Note  string    `json:"note"`
}

// BlackoutDTO is the response representation of a blackout interval.
type BlackoutDTO struct {
	ID        uuid.UUID `json:"id"`
	CoachID   uuid.UUID `json:"coach_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BlackoutService manages coach-declared unavailability. Blackouts are
// mutated only by their owning coach.
type BlackoutService struct {
	repo      schedule.BlackoutRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBlackoutService creates a new BlackoutService.
func NewBlackoutService(repo schedule.BlackoutRepository, publisher EventPublisher, logger *zap.Logger) *BlackoutService {
	return &BlackoutService{repo: repo, publisher: publisher, logger: logger}
}

// AddBlackout declares a new blackout interval for the coach.
func (s *BlackoutService) AddBlackout(ctx context.Context, coachID uuid.UUID, req AddBlackoutRequest) (*BlackoutDTO, error) {
	bo, err := schedule.NewBlackout(coachID, req.Start, req.End, req.Note)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bo); err != nil {
		return nil, asStoreError(err)
	}

	s.publishBlackoutAdded(ctx, bo)

	result := toBlackoutDTO(bo)
	return &result, nil
}

// GetCoachBlackouts retrieves paginated blackouts for the coach.
func (s *BlackoutService) GetCoachBlackouts(ctx context.Context, coachID uuid.UUID, page, limit int) (*domain.PaginatedResult[BlackoutDTO], error) {
	blackouts, total, err := s.repo.FindByCoachID(ctx, coachID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BlackoutDTO, len(blackouts))
	for i, bo := range blackouts {
		dtos[i] = toBlackoutDTO(bo)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// RemoveBlackout deletes a blackout owned by the coach.
func (s *BlackoutService) RemoveBlackout(ctx context.Context, coachID, blackoutID uuid.UUID) error {
	bo, err := s.repo.FindByID(ctx, blackoutID)
	if err != nil {
		return err
	}
	if !bo.IsOwnedBy(coachID) {
		return domain.NewForbiddenError("blackout does not belong to this coach")
	}
	return s.repo.Delete(ctx, blackoutID)
}

func toBlackoutDTO(bo *schedule.Blackout) BlackoutDTO {
	return BlackoutDTO{
		ID:        bo.ID(),
		CoachID:   bo.CoachID(),
		Start:     bo.Range().Start,
		End:       bo.Range().End,
		Note:      bo.Note(),
		CreatedAt: bo.CreatedAt(),
	}
}

func (s *BlackoutService) publishBlackoutAdded(ctx context.Context, bo *schedule.Blackout) {
	evt := events.BlackoutAddedEvent{
		BlackoutID: bo.ID(),
		CoachID:    bo.CoachID(),
		Start:      bo.Range().Start,
		End:        bo.Range().End,
		OccurredAt: time.Now().UTC(),
	}

	cloudEvent, err := kafka.NewCloudEvent("service-scheduling", events.BlackoutAdded, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event", zap.Error(err))
		return
	}
	if err := s.publisher.PublishEvent(ctx, events.TopicSchedulingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish blackout event",
			zap.String("blackout_id", bo.ID().String()),
			zap.Error(err),
		)
	}
}
