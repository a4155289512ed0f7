package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/coachbook/service-scheduling/internal/domain/booking"
	"github.com/coachbook/service-scheduling/internal/domain/schedule"
	"github.com/coachbook/service-scheduling/internal/platform/domain"
)

// AvailabilityService computes free/busy slots for coaches. It is stateless:
// slots are derived from the current bookings and blackouts on every call and
// never cached, so a booking-state change is reflected by the next query.
type AvailabilityService struct {
	bookings  bookingDomain.BookingRepository
	blackouts schedule.BlackoutRepository
	window    schedule.WorkingWindow
	logger    *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(
	bookings bookingDomain.BookingRepository,
	blackouts schedule.BlackoutRepository,
	window schedule.WorkingWindow,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		bookings:  bookings,
		blackouts: blackouts,
		window:    window,
		logger:    logger,
	}
}

// GetAvailableSlots returns the day's slots for the given coaches. With one
// coach the result is that coach's free/busy view; with several it is the
// intersection: a slot is free only if free for every coach.
// granularityMinutes overrides the configured slot size when positive.
func (s *AvailabilityService) GetAvailableSlots(
	ctx context.Context,
	coachIDs []uuid.UUID,
	day time.Time,
	granularityMinutes int,
) ([]schedule.Slot, error) {
	if len(coachIDs) == 0 {
		return nil, domain.NewValidationError("at least one coach is required")
	}

	window := s.window
	if granularityMinutes > 0 {
		window = window.WithGranularity(time.Duration(granularityMinutes) * time.Minute)
	}
	dayRange := window.DayRange(day)

	slotSets := make([][]schedule.Slot, 0, len(coachIDs))
	for _, coachID := range coachIDs {
		busy, err := s.collectBusy(ctx, coachID, dayRange)
		if err != nil {
			return nil, err
		}
		slotSets = append(slotSets, window.GenerateSlots(day, busy))
	}

	return schedule.IntersectFree(slotSets...), nil
}

// collectBusy gathers the coach's busy intervals for the day: active bookings
// (rejected ones never block) and blackout intervals.
func (s *AvailabilityService) collectBusy(ctx context.Context, coachID uuid.UUID, dayRange schedule.TimeRange) ([]schedule.TimeRange, error) {
	var busy []schedule.TimeRange

	active, err := s.bookings.FindActiveInRange(ctx, coachID, dayRange.Start, dayRange.End)
	if err != nil {
		return nil, asStoreError(err)
	}
	for _, bk := range active {
		busy = append(busy, bk.Range())
	}

	blackouts, err := s.blackouts.FindByCoachInRange(ctx, coachID, dayRange.Start, dayRange.End)
	if err != nil {
		return nil, asStoreError(err)
	}
	for _, bo := range blackouts {
		busy = append(busy, bo.Range())
	}

	return busy, nil
}
