package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/coachbook/service-scheduling/internal/domain/booking"
	"github.com/coachbook/service-scheduling/internal/domain/schedule"
	"github.com/coachbook/service-scheduling/internal/events"
	"github.com/coachbook/service-scheduling/internal/platform/domain"
	"github.com/coachbook/service-scheduling/internal/platform/kafka"
)

// EventPublisher publishes CloudEvents to a topic. Satisfied by the Kafka
// producer; swapped for a fake in unit tests.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	CoachIDs  []uuid.UUID `json:"coach_ids" binding:"required"`
	ClientIDs []uuid.UUID `json:"client_ids" binding:"required"`
	Start     time.Time   `json:"start" binding:"required"`
	End       time.Time   `json:"end" binding:"required"`
	Location  string      `json:"location"`
	Notes     string      `json:"notes"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                  uuid.UUID          `json:"id"`
	CoachIDs            []uuid.UUID        `json:"coach_ids"`
	ClientIDs           []uuid.UUID        `json:"client_ids"`
	Start               time.Time          `json:"start"`
	End                 time.Time          `json:"end"`
	Status              string             `json:"status"`
	CoachAcceptances    map[uuid.UUID]bool `json:"coach_acceptances"`
	ClientConfirmations map[uuid.UUID]bool `json:"client_confirmations"`
	RejectedBy          *uuid.UUID         `json:"rejected_by,omitempty"`
	RejectNote          string             `json:"reject_note,omitempty"`
	Location            string             `json:"location,omitempty"`
	Notes               string             `json:"notes,omitempty"`
	PaymentStatus       string             `json:"payment_status"`
	Version             int64              `json:"version"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// BookingService is the application service orchestrating the booking
// lifecycle. All status transitions go through it; handlers never mutate
// booking state directly.
type BookingService struct {
	repo          bookingDomain.BookingRepository
	blackouts     schedule.BlackoutRepository
	locker        *coachLocker
	window        schedule.WorkingWindow
	createTimeout time.Duration
	publisher     EventPublisher
	logger        *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	blackouts schedule.BlackoutRepository,
	window schedule.WorkingWindow,
	createTimeout time.Duration,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	if createTimeout <= 0 {
		createTimeout = 5 * time.Second
	}
	return &BookingService{
		repo:          repo,
		blackouts:     blackouts,
		locker:        newCoachLocker(),
		window:        window,
		createTimeout: createTimeout,
		publisher:     publisher,
		logger:        logger,
	}
}

// CreateBooking validates and persists a new booking request.
//
// The requested range is snapped to the slot granularity, then availability
// is re-checked for every coach at write time while holding the per-coach
// locks, so two concurrent requests for overlapping ranges on the same coach
// cannot both commit: the loser gets SlotUnavailable. The whole
// validate-then-write step runs under the configured time budget and fails
// with a retryable Timeout rather than leaving a partial record.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	ctx, cancel := context.WithTimeout(ctx, s.createTimeout)
	defer cancel()

	tr, err := schedule.NewTimeRange(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	tr, err = tr.Snap(s.window.Granularity)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(req.CoachIDs, req.ClientIDs, tr, req.Location, req.Notes)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, bk.CoachIDs())
	if err != nil {
		return nil, domain.NewTimeoutError("could not acquire coach schedule locks in time")
	}
	defer release()

	for _, coachID := range bk.CoachIDs() {
		conflict, err := s.hasConflict(ctx, coachID, tr)
		if err != nil {
			return nil, asStoreError(err)
		}
		if conflict {
			return nil, bookingDomain.NewSlotUnavailableError(coachID, tr.Start, tr.End)
		}
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, asStoreError(err)
	}

	s.publishEvent(ctx, events.BookingRequested, bk.ID().String(), events.BookingRequestedEvent{
		BookingID:  bk.ID(),
		CoachIDs:   bk.CoachIDs(),
		ClientIDs:  bk.ClientIDs(),
		Start:      tr.Start,
		End:        tr.End,
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// hasConflict checks a coach's active bookings and blackouts for overlap with
// the candidate range.
func (s *BookingService) hasConflict(ctx context.Context, coachID uuid.UUID, tr schedule.TimeRange) (bool, error) {
	active, err := s.repo.FindActiveInRange(ctx, coachID, tr.Start, tr.End)
	if err != nil {
		return false, err
	}
	if len(active) > 0 {
		return true, nil
	}

	blackouts, err := s.blackouts.FindByCoachInRange(ctx, coachID, tr.Start, tr.End)
	if err != nil {
		return false, err
	}
	return len(blackouts) > 0, nil
}

// CoachAccept records a coach's acceptance of a booking.
func (s *BookingService) CoachAccept(ctx context.Context, bookingID, coachID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Accept(coachID); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingAccepted, bk.ID().String(), events.BookingAcceptedEvent{
		BookingID:  bk.ID(),
		CoachID:    coachID,
		ClientIDs:  bk.ClientIDs(),
		NewStatus:  bk.Status().String(),
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// CoachReject rejects a booking on behalf of a coach. Rejection is terminal.
func (s *BookingService) CoachReject(ctx context.Context, bookingID, coachID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Reject(coachID, reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingRejected, bk.ID().String(), events.BookingRejectedEvent{
		BookingID:  bk.ID(),
		CoachID:    coachID,
		ClientIDs:  bk.ClientIDs(),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// ClientConfirm records a client's confirmation of a fully accepted booking.
func (s *BookingService) ClientConfirm(ctx context.Context, bookingID, clientID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Confirm(clientID); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingConfirmed, bk.ID().String(), events.BookingConfirmedEvent{
		BookingID:  bk.ID(),
		ClientID:   clientID,
		CoachIDs:   bk.CoachIDs(),
		NewStatus:  bk.Status().String(),
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// MarkBookingPaid flips the booking's payment status after a payment event.
func (s *BookingService) MarkBookingPaid(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	bk.MarkPaid()
	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetCoachBookings retrieves paginated bookings naming a specific coach.
func (s *BookingService) GetCoachBookings(ctx context.Context, coachID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCoachID(ctx, coachID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetClientBookings retrieves paginated bookings naming a specific client.
func (s *BookingService) GetClientBookings(ctx context.Context, clientID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByClientID(ctx, clientID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                  bk.ID(),
		CoachIDs:            bk.CoachIDs(),
		ClientIDs:           bk.ClientIDs(),
		Start:               bk.Range().Start,
		End:                 bk.Range().End,
		Status:              bk.Status().String(),
		CoachAcceptances:    bk.CoachAcceptances(),
		ClientConfirmations: bk.ClientConfirmations(),
		RejectedBy:          bk.RejectedBy(),
		RejectNote:          bk.RejectNote(),
		Location:            bk.Location(),
		Notes:               bk.Notes(),
		PaymentStatus:       string(bk.PaymentStatus()),
		Version:             bk.Version(),
		CreatedAt:           bk.CreatedAt(),
		UpdatedAt:           bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

// asStoreError maps low-level failures from the validate-then-write path to
// the retryable part of the error taxonomy. Domain errors pass through.
func asStoreError(err error) error {
	if domain.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTimeoutError("booking creation exceeded its time budget")
	}
	return domain.NewStoreUnavailableError(err.Error())
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-scheduling", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, events.TopicSchedulingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
