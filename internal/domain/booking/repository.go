package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByCoachID retrieves bookings naming a specific coach with pagination.
	FindByCoachID(ctx context.Context, coachID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByClientID retrieves bookings naming a specific client with pagination.
	FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindActiveInRange retrieves a coach's active bookings overlapping the
	// half-open interval [start, end). Rejected bookings are excluded.
	FindActiveInRange(ctx context.Context, coachID uuid.UUID, start, end time.Time) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
