package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BlackoutRepository defines the persistence contract for blackouts.
type BlackoutRepository interface {
	// FindByID retrieves a blackout by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Blackout, error)

	// FindByCoachID retrieves a coach's blackouts with pagination.
	FindByCoachID(ctx context.Context, coachID uuid.UUID, page, limit int) ([]*Blackout, int64, error)

	// FindByCoachInRange retrieves a coach's blackouts overlapping [start, end).
	FindByCoachInRange(ctx context.Context, coachID uuid.UUID, start, end time.Time) ([]*Blackout, error)

	// Save persists a new blackout.
	Save(ctx context.Context, blackout *Blackout) error

	// Delete removes a blackout.
	Delete(ctx context.Context, id uuid.UUID) error
}
