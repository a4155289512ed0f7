package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/coachbook/service-scheduling/internal/platform/domain"
)

// Blackout is a coach-declared span of unavailability, independent of any
// booking. Blackouts are owned and mutated only by their coach; the
// availability engine consults them read-only.
type Blackout struct {
	id        uuid.UUID
	coachID   uuid.UUID
	timeRange TimeRange
	note      string
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBlackout creates a blackout for the given coach and interval.
func NewBlackout(coachID uuid.UUID, start, end time.Time, note string) (*Blackout, error) {
	if coachID == uuid.Nil {
		return nil, domain.NewValidationError("coach ID is required")
	}
	tr, err := NewTimeRange(start, end)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Blackout{
		id:        uuid.New(),
		coachID:   coachID,
		timeRange: tr,
		note:      note,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBlackout rebuilds a Blackout from persistence data (no validation).
func ReconstructBlackout(
	id, coachID uuid.UUID,
	timeRange TimeRange,
	note string,
	version int64,
	createdAt, updatedAt time.Time,
) *Blackout {
	return &Blackout{
		id:        id,
		coachID:   coachID,
		timeRange: timeRange,
		note:      note,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the blackout's unique identifier.
func (b *Blackout) ID() uuid.UUID { return b.id }

// CoachID returns the owning coach's ID.
func (b *Blackout) CoachID() uuid.UUID { return b.coachID }

// Range returns the blackout interval.
func (b *Blackout) Range() TimeRange { return b.timeRange }

// Note returns the coach-supplied note.
func (b *Blackout) Note() string { return b.note }

// Version returns the entity version for optimistic locking.
func (b *Blackout) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Blackout) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Blackout) UpdatedAt() time.Time { return b.updatedAt }

// IsOwnedBy checks if the blackout belongs to the given coach.
func (b *Blackout) IsOwnedBy(coachID uuid.UUID) bool {
	return b.coachID == coachID
}
