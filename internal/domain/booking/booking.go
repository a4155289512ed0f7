package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/coachbook/service-scheduling/internal/domain/schedule"
	"github.com/coachbook/service-scheduling/internal/platform/domain"
)

// Booking is the aggregate root for a requested or confirmed coaching
// session. It may name several coaches and several clients; each coach must
// accept and each client must confirm before the booking is final. Status is
// mutated only through the transition methods below, never by ad-hoc writes.
type Booking struct {
	id                  uuid.UUID
	coachIDs            []uuid.UUID
	clientIDs           []uuid.UUID
	timeRange           schedule.TimeRange
	status              BookingStatus
	coachAcceptances    map[uuid.UUID]bool
	clientConfirmations map[uuid.UUID]bool
	rejectedBy          *uuid.UUID
	rejectNote          string
	location            string
	notes               string
	paymentStatus       PaymentStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=requested and every
// party's acceptance/confirmation initialized to false. Bookings with no
// coaches or no clients are rejected outright.
func NewBooking(
	coachIDs, clientIDs []uuid.UUID,
	timeRange schedule.TimeRange,
	location, notes string,
) (*Booking, error) {
	coaches, err := normalizeParties(coachIDs, "coach")
	if err != nil {
		return nil, err
	}
	clients, err := normalizeParties(clientIDs, "client")
	if err != nil {
		return nil, err
	}

	acceptances := make(map[uuid.UUID]bool, len(coaches))
	for _, id := range coaches {
		acceptances[id] = false
	}
	confirmations := make(map[uuid.UUID]bool, len(clients))
	for _, id := range clients {
		confirmations[id] = false
	}

	now := time.Now().UTC()
	return &Booking{
		id:                  uuid.New(),
		coachIDs:            coaches,
		clientIDs:           clients,
		timeRange:           timeRange,
		status:              StatusRequested,
		coachAcceptances:    acceptances,
		clientConfirmations: confirmations,
		location:            location,
		notes:               notes,
		paymentStatus:       PaymentUnpaid,
		version:             1,
		createdAt:           now,
		updatedAt:           now,
	}, nil
}

// normalizeParties validates a party ID list: non-empty, no nil IDs, no
// duplicates. Order is preserved.
func normalizeParties(ids []uuid.UUID, role string) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("at least one " + role + " is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return nil, domain.NewValidationError(role + " ID must not be empty")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
// Nil acceptance/confirmation maps are preserved as empty: that is the legacy
// single-party representation, which counts as fully accepted/confirmed.
func ReconstructBooking(
	id uuid.UUID,
	coachIDs, clientIDs []uuid.UUID,
	timeRange schedule.TimeRange,
	status BookingStatus,
	coachAcceptances, clientConfirmations map[uuid.UUID]bool,
	rejectedBy *uuid.UUID,
	rejectNote, location, notes string,
	paymentStatus PaymentStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	if coachAcceptances == nil {
		coachAcceptances = map[uuid.UUID]bool{}
	}
	if clientConfirmations == nil {
		clientConfirmations = map[uuid.UUID]bool{}
	}
	return &Booking{
		id:                  id,
		coachIDs:            coachIDs,
		clientIDs:           clientIDs,
		timeRange:           timeRange,
		status:              status,
		coachAcceptances:    coachAcceptances,
		clientConfirmations: clientConfirmations,
		rejectedBy:          rejectedBy,
		rejectNote:          rejectNote,
		location:            location,
		notes:               notes,
		paymentStatus:       paymentStatus,
		version:             version,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// CoachIDs returns the ordered set of coach identifiers.
func (b *Booking) CoachIDs() []uuid.UUID { return b.coachIDs }

// ClientIDs returns the ordered set of client identifiers.
func (b *Booking) ClientIDs() []uuid.UUID { return b.clientIDs }

// Range returns the booked interval.
func (b *Booking) Range() schedule.TimeRange { return b.timeRange }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// CoachAcceptances returns the coach acceptance map.
func (b *Booking) CoachAcceptances() map[uuid.UUID]bool { return b.coachAcceptances }

// ClientConfirmations returns the client confirmation map.
func (b *Booking) ClientConfirmations() map[uuid.UUID]bool { return b.clientConfirmations }

// RejectedBy returns the coach that rejected the booking, or nil.
func (b *Booking) RejectedBy() *uuid.UUID { return b.rejectedBy }

// RejectNote returns the rejection reason.
func (b *Booking) RejectNote() string { return b.rejectNote }

// Location returns the session location.
func (b *Booking) Location() string { return b.location }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// PaymentStatus returns the payment status, tracked independently of the
// scheduling lifecycle.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// AllCoachesAccepted reports whether every coach in the acceptance map has
// accepted. An empty map means a legacy booking created before multi-coach
// support and counts as fully accepted. This default is deliberate, not an
// artifact of iterating an empty map.
func (b *Booking) AllCoachesAccepted() bool {
	for _, accepted := range b.coachAcceptances {
		if !accepted {
			return false
		}
	}
	return true
}

// AllClientsConfirmed reports whether every client in the confirmation map
// has confirmed, with the same empty-map-means-confirmed legacy default as
// AllCoachesAccepted.
func (b *Booking) AllClientsConfirmed() bool {
	for _, confirmed := range b.clientConfirmations {
		if !confirmed {
			return false
		}
	}
	return true
}

// IsActive reports whether the booking occupies calendar time.
func (b *Booking) IsActive() bool {
	return b.status.IsActive()
}

// --- Behavior ---

// Accept records a coach's acceptance. Acceptance is monotonic: re-applying
// an acceptance that was already recorded is a successful no-op. When the
// last coach accepts, the booking moves to pending_client_confirmation; a
// single-coach booking gets there with its one accept.
func (b *Booking) Accept(coachID uuid.UUID) error {
	if b.status.IsTerminal() {
		return NewBookingTerminalError(b.status)
	}
	accepted, ok := b.coachAcceptances[coachID]
	if !ok {
		return NewUnknownParticipantError(coachID)
	}
	if accepted {
		return nil
	}
	if b.status != StatusRequested && b.status != StatusPartiallyAccepted {
		return domain.NewInvalidStateError(string(b.status), string(StatusPartiallyAccepted))
	}

	b.coachAcceptances[coachID] = true
	if b.AllCoachesAccepted() {
		b.status = StatusPendingClientConfirmation
	} else {
		b.status = StatusPartiallyAccepted
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// Reject moves the booking to the terminal rejected state. Allowed from any
// non-terminal status.
func (b *Booking) Reject(coachID uuid.UUID, reason string) error {
	if b.status.IsTerminal() {
		return NewBookingTerminalError(b.status)
	}
	if _, ok := b.coachAcceptances[coachID]; !ok {
		return NewUnknownParticipantError(coachID)
	}

	b.status = StatusRejected
	b.rejectedBy = &coachID
	b.rejectNote = reason
	b.updatedAt = time.Now().UTC()
	return nil
}

// Confirm records a client's confirmation. Requires every coach to have
// accepted first. Confirmation is monotonic like acceptance; when the last
// client confirms, the booking reaches the terminal confirmed state.
func (b *Booking) Confirm(clientID uuid.UUID) error {
	if b.status.IsTerminal() {
		return NewBookingTerminalError(b.status)
	}
	confirmed, ok := b.clientConfirmations[clientID]
	if !ok {
		return NewUnknownParticipantError(clientID)
	}
	if confirmed {
		return nil
	}
	if !b.AllCoachesAccepted() ||
		(b.status != StatusPendingClientConfirmation && b.status != StatusPartiallyConfirmed) {
		return NewNotReadyForConfirmationError(b.status)
	}

	b.clientConfirmations[clientID] = true
	if b.AllClientsConfirmed() {
		b.status = StatusConfirmed
	} else {
		b.status = StatusPartiallyConfirmed
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkPaid flips the payment status to paid. Payment is independent of the
// scheduling lifecycle, so this is legal in any status.
func (b *Booking) MarkPaid() {
	b.paymentStatus = PaymentPaid
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
