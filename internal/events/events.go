// Package events is the catalogue of topics and event payloads exchanged
// with other services. Lifecycle events are published fire-and-forget after
// each status transition; a failed publish never rolls back the transition.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicSchedulingEvents = "scheduling.events"
	TopicPaymentEvents    = "payment.events"
)

// Event types on scheduling.events.
const (
	BookingRequested = "booking.requested"
	BookingAccepted  = "booking.accepted"
	BookingRejected  = "booking.rejected"
	BookingConfirmed = "booking.confirmed"
	BlackoutAdded    = "blackout.added"
)

// Event types consumed from payment.events.
const (
	PaymentCompleted = "payment.completed"
)

// BookingRequestedEvent is published when a client creates a booking.
type BookingRequestedEvent struct {
	BookingID  uuid.UUID   `json:"booking_id"`
	CoachIDs   []uuid.UUID `json:"coach_ids"`
	ClientIDs  []uuid.UUID `json:"client_ids"`
	Start      time.Time   `json:"start"`
	End        time.Time   `json:"end"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// BookingAcceptedEvent is published when a coach accepts a booking.
type BookingAcceptedEvent struct {
	BookingID  uuid.UUID   `json:"booking_id"`
	CoachID    uuid.UUID   `json:"coach_id"`
	ClientIDs  []uuid.UUID `json:"client_ids"`
	NewStatus  string      `json:"new_status"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// BookingRejectedEvent is published when a coach rejects a booking.
type BookingRejectedEvent struct {
	BookingID  uuid.UUID   `json:"booking_id"`
	CoachID    uuid.UUID   `json:"coach_id"`
	ClientIDs  []uuid.UUID `json:"client_ids"`
	Reason     string      `json:"reason,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// BookingConfirmedEvent is published when a client confirms a booking.
type BookingConfirmedEvent struct {
	BookingID  uuid.UUID   `json:"booking_id"`
	ClientID   uuid.UUID   `json:"client_id"`
	CoachIDs   []uuid.UUID `json:"coach_ids"`
	NewStatus  string      `json:"new_status"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// BlackoutAddedEvent is published when a coach declares unavailability.
type BlackoutAddedEvent struct {
	BlackoutID uuid.UUID `json:"blackout_id"`
	CoachID    uuid.UUID `json:"coach_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentCompletedEvent arrives from the payment service once a session has
// been paid for.
type PaymentCompletedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
