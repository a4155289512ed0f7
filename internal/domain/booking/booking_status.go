package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusRequested                 BookingStatus = "requested"
	StatusPartiallyAccepted         BookingStatus = "partially_accepted"
	StatusPendingClientConfirmation BookingStatus = "pending_client_confirmation"
	StatusPartiallyConfirmed        BookingStatus = "partially_confirmed"
	StatusConfirmed                 BookingStatus = "confirmed"
	StatusRejected                  BookingStatus = "rejected"
)

// validTransitions defines the state machine for booking status transitions.
// The partial states loop on themselves while further parties act.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusRequested:                 {StatusPartiallyAccepted, StatusPendingClientConfirmation, StatusRejected},
	StatusPartiallyAccepted:         {StatusPartiallyAccepted, StatusPendingClientConfirmation, StatusRejected},
	StatusPendingClientConfirmation: {StatusPartiallyConfirmed, StatusConfirmed, StatusRejected},
	StatusPartiallyConfirmed:        {StatusPartiallyConfirmed, StatusConfirmed, StatusRejected},
	StatusConfirmed:                 {},
	StatusRejected:                  {},
}

// activeStatuses are the statuses that occupy a coach's calendar. Rejected
// bookings never block a slot.
var activeStatuses = []BookingStatus{
	StatusRequested,
	StatusPartiallyAccepted,
	StatusPendingClientConfirmation,
	StatusPartiallyConfirmed,
	StatusConfirmed,
}

// ActiveStatuses returns the statuses that occupy a coach's calendar.
func ActiveStatuses() []BookingStatus {
	out := make([]BookingStatus, len(activeStatuses))
	copy(out, activeStatuses)
	return out
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsActive returns true if a booking in this status occupies calendar time.
func (s BookingStatus) IsActive() bool {
	return s.IsValid() && s != StatusRejected
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
