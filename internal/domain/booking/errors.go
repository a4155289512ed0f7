package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coachbook/service-scheduling/internal/platform/domain"
)

// NewSlotUnavailableError indicates the requested range conflicts with an
// active booking or blackout for the coach. The caller must re-fetch
// availability before retrying.
func NewSlotUnavailableError(coachID uuid.UUID, start, end time.Time) *domain.DomainError {
	return domain.NewError(domain.CodeSlotUnavailable,
		fmt.Sprintf("coach %s is not available between %s and %s",
			coachID, start.Format(time.RFC3339), end.Format(time.RFC3339)))
}

// NewBookingTerminalError indicates the booking has reached a terminal state
// and permits no further transitions.
func NewBookingTerminalError(status BookingStatus) *domain.DomainError {
	return domain.NewError(domain.CodeBookingTerminal,
		fmt.Sprintf("booking is in terminal status %s", status))
}

// NewNotReadyForConfirmationError indicates a client tried to confirm before
// every coach accepted.
func NewNotReadyForConfirmationError(status BookingStatus) *domain.DomainError {
	return domain.NewError(domain.CodeNotReadyForConfirmation,
		fmt.Sprintf("booking in status %s is not ready for client confirmation", status))
}

// NewUnknownParticipantError indicates the acting party is not among the
// booking's coaches or clients.
func NewUnknownParticipantError(partyID uuid.UUID) *domain.DomainError {
	return domain.NewError(domain.CodeUnknownParticipant,
		fmt.Sprintf("party %s is not a participant of this booking", partyID))
}
