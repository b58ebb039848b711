package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationEventType string

const (
	EventReservationSubmitted ReservationEventType = "reservation.submitted"
	EventReservationConfirmed ReservationEventType = "reservation.confirmed"
	EventReservationRejected  ReservationEventType = "reservation.rejected"
)

// ReservationEvent is emitted after a reservation state change has been
// committed. Consumers must treat it as a notification, not as state.
type ReservationEvent struct {
	ID            uuid.UUID            `json:"id"`
	Type          ReservationEventType `json:"type"`
	TenantID      uuid.UUID            `json:"tenant_id"`
	ReservationID uuid.UUID            `json:"reservation_id"`
	Status        ReservationStatus    `json:"status"`
	TableIDs      []uuid.UUID          `json:"table_ids,omitempty"`
	Reason        string               `json:"reason,omitempty"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// EventTypeForStatus maps a reservation status to the event announcing it.
func EventTypeForStatus(s ReservationStatus) ReservationEventType {
	switch s {
	case ReservationConfirmed:
		return EventReservationConfirmed
	case ReservationRejected:
		return EventReservationRejected
	default:
		return EventReservationSubmitted
	}
}

// NewReservationEvent snapshots r into an event of the type matching its status.
func NewReservationEvent(r *Reservation, now time.Time) *ReservationEvent {
	return &ReservationEvent{
		ID:            uuid.New(),
		Type:          EventTypeForStatus(r.Status),
		TenantID:      r.TenantID,
		ReservationID: r.ID,
		Status:        r.Status,
		TableIDs:      r.TableIDs,
		Reason:        r.RejectionReason,
		OccurredAt:    now,
	}
}
