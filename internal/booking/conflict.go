package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/domain"
)

// ConflictPolicy decides what a confirmation does when a requested table is
// already held by another confirmed reservation in the same service window.
type ConflictPolicy string

const (
	ConflictReject ConflictPolicy = "reject"
	ConflictWarn   ConflictPolicy = "warn"
	ConflictOff    ConflictPolicy = "off"
)

func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(s); p {
	case ConflictReject, ConflictWarn, ConflictOff:
		return p, nil
	case "":
		return ConflictReject, nil
	default:
		return "", fmt.Errorf("booking: unknown conflict policy %q", s)
	}
}

// Conflict is a table already held by another confirmed reservation.
type Conflict struct {
	TableID       uuid.UUID        `json:"table_id"`
	ReservationID uuid.UUID        `json:"reservation_id"`
	Time          domain.ClockTime `json:"time"`
}

// findConflicts filters bookings down to those sharing a service window with
// a reservation at date/at. When no shift covers at, only bookings at the
// exact same time conflict.
func findConflicts(shifts []*domain.Shift, date time.Time, at domain.ClockTime, self uuid.UUID, bookings []*domain.TableBooking) []Conflict {
	window, covered := domain.CoveringShift(shifts, date, at)
	day := date.Weekday()

	var conflicts []Conflict
	for _, b := range bookings {
		if b.ReservationID == self {
			continue
		}
		same := b.Time == at
		if covered {
			same = window.Covers(day, b.Time)
		}
		if same {
			conflicts = append(conflicts, Conflict{TableID: b.TableID, ReservationID: b.ReservationID, Time: b.Time})
		}
	}
	return conflicts
}

// uniqueIDs drops duplicates keeping first-seen order.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
