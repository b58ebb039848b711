package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/coperto/internal/domain"
	"github.com/gosuda/coperto/internal/notify"
)

func sampleReservation(t *testing.T) *domain.Reservation {
	t.Helper()
	d, err := domain.ParseDate("2025-06-10")
	require.NoError(t, err)
	return &domain.Reservation{
		CustomerName:  "Mario Rossi",
		CustomerEmail: "mario@example.com",
		CustomerPhone: "+39 333 1234567",
		Guests:        4,
		HighChairs:    1,
		Date:          d,
		Time:          domain.MustParseClockTime("13:00"),
		Notes:         "window seat",
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("submitted", func(t *testing.T) {
		t.Parallel()

		msg, err := notify.Render(domain.EventReservationSubmitted, "Trattoria", sampleReservation(t), nil)
		require.NoError(t, err)
		assert.Equal(t, "New reservation request: Mario Rossi, 4 guests", msg.Subject)
		assert.Contains(t, msg.Body, "2025-06-10 at 13:00")
		assert.Contains(t, msg.Body, "+1 high chairs")
		assert.Contains(t, msg.Body, "window seat")
	})

	t.Run("confirmed lists tables", func(t *testing.T) {
		t.Parallel()

		msg, err := notify.Render(domain.EventReservationConfirmed, "Trattoria", sampleReservation(t), []string{"T1", "T2"})
		require.NoError(t, err)
		assert.Equal(t, "Your reservation at Trattoria is confirmed", msg.Subject)
		assert.Contains(t, msg.Body, "Table: T1, T2")
	})

	t.Run("confirmed without tables", func(t *testing.T) {
		t.Parallel()

		msg, err := notify.Render(domain.EventReservationConfirmed, "Trattoria", sampleReservation(t), nil)
		require.NoError(t, err)
		assert.NotContains(t, msg.Body, "Table:")
	})

	t.Run("rejected with reason", func(t *testing.T) {
		t.Parallel()

		r := sampleReservation(t)
		r.RejectionReason = "fully booked"
		msg, err := notify.Render(domain.EventReservationRejected, "Trattoria", r, nil)
		require.NoError(t, err)
		assert.Contains(t, msg.Subject, "could not be accepted")
		assert.Contains(t, msg.Body, "Reason: fully booked")
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()

		_, err := notify.Render("reservation.deleted", "Trattoria", sampleReservation(t), nil)
		require.Error(t, err)
	})
}
