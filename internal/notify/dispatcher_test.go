package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/coperto/internal/domain"
	"github.com/gosuda/coperto/internal/notify"
)

// --- store fakes: embed the interface, override what the dispatcher calls ---

type fakeTenants struct {
	domain.TenantRepository
	tenant *domain.Tenant
}

func (f fakeTenants) GetByID(_ context.Context, id uuid.UUID) (*domain.Tenant, error) {
	if f.tenant == nil || f.tenant.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.tenant, nil
}

type fakeReservations struct {
	domain.ReservationRepository
	res *domain.Reservation
}

func (f fakeReservations) GetByID(_ context.Context, _, id uuid.UUID) (*domain.Reservation, error) {
	if f.res == nil || f.res.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.res, nil
}

type fakeTables struct {
	domain.TableRepository
	tables []*domain.Table
}

func (f fakeTables) ListByIDs(context.Context, uuid.UUID, []uuid.UUID) ([]*domain.Table, error) {
	return f.tables, nil
}

type fakeSettings struct {
	domain.ReservationSettingsRepository
	settings *domain.ReservationSettings
}

func (f fakeSettings) Get(context.Context, uuid.UUID) (*domain.ReservationSettings, error) {
	if f.settings == nil {
		return nil, domain.ErrNotFound
	}
	return f.settings, nil
}

type fakeReader struct {
	tenants      fakeTenants
	reservations fakeReservations
	tables       fakeTables
	settings     fakeSettings
}

func (f *fakeReader) Tenants() domain.TenantRepository                          { return f.tenants }
func (f *fakeReader) Reservations() domain.ReservationRepository                { return f.reservations }
func (f *fakeReader) Tables() domain.TableRepository                            { return f.tables }
func (f *fakeReader) ReservationSettings() domain.ReservationSettingsRepository { return f.settings }

type dispatcherFixture struct {
	reader *fakeReader
	email  *mockSender
	slack  *mockSender
	d      *notify.Dispatcher
	res    *domain.Reservation
}

func newDispatcherFixture(t *testing.T, status domain.ReservationStatus) *dispatcherFixture {
	t.Helper()

	tenant := &domain.Tenant{ID: uuid.New(), Name: "Trattoria", Slug: "trattoria"}
	res := sampleReservation(t)
	res.ID = uuid.New()
	res.TenantID = tenant.ID
	res.Status = status

	f := &dispatcherFixture{
		reader: &fakeReader{
			tenants:      fakeTenants{tenant: tenant},
			reservations: fakeReservations{res: res},
			settings: fakeSettings{settings: &domain.ReservationSettings{
				TenantID: tenant.ID, IsActive: true,
				NotificationEmail: "owner@trattoria.it", SlackChannel: "C0123",
			}},
		},
		email: &mockSender{channel: notify.ChannelEmail},
		slack: &mockSender{channel: notify.ChannelSlack},
		res:   res,
	}

	reg := notify.NewRegistry()
	reg.Register(f.email)
	reg.Register(f.slack)
	f.d = notify.NewDispatcher(f.reader, reg)
	return f
}

func (f *dispatcherFixture) event(typ domain.ReservationEventType) *domain.ReservationEvent {
	ev := domain.NewReservationEvent(f.res, f.res.CreatedAt)
	ev.Type = typ
	return ev
}

func TestDispatcher_SubmittedNotifiesOwner(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t, domain.ReservationPending)
	require.NoError(t, f.d.HandleEvent(t.Context(), f.event(domain.EventReservationSubmitted)))

	emails := f.email.messages()
	require.Len(t, emails, 1)
	assert.Equal(t, "owner@trattoria.it", emails[0].to)
	assert.Contains(t, emails[0].msg.Subject, "New reservation request")

	slacks := f.slack.messages()
	require.Len(t, slacks, 1)
	assert.Equal(t, "C0123", slacks[0].to)
}

func TestDispatcher_SubmittedWithoutTargets(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t, domain.ReservationPending)
	f.reader.settings.settings = nil

	require.NoError(t, f.d.HandleEvent(t.Context(), f.event(domain.EventReservationSubmitted)))
	assert.Empty(t, f.email.messages())
	assert.Empty(t, f.slack.messages())
}

func TestDispatcher_ConfirmedNotifiesCustomer(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t, domain.ReservationConfirmed)
	f.res.TableIDs = []uuid.UUID{uuid.New()}
	f.reader.tables.tables = []*domain.Table{{ID: f.res.TableIDs[0], Name: "Terrace 4"}}

	require.NoError(t, f.d.HandleEvent(t.Context(), f.event(domain.EventReservationConfirmed)))

	emails := f.email.messages()
	require.Len(t, emails, 1)
	assert.Equal(t, "mario@example.com", emails[0].to)
	assert.Contains(t, emails[0].msg.Body, "Terrace 4")
	assert.Empty(t, f.slack.messages())
}

func TestDispatcher_RejectedNotifiesCustomer(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t, domain.ReservationRejected)
	f.res.RejectionReason = "closed for a private event"

	require.NoError(t, f.d.HandleEvent(t.Context(), f.event(domain.EventReservationRejected)))

	emails := f.email.messages()
	require.Len(t, emails, 1)
	assert.Contains(t, emails[0].msg.Body, "closed for a private event")
}

func TestDispatcher_StaleEventSkipped(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t, domain.ReservationConfirmed)
	ev := f.event(domain.EventReservationRejected)
	ev.Status = domain.ReservationRejected

	require.NoError(t, f.d.HandleEvent(t.Context(), ev))
	assert.Empty(t, f.email.messages())
}

func TestDispatcher_SendFailureIsReported(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t, domain.ReservationPending)
	boom := errors.New("smtp down")
	f.email.err = boom

	err := f.d.HandleEvent(t.Context(), f.event(domain.EventReservationSubmitted))
	require.ErrorIs(t, err, boom)
	// The other channel still went out.
	assert.Len(t, f.slack.messages(), 1)
}

func TestDispatcher_MissingReservation(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t, domain.ReservationPending)
	ev := f.event(domain.EventReservationSubmitted)
	ev.ReservationID = uuid.New()

	err := f.d.HandleEvent(t.Context(), ev)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.email.messages())
}

func TestDispatcher_MissingSenderIsSkipped(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t, domain.ReservationConfirmed)
	d := notify.NewDispatcher(f.reader, notify.NewRegistry())

	require.NoError(t, d.HandleEvent(t.Context(), f.event(domain.EventReservationConfirmed)))
}
