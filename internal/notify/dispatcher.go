package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/coperto/internal/domain"
)

// Reader is the read-only store surface the dispatcher needs.
type Reader interface {
	Tenants() domain.TenantRepository
	Reservations() domain.ReservationRepository
	Tables() domain.TableRepository
	ReservationSettings() domain.ReservationSettingsRepository
}

// Dispatcher turns reservation events into notifications: the owner hears
// about new requests, the customer about status changes.
type Dispatcher struct {
	store   Reader
	senders *Registry
}

func NewDispatcher(store Reader, senders *Registry) *Dispatcher {
	return &Dispatcher{store: store, senders: senders}
}

// HandleEvent re-reads current state, renders and sends. It never changes
// reservation state; a returned error is for logging only.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev *domain.ReservationEvent) error {
	r, err := d.store.Reservations().GetByID(ctx, ev.TenantID, ev.ReservationID)
	if err != nil {
		return fmt.Errorf("notify.Dispatcher.HandleEvent: reservation: %w", err)
	}

	tenant, err := d.store.Tenants().GetByID(ctx, ev.TenantID)
	if err != nil {
		return fmt.Errorf("notify.Dispatcher.HandleEvent: tenant: %w", err)
	}

	switch ev.Type {
	case domain.EventReservationSubmitted:
		return d.notifyOwner(ctx, tenant, r)
	case domain.EventReservationConfirmed, domain.EventReservationRejected:
		return d.notifyCustomer(ctx, ev, tenant, r)
	default:
		log.Debug().Str("event", string(ev.Type)).Msg("notify: ignoring event")
		return nil
	}
}

func (d *Dispatcher) notifyOwner(ctx context.Context, tenant *domain.Tenant, r *domain.Reservation) error {
	settings, err := d.store.ReservationSettings().Get(ctx, tenant.ID)
	if errors.Is(err, domain.ErrNotFound) {
		settings = domain.DefaultReservationSettings(tenant.ID)
	} else if err != nil {
		return fmt.Errorf("notify.Dispatcher.notifyOwner: settings: %w", err)
	}

	msg, err := Render(domain.EventReservationSubmitted, tenant.Name, r, nil)
	if err != nil {
		return fmt.Errorf("notify.Dispatcher.notifyOwner: %w", err)
	}

	targets := map[string]string{
		ChannelEmail: settings.NotificationEmail,
		ChannelSlack: settings.SlackChannel,
	}

	var errs []error
	sent := 0
	for _, channel := range []string{ChannelEmail, ChannelSlack} {
		to := targets[channel]
		if to == "" {
			continue
		}
		if err := d.send(ctx, channel, to, msg); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}

	if sent == 0 && len(errs) == 0 {
		log.Info().
			Str("tenant_id", tenant.ID.String()).
			Str("reservation_id", r.ID.String()).
			Msg("notify: no owner notification target configured")
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("notify.Dispatcher.notifyOwner: %w", err)
	}
	return nil
}

func (d *Dispatcher) notifyCustomer(ctx context.Context, ev *domain.ReservationEvent, tenant *domain.Tenant, r *domain.Reservation) error {
	// A later transition superseded this one; its own event will notify.
	if r.Status != ev.Status {
		log.Debug().
			Str("reservation_id", r.ID.String()).
			Str("event_status", string(ev.Status)).
			Str("current_status", string(r.Status)).
			Msg("notify: skipping stale event")
		return nil
	}

	var tableNames []string
	if ev.Type == domain.EventReservationConfirmed && len(r.TableIDs) > 0 {
		names, err := d.tableNames(ctx, tenant.ID, r.TableIDs)
		if err != nil {
			return fmt.Errorf("notify.Dispatcher.notifyCustomer: %w", err)
		}
		tableNames = names
	}

	msg, err := Render(ev.Type, tenant.Name, r, tableNames)
	if err != nil {
		return fmt.Errorf("notify.Dispatcher.notifyCustomer: %w", err)
	}

	if err := d.send(ctx, ChannelEmail, r.CustomerEmail, msg); err != nil {
		return fmt.Errorf("notify.Dispatcher.notifyCustomer: %w", err)
	}
	return nil
}

func (d *Dispatcher) tableNames(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]string, error) {
	tables, err := d.store.Tables().ListByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	return names, nil
}

func (d *Dispatcher) send(ctx context.Context, channel, to string, msg Message) error {
	s, ok := d.senders.Get(channel)
	if !ok {
		log.Warn().Str("channel", channel).Msg("notify: no sender registered")
		return nil
	}
	if err := s.Send(ctx, to, msg); err != nil {
		return fmt.Errorf("%s to %s: %w", channel, to, err)
	}
	log.Info().Str("channel", channel).Str("subject", msg.Subject).Msg("notify: sent")
	return nil
}
