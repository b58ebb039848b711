package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/coperto/internal/domain"
)

// Store is the persistence surface of the booking service.
type Store interface {
	domain.Transactor
	Catalog
	Tenants() domain.TenantRepository
	Reservations() domain.ReservationRepository
	Audit() domain.AuditRepository
}

// EventPublisher announces committed reservation changes.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, ev *domain.ReservationEvent) error
}

type Options struct {
	ConflictPolicy ConflictPolicy
	// RequireShift rejects public submissions outside every active shift.
	RequireShift bool
	Now          func() time.Time
}

// Service owns reservation state changes: public submission and the staff
// confirm/reject transitions.
type Service struct {
	store        Store
	events       EventPublisher
	policy       ConflictPolicy
	requireShift bool
	now          func() time.Time
}

func NewService(store Store, events EventPublisher, opts Options) *Service {
	if opts.ConflictPolicy == "" {
		opts.ConflictPolicy = ConflictReject
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:        store,
		events:       events,
		policy:       opts.ConflictPolicy,
		requireShift: opts.RequireShift,
		now:          opts.Now,
	}
}

// StatusChange is a staff request to move a reservation to Status.
type StatusChange struct {
	Status   domain.ReservationStatus
	TableIDs []uuid.UUID
	Reason   string
}

// Outcome is the committed reservation plus any table conflicts that were
// tolerated under the warn policy.
type Outcome struct {
	Reservation *domain.Reservation
	Conflicts   []Conflict
}

// Submit stores a public reservation request as pending. Only the shape of
// the input is validated unless RequireShift is set.
func (s *Service) Submit(ctx context.Context, slug string, in domain.ReservationInput) (*domain.Reservation, error) {
	tenant, err := s.store.Tenants().GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("booking.Service.Submit: tenant: %w", err)
	}

	settings, err := loadSettings(ctx, s.store.ReservationSettings(), tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("booking.Service.Submit: %w", err)
	}
	if !settings.IsActive {
		return nil, fmt.Errorf("booking.Service.Submit: reservations disabled: %w", domain.ErrForbidden)
	}

	r, err := domain.NewReservation(tenant.ID, in, s.now())
	if err != nil {
		return nil, fmt.Errorf("booking.Service.Submit: %w", err)
	}

	if s.requireShift {
		shifts, err := s.store.Shifts().ListActive(ctx, tenant.ID)
		if err != nil {
			return nil, fmt.Errorf("booking.Service.Submit: shifts: %w", err)
		}
		if !domain.IsBookable(shifts, r.Date, r.Time) {
			return nil, fmt.Errorf("booking.Service.Submit: %s %s outside opening hours: %w",
				r.DateString(), r.Time, domain.ErrInvalidInput)
		}
	}

	err = s.store.InTx(ctx, func(tx domain.Tx) error {
		if err := tx.Reservations().Create(ctx, r); err != nil {
			return err
		}
		return tx.Audit().Record(ctx, s.auditEntry(r, domain.ActorPublic, "", "", nil))
	})
	if err != nil {
		return nil, fmt.Errorf("booking.Service.Submit: %w", err)
	}

	s.publish(ctx, r)
	return r, nil
}

// UpdateStatus dispatches a staff status change to Confirm or Reject.
func (s *Service) UpdateStatus(ctx context.Context, actorID, tenantID, reservationID uuid.UUID, change StatusChange) (*Outcome, error) {
	switch change.Status {
	case domain.ReservationConfirmed:
		return s.Confirm(ctx, actorID, tenantID, reservationID, change.TableIDs)
	case domain.ReservationRejected:
		return s.Reject(ctx, actorID, tenantID, reservationID, change.Reason)
	default:
		return nil, fmt.Errorf("booking.Service.UpdateStatus: status %q: %w", change.Status, domain.ErrInvalidTransition)
	}
}

// Confirm replaces the reservation's table assignments with tableIDs and
// marks it confirmed, in one transaction. An empty tableIDs is valid and
// leaves the reservation without tables.
func (s *Service) Confirm(ctx context.Context, actorID, tenantID, reservationID uuid.UUID, tableIDs []uuid.UUID) (*Outcome, error) {
	ids := uniqueIDs(tableIDs)
	out := &Outcome{}

	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		r, err := tx.Reservations().GetForUpdate(ctx, tenantID, reservationID)
		if err != nil {
			return err
		}
		from := r.Status
		if !from.ValidTransition(domain.ReservationConfirmed) {
			return fmt.Errorf("%s -> %s: %w", from, domain.ReservationConfirmed, domain.ErrInvalidTransition)
		}

		if len(ids) > 0 {
			conflicts, err := s.checkTables(ctx, tx, r, ids)
			if err != nil {
				return err
			}
			out.Conflicts = conflicts
		}

		if err := tx.Reservations().ReplaceAssignments(ctx, tenantID, reservationID, ids); err != nil {
			return err
		}
		if err := tx.Reservations().UpdateStatus(ctx, tenantID, reservationID, domain.ReservationConfirmed, ""); err != nil {
			return err
		}

		r.Status = domain.ReservationConfirmed
		r.RejectionReason = ""
		r.TableIDs = ids
		r.UpdatedAt = s.now()
		out.Reservation = r

		details := map[string]any{"table_ids": ids}
		if len(out.Conflicts) > 0 {
			details["conflicts"] = out.Conflicts
		}
		return tx.Audit().Record(ctx, s.auditEntry(r, domain.ActorUser, actorID.String(), from, details))
	})
	if err != nil {
		return nil, fmt.Errorf("booking.Service.Confirm: %w", err)
	}

	if len(out.Conflicts) > 0 {
		log.Warn().
			Str("tenant_id", tenantID.String()).
			Str("reservation_id", reservationID.String()).
			Int("conflicts", len(out.Conflicts)).
			Msg("booking: confirmed with double-booked tables")
	}

	s.publish(ctx, out.Reservation)
	return out, nil
}

// Reject marks the reservation rejected. Existing table assignments are
// left untouched.
func (s *Service) Reject(ctx context.Context, actorID, tenantID, reservationID uuid.UUID, reason string) (*Outcome, error) {
	out := &Outcome{}

	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		r, err := tx.Reservations().GetForUpdate(ctx, tenantID, reservationID)
		if err != nil {
			return err
		}
		from := r.Status
		if !from.ValidTransition(domain.ReservationRejected) {
			return fmt.Errorf("%s -> %s: %w", from, domain.ReservationRejected, domain.ErrInvalidTransition)
		}

		if err := tx.Reservations().UpdateStatus(ctx, tenantID, reservationID, domain.ReservationRejected, reason); err != nil {
			return err
		}

		r.Status = domain.ReservationRejected
		r.RejectionReason = reason
		r.UpdatedAt = s.now()
		out.Reservation = r

		details := map[string]any{}
		if reason != "" {
			details["reason"] = reason
		}
		return tx.Audit().Record(ctx, s.auditEntry(r, domain.ActorUser, actorID.String(), from, details))
	})
	if err != nil {
		return nil, fmt.Errorf("booking.Service.Reject: %w", err)
	}

	s.publish(ctx, out.Reservation)
	return out, nil
}

// checkTables locks the requested tables, verifies they are the tenant's
// active tables and applies the conflict policy.
func (s *Service) checkTables(ctx context.Context, tx domain.Tx, r *domain.Reservation, ids []uuid.UUID) ([]Conflict, error) {
	tables, err := tx.Tables().LockByIDs(ctx, r.TenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("lock tables: %w", err)
	}
	active := make(map[uuid.UUID]bool, len(tables))
	for _, t := range tables {
		active[t.ID] = t.IsActive
	}
	for _, id := range ids {
		if !active[id] {
			return nil, fmt.Errorf("table %s: %w", id, domain.ErrUnknownTable)
		}
	}

	if s.policy == ConflictOff {
		return nil, nil
	}

	shifts, err := tx.Shifts().ListActive(ctx, r.TenantID)
	if err != nil {
		return nil, fmt.Errorf("shifts: %w", err)
	}
	bookings, err := tx.Reservations().ListTableBookings(ctx, r.TenantID, r.Date, ids)
	if err != nil {
		return nil, fmt.Errorf("table bookings: %w", err)
	}

	conflicts := findConflicts(shifts, r.Date, r.Time, r.ID, bookings)
	if len(conflicts) > 0 && s.policy == ConflictReject {
		return nil, fmt.Errorf("table %s held by reservation %s: %w",
			conflicts[0].TableID, conflicts[0].ReservationID, domain.ErrTableConflict)
	}
	return conflicts, nil
}

func (s *Service) auditEntry(r *domain.Reservation, actorType, actorID string, from domain.ReservationStatus, details map[string]any) *domain.AuditEntry {
	if details == nil {
		details = map[string]any{}
	}
	if from != "" {
		details["from"] = string(from)
	}
	details["to"] = string(r.Status)

	return &domain.AuditEntry{
		ID:         uuid.New(),
		TenantID:   r.TenantID,
		ActorType:  actorType,
		ActorID:    actorID,
		Action:     string(domain.EventTypeForStatus(r.Status)),
		Resource:   domain.ResourceReservation,
		ResourceID: r.ID,
		Details:    details,
		CreatedAt:  s.now(),
	}
}

// publish emits the post-commit event. Failures are logged and never undo
// the committed change.
func (s *Service) publish(ctx context.Context, r *domain.Reservation) {
	if s.events == nil {
		return
	}
	ev := domain.NewReservationEvent(r, s.now())
	if err := s.events.PublishReservationEvent(ctx, ev); err != nil {
		log.Error().Err(err).
			Str("tenant_id", r.TenantID.String()).
			Str("reservation_id", r.ID.String()).
			Str("event", string(ev.Type)).
			Msg("booking: publish event failed")
	}
}
