package booking_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/domain"
)

// ---------------------------------------------------------------------------
// In-memory store: one mutex, InTx snapshots state and restores on error.
// ---------------------------------------------------------------------------

type assignment struct {
	reservationID uuid.UUID
	tableID       uuid.UUID
}

type memState struct {
	tenants      map[uuid.UUID]*domain.Tenant
	settings     map[uuid.UUID]*domain.ReservationSettings
	shifts       map[uuid.UUID]*domain.Shift
	tables       map[uuid.UUID]*domain.Table
	reservations map[uuid.UUID]*domain.Reservation
	assignments  []assignment
	audit        []*domain.AuditEntry
}

func (s memState) clone() memState {
	c := memState{
		tenants:      maps.Clone(s.tenants),
		settings:     maps.Clone(s.settings),
		shifts:       maps.Clone(s.shifts),
		tables:       maps.Clone(s.tables),
		reservations: make(map[uuid.UUID]*domain.Reservation, len(s.reservations)),
		assignments:  slices.Clone(s.assignments),
		audit:        slices.Clone(s.audit),
	}
	for id, r := range s.reservations {
		cp := *r
		c.reservations[id] = &cp
	}
	return c
}

type memStore struct {
	mu    sync.Mutex
	state memState

	// failOn makes the named operation fail, e.g. "UpdateStatus".
	failOn string
}

var errInjected = errors.New("injected failure")

func newMemStore() *memStore {
	return &memStore{state: memState{
		tenants:      map[uuid.UUID]*domain.Tenant{},
		settings:     map[uuid.UUID]*domain.ReservationSettings{},
		shifts:       map[uuid.UUID]*domain.Shift{},
		tables:       map[uuid.UUID]*domain.Table{},
		reservations: map[uuid.UUID]*domain.Reservation{},
	}}
}

func (m *memStore) InTx(_ context.Context, fn func(tx domain.Tx) error) error {
	m.mu.Lock()
	snapshot := m.state.clone()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.state = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) fail(op string) error {
	if m.failOn == op {
		return errInjected
	}
	return nil
}

func (m *memStore) Tenants() domain.TenantRepository                          { return memTenants{m} }
func (m *memStore) Reservations() domain.ReservationRepository                { return memReservations{m} }
func (m *memStore) Tables() domain.TableRepository                            { return memTables{m} }
func (m *memStore) Shifts() domain.ShiftRepository                            { return memShifts{m} }
func (m *memStore) ReservationSettings() domain.ReservationSettingsRepository { return memSettings{m} }
func (m *memStore) Audit() domain.AuditRepository                             { return memAudit{m} }

// assignedTables returns the table ids assigned to a reservation.
func (m *memStore) assignedTables(reservationID uuid.UUID) []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for _, a := range m.state.assignments {
		if a.reservationID == reservationID {
			ids = append(ids, a.tableID)
		}
	}
	return ids
}

func (m *memStore) reservation(id uuid.UUID) *domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.state.reservations[id]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

func (m *memStore) auditEntries() []*domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.audit)
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

type memTenants struct{ m *memStore }

func (r memTenants) Create(_ context.Context, t *domain.Tenant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.state.tenants[t.ID] = t
	return nil
}

func (r memTenants) GetByID(_ context.Context, id uuid.UUID) (*domain.Tenant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if t, ok := r.m.state.tenants[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (r memTenants) GetBySlug(_ context.Context, slug string) (*domain.Tenant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, t := range r.m.state.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memTenants) ListPaginated(context.Context, int, int) ([]*domain.Tenant, error) {
	return nil, nil
}

type memSettings struct{ m *memStore }

func (r memSettings) Get(_ context.Context, tenantID uuid.UUID) (*domain.ReservationSettings, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s, ok := r.m.state.settings[tenantID]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (r memSettings) Upsert(_ context.Context, s *domain.ReservationSettings) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.state.settings[s.TenantID] = s
	return nil
}

type memShifts struct{ m *memStore }

func (r memShifts) Create(_ context.Context, s *domain.Shift) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.state.shifts[s.ID] = s
	return nil
}

func (r memShifts) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Shift, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s, ok := r.m.state.shifts[id]; ok && s.TenantID == tenantID {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (r memShifts) List(_ context.Context, tenantID uuid.UUID) ([]*domain.Shift, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.Shift
	for _, s := range r.m.state.shifts {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memShifts) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*domain.Shift, error) {
	all, _ := r.List(ctx, tenantID)
	return slices.DeleteFunc(all, func(s *domain.Shift) bool { return !s.IsActive }), nil
}

func (r memShifts) Update(context.Context, *domain.Shift) error        { return nil }
func (r memShifts) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type memTables struct{ m *memStore }

func (r memTables) Create(_ context.Context, t *domain.Table) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.state.tables[t.ID] = t
	return nil
}

func (r memTables) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Table, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if t, ok := r.m.state.tables[id]; ok && t.TenantID == tenantID {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (r memTables) List(_ context.Context, tenantID uuid.UUID) ([]*domain.Table, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.Table
	for _, t := range r.m.state.tables {
		if t.TenantID == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r memTables) ListByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Table, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.Table
	for _, id := range ids {
		if t, ok := r.m.state.tables[id]; ok && t.TenantID == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r memTables) LockByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Table, error) {
	return r.ListByIDs(ctx, tenantID, ids)
}

func (r memTables) Update(context.Context, *domain.Table) error        { return nil }
func (r memTables) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type memReservations struct{ m *memStore }

func (r memReservations) Create(_ context.Context, res *domain.Reservation) error {
	if err := r.m.fail("Create"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *res
	r.m.state.reservations[res.ID] = &cp
	return nil
}

func (r memReservations) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Reservation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	res, ok := r.m.state.reservations[id]
	if !ok || res.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	cp := *res
	cp.TableIDs = nil
	for _, a := range r.m.state.assignments {
		if a.reservationID == id {
			cp.TableIDs = append(cp.TableIDs, a.tableID)
		}
	}
	return &cp, nil
}

func (r memReservations) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.Reservation, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r memReservations) List(_ context.Context, tenantID uuid.UUID, _ domain.ReservationFilter) ([]*domain.Reservation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.Reservation
	for _, res := range r.m.state.reservations {
		if res.TenantID == tenantID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r memReservations) UpdateStatus(_ context.Context, tenantID, id uuid.UUID, status domain.ReservationStatus, reason string) error {
	if err := r.m.fail("UpdateStatus"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	res, ok := r.m.state.reservations[id]
	if !ok || res.TenantID != tenantID {
		return domain.ErrNotFound
	}
	res.Status = status
	res.RejectionReason = reason
	res.UpdatedAt = time.Now()
	return nil
}

func (r memReservations) ReplaceAssignments(_ context.Context, _ uuid.UUID, reservationID uuid.UUID, tableIDs []uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.state.assignments = slices.DeleteFunc(r.m.state.assignments, func(a assignment) bool {
		return a.reservationID == reservationID
	})
	for _, id := range tableIDs {
		r.m.state.assignments = append(r.m.state.assignments, assignment{reservationID: reservationID, tableID: id})
	}
	return nil
}

func (r memReservations) ListTableBookings(_ context.Context, tenantID uuid.UUID, date time.Time, tableIDs []uuid.UUID) ([]*domain.TableBooking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.TableBooking
	for _, a := range r.m.state.assignments {
		res := r.m.state.reservations[a.reservationID]
		if res.TenantID != tenantID || res.Status != domain.ReservationConfirmed || !res.Date.Equal(date) {
			continue
		}
		if slices.Contains(tableIDs, a.tableID) {
			out = append(out, &domain.TableBooking{ReservationID: res.ID, TableID: a.tableID, Time: res.Time})
		}
	}
	return out, nil
}

type memAudit struct{ m *memStore }

func (r memAudit) Record(_ context.Context, e *domain.AuditEntry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.state.audit = append(r.m.state.audit, e)
	return nil
}

func (r memAudit) List(context.Context, uuid.UUID, domain.AuditFilter) ([]*domain.AuditEntry, error) {
	return nil, nil
}

func (r memAudit) ListByResource(context.Context, uuid.UUID, string, uuid.UUID) ([]*domain.AuditEntry, error) {
	return nil, nil
}

// ---------------------------------------------------------------------------
// Event recorder
// ---------------------------------------------------------------------------

type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.ReservationEvent
	err    error
}

func (p *recordingPublisher) PublishReservationEvent(_ context.Context, ev *domain.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []domain.ReservationEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ReservationEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
