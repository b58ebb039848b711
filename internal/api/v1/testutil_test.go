package v1_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/booking"
	"github.com/gosuda/coperto/internal/domain"
	"github.com/gosuda/coperto/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: what the staff middleware chain leaves behind
// ---------------------------------------------------------------------------

func tenantCtx(tenantID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyTenantID, tenantID)
	return ctx
}

func adminCtx(tenantID uuid.UUID) context.Context {
	ctx := tenantCtx(tenantID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, "admin")
	return ctx
}

// operatorCtx is what RequirePlatformAdmin leaves for an admin of the
// operator tenant.
func operatorCtx() context.Context {
	return context.WithValue(adminCtx(fixedTenantID()), middleware.ContextKeyPlatformAdmin, true)
}

func staffCtx(tenantID, userID uuid.UUID) context.Context {
	ctx := tenantCtx(tenantID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, "member")
	return ctx
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tenants      domain.TenantRepository
	settings     domain.ReservationSettingsRepository
	shifts       domain.ShiftRepository
	tables       domain.TableRepository
	reservations domain.ReservationRepository
	audit        domain.AuditRepository
}

func (m *mockDataStore) Tenants() domain.TenantRepository { return m.tenants }
func (m *mockDataStore) ReservationSettings() domain.ReservationSettingsRepository {
	return m.settings
}
func (m *mockDataStore) Shifts() domain.ShiftRepository             { return m.shifts }
func (m *mockDataStore) Tables() domain.TableRepository             { return m.tables }
func (m *mockDataStore) Reservations() domain.ReservationRepository { return m.reservations }
func (m *mockDataStore) Audit() domain.AuditRepository              { return m.audit }

// ---------------------------------------------------------------------------
// Mock TenantRepository
// ---------------------------------------------------------------------------

type mockTenantRepo struct {
	createFunc        func(ctx context.Context, t *domain.Tenant) error
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	getBySlugFunc     func(ctx context.Context, slug string) (*domain.Tenant, error)
	listPaginatedFunc func(ctx context.Context, limit, offset int) ([]*domain.Tenant, error)
}

func (m *mockTenantRepo) Create(ctx context.Context, t *domain.Tenant) error {
	return m.createFunc(ctx, t)
}

func (m *mockTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTenantRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	return m.getBySlugFunc(ctx, slug)
}

func (m *mockTenantRepo) ListPaginated(ctx context.Context, limit, offset int) ([]*domain.Tenant, error) {
	return m.listPaginatedFunc(ctx, limit, offset)
}

// slugTenants returns a tenant repo resolving exactly one slug.
func slugTenants(tenant *domain.Tenant) *mockTenantRepo {
	return &mockTenantRepo{
		getBySlugFunc: func(_ context.Context, slug string) (*domain.Tenant, error) {
			if slug == tenant.Slug {
				return tenant, nil
			}
			return nil, domain.ErrNotFound
		},
	}
}

// ---------------------------------------------------------------------------
// Mock ReservationSettingsRepository
// ---------------------------------------------------------------------------

type mockSettingsRepo struct {
	getFunc    func(ctx context.Context, tenantID uuid.UUID) (*domain.ReservationSettings, error)
	upsertFunc func(ctx context.Context, s *domain.ReservationSettings) error
}

func (m *mockSettingsRepo) Get(ctx context.Context, tenantID uuid.UUID) (*domain.ReservationSettings, error) {
	return m.getFunc(ctx, tenantID)
}

func (m *mockSettingsRepo) Upsert(ctx context.Context, s *domain.ReservationSettings) error {
	return m.upsertFunc(ctx, s)
}

// ---------------------------------------------------------------------------
// Mock ShiftRepository
// ---------------------------------------------------------------------------

type mockShiftRepo struct {
	createFunc     func(ctx context.Context, s *domain.Shift) error
	getByIDFunc    func(ctx context.Context, tenantID, id uuid.UUID) (*domain.Shift, error)
	listFunc       func(ctx context.Context, tenantID uuid.UUID) ([]*domain.Shift, error)
	listActiveFunc func(ctx context.Context, tenantID uuid.UUID) ([]*domain.Shift, error)
	updateFunc     func(ctx context.Context, s *domain.Shift) error
	deleteFunc     func(ctx context.Context, tenantID, id uuid.UUID) error
}

func (m *mockShiftRepo) Create(ctx context.Context, s *domain.Shift) error {
	return m.createFunc(ctx, s)
}

func (m *mockShiftRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Shift, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockShiftRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.Shift, error) {
	return m.listFunc(ctx, tenantID)
}

func (m *mockShiftRepo) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*domain.Shift, error) {
	return m.listActiveFunc(ctx, tenantID)
}

func (m *mockShiftRepo) Update(ctx context.Context, s *domain.Shift) error {
	return m.updateFunc(ctx, s)
}

func (m *mockShiftRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.deleteFunc(ctx, tenantID, id)
}

// ---------------------------------------------------------------------------
// Mock TableRepository
// ---------------------------------------------------------------------------

type mockTableRepo struct {
	createFunc    func(ctx context.Context, t *domain.Table) error
	getByIDFunc   func(ctx context.Context, tenantID, id uuid.UUID) (*domain.Table, error)
	listFunc      func(ctx context.Context, tenantID uuid.UUID) ([]*domain.Table, error)
	listByIDsFunc func(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Table, error)
	updateFunc    func(ctx context.Context, t *domain.Table) error
	deleteFunc    func(ctx context.Context, tenantID, id uuid.UUID) error
}

func (m *mockTableRepo) Create(ctx context.Context, t *domain.Table) error {
	return m.createFunc(ctx, t)
}

func (m *mockTableRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Table, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockTableRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.Table, error) {
	return m.listFunc(ctx, tenantID)
}

func (m *mockTableRepo) ListByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Table, error) {
	return m.listByIDsFunc(ctx, tenantID, ids)
}

func (m *mockTableRepo) LockByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Table, error) {
	return m.listByIDsFunc(ctx, tenantID, ids)
}

func (m *mockTableRepo) Update(ctx context.Context, t *domain.Table) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTableRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.deleteFunc(ctx, tenantID, id)
}

// ---------------------------------------------------------------------------
// Mock ReservationRepository
// ---------------------------------------------------------------------------

type mockReservationRepo struct {
	getByIDFunc func(ctx context.Context, tenantID, id uuid.UUID) (*domain.Reservation, error)
	listFunc    func(ctx context.Context, tenantID uuid.UUID, filter domain.ReservationFilter) ([]*domain.Reservation, error)
}

func (m *mockReservationRepo) Create(context.Context, *domain.Reservation) error {
	panic("not implemented")
}

func (m *mockReservationRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Reservation, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockReservationRepo) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.Reservation, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockReservationRepo) List(ctx context.Context, tenantID uuid.UUID, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	return m.listFunc(ctx, tenantID, filter)
}

func (m *mockReservationRepo) UpdateStatus(context.Context, uuid.UUID, uuid.UUID, domain.ReservationStatus, string) error {
	panic("not implemented")
}

func (m *mockReservationRepo) ReplaceAssignments(context.Context, uuid.UUID, uuid.UUID, []uuid.UUID) error {
	panic("not implemented")
}

func (m *mockReservationRepo) ListTableBookings(context.Context, uuid.UUID, time.Time, []uuid.UUID) ([]*domain.TableBooking, error) {
	panic("not implemented")
}

// ---------------------------------------------------------------------------
// Mock AuditRepository
// ---------------------------------------------------------------------------

type mockAuditRepo struct {
	listFunc           func(ctx context.Context, tenantID uuid.UUID, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
	listByResourceFunc func(ctx context.Context, tenantID uuid.UUID, resource string, resourceID uuid.UUID) ([]*domain.AuditEntry, error)
}

func (m *mockAuditRepo) Record(context.Context, *domain.AuditEntry) error {
	panic("not implemented")
}

func (m *mockAuditRepo) List(ctx context.Context, tenantID uuid.UUID, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	return m.listFunc(ctx, tenantID, filter)
}

func (m *mockAuditRepo) ListByResource(ctx context.Context, tenantID uuid.UUID, resource string, resourceID uuid.UUID) ([]*domain.AuditEntry, error) {
	return m.listByResourceFunc(ctx, tenantID, resource, resourceID)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	createUserFunc   func(ctx context.Context, tenantID uuid.UUID, email, password, name, role string) (*domain.User, error)
	loginFunc        func(ctx context.Context, tenantID uuid.UUID, email, password string) (string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) CreateUser(ctx context.Context, tenantID uuid.UUID, email, password, name, role string) (*domain.User, error) {
	return m.createUserFunc(ctx, tenantID, email, password, name, role)
}

func (m *mockAuthService) Login(ctx context.Context, tenantID uuid.UUID, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, tenantID, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Mock BookingService / AvailabilityChecker
// ---------------------------------------------------------------------------

type mockBookingService struct {
	submitFunc       func(ctx context.Context, slug string, in domain.ReservationInput) (*domain.Reservation, error)
	updateStatusFunc func(ctx context.Context, actorID, tenantID, reservationID uuid.UUID, change booking.StatusChange) (*booking.Outcome, error)
}

func (m *mockBookingService) Submit(ctx context.Context, slug string, in domain.ReservationInput) (*domain.Reservation, error) {
	return m.submitFunc(ctx, slug, in)
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, actorID, tenantID, reservationID uuid.UUID, change booking.StatusChange) (*booking.Outcome, error) {
	return m.updateStatusFunc(ctx, actorID, tenantID, reservationID, change)
}

type mockChecker struct {
	checkFunc func(ctx context.Context, tenantID uuid.UUID, date time.Time, at domain.ClockTime, guests, highChairs int) (*booking.Availability, error)
}

func (m *mockChecker) Check(ctx context.Context, tenantID uuid.UUID, date time.Time, at domain.ClockTime, guests, highChairs int) (*booking.Availability, error) {
	return m.checkFunc(ctx, tenantID, date, at, guests, highChairs)
}

// ---------------------------------------------------------------------------
// Deterministic UUIDs for stable tests
// ---------------------------------------------------------------------------

func fixedTenantID() uuid.UUID {
	return uuid.MustParse("00000000-0000-0000-0000-000000000001")
}

func fixedTenantID2() uuid.UUID {
	return uuid.MustParse("00000000-0000-0000-0000-000000000002")
}
