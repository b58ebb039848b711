package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gosuda/coperto/internal/domain"
)

// TenantRepo stores restaurant accounts. The slug is the public key used by
// the booking widget.
type TenantRepo struct {
	db dbtx
}

func NewTenantRepo(db dbtx) *TenantRepo {
	return &TenantRepo{db: db}
}

const tenantColumns = `id, name, slug, created_at, updated_at`

func (r *TenantRepo) Create(ctx context.Context, t *domain.Tenant) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tenants (`+tenantColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Name, t.Slug, t.CreatedAt, t.UpdatedAt,
	)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("tenantRepo.Create: slug %q: %w", t.Slug, domain.ErrConflict)
	case err != nil:
		return fmt.Errorf("tenantRepo.Create: %w", err)
	}
	return nil
}

func (r *TenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return r.one(ctx, "tenantRepo.GetByID", `id = $1`, id)
}

func (r *TenantRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	return r.one(ctx, "tenantRepo.GetBySlug", `slug = $1`, slug)
}

func (r *TenantRepo) ListPaginated(ctx context.Context, limit, offset int) ([]*domain.Tenant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("tenantRepo.ListPaginated: %w", err)
	}

	tenants, err := pgx.CollectRows(rows, scanTenant)
	if err != nil {
		return nil, fmt.Errorf("tenantRepo.ListPaginated: %w", err)
	}
	return tenants, nil
}

func (r *TenantRepo) one(ctx context.Context, op, where string, arg any) (*domain.Tenant, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, scanTenant)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func scanTenant(row pgx.CollectableRow) (*domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}
