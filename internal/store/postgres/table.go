package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gosuda/coperto/internal/domain"
)

type TableRepo struct {
	db dbtx
}

func NewTableRepo(db dbtx) *TableRepo {
	return &TableRepo{db: db}
}

const tableColumns = `id, tenant_id, name, seats, is_active, display_order, created_at, updated_at`

func (r *TableRepo) Create(ctx context.Context, t *domain.Table) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO restaurant_tables (`+tableColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.TenantID, t.Name, t.Seats, t.IsActive, t.DisplayOrder, t.CreatedAt, t.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("tableRepo.Create: name %q: %w", t.Name, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("tableRepo.Create: %w", err)
	}

	return nil
}

func (r *TableRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Table, error) {
	var t domain.Table

	err := r.db.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM restaurant_tables WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	).Scan(&t.ID, &t.TenantID, &t.Name, &t.Seats, &t.IsActive, &t.DisplayOrder, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tableRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("tableRepo.GetByID: %w", err)
	}

	return &t, nil
}

func (r *TableRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.Table, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+tableColumns+` FROM restaurant_tables WHERE tenant_id = $1
		 ORDER BY display_order, name`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("tableRepo.List: %w", err)
	}
	defer rows.Close()

	return scanTables(rows, "tableRepo.List")
}

func (r *TableRepo) ListByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Table, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+tableColumns+` FROM restaurant_tables WHERE tenant_id = $1 AND id = ANY($2::uuid[])
		 ORDER BY display_order, name`,
		tenantID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("tableRepo.ListByIDs: %w", err)
	}
	defer rows.Close()

	return scanTables(rows, "tableRepo.ListByIDs")
}

// LockByIDs takes the rows in id order so concurrent confirmations touching
// the same tables serialize without deadlocking.
func (r *TableRepo) LockByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Table, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+tableColumns+` FROM restaurant_tables WHERE tenant_id = $1 AND id = ANY($2::uuid[])
		 ORDER BY id
		 FOR UPDATE`,
		tenantID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("tableRepo.LockByIDs: %w", err)
	}
	defer rows.Close()

	return scanTables(rows, "tableRepo.LockByIDs")
}

func (r *TableRepo) Update(ctx context.Context, t *domain.Table) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE restaurant_tables SET name = $1, seats = $2, is_active = $3, display_order = $4, updated_at = now()
		 WHERE tenant_id = $5 AND id = $6`,
		t.Name, t.Seats, t.IsActive, t.DisplayOrder, t.TenantID, t.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("tableRepo.Update: name %q: %w", t.Name, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("tableRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tableRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TableRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM restaurant_tables WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("tableRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tableRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanTables(rows pgx.Rows, caller string) ([]*domain.Table, error) {
	var tables []*domain.Table
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Name, &t.Seats, &t.IsActive, &t.DisplayOrder, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		tables = append(tables, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return tables, nil
}
