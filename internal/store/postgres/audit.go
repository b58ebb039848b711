package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gosuda/coperto/internal/domain"
)

const auditColumns = `id, tenant_id, actor_type, actor_id, action, resource, resource_id, details, created_at`

// AuditRepo stores reservation history. Rows are only ever inserted; the
// confirm and reject paths write theirs inside the status transaction.
type AuditRepo struct {
	db dbtx
}

func NewAuditRepo(db dbtx) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Record(ctx context.Context, entry *domain.AuditEntry) error {
	details := []byte("{}")
	if len(entry.Details) > 0 {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("auditRepo.Record: marshal details: %w", err)
		}
		details = b
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_log (`+auditColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.TenantID, entry.ActorType, entry.ActorID,
		entry.Action, entry.Resource, entry.ResourceID,
		details, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("auditRepo.Record: %w", err)
	}

	return nil
}

func (r *AuditRepo) List(ctx context.Context, tenantID uuid.UUID, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	where := []string{"tenant_id = $1"}
	args := []any{tenantID}

	if filter.Action != "" {
		args = append(args, filter.Action)
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit, max(filter.Offset, 0))

	query := `SELECT ` + auditColumns + ` FROM audit_log
		 WHERE ` + strings.Join(where, " AND ") + `
		 ORDER BY created_at DESC, id
		 LIMIT $` + fmt.Sprint(len(args)-1) + ` OFFSET $` + fmt.Sprint(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.List: %w", err)
	}
	defer rows.Close()

	return collectAuditEntries(rows, "auditRepo.List")
}

// ListByResource returns the resource's history oldest first.
func (r *AuditRepo) ListByResource(ctx context.Context, tenantID uuid.UUID, resource string, resourceID uuid.UUID) ([]*domain.AuditEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+auditColumns+` FROM audit_log
		 WHERE tenant_id = $1 AND resource = $2 AND resource_id = $3
		 ORDER BY created_at, id`,
		tenantID, resource, resourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListByResource: %w", err)
	}
	defer rows.Close()

	return collectAuditEntries(rows, "auditRepo.ListByResource")
}

func collectAuditEntries(rows pgx.Rows, caller string) ([]*domain.AuditEntry, error) {
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.AuditEntry, error) {
		var e domain.AuditEntry
		var details []byte
		if err := row.Scan(
			&e.ID, &e.TenantID, &e.ActorType, &e.ActorID, &e.Action,
			&e.Resource, &e.ResourceID, &details, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}
		return &e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", caller, err)
	}
	return entries, nil
}
