package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Table is a physical table. Inactive tables are excluded from assignment
// and from capacity counting.
type Table struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Name         string    `json:"name"`
	Seats        int       `json:"seats"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (t *Table) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("table name is required: %w", ErrInvalidInput)
	}
	if t.Seats < 1 {
		return fmt.Errorf("table seats must be positive, got %d: %w", t.Seats, ErrInvalidInput)
	}
	return nil
}

// SeatCapacity sums the seats of active tables.
func SeatCapacity(tables []*Table) int {
	total := 0
	for _, t := range tables {
		if t != nil && t.IsActive {
			total += t.Seats
		}
	}
	return total
}

type TableRepository interface {
	Create(ctx context.Context, t *Table) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Table, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*Table, error)
	// ListByIDs returns the tenant's tables among ids; ids of other tenants are ignored.
	ListByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Table, error)
	// LockByIDs is ListByIDs taking row locks; only meaningful inside a transaction.
	LockByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Table, error)
	Update(ctx context.Context, t *Table) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
