package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	ActorUser   = "user"
	ActorPublic = "public"
	ActorSystem = "system"

	ResourceReservation = "reservation"
)

// AuditEntry is one row of a tenant's append-only history.
type AuditEntry struct {
	ID         uuid.UUID      `json:"id"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	ActorType  string         `json:"actor_type"` // "user", "public", "system"
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID uuid.UUID      `json:"resource_id"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuditFilter narrows the tenant activity feed. Zero values mean "any".
type AuditFilter struct {
	Action string
	Since  time.Time
	Limit  int
	Offset int
}

type AuditRepository interface {
	Record(ctx context.Context, entry *AuditEntry) error
	// List returns the tenant's activity newest first.
	List(ctx context.Context, tenantID uuid.UUID, filter AuditFilter) ([]*AuditEntry, error)
	ListByResource(ctx context.Context, tenantID uuid.UUID, resource string, resourceID uuid.UUID) ([]*AuditEntry, error)
}
