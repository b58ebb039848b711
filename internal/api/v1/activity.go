package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/coperto/internal/domain"
)

type ListActivityInput struct {
	Action string `query:"action" doc:"Only entries with this action, e.g. reservation.confirmed"`
	Since  string `query:"since" doc:"Only entries at or after this RFC 3339 instant"`
	Limit  int    `query:"limit" minimum:"1" maximum:"500" default:"100"`
	Offset int    `query:"offset" minimum:"0" default:"0"`
}

type ListActivityOutput struct {
	Body []*domain.AuditEntry
}

// RegisterActivityRoutes registers the tenant activity feed: every
// submission and status change, newest first.
func RegisterActivityRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-activity",
		Method:      http.MethodGet,
		Path:        "/activity",
		Summary:     "List recent reservation activity",
		Tags:        []string{"Reservations"},
	}, func(ctx context.Context, input *ListActivityInput) (*ListActivityOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		filter := domain.AuditFilter{
			Action: input.Action,
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Since != "" {
			since, err := time.Parse(time.RFC3339, input.Since)
			if err != nil {
				return nil, huma.Error400BadRequest("since must be an RFC 3339 timestamp")
			}
			filter.Since = since
		}

		entries, err := store.Audit().List(ctx, tenantID, filter)
		if err != nil {
			return nil, domainError(err, "activity", "list activity")
		}
		if entries == nil {
			entries = []*domain.AuditEntry{}
		}
		return &ListActivityOutput{Body: entries}, nil
	})
}
