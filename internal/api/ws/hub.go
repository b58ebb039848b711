package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/coperto/internal/server/middleware"
	redisstore "github.com/gosuda/coperto/internal/store/redis"
)

const pingInterval = 30 * time.Second

// Subscriber is the pub/sub side the hub reads from.
// *redisstore.PubSub satisfies this interface.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub fans reservation events out to connected staff dashboards.
type Hub struct {
	pubsub         Subscriber
	allowedOrigins []string
}

// NewHub creates a new WebSocket hub. allowedOrigins are host patterns passed
// to websocket.AcceptOptions.OriginPatterns.
func NewHub(pubsub Subscriber, allowedOrigins []string) *Hub {
	return &Hub{pubsub: pubsub, allowedOrigins: allowedOrigins}
}

// ServeReservations streams the tenant's reservation events
// (channel "reservations:<tenantID>") to the client as JSON text frames.
func (h *Hub) ServeReservations(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.TenantIDFromContext(r.Context())
	if !ok || tenantID == uuid.Nil {
		http.Error(w, "missing tenant", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.allowedOrigins})
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Reads are only needed for control frames; CloseRead cancels ctx once the
	// client goes away.
	ctx := conn.CloseRead(r.Context())

	messages, cleanup, err := h.pubsub.Subscribe(ctx, redisstore.ReservationsChannel(tenantID))
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				log.Debug().Err(err).Msg("websocket ping")
				return
			}
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
