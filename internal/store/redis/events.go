package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/coperto/internal/domain"
)

const (
	DefaultEventStream = "coperto:reservation-events"
	eventField         = "event"
	streamMaxLen       = 100_000
)

// EventBus carries reservation events two ways: a durable stream read by
// the notification consumer group and a pub/sub channel per tenant for
// live listeners.
type EventBus struct {
	ps     *PubSub
	stream string
}

func NewEventBus(ps *PubSub, stream string) *EventBus {
	if stream == "" {
		stream = DefaultEventStream
	}
	return &EventBus{ps: ps, stream: stream}
}

// PublishReservationEvent appends ev to the stream and fans it out on the
// tenant channel. The stream write is authoritative; a failed fan-out is
// only logged.
func (b *EventBus) PublishReservationEvent(ctx context.Context, ev *domain.ReservationEvent) error {
	payload, err := EncodeEvent(ev)
	if err != nil {
		return fmt.Errorf("redis.EventBus.Publish: %w", err)
	}

	err = b.ps.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{eventField: payload},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis.EventBus.Publish: xadd: %w", err)
	}

	if err := b.ps.Publish(ctx, ReservationsChannel(ev.TenantID), payload); err != nil {
		log.Warn().Err(err).Str("tenant_id", ev.TenantID.String()).Msg("redis: live fan-out failed")
	}

	return nil
}

// EventHandler processes one event. Returning an error leaves the entry
// acknowledged; delivery is best-effort.
type EventHandler func(ctx context.Context, ev *domain.ReservationEvent) error

type ConsumeOptions struct {
	Group    string
	Consumer string
	Block    time.Duration
	Count    int64
}

// Consume reads the stream as a member of a consumer group until ctx is
// done. Entries left pending by a previous run of the same consumer are
// replayed first.
func (b *EventBus) Consume(ctx context.Context, opts ConsumeOptions, handle EventHandler) error {
	if opts.Block <= 0 {
		opts.Block = 5 * time.Second
	}
	if opts.Count <= 0 {
		opts.Count = 16
	}

	err := b.ps.client.XGroupCreateMkStream(ctx, b.stream, opts.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("redis.EventBus.Consume: create group: %w", err)
	}

	cursor := "0"
	for {
		if ctx.Err() != nil {
			return nil
		}

		streams, err := b.ps.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    opts.Group,
			Consumer: opts.Consumer,
			Streams:  []string{b.stream, cursor},
			Count:    opts.Count,
			Block:    opts.Block,
		}).Result()
		if errors.Is(err, redis.Nil) {
			cursor = ">"
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Str("stream", b.stream).Msg("redis: read group failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		delivered := 0
		for _, s := range streams {
			for _, msg := range s.Messages {
				delivered++
				b.handle(ctx, msg, handle)
				if err := b.ps.client.XAck(ctx, b.stream, opts.Group, msg.ID).Err(); err != nil {
					log.Warn().Err(err).Str("id", msg.ID).Msg("redis: ack failed")
				}
			}
		}

		// Backlog drained; switch to new entries.
		if cursor == "0" && delivered == 0 {
			cursor = ">"
		}
	}
}

func (b *EventBus) handle(ctx context.Context, msg redis.XMessage, handle EventHandler) {
	raw, _ := msg.Values[eventField].(string)
	ev, err := DecodeEvent([]byte(raw))
	if err != nil {
		log.Error().Err(err).Str("id", msg.ID).Msg("redis: dropping malformed event")
		return
	}
	if err := handle(ctx, ev); err != nil {
		log.Error().Err(err).
			Str("id", msg.ID).
			Str("event", string(ev.Type)).
			Str("reservation_id", ev.ReservationID.String()).
			Msg("redis: event handler failed")
	}
}

func EncodeEvent(ev *domain.ReservationEvent) ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return b, nil
}

func DecodeEvent(b []byte) (*domain.ReservationEvent, error) {
	var ev domain.ReservationEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if ev.Type == "" {
		return nil, errors.New("decode event: missing type")
	}
	return &ev, nil
}
