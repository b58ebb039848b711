package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/coperto/internal/config"
)

const (
	reservationsChannelPrefix = "reservations:"

	// subscriberBuffer is how far a live listener may lag before events
	// are dropped for it.
	subscriberBuffer = 64
	// handoffTimeout bounds how long go-redis waits on our reader.
	handoffTimeout = 5 * time.Second
)

// PubSub owns the Redis connection used by the live reservation feed and,
// through EventBus, by the notification stream.
type PubSub struct {
	client *redis.Client
}

// New connects and pings so a bad address fails at startup.
func New(ctx context.Context, cfg config.RedisConfig) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping %s: %w", cfg.Addr, err)
	}
	return &PubSub{client: client}, nil
}

func (ps *PubSub) Close() error {
	if err := ps.client.Close(); err != nil {
		return fmt.Errorf("redis.PubSub.Close: %w", err)
	}
	return nil
}

func (ps *PubSub) Ping(ctx context.Context) error {
	if err := ps.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.Ping: %w", err)
	}
	return nil
}

func (ps *PubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ps.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.Publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe streams payloads published on channel until ctx ends or the
// returned cleanup runs. A listener more than subscriberBuffer events
// behind loses the newest ones instead of stalling the Redis reader.
func (ps *PubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	sub := ps.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.PubSub.Subscribe %s: %w", channel, err)
	}

	in := sub.Channel(
		redis.WithChannelSize(subscriberBuffer),
		redis.WithChannelSendTimeout(handoffTimeout),
	)
	out := make(chan []byte, subscriberBuffer)
	go forward(ctx, channel, in, out)

	return out, func() { _ = sub.Close() }, nil
}

func forward(ctx context.Context, channel string, in <-chan *redis.Message, out chan<- []byte) {
	defer close(out)
	dropped := 0
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- []byte(msg.Payload):
			default:
				dropped++
				log.Warn().Str("channel", channel).Int("dropped", dropped).Msg("redis: slow subscriber, event dropped")
			}
		}
	}
}

// ReservationsChannel is the per-tenant channel of the live feed.
func ReservationsChannel(tenantID uuid.UUID) string {
	return reservationsChannelPrefix + tenantID.String()
}
