package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"carsource_backend/internal/logger"
	"carsource_backend/internal/metrics"
)

// RedisBus fans events out across instances via Redis pub/sub.
type RedisBus struct {
	rdb     *redis.Client
	channel string
}

func NewRedisBus(rdb *redis.Client, channel string) *RedisBus {
	return &RedisBus{
		rdb:     rdb,
		channel: channel,
	}
}

func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		return err
	}
	metrics.EventsPublishedTotal.WithLabelValues(event.Type).Inc()
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	pubsub := b.rdb.Subscribe(ctx, b.channel)

	// Confirm the subscription before events can be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan Event, 256)
	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil || !event.Valid() {
					logger.Warn("dropping malformed realtime event", "error", err)
					metrics.EventsDroppedTotal.WithLabelValues("malformed").Inc()
					continue
				}

				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (b *RedisBus) Close() error {
	return nil
}
