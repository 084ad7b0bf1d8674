package realtime

import (
	"context"
	"sync"

	"carsource_backend/internal/metrics"
)

// Bus fans events out from services to every hub instance.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe returns a channel of inbound events. The channel is
	// closed when the bus shuts down or ctx is cancelled.
	Subscribe(ctx context.Context) (<-chan Event, error)
	Close() error
}

// MemoryBus is an in-process Bus for single-node deployments and tests.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	closed      bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}

	metrics.EventsPublishedTotal.WithLabelValues(event.Type).Inc()

	for _, sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber is not keeping up; drop rather than block the publisher.
			metrics.EventsDroppedTotal.WithLabelValues("slow_subscriber").Inc()
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	b.mu.Lock()
	ch := make(chan Event, 256)
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			b.remove(ch)
		}()
	}

	return ch, nil
}

func (b *MemoryBus) remove(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
	return nil
}
