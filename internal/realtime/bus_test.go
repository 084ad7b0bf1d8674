package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusFanOut(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	first, err := bus.Subscribe(context.Background())
	require.NoError(t, err)
	second, err := bus.Subscribe(context.Background())
	require.NoError(t, err)

	event, err := NewEvent(EventMessageCreated, "user-1", "order-1", map[string]string{"k": "v"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), event))

	for _, ch := range []<-chan Event{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, event.ID, got.ID)
			assert.Equal(t, event.Type, got.Type)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestMemoryBusSubscriberRemovedOnCancel(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	cancel()

	// The channel closes once the bus drops the subscriber.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscriber channel was not closed after cancel")
		}
	}
}

func TestMemoryBusCloseClosesSubscribers(t *testing.T) {
	bus := NewMemoryBus()

	ch, err := bus.Subscribe(context.Background())
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	_, ok := <-ch
	assert.False(t, ok)

	// Publishing after close is a no-op, not a panic.
	event, err := NewEvent(EventNotificationCreated, "user-1", "", nil)
	require.NoError(t, err)
	assert.NoError(t, bus.Publish(context.Background(), event))
}

func TestNewEventFillsEnvelope(t *testing.T) {
	event, err := NewEvent(EventOrderStatusChanged, "user-1", "order-1", map[string]string{"status": "sourcing"})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventOrderStatusChanged, event.Type)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, "order-1", event.OrderID)
	assert.JSONEq(t, `{"status":"sourcing"}`, string(event.Payload))
	assert.False(t, event.CreatedAt.IsZero())
	assert.True(t, event.Valid())

	other, err := NewEvent(EventOrderStatusChanged, "user-1", "order-1", nil)
	require.NoError(t, err)
	assert.NotEqual(t, event.ID, other.ID)
}

func TestEventValid(t *testing.T) {
	assert.False(t, Event{}.Valid())
	assert.False(t, Event{ID: "x"}.Valid())
	assert.True(t, Event{ID: "x", Type: EventMessageCreated}.Valid())
}
