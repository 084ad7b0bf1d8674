package ws

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carsource_backend/internal/realtime"
)

func startHub(t *testing.T) (*Hub, *realtime.MemoryBus) {
	t.Helper()

	bus := realtime.NewMemoryBus()
	hub := NewHub(bus, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub, bus
}

func recvEvent(t *testing.T, c *Client) realtime.Event {
	t.Helper()

	select {
	case event := <-c.send:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return realtime.Event{}
	}
}

func expectNoEvent(t *testing.T, c *Client) {
	t.Helper()

	select {
	case event := <-c.send:
		t.Fatalf("unexpected event delivered: %s", event.ID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubDeliversEventsToUserStream(t *testing.T) {
	hub, bus := startHub(t)

	client := newClient(hub, nil, "user-1")
	hub.register <- client

	event, err := realtime.NewEvent(realtime.EventNotificationCreated, "user-1", "", nil)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), event))

	got := recvEvent(t, client)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, realtime.EventNotificationCreated, got.Type)
}

func TestHubIgnoresOtherUsersEvents(t *testing.T) {
	hub, bus := startHub(t)

	client := newClient(hub, nil, "user-1")
	hub.register <- client

	event, err := realtime.NewEvent(realtime.EventNotificationCreated, "someone-else", "", nil)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), event))

	expectNoEvent(t, client)
}

func TestHubSuppressesDuplicateEventIDs(t *testing.T) {
	hub, bus := startHub(t)

	client := newClient(hub, nil, "user-1")
	hub.register <- client

	event, err := realtime.NewEvent(realtime.EventMessageCreated, "user-1", "order-1", nil)
	require.NoError(t, err)

	// Redelivery with the same id, as after a bus retry.
	require.NoError(t, bus.Publish(context.Background(), event))
	require.NoError(t, bus.Publish(context.Background(), event))

	got := recvEvent(t, client)
	assert.Equal(t, event.ID, got.ID)
	expectNoEvent(t, client)
}

func TestHubDeliversOncePerClientAcrossStreams(t *testing.T) {
	hub, bus := startHub(t)

	// The recipient also has the order chat open, so the event reaches
	// them through both the user stream and the order subscription.
	client := newClient(hub, nil, "user-1")
	hub.register <- client
	hub.subscribing <- subscription{client: client, orderID: "order-1", join: true}

	event, err := realtime.NewEvent(realtime.EventMessageCreated, "user-1", "order-1", nil)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), event))

	got := recvEvent(t, client)
	assert.Equal(t, event.ID, got.ID)
	expectNoEvent(t, client)
}

func TestHubOrderSubscriptionDelivery(t *testing.T) {
	hub, bus := startHub(t)

	recipient := newClient(hub, nil, "advisor-1")
	watcher := newClient(hub, nil, "customer-1")
	hub.register <- recipient
	hub.register <- watcher
	hub.subscribing <- subscription{client: watcher, orderID: "order-1", join: true}

	event, err := realtime.NewEvent(realtime.EventMessageCreated, "advisor-1", "order-1", nil)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), event))

	assert.Equal(t, event.ID, recvEvent(t, recipient).ID)
	assert.Equal(t, event.ID, recvEvent(t, watcher).ID)
}

func TestHubUnsubscribeStopsOrderDelivery(t *testing.T) {
	hub, bus := startHub(t)

	watcher := newClient(hub, nil, "customer-1")
	hub.register <- watcher
	hub.subscribing <- subscription{client: watcher, orderID: "order-1", join: true}
	hub.subscribing <- subscription{client: watcher, orderID: "order-1", join: false}

	event, err := realtime.NewEvent(realtime.EventMessageCreated, "advisor-1", "order-1", nil)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), event))

	expectNoEvent(t, watcher)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub, _ := startHub(t)

	client := newClient(hub, nil, "user-1")
	hub.register <- client
	hub.unregister <- client

	select {
	case _, ok := <-client.send:
		assert.False(t, ok, "send channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestClientMarkSeenBoundsMemory(t *testing.T) {
	client := newClient(nil, nil, "user-1")

	assert.True(t, client.markSeen("first"))
	assert.False(t, client.markSeen("first"))

	for i := 0; i < seenLimit; i++ {
		require.True(t, client.markSeen(fmt.Sprintf("event-%d", i)))
	}

	// "first" was evicted, so it counts as new again.
	assert.True(t, client.markSeen("first"))
	assert.LessOrEqual(t, len(client.seen), seenLimit+1)
}
