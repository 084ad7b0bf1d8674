package ws

import (
	"context"

	"carsource_backend/internal/logger"
	"carsource_backend/internal/metrics"
	"carsource_backend/internal/realtime"
	"carsource_backend/internal/services"
)

type subscription struct {
	client  *Client
	orderID string
	join    bool
}

// Hub owns all live websocket clients on this instance and routes bus
// events to them. All map mutation happens on the Run goroutine, so
// none of it is locked.
type Hub struct {
	bus      realtime.Bus
	chat     services.ChatService
	presence services.PresenceService

	clients map[*Client]bool
	users   map[string]map[*Client]bool
	orders  map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribing chan subscription
}

func NewHub(bus realtime.Bus, chat services.ChatService, presence services.PresenceService) *Hub {
	return &Hub{
		bus:         bus,
		chat:        chat,
		presence:    presence,
		clients:     make(map[*Client]bool),
		users:       make(map[string]map[*Client]bool),
		orders:      make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribing: make(chan subscription),
	}
}

// Run consumes the event bus and client lifecycle channels until ctx
// is cancelled. Call it once, in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	events, err := h.bus.Subscribe(ctx)
	if err != nil {
		logger.Error("failed to subscribe hub to event bus", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.removeClient(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			if h.users[client.userID] == nil {
				h.users[client.userID] = make(map[*Client]bool)
			}
			h.users[client.userID][client] = true
			metrics.WSConnectionsActive.Inc()
			logger.Debug("ws client connected", "user_id", client.userID)

		case client := <-h.unregister:
			if h.clients[client] {
				h.removeClient(client)
			}

		case sub := <-h.subscribing:
			if !h.clients[sub.client] {
				continue
			}
			if sub.join {
				if h.orders[sub.orderID] == nil {
					h.orders[sub.orderID] = make(map[*Client]bool)
				}
				h.orders[sub.orderID][sub.client] = true
				sub.client.orderIDs[sub.orderID] = true
			} else {
				h.dropOrderSubscription(sub.client, sub.orderID)
			}

		case event, ok := <-events:
			if !ok {
				logger.Warn("event bus channel closed, stopping hub")
				return
			}
			h.route(event)
		}
	}
}

// route fans one bus event out to the clients it concerns. A client
// reachable through both its user stream and an order subscription
// still receives the event once; per-client dedup keys on event id.
func (h *Hub) route(event realtime.Event) {
	if event.UserID != "" {
		for client := range h.users[event.UserID] {
			h.deliver(client, event)
		}
	}

	switch event.Type {
	case realtime.EventMessageCreated, realtime.EventOrderStatusChanged:
		if event.OrderID != "" {
			for client := range h.orders[event.OrderID] {
				h.deliver(client, event)
			}
		}
	}
}

func (h *Hub) deliver(client *Client, event realtime.Event) {
	if !client.markSeen(event.ID) {
		metrics.EventsDroppedTotal.WithLabelValues("duplicate").Inc()
		return
	}

	if client.trySend(event) {
		metrics.EventsDeliveredTotal.WithLabelValues(event.Type).Inc()
		return
	}

	// Client cannot keep up. Disconnecting it is safer than letting
	// its backlog grow or skipping events silently.
	logger.Warn("disconnecting slow ws client", "user_id", client.userID)
	metrics.EventsDroppedTotal.WithLabelValues("slow_client").Inc()
	h.removeClient(client)
}

func (h *Hub) removeClient(client *Client) {
	delete(h.clients, client)

	if userClients := h.users[client.userID]; userClients != nil {
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.users, client.userID)
		}
	}
	for orderID := range client.orderIDs {
		h.dropOrderSubscription(client, orderID)
	}

	client.closeSend()
	metrics.WSConnectionsActive.Dec()
	logger.Debug("ws client disconnected", "user_id", client.userID)
}

func (h *Hub) dropOrderSubscription(client *Client, orderID string) {
	delete(client.orderIDs, orderID)
	if orderClients := h.orders[orderID]; orderClients != nil {
		delete(orderClients, client)
		if len(orderClients) == 0 {
			delete(h.orders, orderID)
		}
	}
}
