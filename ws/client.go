package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"carsource_backend/internal/logger"
	"carsource_backend/internal/realtime"
	"carsource_backend/pkg/apperrors"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64

	// Events remembered per connection for duplicate suppression.
	seenLimit = 512
)

// Client actions.
const (
	actionSubscribeOrder   = "subscribe_order"
	actionUnsubscribeOrder = "unsubscribe_order"
	actionSendMessage      = "send_message"
	actionHeartbeat        = "heartbeat"
)

type clientCommand struct {
	Action  string `json:"action"`
	OrderID string `json:"order_id"`
	Body    string `json:"body"`
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan realtime.Event
	userID string

	// Order subscriptions, maintained by the hub goroutine.
	orderIDs map[string]bool

	// Dedup state, touched only by the hub goroutine.
	seen     map[string]bool
	seenFIFO []string

	// Guards send against a concurrent close by the hub.
	closeMu sync.Mutex
	closed  bool
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan realtime.Event, sendBuffer),
		userID:   userID,
		orderIDs: make(map[string]bool),
		seen:     make(map[string]bool),
	}
}

// markSeen records the event id and reports whether it was new. The
// remembered set is bounded; the oldest id is evicted first.
func (c *Client) markSeen(id string) bool {
	if c.seen[id] {
		return false
	}
	c.seen[id] = true
	c.seenFIFO = append(c.seenFIFO, id)
	if len(c.seenFIFO) > seenLimit {
		delete(c.seen, c.seenFIFO[0])
		c.seenFIFO = c.seenFIFO[1:]
	}
	return true
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "user_id", c.userID, "error", err)
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.sendError("Invalid command")
			continue
		}
		c.handleCommand(ctx, cmd)
	}
}

func (c *Client) handleCommand(ctx context.Context, cmd clientCommand) {
	switch cmd.Action {
	case actionSubscribeOrder:
		allowed, err := c.hub.chat.CanAccess(ctx, cmd.OrderID, c.userID)
		if err != nil || !allowed {
			c.sendError("You do not have access to this order chat")
			return
		}
		c.hub.subscribing <- subscription{client: c, orderID: cmd.OrderID, join: true}

	case actionUnsubscribeOrder:
		c.hub.subscribing <- subscription{client: c, orderID: cmd.OrderID, join: false}

	case actionSendMessage:
		if _, err := c.hub.chat.SendText(ctx, cmd.OrderID, c.userID, cmd.Body); err != nil {
			var appErr *apperrors.AppError
			if apperrors.As(err, &appErr) {
				c.sendError(appErr.Message)
			} else {
				c.sendError("Failed to send message")
			}
		}

	case actionHeartbeat:
		if err := c.hub.presence.Heartbeat(ctx, c.userID); err != nil {
			logger.CtxWarn(ctx, "heartbeat failed", "user_id", c.userID, "error", err)
		}

	default:
		c.sendError("Unknown action")
	}
}

// trySend enqueues an event unless the client is closed or its buffer
// is full. Reports whether the event was queued.
func (c *Client) trySend(event realtime.Event) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// sendError writes an error frame directly; errors are connection-local
// and never go through the bus.
func (c *Client) sendError(message string) {
	payload, _ := json.Marshal(map[string]string{"message": message})
	c.trySend(realtime.Event{Type: "error", Payload: payload, CreatedAt: time.Now()})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
