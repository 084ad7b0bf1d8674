package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types carried over the bus.
const (
	EventMessageCreated      = "message.created"
	EventNotificationCreated = "notification.created"
	EventNotificationUpdated = "notification.updated"
	EventNotificationDeleted = "notification.deleted"
	EventOrderStatusChanged  = "order.status_changed"
)

// Event is the envelope published by services and delivered to
// websocket clients. ID is unique per event and is what delivery
// deduplication keys on.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	UserID    string          `json:"user_id,omitempty"`
	OrderID   string          `json:"order_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent builds an envelope with a fresh id, marshaling payload to JSON.
func NewEvent(eventType, userID, orderID string, payload any) (Event, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("failed to marshal event payload: %w", err)
		}
		raw = data
	}

	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		UserID:    userID,
		OrderID:   orderID,
		Payload:   raw,
		CreatedAt: time.Now(),
	}, nil
}

// Valid reports whether the envelope carries the fields delivery needs.
// Malformed events are dropped, not surfaced.
func (e Event) Valid() bool {
	return e.ID != "" && e.Type != ""
}
