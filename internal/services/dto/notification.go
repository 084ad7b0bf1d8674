package dto

import (
	"time"

	"gorm.io/datatypes"

	"carsource_backend/internal/models"
)

type MarkReadRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid4"`
}

type NotificationResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	OrderID   *string        `json:"order_id"`
	Data      datatypes.JSON `json:"data"`
	IsRead    bool           `json:"is_read"`
	ReadAt    *time.Time     `json:"read_at"`
	CreatedAt time.Time      `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
}

func ToNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		OrderID:   n.OrderID,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func ToNotificationListResponse(notifications []models.Notification, unread int64) NotificationListResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		out = append(out, ToNotificationResponse(&notifications[i]))
	}
	return NotificationListResponse{Notifications: out, UnreadCount: unread}
}
