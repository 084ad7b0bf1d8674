package dto

import (
	"time"

	"carsource_backend/internal/models"
)

type SendMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

type MessageResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Body        *string   `json:"body"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

func ToMessageResponse(message *models.Message) MessageResponse {
	return MessageResponse{
		ID:          message.ID,
		OrderID:     message.OrderID,
		SenderID:    message.SenderID,
		RecipientID: message.RecipientID,
		Body:        message.Body,
		ImageURL:    message.ImageURL,
		CreatedAt:   message.CreatedAt,
	}
}

func ToMessageListResponse(messages []models.Message) MessageListResponse {
	out := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, ToMessageResponse(&messages[i]))
	}
	return MessageListResponse{Messages: out}
}
