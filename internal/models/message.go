package models

// Message is one order-chat entry. Messages are append-only: they are
// never updated or deleted.
type Message struct {
	BaseModel
	OrderID     string  `gorm:"not null;index" json:"order_id"`
	SenderID    string  `gorm:"not null;index" json:"sender_id"`
	RecipientID string  `gorm:"not null;index" json:"recipient_id"`
	Body        *string `gorm:"type:text" json:"body"`
	ImageURL    *string `json:"image_url"`
}
