package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID  string  `gorm:"not null;index" json:"user_id"`
	Type    string  `gorm:"not null" json:"type"` // "info", "success", "message", "order_status"
	Title   string  `gorm:"not null" json:"title"`
	Body    string  `json:"body"`
	OrderID *string `gorm:"index" json:"order_id"`
	// {"order_id": "...", "sender": "..."}
	Data   datatypes.JSON `gorm:"type:jsonb" json:"data"`
	IsRead bool           `gorm:"default:false" json:"is_read"`
	ReadAt *time.Time     `json:"read_at"`
}
