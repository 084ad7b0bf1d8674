package models

import "time"

// UserPresence is one continuously overwritten row per user.
type UserPresence struct {
	UserID     string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	LastSeenAt time.Time `gorm:"not null;index" json:"last_seen_at"`
}

func (UserPresence) TableName() string {
	return "user_presence"
}
