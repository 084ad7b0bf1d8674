package models

// Upload tracks a stored file (currently chat images only).
type Upload struct {
	BaseModel
	UserID      string  `gorm:"not null;index" json:"user_id"`
	OrderID     *string `gorm:"index" json:"order_id"`
	Path        string  `gorm:"not null;uniqueIndex" json:"path"`
	URL         string  `json:"url"`
	ContentType string  `json:"content_type"`
	Size        int64   `json:"size"`
}
