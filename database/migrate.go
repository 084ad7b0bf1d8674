package database

import (
	"gorm.io/gorm"

	"carsource_backend/internal/models"
)

// Migrate applies the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Order{},
		&models.Message{},
		&models.Notification{},
		&models.UserPresence{},
		&models.Upload{},
	)
}
