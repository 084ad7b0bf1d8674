package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"carsource_backend/internal/models"
)

type MessageRepository interface {
	Create(message *models.Message) error
	GetByID(id string) (*models.Message, error)
	// ListByOrder returns the order's messages oldest-first. When since is
	// non-zero only messages created strictly after it are returned, which
	// lets clients catch up after opening their realtime stream.
	ListByOrder(orderID string, since time.Time, limit int) ([]models.Message, error)
	CountByOrder(orderID string) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *messageRepository) GetByID(id string) (*models.Message, error) {
	var message models.Message
	err := r.db.First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) ListByOrder(orderID string, since time.Time, limit int) ([]models.Message, error) {
	query := r.db.Where("order_id = ?", orderID)
	if !since.IsZero() {
		query = query.Where("created_at > ?", since)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []models.Message
	err := query.Order("created_at ASC").Find(&messages).Error
	return messages, err
}

func (r *messageRepository) CountByOrder(orderID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}
