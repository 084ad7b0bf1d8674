package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"carsource_backend/internal/models"
)

type NotificationRepository interface {
	Create(notification *models.Notification) error
	GetByID(id string) (*models.Notification, error)
	// ListLatest returns the user's newest notifications first.
	ListLatest(userID string, limit int) ([]models.Notification, error)
	GetUnreadCount(userID string) (int64, error)
	CountUnreadTotal() (int64, error)
	// MarkAsRead is scoped to userID so a user cannot flip another
	// user's notifications. Already-read rows are left untouched.
	MarkAsRead(id, userID string) error
	MarkMultipleAsRead(ids []string, userID string) error
	MarkAllAsRead(userID string) error
	Delete(id, userID string) error
	CleanOldNotifications(olderThan time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *notificationRepository) GetByID(id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) ListLatest(userID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) CountUnreadTotal() (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAsRead(id, userID string) error {
	now := time.Now()
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error
}

func (r *notificationRepository) MarkMultipleAsRead(ids []string, userID string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.Model(&models.Notification{}).
		Where("id IN ? AND user_id = ? AND is_read = ?", ids, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error
}

func (r *notificationRepository) MarkAllAsRead(userID string) error {
	now := time.Now()
	return r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error
}

func (r *notificationRepository) Delete(id, userID string) error {
	return r.db.Delete(&models.Notification{}, "id = ? AND user_id = ?", id, userID).Error
}

func (r *notificationRepository) CleanOldNotifications(olderThan time.Time) (int64, error) {
	result := r.db.Delete(&models.Notification{}, "created_at < ? AND is_read = ?", olderThan, true)
	return result.RowsAffected, result.Error
}
