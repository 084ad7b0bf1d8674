package services

import (
	"context"
	"encoding/json"
	"time"

	"carsource_backend/internal/logger"
	"carsource_backend/internal/models"
	"carsource_backend/internal/realtime"
	"carsource_backend/internal/repositories"
	"carsource_backend/internal/services/dto"
	"carsource_backend/pkg/apperrors"
)

// Notification types shown in the client bell.
const (
	NotificationTypeInfo        = "info"
	NotificationTypeNewMessage  = "message"
	NotificationTypeOrderStatus = "order_status"
)

const notificationBellLimit = 20

type NotificationService interface {
	// Notify persists a notification and publishes it to the user's
	// realtime stream. Callers that treat notification creation as
	// best-effort log the returned error instead of propagating it.
	Notify(ctx context.Context, userID, notifType, title, body string, orderID *string, data map[string]any) (*models.Notification, error)
	// List returns the user's latest notifications plus the unread count.
	List(ctx context.Context, userID string) (dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	// UnreadTotal is the unread count across all users, for the admin
	// dashboard.
	UnreadTotal(ctx context.Context) (int64, error)
	MarkAsRead(ctx context.Context, userID, id string) error
	MarkMultipleAsRead(ctx context.Context, userID string, ids []string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, id string) error
	CleanOld(olderThan time.Time) (int64, error)
}

type notificationService struct {
	repo repositories.NotificationRepository
	bus  realtime.Bus
}

func NewNotificationService(repo repositories.NotificationRepository, bus realtime.Bus) NotificationService {
	return &notificationService{
		repo: repo,
		bus:  bus,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID, notifType, title, body string, orderID *string, data map[string]any) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Body:    body,
		OrderID: orderID,
	}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		notification.Data = raw
	}

	if err := s.repo.Create(notification); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.publish(ctx, realtime.EventNotificationCreated, notification)
	return notification, nil
}

func (s *notificationService) List(ctx context.Context, userID string) (dto.NotificationListResponse, error) {
	notifications, err := s.repo.ListLatest(userID, notificationBellLimit)
	if err != nil {
		return dto.NotificationListResponse{}, apperrors.InternalError(err)
	}

	unread, err := s.repo.GetUnreadCount(userID)
	if err != nil {
		return dto.NotificationListResponse{}, apperrors.InternalError(err)
	}

	return dto.ToNotificationListResponse(notifications, unread), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.GetUnreadCount(userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *notificationService) UnreadTotal(ctx context.Context) (int64, error) {
	count, err := s.repo.CountUnreadTotal()
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id string) error {
	notification, err := s.repo.GetByID(id)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if notification == nil || notification.UserID != userID {
		return apperrors.NewNotFoundError("notification", "Notification not found")
	}

	if err := s.repo.MarkAsRead(id, userID); err != nil {
		return apperrors.InternalError(err)
	}

	s.publishUpdated(ctx, userID)
	return nil
}

func (s *notificationService) MarkMultipleAsRead(ctx context.Context, userID string, ids []string) error {
	if err := s.repo.MarkMultipleAsRead(ids, userID); err != nil {
		return apperrors.InternalError(err)
	}

	s.publishUpdated(ctx, userID)
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllAsRead(userID); err != nil {
		return apperrors.InternalError(err)
	}

	s.publishUpdated(ctx, userID)
	return nil
}

func (s *notificationService) Delete(ctx context.Context, userID, id string) error {
	notification, err := s.repo.GetByID(id)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if notification == nil || notification.UserID != userID {
		return apperrors.NewNotFoundError("notification", "Notification not found")
	}

	if err := s.repo.Delete(id, userID); err != nil {
		return apperrors.InternalError(err)
	}

	event, err := realtime.NewEvent(realtime.EventNotificationDeleted, userID, "", map[string]string{"id": id})
	if err == nil {
		err = s.bus.Publish(ctx, event)
	}
	if err != nil {
		logger.CtxWarn(ctx, "failed to publish notification event", "error", err)
	}
	return nil
}

func (s *notificationService) CleanOld(olderThan time.Time) (int64, error) {
	return s.repo.CleanOldNotifications(olderThan)
}

func (s *notificationService) publish(ctx context.Context, eventType string, notification *models.Notification) {
	orderID := ""
	if notification.OrderID != nil {
		orderID = *notification.OrderID
	}

	event, err := realtime.NewEvent(eventType, notification.UserID, orderID, dto.ToNotificationResponse(notification))
	if err == nil {
		err = s.bus.Publish(ctx, event)
	}
	if err != nil {
		logger.CtxWarn(ctx, "failed to publish notification event",
			"type", eventType, "user_id", notification.UserID, "error", err)
	}
}

// publishUpdated tells the user's open clients to refresh their bell.
func (s *notificationService) publishUpdated(ctx context.Context, userID string) {
	unread, err := s.repo.GetUnreadCount(userID)
	if err != nil {
		logger.CtxWarn(ctx, "failed to count unread notifications", "user_id", userID, "error", err)
		return
	}

	event, err := realtime.NewEvent(realtime.EventNotificationUpdated, userID, "", map[string]int64{"unread_count": unread})
	if err == nil {
		err = s.bus.Publish(ctx, event)
	}
	if err != nil {
		logger.CtxWarn(ctx, "failed to publish notification event", "user_id", userID, "error", err)
	}
}
