package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"carsource_backend/internal/imageprocessor"
	"carsource_backend/internal/logger"
	"carsource_backend/internal/models"
	"carsource_backend/internal/realtime"
	"carsource_backend/internal/repositories"
	"carsource_backend/internal/services/dto"
	"carsource_backend/internal/storage"
	"carsource_backend/pkg/apperrors"
)

const defaultHistoryLimit = 200

type ChatService interface {
	// History returns the order's messages oldest-first. A non-zero
	// since returns only messages created after it, so a client that
	// fetched history and then opened its stream can close the gap
	// without refetching everything.
	History(ctx context.Context, orderID, userID string, since time.Time) (dto.MessageListResponse, error)
	// SendText appends a text message. The recipient is always the
	// sender's counterpart on the order; sending fails when the order
	// has no advisor yet and the sender is the customer.
	SendText(ctx context.Context, orderID, senderID, body string) (dto.MessageResponse, error)
	// SendImage downscales and stores the image, then appends a message
	// referencing it. caption is optional.
	SendImage(ctx context.Context, orderID, senderID, caption string, reader io.Reader, size int64) (dto.MessageResponse, error)
	// CanAccess reports whether userID participates in the order.
	CanAccess(ctx context.Context, orderID, userID string) (bool, error)
}

type chatService struct {
	orderRepo     repositories.OrderRepository
	messageRepo   repositories.MessageRepository
	uploadRepo    repositories.UploadRepository
	userRepo      repositories.UserRepository
	notifications NotificationService
	bus           realtime.Bus
	store         storage.Storage
	images        *imageprocessor.Processor
	maxUploadSize int64
}

func NewChatService(
	orderRepo repositories.OrderRepository,
	messageRepo repositories.MessageRepository,
	uploadRepo repositories.UploadRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
	bus realtime.Bus,
	store storage.Storage,
	images *imageprocessor.Processor,
	maxUploadSize int64,
) ChatService {
	return &chatService{
		orderRepo:     orderRepo,
		messageRepo:   messageRepo,
		uploadRepo:    uploadRepo,
		userRepo:      userRepo,
		notifications: notifications,
		bus:           bus,
		store:         store,
		images:        images,
		maxUploadSize: maxUploadSize,
	}
}

func (s *chatService) History(ctx context.Context, orderID, userID string, since time.Time) (dto.MessageListResponse, error) {
	if _, err := s.authorizeParticipant(orderID, userID); err != nil {
		return dto.MessageListResponse{}, err
	}

	messages, err := s.messageRepo.ListByOrder(orderID, since, defaultHistoryLimit)
	if err != nil {
		return dto.MessageListResponse{}, apperrors.InternalError(err)
	}
	return dto.ToMessageListResponse(messages), nil
}

func (s *chatService) SendText(ctx context.Context, orderID, senderID, body string) (dto.MessageResponse, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return dto.MessageResponse{}, apperrors.NewBadRequestError("Message body cannot be empty")
	}

	order, err := s.authorizeParticipant(orderID, senderID)
	if err != nil {
		return dto.MessageResponse{}, err
	}

	recipientID := order.Counterpart(senderID)
	if recipientID == "" {
		return dto.MessageResponse{}, apperrors.NewConflictError("chat", "No advisor is assigned to this order yet")
	}

	message := &models.Message{
		OrderID:     orderID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        &body,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return dto.MessageResponse{}, apperrors.InternalError(err)
	}

	s.fanOut(ctx, message, body)
	return dto.ToMessageResponse(message), nil
}

func (s *chatService) SendImage(ctx context.Context, orderID, senderID, caption string, reader io.Reader, size int64) (dto.MessageResponse, error) {
	if s.maxUploadSize > 0 && size > s.maxUploadSize {
		return dto.MessageResponse{}, apperrors.NewBadRequestError("Image exceeds the maximum upload size")
	}

	order, err := s.authorizeParticipant(orderID, senderID)
	if err != nil {
		return dto.MessageResponse{}, err
	}

	recipientID := order.Counterpart(senderID)
	if recipientID == "" {
		return dto.MessageResponse{}, apperrors.NewConflictError("chat", "No advisor is assigned to this order yet")
	}

	processed, contentType, err := s.images.Process(reader)
	if err != nil {
		return dto.MessageResponse{}, apperrors.NewBadRequestError("File is not a supported image")
	}

	ext := "jpg"
	if contentType == "image/png" {
		ext = "png"
	}
	path := fmt.Sprintf("chat/%s/%s/%d.%s", orderID, senderID, time.Now().UnixNano(), ext)

	if err := s.store.Save(ctx, path, processed, contentType); err != nil {
		return dto.MessageResponse{}, apperrors.InternalError(err)
	}

	url, err := s.store.GetURL(ctx, path)
	if err != nil {
		return dto.MessageResponse{}, apperrors.InternalError(err)
	}

	upload := &models.Upload{
		UserID:      senderID,
		OrderID:     &order.ID,
		Path:        path,
		URL:         url,
		ContentType: contentType,
		Size:        size,
	}
	if err := s.uploadRepo.Create(upload); err != nil {
		logger.CtxWarn(ctx, "failed to record upload", "path", path, "error", err)
	}

	message := &models.Message{
		OrderID:     orderID,
		SenderID:    senderID,
		RecipientID: recipientID,
		ImageURL:    &url,
	}
	preview := "Sent you a photo"
	if caption = strings.TrimSpace(caption); caption != "" {
		message.Body = &caption
		preview = caption
	}
	if err := s.messageRepo.Create(message); err != nil {
		return dto.MessageResponse{}, apperrors.InternalError(err)
	}

	s.fanOut(ctx, message, preview)
	return dto.ToMessageResponse(message), nil
}

func (s *chatService) CanAccess(ctx context.Context, orderID, userID string) (bool, error) {
	_, err := s.authorizeParticipant(orderID, userID)
	if err != nil {
		var appErr *apperrors.AppError
		if apperrors.As(err, &appErr) && appErr.Code == apperrors.CodeForbidden {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// fanOut publishes the realtime event and creates the recipient's bell
// notification. The message is already committed; failures are logged.
func (s *chatService) fanOut(ctx context.Context, message *models.Message, preview string) {
	event, err := realtime.NewEvent(realtime.EventMessageCreated, message.RecipientID, message.OrderID,
		dto.ToMessageResponse(message))
	if err == nil {
		err = s.bus.Publish(ctx, event)
	}
	if err != nil {
		logger.CtxWarn(ctx, "failed to publish message event",
			"message_id", message.ID, "order_id", message.OrderID, "error", err)
	}

	senderName := "Someone"
	if sender, err := s.userRepo.GetByID(message.SenderID); err == nil && sender != nil {
		senderName = sender.Name
	}

	if len(preview) > 80 {
		preview = preview[:80]
	}
	if _, err := s.notifications.Notify(ctx, message.RecipientID, NotificationTypeNewMessage,
		fmt.Sprintf("New message from %s", senderName), preview,
		&message.OrderID, map[string]any{"message_id": message.ID, "sender_id": message.SenderID}); err != nil {
		logger.CtxWarn(ctx, "failed to create message notification",
			"message_id", message.ID, "error", err)
	}
}

func (s *chatService) authorizeParticipant(orderID, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if order == nil {
		return nil, apperrors.NewNotFoundError("order", "Order not found")
	}

	for _, id := range order.Participants() {
		if id == userID {
			return order, nil
		}
	}
	return nil, apperrors.NewForbiddenError("You do not have access to this order chat")
}
