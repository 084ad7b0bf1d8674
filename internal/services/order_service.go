package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"carsource_backend/internal/email"
	"carsource_backend/internal/logger"
	"carsource_backend/internal/models"
	"carsource_backend/internal/realtime"
	"carsource_backend/internal/repositories"
	"carsource_backend/internal/services/dto"
	"carsource_backend/pkg/apperrors"
)

var statusLabels = map[models.OrderStatus]string{
	models.OrderStatusPending:   "Pending",
	models.OrderStatusSourcing:  "Sourcing",
	models.OrderStatusOfferMade: "Offer made",
	models.OrderStatusCompleted: "Completed",
	models.OrderStatusCancelled: "Cancelled",
}

type OrderService interface {
	Create(ctx context.Context, customerID string, req dto.CreateOrderRequest) (dto.OrderResponse, error)
	// GetByID enforces that userID participates in the order; admins see all.
	GetByID(ctx context.Context, id, userID string, role models.UserRole) (dto.OrderResponse, error)
	ListForUser(ctx context.Context, userID string, role models.UserRole, limit, offset int) (dto.OrderListResponse, error)
	AssignAdvisor(ctx context.Context, orderID, advisorID string) (dto.OrderResponse, error)
	// StatusCounts returns order totals per status, for the admin dashboard.
	StatusCounts(ctx context.Context) (map[models.OrderStatus]int64, error)
	// UpdateStatus persists the new status first, then fires the
	// follow-ups (notification, realtime event, email) best-effort:
	// a failed follow-up is logged, never rolls back the status.
	UpdateStatus(ctx context.Context, orderID, actorID string, role models.UserRole, status models.OrderStatus) (dto.OrderResponse, error)
}

type orderService struct {
	orderRepo     repositories.OrderRepository
	userRepo      repositories.UserRepository
	notifications NotificationService
	bus           realtime.Bus
	emailSender   email.Sender
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
	bus realtime.Bus,
	emailSender email.Sender,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		userRepo:      userRepo,
		notifications: notifications,
		bus:           bus,
		emailSender:   emailSender,
	}
}

func (s *orderService) Create(ctx context.Context, customerID string, req dto.CreateOrderRequest) (dto.OrderResponse, error) {
	order := &models.Order{
		CustomerID: customerID,
		Make:       req.Make,
		Model:      req.Model,
		YearFrom:   req.YearFrom,
		YearTo:     req.YearTo,
		BudgetMin:  req.BudgetMin,
		BudgetMax:  req.BudgetMax,
		Currency:   req.Currency,
		Status:     models.OrderStatusPending,
	}
	if order.Currency == "" {
		order.Currency = "EUR"
	}
	if req.Preferences != nil {
		prefs, err := json.Marshal(req.Preferences)
		if err != nil {
			return dto.OrderResponse{}, apperrors.InternalError(err)
		}
		order.Preferences = datatypes.JSON(prefs)
	}

	if err := s.orderRepo.Create(order); err != nil {
		return dto.OrderResponse{}, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "order created", "order_id", order.ID, "customer_id", customerID)
	return dto.ToOrderResponse(order), nil
}

func (s *orderService) GetByID(ctx context.Context, id, userID string, role models.UserRole) (dto.OrderResponse, error) {
	order, err := s.authorize(id, userID, role)
	if err != nil {
		return dto.OrderResponse{}, err
	}
	return dto.ToOrderResponse(order), nil
}

func (s *orderService) ListForUser(ctx context.Context, userID string, role models.UserRole, limit, offset int) (dto.OrderListResponse, error) {
	var (
		orders []models.Order
		total  int64
		err    error
	)

	switch role {
	case models.UserRoleAdvisor:
		orders, total, err = s.orderRepo.ListByAdvisor(userID, limit, offset)
	case models.UserRoleAdmin:
		orders, total, err = s.orderRepo.ListAll(limit, offset)
	default:
		orders, total, err = s.orderRepo.ListByCustomer(userID, limit, offset)
	}
	if err != nil {
		return dto.OrderListResponse{}, apperrors.InternalError(err)
	}

	return dto.ToOrderListResponse(orders, total), nil
}

func (s *orderService) StatusCounts(ctx context.Context) (map[models.OrderStatus]int64, error) {
	counts, err := s.orderRepo.CountByStatus()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return counts, nil
}

func (s *orderService) AssignAdvisor(ctx context.Context, orderID, advisorID string) (dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return dto.OrderResponse{}, apperrors.InternalError(err)
	}
	if order == nil {
		return dto.OrderResponse{}, apperrors.NewNotFoundError("order", "Order not found")
	}

	advisor, err := s.userRepo.GetByID(advisorID)
	if err != nil {
		return dto.OrderResponse{}, apperrors.InternalError(err)
	}
	if advisor == nil || advisor.Role != models.UserRoleAdvisor {
		return dto.OrderResponse{}, apperrors.NewBadRequestError("Advisor not found")
	}

	if err := s.orderRepo.AssignAdvisor(orderID, advisorID); err != nil {
		return dto.OrderResponse{}, apperrors.InternalError(err)
	}
	order.AdvisorID = &advisorID

	title := "An advisor joined your order"
	body := fmt.Sprintf("%s is now sourcing your %s %s.", advisor.Name, order.Make, order.Model)
	if _, err := s.notifications.Notify(ctx, order.CustomerID, NotificationTypeInfo, title, body,
		&order.ID, map[string]any{"advisor_id": advisorID}); err != nil {
		logger.CtxWarn(ctx, "failed to notify customer about advisor assignment",
			"order_id", orderID, "error", err)
	}

	return dto.ToOrderResponse(order), nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID, actorID string, role models.UserRole, status models.OrderStatus) (dto.OrderResponse, error) {
	if !models.ValidOrderStatus(status) {
		return dto.OrderResponse{}, apperrors.New(
			apperrors.CodeInvalidStatus, "order", "Unknown order status", 400)
	}

	order, err := s.authorize(orderID, actorID, role)
	if err != nil {
		return dto.OrderResponse{}, err
	}

	if order.Status == models.OrderStatusCompleted || order.Status == models.OrderStatusCancelled {
		return dto.OrderResponse{}, apperrors.New(
			apperrors.CodeInvalidOperation, "order",
			fmt.Sprintf("Order is already %s", order.Status), 409)
	}
	if order.Status == status {
		return dto.ToOrderResponse(order), nil
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return dto.OrderResponse{}, apperrors.InternalError(err)
	}
	previous := order.Status
	order.Status = status

	// Status is committed; everything below is follow-up.
	s.notifyStatusChange(ctx, order, previous)
	return dto.ToOrderResponse(order), nil
}

func (s *orderService) notifyStatusChange(ctx context.Context, order *models.Order, previous models.OrderStatus) {
	title := "Order status updated"
	body := fmt.Sprintf("Your %s %s order is now %q.", order.Make, order.Model, statusLabels[order.Status])

	if _, err := s.notifications.Notify(ctx, order.CustomerID, NotificationTypeOrderStatus, title, body,
		&order.ID, map[string]any{"status": string(order.Status), "previous": string(previous)}); err != nil {
		logger.CtxWarn(ctx, "failed to create status notification", "order_id", order.ID, "error", err)
	}

	event, err := realtime.NewEvent(realtime.EventOrderStatusChanged, order.CustomerID, order.ID, map[string]string{
		"status":   string(order.Status),
		"previous": string(previous),
	})
	if err == nil {
		err = s.bus.Publish(ctx, event)
	}
	if err != nil {
		logger.CtxWarn(ctx, "failed to publish status event", "order_id", order.ID, "error", err)
	}

	customer, err := s.userRepo.GetByID(order.CustomerID)
	if err != nil || customer == nil {
		logger.CtxWarn(ctx, "failed to load customer for status email", "order_id", order.ID, "error", err)
		return
	}
	if err := s.emailSender.Send(&email.Email{
		To:      []string{customer.Email},
		Subject: title,
		Body:    fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", customer.Name, body),
	}); err != nil {
		logger.CtxWarn(ctx, "failed to send status email", "order_id", order.ID, "error", err)
	}
}

// authorize loads the order and checks userID may act on it.
func (s *orderService) authorize(orderID, userID string, role models.UserRole) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if order == nil {
		return nil, apperrors.NewNotFoundError("order", "Order not found")
	}

	if role == models.UserRoleAdmin {
		return order, nil
	}
	for _, id := range order.Participants() {
		if id == userID {
			return order, nil
		}
	}
	return nil, apperrors.NewForbiddenError("You do not have access to this order")
}
