package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"carsource_backend/internal/email"
	"carsource_backend/internal/models"
	"carsource_backend/internal/realtime"
	"carsource_backend/internal/repositories"
	"carsource_backend/internal/services"
	"carsource_backend/internal/services/dto"
	"carsource_backend/pkg/apperrors"
)

func newOrderService(t *testing.T, db *gorm.DB, bus realtime.Bus) services.OrderService {
	t.Helper()

	notificationRepo := repositories.NewNotificationRepository(db)
	return services.NewOrderService(
		repositories.NewOrderRepository(db),
		repositories.NewUserRepository(db),
		services.NewNotificationService(notificationRepo, bus),
		bus,
		email.NoopSender{},
	)
}

func TestCreateOrderDefaults(t *testing.T) {
	db := openTestDB(t)
	svc := newOrderService(t, db, realtime.NewMemoryBus())

	customer := createUser(t, db, "customer", models.UserRoleCustomer)

	resp, err := svc.Create(context.Background(), customer.ID, dto.CreateOrderRequest{
		Make:        "Audi",
		Model:       "A4",
		YearFrom:    2018,
		YearTo:      2022,
		BudgetMax:   30000,
		Preferences: map[string]string{"transmission": "automatic"},
	})
	require.NoError(t, err)

	assert.Equal(t, string(models.OrderStatusPending), resp.Status)
	assert.Equal(t, "EUR", resp.Currency)
	assert.Equal(t, customer.ID, resp.CustomerID)
	assert.Nil(t, resp.AdvisorID)
	assert.NotEmpty(t, resp.ID)
}

func TestUpdateStatusPersistsThenNotifies(t *testing.T) {
	db := openTestDB(t)
	bus := realtime.NewMemoryBus()
	svc := newOrderService(t, db, bus)

	events, err := bus.Subscribe(context.Background())
	require.NoError(t, err)

	customer := createUser(t, db, "customer", models.UserRoleCustomer)
	advisor := createUser(t, db, "advisor", models.UserRoleAdvisor)
	order := createOrder(t, db, customer.ID, &advisor.ID)

	resp, err := svc.UpdateStatus(context.Background(), order.ID, advisor.ID,
		models.UserRoleAdvisor, models.OrderStatusOfferMade)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderStatusOfferMade), resp.Status)

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusOfferMade, stored.Status)

	event := waitForEvent(t, events, realtime.EventOrderStatusChanged)
	assert.Equal(t, customer.ID, event.UserID)
	assert.Equal(t, order.ID, event.OrderID)

	// The customer got a bell notification as well.
	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", customer.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, services.NotificationTypeOrderStatus, notifications[0].Type)
}

func TestUpdateStatusRejectsTerminalOrders(t *testing.T) {
	db := openTestDB(t)
	svc := newOrderService(t, db, realtime.NewMemoryBus())

	customer := createUser(t, db, "customer", models.UserRoleCustomer)
	order := createOrder(t, db, customer.ID, nil)
	require.NoError(t, db.Model(order).Update("status", models.OrderStatusCompleted).Error)

	_, err := svc.UpdateStatus(context.Background(), order.ID, customer.ID,
		models.UserRoleCustomer, models.OrderStatusSourcing)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	db := openTestDB(t)
	svc := newOrderService(t, db, realtime.NewMemoryBus())

	customer := createUser(t, db, "customer", models.UserRoleCustomer)
	order := createOrder(t, db, customer.ID, nil)

	_, err := svc.UpdateStatus(context.Background(), order.ID, customer.ID,
		models.UserRoleCustomer, models.OrderStatus("shipped"))
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)
}

func TestGetByIDAuthorization(t *testing.T) {
	db := openTestDB(t)
	svc := newOrderService(t, db, realtime.NewMemoryBus())

	customer := createUser(t, db, "customer", models.UserRoleCustomer)
	stranger := createUser(t, db, "stranger", models.UserRoleCustomer)
	admin := createUser(t, db, "admin", models.UserRoleAdmin)
	order := createOrder(t, db, customer.ID, nil)

	_, err := svc.GetByID(context.Background(), order.ID, customer.ID, models.UserRoleCustomer)
	assert.NoError(t, err)

	_, err = svc.GetByID(context.Background(), order.ID, admin.ID, models.UserRoleAdmin)
	assert.NoError(t, err)

	_, err = svc.GetByID(context.Background(), order.ID, stranger.ID, models.UserRoleCustomer)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestAssignAdvisorNotifiesCustomer(t *testing.T) {
	db := openTestDB(t)
	svc := newOrderService(t, db, realtime.NewMemoryBus())

	customer := createUser(t, db, "customer", models.UserRoleCustomer)
	advisor := createUser(t, db, "advisor", models.UserRoleAdvisor)
	order := createOrder(t, db, customer.ID, nil)

	resp, err := svc.AssignAdvisor(context.Background(), order.ID, advisor.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.AdvisorID)
	assert.Equal(t, advisor.ID, *resp.AdvisorID)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", customer.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
}

func TestAssignAdvisorRejectsNonAdvisor(t *testing.T) {
	db := openTestDB(t)
	svc := newOrderService(t, db, realtime.NewMemoryBus())

	customer := createUser(t, db, "customer", models.UserRoleCustomer)
	other := createUser(t, db, "other", models.UserRoleCustomer)
	order := createOrder(t, db, customer.ID, nil)

	_, err := svc.AssignAdvisor(context.Background(), order.ID, other.ID)
	require.Error(t, err)
}
