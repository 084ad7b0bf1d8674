package dto

import (
	"time"

	"gorm.io/datatypes"

	"carsource_backend/internal/models"
)

type CreateOrderRequest struct {
	Make        string            `json:"make" validate:"required,min=1,max=60"`
	Model       string            `json:"model" validate:"required,min=1,max=60"`
	YearFrom    int               `json:"year_from" validate:"omitempty,min=1950"`
	YearTo      int               `json:"year_to" validate:"omitempty,min=1950,gtefield=YearFrom"`
	BudgetMin   int64             `json:"budget_min" validate:"omitempty,min=0"`
	BudgetMax   int64             `json:"budget_max" validate:"omitempty,min=0"`
	Currency    string            `json:"currency" validate:"omitempty,len=3"`
	Preferences map[string]string `json:"preferences"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending sourcing offer_made completed cancelled"`
}

type AssignAdvisorRequest struct {
	AdvisorID string `json:"advisor_id" validate:"required,uuid4"`
}

type OrderResponse struct {
	ID          string         `json:"id"`
	CustomerID  string         `json:"customer_id"`
	AdvisorID   *string        `json:"advisor_id"`
	Make        string         `json:"make"`
	Model       string         `json:"model"`
	YearFrom    int            `json:"year_from"`
	YearTo      int            `json:"year_to"`
	BudgetMin   int64          `json:"budget_min"`
	BudgetMax   int64          `json:"budget_max"`
	Currency    string         `json:"currency"`
	Preferences datatypes.JSON `json:"preferences"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
}

func ToOrderResponse(order *models.Order) OrderResponse {
	return OrderResponse{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		AdvisorID:   order.AdvisorID,
		Make:        order.Make,
		Model:       order.Model,
		YearFrom:    order.YearFrom,
		YearTo:      order.YearTo,
		BudgetMin:   order.BudgetMin,
		BudgetMax:   order.BudgetMax,
		Currency:    order.Currency,
		Preferences: order.Preferences,
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

func ToOrderListResponse(orders []models.Order, total int64) OrderListResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return OrderListResponse{Orders: out, Total: total}
}
