package models

import "gorm.io/datatypes"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSourcing  OrderStatus = "sourcing"
	OrderStatusOfferMade OrderStatus = "offer_made"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusSourcing, OrderStatusOfferMade,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a vehicle-sourcing request placed by a customer and worked
// by an advisor.
type Order struct {
	BaseModel
	CustomerID string      `gorm:"not null;index" json:"customer_id"`
	AdvisorID  *string     `gorm:"index" json:"advisor_id"`
	Make       string      `gorm:"not null" json:"make"`
	Model      string      `gorm:"not null" json:"model"`
	YearFrom   int         `json:"year_from"`
	YearTo     int         `json:"year_to"`
	BudgetMin  int64       `json:"budget_min"`
	BudgetMax  int64       `json:"budget_max"`
	Currency   string      `gorm:"type:varchar(8);default:'EUR'" json:"currency"`
	// {"transmission": "automatic", "fuel": "hybrid", "color": "..."}
	Preferences datatypes.JSON `gorm:"type:jsonb" json:"preferences"`
	Status      OrderStatus    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
}

// Participants returns the user ids allowed to read and write the
// order chat: the customer plus the assigned advisor, if any.
func (o *Order) Participants() []string {
	ids := []string{o.CustomerID}
	if o.AdvisorID != nil && *o.AdvisorID != "" {
		ids = append(ids, *o.AdvisorID)
	}
	return ids
}

// Counterpart resolves the chat recipient for a sender on this order.
// Returns "" when the order has no counterpart yet (no advisor assigned).
func (o *Order) Counterpart(senderID string) string {
	if senderID == o.CustomerID {
		if o.AdvisorID != nil {
			return *o.AdvisorID
		}
		return ""
	}
	return o.CustomerID
}
