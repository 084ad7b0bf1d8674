package repositories

import (
	"errors"

	"gorm.io/gorm"

	"carsource_backend/internal/models"
)

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	Update(order *models.Order) error
	UpdateStatus(id string, status models.OrderStatus) error
	AssignAdvisor(id, advisorID string) error
	ListByCustomer(customerID string, limit, offset int) ([]models.Order, int64, error)
	ListByAdvisor(advisorID string, limit, offset int) ([]models.Order, int64, error)
	ListByStatus(status models.OrderStatus, limit, offset int) ([]models.Order, int64, error)
	ListAll(limit, offset int) ([]models.Order, int64, error)
	CountByStatus() (map[models.OrderStatus]int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *orderRepository) AssignAdvisor(id, advisorID string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).
		Update("advisor_id", advisorID).Error
}

func (r *orderRepository) ListByCustomer(customerID string, limit, offset int) ([]models.Order, int64, error) {
	return r.list(r.db.Where("customer_id = ?", customerID), limit, offset)
}

func (r *orderRepository) ListByAdvisor(advisorID string, limit, offset int) ([]models.Order, int64, error) {
	return r.list(r.db.Where("advisor_id = ?", advisorID), limit, offset)
}

func (r *orderRepository) ListByStatus(status models.OrderStatus, limit, offset int) ([]models.Order, int64, error) {
	return r.list(r.db.Where("status = ?", status), limit, offset)
}

func (r *orderRepository) ListAll(limit, offset int) ([]models.Order, int64, error) {
	return r.list(r.db.Session(&gorm.Session{}), limit, offset)
}

func (r *orderRepository) CountByStatus() (map[models.OrderStatus]int64, error) {
	type row struct {
		Status models.OrderStatus
		Count  int64
	}

	var rows []row
	err := r.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.OrderStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (r *orderRepository) list(query *gorm.DB, limit, offset int) ([]models.Order, int64, error) {
	var total int64
	if err := query.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error
	return orders, total, err
}
