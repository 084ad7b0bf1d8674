package repositories

import (
	"errors"

	"gorm.io/gorm"

	"carsource_backend/internal/models"
)

type UploadRepository interface {
	Create(upload *models.Upload) error
	GetByID(id string) (*models.Upload, error)
	GetByPath(path string) (*models.Upload, error)
	ListByOrder(orderID string) ([]models.Upload, error)
	Delete(id string) error
}

type uploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(upload *models.Upload) error {
	return r.db.Create(upload).Error
}

func (r *uploadRepository) GetByID(id string) (*models.Upload, error) {
	var upload models.Upload
	err := r.db.First(&upload, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepository) GetByPath(path string) (*models.Upload, error) {
	var upload models.Upload
	err := r.db.First(&upload, "path = ?", path).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepository) ListByOrder(orderID string) ([]models.Upload, error) {
	var uploads []models.Upload
	err := r.db.Where("order_id = ?", orderID).Order("created_at DESC").Find(&uploads).Error
	return uploads, err
}

func (r *uploadRepository) Delete(id string) error {
	return r.db.Delete(&models.Upload{}, "id = ?", id).Error
}
