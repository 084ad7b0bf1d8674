package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carsource_backend/internal/models"
)

type PresenceRepository interface {
	// Upsert records a heartbeat, inserting the row on first contact.
	Upsert(userID string, seenAt time.Time) error
	Get(userID string) (*models.UserPresence, error)
	// PruneStale removes rows whose last heartbeat is older than cutoff.
	PruneStale(cutoff time.Time) (int64, error)
}

type presenceRepository struct {
	db *gorm.DB
}

func NewPresenceRepository(db *gorm.DB) PresenceRepository {
	return &presenceRepository{db: db}
}

func (r *presenceRepository) Upsert(userID string, seenAt time.Time) error {
	presence := models.UserPresence{
		UserID:     userID,
		LastSeenAt: seenAt,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at"}),
	}).Create(&presence).Error
}

func (r *presenceRepository) Get(userID string) (*models.UserPresence, error) {
	var presence models.UserPresence
	err := r.db.First(&presence, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &presence, nil
}

func (r *presenceRepository) PruneStale(cutoff time.Time) (int64, error) {
	result := r.db.Delete(&models.UserPresence{}, "last_seen_at < ?", cutoff)
	return result.RowsAffected, result.Error
}
