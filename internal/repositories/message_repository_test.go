package repositories_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"carsource_backend/database"
	"carsource_backend/internal/models"
	"carsource_backend/internal/repositories"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedMessage(t *testing.T, db *gorm.DB, orderID, body string, createdAt time.Time) *models.Message {
	t.Helper()

	message := &models.Message{
		OrderID:     orderID,
		SenderID:    "sender",
		RecipientID: "recipient",
		Body:        &body,
	}
	require.NoError(t, db.Create(message).Error)
	require.NoError(t, db.Model(message).Update("created_at", createdAt).Error)
	message.CreatedAt = createdAt
	return message
}

func TestListByOrderReturnsOldestFirst(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewMessageRepository(db)

	base := time.Now().Add(-time.Hour)
	seedMessage(t, db, "order-1", "third", base.Add(3*time.Minute))
	seedMessage(t, db, "order-1", "first", base.Add(1*time.Minute))
	seedMessage(t, db, "order-1", "second", base.Add(2*time.Minute))
	seedMessage(t, db, "order-2", "elsewhere", base)

	messages, err := repo.ListByOrder("order-1", time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", *messages[0].Body)
	assert.Equal(t, "second", *messages[1].Body)
	assert.Equal(t, "third", *messages[2].Body)
}

func TestListByOrderSinceCursor(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewMessageRepository(db)

	base := time.Now().Add(-time.Hour)
	seedMessage(t, db, "order-1", "old", base.Add(1*time.Minute))
	cursor := seedMessage(t, db, "order-1", "cursor", base.Add(2*time.Minute))
	seedMessage(t, db, "order-1", "new", base.Add(3*time.Minute))

	// Strictly after the cursor: the cursor row itself is excluded.
	messages, err := repo.ListByOrder("order-1", cursor.CreatedAt, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "new", *messages[0].Body)
}

func TestListByOrderLimit(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewMessageRepository(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedMessage(t, db, "order-1", fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Minute))
	}

	messages, err := repo.ListByOrder("order-1", time.Time{}, 3)
	require.NoError(t, err)
	assert.Len(t, messages, 3)
}

func TestCountByOrder(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewMessageRepository(db)

	base := time.Now()
	seedMessage(t, db, "order-1", "a", base)
	seedMessage(t, db, "order-1", "b", base)

	count, err := repo.CountByOrder("order-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountByOrder("order-2")
	require.NoError(t, err)
	assert.Zero(t, count)
}
