package services_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"carsource_backend/database"
	"carsource_backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database keeps gorm's pooled connections on
	// the same in-memory store.
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

func createUser(t *testing.T, db *gorm.DB, name string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Email:        name + "@example.com",
		Name:         name,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createOrder(t *testing.T, db *gorm.DB, customerID string, advisorID *string) *models.Order {
	t.Helper()

	order := &models.Order{
		CustomerID: customerID,
		AdvisorID:  advisorID,
		Make:       "BMW",
		Model:      "320d",
		Status:     models.OrderStatusSourcing,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}
