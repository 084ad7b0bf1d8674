package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carsource_backend/internal/models"
	"carsource_backend/internal/realtime"
	"carsource_backend/internal/repositories"
	"carsource_backend/internal/services"
)

func TestNotificationListReturnsLatestTwenty(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewNotificationService(repositories.NewNotificationRepository(db), realtime.NewMemoryBus())

	user := createUser(t, db, "user", models.UserRoleCustomer)

	for i := 0; i < 25; i++ {
		n := &models.Notification{
			UserID: user.ID,
			Type:   services.NotificationTypeInfo,
			Title:  fmt.Sprintf("notification %d", i),
		}
		require.NoError(t, db.Create(n).Error)
		// Distinct timestamps so ordering is deterministic.
		require.NoError(t, db.Model(n).
			Update("created_at", time.Now().Add(time.Duration(i)*time.Second)).Error)
	}

	resp, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)

	require.Len(t, resp.Notifications, 20)
	assert.Equal(t, int64(25), resp.UnreadCount)
	// Newest first; the oldest five are cut off.
	assert.Equal(t, "notification 24", resp.Notifications[0].Title)
	assert.Equal(t, "notification 5", resp.Notifications[19].Title)
}

func TestMarkAsReadIsMonotonic(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewNotificationService(repositories.NewNotificationRepository(db), realtime.NewMemoryBus())

	user := createUser(t, db, "user", models.UserRoleCustomer)
	created, err := svc.Notify(context.Background(), user.ID, services.NotificationTypeInfo, "hello", "", nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.MarkAsRead(context.Background(), user.ID, created.ID))

	var first models.Notification
	require.NoError(t, db.First(&first, "id = ?", created.ID).Error)
	require.True(t, first.IsRead)
	require.NotNil(t, first.ReadAt)
	readAt := *first.ReadAt

	// Marking again neither fails nor moves the read timestamp.
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.MarkAsRead(context.Background(), user.ID, created.ID))

	var second models.Notification
	require.NoError(t, db.First(&second, "id = ?", created.ID).Error)
	assert.True(t, second.IsRead)
	require.NotNil(t, second.ReadAt)
	assert.True(t, second.ReadAt.Equal(readAt))
}

func TestMarkAsReadScopedToOwner(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewNotificationService(repositories.NewNotificationRepository(db), realtime.NewMemoryBus())

	owner := createUser(t, db, "owner", models.UserRoleCustomer)
	other := createUser(t, db, "other", models.UserRoleCustomer)

	created, err := svc.Notify(context.Background(), owner.ID, services.NotificationTypeInfo, "private", "", nil, nil)
	require.NoError(t, err)

	err = svc.MarkAsRead(context.Background(), other.ID, created.ID)
	require.Error(t, err)

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	assert.False(t, stored.IsRead)
}

func TestMarkAllAsRead(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewNotificationService(repositories.NewNotificationRepository(db), realtime.NewMemoryBus())

	user := createUser(t, db, "user", models.UserRoleCustomer)
	for i := 0; i < 3; i++ {
		_, err := svc.Notify(context.Background(), user.ID, services.NotificationTypeInfo, "n", "", nil, nil)
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, svc.MarkAllAsRead(context.Background(), user.ID))

	count, err = svc.UnreadCount(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotifyPublishesToUserStream(t *testing.T) {
	db := openTestDB(t)
	bus := realtime.NewMemoryBus()
	svc := services.NewNotificationService(repositories.NewNotificationRepository(db), bus)

	events, err := bus.Subscribe(context.Background())
	require.NoError(t, err)

	user := createUser(t, db, "user", models.UserRoleCustomer)
	created, err := svc.Notify(context.Background(), user.ID, services.NotificationTypeInfo, "ping", "body", nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	event := waitForEvent(t, events, realtime.EventNotificationCreated)
	assert.Equal(t, user.ID, event.UserID)
}
