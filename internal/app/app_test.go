package app_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"carsource_backend/database"
	"carsource_backend/internal/app"
	"carsource_backend/internal/auth"
	"carsource_backend/internal/config"
	"carsource_backend/internal/models"
	"carsource_backend/internal/realtime"
)

func setupTestApp(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	auth.Init("integration-test-secret", time.Hour)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.JWT.Secret = "integration-test-secret"
	cfg.JWT.TTL = 60
	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Storage.BaseURL = "/api/v1/files"
	cfg.Upload.MaxSize = 10 * 1024 * 1024
	cfg.Upload.ImageQuality = 85
	cfg.Upload.MaxDimension = 1600
	cfg.Presence.OnlineWindowSeconds = 60
	cfg.Presence.RetentionHours = 168

	engine, _, _, _, err := app.SetupRouter(cfg, db, realtime.NewMemoryBus())
	require.NoError(t, err)
	return engine, db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, engine *gin.Engine, name, role string) (token, userID string) {
	t.Helper()

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    name + "@example.com",
		"name":     name,
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken, resp.User.ID
}

func adminToken(t *testing.T, db *gorm.DB) string {
	t.Helper()

	admin := &models.User{
		Email:        "admin@example.com",
		Name:         "admin",
		PasswordHash: "x",
		Role:         models.UserRoleAdmin,
	}
	require.NoError(t, db.Create(admin).Error)

	token, err := auth.GenerateToken(admin.ID, models.UserRoleAdmin)
	require.NoError(t, err)
	return token
}

func TestOrderChatFlow(t *testing.T) {
	engine, db := setupTestApp(t)

	customerToken, _ := registerUser(t, engine, "customer", "customer")
	advisorToken, advisorID := registerUser(t, engine, "advisor", "advisor")
	admin := adminToken(t, db)

	// Customer places an order.
	rec := doJSON(t, engine, http.MethodPost, "/api/v1/orders", customerToken, map[string]any{
		"make":       "Toyota",
		"model":      "Corolla",
		"year_from":  2019,
		"year_to":    2023,
		"budget_max": 20000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))

	// Chat is closed until an advisor is assigned.
	rec = doJSON(t, engine, http.MethodPost, "/api/v1/orders/"+order.ID+"/messages", customerToken,
		map[string]string{"body": "hello?"})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	// Admin assigns the advisor.
	rec = doJSON(t, engine, http.MethodPost, "/api/v1/orders/"+order.ID+"/advisor", admin,
		map[string]string{"advisor_id": advisorID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Now the customer can write, and the message lands with the advisor.
	rec = doJSON(t, engine, http.MethodPost, "/api/v1/orders/"+order.ID+"/messages", customerToken,
		map[string]string{"body": "found anything yet?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var message struct {
		RecipientID string `json:"recipient_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &message))
	assert.Equal(t, advisorID, message.RecipientID)

	// The advisor sees it in the history.
	rec = doJSON(t, engine, http.MethodGet, "/api/v1/orders/"+order.ID+"/messages", advisorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history struct {
		Messages []struct {
			Body *string `json:"body"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "found anything yet?", *history.Messages[0].Body)

	// And in the notification bell.
	rec = doJSON(t, engine, http.MethodGet, "/api/v1/notifications", advisorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var bell struct {
		Notifications []struct {
			Type string `json:"type"`
		} `json:"notifications"`
		UnreadCount int64 `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bell))
	require.NotEmpty(t, bell.Notifications)
	assert.Equal(t, "message", bell.Notifications[0].Type)
	assert.GreaterOrEqual(t, bell.UnreadCount, int64(1))

	// Reading clears the counter.
	rec = doJSON(t, engine, http.MethodPost, "/api/v1/notifications/read-all", advisorToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/notifications/unread-count", advisorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var count struct {
		UnreadCount int64 `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &count))
	assert.Zero(t, count.UnreadCount)
}

func TestPresenceHeartbeatFlow(t *testing.T) {
	engine, _ := setupTestApp(t)

	token, userID := registerUser(t, engine, "customer", "customer")

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/presence/heartbeat", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/presence/"+userID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Online bool `json:"online"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Online)
}

func TestAuthRequired(t *testing.T) {
	engine, _ := setupTestApp(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/notifications"},
		{http.MethodPost, "/api/v1/presence/heartbeat"},
	}
	for _, tc := range cases {
		rec := doJSON(t, engine, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestStrangerCannotReadOrderChat(t *testing.T) {
	engine, _ := setupTestApp(t)

	customerToken, _ := registerUser(t, engine, "customer", "customer")
	strangerToken, _ := registerUser(t, engine, "stranger", "customer")

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/orders", customerToken, map[string]any{
		"make":  "Mazda",
		"model": "3",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var order struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/orders/"+order.ID+"/messages", strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
