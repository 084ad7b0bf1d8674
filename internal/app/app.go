package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"carsource_backend/database"
	"carsource_backend/internal/auth"
	"carsource_backend/internal/config"
	"carsource_backend/internal/email"
	"carsource_backend/internal/handlers"
	"carsource_backend/internal/imageprocessor"
	"carsource_backend/internal/logger"
	"carsource_backend/internal/metrics"
	"carsource_backend/internal/realtime"
	"carsource_backend/internal/repositories"
	"carsource_backend/internal/routes"
	"carsource_backend/internal/services"
	"carsource_backend/internal/storage"
	"carsource_backend/internal/validator"
	"carsource_backend/internal/workers"
	"carsource_backend/ws"
)

const (
	presencePruneInterval     = 10 * time.Minute
	notificationCleanInterval = time.Hour
	notificationRetention     = 90 * 24 * time.Hour
)

// Run wires the whole application together and serves until SIGINT or
// SIGTERM.
func Run() error {
	config.LoadConfig()
	cfg := config.GetConfig()

	logger.Init(cfg.Server.Env)
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	auth.Init(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)
	metrics.Register()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus, err := buildBus(ctx, cfg)
	if err != nil {
		return err
	}
	defer bus.Close()

	engine, hub, presenceService, notificationService, err := SetupRouter(cfg, db, bus)
	if err != nil {
		return err
	}

	go hub.Run(ctx)
	go workers.NewPresenceWorker(presenceService, presencePruneInterval).Run(ctx)
	go workers.NewNotificationWorker(notificationService, notificationCleanInterval, notificationRetention).Run(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// SetupRouter builds the engine and the dependency graph. Split out
// from Run so integration tests can assemble the app on a test
// database and an in-memory bus.
func SetupRouter(cfg *config.Config, db *gorm.DB, bus realtime.Bus) (*gin.Engine, *ws.Hub, services.PresenceService, services.NotificationService, error) {
	store, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to init storage: %w", err)
	}

	emailSender := buildEmailSender(cfg)

	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	presenceRepo := repositories.NewPresenceRepository(db)
	uploadRepo := repositories.NewUploadRepository(db)

	images := imageprocessor.NewProcessor(cfg.Upload.ImageQuality, cfg.Upload.MaxDimension)

	authService := services.NewAuthService(userRepo, tokenRepo)
	notificationService := services.NewNotificationService(notificationRepo, bus)
	orderService := services.NewOrderService(orderRepo, userRepo, notificationService, bus, emailSender)
	chatService := services.NewChatService(orderRepo, messageRepo, uploadRepo, userRepo,
		notificationService, bus, store, images, cfg.Upload.MaxSize)
	presenceService := services.NewPresenceService(presenceRepo,
		time.Duration(cfg.Presence.OnlineWindowSeconds)*time.Second,
		time.Duration(cfg.Presence.RetentionHours)*time.Hour)

	hub := ws.NewHub(bus, chatService, presenceService)

	base := handlers.NewBaseHandler(validator.New())
	appHandlers := &handlers.AppHandlers{
		Auth:          handlers.NewAuthHandler(base, authService),
		Orders:        handlers.NewOrderHandler(base, orderService),
		Chat:          handlers.NewChatHandler(base, chatService),
		Notifications: handlers.NewNotificationHandler(base, notificationService),
		Presence:      handlers.NewPresenceHandler(base, presenceService),
		Admin:         handlers.NewAdminHandler(base, orderService, notificationService),
	}
	if cfg.Storage.Type == "local" {
		appHandlers.Files = handlers.NewFileHandler(base, store, uploadRepo)
	}

	engine := gin.New()
	routes.RegisterRoutes(engine, appHandlers, hub)

	return engine, hub, presenceService, notificationService, nil
}

func buildBus(ctx context.Context, cfg *config.Config) (realtime.Bus, error) {
	if cfg.Realtime.Driver != "redis" {
		logger.Info("using in-memory event bus")
		return realtime.NewMemoryBus(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("using redis event bus", "addr", cfg.Redis.Addr, "channel", cfg.Realtime.Channel)
	return realtime.NewRedisBus(rdb, cfg.Realtime.Channel), nil
}

func buildEmailSender(cfg *config.Config) email.Sender {
	if !cfg.Email.Enabled {
		return email.NoopSender{}
	}

	sender, err := email.NewGomailSender(email.Config{
		SMTPHost:  cfg.Email.SMTPHost,
		SMTPPort:  cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	})
	if err != nil {
		logger.Warn("email misconfigured, falling back to noop sender", "error", err)
		return email.NoopSender{}
	}
	return sender
}
