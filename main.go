package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	api "repairhub-backend/cmd/api"
	authdomain "repairhub-backend/internal/auth/domain"
	authRepo "repairhub-backend/internal/auth/repository"
	authUsecase "repairhub-backend/internal/auth/usecase"
	"repairhub-backend/internal/notification/consumer"
	notificationdomain "repairhub-backend/internal/notification/domain"
	notificationRepo "repairhub-backend/internal/notification/repository"
	notificationUsecase "repairhub-backend/internal/notification/usecase"
	"repairhub-backend/internal/presence"
	pushdomain "repairhub-backend/internal/pushtoken/domain"
	pushtokenRepo "repairhub-backend/internal/pushtoken/repository"
	"repairhub-backend/internal/pushtoken/scheduler"
	pushtokenUsecase "repairhub-backend/internal/pushtoken/usecase"
	"repairhub-backend/pkg/config"
	"repairhub-backend/pkg/database"
	"repairhub-backend/pkg/fcm"
	"repairhub-backend/pkg/logger"
	"repairhub-backend/pkg/metrics"
	"repairhub-backend/pkg/realtime"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Configure(cfg.LogLevel, cfg.Debug)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.NewConnection(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &pushdomain.PushToken{}, &notificationdomain.Notification{}); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	tokenRepo := pushtokenRepo.NewPushTokenRepository(db)
	notifRepo := notificationRepo.NewNotificationRepository(db)

	// Chat presence: Redis when configured, otherwise in-process
	var store presence.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logrus.Warnf("Redis at %s unreachable, presence checks will fail open until it recovers: %v", cfg.RedisAddr, err)
		}
		defer rdb.Close()
		store = presence.NewRedisStore(rdb)
	} else {
		logrus.Info("REDIS_ADDR not set, using in-memory chat presence")
		store = presence.NewMemoryStore()
	}
	policy := presence.NewPolicy(store, cfg.ChatPresenceTTL)

	hub := realtime.NewHub(allowedOrigin(cfg.AppBaseURL))

	// Initialize FCM Client (optional, notifications are stored without it)
	var dispatcher notificationUsecase.PushDispatcher
	if cfg.FCMEnabled() {
		fcmClient, err := fcm.NewClient(ctx, cfg.FirebaseCredentials, cfg.GoogleProjectID)
		if err != nil {
			logrus.Warnf("Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			dispatcher = notificationUsecase.NewDispatcher(fcmClient, tokenRepo)
		}
	} else {
		logrus.Warn("No Firebase credentials configured, FCM disabled")
	}

	// Initialize use cases (dependency injection)
	authUc := authUsecase.NewAuthUsecase(userRepo, cfg)
	if err := authUc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.Fatalf("Failed to create admin user: %v", err)
	}
	tokenUc := pushtokenUsecase.NewTokenUsecase(tokenRepo)
	notifUc := notificationUsecase.NewNotificationUsecase(notifRepo, dispatcher, policy, hub, cfg.AppBaseURL)

	// Event consumer (Pub/Sub), only when a project is configured
	if cfg.GoogleProjectID != "" {
		// Accept either a short topic name or a full resource name
		topicName := cfg.PubSubTopic
		if parts := strings.Split(topicName, "/"); len(parts) > 1 {
			topicName = parts[len(parts)-1]
		}

		c, err := consumer.NewConsumer(ctx, cfg.GoogleProjectID, topicName, cfg.PubSubSubscription, cfg.GoogleCredentials, notifUc)
		if err != nil {
			logrus.Errorf("Failed to initialize event consumer: %v", err)
		} else {
			defer c.Close()
			go func() {
				if err := c.Start(ctx); err != nil {
					logrus.Errorf("Event consumer stopped: %v", err)
				}
			}()
		}
	} else {
		logrus.Warn("GOOGLE_PROJECT_ID not configured, Pub/Sub event consumer disabled")
	}

	// Token hygiene
	sweeper := scheduler.NewTokenSweeper(tokenRepo, cfg.TokenSweepSchedule, cfg.TokenStaleAfter)
	if err := sweeper.Start(); err != nil {
		logrus.Fatalf("Failed to start token sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(authUc, tokenUc, notifUc, policy, hub, cfg)

	if err := handler.Start(ctx, ":"+cfg.Port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
	logrus.Info("Server stopped")
}

// allowedOrigin reduces APP_BASE_URL to the scheme and host a browser sends as Origin.
func allowedOrigin(baseURL string) string {
	if i := strings.Index(baseURL, "://"); i >= 0 {
		if j := strings.Index(baseURL[i+3:], "/"); j >= 0 {
			return baseURL[:i+3+j]
		}
	}
	return baseURL
}
