package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	authUsecase "repairhub-backend/internal/auth/usecase"
	notificationDelivery "repairhub-backend/internal/notification/delivery"
	notificationUsecase "repairhub-backend/internal/notification/usecase"
	"repairhub-backend/internal/presence"
	presenceDelivery "repairhub-backend/internal/presence/delivery"
	pushtokenDelivery "repairhub-backend/internal/pushtoken/delivery"
	pushtokenUsecase "repairhub-backend/internal/pushtoken/usecase"
	"repairhub-backend/pkg/config"
	"repairhub-backend/pkg/logger"
	"repairhub-backend/pkg/realtime"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logger.For("http")

type Handler struct {
	routes Routes
	config *config.Config
}

func NewHandler(authUc authUsecase.AuthUsecase, tokenUc pushtokenUsecase.TokenUsecase, notificationUc notificationUsecase.NotificationUsecase, policy *presence.Policy, hub *realtime.Hub, cfg *config.Config) *Handler {
	presenceDelivery.BindRealtime(hub, policy)

	return &Handler{
		routes: Routes{
			AuthUsecase:         authUc,
			TokenHandler:        pushtokenDelivery.NewTokenHandler(tokenUc),
			NotificationHandler: notificationDelivery.NewNotificationHandler(notificationUc),
			PresenceHandler:     presenceDelivery.NewPresenceHandler(policy),
			Hub:                 hub,
		},
		config: cfg,
	}
}

// Router builds the gin engine with middleware and every route mounted.
func (h *Handler) Router() *gin.Engine {
	if !h.config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.routes)
	return r
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (h *Handler) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	h.routes.Hub.Close()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Debug("request")
	}
}
