package api

import (
	"net/http"

	"repairhub-backend/internal/auth/delivery"
	authdomain "repairhub-backend/internal/auth/domain"
	authUsecase "repairhub-backend/internal/auth/usecase"
	notificationDelivery "repairhub-backend/internal/notification/delivery"
	presenceDelivery "repairhub-backend/internal/presence/delivery"
	pushtokenDelivery "repairhub-backend/internal/pushtoken/delivery"
	"repairhub-backend/pkg/realtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes groups the handlers mounted by SetupRoutes.
type Routes struct {
	AuthUsecase         authUsecase.AuthUsecase
	TokenHandler        *pushtokenDelivery.TokenHandler
	NotificationHandler *notificationDelivery.NotificationHandler
	PresenceHandler     *presenceDelivery.PresenceHandler
	Hub                 *realtime.Hub
}

func SetupRoutes(r *gin.Engine, rt Routes) {
	authHandler := delivery.NewAuthHandler(rt.AuthUsecase)
	requireAuth := delivery.AuthMiddleware(rt.AuthUsecase)
	adminOnly := delivery.RequireRole(authdomain.RoleAdmin)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// WebSocket endpoint; browsers pass the JWT as ?token=
		api.GET("/ws", requireAuth, func(c *gin.Context) {
			user := delivery.CurrentUser(c)
			if err := rt.Hub.ServeWS(c.Writer, c.Request, user.ID, string(user.Role)); err != nil {
				log.WithError(err).WithField("user_id", user.ID).Debug("websocket upgrade failed")
			}
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(requireAuth)
		{
			fcm.POST("/register", rt.TokenHandler.RegisterToken)
			fcm.POST("/unregister", rt.TokenHandler.UnregisterToken)
			fcm.GET("/tokens", rt.TokenHandler.ListTokens)
			fcm.POST("/send", adminOnly, rt.NotificationHandler.SendPush)
			fcm.DELETE("/:token", rt.TokenHandler.DeleteToken)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", rt.NotificationHandler.List)
			notifications.POST("", adminOnly, rt.NotificationHandler.Create)
			notifications.GET("/unread-count", rt.NotificationHandler.UnreadCount)
			notifications.PATCH("/read-all", rt.NotificationHandler.MarkAllRead)
			notifications.PATCH("/:id/read", rt.NotificationHandler.MarkRead)
			notifications.POST("/events", adminOnly, rt.NotificationHandler.IngestEvent)
		}

		// Chat presence (protected)
		chat := api.Group("/chat")
		chat.Use(requireAuth)
		{
			chat.GET("/active", rt.PresenceHandler.GetActive)
			chat.PUT("/active", rt.PresenceHandler.SetActive)
			chat.DELETE("/active", rt.PresenceHandler.ClearActive)
		}
	}
}
