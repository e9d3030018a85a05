package delivery

import (
	"strings"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/auth/usecase"
	"repairhub-backend/pkg/apperr"
	"repairhub-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	userKey     = "user"
	userIDKey   = "userID"
	userTypeKey = "userType"
)

// AuthMiddleware accepts "Authorization: Bearer <jwt>" or, for WebSocket upgrades
// where browsers cannot set headers, a ?token= query parameter.
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Error(c, apperr.WithMessage(apperr.ErrUnauthorized, "invalid authorization header format"))
				return
			}
			token = parts[1]
		}
		if token == "" {
			response.Error(c, apperr.WithMessage(apperr.ErrUnauthorized, "authorization header required"))
			return
		}

		user, err := authUsecase.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}

		SetCurrentUser(c, user)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...authdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Error(c, apperr.ErrUnauthorized)
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		response.Error(c, apperr.WithMessage(apperr.ErrForbidden, "insufficient role"))
	}
}

// SetCurrentUser stores the authenticated user on the request context.
func SetCurrentUser(c *gin.Context, user *authdomain.User) {
	c.Set(userKey, user)
	c.Set(userIDKey, user.ID)
	c.Set(userTypeKey, string(user.Role))
}

// CurrentUser returns the authenticated user, or nil outside AuthMiddleware.
func CurrentUser(c *gin.Context) *authdomain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*authdomain.User)
	return user
}
