package delivery

import (
	"net/http"

	authdelivery "repairhub-backend/internal/auth/delivery"
	"repairhub-backend/internal/pushtoken/dto"
	"repairhub-backend/internal/pushtoken/usecase"
	"repairhub-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// TokenHandler serves /api/fcm token registration endpoints
type TokenHandler struct {
	tokenUsecase usecase.TokenUsecase
}

func NewTokenHandler(tokenUsecase usecase.TokenUsecase) *TokenHandler {
	return &TokenHandler{tokenUsecase: tokenUsecase}
}

// RegisterToken POST /api/fcm/register
func (h *TokenHandler) RegisterToken(c *gin.Context) {
	var req dto.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	if req.DeviceInfo.UserAgent == "" {
		req.DeviceInfo.UserAgent = c.Request.UserAgent()
	}

	id, err := h.tokenUsecase.Register(c.Request.Context(), authdelivery.CurrentUser(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"tokenId": id})
}

// UnregisterToken POST /api/fcm/unregister
func (h *TokenHandler) UnregisterToken(c *gin.Context) {
	var req dto.UnregisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	user := authdelivery.CurrentUser(c)
	if req.All {
		n, err := h.tokenUsecase.UnregisterAll(c.Request.Context(), user)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"deactivated": n})
		return
	}

	if err := h.tokenUsecase.Unregister(c.Request.Context(), user, req.Token); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"deactivated": 1})
}

// DeleteToken DELETE /api/fcm/:token
func (h *TokenHandler) DeleteToken(c *gin.Context) {
	if err := h.tokenUsecase.Unregister(c.Request.Context(), authdelivery.CurrentUser(c), c.Param("token")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"deactivated": 1})
}

// ListTokens GET /api/fcm/tokens
func (h *TokenHandler) ListTokens(c *gin.Context) {
	tokens, err := h.tokenUsecase.ActiveTokens(c.Request.Context(), authdelivery.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"tokens": tokens, "count": len(tokens)})
}
