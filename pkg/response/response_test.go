package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"repairhub-backend/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, h gin.HandlerFunc) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestOK(t *testing.T) {
	code, body := run(t, func(c *gin.Context) { OK(c, http.StatusCreated, gin.H{"id": "n1"}) })

	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "n1", body["id"])
}

func TestErrorUsesTypedStatus(t *testing.T) {
	code, body := run(t, func(c *gin.Context) {
		Error(c, apperr.WithMessage(apperr.ErrUnavailable, "push notifications are disabled"))
	})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "push notifications are disabled", body["error"])
}

func TestBindError(t *testing.T) {
	code, body := run(t, func(c *gin.Context) { BindError(c, errors.New("token is required")) })

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", body["code"])
}
