package response

import (
	"net/http"

	"repairhub-backend/pkg/apperr"
	"repairhub-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

var log = logger.For("http")

// OK writes {"success": true, ...body}.
func OK(c *gin.Context, status int, body gin.H) {
	out := gin.H{"success": true}
	for k, v := range body {
		out[k] = v
	}
	c.JSON(status, out)
}

// Error writes the failure envelope for err and logs server-side failures.
func Error(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.AbortWithStatusJSON(status, apperr.Payload(err))
}

// BindError reports a request body that failed JSON binding or validation.
func BindError(c *gin.Context, err error) {
	Error(c, apperr.Wrap(err, apperr.ErrValidation, err.Error()))
}
