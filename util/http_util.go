// api/util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	warden_errors "github.com/open-warden/warden/api/errors"
	logger "github.com/open-warden/warden/api/logging"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// GetApplicationIDFromContext returns the caller's application ID placed in
// the context by the application auth middleware.
func GetApplicationIDFromContext(c *gin.Context) (string, error) {
	applicationID, exists := c.Get("applicationID")
	if !exists {
		return "", warden_errors.ErrUnauthorized
	}
	return applicationID.(string), nil
}
