package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/open-warden/warden/api/config"
	logger "github.com/open-warden/warden/api/logging"
)

const (
	HeaderApplicationID  = "X-Warden-App-Id"
	HeaderApplicationKey = "X-Warden-App-Key"
)

// AppAuthMiddleware authenticates calling applications. Each application
// presents its ID plus an HMAC of that ID under the shared signing secret.
// The resolved application ID is placed in the context for controllers.
func AppAuthMiddleware() gin.HandlerFunc {
	secret := []byte(config.GetString("auth.appSigningSecret"))

	return func(c *gin.Context) {
		applicationID := c.GetHeader(HeaderApplicationID)
		applicationKey := c.GetHeader(HeaderApplicationKey)

		if applicationID == "" || applicationKey == "" {
			logger.Warn("Missing application credentials",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		if !validApplicationKey(secret, applicationID, applicationKey) {
			logger.Warn("Invalid application key",
				zap.String("applicationID", applicationID),
				zap.String("ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set("applicationID", applicationID)
		c.Next()
	}
}

func validApplicationKey(secret []byte, applicationID, presented string) bool {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(applicationID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(presented))
}
