// api/util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	taskhive_errors "github.com/taskhive/taskhive/api/errors"
	logger "github.com/taskhive/taskhive/api/logging"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// GetUserIDFromContext returns the authenticated user id placed in the gin
// context by the authentication layer. Absent means anonymous, not an error.
func GetUserIDFromContext(c *gin.Context) (string, error) {
	v, exists := c.Get("userID")
	if !exists {
		return "", nil
	}
	userID, ok := v.(string)
	if !ok {
		return "", taskhive_errors.ErrUnauthenticated
	}
	return userID, nil
}
