// api/middleware/authz.go
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	pdp_engine "github.com/taskhive/taskhive/api/pdp/engine"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
	"github.com/taskhive/taskhive/api/util"
)

// RequirePermission guards a route behind an authorization check. The
// resource id is taken from the named path parameter; pass an empty
// idParam for collection-level actions such as create.
func RequirePermission(authorizer pdp_engine.Authorizer, action string, resourceType string, idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := util.GetUserIDFromContext(c)
		if err != nil || userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "You must be logged in to access this resource",
			})
			c.Abort()
			return
		}

		resourceID := ""
		if idParam != "" {
			resourceID = c.Param(idParam)
		}

		decision := authorizer.Authorize(c.Request.Context(), pdp_model.AccessRequest{
			SubjectID:    userID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Environment: pdp_model.Environment{
				Time:      time.Now(),
				IP:        c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
			},
		})

		if !decision.Allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "You do not have permission to perform this action",
				"reason":  decision.Reason,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
