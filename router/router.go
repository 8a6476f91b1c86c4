// api/router/router.go
package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive/api/controller"
	"github.com/taskhive/taskhive/api/middleware"
	pdp_engine "github.com/taskhive/taskhive/api/pdp/engine"
)

// SetupRouter wires the HTTP surface: recovery, request logging, rate
// limiting, and the authorization endpoints under /api/v1. The audit trail
// is itself a guarded resource: reading it takes an explicit grant.
func SetupRouter(authorizer pdp_engine.Authorizer, authController *controller.AuthController, auditController *controller.AuditController) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimiter(100, time.Minute)) // 100 requests per minute

	v1 := r.Group("/api/v1")
	authController.RegisterRoutes(v1)

	audit := v1.Group("/")
	audit.Use(middleware.RequirePermission(authorizer, "read", "audit_log", ""))
	auditController.RegisterRoutes(audit)

	return r
}
