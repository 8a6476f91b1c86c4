// api/middleware/authz_test.go
package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	logger "github.com/taskhive/taskhive/api/logging"
	"github.com/taskhive/taskhive/api/middleware"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
)

type fixedAuthorizer struct {
	decision pdp_model.Decision
	lastReq  *pdp_model.AccessRequest
}

func (f *fixedAuthorizer) Authorize(ctx context.Context, req pdp_model.AccessRequest) pdp_model.Decision {
	f.lastReq = &req
	return f.decision
}

func (f *fixedAuthorizer) InvalidatePolicyCache(policyID string) {}

func (f *fixedAuthorizer) ClearPolicyCache() {}

func guardedRouter(authorizer *fixedAuthorizer, userID string) *gin.Engine {
	r := gin.New()
	if userID != "" {
		r.Use(func(c *gin.Context) { c.Set("userID", userID) })
	}
	r.GET("/tasks/:taskId",
		middleware.RequirePermission(authorizer, "read", "task", "taskId"),
		func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return r
}

func TestRequirePermission(t *testing.T) {
	// Initialize logger
	logger.InitLogger("../logging")
	defer logger.Sync()

	t.Run("Unauthenticated", func(t *testing.T) {
		authorizer := &fixedAuthorizer{decision: pdp_model.Allow("admin")}
		router := guardedRouter(authorizer, "")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/tasks/task-7", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, authorizer.lastReq, "no decision is made for anonymous callers")
	})

	t.Run("Forbidden", func(t *testing.T) {
		authorizer := &fixedAuthorizer{decision: pdp_model.Deny("no matching permission found")}
		router := guardedRouter(authorizer, "u1")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/tasks/task-7", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var resp map[string]any
		json.NewDecoder(w.Body).Decode(&resp)
		assert.Equal(t, "no matching permission found", resp["reason"])
	})

	t.Run("Allowed", func(t *testing.T) {
		authorizer := &fixedAuthorizer{decision: pdp_model.Allow("role permission")}
		router := guardedRouter(authorizer, "u1")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/tasks/task-7", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u1", authorizer.lastReq.SubjectID)
		assert.Equal(t, "read", authorizer.lastReq.Action)
		assert.Equal(t, "task", authorizer.lastReq.ResourceType)
		assert.Equal(t, "task-7", authorizer.lastReq.ResourceID)
	})
}
