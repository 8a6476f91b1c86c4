// api/controller/auth_controller_test.go
package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/taskhive/taskhive/api/controller"
	logger "github.com/taskhive/taskhive/api/logging"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
	"github.com/taskhive/taskhive/api/util"
)

// stubAuthorizer returns a fixed decision and records what it was asked.
type stubAuthorizer struct {
	mu          sync.Mutex
	decision    pdp_model.Decision
	requests    []pdp_model.AccessRequest
	invalidated []string
	cleared     int
}

func (s *stubAuthorizer) Authorize(ctx context.Context, req pdp_model.AccessRequest) pdp_model.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.decision
}

func (s *stubAuthorizer) InvalidatePolicyCache(policyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, policyID)
}

func (s *stubAuthorizer) ClearPolicyCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
}

func setupRouter(authorizer *stubAuthorizer) *gin.Engine {
	r := gin.Default()
	authController := controller.NewAuthController(authorizer, util.NewEventBus())
	api := r.Group("/")
	authController.RegisterRoutes(api)
	return r
}

func TestAuthController(t *testing.T) {
	// Initialize logger
	logger.InitLogger("../logging")
	defer logger.Sync()

	t.Run("CheckPermission_Allowed", func(t *testing.T) {
		authorizer := &stubAuthorizer{decision: pdp_model.Allow("admin")}
		router := setupRouter(authorizer)

		body := strings.NewReader(`{"subject_id":"u1","action":"delete","resource_type":"project","resource_id":"proj-42"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/check", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var decision pdp_model.Decision
		json.NewDecoder(w.Body).Decode(&decision)
		assert.True(t, decision.Allowed)
		assert.Equal(t, "admin", decision.Reason)

		assert.Len(t, authorizer.requests, 1)
		assert.Equal(t, "u1", authorizer.requests[0].SubjectID)
		assert.False(t, authorizer.requests[0].Environment.Time.IsZero(), "missing request time is filled in")
	})

	t.Run("CheckPermission_UnauthenticatedIsDeniedNotRejected", func(t *testing.T) {
		authorizer := &stubAuthorizer{decision: pdp_model.Deny("unauthenticated")}
		router := setupRouter(authorizer)

		body := strings.NewReader(`{"action":"read","resource_type":"task","resource_id":"task-7"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/check", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var decision pdp_model.Decision
		json.NewDecoder(w.Body).Decode(&decision)
		assert.False(t, decision.Allowed)
		assert.Equal(t, "unauthenticated", decision.Reason)

		assert.Len(t, authorizer.requests, 1, "the engine's authentication gate decides, not binding")
		assert.Empty(t, authorizer.requests[0].SubjectID)
	})

	t.Run("CheckPermission_Failure_MissingFields", func(t *testing.T) {
		authorizer := &stubAuthorizer{decision: pdp_model.Allow("admin")}
		router := setupRouter(authorizer)

		body := strings.NewReader(`{"action":"delete"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/check", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, authorizer.requests, "invalid requests never reach the engine")
	})

	t.Run("CheckPermissionsBatch_Success", func(t *testing.T) {
		authorizer := &stubAuthorizer{decision: pdp_model.Allow("role permission")}
		router := setupRouter(authorizer)

		body := strings.NewReader(`{
			"subject_id": "u1",
			"permissions": [
				{"action": "read", "resource_type": "task"},
				{"action": "update", "resource_type": "task", "resource_id": "task-7"}
			]
		}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/check-batch", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Results map[string]bool `json:"results"`
		}
		json.NewDecoder(w.Body).Decode(&resp)
		assert.Equal(t, map[string]bool{
			"read:task":          true,
			"update:task:task-7": true,
		}, resp.Results)
		assert.Len(t, authorizer.requests, 2)
	})

	t.Run("CheckPermissionsBatch_Failure_MissingPermissions", func(t *testing.T) {
		authorizer := &stubAuthorizer{}
		router := setupRouter(authorizer)

		body := strings.NewReader(`{"subject_id":"u1"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/check-batch", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidatePolicyCache_Success", func(t *testing.T) {
		authorizer := &stubAuthorizer{}
		router := setupRouter(authorizer)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/policy-cache/invalidate/p1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"p1"}, authorizer.invalidated)
	})

	t.Run("ClearPolicyCache_Success", func(t *testing.T) {
		authorizer := &stubAuthorizer{}
		router := setupRouter(authorizer)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/policy-cache/clear", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, authorizer.cleared)
	})
}
