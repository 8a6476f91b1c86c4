// api/controller/auth_controller.go
package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/taskhive/taskhive/api/logging"
	pdp_engine "github.com/taskhive/taskhive/api/pdp/engine"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
	"github.com/taskhive/taskhive/api/util"
)

// AuthController exposes the decision engine to the web layer: single and
// batch permission checks plus the cache-invalidation hooks the
// policy-management surface calls after editing policies.
type AuthController struct {
	authorizer pdp_engine.Authorizer
	eventBus   *util.EventBus
}

func NewAuthController(authorizer pdp_engine.Authorizer, eventBus *util.EventBus) *AuthController {
	return &AuthController{authorizer: authorizer, eventBus: eventBus}
}

func (ac *AuthController) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/check", ac.CheckPermission)
		auth.POST("/check-batch", ac.CheckPermissionsBatch)
	}
	cache := r.Group("/policy-cache")
	{
		cache.POST("/invalidate/:policyId", ac.InvalidatePolicyCache)
		cache.POST("/clear", ac.ClearPolicyCache)
	}
}

// CheckPermission answers one authorization question.
func (ac *AuthController) CheckPermission(c *gin.Context) {
	var req pdp_model.AccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Missing required parameters: action and resource_type are required", err)
		return
	}

	if req.Environment.IP == "" {
		req.Environment.IP = c.ClientIP()
	}
	if req.Environment.UserAgent == "" {
		req.Environment.UserAgent = c.Request.UserAgent()
	}
	if req.Environment.Time.IsZero() {
		req.Environment.Time = time.Now()
	}

	decision := ac.authorizer.Authorize(c.Request.Context(), req)
	c.JSON(http.StatusOK, decision)
}

type batchCheckRequest struct {
	SubjectID   string                `json:"subject_id" binding:"required"`
	Permissions []batchCheckItem      `json:"permissions" binding:"required"`
	Environment pdp_model.Environment `json:"environment"`
}

type batchCheckItem struct {
	Action       string `json:"action"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id,omitempty"`
}

// CheckPermissionsBatch evaluates several permissions in one call. Results
// are keyed "action:resourceType[:resourceId]"; a per-item failure collapses
// to false rather than failing the batch.
func (ac *AuthController) CheckPermissionsBatch(c *gin.Context) {
	var req batchCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Missing or invalid permissions array", err)
		return
	}

	results := make(map[string]bool, len(req.Permissions))
	for _, perm := range req.Permissions {
		key := fmt.Sprintf("%s:%s", perm.Action, perm.ResourceType)
		if perm.ResourceID != "" {
			key = fmt.Sprintf("%s:%s", key, perm.ResourceID)
		}

		decision := ac.authorizer.Authorize(c.Request.Context(), pdp_model.AccessRequest{
			SubjectID:    req.SubjectID,
			Action:       perm.Action,
			ResourceType: perm.ResourceType,
			ResourceID:   perm.ResourceID,
			Environment:  req.Environment,
		})
		results[key] = decision.Allowed
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// InvalidatePolicyCache drops one policy's cached rules on this instance and
// publishes the invalidation for the others.
func (ac *AuthController) InvalidatePolicyCache(c *gin.Context) {
	policyID := c.Param("policyId")
	if policyID == "" {
		util.RespondWithError(c, http.StatusBadRequest, "Policy ID is required", nil)
		return
	}

	ac.authorizer.InvalidatePolicyCache(policyID)
	ac.eventBus.Publish(c.Request.Context(), util.EventPolicyInvalidated, policyID)

	logger.Info("Policy cache invalidated", zap.String("policyId", policyID))
	c.JSON(http.StatusOK, gin.H{"status": "invalidated", "policy_id": policyID})
}

// ClearPolicyCache empties the rule cache on this instance and publishes the
// clear for the others.
func (ac *AuthController) ClearPolicyCache(c *gin.Context) {
	ac.authorizer.ClearPolicyCache()
	ac.eventBus.Publish(c.Request.Context(), util.EventPolicyCacheClear, "")

	logger.Info("Policy cache cleared")
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
