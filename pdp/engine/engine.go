// api/pdp/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/taskhive/taskhive/api/audit"
	logger "github.com/taskhive/taskhive/api/logging"
	"github.com/taskhive/taskhive/api/model"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
)

// AuthorizationEngine runs the decision pipeline. Each stage either
// short-circuits with a decision or falls through to the next:
//
//  1. authentication gate
//  2. admin bypass
//  3. ownership/manager bypass
//  4. static role-table lookup
//  5. policy evaluation, first matching rule wins by priority
//  6. default deny
//
// The engine is stateless per request apart from the shared policy-rule
// cache. Every external lookup is bounded by lookupTimeout and treated as
// "no match" on failure, so partial data can only narrow access.
type AuthorizationEngine struct {
	subjects   SubjectStore
	projects   ProjectStore
	tasks      TaskStore
	aggregator *PolicyAggregator
	rules      *RuleEvaluator
	roles      *RoleResolver
	audit      audit.Service

	lookupTimeout time.Duration
}

// Options tunes engine behavior.
type Options struct {
	PolicyCacheTTL time.Duration
	LookupTimeout  time.Duration
}

const (
	defaultPolicyCacheTTL = 5 * time.Minute
	defaultLookupTimeout  = 2 * time.Second
)

func NewAuthorizationEngine(
	subjects SubjectStore,
	projects ProjectStore,
	tasks TaskStore,
	policies PolicyStore,
	auditService audit.Service,
	opts Options,
) *AuthorizationEngine {
	if opts.PolicyCacheTTL <= 0 {
		opts.PolicyCacheTTL = defaultPolicyCacheTTL
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = defaultLookupTimeout
	}

	roles := NewRoleResolver(projects)
	conditions := NewConditionEvaluator(projects, tasks)
	cache := NewPolicyCache(opts.PolicyCacheTTL)

	return &AuthorizationEngine{
		subjects:      subjects,
		projects:      projects,
		tasks:         tasks,
		aggregator:    NewPolicyAggregator(policies, cache),
		rules:         NewRuleEvaluator(conditions, roles),
		roles:         roles,
		audit:         auditService,
		lookupTimeout: opts.LookupTimeout,
	}
}

// Authorize answers one access question and records the outcome on the
// audit trail. Callers always receive a decision; data and policy errors
// surface as DENY with a descriptive reason, never as an error.
func (e *AuthorizationEngine) Authorize(ctx context.Context, req pdp_model.AccessRequest) pdp_model.Decision {
	decision := e.decide(ctx, req)

	e.audit.Record(audit.PermissionLogEntry{
		UserID:       req.SubjectID,
		Action:       req.Action,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		Allowed:      decision.Allowed,
		Reason:       decision.Reason,
		Timestamp:    time.Now(),
	})

	return decision
}

// InvalidatePolicyCache drops one policy's cached rules; called whenever a
// policy or its rules change.
func (e *AuthorizationEngine) InvalidatePolicyCache(policyID string) {
	e.aggregator.Invalidate(policyID)
}

// ClearPolicyCache empties the rule cache.
func (e *AuthorizationEngine) ClearPolicyCache() {
	e.aggregator.Clear()
}

func (e *AuthorizationEngine) decide(ctx context.Context, req pdp_model.AccessRequest) pdp_model.Decision {
	// Stage 1: authentication gate.
	if req.SubjectID == "" {
		return pdp_model.Deny(pdp_model.ReasonUnauthenticated)
	}
	if req.Action == "" {
		return pdp_model.Deny("action is required")
	}
	if req.ResourceType == "" {
		return pdp_model.Deny("resource type is required")
	}

	subject := e.fetchSubject(ctx, req.SubjectID)

	// Stage 2: admin bypass.
	if subject.IsAdmin {
		return pdp_model.Allow(pdp_model.ReasonAdmin)
	}

	ectx := e.buildContext(ctx, subject, req)

	// Stage 3: ownership/manager bypass.
	if e.isOwnerOrManager(ctx, ectx) {
		return pdp_model.Allow(pdp_model.ReasonOwnerManager)
	}

	// Stage 4: static role-table lookup. Only an explicit grant
	// short-circuits; a roleless subject or an uncovered action falls
	// through to policy evaluation.
	if role, ok := e.effectiveRole(ctx, ectx); ok && role.Can(ectx.Resource.Type, ectx.Action.Type) {
		return pdp_model.Allow(pdp_model.ReasonRolePermission)
	}

	// Stage 5: policy evaluation, highest priority first, first match wins.
	rules := e.aggregator.ResolveRules(ctx, subject.ID, ectx.Resource, ectx.ProjectID)
	for _, rule := range rules {
		matched, err := e.rules.Evaluate(ctx, rule, ectx)
		if err != nil {
			logger.Warn("Skipping malformed rule",
				zap.String("ruleId", rule.ID),
				zap.String("policyId", rule.PolicyID),
				zap.Error(err))
			continue
		}
		if matched {
			return pdp_model.Decision{
				Allowed: rule.Effect == model.EffectAllow,
				Reason:  ruleReason(rule),
			}
		}
	}

	// Stage 6: default deny.
	return pdp_model.Deny(pdp_model.ReasonDefaultDeny)
}

// fetchSubject loads the subject snapshot. An unresolvable subject yields a
// bare snapshot carrying only the id: later stages simply find nothing to
// grant on (fail-closed), while user-bound policies can still be evaluated.
func (e *AuthorizationEngine) fetchSubject(ctx context.Context, subjectID string) *pdp_model.Subject {
	lctx, cancel := context.WithTimeout(ctx, e.lookupTimeout)
	defer cancel()

	subject, err := e.subjects.GetSubject(lctx, subjectID)
	if err != nil || subject == nil {
		logger.Warn("Failed to resolve subject, continuing with bare snapshot",
			zap.String("subjectId", subjectID),
			zap.Error(err))
		return &pdp_model.Subject{ID: subjectID}
	}
	return subject
}

// buildContext enriches the caller's resource snapshot with live data and
// resolves the owning project for project-scoped resources. Caller-supplied
// attribute values win over enrichment.
func (e *AuthorizationEngine) buildContext(ctx context.Context, subject *pdp_model.Subject, req pdp_model.AccessRequest) *pdp_model.EvaluationContext {
	resourceType, _ := model.ParseResourceType(req.ResourceType)

	attrs := make(map[string]any, len(req.ResourceAttributes)+8)
	projectID := ""

	lctx, cancel := context.WithTimeout(ctx, e.lookupTimeout)
	defer cancel()

	switch {
	case req.ResourceID == "":
		// Collection-level request; nothing to enrich.
	case resourceType == model.ResourceProject:
		projectID = req.ResourceID
		if project, err := e.projects.GetProject(lctx, req.ResourceID); err == nil && project != nil {
			attrs["status"] = project.Status
			attrs["managerId"] = project.ManagerID
			attrs["memberIds"] = project.MemberIDs
			attrs["teamIds"] = project.TeamIDs
		} else if err != nil {
			logger.Debug("Project enrichment unavailable",
				zap.String("projectId", req.ResourceID),
				zap.Error(err))
		}
	case resourceType == model.ResourceTask:
		if task, err := e.tasks.GetTask(lctx, req.ResourceID); err == nil && task != nil {
			projectID = task.ProjectID
			attrs["status"] = task.Status
			attrs["priority"] = task.Priority
			attrs["projectId"] = task.ProjectID
			attrs["creatorId"] = task.CreatorID
			attrs["assigneeIds"] = task.AssigneeIDs
		} else if err != nil {
			logger.Debug("Task enrichment unavailable",
				zap.String("taskId", req.ResourceID),
				zap.Error(err))
		}
	}

	for key, value := range req.ResourceAttributes {
		attrs[key] = value
	}
	if v, ok := attrs["projectId"].(string); ok && v != "" {
		projectID = v
	}

	env := req.Environment
	if env.Time.IsZero() {
		env.Time = time.Now()
	}

	return &pdp_model.EvaluationContext{
		Subject: subject,
		Resource: pdp_model.ResourceRef{
			Type:       resourceType,
			ID:         req.ResourceID,
			Attributes: attrs,
		},
		Action:      pdp_model.ActionRef{Type: req.Action},
		Environment: env,
		ProjectID:   projectID,
	}
}

// isOwnerOrManager reports whether the subject manages the governing
// project or owns the resource outright.
func (e *AuthorizationEngine) isOwnerOrManager(ctx context.Context, ectx *pdp_model.EvaluationContext) bool {
	if ectx.ProjectID != "" {
		lctx, cancel := context.WithTimeout(ctx, e.lookupTimeout)
		managerID, err := e.projects.GetProjectManager(lctx, ectx.ProjectID)
		cancel()
		if err == nil && managerID != "" && managerID == ectx.Subject.ID {
			return true
		}
	}

	for _, key := range ownerAttributeKeys {
		if v, ok := ectx.Resource.Attributes[key]; ok && v != nil && v != "" {
			if pdp_model.Equal(v, ectx.Subject.ID) {
				return true
			}
			break
		}
	}
	return false
}

func (e *AuthorizationEngine) effectiveRole(ctx context.Context, ectx *pdp_model.EvaluationContext) (Role, bool) {
	lctx, cancel := context.WithTimeout(ctx, e.lookupTimeout)
	defer cancel()
	return e.roles.EffectiveRole(lctx, ectx.Subject, ectx.ProjectID)
}

// ruleReason builds the human-readable reason for a rule-based decision.
func ruleReason(rule model.Rule) string {
	if rule.Description != "" {
		return rule.Description
	}
	verb := "denies"
	if rule.Effect == model.EffectAllow {
		verb = "allows"
	}
	return fmt.Sprintf("rule %q (%s) %s the action", rule.Name, rule.ID, verb)
}
