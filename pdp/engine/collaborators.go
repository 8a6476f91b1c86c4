// api/pdp/engine/collaborators.go
package engine

import (
	"context"

	"github.com/taskhive/taskhive/api/model"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
)

// The engine never manages the lifecycle of users, projects, tasks or
// policies; it only reads them through these collaborator interfaces. The
// dao package provides the production implementations.

// SubjectStore resolves an authenticated principal into its per-request
// snapshot, including the enrichment attributes (managedProjectIds,
// memberProjectIds, assignedTaskIds) that rules match via subject keys.
type SubjectStore interface {
	GetSubject(ctx context.Context, userID string) (*pdp_model.Subject, error)
}

// ProjectStore exposes the project relations decisions depend on.
type ProjectStore interface {
	GetProject(ctx context.Context, projectID string) (*model.ProjectInfo, error)
	GetProjectManager(ctx context.Context, projectID string) (string, error)
	IsProjectMember(ctx context.Context, userID, projectID string) (bool, error)
	GetProjectTeams(ctx context.Context, projectID string) ([]string, error)
}

// TaskStore exposes the task relations decisions depend on.
type TaskStore interface {
	GetTask(ctx context.Context, taskID string) (*model.TaskInfo, error)
	GetTaskProject(ctx context.Context, taskID string) (string, error)
	GetTaskAssignees(ctx context.Context, taskID string) ([]string, error)
}

// PolicyStore exposes live policy assignments and policy rules. "Live" means
// the assignment has no expiry or expires in the future, and the referenced
// policy is active.
type PolicyStore interface {
	GetLiveUserPolicies(ctx context.Context, userID string) ([]string, error)
	GetLiveResourcePolicies(ctx context.Context, resourceType model.ResourceType, resourceID string) ([]string, error)
	GetPolicyRules(ctx context.Context, policyID string) ([]model.Rule, error)
}

// Authorizer is the call contract consumed by the web layer.
type Authorizer interface {
	Authorize(ctx context.Context, req pdp_model.AccessRequest) pdp_model.Decision
	InvalidatePolicyCache(policyID string)
	ClearPolicyCache()
}
