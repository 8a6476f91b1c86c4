// api/pdp/engine/roles.go
package engine

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/taskhive/taskhive/api/logging"
	"github.com/taskhive/taskhive/api/model"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
)

// Role is a team role ordered by privilege: viewer < member < admin < owner.
type Role int8

const (
	RoleViewer Role = iota
	RoleMember
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleViewer: "viewer",
	RoleMember: "member",
	RoleAdmin:  "admin",
	RoleOwner:  "owner",
}

var rolesByName = map[string]Role{
	"viewer": RoleViewer,
	"member": RoleMember,
	"admin":  RoleAdmin,
	"owner":  RoleOwner,
}

func (r Role) String() string {
	return roleNames[r]
}

// ParseRole maps a stored role name to its ordered value. Unknown names
// collapse to viewer so corrupt data never grants privilege.
func ParseRole(name string) Role {
	if r, ok := rolesByName[name]; ok {
		return r
	}
	return RoleViewer
}

// rolePermissions is the static (role, resourceType) -> allowed actions
// table consulted before policy evaluation. Resource types without an entry
// always fall through to policies.
var rolePermissions = map[Role]map[model.ResourceType]map[string]bool{
	RoleOwner: {
		model.ResourceProject: {"read": true, "update": true, "delete": true, "manage": true},
		model.ResourceTask:    {"read": true, "create": true, "update": true, "delete": true, "assign": true, "manage": true},
	},
	RoleAdmin: {
		model.ResourceProject: {"read": true, "update": true},
		model.ResourceTask:    {"read": true, "create": true, "update": true, "delete": true, "assign": true},
	},
	RoleMember: {
		model.ResourceProject: {"read": true},
		model.ResourceTask:    {"read": true, "create": true, "update": true},
	},
	RoleViewer: {
		model.ResourceProject: {"read": true},
		model.ResourceTask:    {"read": true},
	},
}

// Can reports whether the role's static permissions include action on
// resourceType.
func (r Role) Can(resourceType model.ResourceType, action string) bool {
	actions, ok := rolePermissions[r][resourceType]
	if !ok {
		return false
	}
	return actions[action]
}

// RoleResolver computes a subject's effective role for a project from team
// memberships and direct project membership.
type RoleResolver struct {
	projects ProjectStore
}

func NewRoleResolver(projects ProjectStore) *RoleResolver {
	return &RoleResolver{projects: projects}
}

// HighestRole returns the subject's best role across all team memberships.
// This is the value rules see for the "role" subject attribute; absent any
// membership it defaults to viewer.
func (rr *RoleResolver) HighestRole(subject *pdp_model.Subject) Role {
	best := RoleViewer
	for _, tr := range subject.TeamRoles {
		if r := ParseRole(tr.Role); r > best {
			best = r
		}
	}
	return best
}

// EffectiveRole returns the subject's role for one project: the best role
// among the subject's teams that are assigned to the project, or member for
// a direct project membership. The second return is false when the subject
// has no standing on the project at all; a failed lookup also reports no
// standing (fail-closed).
func (rr *RoleResolver) EffectiveRole(ctx context.Context, subject *pdp_model.Subject, projectID string) (Role, bool) {
	if projectID == "" {
		return RoleViewer, false
	}

	teamIDs, err := rr.projects.GetProjectTeams(ctx, projectID)
	if err != nil {
		logger.Warn("Failed to resolve project teams, treating subject as roleless",
			zap.String("projectId", projectID),
			zap.Error(err))
		teamIDs = nil
	}

	assigned := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		assigned[id] = true
	}

	best := RoleViewer
	found := false
	for _, tr := range subject.TeamRoles {
		if !assigned[tr.TeamID] {
			continue
		}
		if r := ParseRole(tr.Role); !found || r > best {
			best = r
		}
		found = true
	}
	if found {
		return best, true
	}

	member, err := rr.projects.IsProjectMember(ctx, subject.ID, projectID)
	if err != nil {
		logger.Warn("Failed to resolve project membership",
			zap.String("userId", subject.ID),
			zap.String("projectId", projectID),
			zap.Error(err))
		return RoleViewer, false
	}
	if member {
		return RoleMember, true
	}
	return RoleViewer, false
}
