// api/pdp/engine/roles_test.go
package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	taskhive_errors "github.com/taskhive/taskhive/api/errors"
	"github.com/taskhive/taskhive/api/model"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
	test_mock "github.com/taskhive/taskhive/api/test/mock"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleOwner, ParseRole("owner"))
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleMember, ParseRole("member"))
	assert.Equal(t, RoleViewer, ParseRole("viewer"))
	assert.Equal(t, RoleViewer, ParseRole("superuser"), "unknown role names collapse to viewer")
	assert.Equal(t, RoleViewer, ParseRole(""))
}

func TestRole_Can(t *testing.T) {
	assert.True(t, RoleOwner.Can(model.ResourceProject, "delete"))
	assert.True(t, RoleAdmin.Can(model.ResourceTask, "assign"))
	assert.False(t, RoleAdmin.Can(model.ResourceProject, "delete"))
	assert.True(t, RoleMember.Can(model.ResourceTask, "update"))
	assert.False(t, RoleMember.Can(model.ResourceTask, "delete"))
	assert.False(t, RoleMember.Can(model.ResourceProject, "update"))
	assert.True(t, RoleViewer.Can(model.ResourceTask, "read"))
	assert.False(t, RoleViewer.Can(model.ResourceTask, "create"))
	assert.False(t, RoleOwner.Can(model.ResourceUser, "read"), "uncovered resource types fall through to policies")
}

func TestHighestRole(t *testing.T) {
	rr := NewRoleResolver(nil)

	assert.Equal(t, RoleViewer, rr.HighestRole(&pdp_model.Subject{ID: "u1"}), "no memberships defaults to viewer")

	subject := &pdp_model.Subject{
		ID: "u1",
		TeamRoles: []model.TeamRole{
			{TeamID: "t1", Role: "member"},
			{TeamID: "t2", Role: "admin"},
			{TeamID: "t3", Role: "viewer"},
		},
	}
	assert.Equal(t, RoleAdmin, rr.HighestRole(subject))
}

func TestEffectiveRole_TeamAssignedToProject(t *testing.T) {
	projects := new(test_mock.MockProjectStore)
	projects.On("GetProjectTeams", mock.Anything, "proj-42").Return([]string{"t1", "t2"}, nil)

	rr := NewRoleResolver(projects)
	subject := &pdp_model.Subject{
		ID: "u1",
		TeamRoles: []model.TeamRole{
			{TeamID: "t1", Role: "member"},
			{TeamID: "t2", Role: "admin"},
			{TeamID: "t9", Role: "owner"}, // team not on the project
		},
	}

	role, ok := rr.EffectiveRole(context.Background(), subject, "proj-42")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role, "best role among teams assigned to the project wins")
}

func TestEffectiveRole_DirectMembership(t *testing.T) {
	projects := new(test_mock.MockProjectStore)
	projects.On("GetProjectTeams", mock.Anything, "proj-42").Return([]string{"t5"}, nil)
	projects.On("IsProjectMember", mock.Anything, "u1", "proj-42").Return(true, nil)

	rr := NewRoleResolver(projects)
	subject := &pdp_model.Subject{ID: "u1"}

	role, ok := rr.EffectiveRole(context.Background(), subject, "proj-42")
	assert.True(t, ok)
	assert.Equal(t, RoleMember, role)
}

func TestEffectiveRole_NoStanding(t *testing.T) {
	projects := new(test_mock.MockProjectStore)
	projects.On("GetProjectTeams", mock.Anything, "proj-42").Return([]string{"t5"}, nil)
	projects.On("IsProjectMember", mock.Anything, "u1", "proj-42").Return(false, nil)

	rr := NewRoleResolver(projects)
	subject := &pdp_model.Subject{
		ID:        "u1",
		TeamRoles: []model.TeamRole{{TeamID: "t1", Role: "owner"}},
	}

	_, ok := rr.EffectiveRole(context.Background(), subject, "proj-42")
	assert.False(t, ok)
}

func TestEffectiveRole_EmptyProjectID(t *testing.T) {
	rr := NewRoleResolver(nil)

	_, ok := rr.EffectiveRole(context.Background(), &pdp_model.Subject{ID: "u1"}, "")
	assert.False(t, ok)
}

func TestEffectiveRole_LookupFailureIsNoStanding(t *testing.T) {
	projects := new(test_mock.MockProjectStore)
	projects.On("GetProjectTeams", mock.Anything, "proj-42").Return(nil, taskhive_errors.ErrDatabaseOperation)
	projects.On("IsProjectMember", mock.Anything, "u1", "proj-42").Return(false, taskhive_errors.ErrDatabaseOperation)

	rr := NewRoleResolver(projects)
	subject := &pdp_model.Subject{
		ID:        "u1",
		TeamRoles: []model.TeamRole{{TeamID: "t1", Role: "owner"}},
	}

	_, ok := rr.EffectiveRole(context.Background(), subject, "proj-42")
	assert.False(t, ok, "failed lookups never grant standing")
}
