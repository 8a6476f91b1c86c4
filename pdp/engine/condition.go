// api/pdp/engine/condition.go
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	taskhive_errors "github.com/taskhive/taskhive/api/errors"
	"github.com/taskhive/taskhive/api/model"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
)

// Condition is the closed vocabulary of relational predicates a rule may
// carry. Every predicate set to true must individually hold for the
// condition to pass. There is deliberately no expression language here.
type Condition struct {
	IsOwner        bool `json:"isOwner,omitempty"`
	SameDepartment bool `json:"sameDepartment,omitempty"`
	SameTeam       bool `json:"sameTeam,omitempty"`
	ProjectMember  bool `json:"projectMember,omitempty"`
	IsAssigned     bool `json:"isAssigned,omitempty"`
}

// ParseCondition decodes a rule's raw condition. Unknown predicate names and
// invalid JSON are reported as malformed rule data so the caller can skip
// the rule instead of failing the whole decision.
func ParseCondition(raw json.RawMessage) (*Condition, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var cond Condition
	if err := dec.Decode(&cond); err != nil {
		return nil, fmt.Errorf("%w: %v", taskhive_errors.ErrMalformedRule, err)
	}
	return &cond, nil
}

// Keys checked, in order, to find a resource's owner.
var ownerAttributeKeys = []string{"ownerId", "managerId", "createdBy", "creatorId"}

// ConditionEvaluator evaluates condition predicates against live resource
// data. Any predicate whose external data cannot be resolved fails closed:
// the predicate is unsatisfied, never an error.
type ConditionEvaluator struct {
	projects ProjectStore
	tasks    TaskStore
}

func NewConditionEvaluator(projects ProjectStore, tasks TaskStore) *ConditionEvaluator {
	return &ConditionEvaluator{projects: projects, tasks: tasks}
}

// Evaluate reports whether every predicate present in cond holds for the
// request context.
func (ce *ConditionEvaluator) Evaluate(ctx context.Context, cond *Condition, ectx *pdp_model.EvaluationContext) bool {
	if cond == nil {
		return true
	}
	if cond.IsOwner && !ce.isOwner(ectx) {
		return false
	}
	if cond.SameDepartment && !ce.sameDepartment(ectx) {
		return false
	}
	if cond.SameTeam && !ce.sameTeam(ectx) {
		return false
	}
	if cond.ProjectMember && !ce.projectMember(ctx, ectx) {
		return false
	}
	if cond.IsAssigned && !ce.isAssigned(ctx, ectx) {
		return false
	}
	return true
}

func (ce *ConditionEvaluator) isOwner(ectx *pdp_model.EvaluationContext) bool {
	for _, key := range ownerAttributeKeys {
		if v, ok := ectx.Resource.Attributes[key]; ok && v != nil && v != "" {
			return pdp_model.Equal(v, ectx.Subject.ID)
		}
	}
	return false
}

func (ce *ConditionEvaluator) sameDepartment(ectx *pdp_model.EvaluationContext) bool {
	if ectx.Subject.DepartmentID == "" {
		return false
	}
	v, ok := ectx.Resource.Attributes["departmentId"]
	return ok && pdp_model.Equal(v, ectx.Subject.DepartmentID)
}

func (ce *ConditionEvaluator) sameTeam(ectx *pdp_model.EvaluationContext) bool {
	v, ok := ectx.Resource.Attributes["teamId"]
	if !ok {
		return false
	}
	for _, teamID := range ectx.Subject.TeamIDs() {
		if pdp_model.Equal(v, teamID) {
			return true
		}
	}
	return false
}

// projectMember is only meaningful for tasks: the subject passes when it is
// a direct member of the task's owning project, or any of its teams is
// assigned to that project.
func (ce *ConditionEvaluator) projectMember(ctx context.Context, ectx *pdp_model.EvaluationContext) bool {
	if ectx.Resource.Type != model.ResourceTask {
		return false
	}
	projectID := ectx.ProjectID
	if projectID == "" {
		var err error
		projectID, err = ce.tasks.GetTaskProject(ctx, ectx.Resource.ID)
		if err != nil || projectID == "" {
			return false
		}
	}

	member, err := ce.projects.IsProjectMember(ctx, ectx.Subject.ID, projectID)
	if err == nil && member {
		return true
	}

	teamIDs, err := ce.projects.GetProjectTeams(ctx, projectID)
	if err != nil {
		return false
	}
	assigned := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		assigned[id] = true
	}
	for _, teamID := range ectx.Subject.TeamIDs() {
		if assigned[teamID] {
			return true
		}
	}
	return false
}

func (ce *ConditionEvaluator) isAssigned(ctx context.Context, ectx *pdp_model.EvaluationContext) bool {
	if ectx.Resource.Type != model.ResourceTask || ectx.Resource.ID == "" {
		return false
	}
	assignees, err := ce.tasks.GetTaskAssignees(ctx, ectx.Resource.ID)
	if err != nil {
		return false
	}
	for _, id := range assignees {
		if id == ectx.Subject.ID {
			return true
		}
	}
	return false
}
