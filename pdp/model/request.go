// api/pdp/model/request.go
package model

import (
	"time"

	"github.com/taskhive/taskhive/api/model"
)

// AccessRequest is the caller-facing shape of one authorization question:
// may SubjectID perform Action on the resource identified by
// (ResourceType, ResourceID)? An empty SubjectID is a valid request; it
// denies at the authentication gate rather than failing validation.
type AccessRequest struct {
	SubjectID          string         `json:"subject_id,omitempty"`
	Action             string         `json:"action" binding:"required"`
	ResourceType       string         `json:"resource_type" binding:"required"`
	ResourceID         string         `json:"resource_id,omitempty"`
	ResourceAttributes map[string]any `json:"resource_attributes,omitempty"`
	Environment        Environment    `json:"environment"`
}

// Environment carries the ambient request attributes rules may constrain.
type Environment struct {
	Time      time.Time `json:"time"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// Subject is the per-request snapshot of the authenticated principal. It is
// derived from the user record and never mutated by the engine. Attributes
// holds enrichment values (managed/member project ids, assigned task ids)
// that rules can match against.
type Subject struct {
	ID           string           `json:"id"`
	IsAdmin      bool             `json:"is_admin"`
	DepartmentID string           `json:"department_id,omitempty"`
	TeamRoles    []model.TeamRole `json:"team_roles,omitempty"`
	Attributes   map[string]any   `json:"attributes,omitempty"`
}

// TeamIDs returns the ids of every team the subject belongs to.
func (s *Subject) TeamIDs() []string {
	if len(s.TeamRoles) == 0 {
		return nil
	}
	ids := make([]string, 0, len(s.TeamRoles))
	for _, tr := range s.TeamRoles {
		ids = append(ids, tr.TeamID)
	}
	return ids
}

// ResourceRef identifies the target of a request plus the attribute snapshot
// rules are matched against. Attributes start as the caller-supplied
// snapshot and are enriched with live data before evaluation; caller values
// win on conflict.
type ResourceRef struct {
	Type       model.ResourceType `json:"type"`
	ID         string             `json:"id,omitempty"`
	Attributes map[string]any     `json:"attributes,omitempty"`
}

// ActionRef identifies the requested operation.
type ActionRef struct {
	Type string `json:"type"`
}

// EvaluationContext is the fully-resolved input to rule evaluation.
type EvaluationContext struct {
	Subject     *Subject
	Resource    ResourceRef
	Action      ActionRef
	Environment Environment

	// ProjectID is the owning project for project-scoped resources: the
	// resource itself for projects, the parent project for tasks, empty
	// otherwise.
	ProjectID string
}
