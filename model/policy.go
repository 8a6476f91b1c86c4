// api/model/policy.go
package model

import (
	"encoding/json"
	"time"
)

const (
	EffectAllow = "ALLOW"
	EffectDeny  = "DENY"
)

// Policy is a named, independently activatable bundle of rules. Deactivating
// a policy removes its rules from future aggregation without touching its
// assignments.
type Policy struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	Rules       []Rule    `json:"rules"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Rule is one ALLOW/DENY clause. A nil attribute bucket means "no constraint
// on that dimension". Condition is kept as raw JSON and parsed at evaluation
// time so a malformed condition disables only the offending rule.
type Rule struct {
	ID                    string          `json:"id"`
	PolicyID              string          `json:"policy_id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	Effect                string          `json:"effect"` // "ALLOW" or "DENY"
	Priority              int             `json:"priority"`
	SubjectAttributes     map[string]any  `json:"subject_attributes,omitempty"`
	ResourceAttributes    map[string]any  `json:"resource_attributes,omitempty"`
	ActionAttributes      map[string]any  `json:"action_attributes,omitempty"`
	EnvironmentAttributes map[string]any  `json:"environment_attributes,omitempty"`
	Condition             json.RawMessage `json:"condition,omitempty"`
}

// UserPolicy binds a policy to a user, optionally time-limited. The binding
// is live iff ExpiresAt is nil or in the future.
type UserPolicy struct {
	UserID     string     `json:"user_id"`
	PolicyID   string     `json:"policy_id"`
	AssignedAt time.Time  `json:"assigned_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// ProjectPolicy binds a policy to a project instance.
type ProjectPolicy struct {
	ProjectID  string     `json:"project_id"`
	PolicyID   string     `json:"policy_id"`
	AssignedAt time.Time  `json:"assigned_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// TaskPolicy binds a policy to a task instance.
type TaskPolicy struct {
	TaskID     string     `json:"task_id"`
	PolicyID   string     `json:"policy_id"`
	AssignedAt time.Time  `json:"assigned_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}
