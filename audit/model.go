// api/audit/model.go
package audit

import "time"

// PermissionLogEntry is one immutable record of an authorization decision.
// It is written once per decision and never read back by the engine.
type PermissionLogEntry struct {
	ID           string    `json:"id,omitempty"`
	UserID       string    `json:"user_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id,omitempty"`
	Allowed      bool      `json:"allowed"`
	Reason       string    `json:"reason,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
