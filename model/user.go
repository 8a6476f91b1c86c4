// api/model/user.go
package model

// TeamRole records one team membership of a user together with the role the
// user holds on that team ("viewer", "member", "admin" or "owner").
type TeamRole struct {
	TeamID string `json:"team_id"`
	Role   string `json:"role"`
}

// ProjectInfo is the slice of project state the engine consumes: who manages
// it, who is directly a member, and which teams are assigned to it.
type ProjectInfo struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	ManagerID string   `json:"manager_id"`
	MemberIDs []string `json:"member_ids"`
	TeamIDs   []string `json:"team_ids"`
}

// TaskInfo is the slice of task state the engine consumes.
type TaskInfo struct {
	ID          string   `json:"id"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	ProjectID   string   `json:"project_id"`
	CreatorID   string   `json:"creator_id"`
	AssigneeIDs []string `json:"assignee_ids"`
}
