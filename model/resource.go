// api/model/resource.go
package model

// ResourceType enumerates the resource kinds the engine understands. Using a
// typed value instead of bare strings keeps type-specific dispatch in one
// lookup table rather than scattered string comparisons.
type ResourceType string

const (
	ResourceProject    ResourceType = "project"
	ResourceTask       ResourceType = "task"
	ResourceUser       ResourceType = "user"
	ResourceTeam       ResourceType = "team"
	ResourcePolicy     ResourceType = "policy"
	ResourceComment    ResourceType = "comment"
	ResourceDepartment ResourceType = "department"
)

var knownResourceTypes = map[ResourceType]bool{
	ResourceProject:    true,
	ResourceTask:       true,
	ResourceUser:       true,
	ResourceTeam:       true,
	ResourcePolicy:     true,
	ResourceComment:    true,
	ResourceDepartment: true,
}

// ParseResourceType returns the typed resource kind for a wire-level string.
// Unknown strings are passed through unchanged so new resource kinds can be
// governed by policies before the engine learns about them.
func ParseResourceType(s string) (ResourceType, bool) {
	rt := ResourceType(s)
	return rt, knownResourceTypes[rt]
}

func (rt ResourceType) String() string {
	return string(rt)
}
