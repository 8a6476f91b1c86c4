// api/pdp/engine/rule.go
package engine

import (
	"context"
	"time"

	"github.com/taskhive/taskhive/api/model"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
)

// RuleEvaluator decides whether a single rule matches a fully-resolved
// request context. Checks run in a fixed order and short-circuit on the
// first failing dimension: action, resource, subject, environment,
// condition.
type RuleEvaluator struct {
	conditions *ConditionEvaluator
	roles      *RoleResolver
}

func NewRuleEvaluator(conditions *ConditionEvaluator, roles *RoleResolver) *RuleEvaluator {
	return &RuleEvaluator{conditions: conditions, roles: roles}
}

// Evaluate reports whether the rule matches. A non-nil error means the rule
// data itself is malformed; the caller is expected to skip the rule and
// continue with the rest.
func (re *RuleEvaluator) Evaluate(ctx context.Context, rule model.Rule, ectx *pdp_model.EvaluationContext) (bool, error) {
	if !re.matchAction(rule, ectx) {
		return false, nil
	}
	if !re.matchResource(rule, ectx) {
		return false, nil
	}
	if !re.matchSubject(rule, ectx) {
		return false, nil
	}
	if !re.matchEnvironment(rule, ectx) {
		return false, nil
	}

	cond, err := ParseCondition(rule.Condition)
	if err != nil {
		return false, err
	}
	return re.conditions.Evaluate(ctx, cond, ectx), nil
}

func (re *RuleEvaluator) matchAction(rule model.Rule, ectx *pdp_model.EvaluationContext) bool {
	expected, ok := rule.ActionAttributes["type"]
	if !ok {
		return true
	}
	return MatchAttribute(ectx.Action.Type, expected)
}

func (re *RuleEvaluator) matchResource(rule model.Rule, ectx *pdp_model.EvaluationContext) bool {
	for key, expected := range rule.ResourceAttributes {
		if key == "type" {
			if !MatchAttribute(ectx.Resource.Type.String(), expected) {
				return false
			}
			continue
		}
		if !MatchAttribute(ectx.Resource.Attributes[key], expected) {
			return false
		}
	}
	return true
}

func (re *RuleEvaluator) matchSubject(rule model.Rule, ectx *pdp_model.EvaluationContext) bool {
	for key, expected := range rule.SubjectAttributes {
		if !MatchAttribute(re.subjectValue(key, ectx.Subject), expected) {
			return false
		}
	}
	return true
}

// subjectValue resolves one subject attribute. departmentId and role are
// computed from the snapshot; everything else reads the enrichment map.
func (re *RuleEvaluator) subjectValue(key string, subject *pdp_model.Subject) any {
	switch key {
	case "id", "userId":
		return subject.ID
	case "isAdmin":
		return subject.IsAdmin
	case "departmentId":
		if subject.DepartmentID == "" {
			return nil
		}
		return subject.DepartmentID
	case "role":
		return re.roles.HighestRole(subject).String()
	case "teamIds":
		return subject.TeamIDs()
	default:
		return subject.Attributes[key]
	}
}

func (re *RuleEvaluator) matchEnvironment(rule model.Rule, ectx *pdp_model.EvaluationContext) bool {
	for key, expected := range rule.EnvironmentAttributes {
		switch key {
		case "timeRange":
			if !matchTimeRange(ectx.Environment.Time, expected) {
				return false
			}
		case "businessHours":
			want, ok := expected.(bool)
			if !ok || inBusinessHours(ectx.Environment.Time) != want {
				return false
			}
		case "ip":
			if !MatchAttribute(ectx.Environment.IP, expected) {
				return false
			}
		case "userAgent":
			if !MatchAttribute(ectx.Environment.UserAgent, expected) {
				return false
			}
		default:
			// The request carries no value for unmodeled keys; only a
			// wildcard expectation can match them.
			if !MatchAttribute(nil, expected) {
				return false
			}
		}
	}
	return true
}

// matchTimeRange checks the decision time against an expected two-element
// list of RFC3339 bounds. Anything unparseable fails the check.
func matchTimeRange(t time.Time, expected any) bool {
	bounds, ok := pdp_model.AsList(expected)
	if !ok || len(bounds) != 2 {
		return false
	}
	startStr, ok := bounds[0].(string)
	if !ok {
		return false
	}
	endStr, ok := bounds[1].(string)
	if !ok {
		return false
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return false
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return false
	}
	return !t.Before(start) && !t.After(end)
}

func inBusinessHours(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return t.Hour() >= 9 && t.Hour() < 17
}
