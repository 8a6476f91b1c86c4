// api/dao/policy_dao.go
package dao

import (
	"context"
	"encoding/json"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	taskhive_errors "github.com/taskhive/taskhive/api/errors"
	logger "github.com/taskhive/taskhive/api/logging"
	"github.com/taskhive/taskhive/api/model"
)

// PolicyDAO reads live policy assignments and policy rules. Rule attribute
// buckets are stored as JSON strings on the RULE node, like every other
// structured property in the graph.
type PolicyDAO struct {
	Driver neo4j.Driver
}

func NewPolicyDAO(driver neo4j.Driver) *PolicyDAO {
	return &PolicyDAO{Driver: driver}
}

// resourceLabels maps a resource type to its node label. Types without an
// entry cannot carry policy assignments.
var resourceLabels = map[model.ResourceType]string{
	model.ResourceProject: "PROJECT",
	model.ResourceTask:    "TASK",
}

// GetLiveUserPolicies returns the ids of active policies bound to the user
// by an unexpired assignment.
func (dao *PolicyDAO) GetLiveUserPolicies(ctx context.Context, userID string) ([]string, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:USER {id: $userId})-[a:HAS_POLICY]->(p:POLICY)
        WHERE p.isActive = true AND (a.expiresAt IS NULL OR a.expiresAt > $now)
        RETURN p.id AS policyId
        ORDER BY a.assignedAt
        `
		records, err := transaction.Run(query, map[string]interface{}{
			"userId": userID,
			"now":    time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return nil, taskhive_errors.ErrDatabaseOperation
		}
		return collectPolicyIDs(records)
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// GetLiveResourcePolicies returns the ids of active policies bound to one
// resource instance by an unexpired assignment.
func (dao *PolicyDAO) GetLiveResourcePolicies(ctx context.Context, resourceType model.ResourceType, resourceID string) ([]string, error) {
	label, ok := resourceLabels[resourceType]
	if !ok {
		return nil, nil
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:POLICY)-[g:GOVERNS]->(r:` + label + ` {id: $resourceId})
        WHERE p.isActive = true AND (g.expiresAt IS NULL OR g.expiresAt > $now)
        RETURN p.id AS policyId
        ORDER BY g.assignedAt
        `
		records, err := transaction.Run(query, map[string]interface{}{
			"resourceId": resourceID,
			"now":        time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return nil, taskhive_errors.ErrDatabaseOperation
		}
		return collectPolicyIDs(records)
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// GetPolicyRules loads one policy's rules. A rule whose attribute JSON does
// not parse is dropped with a warning; the rest of the policy still applies.
func (dao *PolicyDAO) GetPolicyRules(ctx context.Context, policyID string) ([]model.Rule, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:POLICY {id: $policyId})-[:HAS_RULE]->(r:RULE)
        RETURN r.id AS id, r.name AS name, r.description AS description,
               r.effect AS effect, r.priority AS priority,
               r.subjectAttributes AS subjectAttributes,
               r.resourceAttributes AS resourceAttributes,
               r.actionAttributes AS actionAttributes,
               r.environmentAttributes AS environmentAttributes,
               r.condition AS condition
        `
		records, err := transaction.Run(query, map[string]interface{}{"policyId": policyID})
		if err != nil {
			return nil, taskhive_errors.ErrDatabaseOperation
		}

		var rules []model.Rule
		for records.Next() {
			record := records.Record()
			rule, err := parseRule(policyID, record)
			if err != nil {
				id, _ := record.Get("id")
				logger.Warn("Dropping rule with malformed attributes",
					zap.Any("ruleId", id),
					zap.String("policyId", policyID),
					zap.Error(err))
				continue
			}
			rules = append(rules, rule)
		}
		return rules, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]model.Rule), nil
}

func collectPolicyIDs(records neo4j.Result) ([]string, error) {
	var ids []string
	for records.Next() {
		if v, ok := records.Record().Get("policyId"); ok {
			if id, ok := v.(string); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func parseRule(policyID string, record *neo4j.Record) (model.Rule, error) {
	rule := model.Rule{PolicyID: policyID, Effect: model.EffectAllow}

	if v, ok := record.Get("id"); ok && v != nil {
		rule.ID, _ = v.(string)
	}
	if v, ok := record.Get("name"); ok && v != nil {
		rule.Name, _ = v.(string)
	}
	if v, ok := record.Get("description"); ok && v != nil {
		rule.Description, _ = v.(string)
	}
	if v, ok := record.Get("effect"); ok && v != nil {
		rule.Effect, _ = v.(string)
	}
	if v, ok := record.Get("priority"); ok && v != nil {
		if n, ok := v.(int64); ok {
			rule.Priority = int(n)
		}
	}

	buckets := map[string]*map[string]any{
		"subjectAttributes":     &rule.SubjectAttributes,
		"resourceAttributes":    &rule.ResourceAttributes,
		"actionAttributes":      &rule.ActionAttributes,
		"environmentAttributes": &rule.EnvironmentAttributes,
	}
	for key, target := range buckets {
		v, ok := record.Get(key)
		if !ok || v == nil {
			continue
		}
		raw, ok := v.(string)
		if !ok || raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), target); err != nil {
			return model.Rule{}, err
		}
	}

	if v, ok := record.Get("condition"); ok && v != nil {
		if raw, ok := v.(string); ok && raw != "" {
			rule.Condition = json.RawMessage(raw)
		}
	}
	return rule, nil
}
