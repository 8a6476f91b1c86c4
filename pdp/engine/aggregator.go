// api/pdp/engine/aggregator.go
package engine

import (
	"context"
	"sort"

	"go.uber.org/zap"

	logger "github.com/taskhive/taskhive/api/logging"
	"github.com/taskhive/taskhive/api/model"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
)

// PolicyAggregator resolves the live, active policies bound to a subject and
// to a specific resource instance, flattens their rules and orders them for
// evaluation. Policy rule lists are read through the TTL cache.
type PolicyAggregator struct {
	store PolicyStore
	cache *PolicyCache
}

func NewPolicyAggregator(store PolicyStore, cache *PolicyCache) *PolicyAggregator {
	return &PolicyAggregator{store: store, cache: cache}
}

// assignmentSources maps each resource type to the assignment lookups that
// contribute policies for it. Tasks inherit policies from their owning
// project; resource types without an entry are governed only by user-bound
// policies.
var assignmentSources = map[model.ResourceType][]func(pa *PolicyAggregator, ctx context.Context, resourceID, projectID string) ([]string, error){
	model.ResourceProject: {
		func(pa *PolicyAggregator, ctx context.Context, resourceID, _ string) ([]string, error) {
			return pa.store.GetLiveResourcePolicies(ctx, model.ResourceProject, resourceID)
		},
	},
	model.ResourceTask: {
		func(pa *PolicyAggregator, ctx context.Context, resourceID, _ string) ([]string, error) {
			return pa.store.GetLiveResourcePolicies(ctx, model.ResourceTask, resourceID)
		},
		func(pa *PolicyAggregator, ctx context.Context, _ string, projectID string) ([]string, error) {
			if projectID == "" {
				return nil, nil
			}
			return pa.store.GetLiveResourcePolicies(ctx, model.ResourceProject, projectID)
		},
	},
}

// ResolveRules returns every rule bound to the subject or the resource,
// sorted by priority descending.
//
// Tie-break contract: rules with equal priority keep the order in which
// their policies were fetched — user-bound policies first, then the
// resource's own policies, then (for tasks) the parent project's policies,
// each batch in store return order. The sort is stable, so this order is
// deterministic and callers may rely on it.
func (pa *PolicyAggregator) ResolveRules(ctx context.Context, subjectID string, resource pdp_model.ResourceRef, projectID string) []model.Rule {
	policyIDs := make([]string, 0, 8)
	seen := make(map[string]bool)

	appendIDs := func(ids []string, err error, source string) {
		if err != nil {
			logger.Warn("Failed to fetch policy assignments, continuing without them",
				zap.String("source", source),
				zap.Error(err))
			return
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				policyIDs = append(policyIDs, id)
			}
		}
	}

	userIDs, err := pa.store.GetLiveUserPolicies(ctx, subjectID)
	appendIDs(userIDs, err, "user")

	if resource.ID != "" {
		for _, fetch := range assignmentSources[resource.Type] {
			ids, err := fetch(pa, ctx, resource.ID, projectID)
			appendIDs(ids, err, resource.Type.String())
		}
	}

	var rules []model.Rule
	for _, policyID := range policyIDs {
		rules = append(rules, pa.policyRules(ctx, policyID)...)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules
}

// policyRules returns one policy's rules, served from the cache when fresh.
func (pa *PolicyAggregator) policyRules(ctx context.Context, policyID string) []model.Rule {
	if rules, ok := pa.cache.Get(policyID); ok {
		return rules
	}

	rules, err := pa.store.GetPolicyRules(ctx, policyID)
	if err != nil {
		logger.Warn("Failed to load policy rules, policy contributes nothing to this decision",
			zap.String("policyId", policyID),
			zap.Error(err))
		return nil
	}

	pa.cache.Set(policyID, rules)
	return rules
}

// Invalidate drops one policy's cached rules.
func (pa *PolicyAggregator) Invalidate(policyID string) {
	pa.cache.Invalidate(policyID)
}

// Clear empties the rule cache.
func (pa *PolicyAggregator) Clear() {
	pa.cache.Clear()
}
