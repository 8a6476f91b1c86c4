// api/pdp/engine/cache.go
package engine

import (
	"sync"
	"time"

	"github.com/taskhive/taskhive/api/model"
)

// PolicyCache holds each policy's flattened rule list for a bounded TTL.
// Entries are replaced wholesale on reload, so readers never observe a
// partially updated rule list. A benign race that reloads the same policy
// twice is acceptable; reloads are idempotent.
type PolicyCache struct {
	mu      sync.RWMutex
	entries map[string]policyCacheEntry
	ttl     time.Duration

	now func() time.Time // injectable for tests
}

type policyCacheEntry struct {
	rules    []model.Rule
	cachedAt time.Time
}

func NewPolicyCache(ttl time.Duration) *PolicyCache {
	return &PolicyCache{
		entries: make(map[string]policyCacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached rules for policyID, or false when the entry is
// absent or older than the TTL.
func (pc *PolicyCache) Get(policyID string) ([]model.Rule, bool) {
	pc.mu.RLock()
	entry, ok := pc.entries[policyID]
	pc.mu.RUnlock()

	if !ok || pc.now().Sub(entry.cachedAt) > pc.ttl {
		return nil, false
	}
	return entry.rules, true
}

// Set stores the rules for policyID, stamping the entry with the current
// time.
func (pc *PolicyCache) Set(policyID string, rules []model.Rule) {
	pc.mu.Lock()
	pc.entries[policyID] = policyCacheEntry{rules: rules, cachedAt: pc.now()}
	pc.mu.Unlock()
}

// Invalidate drops the entry for one policy.
func (pc *PolicyCache) Invalidate(policyID string) {
	pc.mu.Lock()
	delete(pc.entries, policyID)
	pc.mu.Unlock()
}

// Clear empties the whole cache.
func (pc *PolicyCache) Clear() {
	pc.mu.Lock()
	pc.entries = make(map[string]policyCacheEntry)
	pc.mu.Unlock()
}
