// api/pdp/engine/cache_test.go
package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskhive/taskhive/api/model"
)

func TestPolicyCache_SetAndGet(t *testing.T) {
	cache := NewPolicyCache(5 * time.Minute)
	rules := []model.Rule{{ID: "r1", Effect: model.EffectAllow}}

	_, ok := cache.Get("p1")
	assert.False(t, ok)

	cache.Set("p1", rules)
	got, ok := cache.Get("p1")
	assert.True(t, ok)
	assert.Equal(t, rules, got)
}

func TestPolicyCache_TTLExpiry(t *testing.T) {
	cache := NewPolicyCache(5 * time.Minute)
	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Set("p1", []model.Rule{{ID: "r1"}})

	current = current.Add(5 * time.Minute)
	_, ok := cache.Get("p1")
	assert.True(t, ok, "entry at exactly the TTL boundary is still fresh")

	current = current.Add(time.Second)
	_, ok = cache.Get("p1")
	assert.False(t, ok, "entry older than the TTL is gone")
}

func TestPolicyCache_Invalidate(t *testing.T) {
	cache := NewPolicyCache(5 * time.Minute)
	cache.Set("p1", []model.Rule{{ID: "r1"}})
	cache.Set("p2", []model.Rule{{ID: "r2"}})

	cache.Invalidate("p1")

	_, ok := cache.Get("p1")
	assert.False(t, ok)
	_, ok = cache.Get("p2")
	assert.True(t, ok, "invalidation only touches the named policy")
}

func TestPolicyCache_Clear(t *testing.T) {
	cache := NewPolicyCache(5 * time.Minute)
	cache.Set("p1", []model.Rule{{ID: "r1"}})
	cache.Set("p2", []model.Rule{{ID: "r2"}})

	cache.Clear()

	_, ok := cache.Get("p1")
	assert.False(t, ok)
	_, ok = cache.Get("p2")
	assert.False(t, ok)
}

func TestPolicyCache_ConcurrentAccess(t *testing.T) {
	cache := NewPolicyCache(5 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			policyID := fmt.Sprintf("p%d", i%4)
			for j := 0; j < 100; j++ {
				cache.Set(policyID, []model.Rule{{ID: policyID}})
				cache.Get(policyID)
				cache.Invalidate(policyID)
			}
		}(i)
	}
	wg.Wait()
}
