// api/pdp/engine/matcher_test.go
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchAttribute_Wildcard(t *testing.T) {
	assert.True(t, MatchAttribute("update", "*"))
	assert.True(t, MatchAttribute(nil, "*"))
	assert.True(t, MatchAttribute([]any{"a", "b"}, "*"))
}

func TestMatchAttribute_ScalarEquality(t *testing.T) {
	assert.True(t, MatchAttribute("update", "update"))
	assert.False(t, MatchAttribute("update", "delete"))
	assert.True(t, MatchAttribute(true, true))
	assert.False(t, MatchAttribute(true, false))
}

func TestMatchAttribute_NumericCoercion(t *testing.T) {
	// JSON decoding yields float64 while enrichment may carry int.
	assert.True(t, MatchAttribute(42, float64(42)))
	assert.True(t, MatchAttribute(float64(42), int64(42)))
	assert.False(t, MatchAttribute(42, float64(43)))
}

func TestMatchAttribute_ListOverlap(t *testing.T) {
	assert.True(t, MatchAttribute([]any{"a", "b"}, []any{"b", "c"}))
	assert.False(t, MatchAttribute([]any{"a", "b"}, []any{"c", "d"}))
	assert.True(t, MatchAttribute([]string{"a", "b"}, []any{"b"}))
}

func TestMatchAttribute_ScalarAgainstList(t *testing.T) {
	assert.True(t, MatchAttribute("a", []any{"a", "b"}))
	assert.False(t, MatchAttribute("c", []any{"a", "b"}))
	assert.True(t, MatchAttribute([]any{"a", "b"}, "a"))
	assert.False(t, MatchAttribute([]any{"a", "b"}, "c"))
}

func TestMatchAttribute_AbsentActual(t *testing.T) {
	assert.False(t, MatchAttribute(nil, "x"))
	assert.False(t, MatchAttribute(nil, []any{"x"}))
}
