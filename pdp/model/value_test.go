// api/pdp/model/value_test.go
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsList(t *testing.T) {
	list, ok := AsList([]any{"a", 1})
	assert.True(t, ok)
	assert.Len(t, list, 2)

	list, ok = AsList([]string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, list)

	_, ok = AsList("a")
	assert.False(t, ok)
	_, ok = AsList(nil)
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("a", "a"))
	assert.False(t, Equal("a", "b"))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal("a", nil))

	// JSON numbers decode as float64; enrichment may produce ints.
	assert.True(t, Equal(1, float64(1)))
	assert.True(t, Equal(int64(7), 7))
	assert.False(t, Equal(1, float64(2)))
	assert.False(t, Equal(1, "1"))
}

func TestContains(t *testing.T) {
	list := []any{"a", float64(2), true}
	assert.True(t, Contains(list, "a"))
	assert.True(t, Contains(list, 2))
	assert.True(t, Contains(list, true))
	assert.False(t, Contains(list, "b"))
	assert.False(t, Contains(nil, "a"))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps([]any{"a", "b"}, []any{"b", "c"}))
	assert.False(t, Overlaps([]any{"a", "b"}, []any{"c", "d"}))
	assert.False(t, Overlaps(nil, []any{"a"}))
}
