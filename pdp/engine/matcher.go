// api/pdp/engine/matcher.go
package engine

import (
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
)

// Wildcard matches any actual value, including absent ones.
const Wildcard = "*"

// MatchAttribute compares one actual attribute value against a rule's
// expected value. Both sides must already be resolved scalars or lists; the
// matcher never dereferences anything.
//
//   - expected "*" matches unconditionally
//   - two lists match when they share at least one element
//   - a list on either side matches when the other side's scalar is a member
//   - otherwise plain equality, with numeric values compared by magnitude
func MatchAttribute(actual, expected any) bool {
	if s, ok := expected.(string); ok && s == Wildcard {
		return true
	}

	expectedList, expectedIsList := pdp_model.AsList(expected)
	actualList, actualIsList := pdp_model.AsList(actual)

	switch {
	case expectedIsList && actualIsList:
		return pdp_model.Overlaps(actualList, expectedList)
	case expectedIsList:
		return pdp_model.Contains(expectedList, actual)
	case actualIsList:
		return pdp_model.Contains(actualList, expected)
	default:
		return pdp_model.Equal(actual, expected)
	}
}
