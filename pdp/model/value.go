// api/pdp/model/value.go
package model

// Attribute values arrive from JSON columns and caller snapshots as loosely
// typed data: strings, numbers, bools, lists and maps. The helpers below
// normalize them for comparison without reflection.

// AsList reports whether v is a list value and returns its elements.
func AsList(v any) ([]any, bool) {
	switch vv := v.(type) {
	case []any:
		return vv, true
	case []string:
		out := make([]any, len(vv))
		for i, s := range vv {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// Equal compares two scalar attribute values. Numeric values compare by
// magnitude regardless of the concrete Go type JSON decoding produced.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

// Contains reports whether list contains a scalar equal to v.
func Contains(list []any, v any) bool {
	for _, item := range list {
		if Equal(item, v) {
			return true
		}
	}
	return false
}

// Overlaps reports whether the two lists share at least one element.
func Overlaps(a, b []any) bool {
	for _, item := range a {
		if Contains(b, item) {
			return true
		}
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
