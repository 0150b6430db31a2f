package ledger

import (
	"reflect"
	"strings"
)

// matchesFilters reports whether a decoded record satisfies every
// filter. Filter keys are dotted paths ("metadata.benchmark") resolved
// through nested mappings; any missing segment or non-mapping
// intermediate value means no match.
func matchesFilters(record map[string]any, filters map[string]any) bool {
	for path, want := range filters {
		current := any(record)

		found := true
		for _, segment := range strings.Split(path, ".") {
			mapping, ok := current.(map[string]any)
			if !ok {
				found = false
				break
			}

			current, ok = mapping[segment]
			if !ok {
				found = false
				break
			}
		}

		if !found || !valuesEqual(current, want) {
			return false
		}
	}

	return true
}

// valuesEqual compares a decoded JSON value against a caller-supplied
// one. JSON decoding turns every number into float64, so numeric values
// are compared numerically regardless of the caller's Go type.
func valuesEqual(got, want any) bool {
	gotNum, gotOK := numericValue(got)
	wantNum, wantOK := numericValue(want)

	if gotOK && wantOK {
		return gotNum == wantNum
	}

	return reflect.DeepEqual(got, want)
}

func numericValue(v any) (float64, bool) {
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
	}

	return 0, false
}
