// internal/condition/coercion.go
package condition

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/solatis/formkeeper/internal/types"
)

/*
 * Value normalization and coercion for condition evaluation.
 *
 * Conditions are decoded from JSON, so comparison values arrive as string,
 * float64, bool, []any, map[string]any or nil. Field values may come from
 * types.Values or from callers passing Go literals; normalize folds both
 * into the JSON shape so that operators deal with one representation.
 *
 * Numeric coercion accepts native numbers and strings that parse with
 * strconv.ParseFloat. Boolean coercion accepts native booleans and the
 * exact strings "true" and "false"; it is used only by equality.
 */

// epsilon is the float64 machine epsilon; numbers closer than this are equal.
const epsilon = 2.220446049250313e-16

// normalize converts v to the JSON-decoded representation.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, string, bool, float64:
		return x
	case types.Value:
		return x.Any()
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, elem := range x {
			out[i] = normalize(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, elem := range x {
			out[k] = normalize(elem)
		}
		return out
	default:
		return x
	}
}

// toFloat64 reads a native number or a numeric string.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asNumbers converts both values to float64. Succeeds only if both do.
func asNumbers(a, b any) (float64, float64, bool) {
	na, oka := toFloat64(a)
	if !oka {
		return 0, 0, false
	}
	nb, okb := toFloat64(b)
	return na, nb, okb
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// toBool reads a native boolean or the strings "true"/"false".
func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch b {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func asBools(a, b any) (bool, bool, bool) {
	ba, oka := toBool(a)
	if !oka {
		return false, false, false
	}
	bb, okb := toBool(b)
	return ba, bb, okb
}

// isEmpty treats nil, blank strings, empty lists and empty objects as empty.
func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	default:
		return false
	}
}
