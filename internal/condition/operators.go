// internal/condition/operators.go
package condition

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/solatis/formkeeper/internal/types"
)

/*
 * Comparison operators.
 *
 * Every operator is a total function of (field value, comparison value):
 * type mismatches resolve to false, never to an error.
 *
 * Operators:
 *   - eq/neq: coercing equality (numeric, then string, then boolean, then
 *     structural); neq is exactly !eq
 *   - gt/gte/lt/lte: numeric only, numeric strings accepted on both sides
 *   - contains/not_contains: substring for text, element membership for lists
 *   - starts_with/ends_with: text only
 *   - in: comparison value must be a list; membership under eq semantics
 *   - empty/not_empty: presence checks, resolved before Compare is reached
 */

// Operator identifies a comparison.
type Operator int

const (
	OpUnspecified Operator = iota
	OpEq
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpContains
	OpNotContains
	OpStartsWith
	OpEndsWith
	OpIn
	OpEmpty
	OpNotEmpty
)

var operatorNames = [...]string{
	OpUnspecified: "unspecified",
	OpEq:          "eq",
	OpNeq:         "neq",
	OpGt:          "gt",
	OpGte:         "gte",
	OpLt:          "lt",
	OpLte:         "lte",
	OpContains:    "contains",
	OpNotContains: "not_contains",
	OpStartsWith:  "starts_with",
	OpEndsWith:    "ends_with",
	OpIn:          "in",
	OpEmpty:       "empty",
	OpNotEmpty:    "not_empty",
}

var operatorAliases = map[string]Operator{
	"eq":           OpEq,
	"neq":          OpNeq,
	"ne":           OpNeq,
	"gt":           OpGt,
	"gte":          OpGte,
	"lt":           OpLt,
	"lte":          OpLte,
	"contains":     OpContains,
	"not_contains": OpNotContains,
	"starts_with":  OpStartsWith,
	"ends_with":    OpEndsWith,
	"in":           OpIn,
	"empty":        OpEmpty,
	"is_empty":     OpEmpty,
	"not_empty":    OpNotEmpty,
	"is_not_empty": OpNotEmpty,
}

// ParseOperator converts a wire name (or alias) to an Operator.
func ParseOperator(s string) (Operator, error) {
	if op, ok := operatorAliases[s]; ok {
		return op, nil
	}
	return OpUnspecified, fmt.Errorf("%w: %q", types.ErrUnknownOperator, s)
}

// String returns the canonical wire name.
func (op Operator) String() string {
	if op < 0 || int(op) >= len(operatorNames) {
		return fmt.Sprintf("Operator(%d)", int(op))
	}
	return operatorNames[op]
}

// RequiresValue reports whether comparisons with op need a comparison value.
func (op Operator) RequiresValue() bool {
	return op != OpEmpty && op != OpNotEmpty
}

// MarshalText implements encoding.TextMarshaler.
func (op Operator) MarshalText() ([]byte, error) {
	if op <= OpUnspecified || int(op) >= len(operatorNames) {
		return nil, fmt.Errorf("%w: %d", types.ErrUnknownOperator, int(op))
	}
	return []byte(operatorNames[op]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *Operator) UnmarshalText(text []byte) error {
	parsed, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// Apply applies op to a present field value and a comparison value.
// Both should already be normalized. Empty/NotEmpty are presence checks
// and are answered by isEmpty here for completeness.
func Apply(op Operator, value, target any) bool {
	switch op {
	case OpEq:
		return valuesEqual(value, target)
	case OpNeq:
		return !valuesEqual(value, target)
	case OpGt:
		return compareNumeric(value, target, func(a, b float64) bool { return a > b })
	case OpGte:
		return compareNumeric(value, target, func(a, b float64) bool { return a >= b })
	case OpLt:
		return compareNumeric(value, target, func(a, b float64) bool { return a < b })
	case OpLte:
		return compareNumeric(value, target, func(a, b float64) bool { return a <= b })
	case OpContains:
		return compareContains(value, target)
	case OpNotContains:
		return !compareContains(value, target)
	case OpStartsWith:
		return compareStrings(value, target, strings.HasPrefix)
	case OpEndsWith:
		return compareStrings(value, target, strings.HasSuffix)
	case OpIn:
		return compareIn(value, target)
	case OpEmpty:
		return isEmpty(value)
	case OpNotEmpty:
		return !isEmpty(value)
	default:
		return false
	}
}

// valuesEqual is the coercing equality shared by eq, neq and in.
func valuesEqual(a, b any) bool {
	if na, nb, ok := asNumbers(a, b); ok {
		return approxEqual(na, nb)
	}
	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		return sa == sb
	}
	if ba, bb, ok := asBools(a, b); ok {
		return ba == bb
	}
	return reflect.DeepEqual(a, b)
}

func compareNumeric(a, b any, cmp func(a, b float64) bool) bool {
	na, nb, ok := asNumbers(a, b)
	if !ok {
		return false
	}
	return cmp(na, nb)
}

// compareContains matches a substring in text, or an exact element in a list.
func compareContains(value, needle any) bool {
	switch v := value.(type) {
	case string:
		n, ok := needle.(string)
		if !ok {
			return false
		}
		return strings.Contains(v, n)
	case []any:
		for _, elem := range v {
			if reflect.DeepEqual(elem, needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func compareStrings(value, target any, match func(s, affix string) bool) bool {
	vs, ok1 := value.(string)
	ts, ok2 := target.(string)
	if !ok1 || !ok2 {
		return false
	}
	return match(vs, ts)
}

// compareIn checks membership using eq semantics. A non-list comparison
// value never matches.
func compareIn(value, set any) bool {
	arr, ok := set.([]any)
	if !ok {
		return false
	}
	for _, elem := range arr {
		if valuesEqual(value, elem) {
			return true
		}
	}
	return false
}
