// internal/condition/evaluate.go
package condition

import "github.com/solatis/formkeeper/internal/types"

/*
 * Condition evaluation.
 *
 * Evaluate is total: it never returns an error and never panics. Anything
 * unparseable or mismatched resolves to false, with two exceptions: empty
 * is true for an absent field, and And/Or keep their identities
 * (And() == true, Or() == false).
 *
 * Evaluation flow for a comparison:
 *   1. empty/not_empty answer from presence and emptiness alone
 *   2. an absent field fails every other operator (neq included)
 *   3. a comparison without a value fails
 *   4. otherwise both sides are normalized and handed to Compare
 *
 * And and Or evaluate children in order and stop at the first decisive one.
 */

// Evaluate reports whether cond holds for values. A nil condition always
// holds. values is read only.
func Evaluate(cond *Condition, values map[string]any) bool {
	if cond == nil {
		return true
	}
	return evaluate(cond, values)
}

// EvaluateValues evaluates cond against submitted values.
func EvaluateValues(cond *Condition, values types.Values) bool {
	if cond == nil {
		return true
	}
	return evaluate(cond, values.Generic())
}

func evaluate(c *Condition, values map[string]any) bool {
	switch c.Kind {
	case KindAnd:
		for i := range c.Conditions {
			if !evaluate(&c.Conditions[i], values) {
				return false
			}
		}
		return true
	case KindOr:
		for i := range c.Conditions {
			if evaluate(&c.Conditions[i], values) {
				return true
			}
		}
		return false
	case KindComparison:
		return evaluateComparison(c, values)
	default:
		return false
	}
}

func evaluateComparison(c *Condition, values map[string]any) bool {
	raw, present := values[c.Field]

	switch c.Op {
	case OpEmpty:
		return !present || isEmpty(normalize(raw))
	case OpNotEmpty:
		return present && !isEmpty(normalize(raw))
	}

	if !present || c.Value == nil {
		return false
	}
	return Apply(c.Op, normalize(raw), normalize(c.Value))
}
