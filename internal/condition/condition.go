// internal/condition/condition.go
package condition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/solatis/formkeeper/internal/types"
)

/*
 * Condition expression tree.
 *
 * A Condition is a tagged variant: a Comparison of one field against a
 * value, or an And/Or over child conditions. Trees are decoded fresh from
 * stored JSON and never mutated in place.
 *
 * Wire format:
 *   {"field": "age", "op": "gte", "value": 18}
 *   {"and": [<condition>, ...]}
 *   {"or":  [<condition>, ...]}
 *
 * "value" is omitted for empty/not_empty. Operator aliases (ne, is_empty,
 * is_not_empty) are accepted on input; output always uses canonical names.
 */

// Kind identifies the variant of a Condition.
type Kind int

const (
	KindComparison Kind = iota
	KindAnd
	KindOr
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindComparison:
		return "comparison"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Condition is a node of a visibility expression.
//
// Field, Op and Value are used by comparisons; Conditions by And/Or.
// Value is nil when absent, otherwise in JSON-decoded form (string,
// float64, bool, []any, map[string]any).
type Condition struct {
	Kind       Kind
	Field      string
	Op         Operator
	Value      any
	Conditions []Condition
}

// Compare builds a comparison of field against value.
func Compare(field string, op Operator, value any) Condition {
	return Condition{Kind: KindComparison, Field: field, Op: op, Value: normalize(value)}
}

// Eq builds field == value.
func Eq(field string, value any) Condition { return Compare(field, OpEq, value) }

// Neq builds field != value.
func Neq(field string, value any) Condition { return Compare(field, OpNeq, value) }

// Gt builds field > value.
func Gt(field string, value any) Condition { return Compare(field, OpGt, value) }

// Gte builds field >= value.
func Gte(field string, value any) Condition { return Compare(field, OpGte, value) }

// Lt builds field < value.
func Lt(field string, value any) Condition { return Compare(field, OpLt, value) }

// Lte builds field <= value.
func Lte(field string, value any) Condition { return Compare(field, OpLte, value) }

// Contains builds a substring or element-membership test.
func Contains(field string, value any) Condition { return Compare(field, OpContains, value) }

// In builds a membership test of field in values.
func In(field string, values ...any) Condition {
	return Compare(field, OpIn, values)
}

// Empty builds a test for an absent or empty field.
func Empty(field string) Condition { return Compare(field, OpEmpty, nil) }

// NotEmpty builds a test for a present, non-empty field.
func NotEmpty(field string) Condition { return Compare(field, OpNotEmpty, nil) }

// And builds a conjunction. And() is always true.
func And(conds ...Condition) Condition {
	return Condition{Kind: KindAnd, Conditions: conds}
}

// Or builds a disjunction. Or() is always false.
func Or(conds ...Condition) Condition {
	return Condition{Kind: KindOr, Conditions: conds}
}

// Fields returns the distinct field names referenced by the tree, in
// first-seen order.
func (c Condition) Fields() []string {
	var out []string
	seen := map[string]bool{}
	var walk func(Condition)
	walk = func(n Condition) {
		if n.Kind == KindComparison {
			if !seen[n.Field] {
				seen[n.Field] = true
				out = append(out, n.Field)
			}
			return
		}
		for _, child := range n.Conditions {
			walk(child)
		}
	}
	walk(c)
	return out
}

type comparisonWire struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value any      `json:"value,omitempty"`
}

// generic returns the tree as plain maps and slices, the shape shared by
// the JSON and YAML encodings.
func (c Condition) generic() any {
	switch c.Kind {
	case KindAnd, KindOr:
		children := make([]any, 0, len(c.Conditions))
		for _, child := range c.Conditions {
			children = append(children, child.generic())
		}
		return map[string]any{c.Kind.String(): children}
	default:
		m := map[string]any{"field": c.Field, "op": c.Op.String()}
		if c.Value != nil {
			m["value"] = c.Value
		}
		return m
	}
}

// MarshalJSON implements json.Marshaler.
func (c Condition) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KindAnd, KindOr:
		children := c.Conditions
		if children == nil {
			children = []Condition{}
		}
		return json.Marshal(map[string][]Condition{c.Kind.String(): children})
	case KindComparison:
		return json.Marshal(comparisonWire{Field: c.Field, Op: c.Op, Value: c.Value})
	default:
		return nil, fmt.Errorf("%w: unknown kind %v", types.ErrInvalidCondition, c.Kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler. A comparison is recognised by
// its "field" and "op" keys; otherwise an "and" or "or" key is required.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidCondition, err)
	}
	if obj == nil {
		return fmt.Errorf("%w: null condition", types.ErrInvalidCondition)
	}

	rawField, hasField := obj["field"]
	rawOp, hasOp := obj["op"]
	if hasField && hasOp {
		var field, opName string
		if err := json.Unmarshal(rawField, &field); err != nil {
			return fmt.Errorf("%w: field: %v", types.ErrInvalidCondition, err)
		}
		if err := json.Unmarshal(rawOp, &opName); err != nil {
			return fmt.Errorf("%w: op: %v", types.ErrInvalidCondition, err)
		}
		op, err := ParseOperator(opName)
		if err != nil {
			return err
		}
		var value any
		if rawValue, ok := obj["value"]; ok {
			if err := json.Unmarshal(rawValue, &value); err != nil {
				return fmt.Errorf("%w: value: %v", types.ErrInvalidCondition, err)
			}
		}
		*c = Condition{Kind: KindComparison, Field: field, Op: op, Value: value}
		return nil
	}

	for _, kind := range []Kind{KindAnd, KindOr} {
		rawChildren, ok := obj[kind.String()]
		if !ok {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(rawChildren), []byte("null")) {
			return fmt.Errorf("%w: %s must be a list", types.ErrInvalidCondition, kind)
		}
		var children []Condition
		if err := json.Unmarshal(rawChildren, &children); err != nil {
			return fmt.Errorf("%s: %w", kind, asConditionError(err))
		}
		if children == nil {
			children = []Condition{}
		}
		*c = Condition{Kind: kind, Conditions: children}
		return nil
	}

	return fmt.Errorf("%w: expected field/op, and, or or", types.ErrInvalidCondition)
}

// asConditionError keeps sentinel errors from nested nodes and classifies
// everything else (syntax and type errors) as ErrInvalidCondition.
func asConditionError(err error) error {
	if errors.Is(err, types.ErrInvalidCondition) || errors.Is(err, types.ErrUnknownOperator) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrInvalidCondition, err)
}

// MarshalYAML implements yaml.Marshaler using the JSON wire shape.
func (c Condition) MarshalYAML() (any, error) {
	return c.generic(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler by routing the decoded node
// through the JSON decoder, so both encodings accept the same documents.
func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidCondition, err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidCondition, err)
	}
	return c.UnmarshalJSON(data)
}
