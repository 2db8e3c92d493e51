// internal/condition/parse.go
package condition

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/solatis/formkeeper/internal/types"
)

/*
 * Load-time validation.
 *
 * Structural problems in a stored condition (bad JSON, unknown operator,
 * missing comparison value, runaway nesting) are reported here, when a
 * definition is created or loaded, so that Evaluate only ever sees
 * well-formed trees.
 */

// Parse decodes and validates a stored condition. Empty input and JSON
// null yield a nil condition (always visible).
func Parse(data []byte) (*Condition, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var c Condition
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, asConditionError(err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the tree for structural errors.
func (c Condition) Validate() error {
	return validate(c, 1)
}

func validate(c Condition, depth int) error {
	if depth > types.MaxConditionDepth {
		return types.ErrConditionTooDeep
	}

	switch c.Kind {
	case KindAnd, KindOr:
		for i, child := range c.Conditions {
			if err := validate(child, depth+1); err != nil {
				return fmt.Errorf("%s[%d]: %w", c.Kind, i, err)
			}
		}
		return nil
	case KindComparison:
		return validateComparison(c)
	default:
		return fmt.Errorf("%w: unknown kind %v", types.ErrInvalidCondition, c.Kind)
	}
}

func validateComparison(c Condition) error {
	if c.Field == "" {
		return fmt.Errorf("%w: comparison without field", types.ErrInvalidCondition)
	}
	if c.Op <= OpUnspecified || int(c.Op) >= len(operatorNames) {
		return fmt.Errorf("%w: field %q", types.ErrUnknownOperator, c.Field)
	}
	if !c.Op.RequiresValue() {
		return nil
	}
	if c.Value == nil {
		return fmt.Errorf("%w: %s on %q requires a value", types.ErrInvalidCondition, c.Op, c.Field)
	}
	if c.Op == OpIn {
		list, ok := c.Value.([]any)
		if !ok {
			return fmt.Errorf("%w: in on %q requires a list value", types.ErrInvalidCondition, c.Field)
		}
		if len(list) > types.MaxInOperatorValues {
			return types.ErrTooManyInValues
		}
	}
	return nil
}
