// internal/validation/visibility.go
package validation

import (
	"github.com/solatis/formkeeper/internal/condition"
	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

// IsFieldVisible reports whether field is shown for data. Fields without a
// condition are always visible.
func IsFieldVisible(field *schema.Field, data types.Values) bool {
	if field.Condition() == nil {
		return true
	}
	return condition.Evaluate(field.Condition(), data.Generic())
}

// IsStepVisible reports whether step is shown for data. Steps without a
// condition are always visible.
func IsStepVisible(step *schema.Step, data types.Values) bool {
	if step.Condition == nil {
		return true
	}
	return condition.Evaluate(step.Condition, data.Generic())
}

// VisibilityMap holds the visibility of every step (by id) and field (by
// name) of a form. A field inside a hidden step is reported hidden.
type VisibilityMap struct {
	Steps  map[string]bool `json:"steps"`
	Fields map[string]bool `json:"fields"`
}

// Visibility evaluates all step and field conditions against data once.
func Visibility(steps []schema.Step, data types.Values) VisibilityMap {
	generic := data.Generic()
	vm := VisibilityMap{Steps: map[string]bool{}, Fields: map[string]bool{}}

	for i := range steps {
		step := &steps[i]
		stepVisible := condition.Evaluate(step.Condition, generic)
		vm.Steps[string(step.ID)] = stepVisible

		for j := range step.Fields {
			field := &step.Fields[j]
			visible := stepVisible && condition.Evaluate(field.Condition(), generic)
			// A name shared across steps is visible if any occurrence is.
			vm.Fields[field.Name] = vm.Fields[field.Name] || visible
		}
	}
	return vm
}
