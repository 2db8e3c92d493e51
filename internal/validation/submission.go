// internal/validation/submission.go
package validation

import (
	"github.com/solatis/formkeeper/internal/condition"
	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

/*
 * Submission validation.
 *
 * Conditions are evaluated against the complete submitted data, whatever
 * step a referenced field belongs to. A step whose condition is false is
 * skipped entirely; inside a visible step, display-only fields and fields
 * whose own condition is false are skipped.
 *
 * Values are looked up by field id first, then by field name. Errors are
 * always keyed by field name.
 */

// ValidateSubmission validates fields against data without evaluating
// any condition. Display-only fields are skipped.
func ValidateSubmission(fields []schema.Field, data types.Values) ValidationErrors {
	errs := NewValidationErrors()
	for i := range fields {
		field := &fields[i]
		if field.IsDisplayOnly() {
			continue
		}
		for _, msg := range validateLookup(field, data) {
			errs.Add(field.Name, msg)
		}
	}
	return errs
}

// ValidateMultiStepSubmission validates every visible step and groups the
// errors by step id.
func ValidateMultiStepSubmission(steps []schema.Step, data types.Values) *StepValidationErrors {
	errs := NewStepValidationErrors()
	generic := data.Generic()

	for i := range steps {
		step := &steps[i]
		if !condition.Evaluate(step.Condition, generic) {
			continue
		}
		stepID := string(step.ID)
		forEachVisibleField(step, generic, func(field *schema.Field) {
			for _, msg := range validateLookup(field, data) {
				errs.Add(stepID, field.Name, msg)
			}
		})
	}
	return errs
}

// ValidateStep validates one step with the same skip rules as
// ValidateMultiStepSubmission and returns flat errors.
func ValidateStep(step *schema.Step, data types.Values) ValidationErrors {
	errs := NewValidationErrors()
	generic := data.Generic()

	if !condition.Evaluate(step.Condition, generic) {
		return errs
	}
	forEachVisibleField(step, generic, func(field *schema.Field) {
		for _, msg := range validateLookup(field, data) {
			errs.Add(field.Name, msg)
		}
	})
	return errs
}

func forEachVisibleField(step *schema.Step, generic map[string]any, fn func(*schema.Field)) {
	for i := range step.Fields {
		field := &step.Fields[i]
		if field.IsDisplayOnly() {
			continue
		}
		if !condition.Evaluate(field.Condition(), generic) {
			continue
		}
		fn(field)
	}
}

func validateLookup(field *schema.Field, data types.Values) []string {
	value, _ := data.Lookup(string(field.ID), field.Name)
	return ValidateField(field, value)
}
