// internal/validation/errors.go
package validation

import (
	"bytes"
	"encoding/json"
	"sort"
)

// ValidationErrors maps field name to its ordered error messages. An empty
// map means the submission is valid.
type ValidationErrors map[string][]string

// NewValidationErrors returns an empty error map.
func NewValidationErrors() ValidationErrors {
	return ValidationErrors{}
}

// Add appends msg to the errors of field.
func (e ValidationErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Get returns the errors recorded for field.
func (e ValidationErrors) Get(field string) []string {
	return e[field]
}

// Len returns the number of fields with errors.
func (e ValidationErrors) Len() int {
	return len(e)
}

// ErrorCount returns the total number of messages.
func (e ValidationErrors) ErrorCount() int {
	n := 0
	for _, msgs := range e {
		n += len(msgs)
	}
	return n
}

// IsEmpty reports whether no errors were recorded.
func (e ValidationErrors) IsEmpty() bool {
	return len(e) == 0
}

// Merge appends every message of other to e.
func (e ValidationErrors) Merge(other ValidationErrors) {
	for _, field := range other.Fields() {
		e[field] = append(e[field], other[field]...)
	}
}

// Fields returns the field names with errors, sorted.
func (e ValidationErrors) Fields() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// First returns the first message of field, or "".
func (e ValidationErrors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// StepValidationErrors groups errors by step id, then field name. Steps are
// kept in the order they first received an error.
type StepValidationErrors struct {
	order []string
	steps map[string]ValidationErrors
}

// NewStepValidationErrors returns an empty grouped error set.
func NewStepValidationErrors() *StepValidationErrors {
	return &StepValidationErrors{steps: map[string]ValidationErrors{}}
}

// Add appends msg under (stepID, field).
func (e *StepValidationErrors) Add(stepID, field, msg string) {
	if e.steps == nil {
		e.steps = map[string]ValidationErrors{}
	}
	errs, ok := e.steps[stepID]
	if !ok {
		errs = ValidationErrors{}
		e.steps[stepID] = errs
		e.order = append(e.order, stepID)
	}
	errs.Add(field, msg)
}

// Step returns the errors of one step, or nil.
func (e *StepValidationErrors) Step(stepID string) ValidationErrors {
	return e.steps[stepID]
}

// Field returns the errors of one field within a step.
func (e *StepValidationErrors) Field(stepID, field string) []string {
	return e.steps[stepID].Get(field)
}

// Steps returns the step ids with errors, in insertion order.
func (e *StepValidationErrors) Steps() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Flatten drops the step grouping. Lists of a field name that appears in
// several steps are concatenated in step order.
func (e *StepValidationErrors) Flatten() ValidationErrors {
	flat := ValidationErrors{}
	for _, stepID := range e.order {
		flat.Merge(e.steps[stepID])
	}
	return flat
}

// ErrorCount returns the total number of messages.
func (e *StepValidationErrors) ErrorCount() int {
	n := 0
	for _, errs := range e.steps {
		n += errs.ErrorCount()
	}
	return n
}

// FieldCount returns the number of (step, field) pairs with errors.
func (e *StepValidationErrors) FieldCount() int {
	n := 0
	for _, errs := range e.steps {
		n += errs.Len()
	}
	return n
}

// IsEmpty reports whether no errors were recorded.
func (e *StepValidationErrors) IsEmpty() bool {
	return e == nil || len(e.steps) == 0
}

// MarshalJSON renders {"<step>": {"<field>": ["msg", ...]}} with steps in
// insertion order.
func (e *StepValidationErrors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if e != nil {
		for i, stepID := range e.order {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(stepID)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(e.steps[stepID])
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Step order follows the
// sorted step ids since JSON objects carry no order.
func (e *StepValidationErrors) UnmarshalJSON(data []byte) error {
	var raw map[string]ValidationErrors
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	*e = StepValidationErrors{order: ids, steps: raw}
	if e.steps == nil {
		e.steps = map[string]ValidationErrors{}
	}
	return nil
}
