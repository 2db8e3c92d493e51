// internal/validation/errors_test.go
package validation

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidationErrors(t *testing.T) {
	errs := NewValidationErrors()
	if !errs.IsEmpty() {
		t.Fatalf("new errors not empty")
	}

	errs.Add("email", "first")
	errs.Add("email", "second")
	errs.Add("name", "third")

	if diff := cmp.Diff([]string{"first", "second"}, errs.Get("email")); diff != "" {
		t.Errorf("Get(email) mismatch (-want +got):\n%s", diff)
	}
	if errs.Len() != 2 || errs.ErrorCount() != 3 {
		t.Errorf("Len/ErrorCount = %d/%d, want 2/3", errs.Len(), errs.ErrorCount())
	}
	if errs.First("name") != "third" || errs.First("missing") != "" {
		t.Errorf("First() mismatch")
	}

	other := ValidationErrors{"email": {"fourth"}, "age": {"fifth"}}
	errs.Merge(other)
	want := ValidationErrors{
		"email": {"first", "second", "fourth"},
		"name":  {"third"},
		"age":   {"fifth"},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"age", "email", "name"}, errs.Fields()); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}
}

func TestStepValidationErrors_FlattenConcatenates(t *testing.T) {
	errs := NewStepValidationErrors()
	errs.Add("step-2", "email", "from step 2")
	errs.Add("step-1", "email", "from step 1")
	errs.Add("step-1", "name", "name error")

	flat := errs.Flatten()
	want := ValidationErrors{
		"email": {"from step 2", "from step 1"},
		"name":  {"name error"},
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
	if errs.FieldCount() != 3 || errs.ErrorCount() != 3 {
		t.Errorf("FieldCount/ErrorCount = %d/%d, want 3/3", errs.FieldCount(), errs.ErrorCount())
	}
	if errs.Step("missing") != nil || errs.Field("missing", "x") != nil {
		t.Errorf("lookups of unknown steps should be nil")
	}
}

func TestStepValidationErrors_JSON(t *testing.T) {
	errs := NewStepValidationErrors()
	errs.Add("b", "f", "m1")
	errs.Add("a", "g", "m2")

	out, err := json.Marshal(errs)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"b":{"f":["m1"]},"a":{"g":["m2"]}}`
	if string(out) != want {
		t.Errorf("Marshal() = %s, want %s", out, want)
	}

	var decoded StepValidationErrors
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, decoded.Steps()); diff != "" {
		t.Errorf("Steps() mismatch (-want +got):\n%s", diff)
	}
	if decoded.ErrorCount() != 2 {
		t.Errorf("ErrorCount() = %d, want 2", decoded.ErrorCount())
	}

	empty, _ := json.Marshal(NewStepValidationErrors())
	if string(empty) != `{}` {
		t.Errorf("Marshal(empty) = %s, want {}", empty)
	}
}
