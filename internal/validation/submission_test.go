// internal/validation/submission_test.go
package validation

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/solatis/formkeeper/internal/condition"
	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

func withCondition(f schema.Field, c condition.Condition) schema.Field {
	f.UIOptions.Condition = &c
	return f
}

func makeStep(id string, cond *condition.Condition, fields ...schema.Field) schema.Step {
	return schema.Step{ID: types.StepID(id), Name: id, Condition: cond, Fields: fields}
}

func TestValidateSubmission(t *testing.T) {
	heading := makeField("intro", types.ValueTypeHeading, true)
	name := makeField("name", types.ValueTypeText, true)
	email := makeField("email", types.ValueTypeEmail, true)
	age := makeField("age", types.ValueTypeNumber, false)
	age.Validation.Min = types.FloatPtr(18)

	fields := []schema.Field{heading, name, email, age}
	data := types.Values{
		"email": types.Text("not-an-email"),
		"age":   types.Number(12),
	}

	got := ValidateSubmission(fields, data)
	want := ValidationErrors{
		"name":  {"name is required"},
		"email": {"email must be a valid email address"},
		"age":   {"age must be at least 18"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ValidateSubmission() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSubmission_LookupByIDThenName(t *testing.T) {
	field := makeField("email", types.ValueTypeEmail, true)

	data := types.Values{
		string(field.ID): types.Text("ok@example.com"),
		"email":          types.Text("broken"),
	}
	if got := ValidateSubmission([]schema.Field{field}, data); !got.IsEmpty() {
		t.Errorf("ValidateSubmission() = %v, want id lookup to win", got)
	}

	data = types.Values{"email": types.Text("broken")}
	if got := ValidateSubmission([]schema.Field{field}, data); got.Len() != 1 {
		t.Errorf("ValidateSubmission() = %v, want name fallback error", got)
	}
}

func TestValidateSubmission_IgnoresConditions(t *testing.T) {
	hidden := withCondition(makeField("company", types.ValueTypeText, true), condition.Eq("kind", "business"))

	got := ValidateSubmission([]schema.Field{hidden}, types.Values{"kind": types.Text("personal")})
	if got.Len() != 1 {
		t.Errorf("ValidateSubmission() = %v, want flat validation to ignore conditions", got)
	}
}

func TestValidateSubmission_Idempotent(t *testing.T) {
	fields := []schema.Field{
		makeField("a", types.ValueTypeEmail, true),
		makeField("b", types.ValueTypeTel, false),
	}
	data := types.Values{"a": types.Text("x@"), "b": types.Text("12")}

	first := ValidateSubmission(fields, data)
	second := ValidateSubmission(fields, data)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}

	steps := []schema.Step{makeStep("s1", nil, fields...)}
	m1 := ValidateMultiStepSubmission(steps, data)
	m2 := ValidateMultiStepSubmission(steps, data)
	if !reflect.DeepEqual(m1, m2) {
		t.Errorf("multi-step runs differ: %v vs %v", m1.Flatten(), m2.Flatten())
	}
}

func TestValidateMultiStepSubmission_Grouping(t *testing.T) {
	steps := []schema.Step{
		makeStep("step-1", nil, makeField("first_name", types.ValueTypeText, true)),
		makeStep("step-2", nil, makeField("city", types.ValueTypeText, true)),
	}

	errs := ValidateMultiStepSubmission(steps, types.Values{})

	if diff := cmp.Diff([]string{"step-1", "step-2"}, errs.Steps()); diff != "" {
		t.Errorf("Steps() mismatch (-want +got):\n%s", diff)
	}
	if got := errs.Field("step-1", "first_name"); len(got) != 1 {
		t.Errorf("step-1 first_name errors = %v, want 1", got)
	}
	if got := errs.Field("step-2", "city"); len(got) != 1 {
		t.Errorf("step-2 city errors = %v, want 1", got)
	}
	if got := errs.Flatten().Len(); got != 2 {
		t.Errorf("Flatten().Len() = %d, want 2", got)
	}
	if errs.FieldCount() != 2 || errs.ErrorCount() != 2 {
		t.Errorf("FieldCount/ErrorCount = %d/%d, want 2/2", errs.FieldCount(), errs.ErrorCount())
	}
}

func TestValidateMultiStepSubmission_HiddenStepSkipsAllFields(t *testing.T) {
	business := condition.Eq("account_type", "business")
	steps := []schema.Step{
		makeStep("account", nil, makeField("account_type", types.ValueTypeSelect, true)),
		makeStep("company", &business,
			makeField("company_name", types.ValueTypeText, true),
			makeField("vat_number", types.ValueTypeText, true),
		),
	}

	errs := ValidateMultiStepSubmission(steps, types.Values{"account_type": types.Text("personal")})
	if !errs.IsEmpty() {
		t.Errorf("ValidateMultiStepSubmission() = %v, want no errors", errs.Flatten())
	}
	if errs.Step("company") != nil {
		t.Errorf("hidden step recorded errors")
	}

	errs = ValidateMultiStepSubmission(steps, types.Values{"account_type": types.Text("business")})
	if got := errs.Step("company").Len(); got != 2 {
		t.Errorf("visible step field errors = %d, want 2", got)
	}
}

func TestValidateMultiStepSubmission_FieldConditions(t *testing.T) {
	steps := []schema.Step{
		makeStep("details", nil,
			makeField("intro", types.ValueTypeParagraph, true),
			makeField("contact_method", types.ValueTypeRadio, true),
			withCondition(makeField("phone", types.ValueTypeTel, true), condition.Eq("contact_method", "phone")),
			withCondition(makeField("email", types.ValueTypeEmail, true), condition.Eq("contact_method", "email")),
		),
	}

	errs := ValidateMultiStepSubmission(steps, types.Values{"contact_method": types.Text("phone")})
	want := ValidationErrors{"phone": {"phone is required"}}
	if diff := cmp.Diff(want, errs.Flatten()); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateMultiStepSubmission_CrossStepReferences(t *testing.T) {
	// Step 1 depends on a field that lives in step 2.
	wantsNewsletter := condition.Eq("newsletter", true)
	steps := []schema.Step{
		makeStep("s1", nil, withCondition(makeField("topics", types.ValueTypeCheckbox, true), wantsNewsletter)),
		makeStep("s2", nil, makeField("newsletter", types.ValueTypeCheckbox, false)),
	}

	errs := ValidateMultiStepSubmission(steps, types.Values{"newsletter": types.Text("true")})
	if got := errs.Field("s1", "topics"); len(got) != 1 {
		t.Errorf("topics errors = %v, want required error", got)
	}
}

func TestValidateStep(t *testing.T) {
	adult := condition.Gte("age", 18)
	step := makeStep("s", &adult,
		makeField("licence", types.ValueTypeText, true),
		withCondition(makeField("vehicle", types.ValueTypeText, true), condition.NotEmpty("licence")),
	)

	if got := ValidateStep(&step, types.Values{"age": types.Number(16)}); !got.IsEmpty() {
		t.Errorf("ValidateStep(hidden) = %v, want empty", got)
	}

	got := ValidateStep(&step, types.Values{"age": types.Number(30)})
	want := ValidationErrors{"licence": {"licence is required"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ValidateStep() mismatch (-want +got):\n%s", diff)
	}

	got = ValidateStep(&step, types.Values{"age": types.Text("30"), "licence": types.Text("B")})
	want = ValidationErrors{"vehicle": {"vehicle is required"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ValidateStep() mismatch (-want +got):\n%s", diff)
	}
}

func TestVisibility_MatchesValidatorSkipLogic(t *testing.T) {
	business := condition.Eq("account_type", "business")
	steps := []schema.Step{
		makeStep("account", nil,
			makeField("account_type", types.ValueTypeRadio, true),
			withCondition(makeField("referral", types.ValueTypeText, true), condition.Empty("account_type")),
		),
		makeStep("company", &business, makeField("company_name", types.ValueTypeText, true)),
	}

	fixtures := []types.Values{
		{},
		{"account_type": types.Text("business")},
		{"account_type": types.Text("personal")},
	}

	for _, data := range fixtures {
		errs := ValidateMultiStepSubmission(steps, data).Flatten()
		vm := Visibility(steps, data)

		for i := range steps {
			step := &steps[i]
			if IsStepVisible(step, data) != vm.Steps[string(step.ID)] {
				t.Errorf("IsStepVisible(%s) disagrees with Visibility()", step.ID)
			}
			for j := range step.Fields {
				field := &step.Fields[j]
				visible := IsStepVisible(step, data) && IsFieldVisible(field, data)
				if visible != vm.Fields[field.Name] {
					t.Errorf("field %s visibility = %v, map says %v", field.Name, visible, vm.Fields[field.Name])
				}
				// Every required field here is empty unless set, so an error
				// appears exactly when the field is visible and unset.
				_, set := data[field.Name]
				hasErr := len(errs.Get(field.Name)) > 0
				if hasErr != (visible && !set) {
					t.Errorf("field %s: hasErr = %v, visible = %v, set = %v", field.Name, hasErr, visible, set)
				}
			}
		}
	}
}

func TestIsFieldVisible_NoCondition(t *testing.T) {
	field := makeField("a", types.ValueTypeText, false)
	step := makeStep("s", nil, field)
	if !IsFieldVisible(&field, nil) || !IsStepVisible(&step, nil) {
		t.Errorf("unconditioned field/step should be visible")
	}
}
