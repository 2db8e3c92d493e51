package render

import (
	"github.com/solatis/formkeeper/internal/condition"
	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

// FormSchema is the client-facing JSON description of a form. Conditions
// are emitted in their stored tree form so clients can evaluate them.
type FormSchema struct {
	ID          types.FormID        `json:"id"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	Description string              `json:"description,omitempty"`
	MultiStep   bool                `json:"multi_step"`
	Action      string              `json:"action"`
	Method      string              `json:"method"`
	SubmitLabel string              `json:"submit_label"`
	Settings    schema.FormSettings `json:"settings"`
	Steps       []StepSchema        `json:"steps"`
}

type StepSchema struct {
	ID          types.StepID         `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Order       int                  `json:"order"`
	Condition   *condition.Condition `json:"condition,omitempty"`
	Fields      []FieldSchema        `json:"fields"`
}

type FieldSchema struct {
	ID           types.FieldID          `json:"id"`
	Name         string                 `json:"name"`
	Label        string                 `json:"label"`
	FieldType    types.ValueType        `json:"field_type"`
	InputType    string                 `json:"input_type,omitempty"`
	Order        int                    `json:"order"`
	Required     bool                   `json:"required"`
	Placeholder  string                 `json:"placeholder,omitempty"`
	HelpText     string                 `json:"help_text,omitempty"`
	DefaultValue string                 `json:"default_value,omitempty"`
	Validation   *types.ValidationRules `json:"validation,omitempty"`
	UIOptions    *schema.UIOptions      `json:"ui_options,omitempty"`
	Condition    *condition.Condition   `json:"condition,omitempty"`
	Options      []OptionSchema         `json:"options,omitempty"`
}

type OptionSchema struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FormJSON builds the JSON schema of form. Empty rule sets and UI options
// are omitted.
func FormJSON(form *schema.Form) *FormSchema {
	out := &FormSchema{
		ID:          form.ID,
		Name:        form.Name,
		Slug:        form.Slug,
		Description: form.Description,
		MultiStep:   form.IsMultiStep(),
		Action:      form.Settings.ActionURL,
		Method:      form.Settings.Method,
		SubmitLabel: form.Settings.SubmitLabelOrDefault(),
		Settings:    form.Settings,
		Steps:       make([]StepSchema, 0, len(form.Steps)),
	}
	if out.Action == "" {
		out.Action = "/api/forms/" + form.Slug
	}
	if out.Method == "" {
		out.Method = "POST"
	}

	for _, step := range form.Steps {
		ss := StepSchema{
			ID:          step.ID,
			Name:        step.Name,
			Description: step.Description,
			Order:       step.Order,
			Condition:   step.Condition,
			Fields:      make([]FieldSchema, 0, len(step.Fields)),
		}
		for i := range step.Fields {
			ss.Fields = append(ss.Fields, fieldSchema(&step.Fields[i]))
		}
		out.Steps = append(out.Steps, ss)
	}
	return out
}

func fieldSchema(f *schema.Field) FieldSchema {
	fs := FieldSchema{
		ID:           f.ID,
		Name:         f.Name,
		Label:        f.Label,
		FieldType:    f.ValueType,
		InputType:    f.ValueType.HTMLInputType(),
		Order:        f.Order,
		Required:     f.Required,
		Placeholder:  f.Placeholder,
		HelpText:     f.HelpText,
		DefaultValue: f.DefaultValue,
		Condition:    f.Condition(),
	}
	if !f.Validation.IsEmpty() {
		rules := f.Validation
		fs.Validation = &rules
	}
	ui := f.UIOptions
	ui.Condition = nil
	if !ui.IsZero() {
		fs.UIOptions = &ui
	}
	for _, opt := range f.Options {
		fs.Options = append(fs.Options, OptionSchema{Label: opt.Label, Value: opt.Value})
	}
	return fs
}
