// Package schema holds form definitions: forms, their ordered steps, the
// fields of each step and the options of choice fields.
//
// Definitions are loaded per request from the store and treated as
// immutable while a submission is validated or a form is rendered.
package schema

import (
	"time"

	"github.com/solatis/formkeeper/internal/condition"
	"github.com/solatis/formkeeper/internal/types"
)

// Form is a complete form definition.
type Form struct {
	ID          types.FormID `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description string       `json:"description,omitempty"`
	Settings    FormSettings `json:"settings"`
	Steps       []Step       `json:"steps"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	DeletedAt   *time.Time   `json:"deleted_at,omitempty"`
}

// FormSettings are presentation and behaviour options of a form.
type FormSettings struct {
	SubmitLabel      string   `json:"submit_label,omitempty" yaml:"submit_label,omitempty"`
	SuccessMessage   string   `json:"success_message,omitempty" yaml:"success_message,omitempty"`
	RedirectURL      string   `json:"redirect_url,omitempty" yaml:"redirect_url,omitempty" validate:"omitempty,url"`
	NotifyEmails     []string `json:"notify_emails,omitempty" yaml:"notify_emails,omitempty" validate:"dive,email"`
	ShowProgress     bool     `json:"show_progress,omitempty" yaml:"show_progress,omitempty"`
	AllowPartialSave bool     `json:"allow_partial_save,omitempty" yaml:"allow_partial_save,omitempty"`
	CSSClass         string   `json:"css_class,omitempty" yaml:"css_class,omitempty"`
	ActionURL        string   `json:"action_url,omitempty" yaml:"action_url,omitempty"`
	Method           string   `json:"method,omitempty" yaml:"method,omitempty" validate:"omitempty,oneof=GET POST get post"`
}

const (
	defaultSubmitLabel    = "Submit"
	defaultSuccessMessage = "Thank you for your submission!"
)

// SubmitLabelOrDefault returns the submit button text.
func (s FormSettings) SubmitLabelOrDefault() string {
	if s.SubmitLabel == "" {
		return defaultSubmitLabel
	}
	return s.SubmitLabel
}

// SuccessMessageOrDefault returns the text shown after a successful submission.
func (s FormSettings) SuccessMessageOrDefault() string {
	if s.SuccessMessage == "" {
		return defaultSuccessMessage
	}
	return s.SuccessMessage
}

// Step is an ordered group of fields. When Condition evaluates false
// the whole step, and every field in it, is skipped.
type Step struct {
	ID          types.StepID         `json:"id"`
	FormID      types.FormID         `json:"form_id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Order       int                  `json:"order"`
	Condition   *condition.Condition `json:"condition,omitempty"`
	Fields      []Field              `json:"fields"`
}

// Field is one input definition.
type Field struct {
	ID           types.FieldID         `json:"id"`
	StepID       types.StepID          `json:"step_id"`
	Name         string                `json:"name"`
	Label        string                `json:"label"`
	ValueType    types.ValueType       `json:"field_type"`
	Order        int                   `json:"order"`
	Required     bool                  `json:"required"`
	Placeholder  string                `json:"placeholder,omitempty"`
	HelpText     string                `json:"help_text,omitempty"`
	DefaultValue string                `json:"default_value,omitempty"`
	Validation   types.ValidationRules `json:"validation,omitzero"`
	UIOptions    UIOptions             `json:"ui_options,omitzero"`
	Options      []FieldOption         `json:"options,omitempty"`
}

// Condition returns the field's visibility condition, or nil.
func (f *Field) Condition() *condition.Condition {
	return f.UIOptions.Condition
}

// IsDisplayOnly reports whether the field is a heading or paragraph.
func (f *Field) IsDisplayOnly() bool {
	return f.ValueType.IsDisplayOnly()
}

// UIOptions carries rendering hints. The field condition is stored here.
type UIOptions struct {
	CSSClass     string               `json:"css_class,omitempty" yaml:"css_class,omitempty"`
	InputClass   string               `json:"input_class,omitempty" yaml:"input_class,omitempty"`
	LabelClass   string               `json:"label_class,omitempty" yaml:"label_class,omitempty"`
	Width        string               `json:"width,omitempty" yaml:"width,omitempty"`
	Rows         int                  `json:"rows,omitempty" yaml:"rows,omitempty" validate:"gte=0"`
	Cols         int                  `json:"cols,omitempty" yaml:"cols,omitempty" validate:"gte=0"`
	Autocomplete string               `json:"autocomplete,omitempty" yaml:"autocomplete,omitempty"`
	Autofocus    bool                 `json:"autofocus,omitempty" yaml:"autofocus,omitempty"`
	Disabled     bool                 `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Readonly     bool                 `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	HeadingLevel int                  `json:"heading_level,omitempty" yaml:"heading_level,omitempty" validate:"gte=0,lte=6"`
	MaxRating    int                  `json:"max_rating,omitempty" yaml:"max_rating,omitempty" validate:"gte=0"`
	ScaleMin     *int                 `json:"scale_min,omitempty" yaml:"scale_min,omitempty"`
	ScaleMax     *int                 `json:"scale_max,omitempty" yaml:"scale_max,omitempty"`
	ScaleStep    *int                 `json:"scale_step,omitempty" yaml:"scale_step,omitempty"`
	Condition    *condition.Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// IsZero reports whether no option is set; zero options are stored as NULL.
func (o UIOptions) IsZero() bool {
	return o.CSSClass == "" && o.InputClass == "" && o.LabelClass == "" &&
		o.Width == "" && o.Rows == 0 && o.Cols == 0 && o.Autocomplete == "" &&
		!o.Autofocus && !o.Disabled && !o.Readonly && o.HeadingLevel == 0 &&
		o.MaxRating == 0 && o.ScaleMin == nil && o.ScaleMax == nil &&
		o.ScaleStep == nil && o.Condition == nil
}

// FieldOption is one choice of a select, radio or checkbox field.
type FieldOption struct {
	ID        types.OptionID `json:"id"`
	Label     string         `json:"label"`
	Value     string         `json:"value"`
	Order     int            `json:"order"`
	IsCorrect bool           `json:"is_correct,omitempty"`
	Points    int            `json:"points,omitempty"`
}

// Submission is a stored set of submitted values.
type Submission struct {
	ID        types.SubmissionID `json:"id"`
	FormID    types.FormID       `json:"form_id"`
	Data      types.Values       `json:"data"`
	Metadata  types.Metadata     `json:"metadata,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// IsDeleted reports whether the form was soft-deleted.
func (f *Form) IsDeleted() bool {
	return f.DeletedAt != nil
}

// StepByID returns the step with the given id.
func (f *Form) StepByID(id types.StepID) (*Step, bool) {
	for i := range f.Steps {
		if f.Steps[i].ID == id {
			return &f.Steps[i], true
		}
	}
	return nil, false
}

// StepByName returns the first step with the given name.
func (f *Form) StepByName(name string) (*Step, bool) {
	for i := range f.Steps {
		if f.Steps[i].Name == name {
			return &f.Steps[i], true
		}
	}
	return nil, false
}

// FieldByName returns the first field, in step order, with the given name.
func (f *Form) FieldByName(name string) (*Field, bool) {
	for i := range f.Steps {
		for j := range f.Steps[i].Fields {
			if f.Steps[i].Fields[j].Name == name {
				return &f.Steps[i].Fields[j], true
			}
		}
	}
	return nil, false
}

// AllFields returns every field of the form in step order.
func (f *Form) AllFields() []Field {
	var out []Field
	for _, step := range f.Steps {
		out = append(out, step.Fields...)
	}
	return out
}

// IsMultiStep reports whether the form has more than one step.
func (f *Form) IsMultiStep() bool {
	return len(f.Steps) > 1
}
