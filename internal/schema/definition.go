package schema

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/solatis/formkeeper/internal/condition"
	"github.com/solatis/formkeeper/internal/types"
)

// FormDefinition is the authoring form of a Form: what users write in
// YAML/JSON files and send to the admin API. It carries no identifiers.
type FormDefinition struct {
	Name        string           `json:"name" yaml:"name" validate:"required,max=200"`
	Slug        string           `json:"slug" yaml:"slug" validate:"required,max=100,slug"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Settings    FormSettings     `json:"settings,omitzero" yaml:"settings,omitempty"`
	Steps       []StepDefinition `json:"steps" yaml:"steps" validate:"required,min=1,dive"`
}

// StepDefinition is the authoring form of a Step.
type StepDefinition struct {
	Name        string               `json:"name" yaml:"name" validate:"required,max=200"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Condition   *condition.Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
	Fields      []FieldDefinition    `json:"fields" yaml:"fields" validate:"dive"`
}

// FieldDefinition is the authoring form of a Field. Condition is lifted out
// of the UI options for readability.
type FieldDefinition struct {
	Name         string                `json:"name" yaml:"name" validate:"required,max=100,identifier"`
	Label        string                `json:"label" yaml:"label" validate:"required,max=500"`
	Type         types.ValueType       `json:"type" yaml:"type"`
	Required     bool                  `json:"required,omitempty" yaml:"required,omitempty"`
	Placeholder  string                `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText     string                `json:"help_text,omitempty" yaml:"help_text,omitempty"`
	DefaultValue string                `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Validation   types.ValidationRules `json:"validation,omitzero" yaml:"validation,omitempty"`
	UIOptions    UIOptions             `json:"ui_options,omitzero" yaml:"ui_options,omitempty"`
	Condition    *condition.Condition  `json:"condition,omitempty" yaml:"condition,omitempty"`
	Options      []OptionDefinition    `json:"options,omitempty" yaml:"options,omitempty" validate:"dive"`
}

// OptionDefinition is the authoring form of a FieldOption.
type OptionDefinition struct {
	Label     string `json:"label" yaml:"label" validate:"required"`
	Value     string `json:"value" yaml:"value" validate:"required"`
	IsCorrect bool   `json:"is_correct,omitempty" yaml:"is_correct,omitempty"`
	Points    int    `json:"points,omitempty" yaml:"points,omitempty"`
}

var (
	slugPattern       = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierPattern.MatchString(fl.Field().String())
	})
	return v
}

// ParseDefinition decodes a YAML or JSON definition and validates it.
func ParseDefinition(data []byte) (*FormDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def FormDefinition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidDefinition, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks struct constraints and the cross-field rules: unique
// field names per step, options present for choice types, consistent
// rule bounds, compilable patterns and well-formed conditions that only
// reference fields of this form.
func (d *FormDefinition) Validate() error {
	var errs []error

	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("%s: failed %q", trimNamespace(fe.Namespace()), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	known := map[string]bool{}
	for _, step := range d.Steps {
		for _, field := range step.Fields {
			known[field.Name] = true
		}
	}

	for i, step := range d.Steps {
		prefix := fmt.Sprintf("steps[%d]", i)
		if step.Condition != nil {
			errs = append(errs, checkCondition(prefix+".condition", step.Condition, known)...)
		}

		seen := map[string]bool{}
		for j, field := range step.Fields {
			fp := fmt.Sprintf("%s.fields[%d]", prefix, j)
			if seen[field.Name] {
				errs = append(errs, fmt.Errorf("%s.name: duplicate field %q in step", fp, field.Name))
			}
			seen[field.Name] = true
			errs = append(errs, checkField(fp, field, known)...)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", types.ErrInvalidDefinition, errors.Join(errs...))
	}
	return nil
}

func checkField(path string, field FieldDefinition, known map[string]bool) []error {
	var errs []error

	if field.Type.RequiresOptions() && len(field.Options) == 0 {
		errs = append(errs, fmt.Errorf("%s.options: %s field requires options", path, field.Type))
	}
	values := map[string]bool{}
	for k, opt := range field.Options {
		if values[opt.Value] {
			errs = append(errs, fmt.Errorf("%s.options[%d].value: duplicate %q", path, k, opt.Value))
		}
		values[opt.Value] = true
	}

	r := field.Validation
	if r.MinLength != nil && r.MaxLength != nil && *r.MinLength > *r.MaxLength {
		errs = append(errs, fmt.Errorf("%s.validation: min_length exceeds max_length", path))
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		errs = append(errs, fmt.Errorf("%s.validation: min exceeds max", path))
	}
	if r.MinSelections != nil && r.MaxSelections != nil && *r.MinSelections > *r.MaxSelections {
		errs = append(errs, fmt.Errorf("%s.validation: min_selections exceeds max_selections", path))
	}
	if r.Pattern != "" {
		if _, err := regexp.Compile(r.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("%s.validation.pattern: %v", path, err))
		}
	}

	cond := field.Condition
	if cond == nil {
		cond = field.UIOptions.Condition
	}
	if cond != nil {
		errs = append(errs, checkCondition(path+".condition", cond, known)...)
	}
	return errs
}

func checkCondition(path string, cond *condition.Condition, known map[string]bool) []error {
	if err := cond.Validate(); err != nil {
		return []error{fmt.Errorf("%s: %w", path, err)}
	}
	var errs []error
	for _, name := range cond.Fields() {
		if !known[name] {
			errs = append(errs, fmt.Errorf("%s: references unknown field %q", path, name))
		}
	}
	return errs
}

// trimNamespace drops the root struct name from a validator namespace.
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Build turns a validated definition into a Form with fresh identifiers.
func (d *FormDefinition) Build(now time.Time) *Form {
	form := &Form{
		ID:          types.NewFormID(),
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Settings:    d.Settings,
		Steps:       make([]Step, 0, len(d.Steps)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	form.Steps = d.buildSteps(form.ID)
	return form
}

func (d *FormDefinition) buildSteps(formID types.FormID) []Step {
	steps := make([]Step, 0, len(d.Steps))
	for i, sd := range d.Steps {
		step := Step{
			ID:          types.NewStepID(),
			FormID:      formID,
			Name:        sd.Name,
			Description: sd.Description,
			Order:       i,
			Condition:   sd.Condition,
			Fields:      make([]Field, 0, len(sd.Fields)),
		}
		for j, fd := range sd.Fields {
			ui := fd.UIOptions
			if fd.Condition != nil {
				ui.Condition = fd.Condition
			}
			field := Field{
				ID:           types.NewFieldID(),
				StepID:       step.ID,
				Name:         fd.Name,
				Label:        fd.Label,
				ValueType:    fd.Type,
				Order:        j,
				Required:     fd.Required,
				Placeholder:  fd.Placeholder,
				HelpText:     fd.HelpText,
				DefaultValue: fd.DefaultValue,
				Validation:   fd.Validation,
				UIOptions:    ui,
			}
			for k, od := range fd.Options {
				field.Options = append(field.Options, FieldOption{
					ID:        types.NewOptionID(),
					Label:     od.Label,
					Value:     od.Value,
					Order:     k,
					IsCorrect: od.IsCorrect,
					Points:    od.Points,
				})
			}
			step.Fields = append(step.Fields, field)
		}
		steps = append(steps, step)
	}
	return steps
}

// Rebuild replaces the steps of form with those of d, keeping the form id
// and creation time.
func (d *FormDefinition) Rebuild(form *Form, now time.Time) *Form {
	out := *form
	out.Name = d.Name
	out.Slug = d.Slug
	out.Description = d.Description
	out.Settings = d.Settings
	out.Steps = d.buildSteps(form.ID)
	out.UpdatedAt = now
	return &out
}

// DefinitionOf converts a stored form back to its authoring form.
func DefinitionOf(form *Form) *FormDefinition {
	def := &FormDefinition{
		Name:        form.Name,
		Slug:        form.Slug,
		Description: form.Description,
		Settings:    form.Settings,
	}
	for _, step := range form.Steps {
		sd := StepDefinition{
			Name:        step.Name,
			Description: step.Description,
			Condition:   step.Condition,
		}
		for _, f := range step.Fields {
			ui := f.UIOptions
			ui.Condition = nil
			fd := FieldDefinition{
				Name:         f.Name,
				Label:        f.Label,
				Type:         f.ValueType,
				Required:     f.Required,
				Placeholder:  f.Placeholder,
				HelpText:     f.HelpText,
				DefaultValue: f.DefaultValue,
				Validation:   f.Validation,
				UIOptions:    ui,
				Condition:    f.UIOptions.Condition,
			}
			for _, o := range f.Options {
				fd.Options = append(fd.Options, OptionDefinition{
					Label:     o.Label,
					Value:     o.Value,
					IsCorrect: o.IsCorrect,
					Points:    o.Points,
				})
			}
			sd.Fields = append(sd.Fields, fd)
		}
		def.Steps = append(def.Steps, sd)
	}
	return def
}
