// Package render turns form definitions into HTML and JSON for clients.
//
// HTML output carries the conditions of steps and fields as data
// attributes so client-side code can re-evaluate visibility; the initial
// visibility is computed server-side from the values being rendered.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/solatis/formkeeper/internal/condition"
	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
	"github.com/solatis/formkeeper/internal/validation"
)

const (
	defaultFormClass    = "af-form"
	defaultTextareaRows = 4
	defaultMaxRating    = 5
)

// Option configures HTML rendering.
type Option func(*config)

type config struct {
	action    string
	method    string
	class     string
	csrfToken string
}

// WithAction overrides the form action URL.
func WithAction(action string) Option {
	return func(c *config) { c.action = action }
}

// WithMethod overrides the form method.
func WithMethod(method string) Option {
	return func(c *config) { c.method = method }
}

// WithClass replaces the form class attribute.
func WithClass(class string) Option {
	return func(c *config) { c.class = class }
}

// WithCSRFToken adds a hidden _csrf input.
func WithCSRFToken(token string) Option {
	return func(c *config) { c.csrfToken = token }
}

// SubmitAction is the default action of a rendered form.
func SubmitAction(slug string) string {
	return "/api/forms/" + slug + "/submit"
}

type formView struct {
	Slug         string
	Class        string
	Method       string
	Action       string
	Multipart    bool
	MultiStep    bool
	ShowProgress bool
	CSRFToken    string
	Description  string
	SubmitLabel  string
	Steps        []stepView
}

type stepView struct {
	Index         int
	ID            string
	Legend        string
	Description   string
	ConditionJSON string
	Visible       bool
	Nav           bool
	First         bool
	Last          bool
	SubmitLabel   string
	Fields        []fieldView
}

type fieldView struct {
	Kind           string
	Name           string
	InputName      string
	ID             string
	Label          string
	Class          string
	LabelClass     string
	InputClass     string
	InputType      string
	Value          string
	Placeholder    string
	HelpText       string
	Heading        template.HTML
	Paragraph      template.HTML
	Required       bool
	Disabled       bool
	Readonly       bool
	Autofocus      bool
	Autocomplete   string
	Checked        bool
	Multiple       bool
	Visible        bool
	Rows           int
	Cols           int
	Min            string
	Max            string
	Step           string
	MinLength      string
	MaxLength      string
	Pattern        string
	Accept         string
	ConditionJSON  string
	ValidationJSON string
	Options        []optionView
	Errors         []string
}

type optionView struct {
	ID       string
	Value    string
	Label    string
	Selected bool
}

// HTML renders form with the given submitted values and inline errors.
// Values may be nil for an initial render, in which case field defaults
// are shown. Steps and fields that are hidden for values are emitted with
// display:none so the client can reveal them.
func HTML(form *schema.Form, values types.Values, errs validation.ValidationErrors, opts ...Option) (string, error) {
	cfg := config{
		action: form.Settings.ActionURL,
		method: strings.ToUpper(form.Settings.Method),
		class:  defaultFormClass,
	}
	if cfg.action == "" {
		cfg.action = SubmitAction(form.Slug)
	}
	if cfg.method == "" {
		cfg.method = "POST"
	}
	if form.Settings.CSSClass != "" {
		cfg.class += " " + form.Settings.CSSClass
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	view, err := buildForm(form, values, errs, cfg)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "form", view); err != nil {
		return "", fmt.Errorf("render form %s: %w", form.Slug, err)
	}
	return buf.String(), nil
}

// SuccessHTML renders the confirmation shown after a successful submission.
func SuccessHTML(form *schema.Form) (string, error) {
	view := struct {
		Slug, Name, Message string
	}{form.Slug, form.Name, form.Settings.SuccessMessageOrDefault()}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "success", view); err != nil {
		return "", fmt.Errorf("render success %s: %w", form.Slug, err)
	}
	return buf.String(), nil
}

func buildForm(form *schema.Form, values types.Values, errs validation.ValidationErrors, cfg config) (formView, error) {
	vm := validation.Visibility(form.Steps, values)
	multi := form.IsMultiStep()

	view := formView{
		Slug:         form.Slug,
		Class:        cfg.class,
		Method:       cfg.method,
		Action:       cfg.action,
		MultiStep:    multi,
		ShowProgress: multi && form.Settings.ShowProgress,
		CSRFToken:    cfg.csrfToken,
		Description:  form.Description,
		SubmitLabel:  form.Settings.SubmitLabelOrDefault(),
	}

	for i := range form.Steps {
		step := &form.Steps[i]
		sv := stepView{
			Index:       i,
			ID:          string(step.ID),
			Description: step.Description,
			Visible:     vm.Steps[string(step.ID)],
			Nav:         multi,
			First:       i == 0,
			Last:        i == len(form.Steps)-1,
			SubmitLabel: view.SubmitLabel,
		}
		if multi || step.Name != "" {
			sv.Legend = step.Name
		}
		cj, err := conditionJSON(step.Condition)
		if err != nil {
			return formView{}, fmt.Errorf("step %s: %w", step.Name, err)
		}
		sv.ConditionJSON = cj

		for j := range step.Fields {
			field := &step.Fields[j]
			if field.ValueType.IsFileType() {
				view.Multipart = true
			}
			fv, err := buildField(field, values, errs)
			if err != nil {
				return formView{}, fmt.Errorf("field %s: %w", field.Name, err)
			}
			sv.Fields = append(sv.Fields, fv)
		}
		view.Steps = append(view.Steps, sv)
	}
	return view, nil
}

func buildField(field *schema.Field, values types.Values, errs validation.ValidationErrors) (fieldView, error) {
	ui := field.UIOptions
	fv := fieldView{
		Name:         field.Name,
		InputName:    field.Name,
		ID:           "af_" + field.Name,
		Label:        field.Label,
		Class:        ui.CSSClass,
		LabelClass:   ui.LabelClass,
		InputClass:   strings.TrimSpace("af-input " + ui.InputClass),
		InputType:    field.ValueType.HTMLInputType(),
		Placeholder:  field.Placeholder,
		HelpText:     field.HelpText,
		Required:     field.Required,
		Disabled:     ui.Disabled,
		Readonly:     ui.Readonly,
		Autofocus:    ui.Autofocus,
		Autocomplete: ui.Autocomplete,
		Visible:      validation.IsFieldVisible(field, values),
		Errors:       errs.Get(field.Name),
	}

	cj, err := conditionJSON(field.Condition())
	if err != nil {
		return fieldView{}, err
	}
	fv.ConditionJSON = cj

	value, submitted := values.Lookup(string(field.ID), field.Name)
	if !submitted && values == nil && field.DefaultValue != "" {
		value = types.Text(field.DefaultValue)
	}

	switch field.ValueType {
	case types.ValueTypeHeading:
		fv.Kind = "heading"
		fv.Heading = headingHTML(field.Label, ui.HeadingLevel)
		return fv, nil
	case types.ValueTypeParagraph:
		fv.Kind = "paragraph"
		text := field.HelpText
		if text == "" {
			text = field.Label
		}
		fv.Paragraph = paragraphHTML(text)
		return fv, nil
	case types.ValueTypeHidden:
		fv.Kind = "hidden"
		fv.Value = value.String()
		return fv, nil
	case types.ValueTypeTextarea:
		fv.Kind = "textarea"
		fv.Rows = ui.Rows
		if fv.Rows == 0 {
			fv.Rows = defaultTextareaRows
		}
		fv.Cols = ui.Cols
		fv.Value = value.String()
	case types.ValueTypeSelect, types.ValueTypeMultiSelect:
		fv.Kind = "select"
		fv.Multiple = field.ValueType == types.ValueTypeMultiSelect
		if fv.Multiple {
			fv.InputName = field.Name + "[]"
		}
		fv.Options = optionViews(field, value)
	case types.ValueTypeRadio:
		fv.Kind = "choices"
		fv.InputType = "radio"
		fv.Options = optionViews(field, value)
	case types.ValueTypeCheckbox, types.ValueTypeMatrix:
		if len(field.Options) == 0 {
			fv.Kind = "checkbox"
			checked, _ := value.AsBool()
			fv.Checked = checked
			break
		}
		fv.Kind = "choices"
		fv.InputType = "checkbox"
		fv.InputName = field.Name + "[]"
		fv.Options = optionViews(field, value)
	default:
		fv.Kind = "input"
		if fv.InputType == "" {
			fv.InputType = "text"
		}
		fv.Value = value.String()
		numericBounds(&fv, field)
		if field.ValueType.IsFileType() {
			fv.Accept = strings.Join(acceptList(&field.Validation), ",")
		}
	}

	lengthBounds(&fv, &field.Validation)
	fv.ValidationJSON, err = validationJSON(field)
	if err != nil {
		return fieldView{}, err
	}
	return fv, nil
}

func optionViews(field *schema.Field, value types.Value) []optionView {
	selected := map[string]bool{}
	if arr, ok := value.AsArray(); ok {
		for _, v := range arr {
			selected[v] = true
		}
	} else if !value.IsNull() {
		selected[value.String()] = true
	}

	out := make([]optionView, 0, len(field.Options))
	for _, opt := range field.Options {
		out = append(out, optionView{
			ID:       field.Name + "_" + opt.Value,
			Value:    opt.Value,
			Label:    opt.Label,
			Selected: selected[opt.Value],
		})
	}
	return out
}

func numericBounds(fv *fieldView, field *schema.Field) {
	rules := &field.Validation
	ui := &field.UIOptions
	if rules.Min != nil {
		fv.Min = types.FormatNumber(*rules.Min)
	}
	if rules.Max != nil {
		fv.Max = types.FormatNumber(*rules.Max)
	}
	if rules.Step != nil {
		fv.Step = types.FormatNumber(*rules.Step)
	}

	switch field.ValueType {
	case types.ValueTypeRating:
		maxRating := ui.MaxRating
		if maxRating == 0 {
			maxRating = defaultMaxRating
		}
		fv.Min, fv.Max = "1", strconv.Itoa(maxRating)
	case types.ValueTypeNps:
		fv.Min, fv.Max = "0", "10"
	case types.ValueTypeScale:
		if ui.ScaleMin != nil {
			fv.Min = strconv.Itoa(*ui.ScaleMin)
		}
		if ui.ScaleMax != nil {
			fv.Max = strconv.Itoa(*ui.ScaleMax)
		}
		if ui.ScaleStep != nil {
			fv.Step = strconv.Itoa(*ui.ScaleStep)
		}
	case types.ValueTypeDate, types.ValueTypeDateTime:
		fv.Min, fv.Max = rules.MinDate, rules.MaxDate
	}
}

func lengthBounds(fv *fieldView, rules *types.ValidationRules) {
	if rules.MinLength != nil {
		fv.MinLength = strconv.Itoa(*rules.MinLength)
	}
	if rules.MaxLength != nil {
		fv.MaxLength = strconv.Itoa(*rules.MaxLength)
	}
	if fv.Kind == "input" {
		fv.Pattern = rules.Pattern
	}
}

func acceptList(rules *types.ValidationRules) []string {
	out := make([]string, 0, len(rules.AllowedExtensions)+len(rules.AllowedMimeTypes))
	for _, ext := range rules.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return append(out, rules.AllowedMimeTypes...)
}

func conditionJSON(c *condition.Condition) (string, error) {
	if c == nil {
		return "", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode condition: %w", err)
	}
	return string(data), nil
}

// validationJSON encodes the client-side subset of a field's constraints.
func validationJSON(field *schema.Field) (string, error) {
	rules := &field.Validation
	attrs := map[string]any{}
	if field.Required {
		attrs["required"] = true
	}
	if rules.MinLength != nil {
		attrs["minLength"] = *rules.MinLength
	}
	if rules.MaxLength != nil {
		attrs["maxLength"] = *rules.MaxLength
	}
	if rules.Min != nil {
		attrs["min"] = *rules.Min
	}
	if rules.Max != nil {
		attrs["max"] = *rules.Max
	}
	if rules.Pattern != "" {
		attrs["pattern"] = rules.Pattern
	}
	if len(attrs) == 0 {
		return "", nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("encode validation: %w", err)
	}
	return string(data), nil
}
