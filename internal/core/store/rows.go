package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/solatis/formkeeper/internal/condition"
	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

type formRow struct {
	ID          string     `db:"form_id"`
	Name        string     `db:"name"`
	Slug        string     `db:"slug"`
	Description string     `db:"description"`
	Settings    string     `db:"settings"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

type stepRow struct {
	ID          string         `db:"step_id"`
	FormID      string         `db:"form_id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Order       int            `db:"step_order"`
	Condition   sql.NullString `db:"condition"`
}

type fieldRow struct {
	ID           string         `db:"field_id"`
	StepID       string         `db:"step_id"`
	Name         string         `db:"name"`
	Label        string         `db:"label"`
	FieldType    string         `db:"field_type"`
	Order        int            `db:"field_order"`
	Required     bool           `db:"required"`
	Placeholder  string         `db:"placeholder"`
	HelpText     string         `db:"help_text"`
	DefaultValue string         `db:"default_value"`
	Validation   sql.NullString `db:"validation"`
	UIOptions    sql.NullString `db:"ui_options"`
}

type optionRow struct {
	ID        string `db:"option_id"`
	FieldID   string `db:"field_id"`
	Label     string `db:"label"`
	Value     string `db:"value"`
	Order     int    `db:"option_order"`
	IsCorrect bool   `db:"is_correct"`
	Points    int    `db:"points"`
}

type submissionRow struct {
	ID        string         `db:"submission_id"`
	FormID    string         `db:"form_id"`
	Data      string         `db:"data"`
	Metadata  sql.NullString `db:"metadata"`
	CreatedAt time.Time      `db:"created_at"`
}

// nullJSON encodes v, or returns NULL when zero reports true.
func nullJSON(v any, zero bool) (sql.NullString, error) {
	if zero {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func (r formRow) toForm() (schema.Form, error) {
	form := schema.Form{
		ID:          types.FormID(r.ID),
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.DeletedAt != nil {
		t := r.DeletedAt.UTC()
		form.DeletedAt = &t
	}
	if r.Settings != "" {
		if err := json.Unmarshal([]byte(r.Settings), &form.Settings); err != nil {
			return form, fmt.Errorf("%w: form %s settings: %v", types.ErrInvalidDefinition, r.ID, err)
		}
	}
	return form, nil
}

func (r stepRow) toStep() (schema.Step, error) {
	step := schema.Step{
		ID:          types.StepID(r.ID),
		FormID:      types.FormID(r.FormID),
		Name:        r.Name,
		Description: r.Description,
		Order:       r.Order,
		Fields:      []schema.Field{},
	}
	if r.Condition.Valid {
		cond, err := condition.Parse([]byte(r.Condition.String))
		if err != nil {
			return step, fmt.Errorf("step %s condition: %w", r.ID, err)
		}
		step.Condition = cond
	}
	return step, nil
}

func (r fieldRow) toField() (schema.Field, error) {
	vt, err := types.ParseValueType(r.FieldType)
	if err != nil {
		return schema.Field{}, fmt.Errorf("field %s: %w", r.ID, err)
	}
	field := schema.Field{
		ID:           types.FieldID(r.ID),
		StepID:       types.StepID(r.StepID),
		Name:         r.Name,
		Label:        r.Label,
		ValueType:    vt,
		Order:        r.Order,
		Required:     r.Required,
		Placeholder:  r.Placeholder,
		HelpText:     r.HelpText,
		DefaultValue: r.DefaultValue,
	}
	if r.Validation.Valid {
		if err := json.Unmarshal([]byte(r.Validation.String), &field.Validation); err != nil {
			return field, fmt.Errorf("%w: field %s validation: %v", types.ErrInvalidDefinition, r.ID, err)
		}
	}
	if r.UIOptions.Valid {
		// Condition errors from the embedded tree keep their own sentinel.
		if err := json.Unmarshal([]byte(r.UIOptions.String), &field.UIOptions); err != nil {
			return field, fmt.Errorf("field %s ui options: %w", r.ID, wrapDecode(err))
		}
	}
	return field, nil
}

func (r optionRow) toOption() schema.FieldOption {
	return schema.FieldOption{
		ID:        types.OptionID(r.ID),
		Label:     r.Label,
		Value:     r.Value,
		Order:     r.Order,
		IsCorrect: r.IsCorrect,
		Points:    r.Points,
	}
}

func (r submissionRow) toSubmission() (schema.Submission, error) {
	sub := schema.Submission{
		ID:        types.SubmissionID(r.ID),
		FormID:    types.FormID(r.FormID),
		CreatedAt: r.CreatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(r.Data), &sub.Data); err != nil {
		return sub, fmt.Errorf("%w: submission %s: %v", types.ErrInvalidData, r.ID, err)
	}
	if sub.Data == nil {
		sub.Data = types.Values{}
	}
	if r.Metadata.Valid {
		if err := json.Unmarshal([]byte(r.Metadata.String), &sub.Metadata); err != nil {
			return sub, fmt.Errorf("%w: submission %s metadata: %v", types.ErrInvalidData, r.ID, err)
		}
	}
	return sub, nil
}

// wrapDecode keeps sentinel errors raised by custom unmarshalers and tags
// anything else as an invalid definition.
func wrapDecode(err error) error {
	for _, sentinel := range []error{types.ErrInvalidCondition, types.ErrUnknownOperator, types.ErrConditionTooDeep, types.ErrTooManyInValues} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", types.ErrInvalidDefinition, err)
}
