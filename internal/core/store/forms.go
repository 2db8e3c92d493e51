package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

// CreateForm inserts a form with all of its steps, fields and options in
// one transaction.
func (s *Store) CreateForm(ctx context.Context, form *schema.Form) error {
	settings, err := json.Marshal(form.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkSlug(ctx, tx, form.Slug, form.ID); err != nil {
			return err
		}
		if _, err := s.queries.Exec(ctx, tx, "insert-form",
			string(form.ID), form.Name, form.Slug, form.Description, string(settings),
			form.CreatedAt.UTC(), form.UpdatedAt.UTC(), utcPtr(form.DeletedAt),
		); err != nil {
			return fmt.Errorf("failed to insert form: %w", err)
		}
		return s.insertSteps(ctx, tx, form)
	})
}

// UpdateForm rewrites the form row and replaces its step tree. Fields and
// options of the old steps are removed by cascade.
func (s *Store) UpdateForm(ctx context.Context, form *schema.Form) error {
	settings, err := json.Marshal(form.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkSlug(ctx, tx, form.Slug, form.ID); err != nil {
			return err
		}
		res, err := s.queries.Exec(ctx, tx, "update-form",
			form.Name, form.Slug, form.Description, string(settings), form.UpdatedAt.UTC(), string(form.ID))
		if err != nil {
			return fmt.Errorf("failed to update form: %w", err)
		}
		if err := affected(res, types.ErrFormNotFound); err != nil {
			return err
		}
		if _, err := s.queries.Exec(ctx, tx, "delete-steps", string(form.ID)); err != nil {
			return fmt.Errorf("failed to delete steps: %w", err)
		}
		return s.insertSteps(ctx, tx, form)
	})
}

func (s *Store) checkSlug(ctx context.Context, tx *sqlx.Tx, slug string, id types.FormID) error {
	var n int
	if err := s.queries.Get(ctx, tx, "slug-taken", &n, slug, string(id)); err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", types.ErrDuplicateSlug, slug)
	}
	return nil
}

func (s *Store) insertSteps(ctx context.Context, tx *sqlx.Tx, form *schema.Form) error {
	for _, step := range form.Steps {
		cond, err := nullJSON(step.Condition, step.Condition == nil)
		if err != nil {
			return fmt.Errorf("failed to encode step %s condition: %w", step.Name, err)
		}
		if _, err := s.queries.Exec(ctx, tx, "insert-step",
			string(step.ID), string(form.ID), step.Name, step.Description, step.Order, cond,
		); err != nil {
			return fmt.Errorf("failed to insert step %s: %w", step.Name, err)
		}

		for _, field := range step.Fields {
			if err := s.insertField(ctx, tx, step.ID, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) insertField(ctx context.Context, tx *sqlx.Tx, stepID types.StepID, field schema.Field) error {
	rules, err := nullJSON(field.Validation, field.Validation.IsEmpty())
	if err != nil {
		return fmt.Errorf("failed to encode field %s validation: %w", field.Name, err)
	}
	ui, err := nullJSON(field.UIOptions, field.UIOptions.IsZero())
	if err != nil {
		return fmt.Errorf("failed to encode field %s ui options: %w", field.Name, err)
	}

	if _, err := s.queries.Exec(ctx, tx, "insert-field",
		string(field.ID), string(stepID), field.Name, field.Label, field.ValueType.String(),
		field.Order, field.Required, field.Placeholder, field.HelpText, field.DefaultValue,
		rules, ui,
	); err != nil {
		return fmt.Errorf("failed to insert field %s: %w", field.Name, err)
	}

	for _, opt := range field.Options {
		if _, err := s.queries.Exec(ctx, tx, "insert-option",
			string(opt.ID), string(field.ID), opt.Label, opt.Value, opt.Order, opt.IsCorrect, opt.Points,
		); err != nil {
			return fmt.Errorf("failed to insert option %s of field %s: %w", opt.Value, field.Name, err)
		}
	}
	return nil
}

// GetForm loads a form by id, including soft-deleted forms.
func (s *Store) GetForm(ctx context.Context, id types.FormID) (*schema.Form, error) {
	var row formRow
	if err := s.queries.Get(ctx, s.conn, "get-form", &row, string(id)); err != nil {
		return nil, notFound(err, types.ErrFormNotFound)
	}
	return s.loadForm(ctx, row)
}

// GetFormBySlug loads an active form by slug. A soft-deleted form yields
// ErrFormDeleted.
func (s *Store) GetFormBySlug(ctx context.Context, slug string) (*schema.Form, error) {
	var row formRow
	if err := s.queries.Get(ctx, s.conn, "get-form-by-slug", &row, slug); err != nil {
		return nil, notFound(err, types.ErrFormNotFound)
	}
	if row.DeletedAt != nil {
		return nil, types.ErrFormDeleted
	}
	return s.loadForm(ctx, row)
}

func (s *Store) loadForm(ctx context.Context, row formRow) (*schema.Form, error) {
	form, err := row.toForm()
	if err != nil {
		return nil, err
	}

	var steps []stepRow
	if err := s.queries.Select(ctx, s.conn, "list-steps", &steps, row.ID); err != nil {
		return nil, fmt.Errorf("failed to load steps: %w", err)
	}
	var fields []fieldRow
	if err := s.queries.Select(ctx, s.conn, "list-fields", &fields, row.ID); err != nil {
		return nil, fmt.Errorf("failed to load fields: %w", err)
	}
	var options []optionRow
	if err := s.queries.Select(ctx, s.conn, "list-options", &options, row.ID); err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}

	optionsByField := make(map[string][]schema.FieldOption)
	for _, o := range options {
		optionsByField[o.FieldID] = append(optionsByField[o.FieldID], o.toOption())
	}

	form.Steps = make([]schema.Step, 0, len(steps))
	stepIndex := make(map[string]int, len(steps))
	for _, sr := range steps {
		step, err := sr.toStep()
		if err != nil {
			return nil, err
		}
		stepIndex[sr.ID] = len(form.Steps)
		form.Steps = append(form.Steps, step)
	}

	// list-fields is ordered by step then field order.
	for _, fr := range fields {
		field, err := fr.toField()
		if err != nil {
			return nil, err
		}
		field.Options = optionsByField[fr.ID]
		i, ok := stepIndex[fr.StepID]
		if !ok {
			continue
		}
		form.Steps[i].Fields = append(form.Steps[i].Fields, field)
	}

	return &form, nil
}

// ListForms returns form headers without their steps, oldest first.
func (s *Store) ListForms(ctx context.Context, includeDeleted bool) ([]schema.Form, error) {
	name := "list-forms"
	if includeDeleted {
		name = "list-forms-all"
	}
	var rows []formRow
	if err := s.queries.Select(ctx, s.conn, name, &rows); err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	forms := make([]schema.Form, 0, len(rows))
	for _, r := range rows {
		f, err := r.toForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// SoftDeleteForm marks a form deleted. Deleting an already deleted form
// returns ErrFormDeleted.
func (s *Store) SoftDeleteForm(ctx context.Context, id types.FormID, now time.Time) error {
	res, err := s.queries.Exec(ctx, s.conn, "soft-delete-form", now.UTC(), now.UTC(), string(id))
	if err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	if err := affected(res, types.ErrFormDeleted); err != nil {
		if _, getErr := s.GetForm(ctx, id); getErr != nil {
			return getErr
		}
		return err
	}
	return nil
}

// RestoreForm clears the deleted marker. Restoring an active form is a no-op.
func (s *Store) RestoreForm(ctx context.Context, id types.FormID, now time.Time) error {
	res, err := s.queries.Exec(ctx, s.conn, "restore-form", now.UTC(), string(id))
	if err != nil {
		return fmt.Errorf("failed to restore form: %w", err)
	}
	if err := affected(res, types.ErrFormNotFound); err != nil {
		_, getErr := s.GetForm(ctx, id)
		return getErr
	}
	return nil
}

// HardDeleteForm removes a form and, by cascade, its steps and submissions.
func (s *Store) HardDeleteForm(ctx context.Context, id types.FormID) error {
	res, err := s.queries.Exec(ctx, s.conn, "delete-form", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	return affected(res, types.ErrFormNotFound)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
