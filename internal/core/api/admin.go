package api

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

// MaxSubmissionList caps ListSubmissions.
const MaxSubmissionList = 500

// SubmissionList is a form's most recent submissions plus the total count.
type SubmissionList struct {
	Submissions []schema.Submission `json:"submissions"`
	Total       int                 `json:"total"`
}

// ListForms returns form headers, optionally including soft-deleted forms.
func (s *Service) ListForms(ctx context.Context, includeDeleted bool) ([]schema.Form, error) {
	return s.repo.ListForms(ctx, includeDeleted)
}

// FormByID loads a form by id, including soft-deleted forms.
func (s *Service) FormByID(ctx context.Context, id types.FormID) (*schema.Form, error) {
	return s.repo.GetForm(ctx, id)
}

// CreateForm validates def and stores it as a new form.
func (s *Service) CreateForm(ctx context.Context, def *schema.FormDefinition) (*schema.Form, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	form := def.Build(s.now())
	if err := s.repo.CreateForm(ctx, form); err != nil {
		return nil, err
	}
	s.invalidate(ctx, form.Slug)
	s.log.Info("form created", zap.String("form_id", string(form.ID)), zap.String("slug", form.Slug))
	return form, nil
}

// UpdateForm replaces the definition of an existing form. Step, field and
// option ids are regenerated.
func (s *Service) UpdateForm(ctx context.Context, id types.FormID, def *schema.FormDefinition) (*schema.Form, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	form := def.Rebuild(existing, s.now())
	if err := s.repo.UpdateForm(ctx, form); err != nil {
		return nil, err
	}
	s.invalidate(ctx, existing.Slug, form.Slug)
	s.log.Info("form updated", zap.String("form_id", string(form.ID)), zap.String("slug", form.Slug))
	return form, nil
}

// ImportForm creates the form or, when a form with the same slug exists,
// replaces its definition.
func (s *Service) ImportForm(ctx context.Context, def *schema.FormDefinition) (*schema.Form, bool, error) {
	existing, err := s.repo.GetFormBySlug(ctx, def.Slug)
	switch {
	case err == nil:
		form, err := s.UpdateForm(ctx, existing.ID, def)
		return form, false, err
	case isNotFound(err):
		form, err := s.CreateForm(ctx, def)
		return form, true, err
	default:
		return nil, false, err
	}
}

// ExportForm returns the authoring definition of a form.
func (s *Service) ExportForm(ctx context.Context, id types.FormID) (*schema.FormDefinition, error) {
	form, err := s.repo.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	return schema.DefinitionOf(form), nil
}

// DeleteForm soft-deletes a form, or removes it with its submissions when
// hard is set.
func (s *Service) DeleteForm(ctx context.Context, id types.FormID, hard bool) error {
	form, err := s.repo.GetForm(ctx, id)
	if err != nil {
		return err
	}
	if hard {
		err = s.repo.HardDeleteForm(ctx, id)
	} else {
		err = s.repo.SoftDeleteForm(ctx, id, s.now())
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, form.Slug)
	s.log.Info("form deleted", zap.String("form_id", string(id)), zap.Bool("hard", hard))
	return nil
}

// RestoreForm undoes a soft delete.
func (s *Service) RestoreForm(ctx context.Context, id types.FormID) (*schema.Form, error) {
	if err := s.repo.RestoreForm(ctx, id, s.now()); err != nil {
		return nil, err
	}
	form, err := s.repo.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, form.Slug)
	s.log.Info("form restored", zap.String("form_id", string(id)))
	return form, nil
}

// ListSubmissions returns up to limit of the most recent submissions.
func (s *Service) ListSubmissions(ctx context.Context, formID types.FormID, limit int) (*SubmissionList, error) {
	if _, err := s.repo.GetForm(ctx, formID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxSubmissionList {
		limit = MaxSubmissionList
	}
	subs, err := s.repo.ListSubmissions(ctx, formID, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountSubmissions(ctx, formID)
	if err != nil {
		return nil, err
	}
	return &SubmissionList{Submissions: subs, Total: total}, nil
}

// GetSubmission loads one submission.
func (s *Service) GetSubmission(ctx context.Context, id types.SubmissionID) (*schema.Submission, error) {
	return s.repo.GetSubmission(ctx, id)
}

// DeleteSubmission removes one submission.
func (s *Service) DeleteSubmission(ctx context.Context, id types.SubmissionID) error {
	if err := s.repo.DeleteSubmission(ctx, id); err != nil {
		return fmt.Errorf("delete submission %s: %w", id, err)
	}
	return nil
}

// isNotFound is false for soft-deleted forms: their slug is still taken.
func isNotFound(err error) bool {
	return errors.Is(err, types.ErrFormNotFound)
}
