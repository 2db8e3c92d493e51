package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
	"github.com/solatis/formkeeper/internal/validation"
)

// SubmitResult is the outcome of Submit. Validation failures are reported
// here rather than as an error.
type SubmitResult struct {
	Success      bool                             `json:"success"`
	SubmissionID types.SubmissionID               `json:"submission_id,omitempty"`
	Message      string                           `json:"message,omitempty"`
	RedirectURL  string                           `json:"redirect_url,omitempty"`
	Errors       *validation.StepValidationErrors `json:"errors,omitempty"`
}

// Submit validates data against every visible step of the form and, when
// valid, stores it. Only values of visible input fields are stored, keyed
// by field name.
func (s *Service) Submit(ctx context.Context, slug string, data types.Values, meta types.Metadata) (*SubmitResult, error) {
	form, err := s.GetForm(ctx, slug)
	if err != nil {
		return nil, err
	}

	errs := validation.ValidateMultiStepSubmission(form.Steps, data)
	if !errs.IsEmpty() {
		s.log.Debug("submission rejected",
			zap.String("slug", slug),
			zap.Int("fields", errs.FieldCount()),
			zap.Int("errors", errs.ErrorCount()))
		return &SubmitResult{Success: false, Errors: errs}, nil
	}

	sub := &schema.Submission{
		ID:        types.NewSubmissionID(),
		FormID:    form.ID,
		Data:      visibleValues(form, data),
		Metadata:  meta,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info("submission stored",
		zap.String("slug", slug),
		zap.String("submission_id", string(sub.ID)),
		zap.Int("values", len(sub.Data)))

	return &SubmitResult{
		Success:      true,
		SubmissionID: sub.ID,
		Message:      form.Settings.SuccessMessageOrDefault(),
		RedirectURL:  form.Settings.RedirectURL,
	}, nil
}

func visibleValues(form *schema.Form, data types.Values) types.Values {
	vis := validation.Visibility(form.Steps, data)
	out := make(types.Values)
	for _, step := range form.Steps {
		if !vis.Steps[string(step.ID)] {
			continue
		}
		for i := range step.Fields {
			field := &step.Fields[i]
			if field.IsDisplayOnly() || !validation.IsFieldVisible(field, data) {
				continue
			}
			if v, ok := data.Lookup(string(field.ID), field.Name); ok && !v.IsNull() {
				out[field.Name] = v
			}
		}
	}
	return out
}

// ValidateStep validates a single step, identified by id or name. A step
// hidden by its condition yields no errors.
func (s *Service) ValidateStep(ctx context.Context, slug, step string, data types.Values) (validation.ValidationErrors, error) {
	form, err := s.GetForm(ctx, slug)
	if err != nil {
		return nil, err
	}
	st, ok := form.StepByID(types.StepID(step))
	if !ok {
		st, ok = form.StepByName(step)
	}
	if !ok {
		return nil, types.ErrStepNotFound
	}
	return validation.ValidateStep(st, data), nil
}

// Visibility evaluates every step and field condition of the form for data.
func (s *Service) Visibility(ctx context.Context, slug string, data types.Values) (validation.VisibilityMap, error) {
	form, err := s.GetForm(ctx, slug)
	if err != nil {
		return validation.VisibilityMap{}, err
	}
	return validation.Visibility(form.Steps, data), nil
}

// Validate checks data against the form without storing anything.
func (s *Service) Validate(ctx context.Context, slug string, data types.Values) (*validation.StepValidationErrors, error) {
	form, err := s.GetForm(ctx, slug)
	if err != nil {
		return nil, err
	}
	return validation.ValidateMultiStepSubmission(form.Steps, data), nil
}
