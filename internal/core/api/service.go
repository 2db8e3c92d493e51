// Package api is the form service shared by the HTTP and gRPC surfaces:
// it loads definitions through a read-through cache, validates
// submissions and persists the accepted ones.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/solatis/formkeeper/internal/core/cache"
	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

// Repository is the persistence the service needs; *store.Store implements it.
type Repository interface {
	CreateForm(ctx context.Context, form *schema.Form) error
	UpdateForm(ctx context.Context, form *schema.Form) error
	GetForm(ctx context.Context, id types.FormID) (*schema.Form, error)
	GetFormBySlug(ctx context.Context, slug string) (*schema.Form, error)
	ListForms(ctx context.Context, includeDeleted bool) ([]schema.Form, error)
	SoftDeleteForm(ctx context.Context, id types.FormID, now time.Time) error
	RestoreForm(ctx context.Context, id types.FormID, now time.Time) error
	HardDeleteForm(ctx context.Context, id types.FormID) error

	CreateSubmission(ctx context.Context, sub *schema.Submission) error
	GetSubmission(ctx context.Context, id types.SubmissionID) (*schema.Submission, error)
	ListSubmissions(ctx context.Context, formID types.FormID, limit int) ([]schema.Submission, error)
	CountSubmissions(ctx context.Context, formID types.FormID) (int, error)
	DeleteSubmission(ctx context.Context, id types.SubmissionID) error

	Ping(ctx context.Context) error
}

// Service implements the public and admin form operations.
// Thin orchestration layer over the store, cache and validation packages.
type Service struct {
	repo  Repository
	cache cache.FormCache
	log   *zap.Logger
	now   func() time.Time
}

// NewService creates a service. A nil cache disables caching.
func NewService(repo Repository, c cache.FormCache, log *zap.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("log cannot be nil")
	}
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{
		repo:  repo,
		cache: c,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// GetForm returns the active form with the given slug, consulting the
// cache first.
func (s *Service) GetForm(ctx context.Context, slug string) (*schema.Form, error) {
	form, err := s.cache.Get(ctx, slug)
	if err == nil {
		return form, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("form cache read failed", zap.String("slug", slug), zap.Error(err))
	}

	form, err = s.repo.GetFormBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, form); err != nil {
		s.log.Warn("form cache write failed", zap.String("slug", slug), zap.Error(err))
	}
	return form, nil
}

func (s *Service) invalidate(ctx context.Context, slugs ...string) {
	if err := s.cache.Delete(ctx, slugs...); err != nil {
		s.log.Warn("form cache invalidation failed", zap.Strings("slugs", slugs), zap.Error(err))
	}
}
