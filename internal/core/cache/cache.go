// Package cache holds read-through caches of form definitions keyed by slug.
package cache

import (
	"context"
	"errors"

	"github.com/solatis/formkeeper/internal/schema"
)

// ErrMiss is returned by Get when the slug is not cached.
var ErrMiss = errors.New("cache miss")

// FormCache caches active form definitions by slug. Implementations must be
// safe for concurrent use. Errors other than ErrMiss are advisory: callers
// fall back to the store.
type FormCache interface {
	Get(ctx context.Context, slug string) (*schema.Form, error)
	Set(ctx context.Context, form *schema.Form) error
	Delete(ctx context.Context, slugs ...string) error
}

// Nop is a FormCache that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (*schema.Form, error) { return nil, ErrMiss }

func (Nop) Set(context.Context, *schema.Form) error { return nil }

func (Nop) Delete(context.Context, ...string) error { return nil }
