// Package seed ships example form definitions and loads them into a store.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"

	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

//go:embed forms/*.yaml
var formsFS embed.FS

// ErrUnknownSeed is returned for a name that has no bundled definition.
var ErrUnknownSeed = errors.New("unknown seed form")

var names = []string{"contact", "feedback", "signup"}

// Names returns the bundled form names in seeding order.
func Names() []string {
	return append([]string(nil), names...)
}

// Definition parses and validates the bundled definition called name.
func Definition(name string) (*schema.FormDefinition, error) {
	data, err := formsFS.ReadFile(path.Join("forms", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeed, name)
	}
	def, err := schema.ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", name, err)
	}
	return def, nil
}

// Forms is the subset of the form service used for seeding.
type Forms interface {
	ListForms(ctx context.Context, includeDeleted bool) ([]schema.Form, error)
	CreateForm(ctx context.Context, def *schema.FormDefinition) (*schema.Form, error)
	DeleteForm(ctx context.Context, id types.FormID, hard bool) error
}

// Result reports what happened to one seed form.
type Result struct {
	Name    string
	Slug    string
	Created bool
}

// Seed creates the named forms, or all of them when names is empty. Forms
// whose slug is already taken, including by a soft-deleted form, are left
// untouched.
func Seed(ctx context.Context, forms Forms, names ...string) ([]Result, error) {
	if len(names) == 0 {
		names = Names()
	}
	existing, err := slugIndex(ctx, forms)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(names))
	for _, name := range names {
		def, err := Definition(name)
		if err != nil {
			return results, err
		}
		res := Result{Name: name, Slug: def.Slug}
		if _, ok := existing[def.Slug]; !ok {
			if _, err := forms.CreateForm(ctx, def); err != nil {
				return results, fmt.Errorf("seed %s: %w", name, err)
			}
			res.Created = true
		}
		results = append(results, res)
	}
	return results, nil
}

// Clear hard-deletes the named seed forms, or all of them when names is
// empty, and returns the slugs that were removed.
func Clear(ctx context.Context, forms Forms, names ...string) ([]string, error) {
	if len(names) == 0 {
		names = Names()
	}
	existing, err := slugIndex(ctx, forms)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, name := range names {
		def, err := Definition(name)
		if err != nil {
			return removed, err
		}
		id, ok := existing[def.Slug]
		if !ok {
			continue
		}
		if err := forms.DeleteForm(ctx, id, true); err != nil {
			return removed, fmt.Errorf("clear %s: %w", name, err)
		}
		removed = append(removed, def.Slug)
	}
	return removed, nil
}

func slugIndex(ctx context.Context, forms Forms) (map[string]types.FormID, error) {
	all, err := forms.ListForms(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	out := make(map[string]types.FormID, len(all))
	for _, f := range all {
		out[f.Slug] = f.ID
	}
	return out, nil
}
