package seed

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/solatis/formkeeper/internal/core/api"
	"github.com/solatis/formkeeper/internal/core/db"
	"github.com/solatis/formkeeper/internal/core/store"
	"github.com/solatis/formkeeper/internal/types"
	"github.com/solatis/formkeeper/internal/validation"
)

func newService(t *testing.T) *api.Service {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.MigrateUp(ctx, conn))

	repo, err := store.New(conn)
	require.NoError(t, err)
	svc, err := api.NewService(repo, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	return svc
}

func TestDefinitions(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			def, err := Definition(name)
			require.NoError(t, err)
			assert.Equal(t, name, def.Slug)
		})
	}

	_, err := Definition("quiz")
	assert.ErrorIs(t, err, ErrUnknownSeed)
}

func TestSeedAndClear(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	results, err := Seed(ctx, svc)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Created, r.Name)
	}

	results, err = Seed(ctx, svc, "contact")
	require.NoError(t, err)
	assert.Equal(t, []Result{{Name: "contact", Slug: "contact", Created: false}}, results)

	removed, err := Clear(ctx, svc, "feedback")
	require.NoError(t, err)
	assert.Equal(t, []string{"feedback"}, removed)

	forms, err := svc.ListForms(ctx, true)
	require.NoError(t, err)
	assert.Len(t, forms, 2)

	_, err = Seed(ctx, svc, "nope")
	assert.ErrorIs(t, err, ErrUnknownSeed)
}

func TestSignupConditions(t *testing.T) {
	def, err := Definition("signup")
	require.NoError(t, err)
	form := def.Build(time.Now())

	personal := types.Values{
		"email":        types.Text("ada@example.com"),
		"username":     types.Text("ada"),
		"account_type": types.Text("personal"),
		"terms":        types.Text("1"),
	}
	errs := validation.ValidateMultiStepSubmission(form.Steps, personal)
	assert.True(t, errs.IsEmpty(), "company step is skipped for personal accounts: %v", errs.Flatten())

	business := types.Values{
		"email":        types.Text("ada@example.com"),
		"username":     types.Text("Ada!"),
		"account_type": types.Text("business"),
	}
	errs = validation.ValidateMultiStepSubmission(form.Steps, business)
	flat := errs.Flatten()
	assert.Equal(t, []string{"company_name", "company_size", "terms", "username"}, flat.Fields())
	assert.Equal(t, []string{"Username: use lowercase letters, digits and underscores"}, flat.Get("username"))

	vm := validation.Visibility(form.Steps, business)
	assert.False(t, vm.Fields["vat_number"])
	assert.False(t, vm.Fields["topics"])
}
