package api

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/formkeeper/internal/core/cache"
	"github.com/solatis/formkeeper/internal/core/db"
	"github.com/solatis/formkeeper/internal/core/store"
	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

const wizardYAML = `
name: Conference Registration
slug: conference
settings:
  success_message: See you there!
  redirect_url: https://example.com/thanks
steps:
  - name: attendee
    fields:
      - name: intro
        label: Welcome
        type: paragraph
      - name: name
        label: Name
        type: text
        required: true
        validation: {min_length: 2}
      - name: role
        label: Role
        type: select
        required: true
        options:
          - {label: Speaker, value: speaker}
          - {label: Guest, value: guest}
  - name: talk
    condition: {field: role, op: eq, value: speaker}
    fields:
      - name: title
        label: Talk title
        type: text
        required: true
      - name: duration
        label: Minutes
        type: number
        validation: {min: 10, max: 60}
`

// memoryCache records calls so tests can observe cache traffic.
type memoryCache struct {
	mu      sync.Mutex
	forms   map[string]*schema.Form
	hits    int
	deletes []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{forms: map[string]*schema.Form{}}
}

func (m *memoryCache) Get(_ context.Context, slug string) (*schema.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[slug]
	if !ok {
		return nil, cache.ErrMiss
	}
	m.hits++
	return f, nil
}

func (m *memoryCache) Set(_ context.Context, form *schema.Form) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forms[form.Slug] = form
	return nil
}

func (m *memoryCache) Delete(_ context.Context, slugs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range slugs {
		delete(m.forms, s)
		m.deletes = append(m.deletes, s)
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryCache) {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.MigrateUp(ctx, conn))

	repo, err := store.New(conn)
	require.NoError(t, err)

	mc := newMemoryCache()
	svc, err := NewService(repo, mc, zaptest.NewLogger(t))
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, mc
}

func createWizard(t *testing.T, svc *Service) *schema.Form {
	t.Helper()
	def, err := schema.ParseDefinition([]byte(wizardYAML))
	require.NoError(t, err)
	form, err := svc.CreateForm(context.Background(), def)
	require.NoError(t, err)
	return form
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestGetFormUsesCache(t *testing.T) {
	ctx := context.Background()
	svc, mc := newTestService(t)
	form := createWizard(t, svc)

	got, err := svc.GetForm(ctx, "conference")
	require.NoError(t, err)
	assert.Equal(t, form.ID, got.ID)
	assert.Zero(t, mc.hits)

	_, err = svc.GetForm(ctx, "conference")
	require.NoError(t, err)
	assert.Equal(t, 1, mc.hits)

	_, err = svc.GetForm(ctx, "nope")
	assert.ErrorIs(t, err, types.ErrFormNotFound)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("guest skips hidden talk step", func(t *testing.T) {
		svc, _ := newTestService(t)
		form := createWizard(t, svc)

		res, err := svc.Submit(ctx, "conference", types.Values{
			"name":  types.Text("Ada"),
			"role":  types.Text("guest"),
			"title": types.Text("ignored because hidden"),
			"extra": types.Text("unknown field"),
		}, types.Metadata{"request_id": "r-1"})
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, "See you there!", res.Message)
		assert.Equal(t, "https://example.com/thanks", res.RedirectURL)

		sub, err := svc.GetSubmission(ctx, res.SubmissionID)
		require.NoError(t, err)
		assert.Equal(t, form.ID, sub.FormID)
		assert.Len(t, sub.Data, 2)
		assert.Contains(t, sub.Data, "name")
		assert.Contains(t, sub.Data, "role")
		assert.NotContains(t, sub.Data, "title")
		assert.NotContains(t, sub.Data, "extra")
		assert.Equal(t, "r-1", sub.Metadata["request_id"])
	})

	t.Run("speaker must fill talk step", func(t *testing.T) {
		svc, _ := newTestService(t)
		form := createWizard(t, svc)

		res, err := svc.Submit(ctx, "conference", types.Values{
			"name":     types.Text("A"),
			"role":     types.Text("speaker"),
			"duration": types.Number(90),
		}, nil)
		require.NoError(t, err)
		require.False(t, res.Success)
		assert.Empty(t, res.SubmissionID)

		attendee := string(form.Steps[0].ID)
		talk := string(form.Steps[1].ID)
		assert.Equal(t, []string{"Name must be at least 2 characters"}, res.Errors.Field(attendee, "name"))
		assert.Equal(t, []string{"Talk title is required"}, res.Errors.Field(talk, "title"))
		assert.Equal(t, []string{"Minutes must be at most 60"}, res.Errors.Field(talk, "duration"))

		list, err := svc.ListSubmissions(ctx, form.ID, 0)
		require.NoError(t, err)
		assert.Zero(t, list.Total)
	})
}

func TestValidateStep(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	form := createWizard(t, svc)

	errs, err := svc.ValidateStep(ctx, "conference", "attendee", types.Values{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"name", "role"}, errs.Fields())

	errs, err = svc.ValidateStep(ctx, "conference", string(form.Steps[1].ID), types.Values{"role": types.Text("guest")})
	require.NoError(t, err)
	assert.True(t, errs.IsEmpty(), "hidden step has no errors")

	_, err = svc.ValidateStep(ctx, "conference", "payment", types.Values{})
	assert.ErrorIs(t, err, types.ErrStepNotFound)
}

func TestVisibility(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	form := createWizard(t, svc)

	vm, err := svc.Visibility(ctx, "conference", types.Values{"role": types.Text("speaker")})
	require.NoError(t, err)
	assert.True(t, vm.Steps[string(form.Steps[1].ID)])
	assert.True(t, vm.Fields["title"])

	vm, err = svc.Visibility(ctx, "conference", types.Values{})
	require.NoError(t, err)
	assert.False(t, vm.Steps[string(form.Steps[1].ID)])
	assert.False(t, vm.Fields["title"])
	assert.True(t, vm.Fields["name"])
}

func TestAdminLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, mc := newTestService(t)
	form := createWizard(t, svc)

	_, err := svc.GetForm(ctx, "conference")
	require.NoError(t, err)

	def := schema.DefinitionOf(form)
	def.Name = "Conference 2026"
	def.Slug = "conference-2026"
	updated, err := svc.UpdateForm(ctx, form.ID, def)
	require.NoError(t, err)
	assert.Equal(t, form.ID, updated.ID)
	assert.Contains(t, mc.deletes, "conference")
	assert.Contains(t, mc.deletes, "conference-2026")

	_, err = svc.GetForm(ctx, "conference")
	assert.ErrorIs(t, err, types.ErrFormNotFound)

	require.NoError(t, svc.DeleteForm(ctx, form.ID, false))
	_, err = svc.GetForm(ctx, "conference-2026")
	assert.ErrorIs(t, err, types.ErrFormDeleted)

	active, err := svc.ListForms(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	restored, err := svc.RestoreForm(ctx, form.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())

	exported, err := svc.ExportForm(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, "Conference 2026", exported.Name)

	require.NoError(t, svc.DeleteForm(ctx, form.ID, true))
	_, err = svc.FormByID(ctx, form.ID)
	assert.ErrorIs(t, err, types.ErrFormNotFound)
}

func TestCreateFormRejectsInvalidDefinition(t *testing.T) {
	svc, _ := newTestService(t)
	def := &schema.FormDefinition{Name: "Broken", Slug: "Not A Slug"}
	_, err := svc.CreateForm(context.Background(), def)
	assert.ErrorIs(t, err, types.ErrInvalidDefinition)
}

func TestImportForm(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	def, err := schema.ParseDefinition([]byte(wizardYAML))
	require.NoError(t, err)

	first, created, err := svc.ImportForm(ctx, def)
	require.NoError(t, err)
	assert.True(t, created)

	def.Name = "Renamed"
	second, created, err := svc.ImportForm(ctx, def)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Renamed", second.Name)
}

func TestSubmissionsAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	form := createWizard(t, svc)

	res, err := svc.Submit(ctx, "conference", types.Values{
		"name": types.Text("Grace"),
		"role": types.Text("guest"),
	}, nil)
	require.NoError(t, err)
	require.True(t, res.Success)

	list, err := svc.ListSubmissions(ctx, form.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Submissions, 1)

	require.NoError(t, svc.DeleteSubmission(ctx, res.SubmissionID))
	err = svc.DeleteSubmission(ctx, res.SubmissionID)
	assert.ErrorIs(t, err, types.ErrSubmissionNotFound)

	_, err = svc.ListSubmissions(ctx, types.NewFormID(), 10)
	assert.ErrorIs(t, err, types.ErrFormNotFound)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
		grpc   codes.Code
	}{
		{"form not found", types.ErrFormNotFound, CodeFormNotFound, http.StatusNotFound, codes.NotFound},
		{"wrapped step", errors.Join(errors.New("ctx"), types.ErrStepNotFound), CodeStepNotFound, http.StatusNotFound, codes.NotFound},
		{"deleted", types.ErrFormDeleted, CodeFormDeleted, http.StatusGone, codes.FailedPrecondition},
		{"duplicate slug", types.ErrDuplicateSlug, CodeDuplicateSlug, http.StatusConflict, codes.AlreadyExists},
		{"operator", types.ErrUnknownOperator, CodeCondition, http.StatusBadRequest, codes.InvalidArgument},
		{"field type", types.ErrUnknownValueType, CodeInvalidFieldType, http.StatusBadRequest, codes.InvalidArgument},
		{"too large", types.ErrSubmissionTooLarge, CodePayloadTooLarge, http.StatusRequestEntityTooLarge, codes.ResourceExhausted},
		{"upload", types.ErrFileUpload, CodeFileUpload, http.StatusBadRequest, codes.InvalidArgument},
		{"timeout", context.DeadlineExceeded, CodeTimeout, http.StatusGatewayTimeout, codes.DeadlineExceeded},
		{"unknown", errors.New("disk on fire"), CodeDatabase, http.StatusInternalServerError, codes.Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Classify(tt.err)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, tt.status, info.HTTPStatus)
			assert.Equal(t, tt.grpc, info.GRPCCode)
		})
	}

	assert.Equal(t, "internal error", Classify(errors.New("secret dsn")).Message)
	st, ok := status.FromError(GRPCError(types.ErrFormNotFound))
	require.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Nil(t, GRPCError(nil))
}

func TestFormETag(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &schema.Form{ID: "a", UpdatedAt: now}
	b := &schema.Form{ID: "a", UpdatedAt: now.Add(time.Second)}

	assert.Equal(t, FormETag(a), FormETag(a))
	assert.NotEqual(t, FormETag(a), FormETag(b))
	assert.Regexp(t, `^"[0-9a-f]{32}"$`, FormETag(a))
}
