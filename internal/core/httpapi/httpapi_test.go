package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/solatis/formkeeper/internal/core/api"
	"github.com/solatis/formkeeper/internal/core/db"
	"github.com/solatis/formkeeper/internal/core/store"
)

const conferenceYAML = `
name: Conference Registration
slug: conference
settings:
  success_message: See you there!
steps:
  - name: attendee
    fields:
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
`

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router http.Handler
	svc    *api.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.MigrateUp(ctx, conn))

	repo, err := store.New(conn)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	svc, err := api.NewService(repo, nil, log)
	require.NoError(t, err)
	h, err := NewHandler(svc, log, 1<<20)
	require.NoError(t, err)
	return &testEnv{router: h.Router(), svc: svc}
}

func (e *testEnv) do(t *testing.T, method, path, contentType, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type testEnvelope struct {
	Success   bool            `json:"success"`
	Status    int             `json:"status"`
	Data      json.RawMessage `json:"data"`
	Error     *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (e *testEnv) createConference(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/admin/forms", "application/yaml", conferenceYAML)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var form struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &form))
	require.NotEmpty(t, form.ID)
	return form.ID
}

func TestHealthAndRequestID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", "", "X-Request-ID", "abc-123")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	got := decode(t, rec)
	assert.True(t, got.Success)
	assert.Equal(t, "abc-123", got.RequestID)

	rec = env.do(t, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestFormJSONAndETag(t *testing.T) {
	env := newTestEnv(t)
	env.createConference(t)

	rec := env.do(t, http.MethodGet, "/api/forms/conference/json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var schema struct {
		Slug  string `json:"slug"`
		Steps []struct {
			Condition map[string]any `json:"condition"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &schema))
	assert.Equal(t, "conference", schema.Slug)
	require.Len(t, schema.Steps, 2)
	assert.Equal(t, "speaker", schema.Steps[1].Condition["value"])

	rec = env.do(t, http.MethodGet, "/api/forms/conference/json", "", "", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/forms/missing/json", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "FORM_NOT_FOUND", decode(t, rec).Error.Code)
}

func TestFormHTML(t *testing.T) {
	env := newTestEnv(t)
	env.createConference(t)

	rec := env.do(t, http.MethodGet, "/api/forms/conference", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `action="/api/forms/conference/submit"`)
	assert.Contains(t, rec.Body.String(), `style="display:none"`)
}

func TestSubmitJSON(t *testing.T) {
	env := newTestEnv(t)
	env.createConference(t)

	rec := env.do(t, http.MethodPost, "/api/forms/conference", "application/json",
		`{"name": "A", "role": "speaker"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	got := decode(t, rec)
	assert.False(t, got.Success)
	require.NotNil(t, got.Error)
	assert.Equal(t, "VALIDATION_FAILED", got.Error.Code)

	var details struct {
		Steps  map[string]map[string][]string `json:"steps"`
		Fields map[string][]string            `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(got.Error.Details, &details))
	assert.Len(t, details.Steps, 2)
	assert.Equal(t, []string{"Name must be at least 2 characters"}, details.Fields["name"])
	assert.Equal(t, []string{"Talk title is required"}, details.Fields["title"])

	rec = env.do(t, http.MethodPost, "/api/forms/conference", "application/json",
		`{"name": "Ada", "role": "guest"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res api.SubmitResult
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &res))
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.SubmissionID)
	assert.Equal(t, "See you there!", res.Message)

	rec = env.do(t, http.MethodPost, "/api/forms/conference", "application/json", `[1, 2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_DATA", decode(t, rec).Error.Code)
}

func TestSubmitHTML(t *testing.T) {
	env := newTestEnv(t)
	env.createConference(t)

	form := url.Values{"name": {"A"}, "role": {"guest"}}
	rec := env.do(t, http.MethodPost, "/api/forms/conference/submit",
		"application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Name must be at least 2 characters")
	assert.Contains(t, body, `value="A"`)
	assert.Contains(t, body, `<option value="guest" selected>Guest</option>`)

	form.Set("name", "Ada")
	rec = env.do(t, http.MethodPost, "/api/forms/conference/submit",
		"application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/api/forms/conference/success", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodGet, "/api/forms/conference/success", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "See you there!")
}

func TestValidateStepAndVisibility(t *testing.T) {
	env := newTestEnv(t)
	env.createConference(t)

	rec := env.do(t, http.MethodPost, "/api/forms/conference/steps/talk/validate",
		"application/json", `{"role": "speaker"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/forms/conference/steps/talk/validate",
		"application/json", `{"role": "guest"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/forms/conference/steps/nope/validate",
		"application/json", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "STEP_NOT_FOUND", decode(t, rec).Error.Code)

	rec = env.do(t, http.MethodPost, "/api/forms/conference/visibility",
		"application/json", `{"role": "speaker"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var vm struct {
		Steps  map[string]bool `json:"steps"`
		Fields map[string]bool `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &vm))
	assert.True(t, vm.Fields["title"])
	assert.Len(t, vm.Steps, 2)
}

func TestAdminLifecycle(t *testing.T) {
	env := newTestEnv(t)
	id := env.createConference(t)

	rec := env.do(t, http.MethodPost, "/api/admin/forms", "application/yaml", conferenceYAML)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_SLUG", decode(t, rec).Error.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/forms?import=true", "application/yaml", conferenceYAML)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/admin/forms", "application/json", `{"name": "x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_DEFINITION", decode(t, rec).Error.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/forms/"+id+"/export?format=yaml", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "slug: conference")

	rec = env.do(t, http.MethodPost, "/api/forms/conference", "application/json",
		`{"name": "Ada", "role": "guest"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/forms/"+id+"/submissions?limit=10", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list api.SubmissionList
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	require.Equal(t, 1, list.Total)
	subID := string(list.Submissions[0].ID)

	rec = env.do(t, http.MethodGet, "/api/admin/forms/"+id+"/submissions?limit=x", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/submissions/"+subID, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/admin/submissions/"+subID, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/admin/submissions/"+subID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/forms/"+id, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/forms/conference/json", "", "")
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "FORM_DELETED", decode(t, rec).Error.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/forms", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decode(t, rec).Data))

	rec = env.do(t, http.MethodPost, "/api/admin/forms/"+id+"/restore", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/forms/conference/json", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/forms/"+id+"?hard=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/admin/forms/"+id, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
