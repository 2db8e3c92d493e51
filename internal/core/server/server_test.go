package server

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/formkeeper/internal/core/api"
	"github.com/solatis/formkeeper/internal/core/db"
	"github.com/solatis/formkeeper/internal/core/store"
	"github.com/solatis/formkeeper/internal/schema"
)

const surveyYAML = `
name: Survey
slug: survey
steps:
  - name: about
    fields:
      - name: age
        label: Age
        type: number
        required: true
        validation: {min: 18}
      - name: employed
        label: Employed
        type: radio
        options:
          - {label: "Yes", value: "yes"}
          - {label: "No", value: "no"}
  - name: work
    condition: {field: employed, op: eq, value: "yes"}
    fields:
      - name: employer
        label: Employer
        type: text
        required: true
`

func newService(t *testing.T) *api.Service {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "grpc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.MigrateUp(ctx, conn))

	repo, err := store.New(conn)
	require.NoError(t, err)
	svc, err := api.NewService(repo, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	def, err := schema.ParseDefinition([]byte(surveyYAML))
	require.NoError(t, err)
	_, err = svc.CreateForm(ctx, def)
	require.NoError(t, err)
	return svc
}

func dialBufconn(t *testing.T, svc *api.Service) *grpc.ClientConn {
	t.Helper()
	srv, err := NewGRPCServer("", svc, zaptest.NewLogger(t))
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { cc.Close() })
	return cc
}

func request(t *testing.T, slug string, data map[string]any) *structpb.Struct {
	t.Helper()
	in, err := structpb.NewStruct(map[string]any{"form": slug, "data": data})
	require.NoError(t, err)
	return in
}

func TestValidate(t *testing.T) {
	client := NewFormValidationClient(dialBufconn(t, newService(t)))
	ctx := context.Background()

	out, err := client.Validate(ctx, request(t, "survey", map[string]any{"age": 16, "employed": "yes"}))
	require.NoError(t, err)
	got := out.AsMap()
	assert.Equal(t, false, got["valid"])
	assert.Equal(t, map[string]any{
		"age":      []any{"Age must be at least 18"},
		"employer": []any{"Employer is required"},
	}, got["fields"])
	assert.Len(t, got["errors"], 2)

	out, err = client.Validate(ctx, request(t, "survey", map[string]any{"age": "21", "employed": "no"}))
	require.NoError(t, err)
	assert.Equal(t, true, out.AsMap()["valid"])
}

func TestVisibility(t *testing.T) {
	client := NewFormValidationClient(dialBufconn(t, newService(t)))

	out, err := client.Visibility(context.Background(), request(t, "survey", map[string]any{"employed": "no"}))
	require.NoError(t, err)
	fields := out.AsMap()["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"age": true, "employed": true, "employer": false}, fields)
}

func TestErrorCodes(t *testing.T) {
	client := NewFormValidationClient(dialBufconn(t, newService(t)))
	ctx := context.Background()

	tests := []struct {
		name string
		in   map[string]any
		code codes.Code
	}{
		{"missing form", map[string]any{"data": map[string]any{}}, codes.InvalidArgument},
		{"unknown form", map[string]any{"form": "nope"}, codes.NotFound},
		{"nested data", map[string]any{"form": "survey", "data": map[string]any{"age": map[string]any{"x": 1}}}, codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := structpb.NewStruct(tt.in)
			require.NoError(t, err)
			_, err = client.Validate(ctx, in)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestHealth(t *testing.T) {
	cc := dialBufconn(t, newService(t))

	resp, err := grpc_health_v1.NewHealthClient(cc).Check(context.Background(),
		&grpc_health_v1.HealthCheckRequest{Service: formValidationService})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
}

type fakeServer struct {
	startErr error
	stop     chan struct{}
	shutdown atomic.Int32
}

func newFakeServer(startErr error) *fakeServer {
	return &fakeServer{startErr: startErr, stop: make(chan struct{})}
}

func (f *fakeServer) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stop
	return nil
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	if f.shutdown.Add(1) == 1 {
		close(f.stop)
	}
	return nil
}

func TestRun(t *testing.T) {
	log := zaptest.NewLogger(t)

	t.Run("context cancel shuts everything down", func(t *testing.T) {
		a, b := newFakeServer(nil), newFakeServer(nil)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- Run(ctx, log, a, b) }()

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return")
		}
		assert.Equal(t, int32(1), a.shutdown.Load())
		assert.Equal(t, int32(1), b.shutdown.Load())
	})

	t.Run("start failure stops the others", func(t *testing.T) {
		boom := errors.New("bind failed")
		a, b := newFakeServer(boom), newFakeServer(nil)

		err := Run(context.Background(), log, a, b)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, int32(1), b.shutdown.Load())
	})
}
