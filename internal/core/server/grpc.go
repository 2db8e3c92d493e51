// Package server provides HTTP and gRPC server lifecycle management.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/solatis/formkeeper/internal/core/api"
)

// ShutdownTimeout bounds graceful shutdown of both servers.
const ShutdownTimeout = 30 * time.Second

// GRPCServer serves the FormValidation service and the standard health
// service on one listener.
type GRPCServer struct {
	addr   string
	log    *zap.Logger
	server *grpc.Server
	health *health.Server
}

// NewGRPCServer wires the validation service, health reporting and the
// recovery and logging interceptors. Nothing is bound until Start.
func NewGRPCServer(addr string, svc *api.Service, log *zap.Logger) (*GRPCServer, error) {
	if log == nil {
		return nil, fmt.Errorf("log cannot be nil")
	}
	validationServer, err := NewValidationServer(svc)
	if err != nil {
		return nil, err
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(
		RecoveryInterceptor(log),
		LoggingInterceptor(log),
	))
	RegisterFormValidationServer(server, validationServer)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	for _, name := range []string{"", formValidationService} {
		healthServer.SetServingStatus(name, grpc_health_v1.HealthCheckResponse_SERVING)
	}

	return &GRPCServer{addr: addr, log: log, server: server, health: healthServer}, nil
}

// Start binds the configured address and serves until Shutdown.
func (s *GRPCServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.addr, err)
	}
	s.log.Info("grpc listening", zap.String("addr", listener.Addr().String()))
	return s.Serve(listener)
}

// Serve serves on an existing listener.
func (s *GRPCServer) Serve(listener net.Listener) error {
	return s.server.Serve(listener)
}

// Shutdown reports NOT_SERVING to health checks, then drains in-flight
// calls. Remaining calls are cut off after ShutdownTimeout or when ctx ends.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()

	s.health.Shutdown()

	drained := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("grpc shutdown: %w", ctx.Err())
	}
}
