package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// HTTPServer manages HTTP server lifecycle.
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer creates an HTTP server for handler on addr.
func NewHTTPServer(addr string, handler http.Handler, readTimeout time.Duration) (*HTTPServer, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readTimeout,
			WriteTimeout:      2 * readTimeout,
			IdleTimeout:       2 * time.Minute,
		},
	}, nil
}

// Start binds the address and serves until Shutdown. A clean shutdown
// returns nil.
func (s *HTTPServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.server.Addr, err)
	}
	return s.Serve(listener)
}

// Serve serves HTTP requests on an existing listener.
func (s *HTTPServer) Serve(listener net.Listener) error {
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, closing connections after
// ShutdownTimeout or when ctx ends.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.server.Close()
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
