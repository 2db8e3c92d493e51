package server

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Lifecycle is a server that serves until shut down.
type Lifecycle interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Run starts every server and blocks until ctx is cancelled or one of them
// fails, then shuts all of them down. Nil servers are skipped.
func Run(ctx context.Context, log *zap.Logger, servers ...Lifecycle) error {
	var active []Lifecycle
	for _, s := range servers {
		if s != nil {
			active = append(active, s)
		}
	}

	errChan := make(chan error, len(active))
	for _, s := range active {
		go func(s Lifecycle) {
			errChan <- s.Start(ctx)
		}(s)
	}

	var runErr error
	select {
	case runErr = <-errChan:
		if runErr != nil {
			log.Error("server failed", zap.Error(runErr))
		}
	case <-ctx.Done():
		log.Info("shutting down gracefully")
	}

	shutdownCtx := context.WithoutCancel(ctx)
	var errs []error
	for _, s := range active {
		if err := s.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(append([]error{runErr}, errs...)...)
}
