package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/harmonia-fm/harmonia/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve starts the HTTP API server and blocks until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	router := server.NewAPIRouter(server.APIOpts{
		Store:     services.store,
		Engine:    services.engine,
		Identity:  services.identity,
		Index:     services.index,
		Logger:    r.logger,
		RateLimit: r.config.Server.RatePerSecond,
		RateBurst: r.config.Server.RateBurst,
	})

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}
