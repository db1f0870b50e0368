package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"
)

const maxPort = 65535

// listenWithRetry binds the first free port in [port, port+attempts).
// Only EADDRINUSE moves on to the next port; any other bind error is
// returned immediately.
func listenWithRetry(ctx context.Context, port, attempts int, log *slog.Logger) (net.Listener, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lc net.ListenConfig
	for i := 0; i < attempts; i++ {
		candidate := port + i
		if candidate > maxPort {
			break
		}

		ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", candidate))
		if err == nil {
			if i > 0 {
				log.Warn("configured port busy, bound fallback port",
					slog.Int("configured_port", port),
					slog.Int("port", candidate))
			}
			return ln, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("failed to listen on port %d: %w", candidate, err)
		}
		log.Info("port in use, trying next", slog.Int("port", candidate))
	}

	return nil, fmt.Errorf("no free port after %d attempts starting at %d", attempts, port)
}

// Run binds the listener and serves until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	ln, err := listenWithRetry(ctx, app.config.Server.Port, app.config.Server.PortRetryAttempts, app.logger)
	if err != nil {
		app.cleanup()
		return err
	}
	return app.serve(ctx, ln)
}

// serve runs the HTTP server on ln with graceful shutdown support. Startup
// migrations run alongside and are abandoned on shutdown.
func (app *application) serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	bgCtx, cancelBackground := context.WithCancel(ctx)
	defer cancelBackground()
	app.startMigrations(bgCtx)

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.String("addr", ln.Addr().String()))
		serveErr <- server.Serve(ln)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info("shutting down server...")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("server failed", slog.String("error", err.Error()))
			runErr = fmt.Errorf("server error: %w", err)
		}
	}

	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		if runErr == nil {
			runErr = fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	cancelBackground()
	app.cleanup()

	app.logger.Info("server shutdown completed")
	return runErr
}
