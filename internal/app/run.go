package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/hatremote/internal/ctxlog"
	"github.com/specialistvlad/hatremote/internal/remote"
)

// Run validates the configs once, then serves remote surfaces on the
// configured port until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	// A broken config should stop the process before anyone connects.
	if _, err := a.LoadConfigs(ctx, nil); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", a.config.Port, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the remote server on ln until ctx is cancelled.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	a.remote = remote.NewServer(ctx, a.LoadConfigs)
	a.healthCheckServer()

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", a.remote.Handler())
	srv := &http.Server{Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🚀 Remote server listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	a.logger.Info("🏁 Shutting down remote server...")
	a.remote.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = err
	}
	if err := a.closeHealthCheckServer(); err != nil && serveErr == nil {
		serveErr = err
	}
	a.logger.Debug("App.Run method finished.")
	return serveErr
}
