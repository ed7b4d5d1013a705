package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/specialistvlad/hatremote/internal/backend"
	"github.com/specialistvlad/hatremote/internal/ctxlog"
	"github.com/specialistvlad/hatremote/internal/engine"
	"github.com/specialistvlad/hatremote/internal/remote"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	ctx    context.Context
	config *Config

	hostOnce sync.Once
	host     engine.Host

	remote     *remote.Server
	httpServer *http.Server
}

// NewApp builds an App with its own logger writing to outW. A nil host
// selects the platform host on first use: xdotool when it is installed,
// otherwise a host that only logs the input it would send.
func NewApp(outW io.Writer, cfg *Config, host engine.Host) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		ctx:    ctx,
		config: cfg,
		host:   host,
	}
}

func (a *App) inputHost() engine.Host {
	a.hostOnce.Do(func() {
		if a.host == nil {
			a.host = platformHost(a.logger)
		}
	})
	return a.host
}

func platformHost(logger *slog.Logger) engine.Host {
	x, err := backend.LookupXdotool()
	if err != nil {
		logger.Warn("Input will only be logged.", "reason", err)
		return &backend.Host{Input: backend.LogInput{}, Windows: backend.FixedWindow("console")}
	}
	logger.Debug("Using xdotool for input.", "path", x.Path)
	return &backend.Host{Input: x, Windows: x}
}

// Config returns the configuration the App was built with.
func (a *App) Config() *Config {
	return a.config
}
