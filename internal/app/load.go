package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/hatremote/internal/backend"
	"github.com/specialistvlad/hatremote/internal/commands"
	"github.com/specialistvlad/hatremote/internal/ctxlog"
	"github.com/specialistvlad/hatremote/internal/engine"
	"github.com/specialistvlad/hatremote/internal/images"
	"github.com/specialistvlad/hatremote/internal/layout"
	"github.com/specialistvlad/hatremote/internal/resolve"
)

// ConfigError reports a config file that could not be read or parsed.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *ConfigError) Unwrap() error { return e.Err }

// IsConfigError reports whether err carries a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// LoadConfigs reads every config file into a fresh engine setup. progress, if
// not nil, receives one line per step for the loading splash. It has the
// signature of remote.Loader, so each connected client gets its own copy of
// the configs.
func (a *App) LoadConfigs(ctx context.Context, progress func(line string)) (engine.Options, error) {
	logger := ctxlog.FromContext(ctx)
	report := func(format string, args ...any) {
		line := fmt.Sprintf(format, args...)
		logger.Debug(line)
		if progress != nil {
			progress(line)
		}
	}
	cfg := a.config
	builder := backend.Builder{KeysDelay: cfg.KeysDelay, Logger: logger}

	report("reading commands from %s", cfg.CommandsPath)
	var cmds *commands.Container
	err := withFile(cfg.CommandsPath, func(r io.Reader) (err error) {
		cmds, err = commands.ParseCommandsCSV(r, builder)
		return err
	})
	if err != nil {
		return engine.Options{}, err
	}
	report("%d commands for environments %v", cmds.Len(), cmds.Environments())

	for _, path := range cfg.InputSequencesPaths {
		report("reading input sequences from %s", path)
		if err := withFile(path, func(r io.Reader) error { return cmds.ConsumeInputSequences(r, builder) }); err != nil {
			return engine.Options{}, err
		}
	}
	for _, path := range cfg.VariablesPaths {
		report("reading variables from %s", path)
		if err := withFile(path, cmds.ConsumeVariables); err != nil {
			return engine.Options{}, err
		}
	}

	report("reading layout from %s", cfg.LayoutPath)
	var info *layout.Info
	err = withFile(cfg.LayoutPath, func(r io.Reader) (err error) {
		info, err = layout.Parse(r)
		return err
	})
	if err != nil {
		return engine.Options{}, err
	}
	layer, err := resolve.NewLayer(info, cmds)
	if err != nil {
		return engine.Options{}, &ConfigError{Path: cfg.LayoutPath, Err: err}
	}

	opts := engine.Options{
		Layer:            layer,
		Host:             a.inputHost(),
		StickEnvToWindow: cfg.StickEnvToWindow,
	}
	if cfg.ImageResourcesPath != "" {
		report("reading images from %s and %s", cfg.ImageResourcesPath, cfg.ImagesToCommandsPath)
		res, err := loadImages(cmds.Environments(), cfg.ImageResourcesPath, cfg.ImagesToCommandsPath)
		if err != nil {
			return engine.Options{}, err
		}
		opts.Images = res
	}
	report("configs loaded")
	return opts, nil
}

func loadImages(envs []string, resourcesPath, commandsPath string) (*images.Resources, error) {
	resources, err := os.Open(resourcesPath)
	if err != nil {
		return nil, &ConfigError{Path: resourcesPath, Err: err}
	}
	defer resources.Close()
	mapping, err := os.Open(commandsPath)
	if err != nil {
		return nil, &ConfigError{Path: commandsPath, Err: err}
	}
	defer mapping.Close()

	res := images.NewResources(envs)
	if err := res.Consume(resources, mapping); err != nil {
		return nil, &ConfigError{Path: resourcesPath + ", " + commandsPath, Err: err}
	}
	return res, nil
}

func withFile(path string, fn func(r io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return nil
}
