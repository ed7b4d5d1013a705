package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/hatremote/internal/ctxlog"
	"github.com/specialistvlad/hatremote/internal/preview"
)

// Check loads every config once and reports what it found.
func (a *App) Check(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	opts, err := a.LoadConfigs(ctx, nil)
	if err != nil {
		return err
	}
	cmds := opts.Layer.Commands()
	a.logger.Info("✅ Configs are valid.",
		"environments", cmds.Environments(),
		"commands", cmds.Len(),
		"pages", len(opts.Layer.Layout().Pages),
		"selectors", len(opts.Layer.Layout().Selectors),
	)
	return nil
}

// Preview writes the layout resolved for environment env to the app output.
func (a *App) Preview(ctx context.Context, env string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	opts, err := a.LoadConfigs(ctx, nil)
	if err != nil {
		return err
	}
	idx, ok := opts.Layer.Commands().EnvironmentIndex(env)
	if !ok {
		return fmt.Errorf("unknown environment %q, known: %v", env, opts.Layer.Commands().Environments())
	}
	rep := opts.Layer.Generate(idx, true)
	_, err = fmt.Fprint(a.outW, preview.Render(rep, env))
	return err
}
