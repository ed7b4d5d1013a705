package engine

import (
	"context"

	"github.com/specialistvlad/hatremote/internal/buttonid"
	"github.com/specialistvlad/hatremote/internal/ctxlog"
)

// Feedback tells the transport what to do after a click.
type Feedback int

const (
	None Feedback = iota
	UpdateLayout
	RestoreNormalLayout
	ReloadConfigs
	ShowStickEnvPage
	ShowTargetWindowNotActivePage
)

func (f Feedback) String() string {
	switch f {
	case None:
		return "none"
	case UpdateLayout:
		return "update_layout"
	case RestoreNormalLayout:
		return "restore_normal_layout"
	case ReloadConfigs:
		return "reload_configs"
	case ShowStickEnvPage:
		return "show_stick_env_page"
	case ShowTargetWindowNotActivePage:
		return "show_target_window_not_active_page"
	}
	return "unknown"
}

// Target is what a click acts on.
type Target interface {
	CanSend() bool
	ExecuteCommand(ctx context.Context, index int)
	// SetEnvironment reports whether the selection changed.
	SetEnvironment(env int) bool
	ShowWrongTopmostWindow()
	RestoreNormalLayout()
	StickCurrentWindow()
}

// Dispatcher routes button ids and holds the command that waits for the
// expected window. The zero value is ready to use.
type Dispatcher struct {
	pending    int
	hasPending bool
}

// Pending returns the command index waiting for a retry.
func (d *Dispatcher) Pending() (int, bool) { return d.pending, d.hasPending }

// Dispatch acts on buttonID. Throwaway and undecodable ids do nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, buttonID string, t Target) Feedback {
	logger := ctxlog.FromContext(ctx)

	kind, n, err := buttonid.Decode(buttonID)
	if err != nil {
		logger.Warn("Ignoring click on an undecodable button.", "button_id", buttonID, "error", err)
		return None
	}

	switch kind {
	case buttonid.KindCommand:
		if t.CanSend() {
			t.ExecuteCommand(ctx, n)
			return None
		}
		d.pending, d.hasPending = n, true
		t.ShowWrongTopmostWindow()
		return UpdateLayout

	case buttonid.KindEnvSwitch:
		if t.SetEnvironment(n) {
			return UpdateLayout
		}
		return None

	case buttonid.KindUtil:
		return d.util(ctx, n, t)
	}

	logger.Warn("Ignoring click on a button without an action.", "button_id", buttonID)
	return None
}

func (d *Dispatcher) util(ctx context.Context, code int, t Target) Feedback {
	switch code {
	case buttonid.UtilRetry:
		if !d.hasPending || !t.CanSend() {
			return None
		}
		t.ExecuteCommand(ctx, d.pending)
		d.hasPending = false
		t.RestoreNormalLayout()
		return UpdateLayout
	case buttonid.UtilCancel:
		d.hasPending = false
		t.RestoreNormalLayout()
		return UpdateLayout
	case buttonid.UtilStick:
		t.StickCurrentWindow()
		return UpdateLayout
	}
	// UtilReload and unknown codes
	return ReloadConfigs
}
