package backend

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/specialistvlad/hatremote/internal/commands"
	"github.com/specialistvlad/hatremote/internal/ctxlog"
	"github.com/specialistvlad/hatremote/internal/ids"
)

// Input simulates user input on the host.
type Input interface {
	KeyDown(ctx context.Context, key string) error
	KeyUp(ctx context.Context, key string) error
	Mouse(ctx context.Context, m MouseInput) error
}

// WindowTracker reports the window that currently has the focus.
type WindowTracker interface {
	ActiveWindow() (string, error)
}

// FixedWindow is a tracker for hosts without window information: every
// query returns the same value, so sticking an environment always succeeds.
type FixedWindow string

func (w FixedWindow) ActiveWindow() (string, error) { return string(w), nil }

// Host executes flattened command actions.
type Host struct {
	Input   Input
	Windows WindowTracker
	// Shell runs system calls; the command text is appended as the last
	// argument. Defaults to "sh -c", or "cmd /C" on Windows.
	Shell []string
}

var ErrNoWindowTracker = errors.New("no window tracker configured")

// Execute plays actions in order and stops at the first failure.
func (h *Host) Execute(ctx context.Context, id ids.CommandID, actions []commands.Action) error {
	logger := ctxlog.FromContext(ctx).With("command_id", id)
	for i, a := range actions {
		if !a.Enabled {
			continue
		}
		logger.Debug("Executing action.", "index", i, "kind", a.Kind, "text", a.Text)
		var err error
		switch a.Kind {
		case commands.ActionKeySequence:
			err = h.keys(ctx, a)
		case commands.ActionMouse:
			err = h.mouse(ctx, a)
		case commands.ActionSleep:
			err = sleep(ctx, a.Sleep)
		case commands.ActionSystemCall:
			err = h.systemCall(ctx, a.Text)
		default:
			logger.Warn("Skipping action that cannot be executed directly.", "kind", a.Kind)
		}
		if err != nil {
			return fmt.Errorf("command %s, action %d (%s): %w", id, i, a.Kind, err)
		}
	}
	return nil
}

func (h *Host) ActiveWindow() (string, error) {
	if h.Windows == nil {
		return "", ErrNoWindowTracker
	}
	return h.Windows.ActiveWindow()
}

func (h *Host) keys(ctx context.Context, a commands.Action) error {
	ks, ok := a.Payload.(Keystrokes)
	if !ok {
		events, err := CompileKeys(a.Text)
		if err != nil {
			return err
		}
		ks = Keystrokes{Events: events}
	}
	for _, ev := range ks.Events {
		var err error
		if ev.Press {
			err = h.Input.KeyDown(ctx, ev.Key)
		} else {
			err = h.Input.KeyUp(ctx, ev.Key)
		}
		if err != nil {
			return err
		}
		if err := sleep(ctx, ks.Delay); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) mouse(ctx context.Context, a commands.Action) error {
	m, ok := a.Payload.(MouseInput)
	if !ok {
		var err error
		if m, err = ParseMouse(a.Text); err != nil {
			return err
		}
	}
	return h.Input.Mouse(ctx, m)
}

func (h *Host) systemCall(ctx context.Context, text string) error {
	shell := h.Shell
	if len(shell) == 0 {
		shell = defaultShell()
	}
	args := append(shell[1:len(shell):len(shell)], text)
	out, err := exec.CommandContext(ctx, shell[0], args...).CombinedOutput()
	ctxlog.FromContext(ctx).Debug("System call finished.", "call", text, "output", strings.TrimSpace(string(out)))
	if err != nil {
		return fmt.Errorf("system call %q: %w", text, err)
	}
	return nil
}

func defaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"sh", "-c"}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// LogInput only logs the input it would simulate.
type LogInput struct{}

func (LogInput) KeyDown(ctx context.Context, key string) error {
	ctxlog.FromContext(ctx).Info("⌨️ Key down.", "key", key)
	return nil
}

func (LogInput) KeyUp(ctx context.Context, key string) error {
	ctxlog.FromContext(ctx).Info("⌨️ Key up.", "key", key)
	return nil
}

func (LogInput) Mouse(ctx context.Context, m MouseInput) error {
	ctxlog.FromContext(ctx).Info("🖱️ Mouse input.", "input", string(m))
	return nil
}
