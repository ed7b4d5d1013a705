package backend

import (
	"log/slog"
	"time"

	"github.com/specialistvlad/hatremote/internal/commands"
	"github.com/specialistvlad/hatremote/internal/ids"
)

// Keystrokes is the payload of a key sequence action.
type Keystrokes struct {
	Events []KeyEvent
	// Delay is waited after every event.
	Delay time.Duration
}

// Builder compiles command cells for Host. Cells that cannot be compiled
// keep their text but are disabled, so a typo in one command does not stop
// the whole configuration from loading.
type Builder struct {
	commands.PlainBuilder
	KeysDelay time.Duration
	Logger    *slog.Logger
}

var _ commands.ActionBuilder = Builder{}

func (b Builder) KeySequence(raw string, id ids.CommandID, env int) (commands.Action, error) {
	a, err := b.PlainBuilder.KeySequence(raw, id, env)
	if err != nil || !a.Enabled {
		return a, err
	}
	events, err := CompileKeys(raw)
	if err != nil {
		b.logger().Warn("Key sequence could not be decoded and will be disabled.", "command_id", id, "env", env, "error", err)
		a.Enabled = false
		return a, nil
	}
	a.Payload = Keystrokes{Events: events, Delay: b.KeysDelay}
	return a, nil
}

func (b Builder) MouseAction(raw string, id ids.CommandID, env int) (commands.Action, error) {
	a, err := b.PlainBuilder.MouseAction(raw, id, env)
	if err != nil || !a.Enabled {
		return a, err
	}
	m, err := ParseMouse(raw)
	if err != nil {
		b.logger().Warn("Mouse input could not be decoded and will be disabled.", "command_id", id, "env", env, "error", err)
		a.Enabled = false
		return a, nil
	}
	a.Payload = m
	return a, nil
}

func (b Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}
