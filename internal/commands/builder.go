package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/specialistvlad/hatremote/internal/ids"
)

// ActionBuilder turns the raw text of a config cell into an Action for the
// given command and environment. Hosts plug in builders that attach
// executable payloads; tests use PlainBuilder.
type ActionBuilder interface {
	KeySequence(raw string, id ids.CommandID, env int) (Action, error)
	MouseAction(raw string, id ids.CommandID, env int) (Action, error)
	Sleep(raw string, id ids.CommandID, env int) (Action, error)
}

// PlainBuilder builds actions without any payload.
type PlainBuilder struct{}

var _ ActionBuilder = PlainBuilder{}

func (PlainBuilder) KeySequence(raw string, _ ids.CommandID, _ int) (Action, error) {
	return Action{Kind: ActionKeySequence, Text: raw, Enabled: raw != ""}, nil
}

func (PlainBuilder) MouseAction(raw string, _ ids.CommandID, _ int) (Action, error) {
	return Action{Kind: ActionMouse, Text: raw, Enabled: raw != ""}, nil
}

// Sleep accepts a non-negative decimal count of milliseconds.
func (PlainBuilder) Sleep(raw string, id ids.CommandID, _ int) (Action, error) {
	ms, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return Action{}, fmt.Errorf("invalid sleep timeout %q for command %s: expected milliseconds", raw, id)
	}
	return Action{
		Kind:    ActionSleep,
		Text:    raw,
		Enabled: true,
		Sleep:   time.Duration(ms) * time.Millisecond,
	}, nil
}
