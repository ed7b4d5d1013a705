package commands

import (
	"fmt"
	"slices"
	"time"
)

// ActionKind enumerates the closed set of input actions.
type ActionKind int

const (
	ActionDisabled ActionKind = iota
	ActionKeySequence
	ActionMouse
	ActionSleep
	ActionSystemCall
	ActionAggregate
)

func (k ActionKind) String() string {
	switch k {
	case ActionDisabled:
		return "disabled"
	case ActionKeySequence:
		return "keys"
	case ActionMouse:
		return "mouse"
	case ActionSleep:
		return "sleep"
	case ActionSystemCall:
		return "system"
	case ActionAggregate:
		return "sequence"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// ActionRef points at the action of another command by position in the
// table. It is resolved through the Container on every use.
type ActionRef struct {
	Command int
	Env     int
}

// Action is what a command does in one environment.
type Action struct {
	Kind    ActionKind
	Text    string // raw definition as written in the config
	Enabled bool
	Sleep   time.Duration // ActionSleep only
	Refs    []ActionRef   // ActionAggregate only

	// Payload is whatever the ActionBuilder attached for its executor, e.g. a
	// compiled key sequence. It takes no part in equivalence.
	Payload any
}

// Disabled is the action of a command that does nothing in an environment.
func Disabled() Action { return Action{Kind: ActionDisabled} }

// SystemCall runs text through the host shell.
func SystemCall(text string) Action {
	return Action{Kind: ActionSystemCall, Text: text, Enabled: text != ""}
}

// Aggregate runs the referenced actions in order. It is enabled iff it
// references at least one action.
func Aggregate(text string, refs []ActionRef) Action {
	return Action{Kind: ActionAggregate, Text: text, Enabled: len(refs) > 0, Refs: slices.Clone(refs)}
}

// EquivalentTo compares kind and definition, ignoring Payload.
func (a Action) EquivalentTo(b Action) bool {
	return a.Kind == b.Kind &&
		a.Text == b.Text &&
		a.Enabled == b.Enabled &&
		a.Sleep == b.Sleep &&
		slices.Equal(a.Refs, b.Refs)
}

func (a Action) String() string {
	if a.Kind == ActionDisabled {
		return "disabled"
	}
	return fmt.Sprintf("%s(%q)", a.Kind, a.Text)
}
