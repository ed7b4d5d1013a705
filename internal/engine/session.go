package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/specialistvlad/hatremote/internal/buttonid"
	"github.com/specialistvlad/hatremote/internal/commands"
	"github.com/specialistvlad/hatremote/internal/ctxlog"
	"github.com/specialistvlad/hatremote/internal/ids"
	"github.com/specialistvlad/hatremote/internal/images"
	"github.com/specialistvlad/hatremote/internal/resolve"
)

// State is the layout the remote surface currently shows.
type State int

const (
	Normal State = iota
	StickEnvToWindow
	WaitForTargetWindow
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case StickEnvToWindow:
		return "stick_env_to_window"
	case WaitForTargetWindow:
		return "wait_for_target_window"
	}
	return "unknown"
}

// Host performs the side effects of commands on the machine running the tool.
type Host interface {
	Execute(ctx context.Context, id ids.CommandID, actions []commands.Action) error
	// ActiveWindow identifies the window that currently has the focus.
	ActiveWindow() (string, error)
}

// NoteFunc receives text updates for elements of the last built view. It is
// called with the session lock held and must not call back into the session.
type NoteFunc func(elementID, note string)

type Options struct {
	Layer            *resolve.Layer
	Images           *images.Resources // optional
	Host             Host
	StickEnvToWindow bool
	OnNote           NoteFunc
}

// Session is the engine of one connected client. It is safe for concurrent
// use.
type Session struct {
	mu     sync.Mutex
	id     string
	logger *slog.Logger
	opts   Options
	envs   []string

	alloc      buttonid.Allocator
	dispatcher Dispatcher

	env      int
	selected bool
	state    State
	stuck    []string

	dirty    bool
	normal   *View
	topPages []string
	lastTop  int
	noteIDs  map[ids.VariableID][]string
}

// NewSession selects the only environment right away when there is exactly
// one.
func NewSession(ctx context.Context, opts Options) *Session {
	envs := opts.Layer.Commands().Environments()
	s := &Session{
		id:     uuid.NewString(),
		logger: ctxlog.FromContext(ctx),
		opts:   opts,
		envs:   envs,
		stuck:  make([]string, len(envs)),
		dirty:  true,
	}
	if len(envs) == 1 {
		(*target)(s).SetEnvironment(0)
	}
	s.logger.Debug("Engine session created.", "session_id", s.id, "environments", len(envs))
	return s
}

func (s *Session) ID() string { return s.id }

// Environment returns the selected environment index.
func (s *Session) Environment() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env, s.selected
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Click handles a press on the remote surface.
func (s *Session) Click(ctx context.Context, buttonID string) Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	fb := s.dispatcher.Dispatch(ctx, buttonID, (*target)(s))
	s.logger.Debug("Button click dispatched.", "button_id", buttonID, "feedback", fb, "state", s.state)
	return fb
}

// PageSwitched records the top page the user navigated to, so that leaving a
// message page returns there. Other page ids are ignored.
func (s *Session) PageSwitched(pageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range s.topPages {
		if id == pageID {
			s.lastTop = i
			return
		}
	}
}

// target holds the Target implementation; its methods expect s.mu to be held.
type target Session

func (t *target) CanSend() bool {
	if !t.opts.StickEnvToWindow {
		return true
	}
	active, err := t.opts.Host.ActiveWindow()
	if err != nil {
		t.logger.Warn("Could not query the active window.", "error", err)
		return false
	}
	return active != "" && active == t.stuck[t.env]
}

func (t *target) ExecuteCommand(ctx context.Context, index int) {
	c := t.opts.Layer.Commands()
	if !t.selected || index < 0 || index >= c.Len() {
		t.logger.Warn("Ignoring command outside of the current configuration.", "index", index, "env_selected", t.selected)
		return
	}
	cmd := c.CommandAt(index)
	if actions := c.Flatten(index, t.env); len(actions) > 0 {
		t.logger.Debug("Executing command.", "command_id", cmd.ID, "environment", t.envs[t.env], "actions", len(actions))
		if err := t.opts.Host.Execute(ctx, cmd.ID, actions); err != nil {
			t.logger.Error("Command execution failed.", "command_id", cmd.ID, "error", err)
		}
	}

	vars := c.Variables().ForEnv(t.env)
	for _, v := range vars.ExecuteCommand(index) {
		value, _ := vars.Value(v)
		for _, elementID := range t.noteIDs[v] {
			if t.normal != nil {
				t.normal.setNote(elementID, value)
			}
			if t.opts.OnNote != nil {
				t.opts.OnNote(elementID, value)
			}
		}
	}
}

func (t *target) SetEnvironment(env int) bool {
	if env < 0 || env >= len(t.envs) {
		return false
	}
	if env == t.env && t.selected {
		return false
	}
	t.env, t.selected = env, true
	t.dirty = true
	if t.opts.StickEnvToWindow {
		t.state = StickEnvToWindow
	} else {
		t.state = Normal
	}
	return true
}

func (t *target) ShowWrongTopmostWindow() { t.state = WaitForTargetWindow }

func (t *target) RestoreNormalLayout() { t.state = Normal }

func (t *target) StickCurrentWindow() {
	if !t.selected {
		return
	}
	active, err := t.opts.Host.ActiveWindow()
	if err != nil {
		t.logger.Warn("Could not query the active window.", "error", err)
		return
	}
	t.stuck[t.env] = active
	t.state = Normal
	t.logger.Info("📌 Environment stuck to window.", "environment", t.envs[t.env], "window", active)
}
