package commands

import (
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/hatremote/internal/ids"
	"github.com/specialistvlad/hatremote/internal/variables"
)

var (
	ErrDuplicateCommand   = errors.New("duplicate command id")
	ErrUnknownEnvironment = errors.New("unknown environment")
	ErrUnknownCommand     = errors.New("unknown command id")
)

// Container is the command table of one session.
type Container struct {
	envs     []string
	commands []Command
	index    map[ids.CommandID]int
	vars     *variables.Set
}

// NewContainer creates an empty table for the given environments.
func NewContainer(environments []string) *Container {
	return &Container{
		envs:  slices.Clone(environments),
		index: make(map[ids.CommandID]int),
		vars:  variables.NewSet(len(environments)),
	}
}

func (c *Container) Environments() []string { return slices.Clone(c.envs) }

// EnvironmentIndex returns the position of name. Names are case-sensitive.
func (c *Container) EnvironmentIndex(name string) (int, bool) {
	i := slices.Index(c.envs, name)
	return i, i >= 0
}

// Commands returns the table in insertion order.
func (c *Container) Commands() []Command { return c.commands }

func (c *Container) Len() int { return len(c.commands) }

// CommandAt returns the command at a dense index.
func (c *Container) CommandAt(i int) Command { return c.commands[i] }

func (c *Container) Command(id ids.CommandID) (Command, error) {
	i, ok := c.index[id]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
	return c.commands[i], nil
}

// Index returns the dense index of id.
func (c *Container) Index(id ids.CommandID) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

func (c *Container) Has(id ids.CommandID) bool {
	_, ok := c.index[id]
	return ok
}

// Variables returns the per-environment variable managers.
func (c *Container) Variables() *variables.Set { return c.vars }

// EnabledIDs returns the ids of every command enabled in env.
func (c *Container) EnabledIDs(env int) map[ids.CommandID]struct{} {
	out := make(map[ids.CommandID]struct{})
	for _, cmd := range c.commands {
		if cmd.EnabledIn(env) {
			out[cmd.ID] = struct{}{}
		}
	}
	return out
}

// Flatten expands the action of command idx in env into the enabled leaf
// actions it runs, resolving aggregates through the table.
func (c *Container) Flatten(idx, env int) []Action {
	var out []Action
	c.flatten(c.commands[idx].Actions[env], &out)
	return out
}

func (c *Container) flatten(a Action, out *[]Action) {
	if !a.Enabled {
		return
	}
	if a.Kind != ActionAggregate {
		*out = append(*out, a)
		return
	}
	for _, ref := range a.Refs {
		c.flatten(c.commands[ref.Command].Actions[ref.Env], out)
	}
}

// PushRow inserts a command from already split command CSV fields: id,
// category, note, description, then one action definition per environment.
func (c *Container) PushRow(fields []string, b ActionBuilder) error {
	if len(fields) > len(c.envs)+4 {
		return fmt.Errorf("too many fields in row: at most %d allowed (id, category, note, description and one per environment)", len(c.envs)+4)
	}
	if len(fields) < 3 {
		return fmt.Errorf("row needs at least an id, a category and a note")
	}
	id := ids.CommandID(fields[0])

	cells := make([]string, len(c.envs))
	copy(cells, fields[min(4, len(fields)):])

	return c.insert(rowMeta(fields), cells, func(raw string, env int) (Action, error) {
		return b.KeySequence(raw, id, env)
	})
}

type meta struct {
	id          ids.CommandID
	category    string
	note        string
	description string
}

func rowMeta(fields []string) meta {
	m := meta{id: ids.CommandID(fields[0]), category: fields[1], note: fields[2]}
	if len(fields) > 3 {
		m.description = fields[3]
	}
	return m
}

// insert appends a command whose actions are built from one raw cell per
// environment. Empty cells stay disabled and never reach build.
func (c *Container) insert(m meta, cells []string, build func(raw string, env int) (Action, error)) error {
	if c.Has(m.id) {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, m.id)
	}
	actions := make([]Action, len(c.envs))
	for env, raw := range cells {
		if raw == "" {
			actions[env] = Disabled()
			continue
		}
		a, err := build(raw, env)
		if err != nil {
			return err
		}
		actions[env] = a
	}
	c.index[m.id] = len(c.commands)
	c.commands = append(c.commands, Command{
		ID:          m.id,
		Category:    m.category,
		Note:        m.note,
		Description: m.description,
		Actions:     actions,
	})
	return nil
}

// Equal compares environments and commands. Variables are compared by
// VariablesEqual.
func (c *Container) Equal(o *Container) bool {
	return slices.Equal(c.envs, o.envs) && slices.EqualFunc(c.commands, o.commands, Command.Equal)
}

func (c *Container) VariablesEqual(o *Container) bool {
	return c.vars.Equal(o.vars)
}

func (c *Container) Clone() *Container {
	out := &Container{
		envs:     slices.Clone(c.envs),
		commands: make([]Command, len(c.commands)),
		index:    make(map[ids.CommandID]int, len(c.index)),
		vars:     c.vars.Clone(),
	}
	for i, cmd := range c.commands {
		out.commands[i] = cmd.clone()
	}
	for k, v := range c.index {
		out.index[k] = v
	}
	return out
}

// envSpec resolves "*", "" or a comma separated list of environment names
// into one flag per environment.
func (c *Container) envSpec(spec string) ([]bool, error) {
	enabled := make([]bool, len(c.envs))
	switch spec {
	case "":
		return enabled, nil
	case "*":
		for i := range enabled {
			enabled[i] = true
		}
		return enabled, nil
	}
	for _, name := range splitList(spec) {
		i, ok := c.EnvironmentIndex(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEnvironment, name)
		}
		enabled[i] = true
	}
	return enabled, nil
}
