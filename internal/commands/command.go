package commands

import (
	"slices"

	"github.com/specialistvlad/hatremote/internal/ids"
)

// Command is one row of the command table.
type Command struct {
	ID          ids.CommandID
	Category    string
	Note        string
	Description string
	Actions     []Action // one per environment
}

// EnabledIn reports whether the command does something in env.
func (c Command) EnabledIn(env int) bool {
	return env >= 0 && env < len(c.Actions) && c.Actions[env].Enabled
}

// Equal compares id, note, category and the per-environment actions.
func (c Command) Equal(o Command) bool {
	return c.ID == o.ID &&
		c.Note == o.Note &&
		c.Category == o.Category &&
		slices.EqualFunc(c.Actions, o.Actions, Action.EquivalentTo)
}

func (c Command) clone() Command {
	c.Actions = slices.Clone(c.Actions)
	return c
}
