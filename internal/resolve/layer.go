// Package resolve turns the layout templates and the command table into the
// concrete pages shown for one environment.
package resolve

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/hatremote/internal/commands"
	"github.com/specialistvlad/hatremote/internal/ids"
	"github.com/specialistvlad/hatremote/internal/layout"
)

// Fixed texts of generated elements.
const (
	EnvironmentPageCaption = "Environment selection"
	UnknownVariableNote    = "<UNKNOWN_VARIABLE>"
	UnknownIDNote          = "UNKNOWN ID"
)

const envButtonsPerRow = 2

var ErrIDCollision = errors.New("the same id is used for a command and an options selector page")

// Layer resolves layouts against one command table.
type Layer struct {
	layout   *layout.Info
	commands *commands.Container
}

// NewLayer rejects selector page ids that are also command ids.
func NewLayer(info *layout.Info, c *commands.Container) (*Layer, error) {
	for _, cmd := range c.Commands() {
		if _, ok := info.Selectors[cmd.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrIDCollision, cmd.ID)
		}
	}
	return &Layer{layout: info, commands: c}, nil
}

func (l *Layer) Commands() *commands.Container { return l.commands }
func (l *Layer) Layout() *layout.Info          { return l.layout }

// Generate builds the pages for env. The environment selection page comes
// first when there is a choice to make; user pages are only produced once an
// environment is selected, and pages without an active button are dropped.
func (l *Layer) Generate(env int, selected bool) Representation {
	var out Representation
	envs := l.commands.Environments()
	if len(envs) > 1 || (!selected && len(envs) != 1) {
		out.Pages = append(out.Pages, environmentPage(envs, env, selected))
	}
	if !selected {
		return out
	}

	r := &resolver{
		layer:      l,
		env:        env,
		active:     l.commands.EnabledIDs(env),
		inProgress: make(map[ids.CommandID]bool),
	}
	for _, tmpl := range l.layout.Pages {
		if page := r.page(tmpl); page.HasActiveButtons() {
			out.Pages = append(out.Pages, page)
		}
	}
	return out
}

func environmentPage(envs []string, selectedEnv int, selected bool) *Page {
	page := NewPage(EnvironmentPageCaption)
	for i := 0; i < len(envs); i += envButtonsPerRow {
		row := make([]Element, 0, envButtonsPerRow)
		for j := i; j < i+envButtonsPerRow; j++ {
			switch {
			case j >= len(envs):
				row = append(row, Label(""))
			case j == selectedEnv && selected:
				row = append(row, Button(envs[j]))
			default:
				row = append(row, Button(envs[j]).WithSwitchToEnv(j))
			}
		}
		page.PushRow(row)
	}
	return page
}

type resolver struct {
	layer  *Layer
	env    int
	active map[ids.CommandID]struct{}
	// selectors on the current recursion path; a cycle resolves as not found
	inProgress map[ids.CommandID]bool
}

func (r *resolver) page(tmpl *layout.Page) *Page {
	page := NewPage(tmpl.Caption)
	for _, row := range tmpl.Rows {
		resolved := make([]Element, 0, len(row))
		for _, cell := range row {
			resolved = append(resolved, r.element(cell))
		}
		if len(resolved) > 0 {
			page.PushRow(resolved)
		}
	}
	return page
}

// element takes the first option that resolves. When none does, the cell
// becomes an inactive button carrying the first known note.
func (r *resolver) element(cell layout.Element) Element {
	if len(cell.Options) == 0 {
		return Label("")
	}
	firstNote := ""
	for _, opt := range cell.Options {
		if opt.IsVariable() {
			return r.variableLabel(opt.Variable)
		}
		if firstNote == "" {
			firstNote = r.knownNote(opt.Command)
		}
		if _, ok := r.active[opt.Command]; ok {
			cmd, _ := r.layer.commands.Command(opt.Command)
			return Button(cmd.Note).WithCommand(opt.Command)
		}
		if e, ok := r.selector(opt.Command); ok {
			return e
		}
	}
	if firstNote == "" {
		firstNote = UnknownIDNote
	}
	return Button(firstNote)
}

func (r *resolver) variableLabel(id ids.VariableID) Element {
	vars := r.layer.commands.Variables().ForEnv(r.env)
	value, err := vars.Value(id)
	if err != nil {
		return Label(UnknownVariableNote)
	}
	return Label(value).WithVariable(id)
}

// knownNote is the command note or selector caption of id, or "".
func (r *resolver) knownNote(id ids.CommandID) string {
	if cmd, err := r.layer.commands.Command(id); err == nil {
		return cmd.Note
	}
	if sel, ok := r.layer.layout.Selectors[id]; ok {
		return sel.Caption
	}
	return ""
}

func (r *resolver) selector(id ids.CommandID) (Element, bool) {
	tmpl, ok := r.layer.layout.Selectors[id]
	if !ok || r.inProgress[id] {
		return Element{}, false
	}
	r.inProgress[id] = true
	sub := r.page(tmpl)
	delete(r.inProgress, id)

	e := Button(tmpl.Caption).WithOptionsPage(sub)
	return e, e.IsActive()
}
