package resolve

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/hatremote/internal/ids"
)

// Element is one resolved cell. The zero value is empty space.
type Element struct {
	note      string
	button    bool
	command   ids.CommandID
	variable  ids.VariableID
	sub       *Page
	switchEnv bool
	env       int
}

// Label is a non-button element showing note. An empty note is a spacer.
func Label(note string) Element { return Element{note: note} }

// Button is a button with no behaviour attached yet. Without a command, an
// active sub-page or an environment switch it stays inactive.
func Button(note string) Element { return Element{note: note, button: true} }

func (e Element) WithCommand(id ids.CommandID) Element {
	if e.switchEnv {
		panic("resolve: environment switch button cannot reference a command")
	}
	e.button = true
	e.command = id
	return e
}

func (e Element) WithOptionsPage(p *Page) Element {
	if e.switchEnv {
		panic("resolve: environment switch button cannot own an options page")
	}
	e.button = true
	e.sub = p
	return e
}

func (e Element) WithVariable(id ids.VariableID) Element {
	e.variable = id
	return e
}

// WithSwitchToEnv makes the button switch to env. It panics on a button that
// already references a command or an options page.
func (e Element) WithSwitchToEnv(env int) Element {
	if e.command.NonEmpty() || e.sub != nil {
		panic("resolve: button for switching environments must not reference a command or an options page")
	}
	e.button = true
	e.switchEnv = true
	e.env = env
	return e
}

func (e Element) Note() string              { return e.note }
func (e Element) IsButton() bool            { return e.button }
func (e Element) Command() ids.CommandID    { return e.command }
func (e Element) Variable() ids.VariableID  { return e.variable }
func (e Element) OptionsPage() *Page        { return e.sub }
func (e Element) SwitchTarget() (int, bool) { return e.env, e.switchEnv }

// IsSpace reports a non-button element without text.
func (e Element) IsSpace() bool { return !e.button && e.note == "" && !e.variable.NonEmpty() }

// IsActive reports a button that does something when pressed.
func (e Element) IsActive() bool {
	return e.button && (e.command.NonEmpty() || (e.sub != nil && e.sub.HasActiveButtons()) || e.switchEnv)
}

// Equal requires the same note, and then either two non-buttons, two
// environment switches to the same target, or two other buttons with the same
// command and equal options pages.
func (e Element) Equal(o Element) bool {
	if e.note != o.note {
		return false
	}
	if !e.button || !o.button {
		return !e.button && !o.button
	}
	if e.switchEnv || o.switchEnv {
		return e.switchEnv && o.switchEnv && e.env == o.env
	}
	if e.command != o.command {
		return false
	}
	if e.sub == nil || o.sub == nil {
		return e.sub == nil && o.sub == nil
	}
	return e.sub.Equal(o.sub)
}

func (e Element) String() string {
	if !e.button {
		return fmt.Sprintf("note:%s", e.note)
	}
	s := "button:" + e.note
	if e.command.NonEmpty() {
		s += fmt.Sprintf(",command:%q", e.command)
	}
	if e.sub != nil {
		s += ",optionsPage:set"
	}
	if e.switchEnv {
		s += fmt.Sprintf(",switchToEnv:%d", e.env)
	}
	return s
}

// Page is a resolved grid.
type Page struct {
	caption string
	rows    [][]Element
}

func NewPage(caption string) *Page { return &Page{caption: caption} }

func (p *Page) Caption() string       { return p.caption }
func (p *Page) Rows() [][]Element     { return p.rows }
func (p *Page) PushRow(row []Element) { p.rows = append(p.rows, row) }

// HasActiveButtons reports whether any element, including nested options
// pages, is active.
func (p *Page) HasActiveButtons() bool {
	for _, row := range p.rows {
		for _, e := range row {
			if e.IsActive() {
				return true
			}
		}
	}
	return false
}

func (p *Page) Equal(o *Page) bool {
	return p.caption == o.caption && slices.EqualFunc(p.rows, o.rows, func(a, b []Element) bool {
		return slices.EqualFunc(a, b, Element.Equal)
	})
}

// Representation is the resolved layout for one environment.
type Representation struct {
	Pages []*Page
}

func (r Representation) Equal(o Representation) bool {
	return slices.EqualFunc(r.Pages, o.Pages, (*Page).Equal)
}
