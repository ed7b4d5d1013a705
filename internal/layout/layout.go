// Package layout parses the user-authored layout file: top-level pages and
// option-selector pages, each a grid of cells, each cell an ordered list of
// options.
package layout

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/specialistvlad/hatremote/internal/configio"
	"github.com/specialistvlad/hatremote/internal/ids"
)

const (
	PagePrefix     = "page:"
	SelectorPrefix = "optionsSelectorPage:"
	VariablePrefix = "text:"
)

const fileType = "layout config"

var ErrDuplicateSelector = errors.New("duplicate selector page id")

// Option is one entry of a cell: a command or selector id, or a variable
// label when Label is set. A label may name no variable at all ("text:").
type Option struct {
	Command  ids.CommandID
	Variable ids.VariableID
	Label    bool
}

func (o Option) IsVariable() bool { return o.Label }

func (o Option) String() string {
	if o.IsVariable() {
		return VariablePrefix + string(o.Variable)
	}
	return string(o.Command)
}

// ParseOption classifies one trimmed option string.
func ParseOption(s string) Option {
	if v, ok := strings.CutPrefix(s, VariablePrefix); ok {
		return Option{Variable: ids.VariableID(v), Label: true}
	}
	return Option{Command: ids.CommandID(s)}
}

// Element is one cell. A cell without options is empty space.
type Element struct {
	Options []Option
}

// ParseElement splits a cell on ',' and trims every option of spaces and
// tabs. Blank options are dropped.
func ParseElement(cell string) Element {
	var e Element
	for _, raw := range configio.SplitAll(cell, ',') {
		s := strings.Trim(raw, " \t")
		if s == "" {
			continue
		}
		e.Options = append(e.Options, ParseOption(s))
	}
	return e
}

func (e Element) Equal(o Element) bool { return slices.Equal(e.Options, o.Options) }

// Page is a captioned grid of cells.
type Page struct {
	Caption string
	Rows    [][]Element
}

// AddRow parses a ';' separated row of cells.
func (p *Page) AddRow(row string) error {
	if row == "" {
		return errors.New("a row must contain at least one element")
	}
	cells := configio.SplitAll(row, ';')
	elems := make([]Element, len(cells))
	for i, cell := range cells {
		elems[i] = ParseElement(cell)
	}
	p.Rows = append(p.Rows, elems)
	return nil
}

func (p *Page) Equal(o *Page) bool {
	return p.Caption == o.Caption && slices.EqualFunc(p.Rows, o.Rows, func(a, b []Element) bool {
		return slices.EqualFunc(a, b, Element.Equal)
	})
}

// Info is the whole layout file.
type Info struct {
	Pages     []*Page
	Selectors map[ids.CommandID]*Page
}

// Parse reads a layout file. Blank and '#' lines are skipped.
func Parse(r io.Reader) (*Info, error) {
	lines, err := configio.ReadLines(r, configio.SkipBlankAndComments)
	if err != nil {
		return nil, err
	}
	info := &Info{Selectors: make(map[ids.CommandID]*Page)}
	var current *Page
	for _, line := range lines {
		current, err = info.consume(line.Text, current)
		if err != nil {
			return nil, configio.Wrap(fileType, line.Number, err)
		}
	}
	return info, nil
}

func (info *Info) consume(line string, current *Page) (*Page, error) {
	if caption, ok := strings.CutPrefix(line, PagePrefix); ok {
		p := &Page{Caption: caption}
		info.Pages = append(info.Pages, p)
		return p, nil
	}
	if rest, ok := strings.CutPrefix(line, SelectorPrefix); ok {
		parts := configio.SplitAll(rest, ';')
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("selector page header must be %q", SelectorPrefix+"<id>;<caption>")
		}
		id := ids.CommandID(parts[0])
		if _, dup := info.Selectors[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSelector, id)
		}
		p := &Page{Caption: parts[1]}
		info.Selectors[id] = p
		return p, nil
	}
	if current == nil {
		return nil, fmt.Errorf("layout must start with a %q or %q header", PagePrefix, SelectorPrefix)
	}
	return current, current.AddRow(line)
}

// Equal compares pages in order and selector pages by id.
func (info *Info) Equal(o *Info) bool {
	if !slices.EqualFunc(info.Pages, o.Pages, (*Page).Equal) || len(info.Selectors) != len(o.Selectors) {
		return false
	}
	for id, p := range info.Selectors {
		q, ok := o.Selectors[id]
		if !ok || !p.Equal(q) {
			return false
		}
	}
	return true
}
