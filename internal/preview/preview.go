// Package preview renders layouts as bordered button grids for a terminal.
package preview

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/specialistvlad/hatremote/internal/buttonid"
	"github.com/specialistvlad/hatremote/internal/engine"
	"github.com/specialistvlad/hatremote/internal/resolve"
)

const (
	selectorMark = " ▸"
	subIndent    = 4
)

var (
	captionStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	activeStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	inactiveStyle = activeStyle.Faint(true).BorderForeground(lipgloss.Color("8"))
	labelStyle    = lipgloss.NewStyle().Padding(1, 1)
	spaceStyle    = lipgloss.NewStyle().Width(3).Height(3)
	subPageStyle  = lipgloss.NewStyle().MarginLeft(subIndent)
)

// Render draws every page of rep under title. Options pages follow the page
// that owns them, indented one level per nesting.
func Render(rep resolve.Representation, title string) string {
	var blocks []string
	if title != "" {
		blocks = append(blocks, captionStyle.Render(title))
	}
	for _, p := range rep.Pages {
		blocks = append(blocks, renderPage(p)...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...) + "\n"
}

func renderPage(p *resolve.Page) []string {
	blocks := []string{captionStyle.Render(p.Caption())}
	var subs []string
	for _, row := range p.Rows() {
		cells := make([]string, 0, len(row))
		for _, e := range row {
			cells = append(cells, cell(e))
			if sub := e.OptionsPage(); sub != nil && e.IsActive() {
				subs = append(subs, subPageStyle.Render(
					lipgloss.JoinVertical(lipgloss.Left, renderPage(sub)...)))
			}
		}
		blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return append(blocks, subs...)
}

func cell(e resolve.Element) string {
	switch {
	case !e.IsButton() && e.IsSpace():
		return spaceStyle.Render("")
	case !e.IsButton():
		return labelStyle.Render(e.Note())
	}
	note := e.Note()
	if e.OptionsPage() != nil {
		note += selectorMark
	}
	if !e.IsActive() {
		return inactiveStyle.Render(note)
	}
	return activeStyle.Render(note)
}

// RenderView draws a remote view the way a surface would show it, start page
// first. Navigation buttons form the last row of each page.
func RenderView(v engine.View) string {
	pages := make([]engine.ViewPage, 0, len(v.Pages))
	if start, ok := v.Page(v.StartPage); ok {
		pages = append(pages, start)
	}
	for _, p := range v.Pages {
		if p.ID != v.StartPage {
			pages = append(pages, p)
		}
	}

	var blocks []string
	for _, p := range pages {
		caption := p.Caption
		if caption == "" {
			caption = p.ID
		}
		blocks = append(blocks, captionStyle.Render(caption))
		for _, row := range p.Rows {
			blocks = append(blocks, viewRow(row))
		}
		if len(p.Nav) > 0 {
			blocks = append(blocks, viewRow(p.Nav))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...) + "\n"
}

func viewRow(row []engine.ViewElement) string {
	cells := make([]string, 0, len(row))
	for _, e := range row {
		cells = append(cells, viewCell(e))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func viewCell(e engine.ViewElement) string {
	switch e.Kind {
	case engine.KindSpace:
		return spaceStyle.Render("")
	case engine.KindLabel:
		return labelStyle.Render(e.Note)
	}
	note := e.Note
	if e.TargetPage != "" {
		// command buttons on options pages also jump back; only links are marked
		if kind, _, err := buttonid.Decode(e.ID); err == nil && kind == buttonid.KindThrowaway {
			note += selectorMark
		}
	}
	if e.Image != "" {
		note += "\n▪ " + string(e.Image)
	}
	if !e.Enabled {
		return inactiveStyle.Render(note)
	}
	return activeStyle.Render(note)
}
