package engine

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/specialistvlad/hatremote/internal/buttonid"
	"github.com/specialistvlad/hatremote/internal/ids"
	"github.com/specialistvlad/hatremote/internal/resolve"
)

type ElementKind string

const (
	KindButton ElementKind = "button"
	KindLabel  ElementKind = "label"
	KindSpace  ElementKind = "space"
)

// ViewElement is one cell of the remote surface. Pressing a button sends its
// ID back; TargetPage, when set, is shown afterwards.
type ViewElement struct {
	ID         string      `json:"id"`
	Note       string      `json:"note"`
	Kind       ElementKind `json:"kind"`
	Enabled    bool        `json:"enabled"`
	TargetPage string      `json:"target_page,omitempty"`
	Image      ids.ImageID `json:"image,omitempty"`
}

type ViewPage struct {
	ID      string          `json:"id"`
	Caption string          `json:"caption"`
	Rows    [][]ViewElement `json:"rows"`
	Nav     []ViewElement   `json:"nav,omitempty"`
}

// View is the complete layout sent to the remote surface.
type View struct {
	Session   string     `json:"session"`
	StartPage string     `json:"start_page"`
	Pages     []ViewPage `json:"pages"`
}

// Page returns the page with the given id.
func (v *View) Page(id string) (ViewPage, bool) {
	for _, p := range v.Pages {
		if p.ID == id {
			return p, true
		}
	}
	return ViewPage{}, false
}

func (v *View) clone() View {
	out := *v
	out.Pages = make([]ViewPage, len(v.Pages))
	for i, p := range v.Pages {
		p.Rows = make([][]ViewElement, len(v.Pages[i].Rows))
		for j, row := range v.Pages[i].Rows {
			p.Rows[j] = slices.Clone(row)
		}
		p.Nav = slices.Clone(p.Nav)
		out.Pages[i] = p
	}
	return out
}

func (v *View) setNote(elementID, note string) {
	for _, p := range v.Pages {
		for _, row := range p.Rows {
			for i := range row {
				if row[i].ID == elementID {
					row[i].Note = note
				}
			}
		}
	}
}

// Message texts of the window-tracking pages.
const (
	StickPrompt        = "Please move the target window for %s to the top."
	StickProceedNote   = "Expected window now on top. Proceed"
	WrongWindowPrompt  = "Wrong topmost window for current environment: please bring the window for %s"
	CancelPendingNote  = "Cancel the current pending command"
	RetryPendingNote   = "Expected window now on top. Retry the command"
	ReloadNote         = "reload"
	BackNote           = "back"
	LoadingCaption     = "Loading configs"
	LoadingLogHeadline = "load log:"
)

// View returns the layout for the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StickEnvToWindow:
		return s.messageView(
			fmt.Sprintf(StickPrompt, s.envs[s.env]),
			s.button(StickProceedNote, s.alloc.Util(buttonid.UtilStick)),
		)
	case WaitForTargetWindow:
		return s.messageView(
			fmt.Sprintf(WrongWindowPrompt, s.envs[s.env]),
			s.button(CancelPendingNote, s.alloc.Util(buttonid.UtilCancel)),
			s.button(RetryPendingNote, s.alloc.Util(buttonid.UtilRetry)),
		)
	}

	if s.dirty || s.normal == nil {
		s.buildNormal()
		s.dirty = false
	}
	v := s.normal.clone()
	if len(s.topPages) > 0 {
		v.StartPage = s.topPages[s.lastTop]
	}
	return v
}

func (s *Session) button(note, id string) ViewElement {
	return ViewElement{ID: id, Note: note, Kind: KindButton, Enabled: true}
}

func (s *Session) messageView(prompt string, buttons ...ViewElement) View {
	page := ViewPage{ID: s.alloc.Throwaway()}
	page.Rows = append(page.Rows, []ViewElement{{ID: s.alloc.Throwaway(), Note: prompt, Kind: KindLabel}})
	for _, b := range buttons {
		page.Rows = append(page.Rows, []ViewElement{b})
	}
	return View{Session: s.id, StartPage: page.ID, Pages: []ViewPage{page}}
}

// navIDs tracks where a generated page sits: current is its own id, fallback
// is the top page the user returns to after running a command from a
// selector page. Top pages have no fallback.
type navIDs struct {
	fallback string
	current  string
}

func (n navIDs) selector(id string) navIDs {
	if n.fallback != "" {
		return navIDs{fallback: n.fallback, current: id}
	}
	return navIDs{fallback: n.current, current: id}
}

type viewBuilder struct {
	s         *Session
	images    map[ids.CommandID]ids.ImageID
	selectors []ViewPage
}

func (s *Session) buildNormal() {
	rep := s.opts.Layer.Generate(s.env, s.selected)
	b := &viewBuilder{s: s}
	if s.selected && s.opts.Images != nil {
		b.images = s.opts.Images.ImagesForEnv(s.env)
	}
	s.noteIDs = make(map[ids.VariableID][]string)

	s.topPages = make([]string, len(rep.Pages))
	for i := range rep.Pages {
		s.topPages[i] = s.alloc.Throwaway()
	}
	prefix := ""
	if s.selected {
		prefix = "[" + s.envs[s.env] + "] "
	}

	v := &View{Session: s.id}
	for i, p := range rep.Pages {
		caption := p.Caption()
		if caption != resolve.EnvironmentPageCaption {
			caption = prefix + caption
		}
		page := ViewPage{
			ID:      s.topPages[i],
			Caption: caption,
			Rows:    b.rows(p, navIDs{current: s.topPages[i]}),
		}
		if len(rep.Pages) > 1 {
			page.Nav = b.topNav(rep, i)
		}
		v.Pages = append(v.Pages, page)
	}
	v.Pages = append(v.Pages, b.selectors...)

	s.lastTop = 0
	if len(rep.Pages) > 1 && len(s.envs) > 1 {
		s.lastTop = 1
	}
	s.normal = v
}

func (b *viewBuilder) topNav(rep resolve.Representation, i int) []ViewElement {
	s := b.s
	var nav []ViewElement
	if i == 0 {
		nav = append(nav, s.button(ReloadNote, s.alloc.Util(buttonid.UtilReload)))
	} else {
		nav = append(nav, b.pageLink(rep.Pages[i-1].Caption(), s.topPages[i-1]))
	}
	if i+1 < len(rep.Pages) {
		nav = append(nav, b.pageLink(rep.Pages[i+1].Caption(), s.topPages[i+1]))
	} else {
		nav = append(nav, ViewElement{ID: s.alloc.Throwaway(), Kind: KindSpace})
	}
	return nav
}

func (b *viewBuilder) pageLink(note, page string) ViewElement {
	e := b.s.button(note, b.s.alloc.Throwaway())
	e.TargetPage = page
	return e
}

func (b *viewBuilder) rows(p *resolve.Page, nav navIDs) [][]ViewElement {
	rows := make([][]ViewElement, 0, len(p.Rows()))
	for _, row := range p.Rows() {
		out := make([]ViewElement, 0, len(row))
		for _, e := range row {
			out = append(out, b.element(e, nav))
		}
		rows = append(rows, out)
	}
	return rows
}

func (b *viewBuilder) element(e resolve.Element, nav navIDs) ViewElement {
	s := b.s
	if !e.IsButton() {
		if e.IsSpace() {
			return ViewElement{ID: s.alloc.Throwaway(), Kind: KindSpace}
		}
		out := ViewElement{ID: s.alloc.Throwaway(), Note: e.Note(), Kind: KindLabel}
		if v := e.Variable(); v.NonEmpty() {
			s.noteIDs[v] = append(s.noteIDs[v], out.ID)
		}
		return out
	}

	out := ViewElement{Note: e.Note(), Kind: KindButton, Enabled: e.IsActive()}
	if out.Enabled {
		if cmd := e.Command(); cmd.NonEmpty() {
			idx, _ := s.opts.Layer.Commands().Index(cmd)
			out.ID = s.alloc.Command(idx)
			out.TargetPage = nav.fallback
			out.Image = b.images[cmd]
		}
		if sub := e.OptionsPage(); sub != nil {
			subNav := nav.selector(s.alloc.Throwaway())
			page := ViewPage{
				ID:      subNav.current,
				Caption: e.Note(),
				Rows:    b.rows(sub, subNav),
				Nav:     []ViewElement{b.pageLink(BackNote, nav.current)},
			}
			b.selectors = append(b.selectors, page)
			out.TargetPage = subNav.current
		}
		if env, ok := e.SwitchTarget(); ok {
			out.ID = s.alloc.EnvSwitch(env)
		}
	}
	if out.ID == "" {
		out.ID = s.alloc.Throwaway()
	}
	return out
}

// Splash is the page shown while configs are loading. The log label grows
// with every Append.
type Splash struct {
	View  View
	LogID string
	log   string
}

func NewSplash() *Splash {
	var alloc buttonid.Allocator
	logID := alloc.Throwaway()
	page := ViewPage{
		ID:      alloc.Throwaway(),
		Caption: LoadingCaption,
		Rows:    [][]ViewElement{{{ID: logID, Note: LoadingLogHeadline, Kind: KindLabel}}},
	}
	return &Splash{
		View:  View{Session: uuid.NewString(), StartPage: page.ID, Pages: []ViewPage{page}},
		LogID: logID,
		log:   LoadingLogHeadline,
	}
}

// Append adds a line to the log and returns the new label text.
func (sp *Splash) Append(line string) string {
	sp.log += "\n" + line
	return sp.log
}
