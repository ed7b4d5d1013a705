package backend

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// KeyEvent is one press or release of a key.
type KeyEvent struct {
	Key   string
	Press bool
}

// Modifier key names.
const (
	KeyShift   = "shift"
	KeyControl = "control"
	KeyAlt     = "alt"
	KeyMeta    = "meta"
)

var modifiers = map[rune]string{
	'+': KeyShift,
	'^': KeyControl,
	'%': KeyAlt,
	'$': KeyMeta,
}

var namedKeys = map[string]bool{
	"enter": true, "tab": true, "escape": true, "space": true, "backspace": true,
	"delete": true, "insert": true, "home": true, "end": true, "pageup": true,
	"pagedown": true, "up": true, "down": true, "left": true, "right": true,
	"capslock": true, "printscreen": true, "pause": true,
}

func init() {
	for i := 1; i <= 24; i++ {
		namedKeys["f"+strconv.Itoa(i)] = true
	}
}

const maxRepeat = 100

// CompileKeys turns a key sequence into press and release events.
//
// Plain characters are tapped. A modifier (+ shift, ^ control, % alt, $ meta)
// is held down around the next key or parenthesised group. Named keys are
// written in braces, optionally with a repeat count: {ENTER}, {TAB 3}. A
// brace around a single character taps it literally: {+}, {(}, {}}.
func CompileKeys(raw string) ([]KeyEvent, error) {
	p := &keyParser{src: []rune(raw)}
	events, err := p.sequence(false)
	if err != nil {
		return nil, fmt.Errorf("key sequence %q: %w", raw, err)
	}
	return events, nil
}

type keyParser struct {
	src []rune
	pos int
}

func (p *keyParser) sequence(inGroup bool) ([]KeyEvent, error) {
	var out []KeyEvent
	for p.pos < len(p.src) {
		if p.src[p.pos] == ')' {
			if !inGroup {
				return nil, fmt.Errorf("unbalanced ')' at position %d", p.pos)
			}
			p.pos++
			return out, nil
		}
		events, err := p.item()
		if err != nil {
			return nil, err
		}
		out = append(out, events...)
	}
	if inGroup {
		return nil, errors.New("missing ')'")
	}
	return out, nil
}

func (p *keyParser) item() ([]KeyEvent, error) {
	r := p.src[p.pos]
	if mod, ok := modifiers[r]; ok {
		p.pos++
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("modifier %q has no key to apply to", r)
		}
		inner, err := p.item()
		if err != nil {
			return nil, err
		}
		out := make([]KeyEvent, 0, len(inner)+2)
		out = append(out, KeyEvent{Key: mod, Press: true})
		out = append(out, inner...)
		return append(out, KeyEvent{Key: mod}), nil
	}

	switch r {
	case '(':
		p.pos++
		return p.sequence(true)
	case ')':
		return nil, fmt.Errorf("unexpected ')' at position %d", p.pos)
	case '{':
		return p.braced()
	}
	p.pos++
	return tap(string(r), 1), nil
}

func (p *keyParser) braced() ([]KeyEvent, error) {
	start := p.pos
	end := -1
	for i := start + 2; i < len(p.src); i++ {
		if p.src[i] == '}' {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, fmt.Errorf("missing '}' for '{' at position %d", start)
	}
	p.pos = end + 1

	content := string(p.src[start+1 : end])
	if len([]rune(content)) == 1 {
		return tap(content, 1), nil
	}

	name, countText, hasCount := strings.Cut(content, " ")
	name = strings.ToLower(name)
	if !namedKeys[name] {
		return nil, fmt.Errorf("unknown key name %q", name)
	}
	count := 1
	if hasCount {
		n, err := strconv.Atoi(strings.TrimSpace(countText))
		if err != nil || n < 1 || n > maxRepeat {
			return nil, fmt.Errorf("invalid repeat count %q for key %s", countText, name)
		}
		count = n
	}
	return tap(name, count), nil
}

func tap(key string, count int) []KeyEvent {
	out := make([]KeyEvent, 0, 2*count)
	for i := 0; i < count; i++ {
		out = append(out, KeyEvent{Key: key, Press: true}, KeyEvent{Key: key})
	}
	return out
}
