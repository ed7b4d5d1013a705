package backend

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Xdotool drives an X11 desktop through the xdotool binary. It is both an
// Input and a WindowTracker.
type Xdotool struct {
	Path string
}

// LookupXdotool finds xdotool in PATH.
func LookupXdotool() (*Xdotool, error) {
	path, err := exec.LookPath("xdotool")
	if err != nil {
		return nil, fmt.Errorf("xdotool not available: %w", err)
	}
	return &Xdotool{Path: path}, nil
}

var xdotoolKeys = map[string]string{
	KeyShift: "shift", KeyControl: "ctrl", KeyAlt: "alt", KeyMeta: "super",
	"enter": "Return", "tab": "Tab", "escape": "Escape", "space": "space",
	"backspace": "BackSpace", "delete": "Delete", "insert": "Insert",
	"home": "Home", "end": "End", "pageup": "Prior", "pagedown": "Next",
	"up": "Up", "down": "Down", "left": "Left", "right": "Right",
	"capslock": "Caps_Lock", "printscreen": "Print", "pause": "Pause",
}

// xdotool button numbers; 4 to 7 are the scroll directions.
var xdotoolButtons = map[MouseInput]string{
	MouseLeft: "1", MouseMiddle: "2", MouseRight: "3",
	MouseScrollUp: "4", MouseScrollDown: "5", MouseScrollLeft: "6", MouseScrollRight: "7",
	MouseX1: "8", MouseX2: "9",
}

func xdotoolKey(key string) string {
	if name, ok := xdotoolKeys[key]; ok {
		return name
	}
	if len(key) > 1 && key[0] == 'f' {
		return "F" + key[1:]
	}
	return key
}

func (x *Xdotool) KeyDown(ctx context.Context, key string) error {
	_, err := x.run(ctx, "keydown", xdotoolKey(key))
	return err
}

func (x *Xdotool) KeyUp(ctx context.Context, key string) error {
	_, err := x.run(ctx, "keyup", xdotoolKey(key))
	return err
}

func (x *Xdotool) Mouse(ctx context.Context, m MouseInput) error {
	button, ok := xdotoolButtons[m]
	if !ok {
		return fmt.Errorf("unsupported mouse input %q", m)
	}
	_, err := x.run(ctx, "click", button)
	return err
}

func (x *Xdotool) ActiveWindow() (string, error) {
	return x.run(context.Background(), "getactivewindow")
}

func (x *Xdotool) run(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, x.Path, args...).Output()
	if err != nil {
		return "", fmt.Errorf("xdotool %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}
