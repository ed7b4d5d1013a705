package backend

import (
	"fmt"
)

// MouseInput is a single mouse button click or scroll step.
type MouseInput string

const (
	MouseLeft        MouseInput = "L"
	MouseRight       MouseInput = "R"
	MouseMiddle      MouseInput = "M"
	MouseX1          MouseInput = "X1"
	MouseX2          MouseInput = "X2"
	MouseScrollUp    MouseInput = "scroll_v_up"
	MouseScrollDown  MouseInput = "scroll_v_down"
	MouseScrollLeft  MouseInput = "scroll_h_left"
	MouseScrollRight MouseInput = "scroll_h_right"
)

var mouseInputs = []MouseInput{
	MouseLeft, MouseRight, MouseMiddle, MouseX1, MouseX2,
	MouseScrollUp, MouseScrollDown, MouseScrollLeft, MouseScrollRight,
}

// ParseMouse accepts one of the mouse keywords.
func ParseMouse(raw string) (MouseInput, error) {
	for _, m := range mouseInputs {
		if string(m) == raw {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mouse input %q", raw)
}

func (m MouseInput) IsScroll() bool {
	switch m {
	case MouseScrollUp, MouseScrollDown, MouseScrollLeft, MouseScrollRight:
		return true
	}
	return false
}
