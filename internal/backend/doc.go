// Package backend is the host side of command execution. Builder turns
// command cells into actions with compiled payloads, and Host plays them back
// through an Input device: a logging device by default, or xdotool on X11
// desktops.
package backend
