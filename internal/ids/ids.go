// Package ids defines the identifier types shared by every configuration
// file: commands, variables and images live in separate namespaces and the
// compiler keeps them from being mixed up.
package ids

import "fmt"

// CommandID names a command row. Option-selector pages share this namespace.
type CommandID string

// VariableID names a text variable shown on the layout.
type VariableID string

// ImageID names an image resource attached to command buttons.
type ImageID string

// NonEmpty reports whether the id references anything.
func (id CommandID) NonEmpty() bool { return id != "" }

// NonEmpty reports whether the id references anything.
func (id VariableID) NonEmpty() bool { return id != "" }

// NonEmpty reports whether the id references anything.
func (id ImageID) NonEmpty() bool { return id != "" }

func (id CommandID) String() string  { return string(id) }
func (id VariableID) String() string { return string(id) }
func (id ImageID) String() string    { return string(id) }

// ValidateIdentifier checks that s only contains [A-Za-z0-9_]. An empty
// string is valid; callers that need a value check for it themselves.
func ValidateIdentifier(s string) error {
	for i := 0; i < len(s); i++ {
		if !isIdentifierByte(s[i]) {
			return fmt.Errorf("forbidden symbol %q at position %d in id string %q", s[i], i, s)
		}
	}
	return nil
}

func isIdentifierByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	return c == '_'
}
