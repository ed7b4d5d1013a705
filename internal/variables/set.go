package variables

import "github.com/specialistvlad/hatremote/internal/ids"

// Set keeps one Manager per environment, indexed like the environment list.
type Set struct {
	managers []*Manager
}

func NewSet(environments int) *Set {
	s := &Set{managers: make([]*Manager, environments)}
	for i := range s.managers {
		s.managers[i] = NewManager()
	}
	return s
}

func (s *Set) Len() int { return len(s.managers) }

// ForEnv returns the manager of environment env. It panics on an index out
// of range, like a slice does.
func (s *Set) ForEnv(env int) *Manager { return s.managers[env] }

// DeclareForAll declares id in every environment.
func (s *Set) DeclareForAll(id ids.VariableID) error {
	for _, m := range s.managers {
		if err := m.Declare(id); err != nil {
			return err
		}
	}
	return nil
}

// DeclaredForAll reports whether every environment knows id.
func (s *Set) DeclaredForAll(id ids.VariableID) bool {
	for _, m := range s.managers {
		if !m.Exists(id) {
			return false
		}
	}
	return true
}

func (s *Set) Equal(other *Set) bool {
	if len(s.managers) != len(other.managers) {
		return false
	}
	for i := range s.managers {
		if !s.managers[i].Equal(other.managers[i]) {
			return false
		}
	}
	return true
}

func (s *Set) Clone() *Set {
	c := &Set{managers: make([]*Manager, len(s.managers))}
	for i, m := range s.managers {
		c.managers[i] = m.Clone()
	}
	return c
}
