// Package variables implements the per-environment text variables shown on
// the remote layout and the operations that commands run against them.
package variables

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/hatremote/internal/ids"
)

var (
	ErrAlreadyDeclared = errors.New("variable is already declared")
	ErrUndeclared      = errors.New("variable is not declared")
)

// Manager holds the variables of one environment and the operations each
// command index triggers. It is not safe for concurrent use; a session owns
// its managers.
type Manager struct {
	values  map[ids.VariableID]string
	ops     map[int][]Operation
	updated map[ids.VariableID]struct{}
}

func NewManager() *Manager {
	return &Manager{
		values:  make(map[ids.VariableID]string),
		ops:     make(map[int][]Operation),
		updated: make(map[ids.VariableID]struct{}),
	}
}

// Declare introduces id with an empty value. Declaring twice is an error.
func (m *Manager) Declare(id ids.VariableID) error {
	if _, ok := m.values[id]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyDeclared, id)
	}
	m.values[id] = ""
	return nil
}

func (m *Manager) Exists(id ids.VariableID) bool {
	_, ok := m.values[id]
	return ok
}

func (m *Manager) Value(id ids.VariableID) (string, error) {
	v, ok := m.values[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUndeclared, id)
	}
	return v, nil
}

// SetValue overwrites the value of a declared variable.
func (m *Manager) SetValue(id ids.VariableID, value string) error {
	if !m.Exists(id) {
		return fmt.Errorf("%w: %s", ErrUndeclared, id)
	}
	m.values[id] = value
	return nil
}

// AddOperation appends op to the list run by commandIndex. Target and source
// must already be declared.
func (m *Manager) AddOperation(commandIndex int, op Operation) error {
	if !m.Exists(op.Target) {
		return fmt.Errorf("%w: %s", ErrUndeclared, op.Target)
	}
	if (op.Kind == OpAssignValue || op.Kind == OpAppendValue) && !m.Exists(op.Source) {
		return fmt.Errorf("%w: %s", ErrUndeclared, op.Source)
	}
	if op.Kind == OpClearTail && op.Count < 0 {
		return fmt.Errorf("negative characters count %d for %s", op.Count, op.Target)
	}
	m.ops[commandIndex] = append(m.ops[commandIndex], op)
	return nil
}

// Operations returns the operations registered for commandIndex, in order.
func (m *Manager) Operations(commandIndex int) []Operation {
	return slices.Clone(m.ops[commandIndex])
}

// ExecuteCommand runs the operations registered for
// commandIndex in registration order and returns every variable they touched,
// sorted. A touched variable counts as changed even if its value did not move.
func (m *Manager) ExecuteCommand(commandIndex int) []ids.VariableID {
	for _, op := range m.ops[commandIndex] {
		m.values[op.Target] = op.apply(m.values[op.Target], func(src ids.VariableID) string {
			return m.values[src]
		})
		m.updated[op.Target] = struct{}{}
	}

	changed := slices.Collect(maps.Keys(m.updated))
	slices.Sort(changed)
	clear(m.updated)
	return changed
}

// Variables returns the declared ids, sorted.
func (m *Manager) Variables() []ids.VariableID {
	list := slices.Collect(maps.Keys(m.values))
	slices.Sort(list)
	return list
}

// Equal compares values, pending update marks and the operation lists.
func (m *Manager) Equal(other *Manager) bool {
	if m == nil || other == nil {
		return m == other
	}
	if !maps.Equal(m.values, other.values) || !maps.Equal(m.updated, other.updated) {
		return false
	}
	return maps.EqualFunc(m.ops, other.ops, slices.Equal[[]Operation])
}

func (m *Manager) Clone() *Manager {
	c := &Manager{
		values:  maps.Clone(m.values),
		ops:     make(map[int][]Operation, len(m.ops)),
		updated: maps.Clone(m.updated),
	}
	for idx, list := range m.ops {
		c.ops[idx] = slices.Clone(list)
	}
	return c
}
