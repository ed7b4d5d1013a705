package remote

import (
	"sync"

	"github.com/specialistvlad/hatremote/internal/engine"
)

// Sessions maps connected client ids to their engine sessions. Clients come
// and go independently and a reload swaps one entry, so a sync.Map keeps
// them from contending on a single lock.
type Sessions struct {
	m sync.Map // client id -> *engine.Session
}

func (s *Sessions) Set(clientID string, sess *engine.Session) {
	s.m.Store(clientID, sess)
}

// Get returns the session of a client, if it is still connected.
func (s *Sessions) Get(clientID string) (*engine.Session, bool) {
	v, ok := s.m.Load(clientID)
	if !ok {
		return nil, false
	}
	return v.(*engine.Session), true
}

func (s *Sessions) Delete(clientID string) {
	s.m.Delete(clientID)
}

func (s *Sessions) Len() int {
	n := 0
	s.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
