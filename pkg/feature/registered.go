package feature

import (
	"runtime"
	"sync"
	"weak"
)

// identitySet records definitions by pointer identity without keeping them
// alive; entries are dropped when their definition is collected.
type identitySet struct {
	mu      sync.Mutex
	members map[weak.Pointer[Definition]]struct{}
}

func newIdentitySet() *identitySet {
	return &identitySet{members: make(map[weak.Pointer[Definition]]struct{})}
}

func (s *identitySet) has(definition *Definition) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[weak.Make(definition)]
	return ok
}

func (s *identitySet) add(definition *Definition) {
	key := weak.Make(definition)

	s.mu.Lock()
	_, exists := s.members[key]
	s.members[key] = struct{}{}
	s.mu.Unlock()

	if !exists {
		runtime.AddCleanup(definition, s.remove, key)
	}
}

func (s *identitySet) remove(key weak.Pointer[Definition]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, key)
}

func (s *identitySet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}
