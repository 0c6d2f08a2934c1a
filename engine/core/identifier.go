package core

import (
	"fmt"
	"sync"
)

// IDSequence hands out small integer identifiers to owners and recycles released ones.
// It replaces a process-wide owner table: every subsystem that needs identities receives
// its own sequence at construction time.
type IDSequence struct {
	mu     sync.Mutex
	owners []interface{}
}

func NewIDSequence(capacity int) *IDSequence {
	if capacity < 0 {
		capacity = 0
	}
	return &IDSequence{owners: make([]interface{}, 0, capacity)}
}

// Acquire returns the lowest free identifier and records owner against it.
func (s *IDSequence) Acquire(owner interface{}) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.owners {
		// Existing free spot. Take it.
		if s.owners[i] == nil {
			s.owners[i] = owner
			return uint32(i)
		}
	}
	s.owners = append(s.owners, owner)
	return uint32(len(s.owners) - 1)
}

// Release frees id so it can be handed out again.
func (s *IDSequence) Release(id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(id) >= len(s.owners) {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d). Nothing was done", id, len(s.owners))
	}
	s.owners[id] = nil
	return nil
}

// Owner returns what was registered under id, or nil.
func (s *IDSequence) Owner(id uint32) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(id) >= len(s.owners) {
		return nil
	}
	return s.owners[id]
}

// Reset drops every registration. Used on engine shutdown.
func (s *IDSequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners = s.owners[:0]
}
