package parley

import (
	"context"
	"sync"
)

// MemoryStore is an in-process [Store]. It is the engine's default and suits
// tests and single-process use; conversations vanish when the process exits.
// Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*Checkpoint
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{checkpoints: map[string]*Checkpoint{}}
}

// Load implements [Store]. The returned checkpoint is a deep copy; mutating
// it never affects stored state.
func (s *MemoryStore) Load(ctx context.Context, threadID string) (*Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[threadID]
	if !ok {
		return nil, false, nil
	}
	return cp.Clone(), true, nil
}

// Save implements [Store].
func (s *MemoryStore) Save(ctx context.Context, cp *Checkpoint) error {
	clone := cp.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[cp.ThreadID] = clone
	return nil
}

// Delete implements [Store].
func (s *MemoryStore) Delete(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkpoints, threadID)
	return nil
}

// Len returns the number of stored threads.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.checkpoints)
}
