package counter

import (
	"context"
	"sync"

	"github.com/matzehuels/labelsheet/pkg/errors"
)

// MemoryStore is an in-process counter.
type MemoryStore struct {
	mu    sync.Mutex
	state Snapshot
}

// NewMemoryStore creates an empty counter.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreAt creates a counter holding value.
func NewMemoryStoreAt(value int) *MemoryStore {
	return &MemoryStore{state: Snapshot{Value: value, Exists: true}}
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

// Commit implements Store.
func (s *MemoryStore) Commit(ctx context.Context, seen Snapshot, next int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != seen {
		return &errors.ConflictError{Expected: seen.Value, Actual: s.state.Value, Missing: seen.Exists && !s.state.Exists}
	}
	s.state = Snapshot{Value: next, Exists: true}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
