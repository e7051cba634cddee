// Package counter persists the next label number between runs.
//
// The counter is the only mutable state of labelsheet. It is kept apart
// from the configuration snapshot: configuration is read once at startup,
// the counter is read at the start of a run and written back exactly once,
// after the run's document has been fully produced.
//
// # Contract
//
// [Store.Load] returns a [Snapshot] of the stored value. [Store.Commit]
// advances the counter from that snapshot to a new value and fails with
// an *errors.ConflictError if the stored value is no longer the one that
// was read. A failed commit leaves the counter untouched, so rerunning with
// the same configuration reproduces the same labels.
//
// # Backends
//
//   - [FileStore]: a TOML file; by default the configuration file itself
//   - [MemoryStore]: in-process, for tests and previews
//   - redis, mongo and sqlstore subpackages for counters shared by several hosts
//
// Stores that can also serialize whole runs implement [Locker].
package counter

import (
	"context"
)

// DefaultStart is the first label number when nothing has been persisted.
const DefaultStart = 1

// Snapshot is the state of a counter as read by Load.
type Snapshot struct {
	Value  int  // next label number to allocate
	Exists bool // false if nothing has been persisted yet
}

// Or returns the stored value, or def if nothing is stored.
func (s Snapshot) Or(def int) int {
	if s.Exists {
		return s.Value
	}
	return def
}

// Store is a durable counter.
type Store interface {
	// Load reads the current counter state.
	Load(ctx context.Context) (Snapshot, error)

	// Commit stores next if the counter still matches seen.
	Commit(ctx context.Context, seen Snapshot, next int) error

	// Close releases backend resources.
	Close() error
}

// Locker is implemented by stores that can serialize runs. The returned
// function releases the lock and must be called on every exit path.
type Locker interface {
	Lock(ctx context.Context) (unlock func() error, err error)
}
