package artifact

import (
	"context"
	"sync"

	"github.com/matzehuels/labelsheet/pkg/errors"
)

// MemorySink keeps published documents in memory.
type MemorySink struct {
	mu        sync.Mutex
	published map[string][]byte
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{published: make(map[string][]byte)}
}

// Stage implements Sink.
func (s *MemorySink) Stage(ctx context.Context, name string, data []byte) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutput, err, "stage %s", name)
	}
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &memoryArtifact{sink: s, name: name, data: buf}, nil
}

// Get returns a published document.
func (s *MemorySink) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.published[name]
	return data, ok
}

// Len returns the number of published documents.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

type memoryArtifact struct {
	sink *MemorySink
	name string
	data []byte
	done bool
}

func (a *memoryArtifact) Path() string { return a.name }

func (a *memoryArtifact) Publish() error {
	if a.done {
		return nil
	}
	a.sink.mu.Lock()
	a.sink.published[a.name] = a.data
	a.sink.mu.Unlock()
	a.done = true
	return nil
}

func (a *memoryArtifact) Discard() error {
	a.done = true
	a.data = nil
	return nil
}

var _ Sink = (*MemorySink)(nil)
