package emlstore

import (
	"context"
	"sync"

	"github.com/yanqian/meetmail/internal/domain/export"
)

// MemoryArchive keeps archived messages in memory, for tests/dev.
type MemoryArchive struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryArchive constructs the archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{objects: make(map[string][]byte)}
}

// Put implements export.Archive.
func (a *MemoryArchive) Put(_ context.Context, key string, data []byte, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[key] = append([]byte(nil), data...)
	return nil
}

// Get returns a stored object, for tests.
func (a *MemoryArchive) Get(key string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.objects[key]
	return data, ok
}

var _ export.Archive = (*MemoryArchive)(nil)
