package draftrepo

import (
	"context"
	"sync"

	"github.com/yanqian/meetmail/internal/domain/mailgen"
)

const memoryHistoryCap = 200

// MemoryRepository is an in-memory DraftRepository used for tests/dev and
// as the fallback when no Postgres DSN is configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	drafts []mailgen.DraftRecord
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Save implements mailgen.DraftRepository.
func (r *MemoryRepository) Save(_ context.Context, rec mailgen.DraftRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts = append(r.drafts, rec)
	if len(r.drafts) > memoryHistoryCap {
		r.drafts = r.drafts[len(r.drafts)-memoryHistoryCap:]
	}
	return nil
}

// Recent implements mailgen.DraftRepository, newest first.
func (r *MemoryRepository) Recent(_ context.Context, limit int) ([]mailgen.DraftRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.drafts) {
		limit = len(r.drafts)
	}
	out := make([]mailgen.DraftRecord, 0, limit)
	for i := len(r.drafts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.drafts[i])
	}
	return out, nil
}

var _ mailgen.DraftRepository = (*MemoryRepository)(nil)
