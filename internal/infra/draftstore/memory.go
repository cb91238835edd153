package draftstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/meetmail/internal/domain/mailgen"
)

type memoryEntry struct {
	resp      mailgen.Response
	expiresAt time.Time
}

// MemoryStore is an in-memory DraftStore used for tests/dev and as the
// fallback when no Valkey address is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[uint64]memoryEntry
	tones   map[string]int64
	now     func() time.Time
}

// NewMemoryStore constructs the store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[uint64]memoryEntry),
		tones:   make(map[string]int64),
		now:     time.Now,
	}
}

// Get implements mailgen.DraftStore.
func (s *MemoryStore) Get(_ context.Context, key uint64) (mailgen.Response, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return mailgen.Response{}, false, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return mailgen.Response{}, false, nil
	}
	return entry.resp, true, nil
}

// Save implements mailgen.DraftStore.
func (s *MemoryStore) Save(_ context.Context, key uint64, resp mailgen.Response, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{resp: resp}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

// IncrementTone implements mailgen.DraftStore.
func (s *MemoryStore) IncrementTone(_ context.Context, tone string) error {
	if tone == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tones[tone]++
	return nil
}

// TopTones implements mailgen.DraftStore, highest count first.
func (s *MemoryStore) TopTones(_ context.Context, limit int) ([]mailgen.ToneCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mailgen.ToneCount, 0, len(s.tones))
	for tone, count := range s.tones {
		out = append(out, mailgen.ToneCount{Tone: tone, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tone < out[j].Tone
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ mailgen.DraftStore = (*MemoryStore)(nil)
