// Package checkpoint holds the hot per-attempt state of the quiz-taking
// flow: which question is presented and when its timer runs out. It is
// written on every answer change and advance so a reload resumes mid-quiz,
// and cleared on submit. Durable answers live in the quiz store; this layer
// only has to survive a page reload, so entries carry a TTL.
package checkpoint

import (
	"context"
	"sync"
	"time"
)

type Progress struct {
	QuestionIndex int   `json:"question_index"`
	DeadlineUnix  int64 `json:"deadline_unix,omitempty"` // current question's timer, 0 when untimed
	UpdatedAt     int64 `json:"updated_at"`
}

type Store interface {
	Save(ctx context.Context, attemptID string, p Progress) error
	Load(ctx context.Context, attemptID string) (Progress, bool, error)
	Clear(ctx context.Context, attemptID string) error
}

// MemoryStore keeps progress in-process; the default when Redis is not
// configured.
type MemoryStore struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	p       Progress
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Save(_ context.Context, attemptID string, p Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[attemptID] = memoryEntry{p: p, expires: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, attemptID string) (Progress, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[attemptID]
	s.mu.RUnlock()
	if !ok {
		return Progress{}, false, nil
	}
	if time.Now().After(e.expires) {
		s.mu.Lock()
		delete(s.entries, attemptID)
		s.mu.Unlock()
		return Progress{}, false, nil
	}
	return e.p, true, nil
}

func (s *MemoryStore) Clear(_ context.Context, attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, attemptID)
	return nil
}
