package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/test-pad/testpad/internal/grading"
)

type memoryStore struct {
	mu       sync.RWMutex
	grader   grading.Grader
	rng      *rand.Rand
	tests    map[string]Test
	attempts map[string]Attempt
	sessions map[string]Session
}

// NewInMemoryStore backs the Store interface with maps. Used in tests and as
// a zero-dependency dev mode.
func NewInMemoryStore() Store {
	return &memoryStore{
		grader:   grading.NewGrader(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		tests:    map[string]Test{},
		attempts: map[string]Attempt{},
		sessions: map[string]Session{},
	}
}

func (m *memoryStore) PutTest(_ context.Context, t Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	m.tests[t.ID] = t
	return nil
}

func (m *memoryStore) GetTest(_ context.Context, id string) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, ErrTestNotFound
	}
	return t, nil
}

func (m *memoryStore) DeleteTest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[id]; !ok {
		return ErrTestNotFound
	}
	delete(m.tests, id)
	return nil
}

func (m *memoryStore) ListTests(_ context.Context, opts ListOpts) ([]TestSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []TestSummary{}
	for _, t := range m.tests {
		if opts.CreatorID != "" && t.CreatorID != opts.CreatorID {
			continue
		}
		if opts.Published && !t.Published {
			continue
		}
		if opts.Q != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(opts.Q)) {
			continue
		}
		out = append(out, TestSummary{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			CreatorID:     t.CreatorID,
			Published:     t.Published,
			QuestionCount: len(t.Questions),
			CreatedAt:     t.CreatedAt,
		})
	}
	return out, nil
}

func (m *memoryStore) NewAttempt(_ context.Context, testID, userID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[testID]
	if !ok {
		return Attempt{}, ErrTestNotFound
	}
	questions := AssembleInstance(t, m.rng)
	a := Attempt{
		ID:        uuid.NewString(),
		TestID:    testID,
		UserID:    userID,
		Status:    StatusInProgress,
		Questions: questions,
		Answers:   make([]json.RawMessage, len(questions)),
		StartedAt: time.Now().Unix(),
	}
	m.attempts[a.ID] = a
	return a, nil
}

func (m *memoryStore) SaveAnswer(_ context.Context, attemptID string, index int, answer json.RawMessage) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	if a.Status == StatusSubmitted {
		return Attempt{}, ErrAttemptSubmitted
	}
	if index < 0 || index >= len(a.Questions) {
		return Attempt{}, fmt.Errorf("question index %d out of range", index)
	}
	a.Answers = append([]json.RawMessage(nil), a.Answers...)
	a.Answers[index] = answer
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memoryStore) SubmitAttempt(_ context.Context, attemptID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	if a.Status == StatusSubmitted {
		return a, nil
	}
	a.Score, a.MaxScore = grading.ScoreTest(m.grader, gradeViews(a.Questions), a.Answers)
	a.Status = StatusSubmitted
	a.SubmittedAt = time.Now().Unix()
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, opts AttemptListOpts) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if opts.TestID != "" && a.TestID != opts.TestID {
			continue
		}
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryStore) CreateSession(_ context.Context, testID, student string, answers []json.RawMessage) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[testID]
	if !ok {
		return Session{}, ErrTestNotFound
	}
	score, max := grading.ScoreTest(m.grader, gradeViews(t.Questions), answers)
	sess := Session{
		ID:        uuid.NewString(),
		TestID:    testID,
		Student:   student,
		Answers:   answers,
		Score:     score,
		MaxScore:  max,
		CreatedAt: time.Now().Unix(),
	}
	m.sessions[sess.ID] = sess
	return sess, nil
}

func (m *memoryStore) GetSession(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (m *memoryStore) ListSessions(_ context.Context, opts SessionListOpts) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Session{}
	for _, sess := range m.sessions {
		if opts.TestID != "" && sess.TestID != opts.TestID {
			continue
		}
		if opts.Student != "" && sess.Student != opts.Student {
			continue
		}
		out = append(out, sess)
	}
	return out, nil
}
