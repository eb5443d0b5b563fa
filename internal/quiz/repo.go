package quiz

import (
	"context"
	"encoding/json"
)

type ListOpts struct {
	Q         string
	CreatorID string // only tests created by this user
	Published bool   // only published tests
	Limit     int
	Offset    int
}

type AttemptListOpts struct {
	TestID string
	UserID string
	Status string // optional: in_progress|submitted
	Limit  int
	Offset int
}

type SessionListOpts struct {
	TestID  string
	Student string
	Limit   int
	Offset  int
}

// Store is the persistence boundary for tests, attempts and sessions. Both
// evaluation paths (attempt submit and one-shot session create) run the same
// grading engine inside the store, so recorded scores cannot drift between
// call sites.
type Store interface {
	PutTest(ctx context.Context, t Test) error
	GetTest(ctx context.Context, id string) (Test, error) // full test, answer keys included
	DeleteTest(ctx context.Context, id string) error
	ListTests(ctx context.Context, opts ListOpts) ([]TestSummary, error)

	NewAttempt(ctx context.Context, testID, userID string) (Attempt, error)
	SaveAnswer(ctx context.Context, attemptID string, index int, answer json.RawMessage) (Attempt, error)
	SubmitAttempt(ctx context.Context, attemptID string) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)

	CreateSession(ctx context.Context, testID, student string, answers []json.RawMessage) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context, opts SessionListOpts) ([]Session, error)
}
