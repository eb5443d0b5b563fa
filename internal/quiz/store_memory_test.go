package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func seedTest(t *testing.T, store Store) Test {
	t.Helper()
	tt := Test{
		ID:        "t1",
		Title:     "One question",
		CreatorID: "teacher-1",
		Published: true,
		Questions: []Question{
			{Text: "Pick A", Type: TypeSingle, Options: []string{"A", "B"}, Answer: []int{0}, Points: 1},
		},
	}
	if err := store.PutTest(context.Background(), tt); err != nil {
		t.Fatalf("PutTest: %v", err)
	}
	return tt
}

func TestAttemptLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	seedTest(t, store)

	a, err := store.NewAttempt(ctx, "t1", "student-1")
	if err != nil {
		t.Fatalf("NewAttempt: %v", err)
	}
	if a.Status != StatusInProgress || len(a.Questions) != 1 {
		t.Fatalf("fresh attempt: %+v", a)
	}

	if _, err := store.SaveAnswer(ctx, a.ID, 0, json.RawMessage(`0`)); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}
	got, err := store.SubmitAttempt(ctx, a.ID)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if got.Status != StatusSubmitted || got.Score != 1 || got.MaxScore != 1 {
		t.Fatalf("submitted attempt: %+v", got)
	}

	// Saving after submit is rejected; the submitted flag gates the action.
	if _, err := store.SaveAnswer(ctx, a.ID, 0, json.RawMessage(`1`)); !errors.Is(err, ErrAttemptSubmitted) {
		t.Fatalf("SaveAnswer after submit: err = %v, want ErrAttemptSubmitted", err)
	}

	// Re-submitting returns the recorded attempt unchanged.
	again, err := store.SubmitAttempt(ctx, a.ID)
	if err != nil {
		t.Fatalf("re-submit: %v", err)
	}
	if again.Score != 1 || again.SubmittedAt != got.SubmittedAt {
		t.Fatalf("re-submit changed the attempt: %+v vs %+v", again, got)
	}
}

func TestAttemptWrongAnswerScoresZero(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	seedTest(t, store)

	a, _ := store.NewAttempt(ctx, "t1", "student-1")
	if _, err := store.SaveAnswer(ctx, a.ID, 0, json.RawMessage(`1`)); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}
	got, err := store.SubmitAttempt(ctx, a.ID)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if got.Score != 0 || got.MaxScore != 1 {
		t.Fatalf("score = %d/%d, want 0/1", got.Score, got.MaxScore)
	}
}

func TestAttemptSnapshotSurvivesEdits(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	tt := seedTest(t, store)

	a, _ := store.NewAttempt(ctx, "t1", "student-1")
	_, _ = store.SaveAnswer(ctx, a.ID, 0, json.RawMessage(`0`))

	// Teacher flips the correct answer mid-attempt; the frozen snapshot
	// keeps grading against what the student was shown.
	tt.Questions[0].Answer = []int{1}
	if err := store.PutTest(ctx, tt); err != nil {
		t.Fatalf("PutTest: %v", err)
	}
	got, err := store.SubmitAttempt(ctx, a.ID)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if got.Score != 1 {
		t.Fatalf("score = %d, want 1 (graded against snapshot)", got.Score)
	}
}

func TestCreateSessionGradesServerSide(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	seedTest(t, store)

	sess, err := store.CreateSession(ctx, "t1", "student@example.com", []json.RawMessage{json.RawMessage(`0`)})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.Score != 1 || sess.MaxScore != 1 {
		t.Fatalf("session score = %d/%d, want 1/1", sess.Score, sess.MaxScore)
	}

	wrong, err := store.CreateSession(ctx, "t1", "student@example.com", []json.RawMessage{json.RawMessage(`1`)})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if wrong.Score != 0 {
		t.Fatalf("session score = %d, want 0", wrong.Score)
	}

	if _, err := store.CreateSession(ctx, "missing", "x", nil); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("CreateSession on missing test: %v", err)
	}
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	seedTest(t, store)
	_ = store.PutTest(ctx, Test{ID: "t2", Title: "Draft", CreatorID: "teacher-2",
		Questions: []Question{{Text: "q", Type: TypeText, TextKey: "a"}}})

	published, err := store.ListTests(ctx, ListOpts{Published: true})
	if err != nil {
		t.Fatalf("ListTests: %v", err)
	}
	if len(published) != 1 || published[0].ID != "t1" {
		t.Fatalf("published listing: %+v", published)
	}

	mine, err := store.ListTests(ctx, ListOpts{CreatorID: "teacher-2"})
	if err != nil {
		t.Fatalf("ListTests: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "t2" {
		t.Fatalf("creator listing: %+v", mine)
	}
}
