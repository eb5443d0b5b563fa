package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/test-pad/testpad/internal/checkpoint"
	"github.com/test-pad/testpad/internal/grading"
	"github.com/test-pad/testpad/internal/quiz"
)

// attemptView is what the flow endpoints return: the attempt (student-safe
// while in progress) plus the checkpointed position so a reload can resume.
type attemptView struct {
	quiz.Attempt
	QuestionIndex int   `json:"question_index"`
	DeadlineUnix  int64 `json:"deadline_unix,omitempty"`
}

// AttemptFlow drives the quiz-taking sequence on top of the quiz store and
// the checkpoint store.
type AttemptFlow struct {
	Store       quiz.Store
	Checkpoints checkpoint.Store
}

func (f *AttemptFlow) progressFor(r *http.Request, a quiz.Attempt) checkpoint.Progress {
	p, ok, err := f.Checkpoints.Load(r.Context(), a.ID)
	if err == nil && ok {
		return p
	}
	// Lost or expired checkpoint: restart the current question's timer at
	// the first unanswered question.
	idx := 0
	for idx < len(a.Answers) && grading.Answered(a.Answers[idx]) {
		idx++
	}
	if idx >= len(a.Questions) && len(a.Questions) > 0 {
		idx = len(a.Questions) - 1
	}
	return f.checkpointAt(r, a, idx)
}

func (f *AttemptFlow) checkpointAt(r *http.Request, a quiz.Attempt, idx int) checkpoint.Progress {
	now := time.Now()
	p := checkpoint.Progress{QuestionIndex: idx, UpdatedAt: now.Unix()}
	if idx < len(a.Questions) && a.Questions[idx].TimeLimitSec > 0 {
		p.DeadlineUnix = now.Add(time.Duration(a.Questions[idx].TimeLimitSec) * time.Second).Unix()
	}
	_ = f.Checkpoints.Save(r.Context(), a.ID, p)
	return p
}

func (f *AttemptFlow) view(a quiz.Attempt, p checkpoint.Progress, sanitized bool) attemptView {
	if sanitized {
		a.Questions = quiz.SanitizeQuestions(a.Questions)
	}
	return attemptView{Attempt: a, QuestionIndex: p.QuestionIndex, DeadlineUnix: p.DeadlineUnix}
}

// POST /api/tests/{testID}/attempt: assemble an instance and start the flow.
func (f *AttemptFlow) Start(w http.ResponseWriter, r *http.Request) {
	rq := requesterFrom(r)
	testID := chi.URLParam(r, "testID")
	t, err := f.Store.GetTest(r.Context(), testID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !t.Published && !rq.ownsTest(t) && !rq.isAdmin() {
		writeError(w, http.StatusForbidden, "test is not published")
		return
	}
	a, err := f.Store.NewAttempt(r.Context(), testID, rq.Sub)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	p := f.checkpointAt(r, a, 0)
	writeJSON(w, http.StatusCreated, f.view(a, p, true))
}

// GET /api/tests/attempt/{attemptID}: resume view. In-progress attempts are
// student-safe; submitted ones include the full questions for the results
// page.
func (f *AttemptFlow) Get(w http.ResponseWriter, r *http.Request) {
	rq := requesterFrom(r)
	a, err := f.Store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if a.UserID != rq.Sub && !rq.isTeacher() && !rq.isAdmin() {
		writeError(w, http.StatusForbidden, "not authorized")
		return
	}
	if a.Status == quiz.StatusSubmitted {
		writeJSON(w, http.StatusOK, f.view(a, checkpoint.Progress{QuestionIndex: len(a.Questions)}, false))
		return
	}
	writeJSON(w, http.StatusOK, f.view(a, f.progressFor(r, a), true))
}

// PUT /api/tests/attempt/{attemptID}/answer {index, answer}: record one
// answer; progress is checkpointed on every change.
func (f *AttemptFlow) SaveAnswer(w http.ResponseWriter, r *http.Request) {
	rq := requesterFrom(r)
	id := chi.URLParam(r, "attemptID")
	var req struct {
		Index  int             `json:"index"`
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	a, err := f.Store.GetAttempt(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if a.UserID != rq.Sub {
		writeError(w, http.StatusForbidden, "not authorized to answer this attempt")
		return
	}
	a, err = f.Store.SaveAnswer(r.Context(), id, req.Index, req.Answer)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	p := f.progressFor(r, a)
	p.UpdatedAt = time.Now().Unix()
	_ = f.Checkpoints.Save(r.Context(), id, p)
	writeJSON(w, http.StatusOK, f.view(a, p, true))
}

// POST /api/tests/attempt/{attemptID}/advance {from}: move to the next
// question. The from index makes the call idempotent: when a timer expiry
// and a manual click both fire, the second call no-ops because the flow has
// already moved on.
func (f *AttemptFlow) Advance(w http.ResponseWriter, r *http.Request) {
	rq := requesterFrom(r)
	id := chi.URLParam(r, "attemptID")
	var req struct {
		From int `json:"from"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	a, err := f.Store.GetAttempt(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if a.UserID != rq.Sub {
		writeError(w, http.StatusForbidden, "not authorized")
		return
	}
	if a.Status == quiz.StatusSubmitted {
		writeError(w, http.StatusBadRequest, quiz.ErrAttemptSubmitted.Error())
		return
	}
	p := f.progressFor(r, a)
	if req.From == p.QuestionIndex && p.QuestionIndex < len(a.Questions)-1 {
		p = f.checkpointAt(r, a, p.QuestionIndex+1)
	}
	writeJSON(w, http.StatusOK, f.view(a, p, true))
}

// POST /api/tests/attempt/{attemptID}/submit: terminal. Grades through the
// engine, clears the checkpoint; repeated submits return the recorded
// attempt unchanged.
func (f *AttemptFlow) Submit(w http.ResponseWriter, r *http.Request) {
	rq := requesterFrom(r)
	id := chi.URLParam(r, "attemptID")
	a, err := f.Store.GetAttempt(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if a.UserID != rq.Sub {
		writeError(w, http.StatusForbidden, "not authorized to submit this attempt")
		return
	}
	a, err = f.Store.SubmitAttempt(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	_ = f.Checkpoints.Clear(r.Context(), id)
	writeJSON(w, http.StatusOK, f.view(a, checkpoint.Progress{QuestionIndex: len(a.Questions)}, false))
}

// GET /api/attempts?test_id=&user_id=&status=: teachers and admins list any
// filters; students are forced onto their own attempts.
func (f *AttemptFlow) List(w http.ResponseWriter, r *http.Request) {
	rq := requesterFrom(r)
	opts := quiz.AttemptListOpts{
		TestID: r.URL.Query().Get("test_id"),
		UserID: r.URL.Query().Get("user_id"),
		Status: r.URL.Query().Get("status"),
		Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
		Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
	}
	if !rq.isTeacher() && !rq.isAdmin() {
		opts.UserID = rq.Sub
	}
	list, err := f.Store.ListAttempts(r.Context(), opts)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
