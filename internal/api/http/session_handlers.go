package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/test-pad/testpad/internal/quiz"
)

// SessionHandlers covers the single-shot result flow: a client sends every
// answer at once and gets back a graded record.
type SessionHandlers struct {
	Store quiz.Store
}

// POST /api/sessions {test_id, answers}: grade the answers against the test
// and persist. Answers are always graded server-side; any score a client
// sends is ignored.
func (h *SessionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	rq := requesterFrom(r)
	var req struct {
		TestID  string            `json:"test_id"`
		Answers []json.RawMessage `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.TestID == "" {
		writeError(w, http.StatusBadRequest, "test_id is required")
		return
	}
	t, err := h.Store.GetTest(r.Context(), req.TestID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !t.Published && !rq.ownsTest(t) && !rq.isAdmin() {
		writeError(w, http.StatusForbidden, "test is not published")
		return
	}
	s, err := h.Store.CreateSession(r.Context(), req.TestID, rq.studentID(), req.Answers)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// GET /api/sessions/{sessionID}: the student who took it, or staff.
func (h *SessionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	rq := requesterFrom(r)
	s, err := h.Store.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if s.Student != rq.studentID() && !rq.isTeacher() && !rq.isAdmin() {
		writeError(w, http.StatusForbidden, "not authorized")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GET /api/sessions/student: the caller's own results.
func (h *SessionHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	rq := requesterFrom(r)
	list, err := h.Store.ListSessions(r.Context(), quiz.SessionListOpts{
		Student: rq.studentID(),
		Limit:   parseIntDefault(r.URL.Query().Get("limit"), 50),
		Offset:  parseIntDefault(r.URL.Query().Get("offset"), 0),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/sessions/teacher/test/{testID}: every result for one test,
// restricted to the test's creator and admins.
func (h *SessionHandlers) ListForTest(w http.ResponseWriter, r *http.Request) {
	rq := requesterFrom(r)
	testID := chi.URLParam(r, "testID")
	t, err := h.Store.GetTest(r.Context(), testID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !rq.ownsTest(t) && !rq.isAdmin() {
		writeError(w, http.StatusForbidden, "not the test owner")
		return
	}
	list, err := h.Store.ListSessions(r.Context(), quiz.SessionListOpts{
		TestID: testID,
		Limit:  parseIntDefault(r.URL.Query().Get("limit"), 100),
		Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
