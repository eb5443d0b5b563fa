package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/test-pad/testpad/internal/quiz"
	"github.com/test-pad/testpad/internal/storage"
)

// POST /api/tests: create a test with nested questions in one save.
func CreateTestHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rq := requesterFrom(r)
		var t quiz.Test
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t.CreatorID = rq.Sub
		if err := quiz.Validate(&t); err != nil {
			writeStoreError(w, err)
			return
		}
		if err := store.PutTest(r.Context(), t); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"id":         t.ID,
			"title":      t.Title,
			"creator_id": t.CreatorID,
			"message":    "test created successfully",
		})
	}
}

// GET /api/tests/{testID}: 403 when unpublished unless creator or admin;
// answer keys stripped unless creator or admin.
func GetTestHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rq := requesterFrom(r)
		t, err := store.GetTest(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if !t.Published && !rq.ownsTest(t) && !rq.isAdmin() {
			writeError(w, http.StatusForbidden, "not authorized to access this test")
			return
		}
		if !rq.ownsTest(t) && !rq.isAdmin() {
			t.Questions = quiz.SanitizeQuestions(t.Questions)
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// PUT /api/tests/{testID}: creator or admin; full replace, re-validated.
func UpdateTestHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rq := requesterFrom(r)
		id := chi.URLParam(r, "testID")
		existing, err := store.GetTest(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if !rq.ownsTest(existing) && !rq.isAdmin() {
			writeError(w, http.StatusForbidden, "not authorized")
			return
		}
		var t quiz.Test
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		t.ID = id
		t.CreatorID = existing.CreatorID
		t.CreatedAt = existing.CreatedAt
		if err := quiz.Validate(&t); err != nil {
			writeStoreError(w, err)
			return
		}
		if err := store.PutTest(r.Context(), t); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "message": "test updated"})
	}
}

// DELETE /api/tests/{testID}: creator or admin.
func DeleteTestHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rq := requesterFrom(r)
		id := chi.URLParam(r, "testID")
		t, err := store.GetTest(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if !rq.ownsTest(t) && !rq.isAdmin() {
			writeError(w, http.StatusForbidden, "not authorized")
			return
		}
		if err := store.DeleteTest(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "test deleted"})
	}
}

// GET /api/tests/my-tests: the requester's own tests.
func ListMyTestsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rq := requesterFrom(r)
		list, err := store.ListTests(r.Context(), quiz.ListOpts{
			CreatorID: rq.Sub,
			Q:         r.URL.Query().Get("q"),
			Limit:     parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:    parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /api/tests/available: published tests, the student view.
func ListAvailableTestsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListTests(r.Context(), quiz.ListOpts{
			Published: true,
			Q:         r.URL.Query().Get("q"),
			Limit:     parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:    parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /api/tests/{testID}/export: full test JSON, keys included; a copy is
// archived through the blob store.
func ExportTestHandler(store quiz.Store, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rq := requesterFrom(r)
		t, err := store.GetTest(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if !rq.ownsTest(t) && !rq.isAdmin() {
			writeError(w, http.StatusForbidden, "not authorized")
			return
		}
		buf, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if bs != nil {
			_, _ = bs.Put("exports/"+t.ID+".json", bytes.NewReader(buf))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+t.ID+`.json"`)
		_, _ = w.Write(buf)
	}
}

// POST /api/tests/import: accepts an exported test document and runs it
// through the same validation as authoring.
func ImportTestHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rq := requesterFrom(r)
		var t quiz.Test
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		// Imports always become a fresh test owned by the importer.
		t.ID = uuid.NewString()
		t.CreatorID = rq.Sub
		t.CreatedAt = 0
		if err := quiz.Validate(&t); err != nil {
			writeStoreError(w, err)
			return
		}
		if err := store.PutTest(r.Context(), t); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": t.ID, "message": "test imported"})
	}
}
