package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/test-pad/testpad/internal/auth"
	"github.com/test-pad/testpad/internal/quiz"
	"github.com/test-pad/testpad/internal/rbac"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

// writeStoreError maps store errors onto the API's status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	var verr *quiz.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, quiz.ErrTestNotFound),
		errors.Is(err, quiz.ErrAttemptNotFound),
		errors.Is(err, quiz.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, quiz.ErrAttemptSubmitted):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

// requester bundles the identity the middlewares put on the context.
type requester struct {
	Sub   string
	Email string
	Role  string
}

func requesterFrom(r *http.Request) requester {
	return requester{
		Sub:   auth.SubjectFromContext(r.Context()),
		Email: auth.EmailFromContext(r.Context()),
		Role:  rbac.RoleFromContext(r.Context()),
	}
}

// student identity recorded on sessions: the email when the token carries
// one, otherwise the subject.
func (rq requester) studentID() string {
	if rq.Email != "" {
		return rq.Email
	}
	return rq.Sub
}

func (rq requester) isAdmin() bool   { return rq.Role == auth.RoleAdmin }
func (rq requester) isTeacher() bool { return rq.Role == auth.RoleTeacher }

func (rq requester) ownsTest(t quiz.Test) bool {
	return t.CreatorID != "" && t.CreatorID == rq.Sub
}
