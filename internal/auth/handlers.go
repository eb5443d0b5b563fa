package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userOut struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Token    string `json:"token,omitempty"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /api/auth/register {username,email,password,role}
func RegisterHandler(a *AuthService, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Username == "" || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "username, email and password are required")
			return
		}
		if !ValidRole(req.Role) {
			writeError(w, http.StatusBadRequest, "invalid role specified")
			return
		}

		var exists int
		err := db.QueryRowContext(r.Context(), `SELECT 1 FROM users WHERE email=$1`, req.Email).Scan(&exists)
		if err == nil {
			writeError(w, http.StatusBadRequest, "user already exists")
			return
		}
		if !errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		id := uuid.NewString()
		now := time.Now()
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO users (id, username, email, password_hash, role, created_at, last_login_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			id, req.Username, req.Email, string(hash), req.Role, now.Unix(), now.Unix())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		tok, err := a.IssueJWT(id, req.Username, req.Email, req.Role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "issue token")
			return
		}
		if err := recordToken(r.Context(), db, tok, id, now.Add(tokenTTL)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, userOut{ID: id, Username: req.Username, Email: req.Email, Role: req.Role, Token: tok})
	}
}

// POST /api/auth/login {email,password}
func LoginHandler(a *AuthService, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		var id, username, role, hash string
		err := db.QueryRowContext(r.Context(),
			`SELECT id, username, role, password_hash FROM users WHERE email=$1`, req.Email).
			Scan(&id, &username, &role, &hash)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		now := time.Now()
		tok, err := a.IssueJWT(id, username, req.Email, role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "issue token")
			return
		}
		if err := recordToken(r.Context(), db, tok, id, now.Add(tokenTTL)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_, _ = db.ExecContext(r.Context(), `UPDATE users SET last_login_at=$1 WHERE id=$2`, now.Unix(), id)
		writeJSON(w, http.StatusOK, userOut{ID: id, Username: username, Email: req.Email, Role: role, Token: tok})
	}
}

// POST /api/auth/logout (bearer): revokes the presented token.
func LogoutHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		tok := strings.TrimPrefix(h, "Bearer ")
		if tok == "" || tok == h {
			writeError(w, http.StatusUnauthorized, "not authorized, no token")
			return
		}
		if err := revokeToken(r.Context(), db, tok); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
	}
}

// GET /api/auth/me (bearer): current user, no password hash.
func MeHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := SubjectFromContext(r.Context())
		if sub == "" {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		var out userOut
		err := db.QueryRowContext(r.Context(),
			`SELECT id, username, email, role FROM users WHERE id=$1`, sub).
			Scan(&out.ID, &out.Username, &out.Email, &out.Role)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
