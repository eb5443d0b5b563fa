package http

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/test-pad/testpad/internal/auth"
	"github.com/test-pad/testpad/internal/checkpoint"
	"github.com/test-pad/testpad/internal/quiz"
	"github.com/test-pad/testpad/internal/rbac"
	"github.com/test-pad/testpad/internal/storage"
)

// RouterDeps carries everything the API surface needs.
type RouterDeps struct {
	Store       quiz.Store
	Auth        *auth.AuthService
	DB          *sql.DB
	Checkpoints checkpoint.Store
	Blobs       storage.BlobStore
	CORSOrigins []string
}

// NewRouter assembles the full HTTP surface: public auth endpoints, then the
// JWT-protected API with per-route RBAC.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	flow := &AttemptFlow{Store: deps.Store, Checkpoints: deps.Checkpoints}
	sessions := &SessionHandlers{Store: deps.Store}

	r.Route("/api/auth", func(ar chi.Router) {
		ar.Post("/register", auth.RegisterHandler(deps.Auth, deps.DB))
		ar.Post("/login", auth.LoginHandler(deps.Auth, deps.DB))

		ar.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(deps.Auth, deps.DB))
			pr.Post("/logout", auth.LogoutHandler(deps.DB))
			pr.Get("/me", auth.MeHandler(deps.DB))
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(deps.Auth, deps.DB))

		pr.Route("/api/tests", func(tr chi.Router) {
			tr.With(rbac.Require("test:create")).
				Post("/", CreateTestHandler(deps.Store))
			tr.With(rbac.Require("test:create")).
				Post("/import", ImportTestHandler(deps.Store))
			tr.With(rbac.Require("test:list-own")).
				Get("/my-tests", ListMyTestsHandler(deps.Store))
			tr.With(rbac.Require("test:list-available")).
				Get("/available", ListAvailableTestsHandler(deps.Store))

			tr.With(rbac.Require("test:view")).
				Get("/{testID}", GetTestHandler(deps.Store))
			tr.With(rbac.Require("test:edit-own")).
				Put("/{testID}", UpdateTestHandler(deps.Store))
			tr.With(rbac.Require("test:delete-own")).
				Delete("/{testID}", DeleteTestHandler(deps.Store))
			tr.With(rbac.Require("test:export")).
				Get("/{testID}/export", ExportTestHandler(deps.Store, deps.Blobs))

			tr.With(rbac.Require("attempt:create")).
				Post("/{testID}/attempt", flow.Start)
			tr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
				Get("/attempt/{attemptID}", flow.Get)
			tr.With(rbac.Require("attempt:save")).
				Put("/attempt/{attemptID}/answer", flow.SaveAnswer)
			tr.With(rbac.Require("attempt:save")).
				Post("/attempt/{attemptID}/advance", flow.Advance)
			tr.With(rbac.Require("attempt:submit")).
				Post("/attempt/{attemptID}/submit", flow.Submit)
		})

		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/api/attempts", flow.List)

		pr.Route("/api/sessions", func(sr chi.Router) {
			sr.With(rbac.Require("session:create")).
				Post("/", sessions.Create)
			sr.With(rbac.Require("session:view-own")).
				Get("/student", sessions.ListMine)
			sr.With(rbac.Require("session:view-all")).
				Get("/teacher/test/{testID}", sessions.ListForTest)
			sr.With(rbac.RequireAny("session:view-own", "session:view-all")).
				Get("/{sessionID}", sessions.Get)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	return r
}
