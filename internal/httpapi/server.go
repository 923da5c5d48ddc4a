// Package httpapi exposes the coordination facade over the §6 HTTP API: a
// go-chi/chi/v5 router with bearer-token auth in front of every route.
// CORS and rate-limit middleware are deliberately not wired — both are out
// of scope for this service (see DESIGN.md).
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nervecenter/nerve-center/internal/coordination"
)

// Server is the HTTP API surface over a coordination.Facade.
type Server struct {
	facade *coordination.Facade
	auth   *Authenticator
	logger *slog.Logger

	router  *chi.Mux
	httpSrv *http.Server
}

// Config configures the HTTP server.
type Config struct {
	Addr            string
	AppSessionSecret string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

// DefaultConfig returns sane defaults; WriteTimeout is 0 since the notepad
// stream endpoint is long-lived.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8085",
		ReadTimeout: 30 * time.Second,
	}
}

// New builds a Server wired to facade.
func New(cfg Config, facade *coordination.Facade, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		facade: facade,
		auth:   NewAuthenticator(cfg.AppSessionSecret),
		logger: logger,
		router: chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(slogRequestLogger(logger))
	s.router.Use(s.auth.Middleware)

	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Route("/v1/jobs", func(r chi.Router) {
		r.Get("/", s.listJobs)
		r.Post("/", s.postJobsAction)
	})
	s.router.Route("/v1/locks", func(r chi.Router) {
		r.Get("/", s.listLocks)
		r.Post("/", s.postLocksAction)
	})
	s.router.Post("/v1/sessions/sync", s.syncSession)
	s.router.Post("/v1/sessions/finalize", s.finalizeSession)
	s.router.Post("/v1/embed", s.embed)
	s.router.Post("/v1/search", s.search)
	s.router.Get("/v1/verify", s.verify)
	s.router.Get("/v1/notepad/stream", s.streamNotepad)
}

// Router exposes the chi router, chiefly for tests.
func (s *Server) Router() *chi.Mux { return s.router }

// Start runs the HTTP server until it errors or is shut down.
func (s *Server) Start() error {
	s.logger.Info("httpapi listening", "addr", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// slogRequestLogger logs each request at Info, filling go-chi's
// middleware.Logger slot with structured logging instead of its default
// stdlib-log writer.
func slogRequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

// resolveProjectID resolves a projectName query/body parameter (falling
// back to the caller's identity as owner) to a stable project id.
func (s *Server) resolveProjectID(ctx context.Context, projectName string, identity Identity) (string, *coordination.CoordError) {
	if projectName == "" {
		return "", badRequestErr("projectName is required")
	}
	owner := identity.OwnerID
	if owner == "" {
		owner = identity.AgentID
	}
	result := s.facade.ResolveProject(ctx, projectName, owner)
	if !result.IsOk() {
		return "", result.Err
	}
	return result.Value.ID, nil
}
