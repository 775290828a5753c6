// Package httpapi wires the plain HTTP surface: the free-text command
// endpoint, health probes, metrics and the mounted Connect services.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/splitr/internal/auth"
	"github.com/mmynk/splitr/internal/interpreter"
	"github.com/mmynk/splitr/internal/metrics"
	"github.com/mmynk/splitr/internal/middleware"
	"github.com/mmynk/splitr/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CommandService records expenses from interpreted commands.
type CommandService interface {
	CreateFromCommand(ctx context.Context, actorID string, cmd *interpreter.Command) (*service.CommandResult, error)
}

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Logger      *slog.Logger
	Store       Pinger
	Interpreter interpreter.Interpreter
	Commands    CommandService
	JWT         *auth.JWTManager
	// Currency prefixes amounts in command responses.
	Currency string
	// CORSOrigins lists allowed browser origins; empty allows any.
	CORSOrigins []string
}

// Server wires handlers and middleware using Chi.
type Server struct {
	deps Deps
	log  *slog.Logger
	rt   *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Currency == "" {
		deps.Currency = "₹"
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(deps.Logger))
	r.Use(recoverer(deps.Logger))
	r.Use(metricsMiddleware)
	r.Use(corsHandler(deps.CORSOrigins))

	s := &Server{deps: deps, log: deps.Logger, rt: r}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// Mount attaches a Connect service handler under its path prefix. It takes
// the pair returned by the apiconnect constructors.
func (s *Server) Mount(path string, h http.Handler) {
	s.rt.Mount(path, h)
}

func (s *Server) routes() {
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.rt.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(s.deps.JWT))
		r.Post("/api/process-command", s.processCommand)
	})
	s.rt.Get("/api/process-command", s.commandInfo)

	s.rt.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()
	if s.deps.Store != nil {
		if err := s.deps.Store.Ping(ctx); err != nil {
			s.log.Warn("readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}
