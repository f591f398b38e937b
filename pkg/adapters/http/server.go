package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/switchyard"
	"github.com/aretw0/switchyard/internal/logging"
	"github.com/aretw0/switchyard/pkg/adapters/memory"
	"github.com/aretw0/switchyard/pkg/observability"
	"github.com/aretw0/switchyard/pkg/ports"
	"github.com/aretw0/switchyard/pkg/registry"
	"github.com/aretw0/switchyard/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var openAPISpec []byte

// Spec returns the OpenAPI document served at /openapi.yaml.
func Spec() []byte { return openAPISpec }

// Server exposes a machine catalog and its running sessions.
type Server struct {
	Catalog  ports.Catalog
	Code     *registry.Registry
	Sessions *session.Manager

	logger   *slog.Logger
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger (default: discard).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry compiles catalog machines with the given Go code.
func WithRegistry(code *registry.Registry) Option {
	return func(s *Server) {
		s.Code = code
	}
}

// WithSessions replaces the in-memory session manager.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithMetrics records machine metrics and serves reg at /metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.gatherer = reg
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			s.logger.Warn("metrics disabled", "err", err)
			return
		}
		s.metrics = metrics
	}
}

// NewServer creates a server over catalog.
func NewServer(catalog ports.Catalog, opts ...Option) *Server {
	s := &Server{
		Catalog: catalog,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Code == nil {
		s.Code = registry.NewRegistry()
	}
	if s.Sessions == nil {
		s.Sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}
	return s
}

// NewHandler creates the HTTP handler for catalog.
func NewHandler(catalog ports.Catalog, opts ...Option) (http.Handler, error) {
	return NewServer(catalog, opts...).Handler()
}

// Handler builds the router. Every documented route is validated against the
// OpenAPI document before it reaches its handler.
func (s *Server) Handler() (http.Handler, error) {
	validate, err := newValidator(openAPISpec)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(openAPISpec)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(validate.middleware(s.logger))

		r.Get("/health", s.GetHealth)
		r.Get("/machines", s.ListMachines)
		r.Get("/machines/{name}/graph", s.GetGraph)
		r.Post("/machines/{name}/sessions", s.CreateSession)
		r.Get("/sessions", s.ListSessions)
		r.Get("/sessions/{id}", s.GetSession)
		r.Delete("/sessions/{id}", s.DeleteSession)
		r.Post("/sessions/{id}/advance", s.AdvanceSession)
		r.Post("/sessions/{id}/assign", s.AssignSession)
	})
	return r, nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// newMachine compiles name and wraps it in a Machine wired to the server metrics.
func (s *Server) newMachine(ctx context.Context, name string, opts ...switchyard.Option) (*switchyard.Machine, error) {
	def, _, err := s.Code.Definition(ctx, s.Catalog, name)
	if err != nil {
		return nil, err
	}
	opts = append([]switchyard.Option{switchyard.WithLogger(s.logger)}, opts...)
	if s.metrics != nil {
		opts = append(opts, switchyard.WithLifecycleHooks(s.metrics.Hooks(def.String())))
	}
	return switchyard.New(ctx, def, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

// decodeBody reads an optional JSON body. Numbers are decoded as json.Number.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
