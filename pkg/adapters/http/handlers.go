package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/switchyard"
	presentation "github.com/aretw0/switchyard/internal/presentation/graph"
	"github.com/aretw0/switchyard/pkg/definition"
	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/aretw0/switchyard/pkg/graph"
	"github.com/aretw0/switchyard/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

// Session is the wire view of a running machine.
type Session struct {
	ID       string `json:"id"`
	Machine  string `json:"machine"`
	State    string `json:"state,omitempty"`
	Value    any    `json:"value,omitempty"`
	Virtual  bool   `json:"virtual,omitempty"`
	Started  bool   `json:"started"`
	Finished bool   `json:"finished"`
}

// CreateSessionRequest configures a new session. Both flags default to true.
type CreateSessionRequest struct {
	Start              *bool `json:"start,omitempty"`
	InitialSideEffects *bool `json:"initial_side_effects,omitempty"`
}

// AdvanceRequest carries the arguments of one Advance call.
type AdvanceRequest struct {
	Args  []any          `json:"args,omitempty"`
	Named map[string]any `json:"named,omitempty"`
}

// AssignRequest names the assignment target: a state name, a declared value or End.
type AssignRequest struct {
	State  string `json:"state,omitempty"`
	Value  any    `json:"value,omitempty"`
	End    bool   `json:"end,omitempty"`
	Silent bool   `json:"silent,omitempty"`
}

// Error is the body of every failed response.
type Error struct {
	Error string `json:"error"`
}

func newSession(id string, m *switchyard.Machine) Session {
	s := Session{
		ID:       id,
		Machine:  m.Name(),
		Started:  m.Started(),
		Finished: m.Finished(),
	}
	if cur := m.Current(); !cur.IsZero() {
		s.State = cur.Name()
		s.Virtual = cur.Virtual()
		if !cur.Virtual() {
			s.Value = cur.Value()
		}
	}
	return s
}

// GetHealth reports liveness.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListMachines returns the catalog names.
func (s *Server) ListMachines(w http.ResponseWriter, r *http.Request) {
	names, err := s.Catalog.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"machines": names})
}

// GetGraph renders the static graph of a machine.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	name, ok := s.machineName(w, r)
	if !ok {
		return
	}
	var raw string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &raw); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	format, err := presentation.ParseFormat(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	def, _, err := s.Code.Definition(r.Context(), s.Catalog, name)
	if err != nil {
		s.fail(w, err)
		return
	}
	g, err := graph.Extract(def.Table, def.Initial)
	if err != nil {
		s.fail(w, err)
		return
	}
	g.Name = def.Name
	out, err := presentation.Render(g, format)
	if err != nil {
		s.fail(w, err)
		return
	}

	contentType := "text/plain; charset=utf-8"
	if format == presentation.FormatJSON {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write([]byte(out))
}

// CreateSession compiles a machine and stores it under a new session ID.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	name, ok := s.machineName(w, r)
	if !ok {
		return
	}
	var req CreateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts := []switchyard.Option{}
	if req.Start != nil {
		opts = append(opts, switchyard.WithStartImmediately(*req.Start))
	}
	if req.InitialSideEffects != nil {
		opts = append(opts, switchyard.WithInitialSideEffects(*req.InitialSideEffects))
	}

	m, err := s.newMachine(r.Context(), name, opts...)
	if err != nil {
		s.fail(w, err)
		return
	}
	id, err := s.Sessions.Create(r.Context(), m)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSession(id, m))
}

// ListSessions returns the active session IDs.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession returns the state of a session.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(context.Context, *switchyard.Machine) error { return nil })
}

// DeleteSession removes a session.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdvanceSession advances a session once.
func (s *Server) AdvanceSession(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	args := req.args()
	s.withSession(w, r, func(ctx context.Context, m *switchyard.Machine) error {
		_, err := m.Advance(ctx, args)
		return err
	})
}

// AssignSession moves a session directly to a state or to End.
func (s *Server) AssignSession(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	set := 0
	for _, given := range []bool{req.State != "", req.Value != nil, req.End} {
		if given {
			set++
		}
	}
	if set != 1 {
		writeError(w, http.StatusBadRequest, errors.New("exactly one of state, value or end is required"))
		return
	}

	var opts []switchyard.AssignOption
	if req.Silent {
		opts = append(opts, switchyard.WithoutSideEffects())
	}
	s.withSession(w, r, func(ctx context.Context, m *switchyard.Machine) error {
		var target any
		switch {
		case req.End:
			target = nil
		case req.State != "":
			st, ok := m.Definition().Registry().ByName(req.State)
			if !ok {
				return fmt.Errorf("%w: unknown state %q", domain.ErrInvalidState, req.State)
			}
			target = st
		default:
			target = definition.Normalize(req.Value)
		}
		_, err := m.Assign(ctx, target, opts...)
		return err
	})
}

func (req AdvanceRequest) args() domain.Args {
	return switchyard.Input{Args: req.Args, Named: req.Named}.ToArgs()
}

// withSession runs fn under the session lock and responds with the resulting session.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(context.Context, *switchyard.Machine) error) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var view Session
	err := s.Sessions.Use(r.Context(), id, func(ctx context.Context, m *switchyard.Machine) error {
		err := fn(ctx, m)
		view = newSession(id, m)
		return err
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) machineName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var name string
	err := runtime.BindStyledParameterWithOptions("simple", "name", chi.URLParam(r, "name"), &name,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return "", false
	}
	return name, true
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid session id %q: %w", raw, err))
		return "", false
	}
	return id.String(), true
}

// fail maps domain errors onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeError(w, status, err)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ports.ErrMachineNotFound), errors.Is(err, ports.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrFinished), errors.Is(err, domain.ErrNotStarted), errors.Is(err, domain.ErrAlreadyStarted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrContractViolation),
		errors.Is(err, domain.ErrArgumentConflict),
		errors.Is(err, domain.ErrRecursionExhausted),
		errors.Is(err, domain.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, Error{Error: err.Error()})
}
