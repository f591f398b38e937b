package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/switchyard"
	"github.com/aretw0/switchyard/internal/logging"
	presentation "github.com/aretw0/switchyard/internal/presentation/graph"
	"github.com/aretw0/switchyard/pkg/graph"
	"github.com/aretw0/switchyard/pkg/observability"
	"github.com/aretw0/switchyard/pkg/ports"
	"github.com/aretw0/switchyard/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MachinesURI is the resource listing the catalog.
const MachinesURI = "switchyard://machines"

// MachineList is the result of list_machines.
type MachineList struct {
	Machines []string `json:"machines" jsonschema_description:"Names of the machines in the catalog"`
}

// GraphArgs are the arguments of get_graph.
type GraphArgs struct {
	Machine string `json:"machine"`
	Format  string `json:"format,omitempty"`
}

// SimulateArgs are the arguments of simulate.
type SimulateArgs struct {
	Machine string   `json:"machine"`
	Inputs  []string `json:"inputs,omitempty"`
}

// SimulateResult reports a dry run of a machine.
type SimulateResult struct {
	Machine  string               `json:"machine" jsonschema_description:"The simulated machine"`
	Steps    []observability.Step `json:"steps" jsonschema_description:"Every resolver call, transition and finish, in order"`
	State    string               `json:"state,omitempty" jsonschema_description:"The state the run stopped on"`
	Finished bool                 `json:"finished" jsonschema_description:"Whether the machine reached End"`
	Error    string               `json:"error,omitempty" jsonschema_description:"The error that stopped the run, if any"`
}

// Server exposes a machine catalog as an MCP server.
type Server struct {
	catalog   ports.Catalog
	code      *registry.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithRegistry compiles machines with the given Go code.
func WithRegistry(code *registry.Registry) Option {
	return func(s *Server) {
		s.code = code
	}
}

// WithLogger sets the logger (default: discard).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(catalog ports.Catalog, opts ...Option) *Server {
	s := &Server{
		catalog:   catalog,
		code:      registry.NewRegistry(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("switchyard-mcp", strings.TrimSpace(switchyard.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_machines
	s.mcpServer.AddTool(mcp.NewTool("list_machines",
		mcp.WithDescription("List the machines in the catalog."),
		mcp.WithOutputSchema[MachineList](),
	), mcp.NewStructuredToolHandler(s.handleListMachines))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Render the static transition graph of a machine without running it."),
		mcp.WithString("machine", mcp.Required(), mcp.Description("Machine name")),
		mcp.WithString("format", mcp.Description("mermaid (default), dot, json or yaml"),
			mcp.Enum(string(presentation.FormatMermaid), string(presentation.FormatDOT),
				string(presentation.FormatJSON), string(presentation.FormatYAML))),
	), mcp.NewTypedToolHandler(s.handleGetGraph))

	// TOOL: simulate
	s.mcpServer.AddTool(mcp.NewTool("simulate",
		mcp.WithDescription("Start a fresh instance of a machine and advance it once per input. "+
			"Inputs use the CLI syntax: positional values and key=value pairs separated by spaces."),
		mcp.WithString("machine", mcp.Required(), mcp.Description("Machine name")),
		mcp.WithArray("inputs", mcp.Description("One entry per Advance call"), mcp.WithStringItems()),
		mcp.WithOutputSchema[SimulateResult](),
	), mcp.NewStructuredToolHandler(s.handleSimulate))
}

func (s *Server) handleListMachines(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (MachineList, error) {
	names, err := s.catalog.List(ctx)
	if err != nil {
		return MachineList{}, fmt.Errorf("list failed: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return MachineList{Machines: names}, nil
}

func (s *Server) handleGetGraph(ctx context.Context, _ mcp.CallToolRequest, args GraphArgs) (*mcp.CallToolResult, error) {
	format, err := presentation.ParseFormat(args.Format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	def, _, err := s.code.Definition(ctx, s.catalog, args.Machine)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	g, err := graph.Extract(def.Table, def.Initial)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extract failed: %v", err)), nil
	}
	g.Name = def.Name
	out, err := presentation.Render(g, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

// handleSimulate runs the inputs against a throwaway machine. Machine errors
// are part of the result; only load failures fail the call.
func (s *Server) handleSimulate(ctx context.Context, _ mcp.CallToolRequest, args SimulateArgs) (SimulateResult, error) {
	def, _, err := s.code.Definition(ctx, s.catalog, args.Machine)
	if err != nil {
		return SimulateResult{}, fmt.Errorf("load failed: %w", err)
	}

	rec := observability.NewRecorder()
	m, err := switchyard.New(ctx, def,
		switchyard.WithLogger(s.logger),
		switchyard.WithLifecycleHooks(rec.Hooks()),
	)
	if err != nil {
		return SimulateResult{}, fmt.Errorf("start failed: %w", err)
	}

	res := SimulateResult{Machine: def.String()}
	for _, input := range args.Inputs {
		if m.Finished() {
			break
		}
		clean, err := switchyard.SanitizeInput(input)
		if err == nil {
			_, err = m.Advance(ctx, switchyard.ParseArgs(clean))
		}
		if err != nil {
			s.logger.Debug("simulation stopped", "machine", args.Machine, "input", input, "err", err)
			res.Error = err.Error()
			break
		}
	}

	res.Steps = rec.Steps()
	if res.Steps == nil {
		res.Steps = []observability.Step{}
	}
	res.Finished = m.Finished()
	if cur := m.Current(); !cur.IsZero() {
		res.State = cur.Name()
	}
	return res, nil
}

func (s *Server) registerResources() {
	// EXPOSE: switchyard://machines
	s.mcpServer.AddResource(mcp.NewResource(MachinesURI, "Machine Catalog",
		mcp.WithResourceDescription("Names of the machines in the catalog"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.catalog.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list machines: %w", err)
		}
		if names == nil {
			names = []string{}
		}
		jsonBytes, err := json.Marshal(MachineList{Machines: names})
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      MachinesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
