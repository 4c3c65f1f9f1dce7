// Package mcp exposes the evaluator to agent hosts over the Model Context
// Protocol: a generic eval_path tool, one tool per enabled unit, and a
// resource describing the unit catalog.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/sluice"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// unitsResourceURI names the unit catalog resource.
const unitsResourceURI = "sluice://units"

// EvalResult is the structured output of the eval_path tool.
type EvalResult struct {
	Output   string              `json:"output" jsonschema_description:"Final pipeline output"`
	Redirect *domain.Redirect    `json:"redirect,omitempty" jsonschema_description:"Early-exit signal, when a stage redirected"`
	Trace    []domain.StepResult `json:"trace,omitempty" jsonschema_description:"Per-stage records, present when debug was requested"`
}

// Engine is the evaluation surface the MCP server needs from the core.
type Engine interface {
	Evaluate(ctx context.Context, req domain.EvalRequest) (*domain.PipelineResult, error)
}

// Server wraps the evaluator and exposes it as an MCP server.
type Server struct {
	engine    Engine
	units     ports.UnitRegistry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates an MCP server over an engine and its unit registry. The
// per-unit tool catalog is a snapshot of the enabled units at construction;
// eval_path always sees the live registry.
func NewServer(ctx context.Context, engine Engine, units ports.UnitRegistry, opts ...Option) (*Server, error) {
	s := &Server{
		engine:    engine,
		units:     units,
		logger:    slog.Default(),
		mcpServer: server.NewMCPServer("sluice-mcp", strings.TrimSpace(sluice.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerEvalTool()
	if err := s.registerUnitTools(ctx); err != nil {
		return nil, fmt.Errorf("registering unit tools: %w", err)
	}
	s.registerResources()
	return s, nil
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
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

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerEvalTool() {
	evalTool := mcp.NewTool("eval_path",
		mcp.WithDescription("Evaluate a slash-delimited path as a data pipeline. Segments run right to left; each stage's output feeds the next."),
		mcp.WithString("path", mcp.Required(), mcp.Description("The pipeline path, e.g. /upcase/greeting.txt")),
		mcp.WithString("input", mcp.Description("Seed value for the rightmost stage (optional)")),
		mcp.WithBoolean("debug", mcp.Description("Include per-stage trace records in the result")),
		mcp.WithOutputSchema[EvalResult](),
	)
	s.mcpServer.AddTool(evalTool, mcp.NewStructuredToolHandler(s.handleEvalPath))
}

func (s *Server) handleEvalPath(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EvalResult, error) {
	path, _ := args["path"].(string)
	if path == "" {
		return EvalResult{}, fmt.Errorf("path is required")
	}
	input, _ := args["input"].(string)
	debug, _ := args["debug"].(bool)

	res, err := s.engine.Evaluate(ctx, domain.EvalRequest{Path: path, Input: input, Debug: debug})
	if err != nil {
		return EvalResult{}, fmt.Errorf("evaluation failed: %w", err)
	}

	return EvalResult{
		Output:   res.Output,
		Redirect: res.Redirect,
		Trace:    res.Trace,
	}, nil
}

// registerUnitTools publishes one tool per enabled unit so hosts can call
// units by name without knowing the path convention.
func (s *Server) registerUnitTools(ctx context.Context) error {
	names, err := s.units.Names(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		u, err := s.units.Lookup(ctx, name)
		if err != nil || !u.Enabled {
			continue
		}

		desc := fmt.Sprintf("Run the %q unit (%s).", u.Name, u.Runtime())
		if u.Description != "" {
			desc += " " + u.Description
		}

		unitName := u.Name
		tool := mcp.NewTool(toolName(unitName),
			mcp.WithDescription(desc),
			mcp.WithString("input", mcp.Description("Value the unit consumes (optional)")),
		)
		s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			input, _ := request.GetArguments()["input"].(string)
			out, err := s.evalUnit(ctx, unitName, input)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(out), nil
		})
		s.logger.Debug("unit tool registered", "tool", toolName(unitName), "unit", unitName)
	}
	return nil
}

// evalUnit invokes one unit directly. Unlike path classification, direct
// invocation of a disabled unit is an error rather than a fall-through.
func (s *Server) evalUnit(ctx context.Context, name, input string) (string, error) {
	u, err := s.units.Lookup(ctx, name)
	if err != nil {
		return "", err
	}
	if !u.Enabled {
		return "", fmt.Errorf("%s: %w", name, domain.ErrUnitDisabled)
	}

	res, err := s.engine.Evaluate(ctx, domain.EvalRequest{Path: "/" + name, Input: input})
	if err != nil {
		return "", err
	}
	if res.Redirect != nil {
		return res.Redirect.Error(), nil
	}
	return res.Output, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(unitsResourceURI, "Unit Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		catalog, err := s.unitCatalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing units: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      unitsResourceURI,
				MIMEType: "application/json",
				Text:     catalog,
			},
		}, nil
	})
}

// unitCatalog renders the registry, disabled units included, as JSON. The
// resource reads live, unlike the tool catalog snapshot.
func (s *Server) unitCatalog(ctx context.Context) (string, error) {
	names, err := s.units.Names(ctx)
	if err != nil {
		return "", err
	}

	units := make([]domain.Unit, 0, len(names))
	for _, name := range names {
		u, err := s.units.Lookup(ctx, name)
		if err != nil {
			continue
		}
		// Source stays private to the registry; the catalog describes, it
		// does not leak program text.
		u.Source = ""
		units = append(units, u)
	}

	data, err := json.Marshal(units)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// toolName derives a protocol-safe tool name from a unit name.
func toolName(unit string) string {
	var sb strings.Builder
	sb.WriteString("run_")
	for _, r := range unit {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
