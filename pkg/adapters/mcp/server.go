package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/gss"
	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/expr"
	"github.com/aretw0/gss/pkg/report"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolName is the name under which the solver is exposed.
const ToolName = "golden_section_search"

// FunctionsURI lists the operators, functions and constants accepted by the tool.
const FunctionsURI = "gss://functions"

// SolveArgs are the tool arguments. They mirror the HTTP request body plus session_id.
type SolveArgs struct {
	FuncStr   string   `json:"func_str"`
	A         float64  `json:"a"`
	B         float64  `json:"b"`
	Tol       *float64 `json:"tol,omitempty"`
	Mode      string   `json:"mode,omitempty"`
	Variable  string   `json:"variable,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
}

// Server wraps the solver and exposes it as an MCP Server.
type Server struct {
	solver    *gss.Solver
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for tool calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(solver *gss.Solver, opts ...Option) *Server {
	s := &Server{
		solver:    solver,
		mcpServer: server.NewMCPServer("gss-mcp", strings.TrimSpace(gss.Version)),
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, mostly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx is done.
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	tool := mcp.NewTool(ToolName,
		mcp.WithDescription("Find the minimum or maximum of a one-variable function inside [a, b] "+
			"using Golden Section Search. Returns the extremum, the iteration trace and plot samples."),
		mcp.WithString("func_str", mcp.Required(),
			mcp.Description("Expression in the variable, e.g. x**2 + 3*x + 2. See "+FunctionsURI+".")),
		mcp.WithNumber("a", mcp.Required(), mcp.Description("Left bound of the search interval")),
		mcp.WithNumber("b", mcp.Required(), mcp.Description("Right bound of the search interval, greater than a")),
		mcp.WithNumber("tol", mcp.Description("Stop once the bracket is narrower than this (default 1e-4)")),
		mcp.WithString("mode", mcp.Enum(string(domain.Minimize), string(domain.Maximize)),
			mcp.Description("Extremum to look for (default minimize)")),
		mcp.WithString("variable", mcp.Description("Name of the variable (default x)")),
		mcp.WithString("session_id", mcp.Description("Record the result in this session's history (optional)")),
		mcp.WithOutputSchema[report.Payload](),
	)
	s.mcpServer.AddTool(tool, mcp.NewStructuredToolHandler(s.handleSolve))
}

// handleSolve errors carry the kind tag first so that callers can branch on it.
func (s *Server) handleSolve(ctx context.Context, request mcp.CallToolRequest, args SolveArgs) (*report.Payload, error) {
	payload, err := s.solver.Solve(ctx, args.SessionID, gss.Input{
		FuncStr:   args.FuncStr,
		A:         args.A,
		B:         args.B,
		Tolerance: args.Tol,
		Mode:      args.Mode,
		Variable:  args.Variable,
	})
	if err != nil {
		ep := gss.NewErrorPayload(err)
		s.logger.Warn("MCP solve rejected", "kind", ep.Kind, "err", err)
		return nil, toolError(ep)
	}
	return payload, nil
}

func toolError(ep *report.ErrorPayload) error {
	msg := fmt.Sprintf("%s: %s", ep.Kind, ep.Message)
	if ep.Partial != nil {
		if trace, err := json.Marshal(ep.Partial); err == nil {
			msg += "\npartial: " + string(trace)
		}
	}
	return errors.New(msg)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(FunctionsURI, "Supported expression syntax",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		body, err := json.Marshal(syntax())
		if err != nil {
			return nil, fmt.Errorf("failed to encode syntax: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      FunctionsURI,
				MIMEType: "application/json",
				Text:     string(body),
			},
		}, nil
	})
}

type syntaxDoc struct {
	Operators []string `json:"operators"`
	Functions []string `json:"functions"`
	Constants []string `json:"constants"`
}

func syntax() syntaxDoc {
	return syntaxDoc{
		Operators: []string{"+", "-", "*", "/", "**", "^", "(", ")"},
		Functions: expr.Functions(),
		Constants: expr.Constants(),
	}
}
