package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/gss"
	"github.com/aretw0/gss/pkg/adapters/memory"
	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() (*Server, *session.Manager) {
	history := session.NewManager(memory.NewStore())
	return NewServer(gss.New(gss.WithHistory(history))), history
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = ToolName
	req.Params.Arguments = args
	return req
}

func TestHandleSolve(t *testing.T) {
	s, history := newTestServer()
	ctx := context.Background()

	payload, err := s.handleSolve(ctx, mcp.CallToolRequest{}, SolveArgs{
		FuncStr:   "x**2 + 3*x + 2",
		A:         -5,
		B:         5,
		SessionID: "agent",
	})
	require.NoError(t, err)
	assert.InDelta(t, -1.5, payload.XMin, 1e-4)
	assert.Equal(t, 24, payload.NumIterations)
	assert.Equal(t, domain.Minimize, payload.Mode)

	entries, err := history.List(ctx, "agent")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHandleSolve_Maximize(t *testing.T) {
	s, _ := newTestServer()
	tol := 1e-6
	payload, err := s.handleSolve(context.Background(), mcp.CallToolRequest{}, SolveArgs{
		FuncStr: "sin(t)", A: 0, B: 3, Tol: &tol, Mode: "maximize", Variable: "t",
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.5707963, payload.XMin, 1e-5)
	assert.InDelta(t, 1.0, payload.FMin, 1e-9)
}

func TestToolHandler(t *testing.T) {
	s, _ := newTestServer()
	handler := mcp.NewStructuredToolHandler(s.handleSolve)

	t.Run("Success", func(t *testing.T) {
		res, err := handler(context.Background(), callRequest(map[string]any{
			"func_str": "(x-1)**2", "a": 0.0, "b": 2.0,
		}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		require.NotNil(t, res.StructuredContent)
	})

	t.Run("Evaluation Error", func(t *testing.T) {
		res, err := handler(context.Background(), callRequest(map[string]any{
			"func_str": "1/x", "a": -1.0, "b": 1.0,
		}))
		require.NoError(t, err)
		require.True(t, res.IsError)
		require.NotEmpty(t, res.Content)
		text, ok := res.Content[0].(mcp.TextContent)
		require.True(t, ok)
		assert.Contains(t, text.Text, "EvaluationError")
		assert.Contains(t, text.Text, "partial:")
	})

	t.Run("Invalid Expression", func(t *testing.T) {
		res, err := handler(context.Background(), callRequest(map[string]any{
			"func_str": "os.system('ls')", "a": 0.0, "b": 1.0,
		}))
		require.NoError(t, err)
		require.True(t, res.IsError)
		text := res.Content[0].(mcp.TextContent)
		assert.Contains(t, text.Text, "InvalidExpressionError")
	})
}

func TestToolsList(t *testing.T) {
	s, _ := newTestServer()
	msg := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	resp := s.MCPServer().HandleMessage(context.Background(), msg)
	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(body), ToolName)
	assert.Contains(t, string(body), "func_str")
}

func TestSyntax(t *testing.T) {
	doc := syntax()
	assert.Contains(t, doc.Functions, "sqrt")
	assert.Contains(t, doc.Constants, "pi")
	assert.Contains(t, doc.Operators, "**")
}
