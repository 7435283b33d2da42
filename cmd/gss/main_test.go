package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig points history at a file backend inside a temp dir.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gss.yaml")
	content := "history:\n  backend: file\n  dir: " + filepath.Join(dir, "history") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gss version dev\n", out)
}

func TestSolve_JSON(t *testing.T) {
	cfg := testConfig(t)
	out, err := run(t, "--config", cfg, "solve", "x**2 + 3*x + 2", "-a=-5", "-b=5", "--json")
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.InDelta(t, -1.5, payload["x_min"], 1e-4)
	assert.EqualValues(t, 24, payload["num_iterations"])
}

func TestSolve_Markdown(t *testing.T) {
	cfg := testConfig(t)
	out, err := run(t, "--config", cfg, "solve", "sin(x)", "-a=0", "-b=3.2", "--mode", "maximize", "--tol", "1e-6")
	require.NoError(t, err)
	assert.Contains(t, out, "# Maximum of `sin(x)`")
	assert.Contains(t, out, "| k | a | b |")
}

func TestSolve_Mermaid(t *testing.T) {
	cfg := testConfig(t)
	out, err := run(t, "--config", cfg, "solve", "x**2", "-a=-1", "-b=1", "--mermaid")
	require.NoError(t, err)
	assert.Contains(t, out, "xychart-beta")
	assert.Contains(t, out, "graph LR")
	assert.Contains(t, out, "class final current;")
}

func TestSolve_MaxIterationsFlag(t *testing.T) {
	cfg := testConfig(t)
	out, err := run(t, "--config", cfg, "solve", "x**2", "-a=-5", "-b=5", "--tol", "1e-9", "--max-iterations", "5", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "not_converged"`)
	assert.Contains(t, out, `"num_iterations": 5`)
}

func TestSolve_Errors(t *testing.T) {
	cfg := testConfig(t)

	out, err := run(t, "--config", cfg, "solve", "1/x", "-a=-1", "-b=1")
	require.Error(t, err)
	assert.Equal(t, "solve failed: EvaluationError", err.Error())
	assert.Contains(t, out, "# EvaluationError")
	assert.Contains(t, out, "Iterations before the failure")

	out, err = run(t, "--config", cfg, "solve", "2x", "--json")
	require.Error(t, err)
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "InvalidExpressionError", body["error"]["kind"])
	assert.EqualValues(t, 1, body["error"]["position"])

	_, err = run(t, "--config", cfg, "solve")
	require.Error(t, err)
}

func TestHistory_Roundtrip(t *testing.T) {
	cfg := testConfig(t)

	for _, f := range []string{"x**2", "(x-0.5)**2"} {
		_, err := run(t, "--config", cfg, "solve", f, "-a=-1", "-b=1", "--session", "s1", "--json")
		require.NoError(t, err)
	}

	out, err := run(t, "--config", cfg, "history", "ls")
	require.NoError(t, err)
	assert.Equal(t, "s1\n", out)

	out, err = run(t, "--config", cfg, "history", "ls", "s1", "--json")
	require.NoError(t, err)
	var entries []struct {
		ID       string `json:"id"`
		Function string `json:"function"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "(x-0.5)**2", entries[0].Function)

	out, err = run(t, "--config", cfg, "history", "show", "s1", entries[1].ID)
	require.NoError(t, err)
	assert.Contains(t, out, `"function": "x**2"`)

	_, err = run(t, "--config", cfg, "history", "show", "s1", "missing")
	require.Error(t, err)

	out, err = run(t, "--config", cfg, "history", "ls", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "# History of `s1`")

	out, err = run(t, "--config", cfg, "history", "clear", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")

	out, err = run(t, "--config", cfg, "history", "ls", "s1", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  backend: tape\n"), 0644))

	_, err := run(t, "--config", path, "solve", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestMCP_UnknownTransport(t *testing.T) {
	_, err := run(t, "--config", testConfig(t), "mcp", "--transport", "carrier-pigeon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transport")
}
