package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/marcelocantos/tubes/internal/audit"
	"github.com/marcelocantos/tubes/internal/config"
)

func testServer(t *testing.T, tubesfile string) *Server {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Script.Path = filepath.Join(dir, "Tubesfile")
	cfg.Audit.Path = filepath.Join(dir, "audit.jsonl")
	if tubesfile != "" {
		if err := os.WriteFile(cfg.Script.Path, []byte(tubesfile), 0644); err != nil {
			t.Fatal(err)
		}
	}

	logger, err := audit.NewLogger(cfg.Audit.Path)
	if err != nil {
		t.Fatal(err)
	}
	return New(cfg, logger, "test")
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func decodeResult(t *testing.T, res *mcp.CallToolResult) toolResult {
	t.Helper()
	var tr toolResult
	if err := json.Unmarshal([]byte(textOf(t, res)), &tr); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	return tr
}

func TestRunTool(t *testing.T) {
	s := testServer(t, "")

	res, err := s.handleRun(context.Background(), callRequest(map[string]any{
		"argv": []any{"printf", "%s", "hello"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", textOf(t, res))
	}

	tr := decodeResult(t, res)
	if tr.Code != 0 {
		t.Errorf("expected exit code 0, got %d", tr.Code)
	}
	if tr.Stdout != "hello" {
		t.Errorf("expected stdout %q, got %q", "hello", tr.Stdout)
	}
}

func TestRunToolNonZeroExit(t *testing.T) {
	s := testServer(t, "")

	res, err := s.handleRun(context.Background(), callRequest(map[string]any{
		"argv": []any{"false"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("non-zero exit must not be a tool error: %s", textOf(t, res))
	}
	if tr := decodeResult(t, res); tr.Code != 1 {
		t.Errorf("expected exit code 1, got %d", tr.Code)
	}
}

func TestRunToolSpawnFailure(t *testing.T) {
	s := testServer(t, "")

	res, err := s.handleRun(context.Background(), callRequest(map[string]any{
		"argv": []any{"definitely-not-a-real-program-xyzzy"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected a tool error for an unspawnable program")
	}
}

func TestRunToolBadArguments(t *testing.T) {
	s := testServer(t, "")

	for name, args := range map[string]map[string]any{
		"missing argv": {},
		"empty argv":   {"argv": []any{}},
		"non-string":   {"argv": []any{"echo", 42}},
	} {
		res, err := s.handleRun(context.Background(), callRequest(args))
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsError {
			t.Errorf("%s: expected a tool error", name)
		}
	}
}

func TestRunPipelineTool(t *testing.T) {
	s := testServer(t, `greet = pipe(cmd("printf", "%s\n", "hi"), cmd("tr", "a-z", "A-Z"))`)

	res, err := s.handleRunPipeline(context.Background(), callRequest(map[string]any{
		"name": "greet",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", textOf(t, res))
	}

	tr := decodeResult(t, res)
	if tr.Code != 0 || tr.Stdout != "HI\n" {
		t.Errorf("unexpected result: code=%d stdout=%q", tr.Code, tr.Stdout)
	}
}

func TestRunPipelineToolUnknownName(t *testing.T) {
	s := testServer(t, `greet = cmd("true")`)

	res, err := s.handleRunPipeline(context.Background(), callRequest(map[string]any{
		"name": "nope",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected a tool error for an unknown pipeline")
	}
	if text := textOf(t, res); !strings.Contains(text, "nope") {
		t.Errorf("error %q does not name the missing pipeline", text)
	}
}

func TestListPipelinesTool(t *testing.T) {
	s := testServer(t, `
build = cmd("make")
ship = and_(cmd("make", "test"), cmd("make", "push"))
`)

	res, err := s.handleListPipelines(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", textOf(t, res))
	}

	var infos []struct {
		Name       string `json:"name"`
		Expression string `json:"expression"`
	}
	if err := json.Unmarshal([]byte(textOf(t, res)), &infos); err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 pipelines, got %d", len(infos))
	}
	// Sorted by name.
	if infos[0].Name != "build" || infos[1].Name != "ship" {
		t.Errorf("unexpected order: %q, %q", infos[0].Name, infos[1].Name)
	}
	if infos[1].Expression != "make test && make push" {
		t.Errorf("unexpected expression: %q", infos[1].Expression)
	}
}

func TestRunToolAudits(t *testing.T) {
	s := testServer(t, "")

	if _, err := s.handleRun(context.Background(), callRequest(map[string]any{
		"argv": []any{"true"},
	})); err != nil {
		t.Fatal(err)
	}

	entries, err := audit.Tail(s.cfg.Audit.Path, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Expression != "true" {
		t.Errorf("expected one audit entry for %q, got %v", "true", entries)
	}
}
