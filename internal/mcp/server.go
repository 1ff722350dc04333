// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package mcp exposes the expression engine to MCP clients over stdio.
// Agents get three tools: run a raw argv, run a named Tubesfile
// pipeline, and list the pipelines available.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/marcelocantos/tubes/internal/audit"
	"github.com/marcelocantos/tubes/internal/config"
	"github.com/marcelocantos/tubes/internal/expr"
	"github.com/marcelocantos/tubes/internal/script"
)

// Server wraps an MCP stdio server around the expression engine.
type Server struct {
	cfg    *config.Config
	logger *audit.Logger
	mcp    *server.MCPServer
}

// toolResult is the JSON payload returned by the run tools.
type toolResult struct {
	Code   int    `json:"code"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// New builds the server and registers its tools. logger may be nil, in
// which case executions are not audited.
func New(cfg *config.Config, logger *audit.Logger, version string) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		mcp: server.NewMCPServer("tubes", version,
			server.WithToolCapabilities(false),
		),
	}

	s.mcp.AddTool(mcp.NewTool("run",
		mcp.WithDescription("Run a single command and return its exit code and captured output."),
		mcp.WithArray("argv",
			mcp.Required(),
			mcp.Description("Command argument vector, program name first."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	), s.handleRun)

	s.mcp.AddTool(mcp.NewTool("run_pipeline",
		mcp.WithDescription("Run a named pipeline from the Tubesfile and return its exit code and captured output."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Pipeline name as bound in the Tubesfile."),
		),
	), s.handleRunPipeline)

	s.mcp.AddTool(mcp.NewTool("list_pipelines",
		mcp.WithDescription("List the pipelines defined in the Tubesfile."),
	), s.handleListPipelines)

	return s
}

// ServeStdio blocks serving MCP requests on stdin/stdout until the
// client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := req.GetArguments()["argv"].([]any)
	if !ok || len(raw) == 0 {
		return mcp.NewToolResultError("argv must be a non-empty array of strings"), nil
	}
	argv := make([]string, len(raw))
	for i, v := range raw {
		str, ok := v.(string)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("argv[%d] is not a string", i)), nil
		}
		argv[i] = str
	}
	return s.execute(ctx, expr.NewCommand(argv[0], argv[1:]...))
}

func (s *Server) handleRunPipeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pipelines, err := script.Load(s.cfg.Script.Path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, ok := pipelines[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("pipeline %q not defined in %s", name, s.cfg.Script.Path)), nil
	}
	return s.execute(ctx, root)
}

func (s *Server) handleListPipelines(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pipelines, err := script.Load(s.cfg.Script.Path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type pipelineInfo struct {
		Name       string `json:"name"`
		Expression string `json:"expression"`
	}
	infos := make([]pipelineInfo, 0, len(pipelines))
	for name, e := range pipelines {
		infos = append(infos, pipelineInfo{Name: name, Expression: e.String()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	data, err := json.Marshal(infos)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// execute runs root with both output streams captured. There is no
// terminal on the other side of an MCP session, so nothing is inherited
// and stdin reads see immediate EOF.
func (s *Server) execute(ctx context.Context, root expr.Expression) (*mcp.CallToolResult, error) {
	start := time.Now()
	res, err := expr.NewDriver().RunWith(ctx, root, expr.Discard(), expr.Capture(), expr.Capture())
	s.logAudit(root.String(), res.Code, err, time.Since(start))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.Marshal(toolResult{
		Code:   res.Code,
		Stdout: string(res.Stdout),
		Stderr: string(res.Stderr),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) logAudit(expression string, code int, execErr error, duration time.Duration) {
	if s.logger == nil {
		return
	}
	errMsg := ""
	if execErr != nil {
		errMsg = execErr.Error()
	}
	cwd, _ := os.Getwd()
	// Auditing is best-effort; a full disk must not fail the tool call.
	_ = s.logger.Log(expression, code, errMsg, duration, cwd)
}
