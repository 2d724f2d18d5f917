// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Opsdeck interpretation views for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/opsdeck/opsdeck/internal/aggregate"
	"github.com/opsdeck/opsdeck/internal/calllog"
	"github.com/opsdeck/opsdeck/internal/chain"
	"github.com/opsdeck/opsdeck/internal/graphview"
	"github.com/opsdeck/opsdeck/internal/scenario"
	"github.com/opsdeck/opsdeck/internal/stream"
)

// Server wraps the MCP server with Opsdeck tools.
type Server struct {
	mcp       *server.MCPServer
	buffer    *stream.Buffer
	graph     *graphview.Holder
	log       *calllog.DB
	scenarios *scenario.Registry
	runner    *scenario.Runner
	appCtx    context.Context
}

// New creates a new MCP server with all Opsdeck tools registered. appCtx
// bounds the lifetime of scenario playback started through run_scenario.
func New(appCtx context.Context, buffer *stream.Buffer, graph *graphview.Holder,
	log *calllog.DB, scenarios *scenario.Registry, runner *scenario.Runner) *Server {

	s := &Server{
		buffer:    buffer,
		graph:     graph,
		log:       log,
		scenarios: scenarios,
		runner:    runner,
		appCtx:    appCtx,
	}

	s.mcp = server.NewMCPServer(
		"Opsdeck",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_reasoning_chain",
		mcp.WithDescription("Return the agent's derived reasoning chain for the current event window."),
	), s.getReasoningChain)

	s.mcp.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Return aggregate counters for the current event window: totals per event kind, active step categories, and upstream connectivity."),
	), s.getStats)

	s.mcp.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Return the positioned knowledge-graph layout from the latest upstream snapshot."),
	), s.getGraph)

	s.mcp.AddTool(mcp.NewTool("list_scenarios",
		mcp.WithDescription("List the demo scenarios available for playback."),
	), s.listScenarios)

	s.mcp.AddTool(mcp.NewTool("run_scenario",
		mcp.WithDescription("Start playing a demo scenario through the event pipeline."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Scenario name as returned by list_scenarios")),
	), s.runScenario)

	s.mcp.AddTool(mcp.NewTool("recent_calls",
		mcp.WithDescription("Return the most recent completed negotiation calls from the call log."),
	), s.recentCalls)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) getReasoningChain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	steps := chain.Derive(s.buffer.Snapshot())
	out, _ := json.MarshalIndent(steps, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events := s.buffer.Snapshot()
	stats := aggregate.Summarize(events, chain.Derive(events), s.buffer.Connected())
	out, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.graph.Layout(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listScenarios(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type info struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Steps       int    `json:"steps"`
	}
	var items []info
	for _, sc := range s.scenarios.List() {
		items = append(items, info{Name: sc.Name, Description: sc.Description, Steps: len(sc.Steps)})
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) runScenario(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.runner.Start(s.appCtx, name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scenario not found: %s", name)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("started: %s", name)), nil
}

func (s *Server) recentCalls(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.log.RecentCalls(20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
