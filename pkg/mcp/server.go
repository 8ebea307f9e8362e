// Package mcp adapts the resilience pipeline to the Model Context
// Protocol so an agent can run simulations and apply the release gate
// through tool calls.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rmax-ai/resilord/pkg/blob"
	"github.com/rmax-ai/resilord/pkg/gate"
	"github.com/rmax-ai/resilord/pkg/graph"
	"github.com/rmax-ai/resilord/pkg/replicas"
	"github.com/rmax-ai/resilord/pkg/simulation"
)

// Server exposes the simulation and gate stages over MCP.
type Server struct {
	mcpServer  *server.MCPServer
	resultsDir string
}

// NewServer creates a new MCP server instance. resultsDir backs the
// resilord://results resource and the default gate directory.
func NewServer(resultsDir string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"resilord",
			"1.0.0",
		),
		resultsDir: resultsDir,
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		"resilord://results",
		"Simulation Result Artifacts",
		mcp.WithResourceDescription("Result documents available in the configured results directory"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadResults)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"run_simulation",
		mcp.WithDescription("Run one offline reliability simulation and write a result artifact."),
		mcp.WithString("graph", mcp.Required(), mcp.Description("Path to the dependency graph JSON")),
		mcp.WithString("replicas", mcp.Required(), mcp.Description("Path to the replica overlay file")),
		mcp.WithNumber("pfail", mcp.Required(), mcp.Description("Assumed per-instance failure probability")),
		mcp.WithString("out", mcp.Required(), mcp.Description("Output path for the result JSON")),
	), s.handleRunSimulation)

	s.mcpServer.AddTool(mcp.NewTool(
		"evaluate_gate",
		mcp.WithDescription("Apply the reliability release gate to a directory of result artifacts."),
		mcp.WithNumber("threshold", mcp.Required(), mcp.Description("Reliability cutoff in [0,1]")),
		mcp.WithString("results", mcp.Description("Results directory (defaults to the configured one)")),
		mcp.WithString("mode", mcp.Description("Aggregation mode: any or mean (default any)")),
		mcp.WithString("results_mode", mcp.Description("Replication mode filter, e.g. norepl or repl")),
		mcp.WithString("filters", mcp.Description("Comma separated endpoint whitelist")),
	), s.handleEvaluateGate)
}

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"resilord-aware",
		mcp.WithPromptDescription("Provides context about Resilord concepts (graphs, overlays, the gate)"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadResults(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	store := blob.NewLocalStore(s.resultsDir)
	keys, err := store.List(ctx, ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result listing: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleRunSimulation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	graphPath := mcp.ParseString(request, "graph", "")
	replicasPath := mcp.ParseString(request, "replicas", "")
	pfail := mcp.ParseFloat64(request, "pfail", -1)
	outPath := mcp.ParseString(request, "out", "")

	g, err := graph.Load(graphPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	overlay, err := replicas.Load(replicasPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := simulation.Run(g, overlay, pfail, simulation.Options{ReplicasFile: replicasPath})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	store := blob.NewLocalStore(filepath.Dir(outPath))
	if err := simulation.WriteResult(ctx, store, filepath.Base(outPath), res); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg := fmt.Sprintf("Result written to %s\nEndpoints: %d\nMin reliability: %.4f\nMax reliability: %.4f\nMode: %s",
		outPath, res.Summary.EntrypointCount, res.Summary.MinReliability, res.Summary.MaxReliability, res.Summary.Mode)
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleEvaluateGate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resultsDir := mcp.ParseString(request, "results", s.resultsDir)
	threshold := mcp.ParseFloat64(request, "threshold", 0)
	mode := mcp.ParseString(request, "mode", string(gate.ModeAny))
	resultsMode := mcp.ParseString(request, "results_mode", "")
	filtersArg := mcp.ParseString(request, "filters", "")

	var filters []string
	for _, f := range strings.Split(filtersArg, ",") {
		if f = strings.TrimSpace(f); f != "" {
			filters = append(filters, f)
		}
	}

	res, err := gate.EvaluateDir(ctx, resultsDir, gate.Options{
		Threshold:   threshold,
		Mode:        gate.AggregationMode(mode),
		ResultsMode: resultsMode,
		Filters:     filters,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("gate evaluation failed: %v", err)), nil
	}

	verdict := "FAILED"
	if res.Passed {
		verdict = "PASSED"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Gate %s\nReason: %s", verdict, res.Reason)), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "resilord-aware" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are interacting with Resilord, an offline resilience simulator and release gate.

Concepts:
- Dependency graph: parent/child service call edges, collected from traces.
- Replica overlay: per-service instance counts. Files named norepl* model the unreplicated baseline.
- pfail: the assumed failure probability of a single service instance.
- Entry point: a path through the graph whose composed reliability is scored.
- Gate: a threshold check over a sweep of result artifacts. A FAILED gate blocks the release.

Run 'run_simulation' to produce result artifacts, then 'evaluate_gate' over their directory.
If the gate FAILED, report the violating endpoints rather than retrying with a looser threshold.
`

	return mcp.NewGetPromptResult(
		"resilord-aware",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}
