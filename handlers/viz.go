// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_graph tool for agents
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/pipetrack/tracker"
	"github.com/harperreed/pipetrack/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	generator *viz.GraphGenerator
}

func NewVizHandlers(tr *tracker.Tracker) *VizHandlers {
	return &VizHandlers{generator: viz.NewGraphGenerator(tr)}
}

type GenerateGraphInput struct {
	Type    string `json:"type" jsonschema:"Graph type: pipeline, partner or initiatives"`
	Partner string `json:"partner,omitempty" jsonschema:"Partner name (required for partner graph)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	}

	dot, err := h.generator.Generate(ctx, input.Type, input.Partner)
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: dot,
		NodeCount: strings.Count(dot, "[label="),
		EdgeCount: strings.Count(dot, "->"),
	}, nil
}
