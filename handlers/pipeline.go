// ABOUTME: Pipeline MCP tool handlers
// ABOUTME: Implements upload_pipeline, pipeline_stats, pipeline_groups and pipeline_window tools
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/pipetrack/ingest"
	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/report"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PipelineHandlers struct {
	tr *tracker.Tracker
}

func NewPipelineHandlers(tr *tracker.Tracker) *PipelineHandlers {
	return &PipelineHandlers{tr: tr}
}

type UploadPipelineInput struct {
	Path string `json:"path" jsonschema:"Path to an .xlsx or .xls pipeline export (required)"`
}

type UploadPipelineOutput struct {
	Records  int      `json:"records"`
	Reused   int      `json:"reused_ids"`
	Minted   int      `json:"new_ids"`
	Unmapped []string `json:"unmapped_columns,omitempty"`
}

type EmptyInput struct{}

type StatsOutput struct {
	Stats         models.PipelineStats `json:"stats"`
	TotalValue    string               `json:"total_value"`
	ValueChange   string               `json:"value_change"`
	PreviousCount int                  `json:"previous_records"`
}

type GroupsInput struct {
	Partner string `json:"partner,omitempty" jsonschema:"Only return this partner group (case-insensitive)"`
}

type GroupsOutput struct {
	Groups []report.PartnerGroup `json:"groups"`
}

type WindowOutput struct {
	Quarters []string          `json:"quarters"`
	Rows     []report.WindowRow `json:"rows"`
	Totals   report.WindowRow   `json:"totals"`
}

func (h *PipelineHandlers) UploadPipeline(_ context.Context, _ *mcp.CallToolRequest, input UploadPipelineInput) (*mcp.CallToolResult, UploadPipelineOutput, error) {
	if input.Path == "" {
		return nil, UploadPipelineOutput{}, fmt.Errorf("path is required")
	}
	rows, err := ingest.ReadFile(input.Path)
	if err != nil {
		return nil, UploadPipelineOutput{}, err
	}
	res, err := h.tr.UploadPipeline(rows)
	if err != nil {
		return nil, UploadPipelineOutput{}, fmt.Errorf("failed to upload pipeline: %w", err)
	}
	return nil, UploadPipelineOutput{
		Records:  len(res.Records),
		Reused:   res.Reused,
		Minted:   res.Minted,
		Unmapped: res.Unmapped,
	}, nil
}

func (h *PipelineHandlers) PipelineStats(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StatsOutput, error) {
	stats := h.tr.Stats()
	return nil, StatsOutput{
		Stats:         stats,
		TotalValue:    report.FormatAmount(stats.TotalValue),
		ValueChange:   report.FormatChange(stats.ChangeFromLastUpload.TotalValue),
		PreviousCount: len(h.tr.PipelineState().Previous),
	}, nil
}

func (h *PipelineHandlers) PipelineGroups(_ context.Context, _ *mcp.CallToolRequest, input GroupsInput) (*mcp.CallToolResult, GroupsOutput, error) {
	groups := h.tr.Groups()
	if input.Partner == "" {
		return nil, GroupsOutput{Groups: groups}, nil
	}
	for _, g := range groups {
		if equalFold(g.Partner, input.Partner) {
			return nil, GroupsOutput{Groups: []report.PartnerGroup{g}}, nil
		}
	}
	return nil, GroupsOutput{Groups: []report.PartnerGroup{}}, nil
}

func (h *PipelineHandlers) PipelineWindow(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, WindowOutput, error) {
	w := h.tr.Window()
	return nil, WindowOutput{Quarters: w.Labels(), Rows: w.Rows, Totals: w.Totals}, nil
}
