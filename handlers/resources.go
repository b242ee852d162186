// ABOUTME: MCP resource handlers for exposing tracker data
// ABOUTME: Provides read-only JSON views of partners, pipeline, initiatives, stats and actions
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/pipetrack/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "pipetrack://"

// Resources lists the static resources served by ReadResource.
var Resources = []*mcp.Resource{
	{URI: resourceScheme + "partners", Name: "partners", Description: "All partners", MIMEType: "application/json"},
	{URI: resourceScheme + "pipeline", Name: "pipeline", Description: "Current and previous pipeline generations", MIMEType: "application/json"},
	{URI: resourceScheme + "initiatives", Name: "initiatives", Description: "All initiatives", MIMEType: "application/json"},
	{URI: resourceScheme + "stats", Name: "stats", Description: "Pipeline statistics with change from last upload", MIMEType: "application/json"},
	{URI: resourceScheme + "actions", Name: "actions", Description: "Open action items", MIMEType: "application/json"},
}

type ResourceHandlers struct {
	tr *tracker.Tracker
}

func NewResourceHandlers(tr *tracker.Tracker) *ResourceHandlers {
	return &ResourceHandlers{tr: tr}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(_ context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	var v any
	switch strings.TrimPrefix(uri, resourceScheme) {
	case "partners":
		v = h.tr.Partners()
	case "pipeline":
		v = h.tr.PipelineState()
	case "initiatives":
		v = h.tr.Initiatives()
	case "stats":
		v = h.tr.Stats()
	case "actions":
		v = h.tr.ActionItems()
	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
