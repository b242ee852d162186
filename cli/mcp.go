// ABOUTME: MCP server subcommand
// ABOUTME: Serves pipetrack tools, resources and prompts to MCP clients over stdio
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pipetrack/handlers"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPCommand runs the MCP server on stdio until the client disconnects or ctx ends.
func MCPCommand(ctx context.Context, tr *tracker.Tracker, version string) error {
	log.Info("starting pipetrack MCP server", "version", version)
	server := handlers.NewServer(tr, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
