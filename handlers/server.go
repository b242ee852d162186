// ABOUTME: MCP server assembly
// ABOUTME: Registers every pipetrack tool, resource and prompt on one server
package handlers

import (
	"github.com/harperreed/pipetrack/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server backed by tr.
func NewServer(tr *tracker.Tracker, version string) *mcp.Server {
	partnerHandlers := NewPartnerHandlers(tr)
	pipelineHandlers := NewPipelineHandlers(tr)
	initiativeHandlers := NewInitiativeHandlers(tr)
	noteHandlers := NewNoteHandlers(tr)
	vizHandlers := NewVizHandlers(tr)
	resourceHandlers := NewResourceHandlers(tr)
	promptHandlers := NewPromptHandlers(tr)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "pipetrack",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_partners",
		Description: "List all partners with category and status",
	}, partnerHandlers.ListPartners)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_partner",
		Description: "Add a partner; pipeline rows whose co-selling partner matches it are grouped under it",
	}, partnerHandlers.AddPartner)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_partner",
		Description: "Rename a partner or change its category or status",
	}, partnerHandlers.UpdatePartner)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_partner",
		Description: "Delete a partner; its pipeline rows fall back to the Other group",
	}, partnerHandlers.DeletePartner)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upload_pipeline",
		Description: "Import a spreadsheet export as the new current pipeline; the old one becomes previous",
	}, pipelineHandlers.UploadPipeline)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_stats",
		Description: "Total value, active deals and average deal size with change since the last upload",
	}, pipelineHandlers.PipelineStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_groups",
		Description: "Current pipeline grouped by partner and fiscal quarter",
	}, pipelineHandlers.PipelineGroups)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_window",
		Description: "Pipeline amounts per partner for the current and next three fiscal quarters",
	}, pipelineHandlers.PipelineWindow)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_initiatives",
		Description: "List joint initiatives, optionally filtered by partner or target quarter",
	}, initiativeHandlers.ListInitiatives)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_initiative",
		Description: "Add a joint initiative with a target quarter",
	}, initiativeHandlers.AddInitiative)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_initiative",
		Description: "Update fields of an initiative",
	}, initiativeHandlers.UpdateInitiative)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_initiative",
		Description: "Delete an initiative",
	}, initiativeHandlers.DeleteInitiative)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_note",
		Description: "Attach a note to an opportunity or initiative, optionally flagged as an action item",
	}, noteHandlers.AddNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_note",
		Description: "Change a note's text or action flag",
	}, noteHandlers.UpdateNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_note",
		Description: "Delete a note",
	}, noteHandlers.DeleteNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_notes",
		Description: "List the notes of an opportunity or initiative",
	}, noteHandlers.ListNotes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_action_items",
		Description: "All action-flagged notes joined to their opportunity or initiative, sorted by partner",
	}, noteHandlers.ListActionItems)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz DOT graph of the pipeline, one partner, or the initiatives",
	}, vizHandlers.GenerateGraph)

	for _, r := range Resources {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	for _, p := range Prompts {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server
}
