// ABOUTME: MCP prompt handlers for reusable pipeline review templates
// ABOUTME: Builds partner review and action follow-up prompts from live tracker data
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/pipetrack/report"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Prompts lists the prompt templates served by GetPrompt.
var Prompts = []*mcp.Prompt{
	{
		Name:        "partner-review",
		Description: "Review one partner's pipeline by fiscal quarter",
		Arguments: []*mcp.PromptArgument{
			{Name: "partner", Description: "Partner name", Required: true},
		},
	},
	{
		Name:        "pipeline-summary",
		Description: "Summarize the current pipeline and its change since the last upload",
	},
	{
		Name:        "action-followup",
		Description: "Suggest next steps for every open action item",
	},
}

type PromptHandlers struct {
	tr *tracker.Tracker
}

func NewPromptHandlers(tr *tracker.Tracker) *PromptHandlers {
	return &PromptHandlers{tr: tr}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(_ context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "partner-review":
		return h.partnerReviewPrompt(request.Params.Arguments)
	case "pipeline-summary":
		return h.pipelineSummaryPrompt()
	case "action-followup":
		return h.actionFollowupPrompt()
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) partnerReviewPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	partner := strings.TrimSpace(args["partner"])
	if partner == "" {
		return nil, fmt.Errorf("partner is required")
	}

	var promptText strings.Builder
	found := false
	for _, g := range h.tr.Groups() {
		if !strings.EqualFold(g.Partner, partner) {
			continue
		}
		found = true
		promptText.WriteString(fmt.Sprintf("Partner: %s\n", g.Partner))
		promptText.WriteString(fmt.Sprintf("Pipeline: %d opportunities, %s\n\n", g.Count, report.FormatAmount(g.Total)))
		for _, b := range g.Quarters {
			promptText.WriteString(fmt.Sprintf("%s (%d, %s)\n", b.Label, b.Count(), report.FormatAmount(b.Total)))
			for _, o := range b.Records {
				promptText.WriteString(fmt.Sprintf("  - %s: %s, stage %s, closes %s\n",
					o.OpportunityName, report.FormatAmount(o.Amount), o.Stage, o.CloseDate.Format("2006-01-02")))
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("no pipeline for partner %q", partner)
	}

	for _, ini := range h.tr.Initiatives() {
		if strings.EqualFold(strings.TrimSpace(ini.Partner), partner) {
			promptText.WriteString(fmt.Sprintf("\nInitiative: %s (target %s, role %s)", ini.Project, ini.TargetQuarter, ini.Role))
		}
	}

	promptText.WriteString("\n\nPlease review this partner and provide:")
	promptText.WriteString("\n1. Which quarters carry the most risk")
	promptText.WriteString("\n2. Deals that need attention before they close")
	promptText.WriteString("\n3. How the initiatives line up with the pipeline")

	return userPrompt(fmt.Sprintf("Pipeline review for %s", partner), promptText.String()), nil
}

func (h *PromptHandlers) pipelineSummaryPrompt() (*mcp.GetPromptResult, error) {
	var promptText strings.Builder
	report.RenderStats(&promptText, h.tr.Stats())
	promptText.WriteString("\n")
	report.RenderWindow(&promptText, h.tr.Window())

	promptText.WriteString("\n\nPlease summarize the pipeline: overall movement since the last upload, ")
	promptText.WriteString("which partners drive the next four quarters, and anything unusual.")

	return userPrompt("Pipeline summary", promptText.String()), nil
}

func (h *PromptHandlers) actionFollowupPrompt() (*mcp.GetPromptResult, error) {
	items := h.tr.ActionItems()
	if len(items) == 0 {
		return nil, fmt.Errorf("no open action items")
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("There are %d open action items:\n\n", len(items)))
	for _, it := range items {
		promptText.WriteString(fmt.Sprintf("- [%s] %s / %s: %s\n", it.Kind, it.PartnerName, it.Title(), it.Note.Content))
	}
	promptText.WriteString("\nFor each item suggest a concrete next step and who should own it.")

	return userPrompt("Action item follow-up", promptText.String()), nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
