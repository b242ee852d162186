// ABOUTME: Initiative MCP tool handlers
// ABOUTME: Implements list_initiatives, add_initiative, update_initiative and delete_initiative tools
package handlers

import (
	"context"
	"fmt"
	"slices"

	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type InitiativeHandlers struct {
	tr *tracker.Tracker
}

func NewInitiativeHandlers(tr *tracker.Tracker) *InitiativeHandlers {
	return &InitiativeHandlers{tr: tr}
}

type ListInitiativesInput struct {
	Partner string `json:"partner,omitempty" jsonschema:"Filter by partner name (case-insensitive)"`
	Quarter string `json:"quarter,omitempty" jsonschema:"Filter by target quarter Q1-Q4"`
}

type ListInitiativesOutput struct {
	Initiatives []models.Initiative `json:"initiatives"`
	Count       int                 `json:"count"`
}

type AddInitiativeInput struct {
	Partner         string `json:"partner" jsonschema:"Partner name (required)"`
	Project         string `json:"project" jsonschema:"Project name (required)"`
	TargetQuarter   string `json:"targetQuarter" jsonschema:"Target quarter Q1-Q4 (required)"`
	HPEOwner        string `json:"hpeOwner,omitempty"`
	PartnerOwner    string `json:"partnerOwner,omitempty"`
	HPEResource     string `json:"hpeResource,omitempty"`
	PartnerResource string `json:"partnerResource,omitempty"`
	Role            string `json:"role,omitempty"`
}

type UpdateInitiativeInput struct {
	ID              string  `json:"id" jsonschema:"Initiative ID (required)"`
	Partner         *string `json:"partner,omitempty"`
	Project         *string `json:"project,omitempty"`
	TargetQuarter   *string `json:"targetQuarter,omitempty" jsonschema:"Q1-Q4"`
	HPEOwner        *string `json:"hpeOwner,omitempty"`
	PartnerOwner    *string `json:"partnerOwner,omitempty"`
	HPEResource     *string `json:"hpeResource,omitempty"`
	PartnerResource *string `json:"partnerResource,omitempty"`
	Role            *string `json:"role,omitempty"`
}

type DeleteInitiativeInput struct {
	ID string `json:"id" jsonschema:"Initiative ID (required)"`
}

func (h *InitiativeHandlers) ListInitiatives(_ context.Context, _ *mcp.CallToolRequest, input ListInitiativesInput) (*mcp.CallToolResult, ListInitiativesOutput, error) {
	var quarter models.Quarter
	if input.Quarter != "" {
		q, ok := models.ParseQuarter(input.Quarter)
		if !ok {
			return nil, ListInitiativesOutput{}, fmt.Errorf("invalid quarter: %s (valid: Q1, Q2, Q3, Q4)", input.Quarter)
		}
		quarter = q
	}

	all := h.tr.Initiatives()
	out := slices.DeleteFunc(all, func(ini models.Initiative) bool {
		if input.Partner != "" && !equalFold(ini.Partner, input.Partner) {
			return true
		}
		return quarter != "" && ini.TargetQuarter != quarter
	})
	return nil, ListInitiativesOutput{Initiatives: out, Count: len(out)}, nil
}

func (h *InitiativeHandlers) AddInitiative(_ context.Context, _ *mcp.CallToolRequest, input AddInitiativeInput) (*mcp.CallToolResult, models.Initiative, error) {
	ini, err := h.tr.AddInitiative(tracker.InitiativeInput(input))
	if err != nil {
		return nil, models.Initiative{}, fmt.Errorf("failed to add initiative: %w", err)
	}
	return nil, ini, nil
}

func (h *InitiativeHandlers) UpdateInitiative(_ context.Context, _ *mcp.CallToolRequest, input UpdateInitiativeInput) (*mcp.CallToolResult, models.Initiative, error) {
	ini, err := h.tr.UpdateInitiative(input.ID, tracker.InitiativePatch{
		Partner:         input.Partner,
		Project:         input.Project,
		TargetQuarter:   input.TargetQuarter,
		HPEOwner:        input.HPEOwner,
		PartnerOwner:    input.PartnerOwner,
		HPEResource:     input.HPEResource,
		PartnerResource: input.PartnerResource,
		Role:            input.Role,
	})
	if err != nil {
		return nil, models.Initiative{}, fmt.Errorf("failed to update initiative: %w", err)
	}
	return nil, ini, nil
}

func (h *InitiativeHandlers) DeleteInitiative(_ context.Context, _ *mcp.CallToolRequest, input DeleteInitiativeInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := h.tr.DeleteInitiative(input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}
