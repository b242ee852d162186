// ABOUTME: Partner MCP tool handlers
// ABOUTME: Implements list_partners, add_partner, update_partner and delete_partner tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PartnerHandlers struct {
	tr *tracker.Tracker
}

func NewPartnerHandlers(tr *tracker.Tracker) *PartnerHandlers {
	return &PartnerHandlers{tr: tr}
}

type ListPartnersInput struct{}

type PartnerOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Status    string `json:"status"`
	DateAdded string `json:"date_added"`
}

type ListPartnersOutput struct {
	Partners []PartnerOutput `json:"partners"`
	Count    int             `json:"count"`
}

type AddPartnerInput struct {
	Name     string `json:"name" jsonschema:"Partner name (required, unique ignoring case)"`
	Category string `json:"category,omitempty" jsonschema:"Category: focus, incubate or reference"`
	Status   string `json:"status,omitempty" jsonschema:"Status: active (default) or inactive"`
}

type UpdatePartnerInput struct {
	Partner  string  `json:"partner" jsonschema:"Partner ID or name (required)"`
	Name     *string `json:"name,omitempty" jsonschema:"New name"`
	Category *string `json:"category,omitempty" jsonschema:"New category"`
	Status   *string `json:"status,omitempty" jsonschema:"New status: active or inactive"`
}

type DeletePartnerInput struct {
	Partner string `json:"partner" jsonschema:"Partner ID or name (required)"`
}

type DeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (h *PartnerHandlers) ListPartners(_ context.Context, _ *mcp.CallToolRequest, _ ListPartnersInput) (*mcp.CallToolResult, ListPartnersOutput, error) {
	partners := h.tr.Partners()
	out := ListPartnersOutput{Partners: make([]PartnerOutput, 0, len(partners)), Count: len(partners)}
	for _, p := range partners {
		out.Partners = append(out.Partners, partnerToOutput(p))
	}
	return nil, out, nil
}

func (h *PartnerHandlers) AddPartner(_ context.Context, _ *mcp.CallToolRequest, input AddPartnerInput) (*mcp.CallToolResult, PartnerOutput, error) {
	if input.Name == "" {
		return nil, PartnerOutput{}, fmt.Errorf("name is required")
	}
	p, err := h.tr.AddPartner(input.Name, input.Category, input.Status)
	if err != nil {
		return nil, PartnerOutput{}, fmt.Errorf("failed to add partner: %w", err)
	}
	return nil, partnerToOutput(p), nil
}

func (h *PartnerHandlers) UpdatePartner(_ context.Context, _ *mcp.CallToolRequest, input UpdatePartnerInput) (*mcp.CallToolResult, PartnerOutput, error) {
	existing, err := h.tr.FindPartner(input.Partner)
	if err != nil {
		return nil, PartnerOutput{}, err
	}
	p, err := h.tr.UpdatePartner(existing.ID, tracker.PartnerPatch{
		Name:     input.Name,
		Category: input.Category,
		Status:   input.Status,
	})
	if err != nil {
		return nil, PartnerOutput{}, fmt.Errorf("failed to update partner: %w", err)
	}
	return nil, partnerToOutput(p), nil
}

func (h *PartnerHandlers) DeletePartner(_ context.Context, _ *mcp.CallToolRequest, input DeletePartnerInput) (*mcp.CallToolResult, DeleteOutput, error) {
	existing, err := h.tr.FindPartner(input.Partner)
	if err != nil {
		return nil, DeleteOutput{}, err
	}
	if err := h.tr.DeletePartner(existing.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete partner: %w", err)
	}
	return nil, DeleteOutput{ID: existing.ID, Deleted: true}, nil
}

func partnerToOutput(p models.Partner) PartnerOutput {
	return PartnerOutput{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Status:    p.Status,
		DateAdded: p.DateAdded.Format(time.RFC3339),
	}
}
