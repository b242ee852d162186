// ABOUTME: Note and action item MCP tool handlers
// ABOUTME: Implements add_note, update_note, delete_note, list_notes and list_action_items tools
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type NoteHandlers struct {
	tr *tracker.Tracker
}

func NewNoteHandlers(tr *tracker.Tracker) *NoteHandlers {
	return &NoteHandlers{tr: tr}
}

type AddNoteInput struct {
	ParentID  string `json:"parent_id" jsonschema:"Opportunity or initiative ID (required)"`
	Kind      string `json:"kind" jsonschema:"Parent kind: opportunity or initiative (required)"`
	Content   string `json:"content" jsonschema:"Note text (required)"`
	HasAction bool   `json:"has_action,omitempty" jsonschema:"Flag the note as an action item"`
}

type UpdateNoteInput struct {
	ID        string `json:"id" jsonschema:"Note ID (required)"`
	Content   string `json:"content" jsonschema:"New note text (required)"`
	HasAction bool   `json:"has_action" jsonschema:"Action flag"`
}

type DeleteNoteInput struct {
	ID string `json:"id" jsonschema:"Note ID (required)"`
}

type ListNotesInput struct {
	ParentID string `json:"parent_id" jsonschema:"Opportunity or initiative ID (required)"`
	Kind     string `json:"kind" jsonschema:"Parent kind: opportunity or initiative (required)"`
}

type ListNotesOutput struct {
	Notes []models.Note `json:"notes"`
}

type ActionItemsOutput struct {
	Items []ActionItemOutput `json:"items"`
	Count int                `json:"count"`
}

type ActionItemOutput struct {
	NoteID    string `json:"note_id"`
	Kind      string `json:"type"`
	Partner   string `json:"partner"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (h *NoteHandlers) AddNote(_ context.Context, _ *mcp.CallToolRequest, input AddNoteInput) (*mcp.CallToolResult, models.Note, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, models.Note{}, err
	}
	n, err := h.tr.AddNote(input.ParentID, input.Content, input.HasAction, kind)
	if err != nil {
		return nil, models.Note{}, fmt.Errorf("failed to add note: %w", err)
	}
	return nil, n, nil
}

func (h *NoteHandlers) UpdateNote(_ context.Context, _ *mcp.CallToolRequest, input UpdateNoteInput) (*mcp.CallToolResult, models.Note, error) {
	n, err := h.tr.UpdateNote(input.ID, input.Content, input.HasAction)
	if err != nil {
		return nil, models.Note{}, fmt.Errorf("failed to update note: %w", err)
	}
	return nil, n, nil
}

func (h *NoteHandlers) DeleteNote(_ context.Context, _ *mcp.CallToolRequest, input DeleteNoteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := h.tr.DeleteNote(input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}

func (h *NoteHandlers) ListNotes(_ context.Context, _ *mcp.CallToolRequest, input ListNotesInput) (*mcp.CallToolResult, ListNotesOutput, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, ListNotesOutput{}, err
	}
	if kind == models.NoteOpportunity {
		return nil, ListNotesOutput{Notes: h.tr.NotesForOpportunity(input.ParentID)}, nil
	}
	return nil, ListNotesOutput{Notes: h.tr.NotesForInitiative(input.ParentID)}, nil
}

func (h *NoteHandlers) ListActionItems(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, ActionItemsOutput, error) {
	items := h.tr.ActionItems()
	out := ActionItemsOutput{Items: make([]ActionItemOutput, 0, len(items)), Count: len(items)}
	for _, it := range items {
		out.Items = append(out.Items, ActionItemOutput{
			NoteID:    it.Note.ID,
			Kind:      string(it.Kind),
			Partner:   it.PartnerName,
			Title:     it.Title(),
			Content:   it.Note.Content,
			CreatedAt: it.Note.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return nil, out, nil
}

func parseKind(s string) (models.NoteKind, error) {
	switch models.NoteKind(strings.ToLower(strings.TrimSpace(s))) {
	case models.NoteOpportunity:
		return models.NoteOpportunity, nil
	case models.NoteInitiative:
		return models.NoteInitiative, nil
	}
	return "", fmt.Errorf("invalid kind: %q (valid: opportunity, initiative)", s)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
