package web

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/harperreed/pipetrack/ingest"
	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/report"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/harperreed/pipetrack/viz"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, viz.RenderDashboard(viz.GenerateDashboardStats(s.tr)))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	graphType := r.URL.Query().Get("type")
	if graphType == "" {
		graphType = viz.GraphPipeline
	}
	dot, err := s.generator.Generate(r.Context(), graphType, r.URL.Query().Get("partner"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = io.WriteString(w, dot)
}

// Partners

type partnerRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Status   *string `json:"status"`
}

func (s *Server) listPartners(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.tr.Partners()))
}

func (s *Server) addPartner(w http.ResponseWriter, r *http.Request) {
	var req partnerRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := s.tr.AddPartner(deref(req.Name), deref(req.Category), deref(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updatePartner(w http.ResponseWriter, r *http.Request) {
	var req partnerRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := s.tr.UpdatePartner(chi.URLParam(r, "id"), tracker.PartnerPatch{
		Name:     req.Name,
		Category: req.Category,
		Status:   req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePartner(w http.ResponseWriter, r *http.Request) {
	if err := s.tr.DeletePartner(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pipeline

type uploadResponse struct {
	Records  int      `json:"records"`
	Reused   int      `json:"reusedIds"`
	Minted   int      `json:"newIds"`
	Unmapped []string `json:"unmappedColumns"`
}

func (s *Server) pipelineState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tr.PipelineState())
}

// uploadPipeline accepts a multipart form with the spreadsheet in the "file" field.
func (s *Server) uploadPipeline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, fmt.Sprintf("missing spreadsheet in form field \"file\": %v", err))
		return
	}
	defer func() { _ = file.Close() }()

	rows, err := ingest.ReadNamed(header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.tr.UploadPipeline(rows)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Records:  len(res.Records),
		Reused:   res.Reused,
		Minted:   res.Minted,
		Unmapped: nonNil(res.Unmapped),
	})
}

func (s *Server) clearPipeline(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		badRequest(w, "clearing the pipeline requires confirm=true")
		return
	}
	if err := s.tr.ClearPipeline(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type groupResponse struct {
	report.PartnerGroup
	Notes []quarterNotes `json:"notes"`
}

type quarterNotes struct {
	Label string             `json:"label"`
	Notes report.NoteSummary `json:"summary"`
}

func (s *Server) pipelineGroups(w http.ResponseWriter, _ *http.Request) {
	groups := s.tr.Groups()
	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		gr := groupResponse{PartnerGroup: g, Notes: make([]quarterNotes, 0, len(g.Quarters))}
		for _, b := range g.Quarters {
			gr.Notes = append(gr.Notes, quarterNotes{
				Label: b.Label,
				Notes: report.SummarizeNotes(b.Records, s.tr.NotesForOpportunity),
			})
		}
		out = append(out, gr)
	}
	writeJSON(w, http.StatusOK, out)
}

type windowResponse struct {
	Quarters []string          `json:"quarters"`
	Rows     []report.WindowRow `json:"rows"`
	Totals   report.WindowRow   `json:"totals"`
}

func (s *Server) pipelineWindow(w http.ResponseWriter, _ *http.Request) {
	wt := s.tr.Window()
	writeJSON(w, http.StatusOK, windowResponse{Quarters: wt.Labels(), Rows: nonNil(wt.Rows), Totals: wt.Totals})
}

func (s *Server) pipelineStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tr.Stats())
}

// Initiatives

type initiativeRequest struct {
	Partner         *string `json:"partner"`
	Project         *string `json:"project"`
	TargetQuarter   *string `json:"targetQuarter"`
	HPEOwner        *string `json:"hpeOwner"`
	PartnerOwner    *string `json:"partnerOwner"`
	HPEResource     *string `json:"hpeResource"`
	PartnerResource *string `json:"partnerResource"`
	Role            *string `json:"role"`
}

func (s *Server) listInitiatives(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.tr.Initiatives()))
}

func (s *Server) addInitiative(w http.ResponseWriter, r *http.Request) {
	var req initiativeRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	ini, err := s.tr.AddInitiative(tracker.InitiativeInput{
		Partner:         deref(req.Partner),
		Project:         deref(req.Project),
		TargetQuarter:   deref(req.TargetQuarter),
		HPEOwner:        deref(req.HPEOwner),
		PartnerOwner:    deref(req.PartnerOwner),
		HPEResource:     deref(req.HPEResource),
		PartnerResource: deref(req.PartnerResource),
		Role:            deref(req.Role),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ini)
}

func (s *Server) updateInitiative(w http.ResponseWriter, r *http.Request) {
	var req initiativeRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	ini, err := s.tr.UpdateInitiative(chi.URLParam(r, "id"), tracker.InitiativePatch(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ini)
}

func (s *Server) deleteInitiative(w http.ResponseWriter, r *http.Request) {
	if err := s.tr.DeleteInitiative(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Notes

type noteRequest struct {
	Content   string `json:"content"`
	HasAction bool   `json:"hasAction"`
}

func (s *Server) opportunityNotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.tr.NotesForOpportunity(chi.URLParam(r, "id"))))
}

func (s *Server) initiativeNotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.tr.NotesForInitiative(chi.URLParam(r, "id"))))
}

func (s *Server) addOpportunityNote(w http.ResponseWriter, r *http.Request) {
	s.addNote(w, r, models.NoteOpportunity)
}

func (s *Server) addInitiativeNote(w http.ResponseWriter, r *http.Request) {
	s.addNote(w, r, models.NoteInitiative)
}

func (s *Server) addNote(w http.ResponseWriter, r *http.Request, kind models.NoteKind) {
	var req noteRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	n, err := s.tr.AddNote(chi.URLParam(r, "id"), req.Content, req.HasAction, kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	n, err := s.tr.UpdateNote(chi.URLParam(r, "id"), req.Content, req.HasAction)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.tr.DeleteNote(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) actionItems(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.tr.ActionItems()))
}

// Backup

func (s *Server) exportBackup(w http.ResponseWriter, _ *http.Request) {
	data, err := s.tr.ExportJSON()
	if err != nil {
		writeError(w, err)
		return
	}
	name := fmt.Sprintf("pipetrack-backup-%s.json", s.tr.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(data)
}

func (s *Server) importBackup(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		badRequest(w, "importing replaces all data and requires confirm=true")
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	b, err := s.tr.Import(raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"partners":     len(b.Partners),
		"pipelineData": len(b.PipelineData),
		"initiatives":  len(b.Initiatives),
		"notes":        len(b.Notes),
	})
}

func (s *Server) rollback(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		badRequest(w, "rollback requires confirm=true")
		return
	}
	snap, err := s.tr.Rollback()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restored": snap.ID, "reason": snap.Reason, "takenAt": snap.TakenAt})
}

func (s *Server) clearAll(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		badRequest(w, "clearing all data requires confirm=true")
		return
	}
	if err := s.tr.ClearAll(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Exports

func (s *Server) exportOpportunities(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := report.WriteOpportunities(&buf, s.tr.CurrentPipeline()); err != nil {
		writeError(w, err)
		return
	}
	sendWorkbook(w, "partner-opportunities", s.tr, buf.Bytes())
}

func (s *Server) exportInitiatives(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := report.WriteInitiatives(&buf, s.tr.Initiatives()); err != nil {
		writeError(w, err)
		return
	}
	sendWorkbook(w, "partner-initiatives", s.tr, buf.Bytes())
}

func sendWorkbook(w http.ResponseWriter, base string, tr *tracker.Tracker, data []byte) {
	name := fmt.Sprintf("%s-%s.xlsx", base, tr.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(data)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
