package handlers

import (
	"net/http"

	"github.com/scifair/fairjudge/internal/models"
)

// ==================== Judge Handlers ====================

func (h *Handlers) handleGetJudges(w http.ResponseWriter, r *http.Request) {
	judges, err := h.Judging.ListJudges(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, judges)
}

func (h *Handlers) handleGetJudge(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	judge, err := h.Judging.GetJudge(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, judge)
}

func (h *Handlers) handleCreateJudge(w http.ResponseWriter, r *http.Request) {
	var req JudgeCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	judge, err := h.Judging.CreateJudge(r.Context(), models.Judge{
		Name:                req.Name,
		School:              req.School,
		Role:                models.JudgeRole(req.Role),
		CoordinatedCategory: req.CoordinatedCategory,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, judge)
}

func (h *Handlers) handleUpdateJudge(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req JudgeUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	err = h.Judging.UpdateJudge(r.Context(), models.Judge{
		ID:                  id,
		Name:                req.Name,
		School:              req.School,
		Role:                models.JudgeRole(req.Role),
		CoordinatedCategory: req.CoordinatedCategory,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Judge updated")
}

func (h *Handlers) handleDeleteJudge(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Judging.DeleteJudge(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Assignment Handlers ====================

func (h *Handlers) handleGetProjectAssignments(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	assignments, err := h.Judging.ListProjectAssignments(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, assignments)
}

func (h *Handlers) handleGetJudgeAssignments(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	assignments, err := h.Judging.ListJudgeAssignments(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, assignments)
}

func (h *Handlers) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req AssignmentCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Judging.AssignJudge(r.Context(), req.ProjectID, req.JudgeID, models.Section(req.Section))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, map[string]int64{"id": id})
}

func (h *Handlers) handleReassign(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req ReassignRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	newID, err := h.Judging.Reassign(r.Context(), id, req.JudgeID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, map[string]int64{"id": newID})
}

func (h *Handlers) handleArchiveAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Judging.ArchiveAssignment(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Scoring Handlers ====================

func (h *Handlers) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req ScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Judging.SaveDraft(r.Context(), id, req.Breakdown, req.Comments, req.Recommendations); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Draft saved")
}

func (h *Handlers) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req ScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Judging.SubmitScore(r.Context(), id, req.Breakdown, req.Comments, req.Recommendations); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Score submitted")
}

func (h *Handlers) handleSubmitArbitration(w http.ResponseWriter, r *http.Request) {
	var req ArbitrationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Judging.SubmitArbitration(r.Context(), req.ProjectID, req.JudgeID, models.Section(req.Section), req.Breakdown, req.Comments)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, map[string]int64{"id": id})
}
