package handlers

import (
	"net/http"

	"github.com/scifair/fairjudge/internal/models"
)

// ==================== Results Handlers ====================

func (h *Handlers) handleGetProjectScore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	score, err := h.Results.ProjectScore(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, score)
}

func (h *Handlers) handleGetRankings(w http.ResponseWriter, r *http.Request) {
	level := models.CompetitionLevel(r.URL.Query().Get("level"))
	rankings, err := h.Results.Rankings(r.Context(), level, scopeFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, rankings)
}

func (h *Handlers) handleGetArbitrationQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := h.Results.ArbitrationQueue(r.Context(), scopeFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, queue)
}

func (h *Handlers) handleGetTies(w http.ResponseWriter, r *http.Request) {
	level := models.CompetitionLevel(r.URL.Query().Get("level"))
	ties, err := h.Results.ListTies(r.Context(), level, scopeFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ties)
}

func (h *Handlers) handleGetScoreSheet(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Results.ScoreSheet())
}

func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Results.GetStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}
