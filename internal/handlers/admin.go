package handlers

import (
	"net/http"
	"time"

	"github.com/scifair/fairjudge/internal/models"
	"github.com/scifair/fairjudge/internal/scoring"
	"github.com/scifair/fairjudge/internal/services"
)

func publishScope(req PublishRequest) scoring.Scope {
	return scoring.Scope{
		Region:    req.Region,
		County:    req.County,
		SubCounty: req.SubCounty,
	}
}

// ==================== Publish Handlers ====================

func (h *Handlers) handlePublishPreview(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	preview, err := h.Promotion.Preview(r.Context(), models.CompetitionLevel(req.Level), publishScope(req))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, preview)
}

func (h *Handlers) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Promotion.Publish(r.Context(), models.CompetitionLevel(req.Level), publishScope(req))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

func (h *Handlers) handleResolveTie(w http.ResponseWriter, r *http.Request) {
	var req TieResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Promotion.ResolveTie(r.Context(), req.ProjectID, req.Score); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Tie resolved")
}

func (h *Handlers) handlePushToNational(w http.ResponseWriter, r *http.Request) {
	var req PushNationalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Promotion.PushToNational(r.Context(), req.PortalURL)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// ==================== Settings Handlers ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	err := h.Settings.UpdateSettings(r.Context(), services.Settings{
		UpstreamURL:        req.UpstreamURL,
		UpstreamUsername:   req.UpstreamUsername,
		UpstreamPassword:   req.UpstreamPassword,
		PublicURL:          req.PublicURL,
		RegistrationOpen:   req.RegistrationOpen,
		LiveUpdates:        req.LiveUpdates,
		SubmissionDeadline: req.SubmissionDeadline,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Settings updated")
}

func (h *Handlers) handleGetRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	open, err := h.Settings.IsRegistrationOpen(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	deadline, _ := h.Settings.GetSetting(r.Context(), "submission_deadline")
	respondOK(w, RegistrationStatusResponse{Open: open, Deadline: deadline})
}

func (h *Handlers) handleSetRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	var req RegistrationStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Settings.SetRegistrationOpen(r.Context(), req.Open); err != nil {
		respondError(w, err)
		return
	}

	deadline, _ := h.Settings.GetSetting(r.Context(), "submission_deadline")
	if h.Hub != nil {
		h.Hub.BroadcastRegistrationStatus(req.Open, deadline)
	}
	respondOK(w, RegistrationStatusResponse{Open: req.Open, Deadline: deadline})
}

func (h *Handlers) handleSetDeadline(w http.ResponseWriter, r *http.Request) {
	var req DeadlineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if req.Deadline == "" {
		if err := h.Settings.SetSetting(r.Context(), "submission_deadline", ""); err != nil {
			respondError(w, err)
			return
		}
		respondSuccess(w, "Deadline cleared")
		return
	}

	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		respondError(w, BadRequest("Invalid deadline - must be RFC3339 format"))
		return
	}
	if err := h.Settings.SetSubmissionDeadline(r.Context(), deadline); err != nil {
		respondError(w, err)
		return
	}

	open, _ := h.Settings.IsRegistrationOpen(r.Context())
	if h.Hub != nil {
		h.Hub.BroadcastRegistrationStatus(open, deadline.Format(time.RFC3339))
	}
	respondSuccess(w, "Deadline set")
}

func (h *Handlers) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseResetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Settings.ResetTables(r.Context(), req.Tables)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ResetTablesResponse{Tables: result.Tables, Message: result.Message})
}
