package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scifair/fairjudge/internal/models"
	"github.com/scifair/fairjudge/internal/scoring"
	"github.com/scifair/fairjudge/internal/services"
)

// scopeFromQuery reads the optional geographic scope filters from the query
// string. Absent parameters widen the scope.
func scopeFromQuery(r *http.Request) scoring.Scope {
	q := r.URL.Query()
	return scoring.Scope{
		Region:    q.Get("region"),
		County:    q.Get("county"),
		SubCounty: q.Get("sub_county"),
	}
}

func projectInputFromRequest(req ProjectCreateRequest) services.ProjectInput {
	return services.ProjectInput{
		Title:              req.Title,
		Category:           req.Category,
		RegistrationNumber: req.RegistrationNumber,
		School:             req.School,
		Region:             req.Region,
		County:             req.County,
		SubCounty:          req.SubCounty,
		Zone:               req.Zone,
		Students:           req.Students,
		PatronID:           req.PatronID,
	}
}

// ==================== Project Handlers ====================

func (h *Handlers) handleListProjects(w http.ResponseWriter, r *http.Request) {
	level := models.CompetitionLevel(r.URL.Query().Get("level"))
	projects, err := h.Project.ListProjectsInScope(r.Context(), level, scopeFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, projects)
}

func (h *Handlers) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	project, err := h.Project.GetProject(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, project)
}

func (h *Handlers) handleGetProjectByRegistration(w http.ResponseWriter, r *http.Request) {
	regNumber := chi.URLParam(r, "regNumber")
	if regNumber == "" {
		respondError(w, BadRequest("Missing registration number"))
		return
	}
	project, err := h.Project.GetProjectByRegistration(r.Context(), regNumber)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, project)
}

func (h *Handlers) handleRegisterProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	project, err := h.Project.RegisterProject(r.Context(), projectInputFromRequest(req))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, project)
}

func (h *Handlers) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req ProjectUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Project.UpdateProject(r.Context(), id, projectInputFromRequest(ProjectCreateRequest(req))); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Project updated")
}

func (h *Handlers) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Project.DeleteProject(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleProjectCard serves the project's registration card as a QR PNG
func (h *Handlers) handleProjectCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.Project.RegistrationCard(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

func (h *Handlers) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	respondOK(w, services.Categories())
}
