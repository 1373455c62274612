package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger) // Custom conditional HTTP logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Registration (public)
	r.Get("/api/projects", h.handleListProjects)
	r.Post("/api/projects", h.handleRegisterProject)
	r.Get("/api/projects/registration/{regNumber}", h.handleGetProjectByRegistration)
	r.Get("/api/projects/{id}", h.handleGetProject)
	r.Get("/api/projects/{id}/card", h.handleProjectCard)
	r.Get("/api/projects/{id}/score", h.handleGetProjectScore)
	r.Get("/api/categories", h.handleGetCategories)
	r.Get("/api/score-sheet", h.handleGetScoreSheet)
	r.Get("/api/rankings", h.handleGetRankings)
	r.Get("/api/registration-status", h.handleGetRegistrationStatus)

	// Auth routes (public)
	r.Post("/api/admin/login", h.handleLogin)
	r.Post("/api/admin/logout", h.handleLogout)
	r.Get("/api/admin/session", h.handleAuthCheck)

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		// Projects
		r.Put("/api/admin/projects/{id}", h.handleUpdateProject)
		r.Delete("/api/admin/projects/{id}", h.handleDeleteProject)

		// Judges
		r.Get("/api/admin/judges", h.handleGetJudges)
		r.Post("/api/admin/judges", h.handleCreateJudge)
		r.Get("/api/admin/judges/{id}", h.handleGetJudge)
		r.Put("/api/admin/judges/{id}", h.handleUpdateJudge)
		r.Delete("/api/admin/judges/{id}", h.handleDeleteJudge)
		r.Get("/api/admin/judges/{id}/assignments", h.handleGetJudgeAssignments)

		// Assignments & Scoring
		r.Get("/api/admin/projects/{id}/assignments", h.handleGetProjectAssignments)
		r.Post("/api/admin/assignments", h.handleCreateAssignment)
		r.Post("/api/admin/assignments/{id}/reassign", h.handleReassign)
		r.Delete("/api/admin/assignments/{id}", h.handleArchiveAssignment)
		r.Put("/api/admin/assignments/{id}/draft", h.handleSaveDraft)
		r.Post("/api/admin/assignments/{id}/score", h.handleSubmitScore)

		// Arbitration
		r.Get("/api/admin/arbitration-queue", h.handleGetArbitrationQueue)
		r.Post("/api/admin/arbitration", h.handleSubmitArbitration)

		// Publish
		r.Get("/api/admin/ties", h.handleGetTies)
		r.Post("/api/admin/publish/preview", h.handlePublishPreview)
		r.Post("/api/admin/publish", h.handlePublish)
		r.Post("/api/admin/resolve-tie", h.handleResolveTie)
		r.Post("/api/admin/push-national", h.handlePushToNational)

		// Stats
		r.Get("/api/admin/stats", h.handleGetStats)

		// Registration Control
		r.Post("/api/admin/registration-status", h.handleSetRegistrationStatus)
		r.Post("/api/admin/deadline", h.handleSetDeadline)

		// Settings
		r.Get("/api/admin/settings", h.handleGetSettings)
		r.Post("/api/admin/settings", h.handleUpdateSettings)
		r.Put("/api/admin/settings", h.handleUpdateSettings)

		// Database Management
		r.Post("/api/admin/reset-database", h.handleResetDatabase)
	})

	return r
}
