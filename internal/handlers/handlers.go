package handlers

import (
	"github.com/scifair/fairjudge/internal/auth"
	"github.com/scifair/fairjudge/internal/services"
	"github.com/scifair/fairjudge/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Project   services.ProjectServicer
	Judging   services.JudgingServicer
	Results   services.ResultsServicer
	Promotion services.PromotionServicer
	Settings  services.SettingsServicer
	Auth      *auth.Auth
	Hub       *websocket.Hub
	Log       HTTPLogger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	project services.ProjectServicer,
	judging services.JudgingServicer,
	results services.ResultsServicer,
	promotion services.PromotionServicer,
	settings services.SettingsServicer,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Project:   project,
		Judging:   judging,
		Results:   results,
		Promotion: promotion,
		Settings:  settings,
		Auth:      adminAuth,
		Hub:       hub,
		Log:       log,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance with a known admin password and
// no websocket hub
func NewForTesting(
	project services.ProjectServicer,
	judging services.JudgingServicer,
	results services.ResultsServicer,
	promotion services.PromotionServicer,
	settings services.SettingsServicer,
) *Handlers {
	return &Handlers{
		Project:   project,
		Judging:   judging,
		Results:   results,
		Promotion: promotion,
		Settings:  settings,
		Auth:      auth.New("test-password"),
		Log:       NoopHTTPLogger{},
	}
}
