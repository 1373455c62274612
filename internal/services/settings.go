package services

import (
	"context"
	"time"

	"github.com/scifair/fairjudge/internal/logger"
	"github.com/scifair/fairjudge/internal/repository"
)

// SettingsService handles settings-related business logic
type SettingsService struct {
	log  logger.Logger
	repo repository.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// IsRegistrationOpen checks if project registration is currently open
func (s *SettingsService) IsRegistrationOpen(ctx context.Context) (bool, error) {
	value, err := s.repo.GetSetting(ctx, "registration_open")
	if err != nil {
		if err == repository.ErrNotFound {
			return true, nil // Default to open if setting doesn't exist
		}
		return false, err // Propagate database errors
	}
	return value == "true", nil
}

// SetRegistrationOpen sets the registration open status
func (s *SettingsService) SetRegistrationOpen(ctx context.Context, open bool) error {
	value := "false"
	if open {
		value = "true"
	}
	return s.repo.SetSetting(ctx, "registration_open", value)
}

// OpenRegistration opens project registration
func (s *SettingsService) OpenRegistration(ctx context.Context) error {
	return s.SetRegistrationOpen(ctx, true)
}

// CloseRegistration closes project registration and clears the deadline
func (s *SettingsService) CloseRegistration(ctx context.Context) error {
	if err := s.SetRegistrationOpen(ctx, false); err != nil {
		return err
	}
	s.repo.SetSetting(ctx, "submission_deadline", "")
	return nil
}

// GetUpstreamURL returns the configured national portal URL
func (s *SettingsService) GetUpstreamURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, "upstream_url")
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil // No default - setting not yet configured
		}
		return "", err
	}
	return value, nil
}

// SetUpstreamURL saves the national portal URL
func (s *SettingsService) SetUpstreamURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, "upstream_url", url)
}

// GetPublicURL returns the public frontend URL used on registration cards
func (s *SettingsService) GetPublicURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, "public_url")
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// SetPublicURL saves the public frontend URL
func (s *SettingsService) SetPublicURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, "public_url", url)
}

// GetSetting retrieves an arbitrary setting
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// GetSubmissionDeadline returns the registration deadline, or the zero time
// when none is set
func (s *SettingsService) GetSubmissionDeadline(ctx context.Context) (time.Time, error) {
	value, err := s.repo.GetSetting(ctx, "submission_deadline")
	if err != nil {
		if err == repository.ErrNotFound {
			return time.Time{}, nil // No deadline set
		}
		return time.Time{}, err
	}
	deadline, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, nil // Invalid value, treat as no deadline
	}
	return deadline, nil
}

// SetSubmissionDeadline sets the registration deadline
func (s *SettingsService) SetSubmissionDeadline(ctx context.Context, deadline time.Time) error {
	return s.repo.SetSetting(ctx, "submission_deadline", deadline.Format(time.RFC3339))
}

// LiveUpdatesEnabled checks if websocket leaderboard updates are enabled
func (s *SettingsService) LiveUpdatesEnabled(ctx context.Context) (bool, error) {
	value, err := s.repo.GetSetting(ctx, "live_updates")
	if err != nil {
		if err == repository.ErrNotFound {
			return true, nil // Default to enabled
		}
		return false, err
	}
	return value == "true", nil
}

// SetLiveUpdates toggles websocket leaderboard updates
func (s *SettingsService) SetLiveUpdates(ctx context.Context, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	return s.repo.SetSetting(ctx, "live_updates", value)
}

// AllSettings returns commonly used settings as a map
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	registrationOpen, _ := s.IsRegistrationOpen(ctx)
	settings["registration_open"] = registrationOpen

	upstreamURL, _ := s.GetUpstreamURL(ctx)
	settings["upstream_url"] = upstreamURL

	publicURL, _ := s.GetPublicURL(ctx)
	settings["public_url"] = publicURL

	liveUpdates, _ := s.LiveUpdatesEnabled(ctx)
	settings["live_updates"] = liveUpdates

	deadline, _ := s.GetSubmissionDeadline(ctx)
	if deadline.IsZero() {
		settings["submission_deadline"] = ""
	} else {
		settings["submission_deadline"] = deadline.Format(time.RFC3339)
	}

	return settings, nil
}

// Settings represents application settings for update operations
type Settings struct {
	UpstreamURL        string
	UpstreamUsername   string
	UpstreamPassword   string
	PublicURL          string
	RegistrationOpen   *bool
	LiveUpdates        *bool
	SubmissionDeadline string
}

// UpdateSettings updates multiple settings at once
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.UpstreamURL != "" {
		if err := s.SetUpstreamURL(ctx, settings.UpstreamURL); err != nil {
			return err
		}
	}
	if settings.UpstreamUsername != "" {
		if err := s.SetSetting(ctx, "upstream_username", settings.UpstreamUsername); err != nil {
			return err
		}
	}
	if settings.UpstreamPassword != "" {
		if err := s.SetSetting(ctx, "upstream_password", settings.UpstreamPassword); err != nil {
			return err
		}
	}
	if settings.PublicURL != "" {
		if err := s.SetPublicURL(ctx, settings.PublicURL); err != nil {
			return err
		}
	}
	if settings.RegistrationOpen != nil {
		if err := s.SetRegistrationOpen(ctx, *settings.RegistrationOpen); err != nil {
			return err
		}
	}
	if settings.LiveUpdates != nil {
		if err := s.SetLiveUpdates(ctx, *settings.LiveUpdates); err != nil {
			return err
		}
	}
	if settings.SubmissionDeadline != "" {
		deadline, err := time.Parse(time.RFC3339, settings.SubmissionDeadline)
		if err != nil {
			return &ServiceError{Message: "submission deadline must be RFC3339"}
		}
		if err := s.SetSubmissionDeadline(ctx, deadline); err != nil {
			return err
		}
	}
	return nil
}

// ResetTablesResult contains the result of a database reset
type ResetTablesResult struct {
	Tables  []string
	Message string
}

// ValidTables defines which tables can be reset
var ValidTables = map[string]bool{
	"assignments": true, "projects": true, "judges": true, "settings": true,
}

// ResetTables validates and resets the specified database tables
func (s *SettingsService) ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error) {
	if len(tables) == 0 {
		return nil, ErrNoTablesSpecified
	}

	// Validate tables
	var tablesToReset []string
	for _, table := range tables {
		if !ValidTables[table] {
			return nil, &InvalidTableError{Table: table}
		}
		tablesToReset = append(tablesToReset, table)
	}

	// Assignments reference projects and judges, so they go first whenever
	// either parent table is wiped.
	needsAssignmentsCleared := false
	for _, table := range tablesToReset {
		if table == "projects" || table == "judges" {
			needsAssignmentsCleared = true
			break
		}
	}
	if needsAssignmentsCleared && !containsTable(tablesToReset, "assignments") {
		tablesToReset = append([]string{"assignments"}, tablesToReset...)
	}

	// Close registration if projects or settings are being reset
	if containsTable(tablesToReset, "projects") || containsTable(tablesToReset, "settings") {
		s.SetRegistrationOpen(ctx, false)
	}

	// Delete data from each table
	for _, table := range tablesToReset {
		if err := s.repo.ClearTable(ctx, table); err != nil {
			return nil, err
		}
	}

	s.log.Info("Tables reset", "tables", tablesToReset)
	return &ResetTablesResult{
		Tables:  tablesToReset,
		Message: "Successfully deleted data from tables",
	}, nil
}

func containsTable(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
