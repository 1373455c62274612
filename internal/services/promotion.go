package services

import (
	"context"
	"fmt"

	"github.com/scifair/fairjudge/internal/errors"
	"github.com/scifair/fairjudge/internal/logger"
	"github.com/scifair/fairjudge/internal/models"
	"github.com/scifair/fairjudge/internal/repository"
	"github.com/scifair/fairjudge/internal/scoring"
	"github.com/scifair/fairjudge/pkg/ksefnet"
)

// PromotionServiceRepository defines the repository methods needed by PromotionService
type PromotionServiceRepository interface {
	repository.ProjectRepository
	repository.AssignmentRepository
	repository.JudgeRepository
	repository.SettingsRepository
}

// PromotionService publishes results at a level: it verifies the publish
// preconditions, promotes the top four ranks per category, eliminates the
// rest, and resolves blocking ties through the Part A override. There is no
// undo; a publish is final.
type PromotionService struct {
	log         logger.Logger
	repo        PromotionServiceRepository
	settings    SettingsServicer
	client      ksefnet.Client
	cfg         scoring.Config
	broadcaster Broadcaster
}

// NewPromotionService creates a new PromotionService
func NewPromotionService(log logger.Logger, repo PromotionServiceRepository, settings SettingsServicer, client ksefnet.Client, cfg scoring.Config) *PromotionService {
	return &PromotionService{log: log, repo: repo, settings: settings, client: client, cfg: cfg}
}

// SetBroadcaster sets the broadcaster for publish notifications
func (s *PromotionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// PublishPreview is a dry-run publish: either the plan that would apply or
// the block preventing it
type PublishPreview struct {
	Plan   scoring.PublishPlan   `json:"plan"`
	Block  *scoring.PublishBlock `json:"block,omitempty"`
	Reason string                `json:"reason,omitempty"`
}

// PublishResult records what a publish changed
type PublishResult struct {
	Level      models.CompetitionLevel `json:"level"`
	NextLevel  models.CompetitionLevel `json:"next_level,omitempty"`
	Promoted   []int                   `json:"promoted"`
	Eliminated []int                   `json:"eliminated"`
	Finalized  []int                   `json:"finalized,omitempty"`
}

// Preview computes a publish decision without applying it
func (s *PromotionService) Preview(ctx context.Context, level models.CompetitionLevel, scope scoring.Scope) (*PublishPreview, error) {
	if !level.Valid() {
		return nil, ErrInvalidLevel
	}
	projects, assignments, judges, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	plan, block := scoring.PlanPublish(level, scope, projects, assignments, judges, s.cfg)
	preview := &PublishPreview{Plan: plan, Block: block}
	if block != nil {
		preview.Reason = block.Reason()
	}
	return preview, nil
}

// Publish applies a publish at the given level and scope. On a precondition
// failure it returns a PublishBlockedError carrying the exact block; on
// success the whole plan is applied in one repository transaction.
func (s *PromotionService) Publish(ctx context.Context, level models.CompetitionLevel, scope scoring.Scope) (*PublishResult, error) {
	if !level.Valid() {
		return nil, ErrInvalidLevel
	}
	projects, assignments, judges, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	plan, block := scoring.PlanPublish(level, scope, projects, assignments, judges, s.cfg)
	if block != nil {
		return nil, &PublishBlockedError{Block: *block}
	}

	next, _ := level.Next()
	result := &PublishResult{
		Level:      level,
		Promoted:   plan.Promote,
		Eliminated: plan.Eliminate,
	}
	if len(plan.Promote) > 0 {
		result.NextLevel = next
	}

	// At National the round closes in place: the surviving projects are
	// finalized instead of promoted.
	if plan.Finalize {
		eliminated := make(map[int]bool, len(plan.Eliminate))
		for _, id := range plan.Eliminate {
			eliminated[id] = true
		}
		for _, p := range projects {
			if p.CurrentLevel == level && !p.IsEliminated && scope.Contains(p) && !eliminated[p.ID] {
				result.Finalized = append(result.Finalized, p.ID)
			}
		}
	}

	if err := s.repo.ApplyPublish(ctx, plan.Promote, next, plan.Eliminate, result.Finalized); err != nil {
		return nil, err
	}

	s.log.Info("Results published",
		"level", level,
		"promoted", len(result.Promoted),
		"eliminated", len(result.Eliminated),
		"finalized", len(result.Finalized))
	s.broadcastPublish(ctx, level, len(result.Promoted), len(result.Eliminated))
	return result, nil
}

// ResolveTie sets or clears a project's Part A override score to break a
// blocking tie. A nil score clears the override.
func (s *PromotionService) ResolveTie(ctx context.Context, projectID int, score *float64) error {
	if score != nil {
		if err := scoring.ValidateOverrideScore(*score); err != nil {
			return err
		}
	}
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return err
	}
	if err := s.repo.SetOverrideScore(ctx, projectID, score); err != nil {
		return err
	}

	if score != nil {
		s.log.Info("Tie-break override set", "project_id", projectID, "score", *score)
	} else {
		s.log.Info("Tie-break override cleared", "project_id", projectID)
	}
	s.broadcastLeaderboard(ctx, projectID)
	return nil
}

// UpstreamPushResult contains the result of pushing promoted projects to the
// national portal
type UpstreamPushResult struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Pushed  int          `json:"pushed"`
	Skipped int          `json:"skipped"`
	Errors  int          `json:"errors"`
	Details []PushDetail `json:"details,omitempty"`
}

// PushDetail contains detail for one project's push result
type PushDetail struct {
	RegistrationNumber string `json:"registration_number"`
	Status             string `json:"status"`
	Message            string `json:"message,omitempty"`
}

// PushToNational registers the projects promoted to National on the KSEF
// portal. Projects already on the portal are skipped, so the push is safe
// to retry after a partial failure.
func (s *PromotionService) PushToNational(ctx context.Context, portalURL string) (*UpstreamPushResult, error) {
	if portalURL == "" {
		portalURL, _ = s.settings.GetUpstreamURL(ctx)
	}
	if portalURL == "" {
		return nil, errors.Precondition("national portal URL not configured")
	}
	s.client.SetBaseURL(portalURL)

	// Configure credentials for automatic authentication
	username, _ := s.repo.GetSetting(ctx, "upstream_username")
	password, _ := s.repo.GetSetting(ctx, "upstream_password")
	if username != "" && password != "" {
		s.client.SetCredentials(username, password)
	}

	// Save the portal URL for the next push
	if err := s.repo.SetSetting(ctx, "upstream_url", portalURL); err != nil {
		return nil, fmt.Errorf("failed to save portal URL: %w", err)
	}

	projects, assignments, judges, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var national []models.Project
	for _, p := range projects {
		if p.CurrentLevel == models.LevelNational && !p.IsEliminated {
			national = append(national, p)
		}
	}
	if len(national) == 0 {
		return &UpstreamPushResult{
			Status:  "success",
			Message: "No projects to push (nothing promoted to National yet)",
		}, nil
	}

	existing := make(map[string]bool)
	if entries, err := s.client.FetchEntries(ctx); err == nil {
		for _, e := range entries {
			existing[e.RegistrationNumber.String()] = true
		}
	}

	// Scores and ranks travel with the entry so regions can be compared on
	// the portal before national judging starts.
	ranking := scoring.ComputeRankings(national, assignments, judges, s.cfg)
	ranked := make(map[int]scoring.ProjectWithRank, len(ranking.ProjectsWithPoints))
	for _, p := range ranking.ProjectsWithPoints {
		ranked[p.ID] = p
	}

	s.log.Info("Pushing promoted projects to national portal", "count", len(national), "url", portalURL)

	result := &UpstreamPushResult{Status: "success"}
	for _, p := range national {
		detail := PushDetail{RegistrationNumber: p.RegistrationNumber}

		if existing[p.RegistrationNumber] {
			detail.Status = "skipped"
			detail.Message = "Already registered on the portal"
			result.Skipped++
			result.Details = append(result.Details, detail)
			continue
		}

		entry := ksefnet.ProjectEntry{
			RegistrationNumber: p.RegistrationNumber,
			Title:              p.Title,
			Category:           p.Category,
			School:             p.School,
			Region:             p.Region,
			County:             p.County,
			SubCounty:          p.SubCounty,
			Zone:               p.Zone,
			Students:           p.Students,
		}
		if r, ok := ranked[p.ID]; ok {
			entry.TotalScore = r.TotalScore
			entry.CategoryRank = r.CategoryRank
		}

		entryID, err := s.client.SubmitEntry(ctx, entry)
		if err != nil {
			s.log.Error("Error pushing project to portal",
				"registration", p.RegistrationNumber,
				"error", err)
			detail.Status = "error"
			detail.Message = err.Error()
			result.Errors++
		} else {
			s.log.Info("Pushed project to portal",
				"registration", p.RegistrationNumber,
				"entry_id", entryID)
			detail.Status = "success"
			result.Pushed++
		}
		result.Details = append(result.Details, detail)
	}

	if result.Errors > 0 {
		result.Status = "partial"
		result.Message = fmt.Sprintf("%d projects pushed, %d skipped, %d errors", result.Pushed, result.Skipped, result.Errors)
	} else if result.Skipped > 0 {
		result.Message = fmt.Sprintf("%d projects pushed, %d already on the portal", result.Pushed, result.Skipped)
	}

	return result, nil
}

// load reads the full scoring snapshot
func (s *PromotionService) load(ctx context.Context) ([]models.Project, []models.JudgeAssignment, map[int]models.Judge, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	assignments, err := s.repo.ListAssignments(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	judgeList, err := s.repo.ListJudges(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	judges := make(map[int]models.Judge, len(judgeList))
	for _, j := range judgeList {
		judges[j.ID] = j
	}
	return projects, assignments, judges, nil
}

func (s *PromotionService) broadcastPublish(ctx context.Context, level models.CompetitionLevel, promoted, eliminated int) {
	if s.broadcaster == nil {
		return
	}
	if s.settings != nil {
		if on, err := s.settings.LiveUpdatesEnabled(ctx); err == nil && !on {
			return
		}
	}
	s.broadcaster.BroadcastResultsPublished(level, promoted, eliminated)
	s.broadcaster.BroadcastLeaderboardChanged(level)
}

func (s *PromotionService) broadcastLeaderboard(ctx context.Context, projectID int) {
	if s.broadcaster == nil {
		return
	}
	if s.settings != nil {
		if on, err := s.settings.LiveUpdatesEnabled(ctx); err == nil && !on {
			return
		}
	}
	level := models.LevelSubCounty
	if project, err := s.repo.GetProject(ctx, projectID); err == nil {
		level = project.CurrentLevel
	}
	s.broadcaster.BroadcastLeaderboardChanged(level)
}
