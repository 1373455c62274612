package services

import (
	"context"

	"github.com/scifair/fairjudge/internal/logger"
	"github.com/scifair/fairjudge/internal/models"
	"github.com/scifair/fairjudge/internal/repository"
	"github.com/scifair/fairjudge/internal/scoring"
)

// ResultsServiceRepository defines the repository methods needed by ResultsService
type ResultsServiceRepository interface {
	repository.ProjectRepository
	repository.AssignmentRepository
	repository.JudgeRepository
	repository.SettingsRepository
}

// ResultsService computes scores, rankings, the arbitration queue and the
// tie list. Everything is derived from a fresh snapshot on each call; no
// result is ever cached or persisted.
type ResultsService struct {
	log      logger.Logger
	repo     ResultsServiceRepository
	settings SettingsServicer
	cfg      scoring.Config
}

// NewResultsService creates a new ResultsService
func NewResultsService(log logger.Logger, repo ResultsServiceRepository, settings SettingsServicer, cfg scoring.Config) *ResultsService {
	return &ResultsService{log: log, repo: repo, settings: settings, cfg: cfg}
}

// snapshot is one consistent read of everything scoring needs
type snapshot struct {
	projects    []models.Project
	assignments []models.JudgeAssignment
	judges      map[int]models.Judge
}

func (s *ResultsService) loadSnapshot(ctx context.Context) (*snapshot, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}
	judgeList, err := s.repo.ListJudges(ctx)
	if err != nil {
		return nil, err
	}

	judges := make(map[int]models.Judge, len(judgeList))
	for _, j := range judgeList {
		judges[j.ID] = j
	}
	return &snapshot{projects: projects, assignments: assignments, judges: judges}, nil
}

// candidates filters a snapshot to the non-eliminated projects at the level
// inside the scope
func (snap *snapshot) candidates(level models.CompetitionLevel, scope scoring.Scope) []models.Project {
	var out []models.Project
	for _, p := range snap.projects {
		if p.CurrentLevel != level || p.IsEliminated || !scope.Contains(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ProjectScoreResult is a project's score with its arbitration flags
type ProjectScoreResult struct {
	Project models.Project                `json:"project"`
	Score   scoring.ProjectScoreBreakdown `json:"score"`
	Flags   []scoring.ArbitrationFlag     `json:"flags,omitempty"`
}

// ProjectScore computes one project's authoritative score and breakdown
func (s *ResultsService) ProjectScore(ctx context.Context, projectID int) (*ProjectScoreResult, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.ListProjectAssignments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	judgeList, err := s.repo.ListJudges(ctx)
	if err != nil {
		return nil, err
	}
	judges := make(map[int]models.Judge, len(judgeList))
	for _, j := range judgeList {
		judges[j.ID] = j
	}

	return &ProjectScoreResult{
		Project: *project,
		Score:   scoring.ComputeProjectScoreBreakdown(*project, assignments, judges, s.cfg),
		Flags:   scoring.DetectArbitration(*project, assignments, judges, s.cfg),
	}, nil
}

// Rankings computes the leaderboard for a level and scope: every fully
// judged project ranked within its category, plus the geographic rollups.
func (s *ResultsService) Rankings(ctx context.Context, level models.CompetitionLevel, scope scoring.Scope) (*scoring.RankingData, error) {
	if !level.Valid() {
		return nil, ErrInvalidLevel
	}
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	ranking := scoring.ComputeRankings(snap.candidates(level, scope), snap.assignments, snap.judges, s.cfg)
	return &ranking, nil
}

// ArbitrationItem is one project awaiting a coordinator's definitive score
type ArbitrationItem struct {
	Project models.Project            `json:"project"`
	Flags   []scoring.ArbitrationFlag `json:"flags"`
}

// ArbitrationQueue lists the in-scope projects with unresolved arbitration
// flags, for the coordinator dashboard
func (s *ResultsService) ArbitrationQueue(ctx context.Context, scope scoring.Scope) ([]ArbitrationItem, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	var queue []ArbitrationItem
	for _, p := range snap.projects {
		if p.IsEliminated || !scope.Contains(p) {
			continue
		}
		flags := scoring.DetectArbitration(p, snap.assignments, snap.judges, s.cfg)
		if len(flags) > 0 {
			queue = append(queue, ArbitrationItem{Project: p, Flags: flags})
		}
	}
	return queue, nil
}

// ListTies returns the blocking ties for a level and scope: groups of fully
// judged projects sharing a category score at a promoted rank
func (s *ResultsService) ListTies(ctx context.Context, level models.CompetitionLevel, scope scoring.Scope) ([]scoring.TieGroup, error) {
	if !level.Valid() {
		return nil, ErrInvalidLevel
	}
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return scoring.DetectBlockingTies(snap.candidates(level, scope), snap.assignments, snap.judges, s.cfg), nil
}

// ScoreSheet returns the static judging rubric for the frontend
func (s *ResultsService) ScoreSheet() []scoring.SheetSection {
	return scoring.ScoreSheet()
}

// GetStats retrieves fair statistics including registration status
func (s *ResultsService) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := s.repo.GetFairStats(ctx)
	if err != nil {
		return nil, err
	}

	// Add registration status
	if s.settings != nil {
		open, _ := s.settings.IsRegistrationOpen(ctx)
		stats["registration_open"] = open
	}

	return stats, nil
}
