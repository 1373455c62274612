package services

import (
	"context"
	"strings"

	"github.com/scifair/fairjudge/internal/errors"
	"github.com/scifair/fairjudge/internal/logger"
	"github.com/scifair/fairjudge/internal/models"
	"github.com/scifair/fairjudge/internal/repository"
	"github.com/scifair/fairjudge/internal/scoring"
)

// Broadcaster defines the interface for pushing live updates to clients
type Broadcaster interface {
	BroadcastLeaderboardChanged(level models.CompetitionLevel)
	BroadcastResultsPublished(level models.CompetitionLevel, promoted, eliminated int)
}

// JudgingServiceRepository defines the repository methods needed by JudgingService
type JudgingServiceRepository interface {
	repository.AssignmentRepository
	repository.ProjectRepository
	repository.JudgeRepository
}

// JudgingService handles judges, their assignments, and score submission
type JudgingService struct {
	log         logger.Logger
	repo        JudgingServiceRepository
	settings    SettingsServicer
	broadcaster Broadcaster
}

// NewJudgingService creates a new JudgingService
func NewJudgingService(log logger.Logger, repo JudgingServiceRepository, settings SettingsServicer) *JudgingService {
	return &JudgingService{log: log, repo: repo, settings: settings}
}

// SetBroadcaster sets the broadcaster for live leaderboard updates
func (s *JudgingService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// ==================== Judge Methods ====================

// ListJudges returns all judges
func (s *JudgingService) ListJudges(ctx context.Context) ([]models.Judge, error) {
	return s.repo.ListJudges(ctx)
}

// GetJudge retrieves a judge by ID
func (s *JudgingService) GetJudge(ctx context.Context, id int) (*models.Judge, error) {
	return s.repo.GetJudge(ctx, id)
}

// CreateJudge creates a new judge. Coordinators must name a valid
// coordinated category; plain judges must not.
func (s *JudgingService) CreateJudge(ctx context.Context, judge models.Judge) (*models.Judge, error) {
	if err := validateJudge(&judge); err != nil {
		return nil, err
	}
	id, err := s.repo.CreateJudge(ctx, &judge)
	if err != nil {
		return nil, err
	}
	judge.ID = int(id)
	s.log.Info("Judge created", "id", judge.ID, "name", judge.Name, "role", judge.Role)
	return &judge, nil
}

// UpdateJudge updates a judge
func (s *JudgingService) UpdateJudge(ctx context.Context, judge models.Judge) error {
	if err := validateJudge(&judge); err != nil {
		return err
	}
	return s.repo.UpdateJudge(ctx, &judge)
}

// DeleteJudge removes a judge; the repository archives their active assignments
func (s *JudgingService) DeleteJudge(ctx context.Context, id int) error {
	return s.repo.DeleteJudge(ctx, id)
}

func validateJudge(judge *models.Judge) error {
	if strings.TrimSpace(judge.Name) == "" {
		return errors.Validation("judge name is required")
	}
	if judge.Role == "" {
		judge.Role = models.RoleJudge
	}
	switch judge.Role {
	case models.RoleJudge:
		judge.CoordinatedCategory = ""
	case models.RoleCoordinator:
		if !ValidCategory(judge.CoordinatedCategory) {
			return errors.Validationf("coordinator must name a valid category, got %q", judge.CoordinatedCategory)
		}
	default:
		return errors.Validationf("unknown judge role %q", judge.Role)
	}
	return nil
}

// ==================== Assignment Methods ====================

// ListProjectAssignments returns all assignments for a project, archived included
func (s *JudgingService) ListProjectAssignments(ctx context.Context, projectID int) ([]models.JudgeAssignment, error) {
	return s.repo.ListProjectAssignments(ctx, projectID)
}

// ListJudgeAssignments returns a judge's active worklist
func (s *JudgingService) ListJudgeAssignments(ctx context.Context, judgeID int) ([]models.JudgeAssignment, error) {
	return s.repo.ListJudgeAssignments(ctx, judgeID)
}

// AssignJudge gives a judge one section of one project to score. A judge
// can hold at most one active assignment per project section.
func (s *JudgingService) AssignJudge(ctx context.Context, projectID, judgeID int, section models.Section) (int64, error) {
	if !section.Valid() {
		return 0, ErrInvalidSection
	}
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return 0, err
	}
	if _, err := s.repo.GetJudge(ctx, judgeID); err != nil {
		return 0, err
	}

	existing, err := s.repo.ListProjectAssignments(ctx, projectID)
	if err != nil {
		return 0, err
	}
	for _, a := range existing {
		if a.Active() && a.JudgeID == judgeID && a.Section == section {
			return 0, ErrDuplicateAssignment
		}
	}

	id, err := s.repo.CreateAssignment(ctx, projectID, judgeID, section)
	if err != nil {
		return 0, err
	}
	s.log.Info("Judge assigned", "assignment_id", id, "project_id", projectID, "judge_id", judgeID, "section", section)
	return id, nil
}

// Reassign hands an assignment to a different judge. The old row is archived,
// never deleted, so prior scores stay on record.
func (s *JudgingService) Reassign(ctx context.Context, assignmentID, newJudgeID int) (int64, error) {
	assignment, err := s.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return 0, err
	}
	if !assignment.Active() {
		return 0, ErrAssignmentArchived
	}
	if _, err := s.repo.GetJudge(ctx, newJudgeID); err != nil {
		return 0, err
	}

	if err := s.repo.ArchiveAssignment(ctx, assignmentID); err != nil {
		return 0, err
	}
	id, err := s.repo.CreateAssignment(ctx, assignment.ProjectID, newJudgeID, assignment.Section)
	if err != nil {
		return 0, err
	}

	s.log.Info("Assignment reassigned", "old_id", assignmentID, "new_id", id, "judge_id", newJudgeID)
	s.broadcastLeaderboard(ctx, assignment.ProjectID)
	return id, nil
}

// ArchiveAssignment retires an assignment without a replacement
func (s *JudgingService) ArchiveAssignment(ctx context.Context, assignmentID int) error {
	if err := s.repo.ArchiveAssignment(ctx, assignmentID); err != nil {
		return err
	}
	assignment, err := s.repo.GetAssignment(ctx, assignmentID)
	if err == nil {
		s.broadcastLeaderboard(ctx, assignment.ProjectID)
	}
	return nil
}

// ==================== Scoring Methods ====================

// SaveDraft stores a judge's partial score sheet without completing it
func (s *JudgingService) SaveDraft(ctx context.Context, assignmentID int, breakdown map[int]float64, comments, recommendations string) error {
	return s.saveScore(ctx, assignmentID, breakdown, comments, recommendations, models.StatusInProgress)
}

// SubmitScore completes a judge's score sheet. Completed sheets are final:
// later changes require a coordinator arbitration submission.
func (s *JudgingService) SubmitScore(ctx context.Context, assignmentID int, breakdown map[int]float64, comments, recommendations string) error {
	if err := s.saveScore(ctx, assignmentID, breakdown, comments, recommendations, models.StatusCompleted); err != nil {
		return err
	}

	assignment, err := s.repo.GetAssignment(ctx, assignmentID)
	if err == nil {
		s.log.Info("Score submitted", "assignment_id", assignmentID, "project_id", assignment.ProjectID, "score", *assignment.Score)
		s.broadcastLeaderboard(ctx, assignment.ProjectID)
	}
	return nil
}

func (s *JudgingService) saveScore(ctx context.Context, assignmentID int, breakdown map[int]float64, comments, recommendations string, status models.AssignmentStatus) error {
	assignment, err := s.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if !assignment.Active() {
		return ErrAssignmentArchived
	}
	if assignment.Completed() {
		return ErrAssignmentCompleted
	}
	if err := scoring.ValidateBreakdown(assignment.Section, breakdown); err != nil {
		return err
	}

	total := scoring.BreakdownTotal(breakdown)
	return s.repo.SaveScore(ctx, assignmentID, total, breakdown, comments, recommendations, status)
}

// SubmitArbitration records a coordinator's definitive score for a flagged
// section. It is stored as an ordinary completed assignment with the
// coordinator as judge; the aggregator treats it as authoritative.
func (s *JudgingService) SubmitArbitration(ctx context.Context, projectID, judgeID int, section models.Section, breakdown map[int]float64, comments string) (int64, error) {
	if !section.Valid() {
		return 0, ErrInvalidSection
	}
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	judge, err := s.repo.GetJudge(ctx, judgeID)
	if err != nil {
		return 0, err
	}
	if judge.Role != models.RoleCoordinator || judge.CoordinatedCategory != project.Category {
		return 0, ErrNotCoordinator
	}
	if err := scoring.ValidateBreakdown(section, breakdown); err != nil {
		return 0, err
	}

	id, err := s.repo.CreateAssignment(ctx, projectID, judgeID, section)
	if err != nil {
		return 0, err
	}
	total := scoring.BreakdownTotal(breakdown)
	if err := s.repo.SaveScore(ctx, int(id), total, breakdown, comments, "", models.StatusCompleted); err != nil {
		return 0, err
	}

	s.log.Info("Arbitration score recorded", "project_id", projectID, "coordinator_id", judgeID, "section", section, "score", total)
	s.broadcastLeaderboard(ctx, projectID)
	return id, nil
}

// broadcastLeaderboard notifies clients that scores changed, unless live
// updates are switched off in settings
func (s *JudgingService) broadcastLeaderboard(ctx context.Context, projectID int) {
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
