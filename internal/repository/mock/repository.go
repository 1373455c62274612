package mock

import (
	"context"

	"github.com/scifair/fairjudge/internal/models"
	"github.com/scifair/fairjudge/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ListProjectsError = errors.New("database error")
//	svc := services.NewResultsService(log, mockRepo, cfg)
//	_, err := svc.Leaderboard(ctx)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Project Errors =====
	ListProjectsError             error
	GetProjectError               error
	GetProjectByRegistrationError error
	CreateProjectError            error
	UpdateProjectError            error
	DeleteProjectError            error
	SetOverrideScoreError         error
	ApplyPublishError             error

	// ===== Judge Errors =====
	ListJudgesError  error
	GetJudgeError    error
	CreateJudgeError error
	UpdateJudgeError error
	DeleteJudgeError error

	// ===== Assignment Errors =====
	ListAssignmentsError        error
	ListProjectAssignmentsError error
	ListJudgeAssignmentsError   error
	GetAssignmentError          error
	CreateAssignmentError       error
	SaveScoreError              error
	ArchiveAssignmentError      error
	DeleteAssignmentError       error

	// ===== Settings Errors =====
	GetSettingError   error
	SetSettingError   error
	GetFairStatsError error
	ClearTableError   error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Project Methods =====

func (m *Repository) ListProjects(ctx context.Context) ([]models.Project, error) {
	if m.ListProjectsError != nil {
		return nil, m.ListProjectsError
	}
	return m.FullRepository.ListProjects(ctx)
}

func (m *Repository) GetProject(ctx context.Context, id int) (*models.Project, error) {
	if m.GetProjectError != nil {
		return nil, m.GetProjectError
	}
	return m.FullRepository.GetProject(ctx, id)
}

func (m *Repository) GetProjectByRegistration(ctx context.Context, regNumber string) (*models.Project, error) {
	if m.GetProjectByRegistrationError != nil {
		return nil, m.GetProjectByRegistrationError
	}
	return m.FullRepository.GetProjectByRegistration(ctx, regNumber)
}

func (m *Repository) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	if m.CreateProjectError != nil {
		return 0, m.CreateProjectError
	}
	return m.FullRepository.CreateProject(ctx, p)
}

func (m *Repository) UpdateProject(ctx context.Context, p *models.Project) error {
	if m.UpdateProjectError != nil {
		return m.UpdateProjectError
	}
	return m.FullRepository.UpdateProject(ctx, p)
}

func (m *Repository) DeleteProject(ctx context.Context, id int) error {
	if m.DeleteProjectError != nil {
		return m.DeleteProjectError
	}
	return m.FullRepository.DeleteProject(ctx, id)
}

func (m *Repository) SetOverrideScore(ctx context.Context, projectID int, score *float64) error {
	if m.SetOverrideScoreError != nil {
		return m.SetOverrideScoreError
	}
	return m.FullRepository.SetOverrideScore(ctx, projectID, score)
}

func (m *Repository) ApplyPublish(ctx context.Context, promote []int, to models.CompetitionLevel, eliminate []int, finalize []int) error {
	if m.ApplyPublishError != nil {
		return m.ApplyPublishError
	}
	return m.FullRepository.ApplyPublish(ctx, promote, to, eliminate, finalize)
}

// ===== Judge Methods =====

func (m *Repository) ListJudges(ctx context.Context) ([]models.Judge, error) {
	if m.ListJudgesError != nil {
		return nil, m.ListJudgesError
	}
	return m.FullRepository.ListJudges(ctx)
}

func (m *Repository) GetJudge(ctx context.Context, id int) (*models.Judge, error) {
	if m.GetJudgeError != nil {
		return nil, m.GetJudgeError
	}
	return m.FullRepository.GetJudge(ctx, id)
}

func (m *Repository) CreateJudge(ctx context.Context, j *models.Judge) (int64, error) {
	if m.CreateJudgeError != nil {
		return 0, m.CreateJudgeError
	}
	return m.FullRepository.CreateJudge(ctx, j)
}

func (m *Repository) UpdateJudge(ctx context.Context, j *models.Judge) error {
	if m.UpdateJudgeError != nil {
		return m.UpdateJudgeError
	}
	return m.FullRepository.UpdateJudge(ctx, j)
}

func (m *Repository) DeleteJudge(ctx context.Context, id int) error {
	if m.DeleteJudgeError != nil {
		return m.DeleteJudgeError
	}
	return m.FullRepository.DeleteJudge(ctx, id)
}

// ===== Assignment Methods =====

func (m *Repository) ListAssignments(ctx context.Context) ([]models.JudgeAssignment, error) {
	if m.ListAssignmentsError != nil {
		return nil, m.ListAssignmentsError
	}
	return m.FullRepository.ListAssignments(ctx)
}

func (m *Repository) ListProjectAssignments(ctx context.Context, projectID int) ([]models.JudgeAssignment, error) {
	if m.ListProjectAssignmentsError != nil {
		return nil, m.ListProjectAssignmentsError
	}
	return m.FullRepository.ListProjectAssignments(ctx, projectID)
}

func (m *Repository) ListJudgeAssignments(ctx context.Context, judgeID int) ([]models.JudgeAssignment, error) {
	if m.ListJudgeAssignmentsError != nil {
		return nil, m.ListJudgeAssignmentsError
	}
	return m.FullRepository.ListJudgeAssignments(ctx, judgeID)
}

func (m *Repository) GetAssignment(ctx context.Context, id int) (*models.JudgeAssignment, error) {
	if m.GetAssignmentError != nil {
		return nil, m.GetAssignmentError
	}
	return m.FullRepository.GetAssignment(ctx, id)
}

func (m *Repository) CreateAssignment(ctx context.Context, projectID, judgeID int, section models.Section) (int64, error) {
	if m.CreateAssignmentError != nil {
		return 0, m.CreateAssignmentError
	}
	return m.FullRepository.CreateAssignment(ctx, projectID, judgeID, section)
}

func (m *Repository) SaveScore(ctx context.Context, id int, score float64, breakdown map[int]float64, comments, recommendations string, status models.AssignmentStatus) error {
	if m.SaveScoreError != nil {
		return m.SaveScoreError
	}
	return m.FullRepository.SaveScore(ctx, id, score, breakdown, comments, recommendations, status)
}

func (m *Repository) ArchiveAssignment(ctx context.Context, id int) error {
	if m.ArchiveAssignmentError != nil {
		return m.ArchiveAssignmentError
	}
	return m.FullRepository.ArchiveAssignment(ctx, id)
}

func (m *Repository) DeleteAssignment(ctx context.Context, id int) error {
	if m.DeleteAssignmentError != nil {
		return m.DeleteAssignmentError
	}
	return m.FullRepository.DeleteAssignment(ctx, id)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) GetFairStats(ctx context.Context) (map[string]interface{}, error) {
	if m.GetFairStatsError != nil {
		return nil, m.GetFairStatsError
	}
	return m.FullRepository.GetFairStats(ctx)
}

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if m.ClearTableError != nil {
		return m.ClearTableError
	}
	return m.FullRepository.ClearTable(ctx, table)
}
