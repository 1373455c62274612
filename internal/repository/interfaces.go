package repository

import (
	"context"

	"github.com/scifair/fairjudge/internal/models"
)

// ProjectRepository defines project data operations
type ProjectRepository interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id int) (*models.Project, error)
	GetProjectByRegistration(ctx context.Context, regNumber string) (*models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) (int64, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id int) error
	SetOverrideScore(ctx context.Context, projectID int, score *float64) error
	ApplyPublish(ctx context.Context, promote []int, to models.CompetitionLevel, eliminate []int, finalize []int) error
}

// JudgeRepository defines judge data operations
type JudgeRepository interface {
	ListJudges(ctx context.Context) ([]models.Judge, error)
	GetJudge(ctx context.Context, id int) (*models.Judge, error)
	CreateJudge(ctx context.Context, j *models.Judge) (int64, error)
	UpdateJudge(ctx context.Context, j *models.Judge) error
	DeleteJudge(ctx context.Context, id int) error
}

// AssignmentRepository defines judging assignment data operations
type AssignmentRepository interface {
	ListAssignments(ctx context.Context) ([]models.JudgeAssignment, error)
	ListProjectAssignments(ctx context.Context, projectID int) ([]models.JudgeAssignment, error)
	ListJudgeAssignments(ctx context.Context, judgeID int) ([]models.JudgeAssignment, error)
	GetAssignment(ctx context.Context, id int) (*models.JudgeAssignment, error)
	CreateAssignment(ctx context.Context, projectID, judgeID int, section models.Section) (int64, error)
	SaveScore(ctx context.Context, id int, score float64, breakdown map[int]float64, comments, recommendations string, status models.AssignmentStatus) error
	ArchiveAssignment(ctx context.Context, id int) error
	DeleteAssignment(ctx context.Context, id int) error
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetFairStats(ctx context.Context) (map[string]interface{}, error)
	ClearTable(ctx context.Context, table string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	ProjectRepository
	JudgeRepository
	AssignmentRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
