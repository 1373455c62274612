package services

import (
	"context"
	"time"

	"github.com/scifair/fairjudge/internal/models"
	"github.com/scifair/fairjudge/internal/scoring"
)

// ProjectServicer defines the interface for project operations
type ProjectServicer interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListProjectsInScope(ctx context.Context, level models.CompetitionLevel, scope scoring.Scope) ([]models.Project, error)
	GetProject(ctx context.Context, id int) (*models.Project, error)
	GetProjectByRegistration(ctx context.Context, regNumber string) (*models.Project, error)
	RegisterProject(ctx context.Context, input ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, id int, input ProjectInput) error
	DeleteProject(ctx context.Context, id int) error
	RegistrationCard(ctx context.Context, id int) ([]byte, error)
}

// JudgingServicer defines the interface for judge and assignment operations
type JudgingServicer interface {
	ListJudges(ctx context.Context) ([]models.Judge, error)
	GetJudge(ctx context.Context, id int) (*models.Judge, error)
	CreateJudge(ctx context.Context, judge models.Judge) (*models.Judge, error)
	UpdateJudge(ctx context.Context, judge models.Judge) error
	DeleteJudge(ctx context.Context, id int) error
	ListProjectAssignments(ctx context.Context, projectID int) ([]models.JudgeAssignment, error)
	ListJudgeAssignments(ctx context.Context, judgeID int) ([]models.JudgeAssignment, error)
	AssignJudge(ctx context.Context, projectID, judgeID int, section models.Section) (int64, error)
	Reassign(ctx context.Context, assignmentID, newJudgeID int) (int64, error)
	ArchiveAssignment(ctx context.Context, assignmentID int) error
	SaveDraft(ctx context.Context, assignmentID int, breakdown map[int]float64, comments, recommendations string) error
	SubmitScore(ctx context.Context, assignmentID int, breakdown map[int]float64, comments, recommendations string) error
	SubmitArbitration(ctx context.Context, projectID, judgeID int, section models.Section, breakdown map[int]float64, comments string) (int64, error)
	SetBroadcaster(b Broadcaster)
}

// ResultsServicer defines the interface for results operations
type ResultsServicer interface {
	ProjectScore(ctx context.Context, projectID int) (*ProjectScoreResult, error)
	Rankings(ctx context.Context, level models.CompetitionLevel, scope scoring.Scope) (*scoring.RankingData, error)
	ArbitrationQueue(ctx context.Context, scope scoring.Scope) ([]ArbitrationItem, error)
	ListTies(ctx context.Context, level models.CompetitionLevel, scope scoring.Scope) ([]scoring.TieGroup, error)
	ScoreSheet() []scoring.SheetSection
	GetStats(ctx context.Context) (map[string]interface{}, error)
}

// PromotionServicer defines the interface for publish operations
type PromotionServicer interface {
	Preview(ctx context.Context, level models.CompetitionLevel, scope scoring.Scope) (*PublishPreview, error)
	Publish(ctx context.Context, level models.CompetitionLevel, scope scoring.Scope) (*PublishResult, error)
	ResolveTie(ctx context.Context, projectID int, score *float64) error
	PushToNational(ctx context.Context, portalURL string) (*UpstreamPushResult, error)
	SetBroadcaster(b Broadcaster)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	IsRegistrationOpen(ctx context.Context) (bool, error)
	SetRegistrationOpen(ctx context.Context, open bool) error
	OpenRegistration(ctx context.Context) error
	CloseRegistration(ctx context.Context) error
	GetUpstreamURL(ctx context.Context) (string, error)
	SetUpstreamURL(ctx context.Context, url string) error
	GetPublicURL(ctx context.Context) (string, error)
	SetPublicURL(ctx context.Context, url string) error
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetSubmissionDeadline(ctx context.Context) (time.Time, error)
	SetSubmissionDeadline(ctx context.Context, deadline time.Time) error
	LiveUpdatesEnabled(ctx context.Context) (bool, error)
	SetLiveUpdates(ctx context.Context, enabled bool) error
	AllSettings(ctx context.Context) (map[string]interface{}, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error)
}

// Ensure concrete types implement interfaces
var (
	_ ProjectServicer   = (*ProjectService)(nil)
	_ JudgingServicer   = (*JudgingService)(nil)
	_ ResultsServicer   = (*ResultsService)(nil)
	_ PromotionServicer = (*PromotionService)(nil)
	_ SettingsServicer  = (*SettingsService)(nil)
)
