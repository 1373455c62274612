package services_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/scifair/fairjudge/internal/errors"
	"github.com/scifair/fairjudge/internal/logger"
	"github.com/scifair/fairjudge/internal/models"
	"github.com/scifair/fairjudge/internal/scoring"
	"github.com/scifair/fairjudge/internal/services"
	"github.com/scifair/fairjudge/internal/testutil"
)

// pngMagic is the signature every valid PNG starts with
var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func fixedClock() time.Time {
	return time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
}

func projectInput() services.ProjectInput {
	return services.ProjectInput{
		Title:     "Solar Powered Egg Incubator",
		Category:  "Physics",
		School:    "Kanga High School",
		Region:    "Nyanza",
		County:    "Migori",
		SubCounty: "Rongo",
		Zone:      "Central",
		Students:  []string{"Achieng Otieno", "Brian Wafula"},
	}
}

func TestProjectService_RegisterProject_GeneratesRegistration(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	svc := services.NewProjectService(log, repo, "")
	svc.SetClock(fixedClock)
	ctx := context.Background()

	project, err := svc.RegisterProject(ctx, projectInput())
	if err != nil {
		t.Fatalf("RegisterProject failed: %v", err)
	}
	if project.ID == 0 {
		t.Error("expected a project ID")
	}
	if project.RegistrationNumber != "PHY-2026-KHS-1" {
		t.Errorf("expected registration PHY-2026-KHS-1, got %q", project.RegistrationNumber)
	}
	if project.CurrentLevel != models.LevelSubCounty {
		t.Errorf("expected Sub-County level, got %q", project.CurrentLevel)
	}

	// A second project from the same school and category gets the next number
	second, err := svc.RegisterProject(ctx, services.ProjectInput{
		Title:     "Magnetic Levitation Demo",
		Category:  "Physics",
		School:    "Kanga High School",
		Region:    "Nyanza",
		County:    "Migori",
		SubCounty: "Rongo",
		Zone:      "Central",
	})
	if err != nil {
		t.Fatalf("RegisterProject failed: %v", err)
	}
	if second.RegistrationNumber != "PHY-2026-KHS-2" {
		t.Errorf("expected registration PHY-2026-KHS-2, got %q", second.RegistrationNumber)
	}
}

func TestProjectService_RegisterProject_InvalidCategory(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	svc := services.NewProjectService(log, repo, "")
	ctx := context.Background()

	input := projectInput()
	input.Category = "Astrology"
	_, err := svc.RegisterProject(ctx, input)

	var appErr *errors.Error
	if !stderrors.As(err, &appErr) || appErr.Kind != errors.ErrValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestProjectService_RegisterProject_RegistrationClosed(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	svc := services.NewProjectService(log, repo, "")
	ctx := context.Background()

	if err := repo.SetSetting(ctx, "registration_open", "false"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	if _, err := svc.RegisterProject(ctx, projectInput()); !stderrors.Is(err, services.ErrRegistrationClosed) {
		t.Errorf("expected ErrRegistrationClosed, got %v", err)
	}
}

func TestProjectService_RegisterProject_PastDeadline(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	svc := services.NewProjectService(log, repo, "")
	svc.SetClock(fixedClock)
	ctx := context.Background()

	// Deadline before the fixed clock
	if err := repo.SetSetting(ctx, "submission_deadline", "2026-01-31T17:00:00Z"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	if _, err := svc.RegisterProject(ctx, projectInput()); !stderrors.Is(err, services.ErrRegistrationClosed) {
		t.Errorf("expected ErrRegistrationClosed, got %v", err)
	}

	// A future deadline lets registration through
	if err := repo.SetSetting(ctx, "submission_deadline", "2026-03-31T17:00:00Z"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if _, err := svc.RegisterProject(ctx, projectInput()); err != nil {
		t.Errorf("expected registration to succeed before deadline, got %v", err)
	}
}

func TestProjectService_UpdateProject_LockedOnceJudged(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	svc := services.NewProjectService(log, repo, "")
	ctx := context.Background()

	project, err := svc.RegisterProject(ctx, projectInput())
	if err != nil {
		t.Fatalf("RegisterProject failed: %v", err)
	}

	// Editable before any assignment exists
	input := projectInput()
	input.Title = "Solar Powered Egg Incubator v2"
	if err := svc.UpdateProject(ctx, project.ID, input); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}

	judgeID, err := repo.CreateJudge(ctx, &models.Judge{Name: "Grace Akinyi", School: "Moi Suba Girls", Role: models.RoleJudge})
	if err != nil {
		t.Fatalf("CreateJudge failed: %v", err)
	}
	if _, err := repo.CreateAssignment(ctx, project.ID, int(judgeID), models.SectionA); err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}

	if err := svc.UpdateProject(ctx, project.ID, input); !stderrors.Is(err, services.ErrProjectLocked) {
		t.Errorf("expected ErrProjectLocked, got %v", err)
	}
	if err := svc.DeleteProject(ctx, project.ID); !stderrors.Is(err, services.ErrProjectLocked) {
		t.Errorf("expected ErrProjectLocked on delete, got %v", err)
	}
}

func TestProjectService_RegistrationCard(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	svc := services.NewProjectService(log, repo, "https://fair.example.org")
	ctx := context.Background()

	project, err := svc.RegisterProject(ctx, projectInput())
	if err != nil {
		t.Fatalf("RegisterProject failed: %v", err)
	}

	png, err := svc.RegistrationCard(ctx, project.ID)
	if err != nil {
		t.Fatalf("RegistrationCard failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("expected a PNG image")
	}
}

func TestProjectService_RegistrationCard_NoPublicURL(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	svc := services.NewProjectService(log, repo, "")
	ctx := context.Background()

	project, err := svc.RegisterProject(ctx, projectInput())
	if err != nil {
		t.Fatalf("RegisterProject failed: %v", err)
	}

	if _, err := svc.RegistrationCard(ctx, project.ID); err == nil {
		t.Error("expected error when no public URL is configured")
	}

	// The setting takes precedence over the constructor value
	if err := repo.SetSetting(ctx, "public_url", "https://fair.example.org"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if _, err := svc.RegistrationCard(ctx, project.ID); err != nil {
		t.Errorf("expected card after setting public_url, got %v", err)
	}
}

func TestProjectService_ListProjectsInScope(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	svc := services.NewProjectService(log, repo, "")
	ctx := context.Background()

	if _, err := svc.RegisterProject(ctx, projectInput()); err != nil {
		t.Fatalf("RegisterProject failed: %v", err)
	}
	other := projectInput()
	other.Title = "Biogas From Water Hyacinth"
	other.Category = "Agriculture"
	other.SubCounty = "Awendo"
	other.School = "St. Albert Ulanda"
	if _, err := svc.RegisterProject(ctx, other); err != nil {
		t.Fatalf("RegisterProject failed: %v", err)
	}

	inScope, err := svc.ListProjectsInScope(ctx, models.LevelSubCounty, scoring.Scope{County: "Migori", SubCounty: "Rongo"})
	if err != nil {
		t.Fatalf("ListProjectsInScope failed: %v", err)
	}
	if len(inScope) != 1 || inScope[0].SubCounty != "Rongo" {
		t.Errorf("expected only the Rongo project, got %d projects", len(inScope))
	}

	// A county admin's wider scope sees both
	county, err := svc.ListProjectsInScope(ctx, models.LevelSubCounty, scoring.Scope{County: "Migori"})
	if err != nil {
		t.Fatalf("ListProjectsInScope failed: %v", err)
	}
	if len(county) != 2 {
		t.Errorf("expected 2 projects in county scope, got %d", len(county))
	}
}
