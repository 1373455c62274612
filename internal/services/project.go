package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/scifair/fairjudge/internal/errors"
	"github.com/scifair/fairjudge/internal/logger"
	"github.com/scifair/fairjudge/internal/models"
	"github.com/scifair/fairjudge/internal/repository"
	"github.com/scifair/fairjudge/internal/scoring"
)

// categoryCodes maps each competition category to its registration-number
// prefix. The key set is the full list of valid categories.
var categoryCodes = map[string]string{
	"Agriculture":                             "AGR",
	"Behavioral Science":                      "BEH",
	"Biology and Biotechnology":               "BIO",
	"Chemistry":                               "CHM",
	"Computer Science":                        "CSC",
	"Energy and Transportation":               "ENT",
	"Engineering":                             "ENG",
	"Environmental Science and Management":    "EVS",
	"Food Technology, Textiles & Home Economics": "FTH",
	"Mathematical Science":                    "MTH",
	"Physics":                                 "PHY",
	"Robotics":                                "RBT",
	"Technology and Applied Technology":       "TEC",
}

// Categories returns the competition categories in alphabetical order.
func Categories() []string {
	names := make([]string, 0, len(categoryCodes))
	for name := range categoryCodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidCategory reports whether name is a competition category.
func ValidCategory(name string) bool {
	_, ok := categoryCodes[name]
	return ok
}

// ProjectServiceRepository defines the repository methods needed by ProjectService
type ProjectServiceRepository interface {
	repository.ProjectRepository
	repository.AssignmentRepository
	repository.SettingsRepository
}

// ProjectService handles project registration and management
type ProjectService struct {
	log       logger.Logger
	repo      ProjectServiceRepository
	publicURL string
	now       func() time.Time // for testing: defaults to time.Now
}

// NewProjectService creates a new ProjectService. publicURL is the address
// the frontend is served from; registration-card QR codes link into it.
func NewProjectService(log logger.Logger, repo ProjectServiceRepository, publicURL string) *ProjectService {
	return &ProjectService{log: log, repo: repo, publicURL: publicURL, now: time.Now}
}

// SetClock sets a custom clock (for testing)
func (s *ProjectService) SetClock(now func() time.Time) {
	s.now = now
}

// ProjectInput carries the patron-editable fields of a project.
type ProjectInput struct {
	Title              string   `json:"title"`
	Category           string   `json:"category"`
	RegistrationNumber string   `json:"registration_number"`
	School             string   `json:"school"`
	Region             string   `json:"region"`
	County             string   `json:"county"`
	SubCounty          string   `json:"sub_county"`
	Zone               string   `json:"zone"`
	Students           []string `json:"students"`
	PatronID           *int     `json:"patron_id"`
}

func (in ProjectInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.Validation("title is required")
	}
	if !ValidCategory(in.Category) {
		return errors.Validationf("unknown category %q", in.Category)
	}
	if strings.TrimSpace(in.School) == "" {
		return errors.Validation("school is required")
	}
	for _, field := range []struct{ name, value string }{
		{"region", in.Region},
		{"county", in.County},
		{"sub_county", in.SubCounty},
		{"zone", in.Zone},
	} {
		if strings.TrimSpace(field.value) == "" {
			return errors.Validationf("%s is required", field.name)
		}
	}
	return nil
}

// ListProjects returns all projects
func (s *ProjectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.repo.ListProjects(ctx)
}

// ListProjectsInScope returns the non-deleted projects at the given level
// inside the admin's geographic scope. An empty level skips the level filter.
func (s *ProjectService) ListProjectsInScope(ctx context.Context, level models.CompetitionLevel, scope scoring.Scope) ([]models.Project, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []models.Project
	for _, p := range projects {
		if level != "" && p.CurrentLevel != level {
			continue
		}
		if !scope.Contains(p) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered, nil
}

// GetProject retrieves a project by ID
func (s *ProjectService) GetProject(ctx context.Context, id int) (*models.Project, error) {
	return s.repo.GetProject(ctx, id)
}

// GetProjectByRegistration retrieves a project by registration number
func (s *ProjectService) GetProjectByRegistration(ctx context.Context, regNumber string) (*models.Project, error) {
	return s.repo.GetProjectByRegistration(ctx, regNumber)
}

// RegisterProject creates a new project at Sub-County level. Registration
// must be open and inside the submission deadline. A registration number is
// generated when the input leaves it empty.
func (s *ProjectService) RegisterProject(ctx context.Context, input ProjectInput) (*models.Project, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := s.checkRegistrationWindow(ctx); err != nil {
		return nil, err
	}

	regNumber := strings.TrimSpace(input.RegistrationNumber)
	if regNumber == "" {
		var err error
		regNumber, err = s.generateRegistrationNumber(ctx, input.Category, input.School)
		if err != nil {
			return nil, err
		}
	}

	project := &models.Project{
		Title:              strings.TrimSpace(input.Title),
		Category:           input.Category,
		RegistrationNumber: regNumber,
		School:             strings.TrimSpace(input.School),
		Region:             input.Region,
		County:             input.County,
		SubCounty:          input.SubCounty,
		Zone:               input.Zone,
		Students:           input.Students,
		PatronID:           input.PatronID,
		Status:             "Registered",
		CurrentLevel:       models.LevelSubCounty,
	}

	id, err := s.repo.CreateProject(ctx, project)
	if err != nil {
		return nil, err
	}
	project.ID = int(id)

	s.log.Info("Project registered", "id", project.ID, "registration", regNumber, "category", project.Category, "school", project.School)
	return project, nil
}

// UpdateProject applies patron edits to a project. Projects with any active
// judge assignment are locked: the score sheet is already in flight.
func (s *ProjectService) UpdateProject(ctx context.Context, id int, input ProjectInput) error {
	if err := input.validate(); err != nil {
		return err
	}

	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkUnlocked(ctx, id); err != nil {
		return err
	}

	project.Title = strings.TrimSpace(input.Title)
	project.Category = input.Category
	if reg := strings.TrimSpace(input.RegistrationNumber); reg != "" {
		project.RegistrationNumber = reg
	}
	project.School = strings.TrimSpace(input.School)
	project.Region = input.Region
	project.County = input.County
	project.SubCounty = input.SubCounty
	project.Zone = input.Zone
	project.Students = input.Students
	if input.PatronID != nil {
		project.PatronID = input.PatronID
	}

	return s.repo.UpdateProject(ctx, project)
}

// DeleteProject removes a project that has not been judged yet
func (s *ProjectService) DeleteProject(ctx context.Context, id int) error {
	if _, err := s.repo.GetProject(ctx, id); err != nil {
		return err
	}
	if err := s.checkUnlocked(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteProject(ctx, id)
}

// RegistrationCard generates the QR PNG printed on a project's registration
// card, linking to the project's public page by registration number.
func (s *ProjectService) RegistrationCard(ctx context.Context, id int) ([]byte, error) {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	baseURL := s.baseURL(ctx)
	if baseURL == "" {
		return nil, fmt.Errorf("public URL not configured")
	}

	cardURL := fmt.Sprintf("%s/projects/%s", strings.TrimSuffix(baseURL, "/"), project.RegistrationNumber)
	return qrcode.Encode(cardURL, qrcode.Medium, 256)
}

// baseURL prefers the public_url setting and falls back to the configured one
func (s *ProjectService) baseURL(ctx context.Context) string {
	if v, err := s.repo.GetSetting(ctx, "public_url"); err == nil && v != "" {
		return v
	}
	return s.publicURL
}

// checkRegistrationWindow verifies the registration_open flag and the
// optional submission deadline
func (s *ProjectService) checkRegistrationWindow(ctx context.Context) error {
	open, err := s.repo.GetSetting(ctx, "registration_open")
	if err != nil && err != repository.ErrNotFound {
		return err
	}
	if err == nil && open != "true" {
		return ErrRegistrationClosed
	}

	deadline, err := s.repo.GetSetting(ctx, "submission_deadline")
	if err != nil || deadline == "" {
		return nil // no deadline configured
	}
	t, err := time.Parse(time.RFC3339, deadline)
	if err != nil {
		return nil // unparseable value, treat as no deadline
	}
	if s.now().After(t) {
		return ErrRegistrationClosed
	}
	return nil
}

// checkUnlocked returns ErrProjectLocked once a project has active assignments
func (s *ProjectService) checkUnlocked(ctx context.Context, id int) error {
	assignments, err := s.repo.ListProjectAssignments(ctx, id)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if a.Active() {
			return ErrProjectLocked
		}
	}
	return nil
}

// generateRegistrationNumber builds "CODE-YEAR-INITIALS-N" where N counts the
// school's existing projects in the category plus one.
func (s *ProjectService) generateRegistrationNumber(ctx context.Context, category, school string) (string, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return "", err
	}

	count := 0
	for _, p := range projects {
		if strings.EqualFold(p.School, school) && p.Category == category {
			count++
		}
	}

	return fmt.Sprintf("%s-%d-%s-%d", categoryCodes[category], s.now().Year(), schoolInitials(school), count+1), nil
}

// schoolInitials returns the uppercased first letters of the school's words
func schoolInitials(school string) string {
	var initials strings.Builder
	for _, word := range strings.Fields(school) {
		r := []rune(word)
		initials.WriteString(strings.ToUpper(string(r[0])))
	}
	if initials.Len() == 0 {
		return "X"
	}
	return initials.String()
}
