package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scifair/fairjudge/internal/auth"
	"github.com/scifair/fairjudge/internal/handlers"
	"github.com/scifair/fairjudge/internal/logger"
	"github.com/scifair/fairjudge/internal/models"
	"github.com/scifair/fairjudge/internal/repository"
	"github.com/scifair/fairjudge/internal/scoring"
	"github.com/scifair/fairjudge/internal/services"
	"github.com/scifair/fairjudge/internal/testutil"
	"github.com/scifair/fairjudge/pkg/ksefnet"
)

type testSetup struct {
	repo     *repository.Repository
	settings *services.SettingsService
	handlers *handlers.Handlers
	router   http.Handler
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	log := logger.New()

	settingsService := services.NewSettingsService(log, repo)
	projectService := services.NewProjectService(log, repo, "")
	judgingService := services.NewJudgingService(log, repo, settingsService)
	resultsService := services.NewResultsService(log, repo, settingsService, scoring.DefaultConfig())
	promotionService := services.NewPromotionService(log, repo, settingsService, ksefnet.NewMockClient(), scoring.DefaultConfig())

	h := handlers.NewForTesting(projectService, judgingService, resultsService, promotionService, settingsService)

	return &testSetup{
		repo:     repo,
		settings: settingsService,
		handlers: h,
		router:   h.Router(),
	}
}

// do sends a JSON request through the router, attaching any cookies given
func (s *testSetup) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// login authenticates against the test admin password and returns the
// session cookie
func (s *testSetup) login(t *testing.T) *http.Cookie {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "test-password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: status %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

// assignmentBreakdown fills a section's criteria greedily until it reaches
// the target score
func assignmentBreakdown(t *testing.T, section models.Section, target float64) map[int]float64 {
	t.Helper()

	breakdown := make(map[int]float64)
	remaining := target
	for _, c := range scoring.CriteriaForSection(section) {
		if remaining <= 0 {
			break
		}
		award := c.MaxScore
		if remaining < award {
			award = remaining
		}
		steps := int(award / c.Step)
		award = float64(steps) * c.Step
		if award == 0 {
			continue
		}
		breakdown[c.ID] = award
		remaining -= award
	}
	if remaining > 1e-9 {
		t.Fatalf("cannot reach %.2f on the %s sheet", target, section)
	}
	return breakdown
}

func TestRouter_UnknownRoute(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/nonexistent", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", rec.Code)
	}
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	setup := newTestSetup(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/judges"},
		{http.MethodPost, "/api/admin/assignments"},
		{http.MethodGet, "/api/admin/arbitration-queue"},
		{http.MethodPost, "/api/admin/publish"},
		{http.MethodGet, "/api/admin/settings"},
		{http.MethodPost, "/api/admin/reset-database"},
	}

	for _, route := range protected {
		rec := setup.do(t, route.method, route.path, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without session, got %d", route.method, route.path, rec.Code)
		}

		var response map[string]interface{}
		decodeBody(t, rec, &response)
		if response["code"] != "UNAUTHORIZED" {
			t.Errorf("%s %s: expected UNAUTHORIZED code, got %v", route.method, route.path, response["code"])
		}
	}
}

func TestRouter_PublicRoutesOpen(t *testing.T) {
	setup := newTestSetup(t)

	public := []string{
		"/api/projects",
		"/api/categories",
		"/api/score-sheet",
		"/api/registration-status",
	}

	for _, path := range public {
		rec := setup.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200 without session, got %d", path, rec.Code)
		}
	}
}
