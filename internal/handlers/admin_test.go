package handlers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/scifair/fairjudge/internal/handlers"
	"github.com/scifair/fairjudge/internal/models"
	"github.com/scifair/fairjudge/internal/services"
)

// scoreBothSections assigns the judge to both sections of a project and
// submits the given scores
func scoreBothSections(t *testing.T, setup *testSetup, cookie *http.Cookie, projectID, judgeID int, a, bc float64) {
	t.Helper()

	sections := []struct {
		section models.Section
		target  float64
	}{
		{models.SectionA, a},
		{models.SectionBC, bc},
	}
	for _, s := range sections {
		rec := setup.do(t, http.MethodPost, "/api/admin/assignments", handlers.AssignmentCreateRequest{
			ProjectID: projectID,
			JudgeID:   judgeID,
			Section:   string(s.section),
		}, cookie)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed to assign %s: %d: %s", s.section, rec.Code, rec.Body.String())
		}
		var created map[string]int64
		decodeBody(t, rec, &created)

		rec = setup.do(t, http.MethodPost, "/api/admin/assignments/"+itoa(created["id"])+"/score", handlers.ScoreRequest{
			Breakdown: assignmentBreakdown(t, s.section, s.target),
		}, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed to score %s: %d: %s", s.section, rec.Code, rec.Body.String())
		}
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestHandlePublish_Success(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	projectID, judgeID := seedProjectAndJudge(t, setup, cookie)
	scoreBothSections(t, setup, cookie, projectID, judgeID, 25, 45)

	rec := setup.do(t, http.MethodPost, "/api/admin/publish", handlers.PublishRequest{
		Level: "Sub-County",
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result services.PublishResult
	decodeBody(t, rec, &result)
	if len(result.Promoted) != 1 {
		t.Errorf("expected 1 promoted project, got %d", len(result.Promoted))
	}

	rec = setup.do(t, http.MethodGet, "/api/projects/1", nil)
	var project models.Project
	decodeBody(t, rec, &project)
	if project.CurrentLevel != models.LevelCounty {
		t.Errorf("expected project at County after publish, got %q", project.CurrentLevel)
	}
}

func TestHandlePublish_BlockedUnjudged(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	seedProjectAndJudge(t, setup, cookie)

	rec := setup.do(t, http.MethodPost, "/api/admin/publish", handlers.PublishRequest{
		Level: "Sub-County",
	}, cookie)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for unjudged cohort, got %d: %s", rec.Code, rec.Body.String())
	}

	var response map[string]interface{}
	decodeBody(t, rec, &response)
	if response["code"] != "PUBLISH_BLOCKED" {
		t.Errorf("expected PUBLISH_BLOCKED code, got %v", response["code"])
	}
	if response["details"] == nil {
		t.Error("expected block details in response")
	}
}

func TestHandlePublish_InvalidLevel(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/publish", handlers.PublishRequest{
		Level: "Village",
	}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown level, got %d", rec.Code)
	}
}

func TestHandlePublishPreview_DoesNotApply(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	projectID, judgeID := seedProjectAndJudge(t, setup, cookie)
	scoreBothSections(t, setup, cookie, projectID, judgeID, 25, 45)

	rec := setup.do(t, http.MethodPost, "/api/admin/publish/preview", handlers.PublishRequest{
		Level: "Sub-County",
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var preview services.PublishPreview
	decodeBody(t, rec, &preview)
	if len(preview.Plan.Promote) != 1 {
		t.Errorf("expected 1 project in the promote plan, got %d", len(preview.Plan.Promote))
	}

	// Preview must not move the project
	rec = setup.do(t, http.MethodGet, "/api/projects/1", nil)
	var project models.Project
	decodeBody(t, rec, &project)
	if project.CurrentLevel != models.LevelSubCounty {
		t.Errorf("preview moved the project to %q", project.CurrentLevel)
	}
}

func TestHandleResolveTie_Validation(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	projectID, judgeID := seedProjectAndJudge(t, setup, cookie)
	scoreBothSections(t, setup, cookie, projectID, judgeID, 25, 45)

	score := 45.5 // over the Part A maximum
	rec := setup.do(t, http.MethodPost, "/api/admin/resolve-tie", handlers.TieResolveRequest{
		ProjectID: projectID,
		Score:     &score,
	}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range override, got %d", rec.Code)
	}

	valid := 24.25
	rec = setup.do(t, http.MethodPost, "/api/admin/resolve-tie", handlers.TieResolveRequest{
		ProjectID: projectID,
		Score:     &valid,
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for valid override, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlePushToNational_NotConfigured(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/push-national", handlers.PushNationalRequest{}, cookie)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 when no portal URL is configured, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleGetRankings(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	projectID, judgeID := seedProjectAndJudge(t, setup, cookie)
	scoreBothSections(t, setup, cookie, projectID, judgeID, 25, 45)

	rec := setup.do(t, http.MethodGet, "/api/rankings?level=Sub-County", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var rankings map[string]interface{}
	decodeBody(t, rec, &rankings)
	if rankings["projects_with_points"] == nil {
		t.Error("expected project rankings in response")
	}
}

func TestHandleGetRankings_MissingLevel(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/rankings", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a level, got %d", rec.Code)
	}
}

func TestHandleGetProjectScore(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	projectID, judgeID := seedProjectAndJudge(t, setup, cookie)
	scoreBothSections(t, setup, cookie, projectID, judgeID, 25, 45)

	rec := setup.do(t, http.MethodGet, "/api/projects/1/score", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var score services.ProjectScoreResult
	decodeBody(t, rec, &score)
	if score.Score.TotalScore != 70 {
		t.Errorf("expected total 70, got %.2f", score.Score.TotalScore)
	}
}

func TestHandleArbitrationFlow(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	projectID, judgeID := seedProjectAndJudge(t, setup, cookie)

	rec := setup.do(t, http.MethodPost, "/api/admin/judges", handlers.JudgeCreateRequest{
		Name:   "John Omondi",
		School: "Rapogi Boys",
		Role:   "judge",
	}, cookie)
	var second models.Judge
	decodeBody(t, rec, &second)

	// Two Part A scores more than the variance threshold apart
	for i, score := range []struct {
		judgeID int
		target  float64
	}{
		{judgeID, 28},
		{second.ID, 18},
	} {
		rec := setup.do(t, http.MethodPost, "/api/admin/assignments", handlers.AssignmentCreateRequest{
			ProjectID: projectID,
			JudgeID:   score.judgeID,
			Section:   "Part A",
		}, cookie)
		if rec.Code != http.StatusCreated {
			t.Fatalf("assignment %d failed: %d: %s", i, rec.Code, rec.Body.String())
		}
		var created map[string]int64
		decodeBody(t, rec, &created)

		rec = setup.do(t, http.MethodPost, "/api/admin/assignments/"+itoa(created["id"])+"/score", handlers.ScoreRequest{
			Breakdown: assignmentBreakdown(t, models.SectionA, score.target),
		}, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("score %d failed: %d: %s", i, rec.Code, rec.Body.String())
		}
	}

	rec = setup.do(t, http.MethodGet, "/api/admin/arbitration-queue", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("queue fetch failed: %d", rec.Code)
	}
	var queue []services.ArbitrationItem
	decodeBody(t, rec, &queue)
	if len(queue) != 1 {
		t.Fatalf("expected 1 arbitration item, got %d", len(queue))
	}

	rec = setup.do(t, http.MethodPost, "/api/admin/judges", handlers.JudgeCreateRequest{
		Name:                "Peter Ouma",
		School:              "Rapogi Boys",
		Role:                "coordinator",
		CoordinatedCategory: "Physics",
	}, cookie)
	var coordinator models.Judge
	decodeBody(t, rec, &coordinator)

	rec = setup.do(t, http.MethodPost, "/api/admin/arbitration", handlers.ArbitrationRequest{
		ProjectID: projectID,
		JudgeID:   coordinator.ID,
		Section:   "Part A",
		Breakdown: assignmentBreakdown(t, models.SectionA, 24),
	}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("arbitration failed: %d: %s", rec.Code, rec.Body.String())
	}

	rec = setup.do(t, http.MethodGet, "/api/admin/arbitration-queue", nil, cookie)
	decodeBody(t, rec, &queue)
	if len(queue) != 0 {
		t.Errorf("expected empty queue after arbitration, got %d items", len(queue))
	}
}

func TestHandleRegistrationStatus_Toggle(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	rec := setup.do(t, http.MethodGet, "/api/registration-status", nil)
	var status handlers.RegistrationStatusResponse
	decodeBody(t, rec, &status)
	if !status.Open {
		t.Error("expected registration open by default")
	}

	rec = setup.do(t, http.MethodPost, "/api/admin/registration-status",
		handlers.RegistrationStatusRequest{Open: false}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle failed: %d: %s", rec.Code, rec.Body.String())
	}

	rec = setup.do(t, http.MethodGet, "/api/registration-status", nil)
	decodeBody(t, rec, &status)
	if status.Open {
		t.Error("expected registration closed after toggle")
	}
}

func TestHandleSetDeadline(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/deadline",
		handlers.DeadlineRequest{Deadline: "2026-10-01T17:00:00Z"}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = setup.do(t, http.MethodGet, "/api/registration-status", nil)
	var status handlers.RegistrationStatusResponse
	decodeBody(t, rec, &status)
	if status.Deadline != "2026-10-01T17:00:00Z" {
		t.Errorf("expected stored deadline, got %q", status.Deadline)
	}
}

func TestHandleSetDeadline_InvalidFormat(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/deadline",
		handlers.DeadlineRequest{Deadline: "next Friday"}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed deadline, got %d", rec.Code)
	}
}

func TestHandleSettings_UpdateAndGet(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/settings", handlers.SettingsUpdateRequest{
		UpstreamURL: "https://ksef.example.org",
		PublicURL:   "https://fair.example.org",
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d: %s", rec.Code, rec.Body.String())
	}

	rec = setup.do(t, http.MethodGet, "/api/admin/settings", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch failed: %d", rec.Code)
	}

	var settings map[string]interface{}
	decodeBody(t, rec, &settings)
	if settings["upstream_url"] != "https://ksef.example.org" {
		t.Errorf("expected saved upstream URL, got %v", settings["upstream_url"])
	}
}

func TestHandleResetDatabase_InvalidTable(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/reset-database",
		handlers.DatabaseResetRequest{Tables: []string{"users"}}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown table, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleResetDatabase_Success(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	setup.do(t, http.MethodPost, "/api/projects", testProjectRequest())

	rec := setup.do(t, http.MethodPost, "/api/admin/reset-database",
		handlers.DatabaseResetRequest{Tables: []string{"projects"}}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = setup.do(t, http.MethodGet, "/api/projects", nil)
	var projects []models.Project
	decodeBody(t, rec, &projects)
	if len(projects) != 0 {
		t.Errorf("expected no projects after reset, got %d", len(projects))
	}
}

func TestHandleGetStats(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	setup.do(t, http.MethodPost, "/api/projects", testProjectRequest())

	rec := setup.do(t, http.MethodGet, "/api/admin/stats", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats map[string]interface{}
	decodeBody(t, rec, &stats)
	if stats["total_projects"] == nil {
		t.Error("expected total_projects in stats")
	}
}
