package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/scifair/fairjudge/internal/logger"
	"github.com/scifair/fairjudge/internal/models"
	"github.com/scifair/fairjudge/internal/scoring"
	"github.com/scifair/fairjudge/internal/services"
	"github.com/scifair/fairjudge/pkg/ksefnet"
)

func newPromotionFixture(t *testing.T, totals map[string]float64, opts ...ksefnet.MockOption) (*fairFixture, *services.PromotionService, *ksefnet.MockClient) {
	t.Helper()
	fixture := seedFair(t, totals)
	client := ksefnet.NewMockClient(opts...)
	svc := services.NewPromotionService(logger.New(), fixture.repo, fixture.settings, client, scoring.DefaultConfig())
	return fixture, svc, client
}

// advanceToNational publishes the fair at each level below National. With
// four or fewer projects per category nobody is eliminated along the way.
func advanceToNational(t *testing.T, svc *services.PromotionService) {
	t.Helper()
	ctx := context.Background()
	steps := []struct {
		level models.CompetitionLevel
		scope scoring.Scope
	}{
		{models.LevelSubCounty, scoring.Scope{SubCounty: "Rongo"}},
		{models.LevelCounty, scoring.Scope{County: "Migori"}},
		{models.LevelRegional, scoring.Scope{Region: "Nyanza"}},
	}
	for _, step := range steps {
		if _, err := svc.Publish(ctx, step.level, step.scope); err != nil {
			t.Fatalf("Publish at %s failed: %v", step.level, err)
		}
	}
}

func TestPromotionService_Publish_PromotesTopFour(t *testing.T) {
	fixture, svc, _ := newPromotionFixture(t, map[string]float64{
		"Solar Powered Egg Incubator": 75,
		"Magnetic Levitation Demo":    72,
		"Water Purifier":              68,
		"Biogas Digester":             64,
		"Wind Turbine Model":          60,
		"Rain Gauge Network":          56,
	})
	ctx := context.Background()

	result, err := svc.Publish(ctx, models.LevelSubCounty, scoring.Scope{SubCounty: "Rongo"})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(result.Promoted) != 4 || len(result.Eliminated) != 2 {
		t.Fatalf("expected 4 promoted and 2 eliminated, got %d and %d", len(result.Promoted), len(result.Eliminated))
	}
	if result.NextLevel != models.LevelCounty {
		t.Errorf("expected next level County, got %s", result.NextLevel)
	}
	if len(result.Finalized) != 0 {
		t.Errorf("expected no finalized projects below National, got %d", len(result.Finalized))
	}

	promoted := make(map[int]bool)
	for _, id := range result.Promoted {
		promoted[id] = true
	}
	for _, id := range fixture.ids {
		project, err := fixture.repo.GetProject(ctx, id)
		if err != nil {
			t.Fatalf("GetProject failed: %v", err)
		}
		if promoted[id] {
			if project.CurrentLevel != models.LevelCounty || project.IsEliminated {
				t.Errorf("promoted project %q: level=%s eliminated=%v", project.Title, project.CurrentLevel, project.IsEliminated)
			}
		} else {
			if !project.IsEliminated {
				t.Errorf("project %q below the cutoff was not eliminated", project.Title)
			}
			if project.CurrentLevel != models.LevelSubCounty {
				t.Errorf("eliminated project %q moved to %s", project.Title, project.CurrentLevel)
			}
		}
	}
}

func TestPromotionService_Publish_BlockedUnjudged(t *testing.T) {
	fixture, svc, _ := newPromotionFixture(t, map[string]float64{
		"Solar Powered Egg Incubator": 75,
	})
	ctx := context.Background()

	input := projectInput()
	input.Title = "Unjudged Entry"
	if _, err := fixture.projects.RegisterProject(ctx, input); err != nil {
		t.Fatalf("RegisterProject failed: %v", err)
	}

	_, err := svc.Publish(ctx, models.LevelSubCounty, scoring.Scope{SubCounty: "Rongo"})
	var blocked *services.PublishBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected PublishBlockedError, got %v", err)
	}
	if blocked.Block.UnjudgedCount != 1 {
		t.Errorf("expected 1 unjudged project, got %d", blocked.Block.UnjudgedCount)
	}

	// Nothing was applied
	projects, err := fixture.repo.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	for _, p := range projects {
		if p.CurrentLevel != models.LevelSubCounty || p.IsEliminated {
			t.Errorf("blocked publish changed project %q", p.Title)
		}
	}
}

func TestPromotionService_Publish_BlockedTie_ResolvedByOverride(t *testing.T) {
	fixture, svc, _ := newPromotionFixture(t, map[string]float64{
		"Solar Powered Egg Incubator": 70,
		"Magnetic Levitation Demo":    70,
	})
	ctx := context.Background()

	_, err := svc.Publish(ctx, models.LevelSubCounty, scoring.Scope{SubCounty: "Rongo"})
	var blocked *services.PublishBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected PublishBlockedError, got %v", err)
	}
	if len(blocked.Block.BlockingTies) != 1 {
		t.Fatalf("expected 1 blocking tie, got %d", len(blocked.Block.BlockingTies))
	}

	// An override Part A score separates the pair, then the publish goes
	// through with both still inside the cutoff
	override := 22.5
	if err := svc.ResolveTie(ctx, fixture.ids[0], &override); err != nil {
		t.Fatalf("ResolveTie failed: %v", err)
	}
	result, err := svc.Publish(ctx, models.LevelSubCounty, scoring.Scope{SubCounty: "Rongo"})
	if err != nil {
		t.Fatalf("Publish after tie resolution failed: %v", err)
	}
	if len(result.Promoted) != 2 || len(result.Eliminated) != 0 {
		t.Errorf("expected both projects promoted, got %d promoted, %d eliminated", len(result.Promoted), len(result.Eliminated))
	}
}

func TestPromotionService_Preview(t *testing.T) {
	fixture, svc, _ := newPromotionFixture(t, map[string]float64{
		"Solar Powered Egg Incubator": 75,
		"Magnetic Levitation Demo":    72,
		"Water Purifier":              68,
		"Biogas Digester":             64,
		"Wind Turbine Model":          60,
	})
	ctx := context.Background()

	preview, err := svc.Preview(ctx, models.LevelSubCounty, scoring.Scope{SubCounty: "Rongo"})
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if preview.Block != nil {
		t.Fatalf("unexpected block: %s", preview.Reason)
	}
	if len(preview.Plan.Promote) != 4 || len(preview.Plan.Eliminate) != 1 {
		t.Errorf("expected 4 promote / 1 eliminate, got %d / %d", len(preview.Plan.Promote), len(preview.Plan.Eliminate))
	}

	// Dry run: nothing moved
	for _, id := range fixture.ids {
		project, err := fixture.repo.GetProject(context.Background(), id)
		if err != nil {
			t.Fatalf("GetProject failed: %v", err)
		}
		if project.CurrentLevel != models.LevelSubCounty || project.IsEliminated {
			t.Errorf("preview changed project %q", project.Title)
		}
	}
}

func TestPromotionService_ResolveTie_Validation(t *testing.T) {
	fixture, svc, _ := newPromotionFixture(t, map[string]float64{
		"Solar Powered Egg Incubator": 70,
	})
	ctx := context.Background()
	id := fixture.ids[0]

	tooHigh := 30.5
	if err := svc.ResolveTie(ctx, id, &tooHigh); err == nil {
		t.Error("expected error for override above 30")
	}
	tooPrecise := 12.345
	if err := svc.ResolveTie(ctx, id, &tooPrecise); err == nil {
		t.Error("expected error for override with three decimal places")
	}
	valid := 24.25
	if err := svc.ResolveTie(ctx, 9999, &valid); err == nil {
		t.Error("expected error for unknown project")
	}

	if err := svc.ResolveTie(ctx, id, &valid); err != nil {
		t.Fatalf("ResolveTie failed: %v", err)
	}
	project, err := fixture.repo.GetProject(ctx, id)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if project.OverrideScoreA == nil || *project.OverrideScoreA != 24.25 {
		t.Errorf("expected override 24.25, got %v", project.OverrideScoreA)
	}

	// nil clears the override
	if err := svc.ResolveTie(ctx, id, nil); err != nil {
		t.Fatalf("ResolveTie clear failed: %v", err)
	}
	project, err = fixture.repo.GetProject(ctx, id)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if project.OverrideScoreA != nil {
		t.Errorf("expected cleared override, got %v", *project.OverrideScoreA)
	}
}

func TestPromotionService_Publish_NationalFinalize(t *testing.T) {
	fixture, svc, _ := newPromotionFixture(t, map[string]float64{
		"Solar Powered Egg Incubator": 75,
		"Magnetic Levitation Demo":    70,
	})
	ctx := context.Background()
	advanceToNational(t, svc)

	result, err := svc.Publish(ctx, models.LevelNational, scoring.Scope{})
	if err != nil {
		t.Fatalf("Publish at National failed: %v", err)
	}
	if len(result.Promoted) != 0 {
		t.Errorf("expected no promotions at National, got %d", len(result.Promoted))
	}
	if len(result.Finalized) != 2 {
		t.Fatalf("expected 2 finalized projects, got %d", len(result.Finalized))
	}

	for _, id := range fixture.ids {
		project, err := fixture.repo.GetProject(ctx, id)
		if err != nil {
			t.Fatalf("GetProject failed: %v", err)
		}
		if project.CurrentLevel != models.LevelNational || project.Status != "Finalized" {
			t.Errorf("project %q: level=%s status=%s", project.Title, project.CurrentLevel, project.Status)
		}
	}
}

func TestPromotionService_PushToNational(t *testing.T) {
	fixture, svc, client := newPromotionFixture(t, map[string]float64{
		"Solar Powered Egg Incubator": 75,
		"Magnetic Levitation Demo":    70,
	})
	ctx := context.Background()
	advanceToNational(t, svc)

	// Mark the lower-scoring project as already on the portal
	var alreadyOn string
	for _, id := range fixture.ids {
		project, err := fixture.repo.GetProject(ctx, id)
		if err != nil {
			t.Fatalf("GetProject failed: %v", err)
		}
		if project.Title == "Magnetic Levitation Demo" {
			alreadyOn = project.RegistrationNumber
		}
	}
	client.SetEntries([]ksefnet.PortalEntry{
		{EntryID: 7, RegistrationNumber: ksefnet.FlexString(alreadyOn)},
	})

	result, err := svc.PushToNational(ctx, "https://ksef.example.org")
	if err != nil {
		t.Fatalf("PushToNational failed: %v", err)
	}
	if result.Pushed != 1 || result.Skipped != 1 || result.Errors != 0 {
		t.Fatalf("expected 1 pushed / 1 skipped, got %+v", result)
	}

	submitted := client.Submitted()
	if len(submitted) != 1 {
		t.Fatalf("expected 1 submitted entry, got %d", len(submitted))
	}
	entry := submitted[0]
	if entry.Title != "Solar Powered Egg Incubator" {
		t.Errorf("unexpected submitted entry: %s", entry.Title)
	}
	if entry.TotalScore != 75 || entry.CategoryRank != 1 {
		t.Errorf("expected score 75 rank 1 on the entry, got %.1f / %d", entry.TotalScore, entry.CategoryRank)
	}

	// The portal URL is remembered for the next push
	saved, err := fixture.settings.GetUpstreamURL(ctx)
	if err != nil {
		t.Fatalf("GetUpstreamURL failed: %v", err)
	}
	if saved != "https://ksef.example.org" {
		t.Errorf("expected saved portal URL, got %q", saved)
	}

	// Retrying with the saved URL skips everything already pushed
	retry, err := svc.PushToNational(ctx, "")
	if err != nil {
		t.Fatalf("retry PushToNational failed: %v", err)
	}
	if retry.Pushed != 0 || retry.Skipped != 2 {
		t.Errorf("expected full skip on retry, got %+v", retry)
	}
}

func TestPromotionService_PushToNational_NotConfigured(t *testing.T) {
	_, svc, _ := newPromotionFixture(t, map[string]float64{
		"Solar Powered Egg Incubator": 75,
	})

	if _, err := svc.PushToNational(context.Background(), ""); err == nil {
		t.Error("expected error when no portal URL is configured")
	}
}

func TestPromotionService_PushToNational_NothingAtNational(t *testing.T) {
	_, svc, client := newPromotionFixture(t, map[string]float64{
		"Solar Powered Egg Incubator": 75,
	})

	result, err := svc.PushToNational(context.Background(), "https://ksef.example.org")
	if err != nil {
		t.Fatalf("PushToNational failed: %v", err)
	}
	if result.Status != "success" || result.Pushed != 0 {
		t.Errorf("expected empty success result, got %+v", result)
	}
	if len(client.Submitted()) != 0 {
		t.Error("expected nothing submitted")
	}
}
