package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/scifair/fairjudge/internal/models"
)

// PromotionCutoff is the lowest category rank that still advances to the
// next level and may therefore be blocked by a tie.
const PromotionCutoff = 4

// Scope is the geographic area an admin controls. Empty fields widen the
// scope: a county admin leaves SubCounty empty, a regional admin leaves
// County and SubCounty empty.
type Scope struct {
	Region    string `json:"region,omitempty"`
	County    string `json:"county,omitempty"`
	SubCounty string `json:"sub_county,omitempty"`
}

// Contains reports whether a project falls inside the scope.
func (s Scope) Contains(p models.Project) bool {
	if s.Region != "" && p.Region != s.Region {
		return false
	}
	if s.County != "" && p.County != s.County {
		return false
	}
	if s.SubCounty != "" && p.SubCounty != s.SubCounty {
		return false
	}
	return true
}

// TieGroup is a set of fully judged projects sharing a category score at
// a promoted rank. Every TieGroup blocks publishing until resolved.
type TieGroup struct {
	Category   string  `json:"category"`
	TotalScore float64 `json:"total_score"`
	Rank       int     `json:"rank"`
	ProjectIDs []int   `json:"project_ids"`
}

// PublishBlock describes why a publish was refused. Exactly the blocking
// conditions are populated; Reason renders them for the caller.
type PublishBlock struct {
	UnjudgedCount    int        `json:"unjudged_count,omitempty"`
	ArbitrationCount int        `json:"arbitration_count,omitempty"`
	BlockingTies     []TieGroup `json:"blocking_ties,omitempty"`
}

// Reason returns a human-readable description of the block.
func (b PublishBlock) Reason() string {
	var parts []string
	if b.UnjudgedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d project(s) are not fully judged", b.UnjudgedCount))
	}
	if b.ArbitrationCount > 0 {
		parts = append(parts, fmt.Sprintf("%d project(s) are awaiting coordinator arbitration", b.ArbitrationCount))
	}
	if len(b.BlockingTies) > 0 {
		cats := make([]string, 0, len(b.BlockingTies))
		seen := make(map[string]bool)
		for _, t := range b.BlockingTies {
			if !seen[t.Category] {
				seen[t.Category] = true
				cats = append(cats, t.Category)
			}
		}
		parts = append(parts, fmt.Sprintf("unresolved top-%d ties in: %s", PromotionCutoff, strings.Join(cats, ", ")))
	}
	if len(parts) == 0 {
		return "publish blocked"
	}
	return "cannot publish: " + strings.Join(parts, "; ")
}

// PublishPlan lists the project IDs a publish would touch. Promote and
// Eliminate are disjoint; Finalize is set at National level, where the
// round closes without promoting anyone.
type PublishPlan struct {
	Promote   []int `json:"promote"`
	Eliminate []int `json:"eliminate"`
	Finalize  bool  `json:"finalize"`
}

// PlanPublish decides a publish at the given level and scope without
// applying it. Candidates are the non-eliminated in-scope projects at
// the level. Every candidate must be fully judged with no pending
// arbitration, and no tie may touch a promoted rank; otherwise a
// PublishBlock is returned and the plan is empty.
//
// On success the top four ranks per category are promoted and the rest
// eliminated. Applying the plan atomically is the caller's job: a
// partially applied plan is a correctness bug.
func PlanPublish(level models.CompetitionLevel, scope Scope, projects []models.Project, assignments []models.JudgeAssignment, judges map[int]models.Judge, cfg Config) (PublishPlan, *PublishBlock) {
	var candidates []models.Project
	for _, p := range projects {
		if p.CurrentLevel == level && !p.IsEliminated && scope.Contains(p) {
			candidates = append(candidates, p)
		}
	}

	block := PublishBlock{}
	for _, p := range candidates {
		s := ComputeProjectScore(p, assignments, judges, cfg)
		if !s.IsFullyJudged {
			block.UnjudgedCount++
		}
		if s.NeedsArbitration {
			block.ArbitrationCount++
		}
	}
	if block.UnjudgedCount > 0 || block.ArbitrationCount > 0 {
		return PublishPlan{}, &block
	}

	block.BlockingTies = DetectBlockingTies(candidates, assignments, judges, cfg)
	if len(block.BlockingTies) > 0 {
		return PublishPlan{}, &block
	}

	ranking := ComputeRankings(candidates, assignments, judges, cfg)

	_, hasNext := level.Next()
	plan := PublishPlan{Finalize: !hasNext}
	for _, p := range ranking.ProjectsWithPoints {
		if p.CategoryRank <= PromotionCutoff {
			if hasNext {
				plan.Promote = append(plan.Promote, p.ID)
			}
		} else {
			plan.Eliminate = append(plan.Eliminate, p.ID)
		}
	}
	return plan, nil
}

// DetectBlockingTies groups fully judged projects by (category, total
// score) and returns every group of two or more whose shared rank is at
// or above the promotion cutoff. Recomputed on demand, like all derived
// state here.
func DetectBlockingTies(projects []models.Project, assignments []models.JudgeAssignment, judges map[int]models.Judge, cfg Config) []TieGroup {
	ranking := ComputeRankings(projects, assignments, judges, cfg)

	type key struct {
		category string
		score    float64
	}
	groups := make(map[key]*TieGroup)
	for _, p := range ranking.ProjectsWithPoints {
		if p.CategoryRank > PromotionCutoff {
			continue
		}
		k := key{p.Category, p.TotalScore}
		g, ok := groups[k]
		if !ok {
			g = &TieGroup{Category: p.Category, TotalScore: p.TotalScore, Rank: p.CategoryRank}
			groups[k] = g
		}
		g.ProjectIDs = append(g.ProjectIDs, p.ID)
	}

	var ties []TieGroup
	for _, g := range groups {
		if len(g.ProjectIDs) > 1 {
			ties = append(ties, *g)
		}
	}
	sort.Slice(ties, func(a, b int) bool {
		if ties[a].Category != ties[b].Category {
			return ties[a].Category < ties[b].Category
		}
		return ties[a].Rank < ties[b].Rank
	})
	return ties
}

// ValidateOverrideScore checks a tie-break replacement Part A score:
// within 0-30 and at most two decimal places.
func ValidateOverrideScore(score float64) error {
	if score < 0 || score > MaxScoreA {
		return fmt.Errorf("override score %.2f is outside 0-%.0f", score, MaxScoreA)
	}
	cents := score * 100
	if math.Abs(cents-math.Round(cents)) > 1e-6 {
		return fmt.Errorf("override score must have at most two decimal places")
	}
	return nil
}
