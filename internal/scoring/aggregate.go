package scoring

import (
	"github.com/scifair/fairjudge/internal/models"
)

// ProjectScore is the authoritative scoring result for one project.
// Nil section scores mean the section has no completed assignment yet;
// that is a normal intermediate state, not an error.
type ProjectScore struct {
	ScoreA           *float64 `json:"score_a,omitempty"`
	ScoreBC          *float64 `json:"score_bc,omitempty"`
	TotalScore       float64  `json:"total_score"`
	IsFullyJudged    bool     `json:"is_fully_judged"`
	NeedsArbitration bool     `json:"needs_arbitration"`
}

// ProjectScoreBreakdown additionally splits Part B & C into its oral (B)
// and scientific-thought (C) shares. Reporting only; ranking always uses
// ProjectScore.
type ProjectScoreBreakdown struct {
	ScoreA           *float64 `json:"score_a,omitempty"`
	ScoreB           *float64 `json:"score_b,omitempty"`
	ScoreC           *float64 `json:"score_c,omitempty"`
	TotalScore       float64  `json:"total_score"`
	IsFullyJudged    bool     `json:"is_fully_judged"`
	NeedsArbitration bool     `json:"needs_arbitration"`
}

// ComputeProjectScore aggregates the active judge assignments of one
// project into section scores and a total out of 80.
//
// Per section: a completed coordinator score is authoritative and used
// verbatim; otherwise the first two completed judge scores are averaged,
// a single completed score is used as-is, and no completed score leaves
// the section undefined. A Part A override set during tie resolution
// replaces the computed Part A value entirely.
//
// The assignment slice is a snapshot; archived rows are ignored.
func ComputeProjectScore(project models.Project, assignments []models.JudgeAssignment, judges map[int]models.Judge, cfg Config) ProjectScore {
	scoreA := sectionScore(project.ID, models.SectionA, assignments, judges)
	if project.OverrideScoreA != nil {
		v := *project.OverrideScoreA
		scoreA = &v
	}
	scoreBC := sectionScore(project.ID, models.SectionBC, assignments, judges)

	result := ProjectScore{
		ScoreA:        scoreA,
		ScoreBC:       scoreBC,
		IsFullyJudged: scoreA != nil && scoreBC != nil,
	}
	if scoreA != nil {
		result.TotalScore += *scoreA
	}
	if scoreBC != nil {
		result.TotalScore += *scoreBC
	}
	result.NeedsArbitration = len(DetectArbitration(project, assignments, judges, cfg)) > 0
	return result
}

// ComputeProjectScoreBreakdown is the reporting variant of
// ComputeProjectScore. Each contributing judge's combined Part B & C
// score is split by the fixed 15/50 and 35/50 ratios before averaging.
func ComputeProjectScoreBreakdown(project models.Project, assignments []models.JudgeAssignment, judges map[int]models.Judge, cfg Config) ProjectScoreBreakdown {
	base := ComputeProjectScore(project, assignments, judges, cfg)

	out := ProjectScoreBreakdown{
		ScoreA:           base.ScoreA,
		TotalScore:       base.TotalScore,
		IsFullyJudged:    base.IsFullyJudged,
		NeedsArbitration: base.NeedsArbitration,
	}
	if base.ScoreBC != nil {
		b := *base.ScoreBC * (MaxScoreB / MaxScoreBC)
		c := *base.ScoreBC * (MaxScoreC / MaxScoreBC)
		out.ScoreB = &b
		out.ScoreC = &c
	}
	return out
}

// sectionScore computes one section's score from its completed active
// assignments, or nil when none exist.
func sectionScore(projectID int, section models.Section, assignments []models.JudgeAssignment, judges map[int]models.Judge) *float64 {
	var completed []float64
	for _, a := range assignments {
		if a.ProjectID != projectID || a.Section != section || !a.Active() || !a.Completed() {
			continue
		}
		if judges[a.JudgeID].Role == models.RoleCoordinator {
			// Arbitration score settles the section.
			v := *a.Score
			return &v
		}
		completed = append(completed, *a.Score)
	}

	switch {
	case len(completed) >= 2:
		v := (completed[0] + completed[1]) / 2
		return &v
	case len(completed) == 1:
		v := completed[0]
		return &v
	default:
		return nil
	}
}
