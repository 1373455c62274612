package scoring

import (
	"math"

	"github.com/scifair/fairjudge/internal/models"
)

// ArbitrationReason classifies why a section needs a coordinator score.
type ArbitrationReason string

const (
	ReasonConflictOfInterest ArbitrationReason = "conflict_of_interest"
	ReasonScoreVariance      ArbitrationReason = "score_variance"
)

// ArbitrationFlag marks one section of one project as needing a
// coordinator's tie-breaking score.
type ArbitrationFlag struct {
	ProjectID int               `json:"project_id"`
	Section   models.Section    `json:"section"`
	Reason    ArbitrationReason `json:"reason"`
	// JudgeID identifies the conflicted judge for conflict-of-interest
	// flags; zero for variance flags.
	JudgeID int `json:"judge_id,omitempty"`
}

// DetectArbitration flags sections of a project that need coordinator
// arbitration. Two conditions are checked per section independently:
//
//   - conflict of interest: an assigned judge's school matches the
//     project's school;
//   - score variance: the first two completed non-coordinator scores
//     differ by more than the threshold on the section's own scale.
//
// Either condition is cleared once a coordinator has a completed active
// assignment for that section. Flags are derived on every call, never
// stored, so they can't go stale against assignment edits.
func DetectArbitration(project models.Project, assignments []models.JudgeAssignment, judges map[int]models.Judge, cfg Config) []ArbitrationFlag {
	var flags []ArbitrationFlag

	for _, section := range []models.Section{models.SectionA, models.SectionBC} {
		if coordinatorScored(project.ID, section, assignments, judges) {
			continue
		}

		seen := false
		for _, a := range assignments {
			if a.ProjectID != project.ID || a.Section != section || !a.Active() {
				continue
			}
			judge := judges[a.JudgeID]
			if judge.School != "" && project.School != "" && judge.School == project.School {
				flags = append(flags, ArbitrationFlag{
					ProjectID: project.ID,
					Section:   section,
					Reason:    ReasonConflictOfInterest,
					JudgeID:   a.JudgeID,
				})
				seen = true
				break
			}
		}
		if seen {
			continue
		}

		var completed []float64
		for _, a := range assignments {
			if a.ProjectID != project.ID || a.Section != section || !a.Active() || !a.Completed() {
				continue
			}
			if judges[a.JudgeID].Role == models.RoleCoordinator {
				continue
			}
			completed = append(completed, *a.Score)
		}
		if len(completed) >= 2 && math.Abs(completed[0]-completed[1]) > cfg.VarianceThreshold {
			flags = append(flags, ArbitrationFlag{
				ProjectID: project.ID,
				Section:   section,
				Reason:    ReasonScoreVariance,
			})
		}
	}

	return flags
}

// coordinatorScored reports whether a coordinator has a completed active
// assignment for the section, which settles any arbitration on it.
func coordinatorScored(projectID int, section models.Section, assignments []models.JudgeAssignment, judges map[int]models.Judge) bool {
	for _, a := range assignments {
		if a.ProjectID != projectID || a.Section != section || !a.Active() || !a.Completed() {
			continue
		}
		if judges[a.JudgeID].Role == models.RoleCoordinator {
			return true
		}
	}
	return false
}
