package scoring

import (
	"sort"

	"github.com/scifair/fairjudge/internal/models"
)

// ProjectWithRank is a fully judged project annotated with its category
// rank and the competition points it earned.
type ProjectWithRank struct {
	models.Project
	TotalScore   float64 `json:"total_score"`
	CategoryRank int     `json:"category_rank"`
	Points       float64 `json:"points"`
}

// RankingData is the complete ranking picture: every fully judged
// project with points, plus rollups at each geographic tier. The keyed
// maps group children under their parent entity (zones under their
// sub-county, sub-counties under their county, counties under their
// region).
type RankingData struct {
	ProjectsWithPoints []ProjectWithRank                `json:"projects_with_points"`
	SchoolRanking      []models.RankedEntity            `json:"school_ranking"`
	ZoneRanking        map[string][]models.RankedEntity `json:"zone_ranking"`
	SubCountyRanking   map[string][]models.RankedEntity `json:"sub_county_ranking"`
	CountyRanking      map[string][]models.RankedEntity `json:"county_ranking"`
	RegionRanking      []models.RankedEntity            `json:"region_ranking"`
}

// ComputeRankings ranks every fully judged project within its category
// and rolls competition points up the geographic hierarchy. It is a pure
// function of the snapshot: recomputed on every read, never cached.
//
// Ranking is dense competition ranking ("1224"): tied scores share the
// lower rank and the sequence then skips the tied count. Points go to
// the top four ranks from cfg.PointsByRank; a rank skipped by a tie
// earns nobody its points.
func ComputeRankings(projects []models.Project, assignments []models.JudgeAssignment, judges map[int]models.Judge, cfg Config) RankingData {
	var scored []ProjectWithRank
	for _, p := range projects {
		s := ComputeProjectScore(p, assignments, judges, cfg)
		if !s.IsFullyJudged {
			continue
		}
		scored = append(scored, ProjectWithRank{Project: p, TotalScore: s.TotalScore})
	}

	byCategory := make(map[string][]int) // indexes into scored
	for i, p := range scored {
		byCategory[p.Category] = append(byCategory[p.Category], i)
	}

	for _, idxs := range byCategory {
		// Secondary sort by ID keeps recomputation deterministic.
		sort.SliceStable(idxs, func(a, b int) bool {
			pa, pb := scored[idxs[a]], scored[idxs[b]]
			if pa.TotalScore != pb.TotalScore {
				return pa.TotalScore > pb.TotalScore
			}
			return pa.ID < pb.ID
		})
		for pos, idx := range idxs {
			if pos > 0 && scored[idx].TotalScore == scored[idxs[pos-1]].TotalScore {
				scored[idx].CategoryRank = scored[idxs[pos-1]].CategoryRank
			} else {
				scored[idx].CategoryRank = pos + 1
			}
			scored[idx].Points = cfg.Points(scored[idx].CategoryRank)
		}
	}

	sort.Slice(scored, func(a, b int) bool {
		if scored[a].Category != scored[b].Category {
			return scored[a].Category < scored[b].Category
		}
		return scored[a].CategoryRank < scored[b].CategoryRank
	})

	return RankingData{
		ProjectsWithPoints: scored,
		SchoolRanking:      rollupFlat(scored, func(p ProjectWithRank) (string, string) { return p.School, p.SubCounty }),
		ZoneRanking:        rollupGrouped(scored, func(p ProjectWithRank) (string, string) { return p.Zone, p.SubCounty }),
		SubCountyRanking:   rollupGrouped(scored, func(p ProjectWithRank) (string, string) { return p.SubCounty, p.County }),
		CountyRanking:      rollupGrouped(scored, func(p ProjectWithRank) (string, string) { return p.County, p.Region }),
		RegionRanking:      rollupFlat(scored, func(p ProjectWithRank) (string, string) { return p.Region, "" }),
	}
}

// rollupFlat sums points per entity across all projects and ranks the
// entities as one table.
func rollupFlat(scored []ProjectWithRank, key func(ProjectWithRank) (name, parent string)) []models.RankedEntity {
	totals := make(map[string]*models.RankedEntity)
	for _, p := range scored {
		name, parent := key(p)
		if name == "" {
			continue
		}
		e, ok := totals[name]
		if !ok {
			e = &models.RankedEntity{Name: name, Parent: parent}
			totals[name] = e
		}
		e.TotalPoints += p.Points
	}

	entities := make([]models.RankedEntity, 0, len(totals))
	for _, e := range totals {
		entities = append(entities, *e)
	}
	rankEntities(entities)
	return entities
}

// rollupGrouped sums points per entity and ranks each entity only
// against its siblings under the same parent.
func rollupGrouped(scored []ProjectWithRank, key func(ProjectWithRank) (name, parent string)) map[string][]models.RankedEntity {
	flat := rollupFlat(scored, key)

	grouped := make(map[string][]models.RankedEntity)
	for _, e := range flat {
		grouped[e.Parent] = append(grouped[e.Parent], e)
	}
	for parent, siblings := range grouped {
		rankEntities(siblings)
		grouped[parent] = siblings
	}
	return grouped
}

// rankEntities sorts by points descending and assigns dense ranks in
// place, using the same tie rule as category ranking.
func rankEntities(entities []models.RankedEntity) {
	sort.SliceStable(entities, func(a, b int) bool {
		if entities[a].TotalPoints != entities[b].TotalPoints {
			return entities[a].TotalPoints > entities[b].TotalPoints
		}
		return entities[a].Name < entities[b].Name
	})
	for i := range entities {
		if i > 0 && entities[i].TotalPoints == entities[i-1].TotalPoints {
			entities[i].Rank = entities[i-1].Rank
		} else {
			entities[i].Rank = i + 1
		}
	}
}
