package models

// CompetitionLevel is a tier of the science fair. Projects start at
// Sub-County and only ever move forward.
type CompetitionLevel string

const (
	LevelSubCounty CompetitionLevel = "Sub-County"
	LevelCounty    CompetitionLevel = "County"
	LevelRegional  CompetitionLevel = "Regional"
	LevelNational  CompetitionLevel = "National"
)

// Next returns the level a promoted project moves to. National is
// terminal: ok is false and the level is returned unchanged.
func (l CompetitionLevel) Next() (CompetitionLevel, bool) {
	switch l {
	case LevelSubCounty:
		return LevelCounty, true
	case LevelCounty:
		return LevelRegional, true
	case LevelRegional:
		return LevelNational, true
	default:
		return l, false
	}
}

// Valid reports whether l is one of the four competition levels.
func (l CompetitionLevel) Valid() bool {
	switch l {
	case LevelSubCounty, LevelCounty, LevelRegional, LevelNational:
		return true
	}
	return false
}

// Section identifies which half of the score sheet an assignment covers.
type Section string

const (
	SectionA  Section = "Part A"
	SectionBC Section = "Part B & C"
)

// Valid reports whether s is a known judging section.
func (s Section) Valid() bool {
	return s == SectionA || s == SectionBC
}

// MaxScore returns the section's maximum score on its own scale.
func (s Section) MaxScore() float64 {
	if s == SectionA {
		return 30
	}
	return 50
}

// AssignmentStatus tracks a judge's progress through a scoring sheet.
type AssignmentStatus string

const (
	StatusNotStarted AssignmentStatus = "Not Started"
	StatusInProgress AssignmentStatus = "In Progress"
	StatusCompleted  AssignmentStatus = "Completed"
)

// AssignmentState distinguishes live assignments from superseded ones.
// Archived rows are kept for audit history and never count toward scores.
type AssignmentState string

const (
	StateActive   AssignmentState = "active"
	StateArchived AssignmentState = "archived"
)

// Project is a registered science fair project.
type Project struct {
	ID                 int              `json:"id"`
	Title              string           `json:"title"`
	Category           string           `json:"category"`
	RegistrationNumber string           `json:"registration_number"`
	School             string           `json:"school"`
	Region             string           `json:"region"`
	County             string           `json:"county"`
	SubCounty          string           `json:"sub_county"`
	Zone               string           `json:"zone"`
	Students           []string         `json:"students,omitempty"`
	PatronID           *int             `json:"patron_id,omitempty"`
	Status             string           `json:"status,omitempty"`
	CurrentLevel       CompetitionLevel `json:"current_level"`
	IsEliminated       bool             `json:"is_eliminated"`
	// OverrideScoreA replaces the judge-averaged Part A score when set.
	// It is written by an admin breaking a top-4 tie.
	OverrideScoreA *float64 `json:"override_score_a,omitempty"`
}

// JudgeAssignment links a judge to one section of one project.
type JudgeAssignment struct {
	ID              int                 `json:"id"`
	ProjectID       int                 `json:"project_id"`
	JudgeID         int                 `json:"judge_id"`
	Section         Section             `json:"section"`
	Status          AssignmentStatus    `json:"status"`
	Score           *float64            `json:"score,omitempty"`
	ScoreBreakdown  map[int]float64     `json:"score_breakdown,omitempty"`
	Comments        string              `json:"comments,omitempty"`
	Recommendations string              `json:"recommendations,omitempty"`
	State           AssignmentState     `json:"state"`
}

// Active reports whether the assignment still counts toward scores.
func (a JudgeAssignment) Active() bool {
	return a.State != StateArchived
}

// Completed reports whether the judge has submitted a final score.
func (a JudgeAssignment) Completed() bool {
	return a.Status == StatusCompleted && a.Score != nil
}

// JudgeRole separates ordinary judges from category coordinators, whose
// completed scores settle arbitration for a section.
type JudgeRole string

const (
	RoleJudge       JudgeRole = "judge"
	RoleCoordinator JudgeRole = "coordinator"
)

// Judge is the slice of a user record the scoring core needs.
type Judge struct {
	ID                  int       `json:"id"`
	Name                string    `json:"name"`
	School              string    `json:"school,omitempty"`
	Role                JudgeRole `json:"role"`
	CoordinatedCategory string    `json:"coordinated_category,omitempty"`
}

// RankedEntity is one row of a geographic ranking table.
type RankedEntity struct {
	Name        string  `json:"name"`
	TotalPoints float64 `json:"total_points"`
	Rank        int     `json:"rank"`
	Parent      string  `json:"parent,omitempty"`
}

// WSMessage is the envelope broadcast to websocket clients.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
