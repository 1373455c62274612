package scoring

import (
	"math"

	"github.com/scifair/fairjudge/internal/errors"
	"github.com/scifair/fairjudge/internal/models"
)

// SubSection tags a criterion with the part of the score sheet it came
// from. B and C are judged together on one 50-point sheet but reported
// separately.
type SubSection string

const (
	SubSectionA SubSection = "A"
	SubSectionB SubSection = "B"
	SubSectionC SubSection = "C"
)

// Sub-section totals. Part B & C is a single judged sheet; the B and C
// shares are used only when reporting a breakdown.
const (
	MaxScoreA  = 30.0
	MaxScoreB  = 15.0
	MaxScoreC  = 35.0
	MaxScoreBC = MaxScoreB + MaxScoreC
	MaxTotal   = MaxScoreA + MaxScoreBC
)

// Criterion is a single line of the score sheet.
type Criterion struct {
	ID         int        `json:"id"`
	Text       string     `json:"text"`
	Details    string     `json:"details,omitempty"`
	MaxScore   float64    `json:"max_score"`
	Step       float64    `json:"step"`
	SubSection SubSection `json:"sub_section"`
}

// SheetSection is one judged sheet: Part A or the combined Part B & C.
type SheetSection struct {
	Section  models.Section `json:"section"`
	Title    string         `json:"title"`
	MaxScore float64        `json:"max_score"`
	Criteria []Criterion    `json:"criteria"`
}

// ScoreSheet returns the full national score sheet. The slice is rebuilt
// per call so callers may not mutate shared state.
func ScoreSheet() []SheetSection {
	return []SheetSection{
		{
			Section:  models.SectionA,
			Title:    "PART A: WRITTEN COMMUNICATION (WRITE UP AND POSTERS)",
			MaxScore: MaxScoreA,
			Criteria: partACriteria(),
		},
		{
			Section:  models.SectionBC,
			Title:    "PART B & C: ORAL COMMUNICATION & SCIENTIFIC THOUGHT",
			MaxScore: MaxScoreBC,
			Criteria: partBCCriteria(),
		},
	}
}

// CriteriaForSection returns the criteria judged on the given sheet.
func CriteriaForSection(section models.Section) []Criterion {
	if section == models.SectionA {
		return partACriteria()
	}
	return partBCCriteria()
}

// ValidateBreakdown checks a judge's per-criterion scores against the
// sheet for the section: known criterion IDs, per-criterion max, and
// score granularity (each award must be a whole number of steps).
// A partial breakdown is allowed; unknown criteria are not.
func ValidateBreakdown(section models.Section, breakdown map[int]float64) error {
	byID := make(map[int]Criterion)
	for _, c := range CriteriaForSection(section) {
		byID[c.ID] = c
	}
	for id, awarded := range breakdown {
		c, ok := byID[id]
		if !ok {
			return errors.InvalidInputf("criterion %d is not on the %s sheet", id, section)
		}
		if awarded < 0 || awarded > c.MaxScore {
			return errors.Validationf("criterion %d score %.2f is outside 0-%.1f", id, awarded, c.MaxScore)
		}
		steps := awarded / c.Step
		if math.Abs(steps-math.Round(steps)) > 1e-9 {
			return errors.Validationf("criterion %d score %.2f is not a multiple of the %.1f step", id, awarded, c.Step)
		}
	}
	return nil
}

// BreakdownTotal sums a breakdown map. Callers normally validate first.
func BreakdownTotal(breakdown map[int]float64) float64 {
	total := 0.0
	for _, v := range breakdown {
		total += v
	}
	return total
}

func partACriteria() []Criterion {
	return []Criterion{
		{ID: 1, Text: "Write up neatly and logically organized", Details: "Write with clearly labeled sections eg. Abstract, and plagiarism pledge etc", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 2, Text: "Evidence of background research & Introduction", Details: "Background info, summarized with articles. Includes focus question/problem statement.", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 3, Text: "Written language in write up and on poster", Details: "Legible, correct fonts, scientific, suitable headings, no spelling mistakes", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 4, Text: "Aim / hypothesis / objectives of project", Details: "Reflected in write up and on poster", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 5, Text: "Methods (and materials) or technologies used", Details: "Presented in logical order, correct expression, more extensive in report than on poster", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 6, Text: "Variables identified", Details: "Dependent and independent variable identified in write up and on poster", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 7, Text: "Results", Details: "Full observations, presented in tabular/graph form. Scientifically and mathematically suitable and correct.", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 8, Text: "Analysis of results", Details: "Report/findings/graphs explained in words, more extensive in write up than on poster", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 9, Text: "Discussion of results", Details: "Pattern and trends are noted and explained, anomalies/unusual results are discussed, limitations noted and clarified", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 10, Text: "Future possibilities of research / recommendations", Details: "Future extensions and possibilities are identified", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 11, Text: "Conclusions", Details: "Valid, based on findings and linked to objectives.", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 12, Text: "Reference in write up", Details: "Reference of books, magazines and internet addresses given in the correct format", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 13, Text: "Acknowledgements", Details: "Depth of assistance received and how this assistance has been used", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 14, Text: "Display board", Details: "Summaries project and is neatly organized. Correct size and logical flow.", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
		{ID: 15, Text: "Project data file", Details: "Research plan/Rough work/original data sheets/plans/diagrams etc.", MaxScore: 2, Step: 0.5, SubSection: SubSectionA},
	}
}

func partBCCriteria() []Criterion {
	return []Criterion{
		{ID: 16, Text: "Capture of interest", Details: "The learners presentation is exciting and stimulating", MaxScore: 1, Step: 0.5, SubSection: SubSectionB},
		{ID: 17, Text: "Enthusiasm / effort", Details: "A worthwhile effort was made to explain, lots of enthusiasm", MaxScore: 1, Step: 0.5, SubSection: SubSectionB},
		{ID: 18, Text: "Voice / tone", Details: "Totally audible, varying intonation", MaxScore: 1, Step: 0.5, SubSection: SubSectionB},
		{ID: 19, Text: "Self-confidence", Details: "Ease of presentation", MaxScore: 1, Step: 0.5, SubSection: SubSectionB},
		{ID: 20, Text: "Scientific Language", Details: "Use of appropriate language and vocabulary", MaxScore: 1, Step: 0.5, SubSection: SubSectionB},
		{ID: 21, Text: "Response to questions", Details: "Listens carefully, responds clearly and intelligently", MaxScore: 2, Step: 0.5, SubSection: SubSectionB},
		{ID: 22, Text: "Presentation of project", Details: "Logical, well organized way (without reciting/reading directly)", MaxScore: 2, Step: 0.5, SubSection: SubSectionB},
		{ID: 23, Text: "Limitations / weaknesses and gaps", Details: "The learner is fully aware of limitations and can explain reasons for gaps", MaxScore: 2, Step: 0.5, SubSection: SubSectionB},
		{ID: 24, Text: "Possible suggestions or expanding project", Details: "The learner is fully aware of possibilities for expanding the project", MaxScore: 2, Step: 0.5, SubSection: SubSectionB},
		{ID: 25, Text: "Authenticity", Details: "The learner takes complete ownership of the project and integrates assistance received.", MaxScore: 2, Step: 0.5, SubSection: SubSectionB},
		{ID: 26, Text: "Statement of the problem", Details: "Clear statement of the problem and objectives", MaxScore: 2, Step: 0.5, SubSection: SubSectionC},
		{ID: 27, Text: "Introduction / Background information", Details: "Relationship between the project and other research done in the same area", MaxScore: 2, Step: 0.5, SubSection: SubSectionC},
		{ID: 28, Text: "Application of scientific concepts to every day life", MaxScore: 3, Step: 1, SubSection: SubSectionC},
		{ID: 29, Text: "Subject mastery", Details: "Demonstration of deep and accurate knowledge of scientific and engineering principles involved", MaxScore: 3, Step: 1, SubSection: SubSectionC},
		{ID: 30, Text: "Literature review", Details: "Project shows understanding of existing knowledge. (citations)", MaxScore: 2, Step: 0.5, SubSection: SubSectionC},
		{ID: 31, Text: "Data", Details: "Adequate data obtained to verify conclusions.", MaxScore: 3, Step: 1, SubSection: SubSectionC},
		{ID: 32, Text: "Variables", Details: "Variables/parameters were clearly defined and recognized, controls used", MaxScore: 2, Step: 0.5, SubSection: SubSectionC},
		{ID: 33, Text: "Statement of originality", Details: "What inspired the person to come up with the project", MaxScore: 2, Step: 0.5, SubSection: SubSectionC},
		{ID: 34, Text: "Logical Sequence: Apparatus / requirements", Details: "Experimental design demonstrates understanding of scientific methods of research", MaxScore: 2, Step: 0.5, SubSection: SubSectionC},
		{ID: 35, Text: "Logical Sequence: Procedure / Method", Details: "Experimental design demonstrates understanding of scientific methods of research", MaxScore: 2, Step: 0.5, SubSection: SubSectionC},
		{ID: 36, Text: "Logical Sequence: Correct illustrations", Details: "Experimental design demonstrates understanding of scientific methods of research", MaxScore: 3, Step: 1, SubSection: SubSectionC},
		{ID: 37, Text: "Linkage to emerging issues", Details: "Linking of the innovation with emerging issues or adds value to existing body of knowledge", MaxScore: 2, Step: 0.5, SubSection: SubSectionC},
		{ID: 38, Text: "Originality", Details: "Is the problem original or does the approach to the problem show originality. Does the construction or design of equipment / project show originality", MaxScore: 3, Step: 1, SubSection: SubSectionC},
		{ID: 39, Text: "Creativity", Details: "Have materials / equipment been used in an ingenious way. To what extent does the project / exhibit represent the student's own effort/skill", MaxScore: 2, Step: 0.5, SubSection: SubSectionC},
		{ID: 40, Text: "Skill: Was the workmanship of the display skillful?", Details: "Workmanship is neat, well done. Project requires minimum maintenance", MaxScore: 2, Step: 0.5, SubSection: SubSectionC},
	}
}
