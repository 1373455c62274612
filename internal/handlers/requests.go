package handlers

// ProjectCreateRequest represents a request to register a project
type ProjectCreateRequest struct {
	Title              string   `json:"title"`
	Category           string   `json:"category"`
	RegistrationNumber string   `json:"registration_number,omitempty"`
	School             string   `json:"school"`
	Region             string   `json:"region"`
	County             string   `json:"county"`
	SubCounty          string   `json:"sub_county"`
	Zone               string   `json:"zone"`
	Students           []string `json:"students"`
	PatronID           *int     `json:"patron_id,omitempty"`
}

// ProjectUpdateRequest represents a request to update a project
type ProjectUpdateRequest struct {
	Title              string   `json:"title"`
	Category           string   `json:"category"`
	RegistrationNumber string   `json:"registration_number,omitempty"`
	School             string   `json:"school"`
	Region             string   `json:"region"`
	County             string   `json:"county"`
	SubCounty          string   `json:"sub_county"`
	Zone               string   `json:"zone"`
	Students           []string `json:"students"`
	PatronID           *int     `json:"patron_id,omitempty"`
}

// JudgeCreateRequest represents a request to create a judge
type JudgeCreateRequest struct {
	Name                string `json:"name"`
	School              string `json:"school"`
	Role                string `json:"role"`
	CoordinatedCategory string `json:"coordinated_category,omitempty"`
}

// JudgeUpdateRequest represents a request to update a judge
type JudgeUpdateRequest struct {
	Name                string `json:"name"`
	School              string `json:"school"`
	Role                string `json:"role"`
	CoordinatedCategory string `json:"coordinated_category,omitempty"`
}

// AssignmentCreateRequest represents a request to assign a judge to a project section
type AssignmentCreateRequest struct {
	ProjectID int    `json:"project_id"`
	JudgeID   int    `json:"judge_id"`
	Section   string `json:"section"`
}

// ReassignRequest represents a request to hand an assignment to another judge
type ReassignRequest struct {
	JudgeID int `json:"judge_id"`
}

// ScoreRequest represents a draft save or final submission of a score sheet
type ScoreRequest struct {
	Breakdown       map[int]float64 `json:"breakdown"`
	Comments        string          `json:"comments"`
	Recommendations string          `json:"recommendations"`
}

// ArbitrationRequest represents a coordinator's definitive score for a section
type ArbitrationRequest struct {
	ProjectID int             `json:"project_id"`
	JudgeID   int             `json:"judge_id"`
	Section   string          `json:"section"`
	Breakdown map[int]float64 `json:"breakdown"`
	Comments  string          `json:"comments"`
}

// PublishRequest represents a request to publish results at a level
type PublishRequest struct {
	Level     string `json:"level"`
	Region    string `json:"region,omitempty"`
	County    string `json:"county,omitempty"`
	SubCounty string `json:"sub_county,omitempty"`
}

// TieResolveRequest represents a tie-break override. A null score clears a
// previously set override.
type TieResolveRequest struct {
	ProjectID int      `json:"project_id"`
	Score     *float64 `json:"score"`
}

// PushNationalRequest represents a request to push the national cohort upstream
type PushNationalRequest struct {
	PortalURL string `json:"portal_url"`
}

// RegistrationStatusRequest represents a request to open or close registration
type RegistrationStatusRequest struct {
	Open bool `json:"open"`
}

// DeadlineRequest represents a request to set the submission deadline
type DeadlineRequest struct {
	Deadline string `json:"deadline"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	UpstreamURL        string `json:"upstream_url"`
	UpstreamUsername   string `json:"upstream_username"`
	UpstreamPassword   string `json:"upstream_password"`
	PublicURL          string `json:"public_url"`
	RegistrationOpen   *bool  `json:"registration_open"`
	LiveUpdates        *bool  `json:"live_updates"`
	SubmissionDeadline string `json:"submission_deadline"`
}

// DatabaseResetRequest represents a request to reset database tables
type DatabaseResetRequest struct {
	Tables []string `json:"tables"`
}

// LoginRequest represents an admin login
type LoginRequest struct {
	Password string `json:"password"`
}
