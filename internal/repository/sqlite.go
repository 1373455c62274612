package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/scifair/fairjudge/internal/errors"
	"github.com/scifair/fairjudge/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			registration_number TEXT UNIQUE NOT NULL,
			school TEXT NOT NULL,
			region TEXT NOT NULL,
			county TEXT NOT NULL,
			sub_county TEXT NOT NULL,
			zone TEXT,
			students TEXT,
			patron_id INTEGER,
			status TEXT DEFAULT 'Registered',
			current_level TEXT DEFAULT 'Sub-County',
			is_eliminated BOOLEAN DEFAULT 0,
			override_score_a REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (patron_id) REFERENCES judges(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS judges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			school TEXT,
			role TEXT DEFAULT 'judge',
			coordinated_category TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS assignments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			judge_id INTEGER NOT NULL,
			section TEXT NOT NULL,
			status TEXT DEFAULT 'Not Started',
			score REAL,
			score_breakdown TEXT,
			comments TEXT,
			recommendations TEXT,
			state TEXT DEFAULT 'active',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (project_id) REFERENCES projects(id),
			FOREIGN KEY (judge_id) REFERENCES judges(id)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_project ON assignments(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_judge ON assignments(judge_id)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_category ON projects(category)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_level ON projects(current_level)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_reg ON projects(registration_number)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	// Insert default settings if not exists
	defaultSettings := map[string]string{
		"registration_open": "true",
		"upstream_url":      "",
	}

	for key, value := range defaultSettings {
		_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
		if err != nil {
			return err
		}
	}

	return nil
}

// ==================== Project Methods ====================

const projectColumns = `id, title, category, registration_number, school, region, county,
	sub_county, zone, students, patron_id, status, current_level, is_eliminated, override_score_a`

func scanProject(scan func(...interface{}) error) (*models.Project, error) {
	var p models.Project
	var zone, studentsJSON, status sql.NullString
	var patronID sql.NullInt64
	var overrideScoreA sql.NullFloat64
	if err := scan(&p.ID, &p.Title, &p.Category, &p.RegistrationNumber, &p.School,
		&p.Region, &p.County, &p.SubCounty, &zone, &studentsJSON, &patronID,
		&status, &p.CurrentLevel, &p.IsEliminated, &overrideScoreA); err != nil {
		return nil, err
	}
	p.Zone = zone.String
	p.Status = status.String
	if studentsJSON.Valid && studentsJSON.String != "" {
		if err := json.Unmarshal([]byte(studentsJSON.String), &p.Students); err != nil {
			return nil, err
		}
	}
	if patronID.Valid {
		id := int(patronID.Int64)
		p.PatronID = &id
	}
	if overrideScoreA.Valid {
		score := overrideScoreA.Float64
		p.OverrideScoreA = &score
	}
	return &p, nil
}

// ListProjects returns all projects ordered by registration number
func (r *Repository) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY registration_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// GetProject returns a project by ID
func (r *Repository) GetProject(ctx context.Context, id int) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row.Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("project not found")
	}
	return p, err
}

// GetProjectByRegistration returns a project by its registration number
func (r *Repository) GetProjectByRegistration(ctx context.Context, regNumber string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE registration_number = ?`, regNumber)
	p, err := scanProject(row.Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("project not found")
	}
	return p, err
}

func marshalStudents(students []string) sql.NullString {
	if len(students) == 0 {
		return sql.NullString{}
	}
	data, _ := json.Marshal(students) // Marshal on []string never fails
	return sql.NullString{String: string(data), Valid: true}
}

// CreateProject creates a new project
func (r *Repository) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (title, category, registration_number, school, region, county,
			sub_county, zone, students, patron_id, status, current_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Title, p.Category, p.RegistrationNumber, p.School, p.Region, p.County,
		p.SubCounty, p.Zone, marshalStudents(p.Students), p.PatronID, p.Status, p.CurrentLevel)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateProject updates a project's registration details
func (r *Repository) UpdateProject(ctx context.Context, p *models.Project) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE projects SET title = ?, category = ?, registration_number = ?, school = ?,
			region = ?, county = ?, sub_county = ?, zone = ?, students = ?, patron_id = ?, status = ?
		WHERE id = ?
	`, p.Title, p.Category, p.RegistrationNumber, p.School, p.Region, p.County,
		p.SubCounty, p.Zone, marshalStudents(p.Students), p.PatronID, p.Status, p.ID)
	return err
}

// DeleteProject removes a project and its assignments
func (r *Repository) DeleteProject(ctx context.Context, id int) error {
	// Delete the project's assignments first (foreign key constraint)
	_, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE project_id = ?`, id)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return err
}

// SetOverrideScore sets or clears the tie-break replacement Part A score
func (r *Repository) SetOverrideScore(ctx context.Context, projectID int, score *float64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE projects SET override_score_a = ? WHERE id = ?`, score, projectID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("project not found")
	}
	return nil
}

// ApplyPublish promotes, eliminates and finalizes projects in a single
// transaction. A partially applied publish would corrupt the standings,
// so any failure rolls back the whole batch.
func (r *Repository) ApplyPublish(ctx context.Context, promote []int, to models.CompetitionLevel, eliminate []int, finalize []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range promote {
		if _, err := tx.ExecContext(ctx, `UPDATE projects SET current_level = ? WHERE id = ?`, to, id); err != nil {
			return err
		}
	}
	for _, id := range eliminate {
		if _, err := tx.ExecContext(ctx, `UPDATE projects SET is_eliminated = 1 WHERE id = ?`, id); err != nil {
			return err
		}
	}
	for _, id := range finalize {
		if _, err := tx.ExecContext(ctx, `UPDATE projects SET status = 'Finalized' WHERE id = ?`, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ==================== Judge Methods ====================

// ListJudges returns all judges
func (r *Repository) ListJudges(ctx context.Context) ([]models.Judge, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, school, role, coordinated_category FROM judges ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var judges []models.Judge
	for rows.Next() {
		var j models.Judge
		var school, coordinatedCategory sql.NullString
		if err := rows.Scan(&j.ID, &j.Name, &school, &j.Role, &coordinatedCategory); err != nil {
			return nil, err
		}
		j.School = school.String
		j.CoordinatedCategory = coordinatedCategory.String
		judges = append(judges, j)
	}
	return judges, rows.Err()
}

// GetJudge returns a judge by ID
func (r *Repository) GetJudge(ctx context.Context, id int) (*models.Judge, error) {
	var j models.Judge
	var school, coordinatedCategory sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, school, role, coordinated_category FROM judges WHERE id = ?`,
		id).Scan(&j.ID, &j.Name, &school, &j.Role, &coordinatedCategory)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("judge not found")
	}
	if err != nil {
		return nil, err
	}
	j.School = school.String
	j.CoordinatedCategory = coordinatedCategory.String
	return &j, nil
}

// CreateJudge creates a new judge
func (r *Repository) CreateJudge(ctx context.Context, j *models.Judge) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO judges (name, school, role, coordinated_category) VALUES (?, ?, ?, ?)`,
		j.Name, j.School, j.Role, j.CoordinatedCategory)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateJudge updates a judge
func (r *Repository) UpdateJudge(ctx context.Context, j *models.Judge) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE judges SET name = ?, school = ?, role = ?, coordinated_category = ? WHERE id = ?`,
		j.Name, j.School, j.Role, j.CoordinatedCategory, j.ID)
	return err
}

// DeleteJudge removes a judge and archives their active assignments
func (r *Repository) DeleteJudge(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE assignments SET state = 'archived', updated_at = ? WHERE judge_id = ? AND state = 'active'`,
		time.Now(), id)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM judges WHERE id = ?`, id)
	return err
}

// ==================== Assignment Methods ====================

const assignmentColumns = `id, project_id, judge_id, section, status, score,
	score_breakdown, comments, recommendations, state`

func scanAssignment(scan func(...interface{}) error) (*models.JudgeAssignment, error) {
	var a models.JudgeAssignment
	var score sql.NullFloat64
	var breakdownJSON, comments, recommendations sql.NullString
	if err := scan(&a.ID, &a.ProjectID, &a.JudgeID, &a.Section, &a.Status, &score,
		&breakdownJSON, &comments, &recommendations, &a.State); err != nil {
		return nil, err
	}
	if score.Valid {
		v := score.Float64
		a.Score = &v
	}
	if breakdownJSON.Valid && breakdownJSON.String != "" {
		if err := json.Unmarshal([]byte(breakdownJSON.String), &a.ScoreBreakdown); err != nil {
			return nil, err
		}
	}
	a.Comments = comments.String
	a.Recommendations = recommendations.String
	return &a, nil
}

func (r *Repository) queryAssignments(ctx context.Context, query string, args ...interface{}) ([]models.JudgeAssignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.JudgeAssignment
	for rows.Next() {
		a, err := scanAssignment(rows.Scan)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// ListAssignments returns every assignment, archived rows included.
// Score computation decides for itself what counts.
func (r *Repository) ListAssignments(ctx context.Context) ([]models.JudgeAssignment, error) {
	return r.queryAssignments(ctx, `SELECT `+assignmentColumns+` FROM assignments ORDER BY id`)
}

// ListProjectAssignments returns all assignments for a project
func (r *Repository) ListProjectAssignments(ctx context.Context, projectID int) ([]models.JudgeAssignment, error) {
	return r.queryAssignments(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE project_id = ? ORDER BY id`, projectID)
}

// ListJudgeAssignments returns a judge's active assignments
func (r *Repository) ListJudgeAssignments(ctx context.Context, judgeID int) ([]models.JudgeAssignment, error) {
	return r.queryAssignments(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE judge_id = ? AND state = 'active' ORDER BY id`, judgeID)
}

// GetAssignment returns an assignment by ID
func (r *Repository) GetAssignment(ctx context.Context, id int) (*models.JudgeAssignment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("assignment not found")
	}
	return a, err
}

// CreateAssignment creates a new active assignment
func (r *Repository) CreateAssignment(ctx context.Context, projectID, judgeID int, section models.Section) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO assignments (project_id, judge_id, section, status, state)
		VALUES (?, ?, ?, 'Not Started', 'active')
	`, projectID, judgeID, section)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// SaveScore records a judge's scoring progress on an assignment
func (r *Repository) SaveScore(ctx context.Context, id int, score float64, breakdown map[int]float64, comments, recommendations string, status models.AssignmentStatus) error {
	var breakdownJSON sql.NullString
	if len(breakdown) > 0 {
		data, err := json.Marshal(breakdown)
		if err != nil {
			return err
		}
		breakdownJSON = sql.NullString{String: string(data), Valid: true}
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE assignments
		SET score = ?, score_breakdown = ?, comments = ?, recommendations = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, score, breakdownJSON, comments, recommendations, status, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("assignment not found")
	}
	return nil
}

// ArchiveAssignment marks an assignment as superseded. The row is kept
// for audit history.
func (r *Repository) ArchiveAssignment(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE assignments SET state = 'archived', updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("assignment not found")
	}
	return nil
}

// DeleteAssignment removes an assignment outright
func (r *Repository) DeleteAssignment(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = ?`, id)
	return err
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ==================== Stats Methods ====================

// GetFairStats returns overall fair statistics
func (r *Repository) GetFairStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalProjects int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&totalProjects); err != nil {
		return nil, err
	}
	stats["total_projects"] = totalProjects

	var activeProjects int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE is_eliminated = 0`).Scan(&activeProjects); err != nil {
		return nil, err
	}
	stats["active_projects"] = activeProjects

	var totalJudges int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM judges`).Scan(&totalJudges); err != nil {
		return nil, err
	}
	stats["total_judges"] = totalJudges

	var completedAssignments int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments WHERE state = 'active' AND status = 'Completed'`).Scan(&completedAssignments); err != nil {
		return nil, err
	}
	stats["completed_assignments"] = completedAssignments

	var pendingAssignments int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments WHERE state = 'active' AND status != 'Completed'`).Scan(&pendingAssignments); err != nil {
		return nil, err
	}
	stats["pending_assignments"] = pendingAssignments

	return stats, nil
}

// ==================== Database Management Methods ====================

// validTables defines which tables can be safely cleared
var validTables = map[string]bool{
	"assignments": true, "projects": true, "judges": true, "settings": true,
}

// ClearTable clears all data from a table
// Only allows clearing whitelisted tables to prevent SQL injection
func (r *Repository) ClearTable(ctx context.Context, table string) error {
	// Validate table name against whitelist
	if !validTables[table] {
		return ErrInvalidTable
	}

	// Safe to use string concatenation now that we've validated the table name
	_, err := r.db.ExecContext(ctx, "DELETE FROM "+table)
	return err
}
