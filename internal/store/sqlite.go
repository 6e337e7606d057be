package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	requirements TEXT NOT NULL DEFAULT '',
	skills       TEXT NOT NULL DEFAULT '[]',
	experience   TEXT NOT NULL DEFAULT '',
	salary       TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS resumes (
	id               TEXT PRIMARY KEY,
	owner_id         TEXT NOT NULL DEFAULT '',
	name             TEXT NOT NULL DEFAULT '',
	skills           TEXT NOT NULL DEFAULT '[]',
	experience_years REAL NOT NULL DEFAULT 0,
	status           TEXT NOT NULL DEFAULT 'pending',
	parsed_data      TEXT,
	created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS resumes_owner_idx ON resumes (owner_id, status);
CREATE TABLE IF NOT EXISTS applications (
	id             TEXT PRIMARY KEY,
	job_id         TEXT NOT NULL REFERENCES jobs (id),
	resume_id      TEXT NOT NULL REFERENCES resumes (id),
	score          INTEGER NOT NULL,
	confidence     INTEGER NOT NULL,
	recommendation TEXT NOT NULL,
	analysis       TEXT NOT NULL,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS applications_job_idx ON applications (job_id);
`

// SQLite is the embedded Store backend.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite database path is required")
	}

	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) PutJob(ctx context.Context, job *Job) error {
	if err := prepareJob(job); err != nil {
		return err
	}

	skills, err := json.Marshal(job.Skills)
	if err != nil {
		return fmt.Errorf("encode job skills: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, title, description, requirements, skills, experience, salary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			requirements = excluded.requirements,
			skills = excluded.skills,
			experience = excluded.experience,
			salary = excluded.salary`,
		job.ID, job.Title, job.Description, job.Requirements, string(skills),
		job.Experience, job.Salary, formatTime(job.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put job %s: %w", job.ID, err)
	}
	return nil
}

const sqliteJobColumns = `id, title, description, requirements, skills, experience, salary, created_at`

func (s *SQLite) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteJobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanSQLiteJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return job, nil
}

func (s *SQLite) ListJobs(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteJobColumns+` FROM jobs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*Job{}
	for rows.Next() {
		job, err := scanSQLiteJob(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *SQLite) PutResume(ctx context.Context, resume *Resume) error {
	if err := prepareResume(resume); err != nil {
		return err
	}

	skills, err := json.Marshal(resume.Skills)
	if err != nil {
		return fmt.Errorf("encode resume skills: %w", err)
	}
	parsed, err := parsedDataJSON(resume.ParsedData)
	if err != nil {
		return fmt.Errorf("encode parsed data: %w", err)
	}

	var parsedCol any
	if parsed != nil {
		parsedCol = string(parsed)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resumes (id, owner_id, name, skills, experience_years, status, parsed_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = excluded.owner_id,
			name = excluded.name,
			skills = excluded.skills,
			experience_years = excluded.experience_years,
			status = excluded.status,
			parsed_data = excluded.parsed_data`,
		resume.ID, resume.OwnerID, resume.Name, string(skills), resume.ExperienceYears,
		string(resume.Status), parsedCol, formatTime(resume.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put resume %s: %w", resume.ID, err)
	}
	return nil
}

const sqliteResumeColumns = `id, owner_id, name, skills, experience_years, status, parsed_data, created_at`

func (s *SQLite) GetResume(ctx context.Context, id string) (*Resume, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteResumeColumns+` FROM resumes WHERE id = ?`, id)
	resume, err := scanSQLiteResume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get resume %s: %w", id, err)
	}
	return resume, nil
}

func (s *SQLite) ListResumes(ctx context.Context, ownerID string, status ResumeStatus) ([]*Resume, error) {
	query := `SELECT ` + sqliteResumeColumns + ` FROM resumes WHERE owner_id = ?`
	args := []any{ownerID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	resumes := []*Resume{}
	for rows.Next() {
		resume, err := scanSQLiteResume(rows)
		if err != nil {
			return nil, fmt.Errorf("list resumes: %w", err)
		}
		resumes = append(resumes, resume)
	}
	return resumes, rows.Err()
}

func (s *SQLite) CreateApplication(ctx context.Context, app *Application) error {
	if err := prepareApplication(app); err != nil {
		return err
	}

	analysis, err := json.Marshal(app.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (id, job_id, resume_id, score, confidence, recommendation, analysis, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.JobID, app.ResumeID, app.Score, app.Confidence,
		string(app.Recommendation), string(analysis), formatTime(app.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (s *SQLite) ListApplications(ctx context.Context, jobID string) ([]*Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, resume_id, score, confidence, recommendation, analysis, created_at
		FROM applications WHERE job_id = ? ORDER BY created_at, id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := []*Application{}
	for rows.Next() {
		var (
			app       Application
			analysis  string
			createdAt string
		)
		if err := rows.Scan(&app.ID, &app.JobID, &app.ResumeID, &app.Score, &app.Confidence,
			&app.Recommendation, &analysis, &createdAt); err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		if err := decodeJSON([]byte(analysis), &app.Analysis, "analysis"); err != nil {
			return nil, err
		}
		if app.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		apps = append(apps, &app)
	}
	return apps, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteJob(row scanner) (*Job, error) {
	var (
		job       Job
		skills    string
		createdAt string
	)
	if err := row.Scan(&job.ID, &job.Title, &job.Description, &job.Requirements,
		&skills, &job.Experience, &job.Salary, &createdAt); err != nil {
		return nil, err
	}
	if err := decodeJSON([]byte(skills), &job.Skills, "job skills"); err != nil {
		return nil, err
	}
	var err error
	if job.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &job, nil
}

func scanSQLiteResume(row scanner) (*Resume, error) {
	var (
		resume    Resume
		skills    string
		parsed    sql.NullString
		createdAt string
	)
	if err := row.Scan(&resume.ID, &resume.OwnerID, &resume.Name, &skills,
		&resume.ExperienceYears, &resume.Status, &parsed, &createdAt); err != nil {
		return nil, err
	}
	if err := decodeJSON([]byte(skills), &resume.Skills, "resume skills"); err != nil {
		return nil, err
	}
	if parsed.Valid {
		if err := decodeJSON([]byte(parsed.String), &resume.ParsedData, "parsed data"); err != nil {
			return nil, err
		}
	}
	var err error
	if resume.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &resume, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
