package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spigell/resume-matcher/internal/matching"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	requirements TEXT NOT NULL DEFAULT '',
	skills       JSONB NOT NULL DEFAULT '[]',
	experience   TEXT NOT NULL DEFAULT '',
	salary       TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS resumes (
	id               TEXT PRIMARY KEY,
	owner_id         TEXT NOT NULL DEFAULT '',
	name             TEXT NOT NULL DEFAULT '',
	skills           JSONB NOT NULL DEFAULT '[]',
	experience_years DOUBLE PRECISION NOT NULL DEFAULT 0,
	status           TEXT NOT NULL DEFAULT 'pending',
	parsed_data      JSONB,
	created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS resumes_owner_idx ON resumes (owner_id, status);
CREATE TABLE IF NOT EXISTS applications (
	id             TEXT PRIMARY KEY,
	job_id         TEXT NOT NULL REFERENCES jobs (id),
	resume_id      TEXT NOT NULL REFERENCES resumes (id),
	score          INTEGER NOT NULL,
	confidence     INTEGER NOT NULL,
	recommendation TEXT NOT NULL,
	analysis       JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS applications_job_idx ON applications (job_id);
`

// Postgres is the server Store backend.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// OpenPostgres creates and verifies a pgxpool connection pool, then creates the schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: init schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) PutJob(ctx context.Context, job *Job) error {
	if err := prepareJob(job); err != nil {
		return err
	}

	skills, err := json.Marshal(job.Skills)
	if err != nil {
		return fmt.Errorf("encode job skills: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO jobs (id, title, description, requirements, skills, experience, salary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			requirements = EXCLUDED.requirements,
			skills = EXCLUDED.skills,
			experience = EXCLUDED.experience,
			salary = EXCLUDED.salary`,
		job.ID, job.Title, job.Description, job.Requirements, skills,
		job.Experience, job.Salary, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put job %s: %w", job.ID, err)
	}
	return nil
}

const postgresJobColumns = `id, title, description, requirements, skills, experience, salary, created_at`

func (p *Postgres) GetJob(ctx context.Context, id string) (*Job, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+postgresJobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanPostgresJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return job, nil
}

func (p *Postgres) ListJobs(ctx context.Context) ([]*Job, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+postgresJobColumns+` FROM jobs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*Job{}
	for rows.Next() {
		job, err := scanPostgresJob(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (p *Postgres) PutResume(ctx context.Context, resume *Resume) error {
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
		parsedCol = parsed
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO resumes (id, owner_id, name, skills, experience_years, status, parsed_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			name = EXCLUDED.name,
			skills = EXCLUDED.skills,
			experience_years = EXCLUDED.experience_years,
			status = EXCLUDED.status,
			parsed_data = EXCLUDED.parsed_data`,
		resume.ID, resume.OwnerID, resume.Name, skills, resume.ExperienceYears,
		string(resume.Status), parsedCol, resume.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put resume %s: %w", resume.ID, err)
	}
	return nil
}

const postgresResumeColumns = `id, owner_id, name, skills, experience_years, status, parsed_data, created_at`

func (p *Postgres) GetResume(ctx context.Context, id string) (*Resume, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+postgresResumeColumns+` FROM resumes WHERE id = $1`, id)
	resume, err := scanPostgresResume(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get resume %s: %w", id, err)
	}
	return resume, nil
}

func (p *Postgres) ListResumes(ctx context.Context, ownerID string, status ResumeStatus) ([]*Resume, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+postgresResumeColumns+` FROM resumes
		WHERE owner_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at, id`, ownerID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	resumes := []*Resume{}
	for rows.Next() {
		resume, err := scanPostgresResume(rows)
		if err != nil {
			return nil, fmt.Errorf("list resumes: %w", err)
		}
		resumes = append(resumes, resume)
	}
	return resumes, rows.Err()
}

func (p *Postgres) CreateApplication(ctx context.Context, app *Application) error {
	if err := prepareApplication(app); err != nil {
		return err
	}

	analysis, err := json.Marshal(app.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO applications (id, job_id, resume_id, score, confidence, recommendation, analysis, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		app.ID, app.JobID, app.ResumeID, app.Score, app.Confidence,
		string(app.Recommendation), analysis, app.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("createApplication: %w", err)
	}
	return nil
}

func (p *Postgres) ListApplications(ctx context.Context, jobID string) ([]*Application, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, job_id, resume_id, score, confidence, recommendation, analysis, created_at
		FROM applications WHERE job_id = $1 ORDER BY created_at, id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := []*Application{}
	for rows.Next() {
		var (
			app            Application
			recommendation string
			analysis       []byte
		)
		if err := rows.Scan(&app.ID, &app.JobID, &app.ResumeID, &app.Score, &app.Confidence,
			&recommendation, &analysis, &app.CreatedAt); err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		app.Recommendation = matching.Recommendation(recommendation)
		if err := decodeJSON(analysis, &app.Analysis, "analysis"); err != nil {
			return nil, err
		}
		apps = append(apps, &app)
	}
	return apps, rows.Err()
}

func scanPostgresJob(row pgx.Row) (*Job, error) {
	var (
		job    Job
		skills []byte
	)
	if err := row.Scan(&job.ID, &job.Title, &job.Description, &job.Requirements,
		&skills, &job.Experience, &job.Salary, &job.CreatedAt); err != nil {
		return nil, err
	}
	if err := decodeJSON(skills, &job.Skills, "job skills"); err != nil {
		return nil, err
	}
	return &job, nil
}

func scanPostgresResume(row pgx.Row) (*Resume, error) {
	var (
		resume Resume
		status string
		skills []byte
		parsed []byte
	)
	if err := row.Scan(&resume.ID, &resume.OwnerID, &resume.Name, &skills,
		&resume.ExperienceYears, &status, &parsed, &resume.CreatedAt); err != nil {
		return nil, err
	}
	resume.Status = ResumeStatus(status)
	if err := decodeJSON(skills, &resume.Skills, "resume skills"); err != nil {
		return nil, err
	}
	if err := decodeJSON(parsed, &resume.ParsedData, "parsed data"); err != nil {
		return nil, err
	}
	return &resume, nil
}
