// Package store keeps jobs, resumes and applications in a relational database.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/resume-matcher/internal/matching"
)

// ErrNotFound is returned when a record with the requested id does not exist.
var ErrNotFound = errors.New("record not found")

// ResumeStatus tracks whether a resume has been parsed into structured data.
type ResumeStatus string

const (
	StatusPending   ResumeStatus = "pending"
	StatusCompleted ResumeStatus = "completed"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Job struct {
	ID           string    `json:"id" validate:"required"`
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Skills       []string  `json:"skills"`
	Experience   string    `json:"experience,omitempty"`
	Salary       string    `json:"salary,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Resume is the stored form of a candidate profile. ParsedData holds the
// structured profile produced by the parsing pipeline and may be nil.
type Resume struct {
	ID              string         `json:"id" validate:"required"`
	OwnerID         string         `json:"ownerId"`
	Name            string         `json:"name"`
	Skills          []string       `json:"skills"`
	ExperienceYears float64        `json:"experienceYears" validate:"gte=0"`
	Status          ResumeStatus   `json:"status" validate:"omitempty,oneof=pending completed"`
	ParsedData      map[string]any `json:"parsedData,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// Application records a resume submitted to a job together with its match.
type Application struct {
	ID             string                  `json:"id"`
	JobID          string                  `json:"jobId"`
	ResumeID       string                  `json:"resumeId"`
	Score          int                     `json:"score"`
	Confidence     int                     `json:"confidence"`
	Recommendation matching.Recommendation `json:"recommendation"`
	Analysis       matching.MatchResult    `json:"analysis"`
	CreatedAt      time.Time               `json:"createdAt"`
}

// Store is implemented by every supported database backend.
type Store interface {
	PutJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context) ([]*Job, error)

	PutResume(ctx context.Context, resume *Resume) error
	GetResume(ctx context.Context, id string) (*Resume, error)
	// ListResumes returns resumes of the owner. An empty status matches any status.
	ListResumes(ctx context.Context, ownerID string, status ResumeStatus) ([]*Resume, error)

	CreateApplication(ctx context.Context, app *Application) error
	ListApplications(ctx context.Context, jobID string) ([]*Application, error)

	Close() error
}

// Open connects to the backend selected by driver and creates the schema.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		return OpenSQLite(ctx, dsn)
	case DriverPostgres, "postgresql":
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
}

func prepareJob(job *Job) error {
	if job == nil || strings.TrimSpace(job.ID) == "" {
		return errors.New("job id is required")
	}
	if job.Skills == nil {
		job.Skills = []string{}
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	return nil
}

func prepareResume(resume *Resume) error {
	if resume == nil || strings.TrimSpace(resume.ID) == "" {
		return errors.New("resume id is required")
	}
	if resume.Skills == nil {
		resume.Skills = []string{}
	}
	if resume.Status == "" {
		resume.Status = StatusPending
	}
	if resume.CreatedAt.IsZero() {
		resume.CreatedAt = time.Now().UTC()
	}
	return nil
}

func prepareApplication(app *Application) error {
	if app == nil || strings.TrimSpace(app.ID) == "" {
		return errors.New("application id is required")
	}
	if app.JobID == "" || app.ResumeID == "" {
		return errors.New("application must reference a job and a resume")
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	return nil
}

// parsedDataJSON encodes ParsedData so that a nil map is stored as NULL.
func parsedDataJSON(data map[string]any) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	return json.Marshal(data)
}

func decodeJSON(raw []byte, dst any, what string) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", what, err)
	}
	return nil
}
