// Package recruiting runs the application workflows on top of the record
// store and a matcher.
package recruiting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-matcher/internal/events"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/store"
)

const DefaultConcurrency = 4

type Service struct {
	store       store.Store
	matcher     matching.Matcher
	publisher   events.Publisher
	logger      *zap.Logger
	concurrency int
}

type Options struct {
	Publisher   events.Publisher
	Logger      *zap.Logger
	Concurrency int
}

func NewService(st store.Store, matcher matching.Matcher, opts Options) (*Service, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if matcher == nil {
		matcher = matching.Basic{}
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	return &Service{
		store:       st,
		matcher:     matcher,
		publisher:   opts.Publisher,
		logger:      opts.Logger,
		concurrency: opts.Concurrency,
	}, nil
}

// Apply scores the resume against the job and records the application.
// Only store failures are returned; matching always produces a result.
func (s *Service) Apply(ctx context.Context, jobID, resumeID string) (*store.Application, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}

	resume, err := s.store.GetResume(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("load resume: %w", err)
	}

	return s.record(ctx, job, s.score(ctx, job, resume))
}

// ApplyScored records an application from a result that was already computed,
// for example the best entry of a Ranking. The resume is not scored again.
func (s *Service) ApplyScored(ctx context.Context, job *store.Job, scored ScoredResume) (*store.Application, error) {
	if job == nil || scored.Resume == nil {
		return nil, errors.New("job and resume are required")
	}

	return s.record(ctx, job, scored)
}

func (s *Service) record(ctx context.Context, job *store.Job, scored ScoredResume) (*store.Application, error) {
	resume := scored.Resume
	result := scored.Result

	app := &store.Application{
		ID:             uuid.NewString(),
		JobID:          job.ID,
		ResumeID:       resume.ID,
		Score:          result.OverallScore,
		Confidence:     result.Confidence,
		Recommendation: result.Recommendation,
		Analysis:       result,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.CreateApplication(ctx, app); err != nil {
		return nil, err
	}

	log := logger.WithFields(s.logger, logger.MatchFields(resume.ID, job.ID)...)
	log.Info("application created",
		zap.String("application_id", app.ID),
		zap.Int("score", app.Score),
		zap.String("recommendation", string(app.Recommendation)),
	)

	event := events.Event{
		Type:           events.TypeApplicationCreated,
		ApplicationID:  app.ID,
		JobID:          app.JobID,
		ResumeID:       app.ResumeID,
		Score:          app.Score,
		Recommendation: app.Recommendation,
		OccurredAt:     app.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn("publish application event failed", zap.Error(err))
	}

	return app, nil
}

// BestResumeForJob scores every completed resume of the owner against the job.
func (s *Service) BestResumeForJob(ctx context.Context, ownerID, jobID string) (*Ranking, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}

	resumes, err := s.store.ListResumes(ctx, ownerID, store.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("load resumes: %w", err)
	}

	results := make([]ScoredResume, len(resumes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, resume := range resumes {
		g.Go(func() error {
			results[i] = s.score(gctx, job, resume)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranking := newRanking(job, results)

	fields := []zap.Field{
		zap.String(logger.FieldOwnerID, ownerID),
		zap.String(logger.FieldJobID, job.ID),
		zap.Int("total", ranking.Summary.Total),
		zap.Int("average_score", ranking.Summary.AverageScore),
	}
	if ranking.Best != nil {
		fields = append(fields, zap.String("best_resume_id", ranking.Best.Resume.ID))
	}
	s.logger.Info("resumes ranked", fields...)

	return ranking, nil
}

func (s *Service) score(ctx context.Context, job *store.Job, resume *store.Resume) ScoredResume {
	view, quick, err := ResumeView(resume)
	if err != nil {
		logger.WithFields(s.logger, logger.MatchFields(resume.ID, job.ID)...).
			Warn("stored parsed data is unusable, matching on flat fields", zap.Error(err))
	}

	posting := JobView(job)

	var result matching.MatchResult
	if quick {
		result = s.matcher.QuickMatch(ctx, view, posting)
	} else {
		result = s.matcher.AnalyzeMatch(ctx, view, posting)
	}

	return ScoredResume{Resume: resume, Quick: quick, Result: result}
}
