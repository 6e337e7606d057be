package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/utils"
)

// FallbackMode selects the result returned when the reasoning service fails.
type FallbackMode string

const (
	// FallbackTechnicalError returns a neutral placeholder with every job skill missing.
	FallbackTechnicalError FallbackMode = "technical-error"
	// FallbackBasic returns the heuristic score with confidence lowered to the fallback ceiling.
	FallbackBasic FallbackMode = "basic"

	DefaultTimeout      = 10 * time.Second
	defaultMaxLogLength = 200
)

// ParseFallbackMode accepts the configuration spelling of a fallback mode.
// An empty value selects FallbackTechnicalError.
func ParseFallbackMode(s string) (FallbackMode, error) {
	switch mode := FallbackMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return FallbackTechnicalError, nil
	case FallbackTechnicalError, FallbackBasic:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported fallback mode: %s", s)
	}
}

type Options struct {
	Timeout      time.Duration
	Fallback     FallbackMode
	MaxLogLength int
	Logger       *zap.Logger
}

// Adaptive scores matches through a reasoning service and falls back to a
// deterministic result on any failure. It keeps no per-call state.
type Adaptive struct {
	generator Generator
	timeout   time.Duration
	fallback  FallbackMode
	basic     matching.Basic
	logger    *zap.Logger
	maxLogLen int
}

var _ matching.Matcher = (*Adaptive)(nil)

func NewAdaptive(generator Generator, opts Options) (*Adaptive, error) {
	if generator == nil {
		return nil, errors.New("reasoning service generator is required")
	}

	fallback, err := ParseFallbackMode(string(opts.Fallback))
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Adaptive{
		generator: generator,
		timeout:   opts.Timeout,
		fallback:  fallback,
		logger:    opts.Logger,
		maxLogLen: opts.MaxLogLength,
	}, nil
}

// AnalyzeMatch performs the holistic analysis using the full resume structure.
func (a *Adaptive) AnalyzeMatch(ctx context.Context, resume *matching.ParsedResume, job *matching.JobPosting) matching.MatchResult {
	resume, job = orEmpty(resume, job)

	prompt, err := buildPrompt(resume, job)
	if err != nil {
		return a.fallbackResult(resume, job, false, err)
	}

	return a.run(ctx, prompt, resume, job, false)
}

// QuickMatch uses an abbreviated prompt for resumes that only carry a name,
// a flat skill list and years of experience.
func (a *Adaptive) QuickMatch(ctx context.Context, resume *matching.ParsedResume, job *matching.JobPosting) matching.MatchResult {
	resume, job = orEmpty(resume, job)
	return a.run(ctx, buildQuickPrompt(resume, job), resume, job, true)
}

func (a *Adaptive) run(ctx context.Context, prompt string, resume *matching.ParsedResume, job *matching.JobPosting, quick bool) matching.MatchResult {
	started := time.Now()

	a.logger.Debug("reasoning service request",
		zap.String("job_id", job.ID),
		zap.String("model", a.generator.Model()),
		zap.Bool("quick", quick),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generate(ctx, prompt)
	if err != nil {
		return a.fallbackResult(resume, job, quick, err)
	}

	a.logger.Debug("reasoning service response",
		zap.String("job_id", job.ID),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	result, reported, err := parseResponse(raw)
	if err != nil {
		return a.fallbackResult(resume, job, quick, err)
	}

	if reported != string(result.Recommendation) {
		a.logger.Debug("reported recommendation disagrees with score",
			zap.String("job_id", job.ID),
			zap.String("reported", reported),
			zap.String("derived", string(result.Recommendation)),
			zap.Int("overall_score", result.OverallScore),
		)
	}

	return result
}

// generate bounds the service call by the matcher timeout even if the
// generator ignores its context.
func (a *Adaptive) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}

	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("reasoning service panicked: %v", r)}
			}
		}()
		text, err := a.generator.GenerateContent(ctx, prompt)
		done <- reply{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("reasoning service: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		if strings.TrimSpace(r.text) == "" {
			return "", ErrEmptyResponse
		}
		return r.text, nil
	}
}

func (a *Adaptive) fallbackResult(resume *matching.ParsedResume, job *matching.JobPosting, quick bool, cause error) matching.MatchResult {
	a.logger.Warn("falling back after reasoning service failure",
		zap.String("job_id", job.ID),
		zap.Bool("quick", quick),
		zap.String("fallback", string(a.fallback)),
		zap.Error(cause),
	)

	if a.fallback == FallbackBasic {
		if quick {
			return matching.Degraded(a.basic.QuickMatch(context.Background(), resume, job))
		}
		return matching.Degraded(a.basic.AnalyzeMatch(context.Background(), resume, job))
	}

	return matching.TechnicalErrorResult(job)
}

func orEmpty(resume *matching.ParsedResume, job *matching.JobPosting) (*matching.ParsedResume, *matching.JobPosting) {
	if resume == nil {
		resume = &matching.ParsedResume{}
	}
	if job == nil {
		job = &matching.JobPosting{}
	}
	return resume, job
}
