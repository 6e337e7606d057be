package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/headhunter"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/recruiting"
)

// VacancyFetcher loads full vacancy documents.
type VacancyFetcher interface {
	GetVacancy(ctx context.Context, id string) (*headhunter.Vacancy, error)
}

// MatchConfig configures the minimum match filter.
type MatchConfig struct {
	Resume   *matching.ParsedResume
	Quick    bool
	MinScore int
}

type matchFilter struct {
	cfg     MatchConfig
	fetcher VacancyFetcher
	matcher matching.Matcher
	logger  *zap.Logger
}

// NewMinimumMatch creates a filter that replaces each vacancy with its full
// document and drops those scoring below MinScore for the resume.
func NewMinimumMatch(cfg MatchConfig, fetcher VacancyFetcher, matcher matching.Matcher, logger *zap.Logger) Filter {
	if matcher == nil {
		matcher = matching.Basic{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &matchFilter{cfg: cfg, fetcher: fetcher, matcher: matcher, logger: logger}
}

func (f *matchFilter) Name() string { return "minimum_match" }

func (f *matchFilter) Apply(ctx context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	initial := v.Len()
	approved := make([]*headhunter.Vacancy, 0, initial)

	for _, vacancy := range v.Items {
		detailed, err := f.fetcher.GetVacancy(ctx, vacancy.ID)
		if err != nil {
			return nil, Step{}, err
		}

		job, err := detailed.ToJob()
		if err != nil {
			return nil, Step{}, err
		}

		posting := recruiting.JobView(job)
		var result matching.MatchResult
		if f.cfg.Quick {
			result = f.matcher.QuickMatch(ctx, f.cfg.Resume, posting)
		} else {
			result = f.matcher.AnalyzeMatch(ctx, f.cfg.Resume, posting)
		}

		if result.OverallScore < f.cfg.MinScore {
			f.logger.Info("vacancy below minimum match score",
				zap.String("vacancy_id", vacancy.ID),
				zap.Int("score", result.OverallScore),
				zap.String("recommendation", string(result.Recommendation)),
			)
			continue
		}

		f.logger.Debug("vacancy approved",
			zap.String("vacancy_id", vacancy.ID),
			zap.Int("score", result.OverallScore),
		)
		approved = append(approved, detailed)
	}

	if initial > 0 && len(approved) == 0 {
		f.logger.Info("no vacancy reached the minimum match score", zap.Int("min_score", f.cfg.MinScore))
	}

	return &headhunter.Vacancies{Items: approved}, Step{Initial: initial, Dropped: initial - len(approved), Left: len(approved)}, nil
}
