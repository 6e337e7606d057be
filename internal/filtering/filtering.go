// Package filtering narrows hh.ru search results before vacancies are imported.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/headhunter"
)

// Filter represents a single filtering step applied to vacancies.
type Filter interface {
	Name() string
	Apply(ctx context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Run executes the supplied filters sequentially and stops at the first error.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, v *headhunter.Vacancies) (*headhunter.Vacancies, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if v.Len() == 0 {
			break
		}

		next, info, err := step.Apply(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		v = next
	}

	return v, nil
}

// keep returns the vacancies accepted by fn, preserving order.
func keep(v *headhunter.Vacancies, fn func(*headhunter.Vacancy) bool) (*headhunter.Vacancies, Step) {
	initial := v.Len()
	kept := make([]*headhunter.Vacancy, 0, initial)
	for _, vacancy := range v.Items {
		if fn(vacancy) {
			kept = append(kept, vacancy)
		}
	}

	return &headhunter.Vacancies{Items: kept}, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}
