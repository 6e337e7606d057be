package filtering

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/resume-matcher/internal/headhunter"
	"github.com/spigell/resume-matcher/internal/store"
)

type archivedFilter struct{}

// NewArchived creates a filter that removes archived vacancies.
func NewArchived() Filter {
	return archivedFilter{}
}

func (archivedFilter) Name() string { return "archived" }

func (archivedFilter) Apply(_ context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	next, step := keep(v, func(vacancy *headhunter.Vacancy) bool { return !vacancy.Archived })
	return next, step, nil
}

type employersFilter struct {
	employers map[string]struct{}
}

// NewExcludedEmployers creates a filter that removes vacancies of the given employer ids.
func NewExcludedEmployers(employers []string) Filter {
	set := make(map[string]struct{}, len(employers))
	for _, id := range employers {
		set[id] = struct{}{}
	}
	return &employersFilter{employers: set}
}

func (f *employersFilter) Name() string { return "employers" }

func (f *employersFilter) Apply(_ context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	next, step := keep(v, func(vacancy *headhunter.Vacancy) bool {
		_, excluded := f.employers[vacancy.Employer.ID]
		return !excluded
	})
	return next, step, nil
}

// JobGetter is the part of the record store used to detect known vacancies.
type JobGetter interface {
	GetJob(ctx context.Context, id string) (*store.Job, error)
}

type knownFilter struct {
	jobs JobGetter
}

// NewKnown creates a filter that removes vacancies already stored as jobs.
func NewKnown(jobs JobGetter) Filter {
	return &knownFilter{jobs: jobs}
}

func (f *knownFilter) Name() string { return "known" }

func (f *knownFilter) Apply(ctx context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	var lookupErr error
	next, step := keep(v, func(vacancy *headhunter.Vacancy) bool {
		if lookupErr != nil {
			return false
		}
		_, err := f.jobs.GetJob(ctx, vacancy.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return true
		case err != nil:
			lookupErr = fmt.Errorf("lookup job %s: %w", vacancy.ID, err)
		}
		return false
	})
	if lookupErr != nil {
		return nil, Step{}, lookupErr
	}
	return next, step, nil
}
