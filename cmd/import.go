package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/filtering"
	"github.com/spigell/resume-matcher/internal/headhunter"
	"github.com/spigell/resume-matcher/internal/recruiting"
	"github.com/spigell/resume-matcher/internal/secrets"
	"github.com/spigell/resume-matcher/internal/store"
)

var importVacancyCmd = &cobra.Command{
	Use:   "import-vacancy [id...]",
	Short: "Import hh.ru vacancies as jobs, by id or by the configured search",
	Run: func(cmd *cobra.Command, args []string) {
		runImportVacancy(cmd, args)
	},
}

var importResumesCmd = &cobra.Command{
	Use:   "import-resumes",
	Short: "Import your hh.ru resumes as completed resume records",
	Run: func(cmd *cobra.Command, _ []string) {
		runImportResumes(cmd)
	},
}

func init() {
	rootCmd.AddCommand(importVacancyCmd)
	rootCmd.AddCommand(importResumesCmd)

	importVacancyCmd.Flags().BoolP("search", "s", false, "import vacancies found by the headhunter.search config section")
	importVacancyCmd.Flags().String("text", "", "override the search text")
	importVacancyCmd.Flags().StringP("resume", "r", "", "stored resume id used for the minimum match filter")
	importVacancyCmd.Flags().Int("min-score", 0, "drop vacancies scoring below this value for --resume (default headhunter.min-score)")

	importResumesCmd.Flags().String("owner", "", "owner id assigned to the imported resumes")
	importResumesCmd.MarkFlagRequired("owner")
}

func (e *env) newHeadHunter() *headhunter.Client {
	cfg := e.config.HeadHunter

	token, err := secrets.Load(secrets.Source{
		Name: "headhunter token",
		File: cfg.TokenFile,
		Env:  "HH_TOKEN",
	})
	if err != nil {
		e.logger.Fatal(
			"loading headhunter token",
			zap.Error(err),
			zap.String("hint", "set HH_TOKEN_FILE environment variable or the 'headhunter.token-file' key in the configuration file"),
		)
	}

	hh := headhunter.New(e.logger, token)
	if cfg.UserAgent != "" {
		hh.UserAgent = cfg.UserAgent
	}

	return hh
}

func runImportVacancy(cmd *cobra.Command, ids []string) {
	e := setup()

	search, _ := cmd.Flags().GetBool("search")
	if !search && len(ids) == 0 {
		e.logger.Fatal("nothing to import", zap.String("hint", "pass vacancy ids or --search"))
	}

	st := e.openStore()
	defer st.Close()

	hh := e.newHeadHunter()

	var vacancies []*headhunter.Vacancy
	if search {
		found, err := searchVacancies(cmd, e, st, hh)
		if err != nil {
			e.logger.Fatal("searching vacancies", zap.Error(err))
		}
		vacancies = found
	} else {
		for _, id := range ids {
			vacancy, err := hh.GetVacancy(e.ctx, id)
			if err != nil {
				e.logger.Fatal("getting vacancy", zap.String("vacancy_id", id), zap.Error(err))
			}
			vacancies = append(vacancies, vacancy)
		}
	}

	imported := 0
	for _, vacancy := range vacancies {
		job, err := vacancy.ToJob()
		if err != nil {
			e.logger.Warn("skipping vacancy", zap.String("vacancy_id", vacancy.ID), zap.Error(err))
			continue
		}

		if err := st.PutJob(e.ctx, job); err != nil {
			e.logger.Fatal("storing job", zap.String("job_id", job.ID), zap.Error(err))
		}

		e.logger.Info("vacancy imported",
			zap.String("job_id", job.ID),
			zap.String("title", job.Title),
			zap.Strings("skills", job.Skills),
		)
		imported++
	}

	e.logger.Info("import finished", zap.Int("count", imported))
}

// searchVacancies runs the configured search through the filtering pipeline
// and returns full vacancy documents.
func searchVacancies(cmd *cobra.Command, e *env, st store.Store, hh *headhunter.Client) ([]*headhunter.Vacancy, error) {
	cfg := e.config.HeadHunter

	params := cfg.Search
	if params == nil {
		params = &headhunter.SearchParams{}
	}
	if text, _ := cmd.Flags().GetString("text"); text != "" {
		params.Text = text
	}
	if strings.TrimSpace(params.Text) == "" {
		return nil, errors.New("search text is required (headhunter.search.text or --text)")
	}

	e.logger.Info("starting the search", zap.String("search", params.Text))

	found, err := hh.Search(e.ctx, params)
	if err != nil {
		return nil, err
	}

	e.logger.Info("getting vacancies", zap.Int("count", found.Len()))

	steps := []filtering.Filter{
		filtering.NewArchived(),
		filtering.NewExcludedEmployers(cfg.ExcludeEmployers),
		filtering.NewKnown(st),
	}

	resumeID, _ := cmd.Flags().GetString("resume")
	minScore := cfg.MinScore
	if cmd.Flags().Changed("min-score") {
		minScore, _ = cmd.Flags().GetInt("min-score")
	}

	scored := resumeID != "" && minScore > 0
	if scored {
		record, err := st.GetResume(e.ctx, resumeID)
		if err != nil {
			return nil, err
		}

		view, quick, err := recruiting.ResumeView(record)
		if err != nil {
			e.logger.Warn("stored parsed data is unusable, matching on flat fields", zap.Error(err))
		}

		steps = append(steps, filtering.NewMinimumMatch(filtering.MatchConfig{
			Resume:   view,
			Quick:    quick,
			MinScore: minScore,
		}, hh, e.newMatcher(), e.logger))
	}

	filtered, err := filtering.Run(e.ctx, e.logger, steps, found)
	if err != nil {
		return nil, err
	}

	if scored {
		return filtered.Items, nil
	}

	// Search results lack descriptions and key skills.
	detailed := make([]*headhunter.Vacancy, 0, filtered.Len())
	for _, id := range filtered.IDs() {
		vacancy, err := hh.GetVacancy(e.ctx, id)
		if err != nil {
			return nil, err
		}
		detailed = append(detailed, vacancy)
	}

	return detailed, nil
}

func runImportResumes(cmd *cobra.Command) {
	e := setup()

	owner, _ := cmd.Flags().GetString("owner")

	st := e.openStore()
	defer st.Close()

	hh := e.newHeadHunter()

	resumes, err := hh.GetMineResumes(e.ctx)
	if err != nil {
		e.logger.Fatal("getting mine resumes", zap.Error(err))
	}

	e.logger.Info("getting mine resumes", zap.Int("count", resumes.Len()))

	for _, r := range resumes.Items {
		details, err := hh.GetResumeDetails(e.ctx, r.ID)
		if err != nil {
			e.logger.Fatal("getting resume details", zap.String("resume_id", r.ID), zap.Error(err))
		}

		record, err := details.ToRecord(owner)
		if err != nil {
			e.logger.Warn("skipping resume", zap.String("resume_id", r.ID), zap.Error(err))
			continue
		}

		if err := st.PutResume(e.ctx, record); err != nil {
			e.logger.Fatal("storing resume", zap.String("resume_id", record.ID), zap.Error(err))
		}

		e.logger.Info("resume imported", zap.String("resume_id", record.ID), zap.String("title", r.Title))
	}
}
