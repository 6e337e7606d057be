package cmd

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/recruiting"
	"github.com/spigell/resume-matcher/internal/store"
)

var validate = validator.New()

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Validate job and resume json files and store them",
	Run: func(cmd *cobra.Command, _ []string) {
		runLoad(cmd)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().String("jobs", "", "json file with an array of job postings")
	loadCmd.Flags().String("resumes", "", "json file with an array of resume records")
}

func runLoad(cmd *cobra.Command) {
	e := setup()

	jobsPath, _ := cmd.Flags().GetString("jobs")
	resumesPath, _ := cmd.Flags().GetString("resumes")
	if jobsPath == "" && resumesPath == "" {
		e.logger.Fatal("nothing to load", zap.String("hint", "pass --jobs and/or --resumes"))
	}

	st := e.openStore()
	defer st.Close()

	if jobsPath != "" {
		count, err := loadJobs(e, st, jobsPath)
		if err != nil {
			e.logger.Fatal("loading jobs", zap.String("path", jobsPath), zap.Error(err))
		}
		e.logger.Info("jobs loaded", zap.Int("count", count))
	}

	if resumesPath != "" {
		count, err := loadResumes(e, st, resumesPath)
		if err != nil {
			e.logger.Fatal("loading resumes", zap.String("path", resumesPath), zap.Error(err))
		}
		e.logger.Info("resumes loaded", zap.Int("count", count))
	}
}

func loadJobs(e *env, st store.Store, path string) (int, error) {
	var jobs []*matching.JobPosting
	if err := readJSONFile(path, &jobs); err != nil {
		return 0, err
	}

	for i, job := range jobs {
		if err := matching.ValidateJob(job); err != nil {
			return 0, fmt.Errorf("job #%d: %w", i, err)
		}
	}

	for _, job := range jobs {
		if err := st.PutJob(e.ctx, recruiting.JobRecord(job)); err != nil {
			return 0, err
		}
	}

	return len(jobs), nil
}

func loadResumes(e *env, st store.Store, path string) (int, error) {
	var resumes []*store.Resume
	if err := readJSONFile(path, &resumes); err != nil {
		return 0, err
	}

	for i, resume := range resumes {
		if resume == nil {
			return 0, fmt.Errorf("resume #%d is empty", i)
		}
		if err := validate.Struct(resume); err != nil {
			return 0, fmt.Errorf("resume #%d: %w", i, err)
		}
		// Unusable parsed data is kept; matching falls back to the flat fields.
		if _, quick, err := recruiting.ResumeView(resume); err != nil {
			e.logger.Warn("resume parsed data is invalid", zap.String("resume_id", resume.ID), zap.Error(err))
		} else if quick && resume.Status == store.StatusCompleted {
			e.logger.Warn("completed resume has no parsed data", zap.String("resume_id", resume.ID))
		}
	}

	for _, resume := range resumes {
		if err := st.PutResume(e.ctx, resume); err != nil {
			return 0, err
		}
	}

	return len(resumes), nil
}
