package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/matching"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a parsed resume file against a job posting file",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("resume", "r", "", "json file with the parsed resume")
	matchCmd.Flags().String("job", "", "json file with the job posting")
	matchCmd.Flags().BoolP("quick", "q", false, "treat the resume as a flat profile and use the quick analysis")
	matchCmd.MarkFlagRequired("resume")
	matchCmd.MarkFlagRequired("job")
}

func runMatch(cmd *cobra.Command) {
	e := setup()

	resumePath, _ := cmd.Flags().GetString("resume")
	jobPath, _ := cmd.Flags().GetString("job")
	quick, _ := cmd.Flags().GetBool("quick")

	resume, err := readResume(resumePath)
	if err != nil {
		e.logger.Fatal("reading the resume", zap.String("path", resumePath), zap.Error(err))
	}

	job, err := readJob(jobPath)
	if err != nil {
		e.logger.Fatal("reading the job", zap.String("path", jobPath), zap.Error(err))
	}

	matcher := e.newMatcher()

	var result matching.MatchResult
	if quick {
		result = matcher.QuickMatch(e.ctx, resume, job)
	} else {
		result = matcher.AnalyzeMatch(e.ctx, resume, job)
	}

	if err := printJSON(result); err != nil {
		e.logger.Fatal("printing the result", zap.Error(err))
	}
}

func readResume(path string) (*matching.ParsedResume, error) {
	var raw map[string]any
	if err := readJSONFile(path, &raw); err != nil {
		return nil, err
	}

	return matching.DecodeParsedResume(raw)
}

func readJob(path string) (*matching.JobPosting, error) {
	var job matching.JobPosting
	if err := readJSONFile(path, &job); err != nil {
		return nil, err
	}

	if err := matching.ValidateJob(&job); err != nil {
		return nil, err
	}

	return &job, nil
}

func readJSONFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}
