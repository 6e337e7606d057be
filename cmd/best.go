package cmd

import (
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var bestCmd = &cobra.Command{
	Use:   "best",
	Short: "Rank the owner's completed resumes against a job and optionally apply with the best one",
	Run: func(cmd *cobra.Command, _ []string) {
		runBest(cmd)
	},
}

func init() {
	rootCmd.AddCommand(bestCmd)

	bestCmd.Flags().String("job", "", "job id")
	bestCmd.Flags().String("owner", "", "owner of the resumes")
	bestCmd.Flags().BoolP("auto-approve", "y", false, "apply with the best resume without asking")
	bestCmd.Flags().Bool("no-apply", false, "only print the ranking")
	bestCmd.MarkFlagRequired("job")
	bestCmd.MarkFlagRequired("owner")
}

func runBest(cmd *cobra.Command) {
	e := setup()

	jobID, _ := cmd.Flags().GetString("job")
	ownerID, _ := cmd.Flags().GetString("owner")
	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	noApply, _ := cmd.Flags().GetBool("no-apply")

	st := e.openStore()
	defer st.Close()

	svc, closeService := e.newService(st)
	defer closeService()

	ranking, err := svc.BestResumeForJob(e.ctx, ownerID, jobID)
	if err != nil {
		e.logger.Fatal("ranking resumes", zap.String("job_id", jobID), zap.Error(err))
	}

	if err := printJSON(ranking); err != nil {
		e.logger.Fatal("printing the ranking", zap.Error(err))
	}

	if ranking.Best == nil {
		e.logger.Info("exiting", zap.String("reason", "no completed resumes found"))
		return
	}
	if noApply {
		return
	}

	action := PromptYes
	if !autoApprove {
		prompt := promptui.Select{
			Label: "Apply with resume " + ranking.Best.Resume.ID + "?",
			Items: []string{PromptYes, PromptNo},
		}
		_, action, err = prompt.Run()
		if err != nil {
			e.logger.Fatal("exiting", zap.Error(err))
		}
	}

	if action != PromptYes {
		e.logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return
	}

	app, err := svc.ApplyScored(e.ctx, ranking.Job, *ranking.Best)
	if err != nil {
		e.logger.Fatal("applying", zap.Error(err))
	}

	e.logger.Info("successfully applied",
		zap.String("application_id", app.ID),
		zap.String("resume_id", app.ResumeID),
		zap.Int("score", app.Score),
	)
}
