package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Score a stored resume against a stored job and record the application",
	Run: func(cmd *cobra.Command, _ []string) {
		runApply(cmd)
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().String("job", "", "job id")
	applyCmd.Flags().StringP("resume", "r", "", "resume id")
	applyCmd.MarkFlagRequired("job")
	applyCmd.MarkFlagRequired("resume")
}

func runApply(cmd *cobra.Command) {
	e := setup()

	jobID, _ := cmd.Flags().GetString("job")
	resumeID, _ := cmd.Flags().GetString("resume")

	st := e.openStore()
	defer st.Close()

	svc, closeService := e.newService(st)
	defer closeService()

	app, err := svc.Apply(e.ctx, jobID, resumeID)
	if err != nil {
		e.logger.Fatal("applying", zap.String("job_id", jobID), zap.String("resume_id", resumeID), zap.Error(err))
	}

	if err := printJSON(app); err != nil {
		e.logger.Fatal("printing the application", zap.Error(err))
	}
}
