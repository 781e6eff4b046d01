package cli

import (
	"time"

	"github.com/spf13/cobra"

	"fx-rates-pipeline/internal/app"
	"fx-rates-pipeline/internal/model"
)

var (
	runStage    string
	runDate     string
	runTolerate bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute pipeline stages for a target date",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()
		if runTolerate {
			a.Config.Insight.TolerateFailure = true
		}

		date := runDate
		if date == "" {
			date = time.Now().UTC().Format(model.DateLayout)
		}

		return a.Run(cmd.Context(), app.RunOptions{Stage: runStage, Date: date})
	},
}

func init() {
	runCmd.Flags().StringVar(&runStage, "stage", "all", "Stage to execute: ingest, transform, load, insight or all")
	runCmd.Flags().StringVar(&runDate, "date", "", "Target date (YYYY-MM-DD, defaults to today UTC)")
	runCmd.Flags().BoolVar(&runTolerate, "tolerate-insight-failure", false, "Write a numeric fallback report when insight generation fails")
}
