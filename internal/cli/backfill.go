package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fx-rates-pipeline/internal/app"
)

var (
	backfillFrom  string
	backfillTo    string
	backfillStage string
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Re-run a stage over a historical date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		if backfillFrom == "" || backfillTo == "" {
			return fmt.Errorf("--from and --to must be provided")
		}

		return getApp().Backfill(cmd.Context(), app.BackfillOptions{
			From:  backfillFrom,
			To:    backfillTo,
			Stage: backfillStage,
		})
	},
}

func init() {
	backfillCmd.Flags().StringVar(&backfillFrom, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	backfillCmd.Flags().StringVar(&backfillTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	backfillCmd.Flags().StringVar(&backfillStage, "stage", "transform", "Stage to re-run per date: transform, load or insight")
}
