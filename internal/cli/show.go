package cli

import (
	"time"

	"github.com/spf13/cobra"

	"fx-rates-pipeline/internal/app"
	"fx-rates-pipeline/internal/model"
)

var (
	showDate  string
	showLimit int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the latest currency summary for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := showDate
		if date == "" {
			date = time.Now().UTC().Format(model.DateLayout)
		}

		return getApp().Show(app.ShowOptions{Date: date, Limit: showLimit})
	},
}

func init() {
	showCmd.Flags().StringVar(&showDate, "date", "", "Target date (YYYY-MM-DD, defaults to today UTC)")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Maximum currencies to display")
}
