package cli

import (
	"time"

	"github.com/spf13/cobra"

	"fx-rates-pipeline/internal/app"
	"fx-rates-pipeline/internal/model"
)

var (
	chartDate     string
	chartCurrency string
	chartOutput   string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render a currency trend chart from the latest gold run",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := chartDate
		if date == "" {
			date = time.Now().UTC().Format(model.DateLayout)
		}

		return getApp().Chart(app.ChartOptions{
			Date:     date,
			Currency: chartCurrency,
			Output:   chartOutput,
		})
	},
}

func init() {
	chartCmd.Flags().StringVar(&chartDate, "date", "", "Target date (YYYY-MM-DD, defaults to today UTC)")
	chartCmd.Flags().StringVar(&chartCurrency, "currency", "", "Target currency code to plot")
	chartCmd.Flags().StringVar(&chartOutput, "output", "", "Path to write the PNG (defaults under the reports dir)")
}
