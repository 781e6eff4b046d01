package app

import (
	"errors"
	"path/filepath"
)

// Chart renders a currency's trend chart from the latest gold run.
func (a *App) Chart(opts ChartOptions) error {
	if opts.Currency == "" {
		return errors.New("--currency is required")
	}

	output := opts.Output
	if output == "" {
		output = filepath.Join(a.reportsDir(), "trend_"+opts.Currency+"_"+opts.Date+".png")
	}

	return a.newPipeline().RenderChart(a.newRenderer(), opts.Date, opts.Currency, output)
}
