package app

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
)

// Show prints the latest currency summary for a date as a table, ordered by
// absolute cumulative change.
func (a *App) Show(opts ShowOptions) error {
	manifest, metrics, err := a.newPipeline().LatestSummary(opts.Date)
	if err != nil {
		return err
	}

	sort.Slice(metrics, func(i, j int) bool {
		ai, aj := metrics[i].CumulativeChangePct, metrics[j].CumulativeChangePct
		if ai < 0 {
			ai = -ai
		}
		if aj < 0 {
			aj = -aj
		}
		if ai != aj {
			return ai > aj
		}
		return metrics[i].Currency < metrics[j].Currency
	})
	if opts.Limit > 0 && len(metrics) > opts.Limit {
		metrics = metrics[:opts.Limit]
	}

	fmt.Fprintf(os.Stdout, "run %s (%d currencies)\n", manifest.RunID, manifest.Currencies)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Currency\tRate\tChange%\tTrend\tVolatility\tObs")
	for _, m := range metrics {
		fmt.Fprintf(
			writer,
			"%s\t%.6f\t%+.2f\t%s\t%s\t%d\n",
			m.Currency,
			m.CurrentRate,
			m.CumulativeChangePct,
			m.TrendClass,
			m.VolatilityClass,
			m.ObservationCount,
		)
	}
	return writer.Flush()
}
