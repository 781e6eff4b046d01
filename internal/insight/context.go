package insight

import (
	"fmt"
	"sort"
	"strings"

	"fx-rates-pipeline/internal/model"
)

// buildContext renders the analysis prompt context from gold artifacts only.
// Raw and silver tiers are never consulted; the prompt sees the same numbers
// the dashboard does.
func buildContext(summary []model.CurrencyMetric, overview model.MarketOverview, topN int) string {
	if topN <= 0 {
		topN = 15
	}

	ranked := make([]model.CurrencyMetric, len(summary))
	copy(ranked, summary)
	sort.Slice(ranked, func(i, j int) bool {
		ai, aj := abs(ranked[i].CumulativeChangePct), abs(ranked[j].CumulativeChangePct)
		if ai != aj {
			return ai > aj
		}
		return ranked[i].Currency < ranked[j].Currency
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Market period: %s to %s (%d days, %d currencies)\n",
		overview.ObservationPeriod.Start,
		overview.ObservationPeriod.End,
		overview.ObservationPeriod.TotalDays,
		overview.TotalCurrencies)
	fmt.Fprintf(&b, "Trend distribution: %s\n", formatDistribution(overview.TrendDistribution))
	fmt.Fprintf(&b, "Volatility distribution: %s\n", formatDistribution(overview.VolatilityBreakdown))
	fmt.Fprintf(&b, "Biggest gainer: %s (%+.2f%%), biggest loser: %s (%+.2f%%)\n",
		overview.TopMovers.BiggestGainer.Currency, overview.TopMovers.BiggestGainer.Value,
		overview.TopMovers.BiggestLoser.Currency, overview.TopMovers.BiggestLoser.Value)

	b.WriteString("\nTop movers by absolute cumulative change:\n")
	for _, m := range ranked {
		fmt.Fprintf(&b, "- %s: rate %.6f, change %+.2f%%, trend %s, volatility %s (cv %.4f)\n",
			m.Currency, m.CurrentRate, m.CumulativeChangePct, m.TrendClass, m.VolatilityClass, m.Volatility)
	}
	return b.String()
}

func formatDistribution(dist map[string]int) string {
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, dist[k]))
	}
	return strings.Join(parts, ", ")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
