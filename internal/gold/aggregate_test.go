package gold

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fx-rates-pipeline/internal/model"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newEngine() *Engine {
	return NewEngine(DefaultOptions(), noopLogger())
}

func record(date, target string, rate float64) model.RateRecord {
	ts, _ := time.Parse(model.DateLayout, date)
	ts = ts.Add(6 * time.Hour)
	return model.RateRecord{
		BaseCurrency:          "USD",
		TargetCurrency:        target,
		ExchangeRate:          decimal.NewFromFloat(rate),
		CollectionTimestamp:   ts,
		CollectionDate:        date,
		SourceUpdateTimestamp: ts,
		PipelineVersion:       "1.0.0",
	}
}

// series builds one daily metric per date with the given mean rate.
func series(currency string, dates []string, rates []float64) []model.DailyMetric {
	metrics := make([]model.DailyMetric, len(dates))
	for i := range dates {
		ts, _ := time.Parse(model.DateLayout, dates[i])
		metrics[i] = model.DailyMetric{
			Date:         dates[i],
			Currency:     currency,
			RateMean:     rates[i],
			RateMin:      rates[i],
			RateMax:      rates[i],
			Observations: 1,
			LastUpdate:   ts,
		}
	}
	return metrics
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("%s: expected %f, got %f", name, want, got)
	}
}

func TestDailyMetricsGrouping(t *testing.T) {
	records := []model.RateRecord{
		record("2025-06-15", "EUR", 0.90),
		record("2025-06-15", "GBP", 0.80),
		record("2025-06-16", "EUR", 0.92),
	}

	daily := newEngine().DailyMetrics(records)
	if len(daily) != 3 {
		t.Fatalf("expected 3 daily metrics, got %d", len(daily))
	}
	// Ordered by date then currency.
	if daily[0].Currency != "EUR" || daily[0].Date != "2025-06-15" {
		t.Fatalf("unexpected first metric %+v", daily[0])
	}
	if daily[2].Date != "2025-06-16" {
		t.Fatalf("unexpected last metric %+v", daily[2])
	}
	approx(t, "rate_mean", daily[0].RateMean, 0.90)
	if daily[0].Observations != 1 {
		t.Fatalf("expected 1 observation, got %d", daily[0].Observations)
	}
}

func TestTrendsDailyAndCumulativeChange(t *testing.T) {
	daily := series("EUR", []string{"2025-06-13", "2025-06-14", "2025-06-15"}, []float64{1.00, 1.10, 1.21})

	points := newEngine().Trends(daily)
	if len(points) != 3 {
		t.Fatalf("expected 3 trend points, got %d", len(points))
	}
	approx(t, "first daily change", points[0].DailyChangePct, 0)
	approx(t, "second daily change", points[1].DailyChangePct, 10)
	approx(t, "third daily change", points[2].DailyChangePct, 10)
	approx(t, "cumulative change", points[2].CumulativeChangePct, 21)
}

func TestTrendsMovingAverageWindow(t *testing.T) {
	dates := make([]string, 9)
	rates := make([]float64, 9)
	base, _ := time.Parse(model.DateLayout, "2025-06-01")
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i).Format(model.DateLayout)
		rates[i] = float64(i + 1)
	}

	points := newEngine().Trends(series("EUR", dates, rates))

	// Reduced window while fewer than 7 observations exist.
	approx(t, "ma after 1 obs", points[0].MovingAverage, 1)
	approx(t, "ma after 3 obs", points[2].MovingAverage, 2)
	// Full window: mean of the most recent 7 values.
	approx(t, "ma after 9 obs", points[8].MovingAverage, (3+4+5+6+7+8+9)/7.0)
}

func TestTrendsRelativePosition(t *testing.T) {
	daily := series("EUR", []string{"2025-06-13", "2025-06-14", "2025-06-15"}, []float64{1.0, 2.0, 1.5})

	points := newEngine().Trends(daily)
	approx(t, "mid position", points[2].RelativePosition, 50)
	approx(t, "top position", points[1].RelativePosition, 100)
	// A flat band has no span; position reports the midpoint.
	approx(t, "flat band", points[0].RelativePosition, 50)
}

func TestSummarizeSingleObservation(t *testing.T) {
	points := newEngine().Trends(series("EUR", []string{"2025-06-15"}, []float64{0.90}))
	metrics := newEngine().Summaries(points)
	if len(metrics) != 1 {
		t.Fatalf("expected 1 metric, got %d", len(metrics))
	}

	m := metrics[0]
	approx(t, "moving average equals observation", m.MovingAverage, 0.90)
	approx(t, "volatility", m.Volatility, 0)
	if m.TrendClass != model.TrendStable {
		t.Fatalf("single observation must be stable, got %s", m.TrendClass)
	}
	if m.ObservationCount != 1 {
		t.Fatalf("expected 1 observation, got %d", m.ObservationCount)
	}
}

func TestSummarizeTrendClasses(t *testing.T) {
	cases := []struct {
		name  string
		rates []float64
		want  string
	}{
		{"rising", []float64{1.00, 1.00, 1.20}, model.TrendRising},
		{"falling", []float64{1.00, 1.00, 0.80}, model.TrendFalling},
		{"stable", []float64{1.00, 1.00, 1.001}, model.TrendStable},
	}
	dates := []string{"2025-06-13", "2025-06-14", "2025-06-15"}

	for _, tc := range cases {
		points := newEngine().Trends(series("EUR", dates, tc.rates))
		metrics := newEngine().Summaries(points)
		if metrics[0].TrendClass != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, metrics[0].TrendClass)
		}
	}
}

func TestClassifyVolatilityBoundaries(t *testing.T) {
	e := newEngine()
	cases := []struct {
		cv   float64
		want string
	}{
		{0.009, model.VolatilityLow},
		{0.01, model.VolatilityMedium},
		{0.03, model.VolatilityMedium},
		{0.05, model.VolatilityMedium},
		{0.0501, model.VolatilityHigh},
	}
	for _, tc := range cases {
		if got := e.classifyVolatility(tc.cv); got != tc.want {
			t.Fatalf("cv %f: expected %s, got %s", tc.cv, tc.want, got)
		}
	}
}

func TestSummarizeHistoricalBounds(t *testing.T) {
	dates := []string{"2025-06-13", "2025-06-14", "2025-06-15"}
	points := newEngine().Trends(series("EUR", dates, []float64{0.85, 0.95, 0.90}))
	metrics := newEngine().Summaries(points)

	m := metrics[0]
	approx(t, "historical min", m.HistoricalMin, 0.85)
	approx(t, "historical max", m.HistoricalMax, 0.95)
	approx(t, "mean rate", m.MeanRate, 0.90)
	approx(t, "current rate", m.CurrentRate, 0.90)
	if m.FirstDate != "2025-06-13" || m.LastDate != "2025-06-15" {
		t.Fatalf("unexpected period %s to %s", m.FirstDate, m.LastDate)
	}
}

func TestOverviewDistributionsAndMovers(t *testing.T) {
	dates := []string{"2025-06-13", "2025-06-14", "2025-06-15"}
	e := newEngine()

	daily := append(series("EUR", dates, []float64{1.00, 1.10, 1.20}),
		series("GBP", dates, []float64{1.00, 0.90, 0.80})...)
	metrics := e.Summaries(e.Trends(daily))

	overview := e.Overview(metrics, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	if overview.TotalCurrencies != 2 {
		t.Fatalf("expected 2 currencies, got %d", overview.TotalCurrencies)
	}
	if overview.TrendDistribution[model.TrendRising] != 1 || overview.TrendDistribution[model.TrendFalling] != 1 {
		t.Fatalf("unexpected trend distribution %v", overview.TrendDistribution)
	}
	if overview.TopMovers.BiggestGainer.Currency != "EUR" {
		t.Fatalf("expected EUR as biggest gainer, got %s", overview.TopMovers.BiggestGainer.Currency)
	}
	if overview.TopMovers.BiggestLoser.Currency != "GBP" {
		t.Fatalf("expected GBP as biggest loser, got %s", overview.TopMovers.BiggestLoser.Currency)
	}
	if overview.ObservationPeriod.Start != "2025-06-13" || overview.ObservationPeriod.End != "2025-06-15" {
		t.Fatalf("unexpected observation period %+v", overview.ObservationPeriod)
	}
	if overview.ObservationPeriod.TotalDays != 3 {
		t.Fatalf("expected 3 days, got %d", overview.ObservationPeriod.TotalDays)
	}
}

func TestOverviewEmpty(t *testing.T) {
	overview := newEngine().Overview(nil, time.Now().UTC())
	if overview.TotalCurrencies != 0 {
		t.Fatalf("expected empty overview, got %+v", overview)
	}
}
