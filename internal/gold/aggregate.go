package gold

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"fx-rates-pipeline/internal/model"
)

// Options tune the aggregation engine.
type Options struct {
	// MovingAverageWindow is the number of most recent observations averaged;
	// fewer observations shrink the window rather than erroring.
	MovingAverageWindow int
	// TrendEpsilon is the relative band around the moving average inside
	// which a currency is classified stable.
	TrendEpsilon float64
	// VolatilityLow / VolatilityHigh split the coefficient of variation into
	// low (< low), medium ([low, high]) and high (> high).
	VolatilityLow  float64
	VolatilityHigh float64
	// BandWindow is the lookback for the min/max band and relative position.
	BandWindow int
}

// DefaultOptions returns the standard aggregation tuning.
func DefaultOptions() Options {
	return Options{
		MovingAverageWindow: 7,
		TrendEpsilon:        0.005,
		VolatilityLow:       0.01,
		VolatilityHigh:      0.05,
		BandWindow:          30,
	}
}

// Engine computes gold-tier metrics from silver records. It reads its input
// as-is and never mutates the silver tier.
type Engine struct {
	opts   Options
	logger zerolog.Logger
}

// NewEngine constructs an aggregation engine.
func NewEngine(opts Options, logger zerolog.Logger) *Engine {
	if opts.MovingAverageWindow <= 0 {
		opts.MovingAverageWindow = 7
	}
	if opts.BandWindow <= 0 {
		opts.BandWindow = 30
	}
	return &Engine{opts: opts, logger: logger.With().Str("component", "aggregation_engine").Logger()}
}

// DailyMetrics groups records by (collection date, target currency) and
// computes per-day statistics, ordered by date then currency.
func (e *Engine) DailyMetrics(records []model.RateRecord) []model.DailyMetric {
	type bucket struct {
		rates []float64
		last  model.RateRecord
	}
	buckets := make(map[[2]string]*bucket)

	for _, rec := range records {
		key := [2]string{rec.CollectionDate, rec.TargetCurrency}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.rates = append(b.rates, rec.ExchangeRate.InexactFloat64())
		if rec.CollectionTimestamp.After(b.last.CollectionTimestamp) {
			b.last = rec
		}
	}

	metrics := make([]model.DailyMetric, 0, len(buckets))
	for key, b := range buckets {
		m := meanOf(b.rates)
		std := sampleStddev(b.rates, m)
		minRate, maxRate := minMax(b.rates)

		cv := 0.0
		if m != 0 {
			cv = std / m
		}

		metrics = append(metrics, model.DailyMetric{
			Date:         key[0],
			Currency:     key[1],
			RateMean:     m,
			RateStd:      std,
			RateMin:      minRate,
			RateMax:      maxRate,
			RateRange:    maxRate - minRate,
			RateCV:       cv,
			Observations: len(b.rates),
			LastUpdate:   b.last.CollectionTimestamp,
		})
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].Date != metrics[j].Date {
			return metrics[i].Date < metrics[j].Date
		}
		return metrics[i].Currency < metrics[j].Currency
	})

	e.logger.Info().Int("daily_metrics", len(metrics)).Msg("daily metrics computed")
	return metrics
}

// Trends enriches daily metrics with history-relative measures per currency.
func (e *Engine) Trends(daily []model.DailyMetric) []model.TrendPoint {
	byCurrency := make(map[string][]model.DailyMetric)
	for _, m := range daily {
		byCurrency[m.Currency] = append(byCurrency[m.Currency], m)
	}

	currencies := make([]string, 0, len(byCurrency))
	for c := range byCurrency {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	var points []model.TrendPoint
	for _, c := range currencies {
		series := byCurrency[c]
		sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })

		first := series[0].RateMean
		for i, m := range series {
			p := model.TrendPoint{DailyMetric: m}

			if i > 0 && series[i-1].RateMean != 0 {
				p.DailyChangePct = (m.RateMean/series[i-1].RateMean - 1) * 100
			}
			if first != 0 {
				p.CumulativeChangePct = (m.RateMean/first - 1) * 100
			}

			p.MovingAverage = trailingMean(series, i, e.opts.MovingAverageWindow)
			bandMin, bandMax := trailingMinMax(series, i, e.opts.BandWindow)
			p.BandMin, p.BandMax = bandMin, bandMax

			if span := bandMax - bandMin; span > 0 {
				p.RelativePosition = (m.RateMean - bandMin) / span * 100
			} else {
				p.RelativePosition = 50
			}

			points = append(points, p)
		}
	}

	e.logger.Info().Int("trend_points", len(points)).Msg("historical trends computed")
	return points
}

// Summaries rolls trend points up into one CurrencyMetric per currency.
func (e *Engine) Summaries(trends []model.TrendPoint) []model.CurrencyMetric {
	byCurrency := make(map[string][]model.TrendPoint)
	for _, p := range trends {
		byCurrency[p.Currency] = append(byCurrency[p.Currency], p)
	}

	currencies := make([]string, 0, len(byCurrency))
	for c := range byCurrency {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	metrics := make([]model.CurrencyMetric, 0, len(currencies))
	for _, c := range currencies {
		series := byCurrency[c]
		sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
		metrics = append(metrics, e.summarize(c, series))
	}

	e.logger.Info().Int("currencies", len(metrics)).Msg("currency summaries computed")
	return metrics
}

// summarize computes the aggregated view for one currency's ordered series.
func (e *Engine) summarize(currency string, series []model.TrendPoint) model.CurrencyMetric {
	latest := series[len(series)-1]

	means := make([]float64, len(series))
	observations := 0
	for i, p := range series {
		means[i] = p.RateMean
		observations += p.Observations
	}

	histMin, histMax := minMax(means)
	mean := meanOf(means)

	metric := model.CurrencyMetric{
		Currency:            currency,
		CurrentRate:         latest.RateMean,
		HistoricalMin:       histMin,
		HistoricalMax:       histMax,
		MeanRate:            mean,
		ObservationCount:    observations,
		DailyChangePct:      latest.DailyChangePct,
		CumulativeChangePct: latest.CumulativeChangePct,
		RelativePosition:    latest.RelativePosition,
		FirstDate:           series[0].Date,
		LastDate:            latest.Date,
	}

	// A single observation carries no history: the moving average collapses
	// to the observation, volatility is zero, and no trend can be read.
	if len(series) == 1 {
		metric.MovingAverage = latest.RateMean
		metric.Volatility = 0
		metric.TrendClass = model.TrendStable
		metric.VolatilityClass = e.classifyVolatility(0)
		return metric
	}

	metric.MovingAverage = latest.MovingAverage

	std := sampleStddev(means, mean)
	if mean != 0 {
		metric.Volatility = std / mean
	}

	metric.TrendClass = e.classifyTrend(metric.CurrentRate, metric.MovingAverage)
	metric.VolatilityClass = e.classifyVolatility(metric.Volatility)
	return metric
}

// Overview builds the cross-currency roll-up document.
func (e *Engine) Overview(metrics []model.CurrencyMetric, generatedAt time.Time) model.MarketOverview {
	overview := model.MarketOverview{
		GeneratedAt:         generatedAt,
		TotalCurrencies:     len(metrics),
		TrendDistribution:   map[string]int{},
		VolatilityBreakdown: map[string]int{},
	}

	if len(metrics) == 0 {
		return overview
	}

	start, end := metrics[0].FirstDate, metrics[0].LastDate
	current := make([]float64, 0, len(metrics))
	valid := 0

	var gainer, loser, volatile, stable *model.CurrencyMetric
	for i := range metrics {
		m := &metrics[i]
		if m.FirstDate < start {
			start = m.FirstDate
		}
		if m.LastDate > end {
			end = m.LastDate
		}
		current = append(current, m.CurrentRate)
		if m.CurrentRate > 0 {
			valid++
		}

		overview.TrendDistribution[m.TrendClass]++
		overview.VolatilityBreakdown[m.VolatilityClass]++

		if gainer == nil || m.CumulativeChangePct > gainer.CumulativeChangePct {
			gainer = m
		}
		if loser == nil || m.CumulativeChangePct < loser.CumulativeChangePct {
			loser = m
		}
		if volatile == nil || m.Volatility > volatile.Volatility {
			volatile = m
		}
		if stable == nil || m.Volatility < stable.Volatility {
			stable = m
		}
	}

	minRate, maxRate := minMax(current)
	overview.RateStatistics = model.RateStatistics{
		MinRate:  minRate,
		MaxRate:  maxRate,
		MeanRate: meanOf(current),
	}
	overview.CurrencyDistribution = model.CurrencyDistribution{Total: len(metrics), WithValidRates: valid}
	overview.ObservationPeriod = model.ObservationPeriod{
		Start:     start,
		End:       end,
		TotalDays: daysBetween(start, end),
	}
	overview.TopMovers = model.TopMovers{
		BiggestGainer: model.Mover{Currency: gainer.Currency, Value: gainer.CumulativeChangePct},
		BiggestLoser:  model.Mover{Currency: loser.Currency, Value: loser.CumulativeChangePct},
		MostVolatile:  model.Mover{Currency: volatile.Currency, Value: volatile.Volatility},
		MostStable:    model.Mover{Currency: stable.Currency, Value: stable.Volatility},
	}
	return overview
}

// classifyTrend compares the latest rate to its moving average band.
func (e *Engine) classifyTrend(current, movingAverage float64) string {
	if movingAverage == 0 {
		return model.TrendStable
	}
	switch {
	case current > movingAverage*(1+e.opts.TrendEpsilon):
		return model.TrendRising
	case current < movingAverage*(1-e.opts.TrendEpsilon):
		return model.TrendFalling
	default:
		return model.TrendStable
	}
}

// classifyVolatility buckets a coefficient of variation. Boundaries are
// inclusive to medium: cv < low is low, low <= cv <= high is medium,
// cv > high is high.
func (e *Engine) classifyVolatility(cv float64) string {
	switch {
	case cv < e.opts.VolatilityLow:
		return model.VolatilityLow
	case cv <= e.opts.VolatilityHigh:
		return model.VolatilityMedium
	default:
		return model.VolatilityHigh
	}
}

// trailingMean averages the most recent window entries up to and including
// index i, shrinking the window when fewer exist.
func trailingMean(series []model.DailyMetric, i, window int) float64 {
	start := i - window + 1
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for j := start; j <= i; j++ {
		sum += series[j].RateMean
	}
	return sum / float64(i-start+1)
}

func trailingMinMax(series []model.DailyMetric, i, window int) (float64, float64) {
	start := i - window + 1
	if start < 0 {
		start = 0
	}
	lo, hi := series[start].RateMean, series[start].RateMean
	for j := start + 1; j <= i; j++ {
		if series[j].RateMean < lo {
			lo = series[j].RateMean
		}
		if series[j].RateMean > hi {
			hi = series[j].RateMean
		}
	}
	return lo, hi
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStddev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func daysBetween(start, end string) int {
	from, err1 := time.Parse(model.DateLayout, start)
	to, err2 := time.Parse(model.DateLayout, end)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}
