package model

import "time"

// Trend classification labels.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// Volatility classification labels.
const (
	VolatilityLow    = "low"
	VolatilityMedium = "medium"
	VolatilityHigh   = "high"
)

// DailyMetric aggregates one currency over one collection date.
type DailyMetric struct {
	Date         string    `json:"date"`
	Currency     string    `json:"currency"`
	RateMean     float64   `json:"rate_mean"`
	RateStd      float64   `json:"rate_std"`
	RateMin      float64   `json:"rate_min"`
	RateMax      float64   `json:"rate_max"`
	RateRange    float64   `json:"rate_range"`
	RateCV       float64   `json:"rate_cv"`
	Observations int       `json:"observations"`
	LastUpdate   time.Time `json:"last_update"`
}

// TrendPoint enriches a daily metric with history-relative measures.
type TrendPoint struct {
	DailyMetric

	DailyChangePct      float64 `json:"daily_change_pct"`
	CumulativeChangePct float64 `json:"cumulative_change_pct"`
	MovingAverage       float64 `json:"moving_average"`
	BandMax             float64 `json:"band_max"`
	BandMin             float64 `json:"band_min"`
	RelativePosition    float64 `json:"relative_position"`
}

// CurrencyMetric is the aggregated view of one currency over the analysis
// window. Immutable once written to the gold tier; superseded, never patched.
type CurrencyMetric struct {
	Currency            string  `json:"currency"`
	CurrentRate         float64 `json:"current_rate"`
	HistoricalMin       float64 `json:"historical_min"`
	HistoricalMax       float64 `json:"historical_max"`
	MeanRate            float64 `json:"mean_rate"`
	MovingAverage       float64 `json:"moving_average"`
	Volatility          float64 `json:"volatility"`
	TrendClass          string  `json:"trend_class"`
	VolatilityClass     string  `json:"volatility_class"`
	ObservationCount    int     `json:"observation_count"`
	DailyChangePct      float64 `json:"daily_change_pct"`
	CumulativeChangePct float64 `json:"cumulative_change_pct"`
	RelativePosition    float64 `json:"relative_position"`
	FirstDate           string  `json:"first_date"`
	LastDate            string  `json:"last_date"`
}

// MarketOverview is the single-document cross-currency roll-up.
type MarketOverview struct {
	GeneratedAt          time.Time            `json:"generated_at"`
	TotalCurrencies      int                  `json:"total_currencies"`
	ObservationPeriod    ObservationPeriod    `json:"observation_period"`
	RateStatistics       RateStatistics       `json:"rate_statistics"`
	CurrencyDistribution CurrencyDistribution `json:"currency_distribution"`
	TrendDistribution    map[string]int       `json:"trend_distribution"`
	VolatilityBreakdown  map[string]int       `json:"volatility_distribution"`
	TopMovers            TopMovers            `json:"top_movers"`
}

// ObservationPeriod bounds the analysed date range.
type ObservationPeriod struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	TotalDays int    `json:"total_days"`
}

// RateStatistics are global statistics over current rates.
type RateStatistics struct {
	MinRate  float64 `json:"min_rate"`
	MaxRate  float64 `json:"max_rate"`
	MeanRate float64 `json:"mean_rate"`
}

// CurrencyDistribution breaks currencies down by validity.
type CurrencyDistribution struct {
	Total          int `json:"total"`
	WithValidRates int `json:"with_valid_rates"`
}

// TopMovers names the extremes of the batch.
type TopMovers struct {
	BiggestGainer Mover `json:"biggest_gainer"`
	BiggestLoser  Mover `json:"biggest_loser"`
	MostVolatile  Mover `json:"most_volatile"`
	MostStable    Mover `json:"most_stable"`
}

// Mover is one currency with the value that made it notable.
type Mover struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// ArtifactManifest lists one gold run's artifact set. Written last; its
// presence marks the set complete.
type ArtifactManifest struct {
	RunID           string            `json:"run_id"`
	TargetDate      string            `json:"target_date"`
	GeneratedAt     time.Time         `json:"generated_at"`
	PipelineVersion string            `json:"pipeline_version"`
	SilverRecords   int               `json:"silver_records"`
	Currencies      int               `json:"currencies"`
	Files           map[string]string `json:"files"`
}
