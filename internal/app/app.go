package app

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"fx-rates-pipeline/internal/chart"
	"fx-rates-pipeline/internal/config"
	"fx-rates-pipeline/internal/currency"
	"fx-rates-pipeline/internal/gold"
	"fx-rates-pipeline/internal/ingest"
	"fx-rates-pipeline/internal/insight"
	"fx-rates-pipeline/internal/pipeline"
	"fx-rates-pipeline/internal/quality"
	"fx-rates-pipeline/internal/silver"
	"fx-rates-pipeline/internal/validate"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) rawDir() string {
	return filepath.Join(a.Config.Storage.Root, a.Config.Storage.RawDir)
}

func (a *App) silverDir() string {
	return filepath.Join(a.Config.Storage.Root, a.Config.Storage.SilverDir)
}

func (a *App) goldDir() string {
	return filepath.Join(a.Config.Storage.Root, a.Config.Storage.GoldDir)
}

func (a *App) reportsDir() string {
	return filepath.Join(a.Config.Storage.Root, a.Config.Storage.ReportsDir)
}

// newPipeline wires every tier from configuration.
func (a *App) newPipeline() *pipeline.Pipeline {
	cfg := a.Config

	fetcher := ingest.NewClient(ingest.ClientOptions{
		BaseURL:       cfg.Provider.BaseURL,
		APIKey:        cfg.Provider.APIKey,
		Timeout:       cfg.Provider.RequestTimeout,
		RetryAttempts: cfg.Provider.RetryAttempts,
		RetryDelay:    cfg.Provider.RetryDelay,
		UserAgent:     cfg.Provider.UserAgent,
	}, a.Logger)

	rawStore := ingest.NewRawStore(a.rawDir(), a.Logger)

	vopts := validate.DefaultOptions()
	vopts.MinUpdateYear = cfg.Quality.MinUpdateYear
	vopts.MaxUpdateYear = cfg.Quality.MaxUpdateYear
	validator := validate.New(currency.NewRegistry(), vopts)

	scorer := quality.New(quality.Options{
		OutlierSigma:   cfg.Quality.OutlierSigma,
		ValidityWeight: cfg.Quality.ValidityWeight,
		OutlierWeight:  cfg.Quality.OutlierWeight,
	}, a.Logger)

	silverWriter := silver.NewWriter(a.silverDir(), validator, scorer, cfg.Quality.ValidityFloor, a.Logger)
	silverReader := silver.NewReader(a.silverDir(), a.Logger)

	engine := gold.NewEngine(gold.Options{
		MovingAverageWindow: cfg.Aggregation.MovingAverageWindow,
		TrendEpsilon:        cfg.Aggregation.TrendEpsilon,
		VolatilityLow:       cfg.Aggregation.VolatilityLow,
		VolatilityHigh:      cfg.Aggregation.VolatilityHigh,
		BandWindow:          cfg.Aggregation.BandWindow,
	}, a.Logger)
	goldStore := gold.NewStore(a.goldDir(), a.Logger)

	var generator *insight.Generator
	if cfg.Insight.Enabled {
		completer := insight.NewClient(insight.ClientOptions{
			BaseURL:       cfg.Insight.BaseURL,
			APIKey:        cfg.Insight.APIKey,
			Model:         cfg.Insight.Model,
			MaxTokens:     cfg.Insight.MaxTokens,
			Temperature:   cfg.Insight.Temperature,
			Timeout:       cfg.Insight.RequestTimeout,
			RetryAttempts: cfg.Insight.RetryAttempts,
			RetryDelay:    cfg.Insight.RetryDelay,
		}, a.Logger)
		generator = insight.NewGenerator(completer, insight.Options{
			Model:           cfg.Insight.Model,
			PipelineVersion: cfg.App.PipelineVersion,
			TopCurrencies:   cfg.Insight.TopCurrencies,
		}, a.Logger)
	}

	return pipeline.New(pipeline.Options{
		BaseCurrency:           cfg.App.BaseCurrency,
		PipelineVersion:        cfg.App.PipelineVersion,
		HistoryDays:            cfg.Aggregation.HistoryDays,
		InsightEnabled:         cfg.Insight.Enabled,
		TolerateInsightFailure: cfg.Insight.TolerateFailure,
	}, fetcher, rawStore, silverWriter, silverReader, engine, goldStore, generator, a.reportsDir(), a.Logger)
}

func (a *App) newRenderer() *chart.Renderer {
	return chart.NewRenderer(chart.Options{
		Width:  a.Config.Chart.Width,
		Height: a.Config.Chart.Height,
	}, a.Logger)
}

// RunOptions select what one pipeline invocation executes.
type RunOptions struct {
	Stage string
	Date  string
}

// ChartOptions configure trend chart rendering.
type ChartOptions struct {
	Date     string
	Currency string
	Output   string
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Date  string
	Limit int
}
