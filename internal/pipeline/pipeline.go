package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"fx-rates-pipeline/internal/chart"
	"fx-rates-pipeline/internal/gold"
	"fx-rates-pipeline/internal/ingest"
	"fx-rates-pipeline/internal/insight"
	"fx-rates-pipeline/internal/model"
	"fx-rates-pipeline/internal/silver"
)

// ErrMissingPredecessor marks a stage started without its upstream output.
// The run fails fast; nothing is written.
var ErrMissingPredecessor = errors.New("predecessor output missing")

// Stage selects which part of the pipeline a run executes.
type Stage string

const (
	StageIngest    Stage = "ingest"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
	StageInsight   Stage = "insight"
	StageAll       Stage = "all"
)

// ParseStage validates a stage name from the command line.
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageIngest, StageTransform, StageLoad, StageInsight, StageAll:
		return Stage(s), nil
	default:
		return "", fmt.Errorf("unknown stage %q (expected ingest, transform, load, insight or all)", s)
	}
}

// Options carry run-level settings shared by every stage.
type Options struct {
	BaseCurrency    string
	PipelineVersion string
	// HistoryDays bounds the silver window read by the load stage,
	// counting back from the target date inclusive.
	HistoryDays int
	// InsightEnabled gates the insight stage during an "all" run.
	InsightEnabled bool
	// TolerateInsightFailure substitutes a numeric fallback report when
	// generation fails instead of failing the run.
	TolerateInsightFailure bool
}

// Pipeline wires the tiers together and executes stages in order. Each stage
// reads only its predecessor's completed output, so stages can be re-run
// independently.
type Pipeline struct {
	opts         Options
	fetcher      ingest.RateFetcher
	rawStore     *ingest.RawStore
	silverWriter *silver.Writer
	silverReader *silver.Reader
	engine       *gold.Engine
	goldStore    *gold.Store
	generator    *insight.Generator
	reportsDir   string
	logger       zerolog.Logger
}

// New constructs a pipeline. generator may be nil when insight is disabled.
func New(
	opts Options,
	fetcher ingest.RateFetcher,
	rawStore *ingest.RawStore,
	silverWriter *silver.Writer,
	silverReader *silver.Reader,
	engine *gold.Engine,
	goldStore *gold.Store,
	generator *insight.Generator,
	reportsDir string,
	logger zerolog.Logger,
) *Pipeline {
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 30
	}
	return &Pipeline{
		opts:         opts,
		fetcher:      fetcher,
		rawStore:     rawStore,
		silverWriter: silverWriter,
		silverReader: silverReader,
		engine:       engine,
		goldStore:    goldStore,
		generator:    generator,
		reportsDir:   reportsDir,
		logger:       logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes the selected stage (or all of them) for the target date.
// A stage failure stops the run; outputs of completed stages stay in place.
func (p *Pipeline) Run(ctx context.Context, stage Stage, date string) error {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return fmt.Errorf("invalid target date %q: %w", date, err)
	}

	stages := []Stage{stage}
	if stage == StageAll {
		stages = []Stage{StageIngest, StageTransform, StageLoad}
		if p.opts.InsightEnabled {
			stages = append(stages, StageInsight)
		}
	}

	for _, s := range stages {
		start := time.Now()
		var err error
		switch s {
		case StageIngest:
			err = p.Ingest(ctx, date)
		case StageTransform:
			err = p.Transform(ctx, date)
		case StageLoad:
			err = p.Load(ctx, date)
		case StageInsight:
			err = p.Insight(ctx, date)
		}
		if err != nil {
			return fmt.Errorf("stage %s: %w", s, err)
		}
		p.logger.Info().
			Str("stage", string(s)).
			Str("target_date", date).
			Dur("elapsed", time.Since(start)).
			Msg("stage completed")
	}
	return nil
}

// Ingest fetches the latest rates and lands them in the raw tier.
func (p *Pipeline) Ingest(ctx context.Context, date string) error {
	resp, err := p.fetcher.FetchLatest(ctx, p.opts.BaseCurrency)
	if err != nil {
		return fmt.Errorf("fetch rates: %w", err)
	}

	doc := ingest.Envelope(resp, p.opts.BaseCurrency, date, p.opts.PipelineVersion, time.Now().UTC())
	if _, err := p.rawStore.Write(doc); err != nil {
		return err
	}
	return nil
}

// Transform validates the raw payload for the date into a silver partition.
func (p *Pipeline) Transform(ctx context.Context, date string) error {
	doc, err := p.rawStore.Read(date)
	if err != nil {
		return fmt.Errorf("%w: transform needs raw payload at %s: %v", ErrMissingPredecessor, p.rawStore.Path(date), err)
	}

	if _, _, err := p.silverWriter.Process(doc); err != nil {
		return err
	}
	return nil
}

// Load aggregates the silver history window into a fresh gold artifact set.
func (p *Pipeline) Load(ctx context.Context, date string) error {
	if !p.silverReader.HasPartition(date) {
		return fmt.Errorf("%w: load needs silver partition at %s", ErrMissingPredecessor, p.silverReader.PartitionPath(date))
	}

	end, _ := time.Parse(model.DateLayout, date)
	start := end.AddDate(0, 0, -(p.opts.HistoryDays - 1)).Format(model.DateLayout)

	records, err := p.silverReader.ReadWindow(start, date)
	if err != nil {
		return err
	}

	daily := p.engine.DailyMetrics(records)
	trends := p.engine.Trends(daily)
	summary := p.engine.Summaries(trends)
	overview := p.engine.Overview(summary, time.Now().UTC())

	run := gold.RunArtifacts{
		RunID:           gold.NewRunID(date, time.Now()),
		TargetDate:      date,
		PipelineVersion: p.opts.PipelineVersion,
		SilverRecords:   len(records),
		Daily:           daily,
		Trends:          trends,
		Summary:         summary,
		Overview:        overview,
	}
	if _, err := p.goldStore.WriteRun(run); err != nil {
		return err
	}
	return nil
}

// Insight turns the latest gold artifacts for the date into a narrative
// report. Generation failures abort the run unless toleration is configured,
// in which case a numeric fallback report is persisted instead.
func (p *Pipeline) Insight(ctx context.Context, date string) error {
	if p.generator == nil {
		return errors.New("insight stage requested but not configured")
	}

	manifest, err := p.goldStore.LatestManifest(date)
	if err != nil {
		return fmt.Errorf("%w: insight needs a completed gold run for %s: %v", ErrMissingPredecessor, date, err)
	}

	summary, err := p.goldStore.LoadSummary(manifest)
	if err != nil {
		return err
	}
	overview, err := p.goldStore.LoadOverview(manifest)
	if err != nil {
		return err
	}

	report, err := p.generator.Generate(ctx, date, summary, overview)
	if err != nil {
		if !p.opts.TolerateInsightFailure {
			return err
		}
		p.logger.Warn().Err(err).Msg("insight generation failed; writing fallback report")
		report = p.generator.Fallback(date, summary, overview)
	}

	if _, err := insight.Persist(p.reportsDir, report); err != nil {
		return err
	}
	return nil
}

// RenderChart draws the trend chart for one currency from the latest gold run.
func (p *Pipeline) RenderChart(renderer *chart.Renderer, date, currency, path string) error {
	manifest, err := p.goldStore.LatestManifest(date)
	if err != nil {
		return fmt.Errorf("%w: chart needs a completed gold run for %s: %v", ErrMissingPredecessor, date, err)
	}
	trends, err := p.goldStore.LoadTrends(manifest)
	if err != nil {
		return err
	}
	return renderer.RenderTrend(path, currency, trends)
}

// LatestSummary resolves the newest currency summary for the date, for
// display commands.
func (p *Pipeline) LatestSummary(date string) (model.ArtifactManifest, []model.CurrencyMetric, error) {
	manifest, err := p.goldStore.LatestManifest(date)
	if err != nil {
		return model.ArtifactManifest{}, nil, err
	}
	metrics, err := p.goldStore.LoadSummary(manifest)
	if err != nil {
		return model.ArtifactManifest{}, nil, err
	}
	return manifest, metrics, nil
}
