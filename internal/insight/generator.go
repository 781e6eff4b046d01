package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fx-rates-pipeline/internal/model"
)

// Completer produces one assistant response for a system+user exchange.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

var _ Completer = (*Client)(nil)

const systemPrompt = "You are a currency market analyst. Base every statement " +
	"strictly on the metrics provided; do not invent figures or events. " +
	"Write for a professional audience in plain prose."

// Options tune report generation.
type Options struct {
	Model           string
	PipelineVersion string
	TopCurrencies   int
}

// Generator turns gold-tier metrics into a narrative insight report.
type Generator struct {
	completer Completer
	opts      Options
	logger    zerolog.Logger
}

// NewGenerator constructs an insight generator.
func NewGenerator(completer Completer, opts Options, logger zerolog.Logger) *Generator {
	return &Generator{
		completer: completer,
		opts:      opts,
		logger:    logger.With().Str("component", "insight_generator").Logger(),
	}
}

// Generate produces the three report sections from gold artifacts. If any
// completion fails the whole run fails; the caller decides whether a failed
// run is tolerated, in which case Fallback produces a deterministic substitute.
func (g *Generator) Generate(ctx context.Context, date string, summary []model.CurrencyMetric, overview model.MarketOverview) (model.InsightReport, error) {
	dataContext := buildContext(summary, overview, g.opts.TopCurrencies)

	execSummary, err := g.completer.Complete(ctx, systemPrompt,
		"Write a 3-5 sentence executive summary of this currency market data:\n\n"+dataContext)
	if err != nil {
		return model.InsightReport{}, fmt.Errorf("generate executive summary: %w", err)
	}

	technical, err := g.completer.Complete(ctx, systemPrompt,
		"Write a technical analysis of notable trends, volatility clusters and "+
			"outliers in this currency market data. Structure it as short paragraphs:\n\n"+dataContext)
	if err != nil {
		return model.InsightReport{}, fmt.Errorf("generate technical analysis: %w", err)
	}

	report := model.InsightReport{
		Metadata:          g.metadata(date),
		ExecutiveSummary:  strings.TrimSpace(execSummary),
		TechnicalAnalysis: strings.TrimSpace(technical),
		DataContext:       dataContext,
	}
	g.logger.Info().Str("target_date", date).Msg("insight report generated")
	return report, nil
}

// Fallback builds a purely numeric report when generation failed but the run
// is configured to tolerate it.
func (g *Generator) Fallback(date string, summary []model.CurrencyMetric, overview model.MarketOverview) model.InsightReport {
	var b strings.Builder
	fmt.Fprintf(&b, "Automated summary for %s: %d currencies observed from %s to %s. ",
		date, overview.TotalCurrencies, overview.ObservationPeriod.Start, overview.ObservationPeriod.End)
	fmt.Fprintf(&b, "Biggest gainer %s (%+.2f%%), biggest loser %s (%+.2f%%). ",
		overview.TopMovers.BiggestGainer.Currency, overview.TopMovers.BiggestGainer.Value,
		overview.TopMovers.BiggestLoser.Currency, overview.TopMovers.BiggestLoser.Value)
	fmt.Fprintf(&b, "Trend distribution: %s.", formatDistribution(overview.TrendDistribution))

	return model.InsightReport{
		Metadata:          g.metadata(date),
		ExecutiveSummary:  b.String(),
		TechnicalAnalysis: "Narrative analysis unavailable for this run.",
		DataContext:       buildContext(summary, overview, g.opts.TopCurrencies),
		Fallback:          true,
	}
}

func (g *Generator) metadata(date string) model.InsightMetadata {
	return model.InsightMetadata{
		GeneratedAt:     time.Now().UTC(),
		TargetDate:      date,
		Model:           g.opts.Model,
		PipelineVersion: g.opts.PipelineVersion,
	}
}

// Persist writes the report under dir in structured, markdown and plain-text
// renderings, one file set per target date.
func Persist(dir string, report model.InsightReport) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}

	base := filepath.Join(dir, "insights_"+report.Metadata.TargetDate)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal insight report: %w", err)
	}

	files := []struct {
		path    string
		content []byte
	}{
		{base + ".json", data},
		{base + ".md", []byte(renderMarkdown(report))},
		{base + ".txt", []byte(renderText(report))},
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		tmp := f.path + ".tmp"
		if err := os.WriteFile(tmp, f.content, 0o644); err != nil {
			return written, fmt.Errorf("write insight report: %w", err)
		}
		if err := os.Rename(tmp, f.path); err != nil {
			return written, fmt.Errorf("finalise insight report: %w", err)
		}
		written = append(written, f.path)
	}
	return written, nil
}

func renderMarkdown(report model.InsightReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Currency Market Insights: %s\n\n", report.Metadata.TargetDate)
	fmt.Fprintf(&b, "Generated %s by %s (pipeline %s)\n\n",
		report.Metadata.GeneratedAt.Format(time.RFC3339),
		report.Metadata.Model,
		report.Metadata.PipelineVersion)
	if report.Fallback {
		b.WriteString("> Narrative generation was unavailable; this report is numeric only.\n\n")
	}
	b.WriteString("## Executive Summary\n\n")
	b.WriteString(report.ExecutiveSummary + "\n\n")
	b.WriteString("## Technical Analysis\n\n")
	b.WriteString(report.TechnicalAnalysis + "\n\n")
	b.WriteString("## Data Context\n\n```\n")
	b.WriteString(report.DataContext)
	b.WriteString("```\n")
	return b.String()
}

func renderText(report model.InsightReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CURRENCY MARKET INSIGHTS: %s\n", report.Metadata.TargetDate)
	fmt.Fprintf(&b, "Generated %s\n\n", report.Metadata.GeneratedAt.Format(time.RFC3339))
	b.WriteString("EXECUTIVE SUMMARY\n\n")
	b.WriteString(report.ExecutiveSummary + "\n\n")
	b.WriteString("TECHNICAL ANALYSIS\n\n")
	b.WriteString(report.TechnicalAnalysis + "\n")
	return b.String()
}
