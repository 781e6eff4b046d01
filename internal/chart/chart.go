package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	chart "github.com/wcharczuk/go-chart/v2"

	"fx-rates-pipeline/internal/model"
)

// ErrNoObservations signals that the requested currency has no data in the
// gold run being plotted.
var ErrNoObservations = errors.New("no observations for currency")

// Options size the rendered image.
type Options struct {
	Width  int
	Height int
}

// Renderer draws trend charts from gold-tier trend points.
type Renderer struct {
	opts   Options
	logger zerolog.Logger
}

// NewRenderer constructs a chart renderer.
func NewRenderer(opts Options, logger zerolog.Logger) *Renderer {
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	return &Renderer{opts: opts, logger: logger.With().Str("component", "chart_renderer").Logger()}
}

// RenderTrend plots one currency's daily mean rate and its moving average as
// a PNG at path. At least two points are required to draw a line.
func (r *Renderer) RenderTrend(path, currency string, points []model.TrendPoint) error {
	series := make([]model.TrendPoint, 0, len(points))
	for _, p := range points {
		if p.Currency == currency {
			series = append(series, p)
		}
	}
	if len(series) == 0 {
		return fmt.Errorf("%w: %s", ErrNoObservations, currency)
	}
	if len(series) < 2 {
		return fmt.Errorf("not enough trend points for %s: have %d, need 2", currency, len(series))
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })

	x := make([]time.Time, len(series))
	rates := make([]float64, len(series))
	movingAvg := make([]float64, len(series))
	for i, p := range series {
		ts, err := time.Parse(model.DateLayout, p.Date)
		if err != nil {
			return fmt.Errorf("invalid trend date %q: %w", p.Date, err)
		}
		x[i] = ts
		rates[i] = p.RateMean
		movingAvg[i] = p.MovingAverage
	}

	rateFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.4f")
	}
	graph := chart.Chart{
		Title:  fmt.Sprintf("%s exchange rate", currency),
		Width:  r.opts.Width,
		Height: r.opts.Height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Rate",
			ValueFormatter: rateFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    currency,
				XValues: x,
				YValues: rates,
			},
			chart.TimeSeries{
				Name:    "Moving average",
				XValues: x,
				YValues: movingAvg,
				Style: chart.Style{
					StrokeDashArray: []float64{5.0, 5.0},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	r.logger.Info().
		Str("path", path).
		Str("currency", currency).
		Int("points", len(series)).
		Msg("trend chart rendered")
	return nil
}
