package chart

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"fx-rates-pipeline/internal/model"
)

func points(currency string, dates []string, rates []float64) []model.TrendPoint {
	pts := make([]model.TrendPoint, len(dates))
	for i := range dates {
		pts[i] = model.TrendPoint{
			DailyMetric: model.DailyMetric{
				Date:     dates[i],
				Currency: currency,
				RateMean: rates[i],
			},
			MovingAverage: rates[i],
		}
	}
	return pts
}

func TestRenderTrendUnknownCurrency(t *testing.T) {
	r := NewRenderer(Options{}, zerolog.Nop())
	pts := points("EUR", []string{"2025-06-14", "2025-06-15"}, []float64{0.9, 0.91})

	err := r.RenderTrend(filepath.Join(t.TempDir(), "out.png"), "GBP", pts)
	if !errors.Is(err, ErrNoObservations) {
		t.Fatalf("expected ErrNoObservations, got %v", err)
	}
}

func TestRenderTrendTooFewPoints(t *testing.T) {
	r := NewRenderer(Options{}, zerolog.Nop())
	pts := points("EUR", []string{"2025-06-15"}, []float64{0.9})

	if err := r.RenderTrend(filepath.Join(t.TempDir(), "out.png"), "EUR", pts); err == nil {
		t.Fatal("a single point cannot be plotted")
	}
}

func TestRenderTrendWritesPNG(t *testing.T) {
	r := NewRenderer(Options{Width: 640, Height: 360}, zerolog.Nop())
	pts := points("EUR", []string{"2025-06-13", "2025-06-14", "2025-06-15"}, []float64{0.90, 0.92, 0.91})

	path := filepath.Join(t.TempDir(), "charts", "eur.png")
	if err := r.RenderTrend(path, "EUR", pts); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("chart file is empty")
	}
}
