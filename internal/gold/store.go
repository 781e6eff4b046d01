package gold

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fx-rates-pipeline/internal/model"
)

// ErrNoManifest signals that no completed gold run exists for a date.
var ErrNoManifest = errors.New("no gold manifest found")

// Artifact names used as manifest keys and file name prefixes.
const (
	ArtifactDailyMetrics    = "daily_metrics"
	ArtifactTrends          = "historical_trends"
	ArtifactCurrencySummary = "currency_summary"
	ArtifactMarketOverview  = "market_overview"
	ArtifactConsolidatedCSV = "consolidated_csv"
)

// Store persists and resolves run-stamped gold artifact sets. Artifacts are
// immutable: a re-run writes a new set under a fresh run ID and never touches
// earlier ones.
type Store struct {
	dir    string
	logger zerolog.Logger
}

// NewStore constructs a gold store rooted at dir.
func NewStore(dir string, logger zerolog.Logger) *Store {
	return &Store{dir: dir, logger: logger.With().Str("component", "gold_store").Logger()}
}

// NewRunID mints a sortable run identifier for a target date. The timestamp
// component orders runs; the random suffix keeps IDs unique within a second.
func NewRunID(date string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s", date, now.UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
}

// RunArtifacts bundles everything one gold run produces.
type RunArtifacts struct {
	RunID           string
	TargetDate      string
	PipelineVersion string
	SilverRecords   int
	Daily           []model.DailyMetric
	Trends          []model.TrendPoint
	Summary         []model.CurrencyMetric
	Overview        model.MarketOverview
}

// WriteRun persists a full artifact set. The manifest is written last so its
// presence marks the set complete; a crashed run leaves no manifest and is
// invisible to readers.
func (s *Store) WriteRun(run RunArtifacts) (model.ArtifactManifest, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return model.ArtifactManifest{}, fmt.Errorf("create gold dir: %w", err)
	}

	manifest := model.ArtifactManifest{
		RunID:           run.RunID,
		TargetDate:      run.TargetDate,
		GeneratedAt:     time.Now().UTC(),
		PipelineVersion: run.PipelineVersion,
		SilverRecords:   run.SilverRecords,
		Currencies:      len(run.Summary),
		Files:           make(map[string]string, 5),
	}

	jsonArtifacts := []struct {
		key     string
		payload any
	}{
		{ArtifactDailyMetrics, run.Daily},
		{ArtifactTrends, run.Trends},
		{ArtifactCurrencySummary, run.Summary},
		{ArtifactMarketOverview, run.Overview},
	}
	for _, a := range jsonArtifacts {
		name := fmt.Sprintf("%s_%s.json", a.key, run.RunID)
		if err := s.writeJSON(name, a.payload); err != nil {
			return model.ArtifactManifest{}, err
		}
		manifest.Files[a.key] = name
	}

	csvName := fmt.Sprintf("exchange_rates_consolidated_%s.csv", run.RunID)
	if err := s.writeConsolidatedCSV(csvName, run.Trends); err != nil {
		return model.ArtifactManifest{}, err
	}
	manifest.Files[ArtifactConsolidatedCSV] = csvName

	if err := s.writeJSON(s.manifestName(run.TargetDate, run.RunID), manifest); err != nil {
		return model.ArtifactManifest{}, err
	}

	s.logger.Info().
		Str("run_id", run.RunID).
		Str("target_date", run.TargetDate).
		Int("currencies", manifest.Currencies).
		Int("files", len(manifest.Files)).
		Msg("gold artifact set written")

	return manifest, nil
}

// manifestName embeds the target date so LatestManifest can glob by date.
func (s *Store) manifestName(date, runID string) string {
	return fmt.Sprintf("manifest_%s_%s.json", date, runID)
}

// LatestManifest resolves the most recent completed run for a date. Run IDs
// start with a sortable timestamp, so the lexicographic maximum is the latest.
func (s *Store) LatestManifest(date string) (model.ArtifactManifest, error) {
	pattern := filepath.Join(s.dir, fmt.Sprintf("manifest_%s_*.json", date))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return model.ArtifactManifest{}, fmt.Errorf("glob gold manifests: %w", err)
	}
	if len(matches) == 0 {
		return model.ArtifactManifest{}, fmt.Errorf("%w for %s", ErrNoManifest, date)
	}
	sort.Strings(matches)

	data, err := os.ReadFile(matches[len(matches)-1])
	if err != nil {
		return model.ArtifactManifest{}, fmt.Errorf("read gold manifest: %w", err)
	}
	var manifest model.ArtifactManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return model.ArtifactManifest{}, fmt.Errorf("decode gold manifest: %w", err)
	}
	return manifest, nil
}

// LoadSummary reads the currency summary artifact a manifest points at.
func (s *Store) LoadSummary(manifest model.ArtifactManifest) ([]model.CurrencyMetric, error) {
	var metrics []model.CurrencyMetric
	if err := s.readJSON(manifest.Files[ArtifactCurrencySummary], &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// LoadOverview reads the market overview artifact a manifest points at.
func (s *Store) LoadOverview(manifest model.ArtifactManifest) (model.MarketOverview, error) {
	var overview model.MarketOverview
	if err := s.readJSON(manifest.Files[ArtifactMarketOverview], &overview); err != nil {
		return model.MarketOverview{}, err
	}
	return overview, nil
}

// LoadTrends reads the historical trends artifact a manifest points at.
func (s *Store) LoadTrends(manifest model.ArtifactManifest) ([]model.TrendPoint, error) {
	var points []model.TrendPoint
	if err := s.readJSON(manifest.Files[ArtifactTrends], &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (s *Store) writeJSON(name string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	target := filepath.Join(s.dir, name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("finalise %s: %w", name, err)
	}
	return nil
}

func (s *Store) readJSON(name string, out any) error {
	if name == "" {
		return fmt.Errorf("%w: artifact missing from manifest", ErrNoManifest)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("read gold artifact %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode gold artifact %s: %w", name, err)
	}
	return nil
}

// writeConsolidatedCSV flattens trend points into one spreadsheet-friendly
// table, ordered as computed (date, then currency).
func (s *Store) writeConsolidatedCSV(name string, points []model.TrendPoint) error {
	target := filepath.Join(s.dir, name)
	tmp := target + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	w := csv.NewWriter(f)
	header := []string{
		"date", "currency", "rate_mean", "rate_std", "rate_min", "rate_max",
		"observations", "daily_change_pct", "cumulative_change_pct",
		"moving_average", "relative_position",
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range points {
		row := []string{
			p.Date,
			p.Currency,
			formatFloat(p.RateMean),
			formatFloat(p.RateStd),
			formatFloat(p.RateMin),
			formatFloat(p.RateMax),
			strconv.Itoa(p.Observations),
			formatFloat(p.DailyChangePct),
			formatFloat(p.CumulativeChangePct),
			formatFloat(p.MovingAverage),
			formatFloat(p.RelativePosition),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("finalise %s: %w", name, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
