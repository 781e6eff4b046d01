package gold

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleRun(runID string) RunArtifacts {
	dates := []string{"2025-06-13", "2025-06-14", "2025-06-15"}
	e := newEngine()
	daily := series("EUR", dates, []float64{1.00, 1.05, 1.10})
	trends := e.Trends(daily)
	summary := e.Summaries(trends)

	return RunArtifacts{
		RunID:           runID,
		TargetDate:      "2025-06-15",
		PipelineVersion: "1.0.0",
		SilverRecords:   3,
		Daily:           daily,
		Trends:          trends,
		Summary:         summary,
		Overview:        e.Overview(summary, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)),
	}
}

func TestWriteRunProducesCompleteSet(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, noopLogger())

	runID := NewRunID("2025-06-15", time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))
	manifest, err := store.WriteRun(sampleRun(runID))
	if err != nil {
		t.Fatalf("write run: %v", err)
	}

	if manifest.RunID != runID || manifest.Currencies != 1 {
		t.Fatalf("unexpected manifest %+v", manifest)
	}
	if len(manifest.Files) != 5 {
		t.Fatalf("expected 5 artifacts, got %d", len(manifest.Files))
	}
	for key, name := range manifest.Files {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("artifact %s missing: %v", key, err)
		}
	}
}

func TestLatestManifestPicksNewestRun(t *testing.T) {
	store := NewStore(t.TempDir(), noopLogger())

	early := NewRunID("2025-06-15", time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))
	late := NewRunID("2025-06-15", time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC))
	if _, err := store.WriteRun(sampleRun(early)); err != nil {
		t.Fatalf("write early run: %v", err)
	}
	if _, err := store.WriteRun(sampleRun(late)); err != nil {
		t.Fatalf("write late run: %v", err)
	}

	manifest, err := store.LatestManifest("2025-06-15")
	if err != nil {
		t.Fatalf("latest manifest: %v", err)
	}
	if manifest.RunID != late {
		t.Fatalf("expected run %s, got %s", late, manifest.RunID)
	}
}

func TestWriteRunNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, noopLogger())

	first := NewRunID("2025-06-15", time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))
	second := NewRunID("2025-06-15", time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC))
	if _, err := store.WriteRun(sampleRun(first)); err != nil {
		t.Fatalf("write first run: %v", err)
	}
	if _, err := store.WriteRun(sampleRun(second)); err != nil {
		t.Fatalf("write second run: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read gold dir: %v", err)
	}
	var manifests int
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "manifest_") {
			manifests++
		}
	}
	if manifests != 2 {
		t.Fatalf("both runs must keep their manifests, found %d", manifests)
	}
}

func TestLatestManifestMissing(t *testing.T) {
	store := NewStore(t.TempDir(), noopLogger())
	if _, err := store.LatestManifest("2025-06-15"); !errors.Is(err, ErrNoManifest) {
		t.Fatalf("expected ErrNoManifest, got %v", err)
	}
}

func TestLoadArtifactsRoundtrip(t *testing.T) {
	store := NewStore(t.TempDir(), noopLogger())
	runID := NewRunID("2025-06-15", time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))
	run := sampleRun(runID)
	manifest, err := store.WriteRun(run)
	if err != nil {
		t.Fatalf("write run: %v", err)
	}

	summary, err := store.LoadSummary(manifest)
	if err != nil {
		t.Fatalf("load summary: %v", err)
	}
	if len(summary) != 1 || summary[0].Currency != "EUR" {
		t.Fatalf("unexpected summary %+v", summary)
	}

	overview, err := store.LoadOverview(manifest)
	if err != nil {
		t.Fatalf("load overview: %v", err)
	}
	if overview.TotalCurrencies != 1 {
		t.Fatalf("unexpected overview %+v", overview)
	}

	trends, err := store.LoadTrends(manifest)
	if err != nil {
		t.Fatalf("load trends: %v", err)
	}
	if len(trends) != len(run.Trends) {
		t.Fatalf("expected %d trend points, got %d", len(run.Trends), len(trends))
	}
}

func TestNewRunIDSortsChronologically(t *testing.T) {
	a := NewRunID("2025-06-15", time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))
	b := NewRunID("2025-06-15", time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC))
	if !(a < b) {
		t.Fatalf("run IDs must sort by time: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "2025-06-15_") {
		t.Fatalf("run ID must embed the target date, got %s", a)
	}
}
