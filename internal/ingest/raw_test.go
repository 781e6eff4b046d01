package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fx-rates-pipeline/internal/model"
)

func sampleResponse() model.ProviderResponse {
	return model.ProviderResponse{
		Result:   "success",
		BaseCode: "USD",
		ConversionRates: map[string]decimal.Decimal{
			"EUR": decimal.NewFromFloat(0.90),
		},
		TimeLastUpdateUnix: 1750000000,
	}
}

func TestRawStoreRoundtrip(t *testing.T) {
	store := NewRawStore(t.TempDir(), noopLogger())
	collectedAt := time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC)
	doc := Envelope(sampleResponse(), "USD", "2025-06-15", "1.0.0", collectedAt)

	path, err := store.Write(doc)
	if err != nil {
		t.Fatalf("write raw: %v", err)
	}
	if path != store.Path("2025-06-15") {
		t.Fatalf("unexpected raw path %s", path)
	}

	loaded, err := store.Read("2025-06-15")
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if loaded.PipelineMetadata.BaseCurrency != "USD" {
		t.Fatalf("unexpected metadata %+v", loaded.PipelineMetadata)
	}
	if !loaded.ProviderResponse.ConversionRates["EUR"].Equal(decimal.NewFromFloat(0.90)) {
		t.Fatal("rates must survive the roundtrip unchanged")
	}
	if !loaded.PipelineMetadata.CollectionTimestamp.Equal(collectedAt) {
		t.Fatalf("unexpected collection timestamp %v", loaded.PipelineMetadata.CollectionTimestamp)
	}
}

func TestRawStoreReadMissing(t *testing.T) {
	store := NewRawStore(t.TempDir(), noopLogger())
	if _, err := store.Read("2025-06-15"); err == nil {
		t.Fatal("missing raw file should error")
	}
}

func TestRawStoreReadRejectsInvalidStructure(t *testing.T) {
	dir := t.TempDir()
	store := NewRawStore(dir, noopLogger())
	if err := os.WriteFile(filepath.Join(dir, "2025-06-15.json"), []byte(`{"pipeline_metadata":{}}`), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if _, err := store.Read("2025-06-15"); err == nil {
		t.Fatal("structurally invalid raw file should error")
	}
}

func TestRawStoreWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewRawStore(dir, noopLogger())
	doc := Envelope(sampleResponse(), "USD", "2025-06-15", "1.0.0", time.Now().UTC())
	if _, err := store.Write(doc); err != nil {
		t.Fatalf("write raw: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "2025-06-15.json" {
		t.Fatalf("expected exactly the final file, got %v", entries)
	}
}
