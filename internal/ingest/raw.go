package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"fx-rates-pipeline/internal/model"
)

// RawStore lands provider payloads in the raw tier, one JSON envelope per
// collection date.
type RawStore struct {
	dir    string
	logger zerolog.Logger
}

// NewRawStore constructs a raw-tier store rooted at dir.
func NewRawStore(dir string, logger zerolog.Logger) *RawStore {
	return &RawStore{dir: dir, logger: logger.With().Str("component", "raw_store").Logger()}
}

// Path returns the raw file path for a collection date.
func (s *RawStore) Path(date string) string {
	return filepath.Join(s.dir, date+".json")
}

// Write persists one raw envelope. The write is atomic: a temp file is
// renamed into place so a crashed run never leaves a truncated payload.
func (s *RawStore) Write(doc model.RawDocument) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create raw dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal raw document: %w", err)
	}

	target := s.Path(doc.PipelineMetadata.CollectionDate)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write raw file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return "", fmt.Errorf("finalise raw file: %w", err)
	}

	s.logger.Info().
		Str("path", target).
		Int("num_rates", len(doc.ProviderResponse.ConversionRates)).
		Msg("raw payload written")

	return target, nil
}

// Read loads the raw envelope for a collection date.
func (s *RawStore) Read(date string) (model.RawDocument, error) {
	path := s.Path(date)
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RawDocument{}, fmt.Errorf("read raw file %s: %w", path, err)
	}

	var doc model.RawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.RawDocument{}, fmt.Errorf("decode raw file %s: %w", path, err)
	}
	if doc.PipelineMetadata.BaseCurrency == "" || len(doc.ProviderResponse.ConversionRates) == 0 {
		return model.RawDocument{}, fmt.Errorf("raw file %s has invalid structure", path)
	}
	return doc, nil
}

// Envelope wraps a provider response with run provenance.
func Envelope(resp model.ProviderResponse, baseCurrency, date, pipelineVersion string, collectedAt time.Time) model.RawDocument {
	return model.RawDocument{
		PipelineMetadata: model.RawMetadata{
			CollectionTimestamp: collectedAt,
			CollectionDate:      date,
			BaseCurrency:        baseCurrency,
			PipelineVersion:     pipelineVersion,
		},
		ProviderResponse: resp,
	}
}
