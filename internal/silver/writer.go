package silver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fx-rates-pipeline/internal/model"
	"fx-rates-pipeline/internal/quality"
	"fx-rates-pipeline/internal/validate"
)

// ErrQualityFloor marks a whole-batch rejection: the validity ratio fell below
// the configured floor, which suggests a broken upstream payload rather than a
// few bad currencies. No silver records are written in that case.
var ErrQualityFloor = errors.New("batch validity below quality floor")

// RejectDuplicate extends the validation reasons for the partition uniqueness
// invariant: a second record for the same (base, target, date) is rejected,
// never merged.
const RejectDuplicate model.RejectReason = "duplicate_record"

// Writer normalises raw envelopes into validated silver partitions.
type Writer struct {
	dir       string
	validator *validate.Validator
	scorer    *quality.Scorer
	floor     float64
	logger    zerolog.Logger
}

// NewWriter constructs a silver writer. floor is the minimum validity ratio
// below which the whole batch is rejected.
func NewWriter(dir string, validator *validate.Validator, scorer *quality.Scorer, floor float64, logger zerolog.Logger) *Writer {
	return &Writer{
		dir:       dir,
		validator: validator,
		scorer:    scorer,
		floor:     floor,
		logger:    logger.With().Str("component", "silver_writer").Logger(),
	}
}

// PartitionPath returns the silver file path for a collection date.
func (w *Writer) PartitionPath(date string) string {
	return filepath.Join(w.dir, fmt.Sprintf("exchange_rates_%s.jsonl.sz", date))
}

// Process normalises one raw envelope, validates every candidate, scores the
// batch, and persists the accepted subset partitioned by collection date.
// Partial acceptance is the normal case; the QualityReport is returned for
// logging either way. The write is skipped only on a quality-floor breach.
func (w *Writer) Process(doc model.RawDocument) (model.QualityReport, string, error) {
	candidates := Normalize(doc)

	accepted, issues := w.validator.CheckBatch(candidates)
	accepted, issues = dedupe(accepted, issues)

	report, err := w.scorer.Score(accepted, issues)
	if err != nil {
		return model.QualityReport{}, "", fmt.Errorf("score batch for %s: %w", doc.PipelineMetadata.CollectionDate, err)
	}

	for _, issue := range report.Issues {
		w.logger.Warn().
			Str("target_currency", issue.TargetCurrency).
			Str("field", issue.Field).
			Str("reason", string(issue.Reason)).
			Msg("record rejected")
	}

	if report.ValidityRatio < w.floor {
		w.logger.Error().
			Float64("validity_ratio", report.ValidityRatio).
			Float64("floor", w.floor).
			Msg("batch rejected: validity below quality floor")
		return report, "", fmt.Errorf("%w: validity %.3f < floor %.3f", ErrQualityFloor, report.ValidityRatio, w.floor)
	}

	path, err := w.writePartition(doc.PipelineMetadata.CollectionDate, accepted)
	if err != nil {
		return report, "", err
	}

	w.logger.Info().
		Str("path", path).
		Int("accepted", report.ValidRecords).
		Int("rejected", report.InvalidRecords).
		Float64("quality_score", report.QualityScore).
		Msg("silver partition written")

	return report, path, nil
}

// writePartition persists accepted records atomically. Re-running for the
// same date replaces the partition; concurrent runs for one date are not
// supported (assumption, not an enforced invariant).
func (w *Writer) writePartition(date string, records []model.RateRecord) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create silver dir: %w", err)
	}

	data, err := encodePartition(records)
	if err != nil {
		return "", err
	}

	target := w.PartitionPath(date)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write silver partition: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return "", fmt.Errorf("finalise silver partition: %w", err)
	}
	return target, nil
}

// Normalize flattens one raw envelope into candidate records, one per target
// currency, in deterministic (sorted) order.
func Normalize(doc model.RawDocument) []model.RateRecord {
	meta := doc.PipelineMetadata
	resp := doc.ProviderResponse

	updateTS := meta.CollectionTimestamp
	if resp.TimeLastUpdateUnix > 0 {
		updateTS = time.Unix(resp.TimeLastUpdateUnix, 0).UTC()
	}

	targets := make([]string, 0, len(resp.ConversionRates))
	for target := range resp.ConversionRates {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	records := make([]model.RateRecord, 0, len(targets))
	for _, target := range targets {
		records = append(records, model.RateRecord{
			BaseCurrency:          strings.ToUpper(strings.TrimSpace(meta.BaseCurrency)),
			TargetCurrency:        strings.ToUpper(strings.TrimSpace(target)),
			ExchangeRate:          resp.ConversionRates[target],
			CollectionTimestamp:   meta.CollectionTimestamp,
			CollectionDate:        meta.CollectionDate,
			SourceUpdateTimestamp: updateTS,
			PipelineVersion:       meta.PipelineVersion,
		})
	}
	return records
}

// dedupe enforces the (base, target, date) uniqueness invariant: later
// duplicates are rejected, never merged.
func dedupe(accepted []model.RateRecord, issues []model.QualityIssue) ([]model.RateRecord, []model.QualityIssue) {
	seen := make(map[string]struct{}, len(accepted))
	unique := accepted[:0]
	for _, rec := range accepted {
		key := rec.Key()
		if _, dup := seen[key]; dup {
			issues = append(issues, model.QualityIssue{
				TargetCurrency: rec.TargetCurrency,
				Field:          "target_currency",
				Reason:         RejectDuplicate,
				Detail:         fmt.Sprintf("duplicate record for %s", key),
			})
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, rec)
	}
	return unique, issues
}
