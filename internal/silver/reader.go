package silver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"fx-rates-pipeline/internal/model"
)

// ErrNoPartitions signals that the requested window contains no silver data.
var ErrNoPartitions = errors.New("no silver partitions found in window")

// Reader loads silver partitions read-only; it never mutates the tier.
type Reader struct {
	dir    string
	logger zerolog.Logger
}

// NewReader constructs a silver reader rooted at dir.
func NewReader(dir string, logger zerolog.Logger) *Reader {
	return &Reader{dir: dir, logger: logger.With().Str("component", "silver_reader").Logger()}
}

// PartitionPath returns the silver file path for a collection date.
func (r *Reader) PartitionPath(date string) string {
	return filepath.Join(r.dir, fmt.Sprintf("exchange_rates_%s.jsonl.sz", date))
}

// HasPartition reports whether a partition exists for the date.
func (r *Reader) HasPartition(date string) bool {
	_, err := os.Stat(r.PartitionPath(date))
	return err == nil
}

// ReadPartition loads all records for one collection date.
func (r *Reader) ReadPartition(date string) ([]model.RateRecord, error) {
	path := r.PartitionPath(date)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read silver partition %s: %w", path, err)
	}
	return decodePartition(data)
}

// ReadWindow consolidates every available partition in [start, end]
// (inclusive calendar dates). Missing dates inside the window are skipped;
// the error is returned only if the whole window is empty.
func (r *Reader) ReadWindow(start, end string) ([]model.RateRecord, error) {
	from, err := time.Parse(model.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	to, err := time.Parse(model.DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("window end %s precedes start %s", end, start)
	}

	var all []model.RateRecord
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		date := day.Format(model.DateLayout)
		if !r.HasPartition(date) {
			r.logger.Debug().Str("date", date).Msg("no silver partition for date")
			continue
		}
		records, err := r.ReadPartition(date)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoPartitions, start, end)
	}

	r.logger.Info().
		Str("start", start).
		Str("end", end).
		Int("records", len(all)).
		Msg("silver window loaded")

	return all, nil
}
