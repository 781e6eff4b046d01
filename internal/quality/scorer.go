package quality

import (
	"errors"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"fx-rates-pipeline/internal/model"
)

// ErrEmptyBatch signals a batch of size zero: its score is undefined and the
// caller must treat the run as failed rather than assume any score.
var ErrEmptyBatch = errors.New("quality score undefined for empty batch")

// Options tune scoring behaviour.
type Options struct {
	// OutlierSigma is the z-score distance beyond which a rate is flagged.
	OutlierSigma float64
	// ValidityWeight and OutlierWeight combine the two score components;
	// they are normalised so only their ratio matters.
	ValidityWeight float64
	OutlierWeight  float64
}

// DefaultOptions returns equal weighting with a 3-sigma outlier threshold.
func DefaultOptions() Options {
	return Options{OutlierSigma: 3, ValidityWeight: 0.5, OutlierWeight: 0.5}
}

// Scorer computes batch quality reports.
type Scorer struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scorer.
func New(opts Options, logger zerolog.Logger) *Scorer {
	if opts.OutlierSigma <= 0 {
		opts.OutlierSigma = 3
	}
	if opts.ValidityWeight+opts.OutlierWeight <= 0 {
		opts.ValidityWeight, opts.OutlierWeight = 0.5, 0.5
	}
	return &Scorer{opts: opts, logger: logger.With().Str("component", "quality_scorer").Logger()}
}

// Score builds the QualityReport for one batch of accepted records plus the
// rejection issues collected during validation. Outliers are informational:
// extreme-but-correct magnitudes are legitimate for some currencies, so a
// flagged record stays in the accepted set.
func (s *Scorer) Score(accepted []model.RateRecord, issues []model.QualityIssue) (model.QualityReport, error) {
	total := len(accepted) + len(issues)
	if total == 0 {
		return model.QualityReport{}, ErrEmptyBatch
	}

	validity := float64(len(accepted)) / float64(total)
	outliers := s.flagOutliers(accepted)

	outlierRatio := 0.0
	if len(accepted) > 0 {
		outlierRatio = float64(len(outliers)) / float64(len(accepted))
	}

	weightSum := s.opts.ValidityWeight + s.opts.OutlierWeight
	score := (s.opts.ValidityWeight*validity + s.opts.OutlierWeight*(1-outlierRatio)) / weightSum

	report := model.QualityReport{
		TotalRecords:   total,
		ValidRecords:   len(accepted),
		InvalidRecords: len(issues),
		QualityScore:   score,
		ValidityRatio:  validity,
		Outliers:       outliers,
		Issues:         issues,
	}

	s.logger.Debug().
		Int("total", total).
		Int("valid", len(accepted)).
		Int("outliers", len(outliers)).
		Float64("score", score).
		Msg("batch scored")

	return report, nil
}

// flagOutliers marks rates more than OutlierSigma standard deviations from the
// batch mean. A batch of one carries no variance signal and is skipped.
func (s *Scorer) flagOutliers(accepted []model.RateRecord) []string {
	if len(accepted) <= 1 {
		return nil
	}

	rates := make([]float64, len(accepted))
	for i, rec := range accepted {
		rates[i] = rec.ExchangeRate.InexactFloat64()
	}

	mean := meanOf(rates)
	std := sampleStddev(rates, mean)
	if std == 0 {
		return nil
	}

	var flagged []string
	for i, rec := range accepted {
		if math.Abs(rates[i]-mean) > s.opts.OutlierSigma*std {
			flagged = append(flagged, rec.Key())
		}
	}
	sort.Strings(flagged)
	return flagged
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStddev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
