package quality

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fx-rates-pipeline/internal/model"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func record(target string, rate float64) model.RateRecord {
	ts := time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC)
	return model.RateRecord{
		BaseCurrency:          "USD",
		TargetCurrency:        target,
		ExchangeRate:          decimal.NewFromFloat(rate),
		CollectionTimestamp:   ts,
		CollectionDate:        "2025-06-15",
		SourceUpdateTimestamp: ts,
		PipelineVersion:       "1.0.0",
	}
}

func issue(target string) model.QualityIssue {
	return model.QualityIssue{TargetCurrency: target, Field: "exchange_rate", Reason: model.RejectInvalidRate}
}

func TestScoreEmptyBatch(t *testing.T) {
	_, err := New(DefaultOptions(), noopLogger()).Score(nil, nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestScoreAllValidNoOutliers(t *testing.T) {
	accepted := []model.RateRecord{record("EUR", 0.9), record("GBP", 0.8), record("CHF", 0.85)}
	report, err := New(DefaultOptions(), noopLogger()).Score(accepted, nil)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if report.QualityScore != 1.0 {
		t.Fatalf("clean batch should score 1.0, got %f", report.QualityScore)
	}
	if report.ValidityRatio != 1.0 {
		t.Fatalf("expected validity 1.0, got %f", report.ValidityRatio)
	}
	if len(report.Outliers) != 0 {
		t.Fatalf("no outliers expected, got %v", report.Outliers)
	}
}

func TestScoreReflectsValidityRatio(t *testing.T) {
	accepted := []model.RateRecord{record("BRL", 5.50), record("EUR", 0.90)}
	issues := []model.QualityIssue{issue("XXX_BAD")}

	report, err := New(DefaultOptions(), noopLogger()).Score(accepted, issues)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if report.TotalRecords != 3 || report.ValidRecords != 2 || report.InvalidRecords != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	wantValidity := 2.0 / 3.0
	if diff := report.ValidityRatio - wantValidity; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected validity %f, got %f", wantValidity, report.ValidityRatio)
	}
	// Equal weights, no outliers: score = (validity + 1) / 2.
	wantScore := (wantValidity + 1) / 2
	if diff := report.QualityScore - wantScore; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected score %f, got %f", wantScore, report.QualityScore)
	}
}

func TestScoreMonotonicInValidity(t *testing.T) {
	scorer := New(DefaultOptions(), noopLogger())

	var prev float64 = -1
	for invalid := 5; invalid >= 0; invalid-- {
		accepted := []model.RateRecord{record("EUR", 0.9), record("GBP", 0.8)}
		var issues []model.QualityIssue
		for i := 0; i < invalid; i++ {
			issues = append(issues, issue(fmt.Sprintf("BAD%d", i)))
		}
		report, err := scorer.Score(accepted, issues)
		if err != nil {
			t.Fatalf("score failed: %v", err)
		}
		if report.QualityScore < prev {
			t.Fatalf("score decreased as validity improved: %f < %f", report.QualityScore, prev)
		}
		prev = report.QualityScore
	}
}

func TestFlagOutliersSingleRecordSkipped(t *testing.T) {
	report, err := New(DefaultOptions(), noopLogger()).Score([]model.RateRecord{record("JPY", 150)}, nil)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if len(report.Outliers) != 0 {
		t.Fatalf("single record cannot be an outlier, got %v", report.Outliers)
	}
	if report.QualityScore != 1.0 {
		t.Fatalf("expected score 1.0, got %f", report.QualityScore)
	}
}

func TestFlagOutliersExtremeRate(t *testing.T) {
	// The sample z-score is bounded by (n-1)/sqrt(n), so a batch must hold
	// at least 12 records before any value can clear the 3-sigma threshold.
	accepted := []model.RateRecord{
		record("EUR", 1.0), record("GBP", 1.0), record("CHF", 1.0),
		record("AUD", 1.0), record("CAD", 1.0), record("NZD", 1.0),
		record("SEK", 1.0), record("NOK", 1.0), record("DKK", 1.0),
		record("PLN", 1.0), record("CZK", 1.0), record("HUF", 1.0),
		record("RON", 1.0),
		record("JPY", 500000),
	}
	report, err := New(DefaultOptions(), noopLogger()).Score(accepted, nil)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if len(report.Outliers) == 0 {
		t.Fatal("extreme rate should be flagged")
	}
	if report.Outliers[0] != "USD/JPY/2025-06-15" {
		t.Fatalf("unexpected outlier key %s", report.Outliers[0])
	}
	if report.ValidRecords != len(accepted) {
		t.Fatal("outliers must stay in the accepted set")
	}
	if report.QualityScore >= 1.0 {
		t.Fatalf("outlier should lower the score, got %f", report.QualityScore)
	}
}

func TestFlagOutliersZeroVariance(t *testing.T) {
	accepted := []model.RateRecord{record("EUR", 1.0), record("GBP", 1.0), record("CHF", 1.0)}
	report, err := New(DefaultOptions(), noopLogger()).Score(accepted, nil)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if len(report.Outliers) != 0 {
		t.Fatalf("identical rates cannot produce outliers, got %v", report.Outliers)
	}
}
