package validate

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"fx-rates-pipeline/internal/currency"
	"fx-rates-pipeline/internal/model"
)

// Options bound the plausible value ranges for a rate record.
type Options struct {
	MinRate       decimal.Decimal
	MaxRate       decimal.Decimal
	MinUpdateYear int
	MaxUpdateYear int
}

// DefaultOptions returns the standard plausibility bounds.
func DefaultOptions() Options {
	return Options{
		MinRate:       decimal.NewFromFloat(0.0001),
		MaxRate:       decimal.NewFromInt(1_000_000),
		MinUpdateYear: 2000,
		MaxUpdateYear: 2030,
	}
}

// Validator applies the acceptance rules for silver-tier records. It is pure:
// no validation has side effects, so one instance is safe for reuse across
// batches.
type Validator struct {
	registry *currency.Registry
	check    *validator.Validate
	opts     Options
}

// New constructs a Validator against an immutable currency registry.
func New(registry *currency.Registry, opts Options) *Validator {
	if opts.MinRate.IsZero() && opts.MaxRate.IsZero() {
		opts = DefaultOptions()
	}
	return &Validator{
		registry: registry,
		check:    validator.New(),
		opts:     opts,
	}
}

// Check evaluates the acceptance rules in fixed order; the first failing rule
// wins. A nil result means the record is accepted as-is.
func (v *Validator) Check(rec model.RateRecord) *model.QualityIssue {
	// Rule 1: currency-code registry membership.
	if !v.registry.Contains(rec.BaseCurrency) {
		return &model.QualityIssue{
			TargetCurrency: rec.TargetCurrency,
			Field:          "base_currency",
			Reason:         model.RejectUnknownCurrency,
			Detail:         fmt.Sprintf("unknown currency code %q", rec.BaseCurrency),
		}
	}
	if !v.registry.Contains(rec.TargetCurrency) {
		return &model.QualityIssue{
			TargetCurrency: rec.TargetCurrency,
			Field:          "target_currency",
			Reason:         model.RejectUnknownCurrency,
			Detail:         fmt.Sprintf("unknown currency code %q", rec.TargetCurrency),
		}
	}

	// Rule 2: rate within the plausible open interval.
	if rec.ExchangeRate.LessThanOrEqual(v.opts.MinRate) || rec.ExchangeRate.GreaterThanOrEqual(v.opts.MaxRate) {
		return &model.QualityIssue{
			TargetCurrency: rec.TargetCurrency,
			Field:          "exchange_rate",
			Reason:         model.RejectInvalidRate,
			Detail:         fmt.Sprintf("rate %s outside (%s, %s)", rec.ExchangeRate, v.opts.MinRate, v.opts.MaxRate),
		}
	}

	// Rule 3: source update timestamp inside the sane window.
	year := rec.SourceUpdateTimestamp.Year()
	if rec.SourceUpdateTimestamp.IsZero() || year < v.opts.MinUpdateYear || year > v.opts.MaxUpdateYear {
		return &model.QualityIssue{
			TargetCurrency: rec.TargetCurrency,
			Field:          "source_update_timestamp",
			Reason:         model.RejectInvalidTimestamp,
			Detail:         fmt.Sprintf("update timestamp outside %d-%d window", v.opts.MinUpdateYear, v.opts.MaxUpdateYear),
		}
	}

	// Rule 4: required-field shape check via struct tags.
	if err := v.check.Struct(rec); err != nil {
		field := "record"
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field = verrs[0].Field()
		}
		return &model.QualityIssue{
			TargetCurrency: rec.TargetCurrency,
			Field:          field,
			Reason:         model.RejectMissingField,
			Detail:         fmt.Sprintf("missing or malformed field %s", field),
		}
	}

	return nil
}

// CheckBatch partitions candidates into accepted records and ordered issues.
func (v *Validator) CheckBatch(candidates []model.RateRecord) ([]model.RateRecord, []model.QualityIssue) {
	accepted := make([]model.RateRecord, 0, len(candidates))
	var issues []model.QualityIssue
	for _, rec := range candidates {
		if issue := v.Check(rec); issue != nil {
			issues = append(issues, *issue)
			continue
		}
		accepted = append(accepted, rec)
	}
	return accepted, issues
}
