package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for partitioning.
const DateLayout = "2006-01-02"

// RateRecord is one currency quote at one point in time, the silver-tier row.
// Validation tags cover shape only; semantic rules (registry membership, rate
// bounds, timestamp window) live in the validate package.
type RateRecord struct {
	BaseCurrency          string          `json:"base_currency" validate:"required,len=3,alpha,uppercase"`
	TargetCurrency        string          `json:"target_currency" validate:"required,len=3,alpha,uppercase"`
	ExchangeRate          decimal.Decimal `json:"exchange_rate"`
	CollectionTimestamp   time.Time       `json:"collection_timestamp" validate:"required"`
	CollectionDate        string          `json:"collection_date" validate:"required,datetime=2006-01-02"`
	SourceUpdateTimestamp time.Time       `json:"source_update_timestamp" validate:"required"`
	PipelineVersion       string          `json:"pipeline_version" validate:"required"`
}

// Key identifies a record within a silver partition. Uniqueness of
// (base, target, collection date) is enforced at write time.
func (r RateRecord) Key() string {
	return fmt.Sprintf("%s/%s/%s", r.BaseCurrency, r.TargetCurrency, r.CollectionDate)
}

// RawDocument is the raw-tier envelope: pipeline metadata plus the untouched
// provider response, one file per collection date.
type RawDocument struct {
	PipelineMetadata RawMetadata      `json:"pipeline_metadata"`
	ProviderResponse ProviderResponse `json:"api_response"`
}

// RawMetadata records provenance for one collection run.
type RawMetadata struct {
	CollectionTimestamp time.Time `json:"collection_timestamp"`
	CollectionDate      string    `json:"collection_date"`
	BaseCurrency        string    `json:"base_currency"`
	PipelineVersion     string    `json:"pipeline_version"`
}

// ProviderResponse mirrors the upstream quote payload.
type ProviderResponse struct {
	Result             string                     `json:"result"`
	BaseCode           string                     `json:"base_code"`
	ConversionRates    map[string]decimal.Decimal `json:"conversion_rates"`
	TimeLastUpdateUnix int64                      `json:"time_last_update_unix"`
	TimeLastUpdateUTC  string                     `json:"time_last_update_utc,omitempty"`
}
