package model

// RejectReason is the typed cause of a record-level validation failure.
type RejectReason string

const (
	RejectUnknownCurrency  RejectReason = "unknown_currency"
	RejectInvalidRate      RejectReason = "invalid_rate"
	RejectInvalidTimestamp RejectReason = "invalid_timestamp"
	RejectMissingField     RejectReason = "missing_field"
)

// QualityIssue describes one validation failure with the offending field.
type QualityIssue struct {
	TargetCurrency string       `json:"target_currency"`
	Field          string       `json:"field"`
	Reason         RejectReason `json:"reason"`
	Detail         string       `json:"detail"`
}

// QualityReport summarises validation and outlier findings over one batch.
// It is computed fresh per run and only ever embedded in run metadata/logs.
type QualityReport struct {
	TotalRecords   int            `json:"total_records"`
	ValidRecords   int            `json:"valid_records"`
	InvalidRecords int            `json:"invalid_records"`
	QualityScore   float64        `json:"quality_score"`
	ValidityRatio  float64        `json:"validity_ratio"`
	Outliers       []string       `json:"outliers"`
	Issues         []QualityIssue `json:"issues"`
}
