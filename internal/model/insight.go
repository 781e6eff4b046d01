package model

import "time"

// InsightReport is the structured shape of one generated insight run. It is
// additionally rendered as markdown and plain text when persisted.
type InsightReport struct {
	Metadata          InsightMetadata `json:"metadata"`
	ExecutiveSummary  string          `json:"executive_summary"`
	TechnicalAnalysis string          `json:"technical_analysis"`
	DataContext       string          `json:"data_context"`
	Fallback          bool            `json:"fallback"`
}

// InsightMetadata records provenance of the generation run.
type InsightMetadata struct {
	GeneratedAt     time.Time `json:"generated_at"`
	TargetDate      string    `json:"target_date"`
	Model           string    `json:"model_used"`
	PipelineVersion string    `json:"pipeline_version"`
}
