package model

import "time"

// HistoryPoint is one historical (date, score) observation for a keyword.
type HistoryPoint struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// FetchSnapshot is what the evidence-fetch collaborator returns for one
// (keyword, entityType) request: a metrics snapshot, the ordered evidence
// behind it (base sentiment only, no overrides), and optionally a historical
// score series.
type FetchSnapshot struct {
	Keyword    string            `json:"keyword"`
	EntityType EntityType        `json:"entity_type"`
	Metrics    ReputationMetrics `json:"metrics"`
	Items      []EvidenceItem    `json:"items"`
	History    []HistoryPoint    `json:"history,omitempty"`
}

// AnalysisReport is the complete result of one analysis: the evidence, the
// metrics derived from it, and the authoritative score breakdown.
type AnalysisReport struct {
	Keyword    string            `json:"keyword"`
	EntityType EntityType        `json:"entity_type"`
	FetchedAt  time.Time         `json:"fetched_at"`
	Metrics    ReputationMetrics `json:"metrics"`
	Breakdown  ScoreBreakdown    `json:"breakdown"`
	Evidence   []EvidenceItem    `json:"evidence"`
	History    []HistoryPoint    `json:"history,omitempty"`

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative (never affects the score)
}

// LLMSummary is an optional LLM-generated narrative of the report.
// It is generated after scoring and never feeds back into it.
type LLMSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ComparisonReport pairs two analyses run side by side. It exists only when
// both sides succeeded; partial comparisons are never produced.
type ComparisonReport struct {
	Left  *AnalysisReport `json:"left"`
	Right *AnalysisReport `json:"right"`
}
