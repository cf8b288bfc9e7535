package model

// ReputationMetrics is one scoring snapshot: the raw signal counts the
// engine converts into a score. Snapshots are immutable; every recompute
// produces a new one.
type ReputationMetrics struct {
	PositiveArticles  int  `json:"positive_articles"`             // Count of positively classified coverage
	WikipediaPresence int  `json:"wikipedia_presence"`            // Authority-page presence, 0..5
	OwnedAssets       int  `json:"owned_assets"`                  // Owned digital assets discovered
	NegativeLinks     int  `json:"negative_links"`                // Count of negatively classified links
	SocialPresence    int  `json:"social_presence"`               // Social platform coverage, percentage 0..100
	GeoPresence       int  `json:"geo_presence"`                  // Generative-engine visibility, percentage 0..100
	TotalResults      *int `json:"total_results,omitempty"`       // Denominator for percentage scoring (nil = derive)
}

// WithCounts returns a copy of the metrics with only the evidence-derived
// fields replaced. All other factors carry over unchanged, since annotations
// never alter them.
func (m ReputationMetrics) WithCounts(positive, negative, totalResults int) ReputationMetrics {
	out := m
	out.PositiveArticles = positive
	out.NegativeLinks = negative
	out.TotalResults = &totalResults
	return out
}

// ScoreBreakdown holds one sub-score per factor (rounded to 2 decimals for
// display) plus the clamped integer total. The total is recomputed from the
// unrounded sub-scores, not summed from the display values.
type ScoreBreakdown struct {
	Positive  float64 `json:"positive"`
	Wikipedia float64 `json:"wikipedia"`
	Owned     float64 `json:"owned_assets"`
	Negative  float64 `json:"negative"`
	Social    float64 `json:"social"`
	Geo       float64 `json:"geo"`
	Total     int     `json:"total"` // 0..100
}
