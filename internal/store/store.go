package store

import (
	"context"

	"github.com/bb-after/status-score/internal/model"
)

// StoredAnnotation is the persisted override state for one evidence URL.
// Either field may be nil; last write wins.
type StoredAnnotation struct {
	Sentiment *model.SentimentOverride `json:"sentiment,omitempty"`
	Claim     *model.AssetClaim        `json:"claim,omitempty"`
}

// HistoryStore persists full analysis snapshots keyed by keyword+timestamp
// and accepts fire-and-forget score updates after reconciliation.
type HistoryStore interface {
	SaveSnapshot(ctx context.Context, report *model.AnalysisReport) error
	ListSnapshots(ctx context.Context, keyword string) ([]*model.AnalysisReport, error)
	LatestSnapshot(ctx context.Context, keyword string) (*model.AnalysisReport, error)

	// ReportScore updates the latest snapshot's counts and score so history
	// stays consistent with the user's edits. Implements reconcile.Reporter.
	ReportScore(ctx context.Context, keyword string, positive, negative, total int) error
}

// AnnotationStore persists user overrides keyed by (keyword, url) so they
// can be merged into freshly fetched evidence before first display.
type AnnotationStore interface {
	PutSentiment(ctx context.Context, keyword, url string, override model.SentimentOverride) error
	PutClaim(ctx context.Context, keyword, url string, claim model.AssetClaim) error
	Overrides(ctx context.Context, keyword string, urls []string) (map[string]StoredAnnotation, error)
}

// MergeOverrides applies stored annotations onto freshly fetched items.
// Items without a stored override pass through untouched.
func MergeOverrides(items []model.EvidenceItem, overrides map[string]StoredAnnotation) []model.EvidenceItem {
	if len(overrides) == 0 {
		return items
	}

	merged := make([]model.EvidenceItem, len(items))
	copy(merged, items)

	for i := range merged {
		if stored, ok := overrides[merged[i].URL]; ok {
			merged[i].Override = stored.Sentiment
			merged[i].Claim = stored.Claim
		}
	}
	return merged
}
