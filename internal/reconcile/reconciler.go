package reconcile

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/score"
)

// Reporter receives updated counts and scores after a reconciliation so
// persisted history stays consistent with the latest user edits. Reports are
// fire-and-forget: a failure is logged, never surfaced, and never rolls back
// the in-memory score.
type Reporter interface {
	ReportScore(ctx context.Context, keyword string, positive, negative, total int) error
}

// Reconciler applies user annotations to an evidence set and recomputes the
// score from the edited set. All updates are copy-on-write: callers keep
// their original set untouched.
type Reconciler struct {
	engine   *score.Engine
	reporter Reporter         // nil disables reporting
	now      func() time.Time // injectable for tests
}

// NewReconciler creates a reconciler. reporter may be nil.
func NewReconciler(engine *score.Engine, reporter Reporter) *Reconciler {
	return &Reconciler{
		engine:   engine,
		reporter: reporter,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// OverrideSentiment returns a new evidence set with the first item matching
// url carrying the given sentiment override. An absent url is a silent no-op:
// the UI never edits items it does not render, so there is nothing to report.
func (r *Reconciler) OverrideSentiment(set *model.EvidenceSet, url string, value model.Sentiment, reason string) *model.EvidenceSet {
	return r.annotate(set, url, func(item *model.EvidenceItem) {
		item.Override = &model.SentimentOverride{
			Value:  value,
			Reason: reason,
			At:     r.now(),
		}
	})
}

// ClaimAsset returns a new evidence set with the first item matching url
// carrying the given ownership claim. Last write wins per item.
func (r *Reconciler) ClaimAsset(set *model.EvidenceSet, url string, claim model.AssetClaimType, reason string) *model.EvidenceSet {
	return r.annotate(set, url, func(item *model.EvidenceItem) {
		item.Claim = &model.AssetClaim{
			Type:   claim,
			Reason: reason,
			At:     r.now(),
		}
	})
}

func (r *Reconciler) annotate(set *model.EvidenceSet, url string, apply func(*model.EvidenceItem)) *model.EvidenceSet {
	next := set.Clone()
	item := next.Find(url)
	if item == nil {
		return next
	}
	apply(item)
	return next
}

// Recompute builds a fresh metrics snapshot from the edited set and scores
// it. Only the evidence-derived fields change: positive and negative counts
// come from a full recount over the set, totalResults is the set's item
// count, and every other factor carries over from the prior snapshot since
// annotations never alter it.
func (r *Reconciler) Recompute(set *model.EvidenceSet, prior model.ReputationMetrics, entityType model.EntityType) (model.ReputationMetrics, model.ScoreBreakdown) {
	metrics := prior.WithCounts(set.PositiveArticles(), set.NegativeLinks(), set.TotalResults())
	return metrics, r.engine.Compute(metrics, entityType)
}

// ApplySentiment runs one sentiment edit end to end: apply the override,
// recompute the score, and report the updated counts to the persistence
// collaborator.
func (r *Reconciler) ApplySentiment(ctx context.Context, set *model.EvidenceSet, url string, value model.Sentiment, reason string, prior model.ReputationMetrics) (*model.EvidenceSet, model.ReputationMetrics, model.ScoreBreakdown) {
	next := r.OverrideSentiment(set, url, value, reason)
	metrics, breakdown := r.Recompute(next, prior, next.EntityType)
	r.report(ctx, next.Keyword, metrics, breakdown)
	return next, metrics, breakdown
}

// ApplyAssetClaim runs one ownership-claim edit end to end.
func (r *Reconciler) ApplyAssetClaim(ctx context.Context, set *model.EvidenceSet, url string, claim model.AssetClaimType, reason string, prior model.ReputationMetrics) (*model.EvidenceSet, model.ReputationMetrics, model.ScoreBreakdown) {
	next := r.ClaimAsset(set, url, claim, reason)
	metrics, breakdown := r.Recompute(next, prior, next.EntityType)
	r.report(ctx, next.Keyword, metrics, breakdown)
	return next, metrics, breakdown
}

func (r *Reconciler) report(ctx context.Context, keyword string, metrics model.ReputationMetrics, breakdown model.ScoreBreakdown) {
	if r.reporter == nil {
		return
	}
	if err := r.reporter.ReportScore(ctx, keyword, metrics.PositiveArticles, metrics.NegativeLinks, breakdown.Total); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: score report failed for %q: %v\n", keyword, err)
	}
}
