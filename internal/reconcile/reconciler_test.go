package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/score"
)

// recordingReporter implements Reporter and records calls.
type recordingReporter struct {
	calls    int
	keyword  string
	positive int
	negative int
	total    int
	err      error
}

func (r *recordingReporter) ReportScore(ctx context.Context, keyword string, positive, negative, total int) error {
	r.calls++
	r.keyword = keyword
	r.positive = positive
	r.negative = negative
	r.total = total
	return r.err
}

func testSet() *model.EvidenceSet {
	return &model.EvidenceSet{
		Keyword:    "acme corp",
		EntityType: model.EntityCompany,
		Items: []model.EvidenceItem{
			{URL: "https://news.example/a", Rank: 1, BaseSentiment: model.SentimentPositive},
			{URL: "https://news.example/b", Rank: 2, BaseSentiment: model.SentimentNegative},
			{URL: "https://news.example/c", Rank: 3, BaseSentiment: model.SentimentNeutral},
			{URL: "https://news.example/d", Rank: 4, BaseSentiment: model.SentimentNegative},
		},
	}
}

func newTestReconciler(rep Reporter) *Reconciler {
	r := NewReconciler(score.NewEngine(), rep)
	r.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestOverrideSentiment_NegativeToPositive(t *testing.T) {
	r := newTestReconciler(nil)
	set := testSet()

	beforePos, beforeNeg := set.PositiveArticles(), set.NegativeLinks()

	next := r.OverrideSentiment(set, "https://news.example/b", model.SentimentPositive, "misclassified")

	if got := next.PositiveArticles(); got != beforePos+1 {
		t.Errorf("positive count = %d, want %d", got, beforePos+1)
	}
	if got := next.NegativeLinks(); got != beforeNeg-1 {
		t.Errorf("negative count = %d, want %d", got, beforeNeg-1)
	}
	if got := next.TotalResults(); got != set.TotalResults() {
		t.Errorf("total results changed: %d, want %d", got, set.TotalResults())
	}
}

func TestOverrideSentiment_CopyOnWrite(t *testing.T) {
	r := newTestReconciler(nil)
	set := testSet()

	_ = r.OverrideSentiment(set, "https://news.example/b", model.SentimentPositive, "")

	if set.Items[1].Override != nil {
		t.Error("original set mutated by annotation")
	}
}

func TestOverrideSentiment_AbsentURLIsNoOp(t *testing.T) {
	r := newTestReconciler(nil)
	set := testSet()

	next := r.OverrideSentiment(set, "https://nowhere.example/", model.SentimentPositive, "")

	if next.PositiveArticles() != set.PositiveArticles() || next.NegativeLinks() != set.NegativeLinks() {
		t.Error("annotating an absent URL changed aggregate counts")
	}
	for i := range next.Items {
		if next.Items[i].Override != nil {
			t.Errorf("item %d gained an override from a no-op annotation", i)
		}
	}
}

func TestOverrideSentiment_ReannotationDoesNotDoubleCount(t *testing.T) {
	r := newTestReconciler(nil)
	set := testSet()

	// Flip b negative->positive, then positive->negative, then back. The
	// final counts must match a single annotation with the final value.
	twice := r.OverrideSentiment(set, "https://news.example/b", model.SentimentPositive, "first pass")
	twice = r.OverrideSentiment(twice, "https://news.example/b", model.SentimentNegative, "second thoughts")
	twice = r.OverrideSentiment(twice, "https://news.example/b", model.SentimentPositive, "final")

	once := r.OverrideSentiment(set, "https://news.example/b", model.SentimentPositive, "final")

	if twice.PositiveArticles() != once.PositiveArticles() || twice.NegativeLinks() != once.NegativeLinks() {
		t.Errorf("re-annotation drifted: %d/%d vs %d/%d",
			twice.PositiveArticles(), twice.NegativeLinks(),
			once.PositiveArticles(), once.NegativeLinks())
	}
}

func TestClaimAsset_SetsClaimWithTimestamp(t *testing.T) {
	r := newTestReconciler(nil)
	set := testSet()

	next := r.ClaimAsset(set, "https://news.example/c", model.AssetOwned, "our own blog")

	item := next.Find("https://news.example/c")
	if item == nil || item.Claim == nil {
		t.Fatal("claim not applied")
	}
	if item.Claim.Type != model.AssetOwned {
		t.Errorf("claim type = %s, want owned", item.Claim.Type)
	}
	if item.Claim.At.IsZero() {
		t.Error("claim timestamp not set")
	}
	// Claims do not touch sentiment aggregates.
	if next.PositiveArticles() != set.PositiveArticles() || next.NegativeLinks() != set.NegativeLinks() {
		t.Error("asset claim changed sentiment counts")
	}
}

func TestRecompute_CarriesOverNonEvidenceFactors(t *testing.T) {
	r := newTestReconciler(nil)
	set := testSet()

	prior := model.ReputationMetrics{
		PositiveArticles:  99, // Stale, must be replaced by the recount
		NegativeLinks:     99,
		WikipediaPresence: 4,
		OwnedAssets:       3,
		SocialPresence:    80,
		GeoPresence:       40,
	}

	metrics, _ := r.Recompute(set, prior, model.EntityCompany)

	if metrics.PositiveArticles != set.PositiveArticles() {
		t.Errorf("positive = %d, want recount %d", metrics.PositiveArticles, set.PositiveArticles())
	}
	if metrics.NegativeLinks != set.NegativeLinks() {
		t.Errorf("negative = %d, want recount %d", metrics.NegativeLinks, set.NegativeLinks())
	}
	if metrics.TotalResults == nil || *metrics.TotalResults != set.TotalResults() {
		t.Errorf("total results not taken from the set")
	}
	if metrics.WikipediaPresence != 4 || metrics.OwnedAssets != 3 || metrics.SocialPresence != 80 || metrics.GeoPresence != 40 {
		t.Errorf("non-evidence factors not carried over: %+v", metrics)
	}
}

func TestApplySentiment_ScoreStrictlyIncreases(t *testing.T) {
	rep := &recordingReporter{}
	r := newTestReconciler(rep)
	set := testSet()

	prior := model.ReputationMetrics{SocialPresence: 50}
	_, before := r.Recompute(set, prior, model.EntityCompany)

	_, _, after := r.ApplySentiment(context.Background(), set, "https://news.example/b", model.SentimentPositive, "", prior)

	if after.Total <= before.Total {
		t.Errorf("score did not increase after negative->positive flip: %d -> %d", before.Total, after.Total)
	}
}

func TestApplySentiment_ReportsUpdatedCounts(t *testing.T) {
	rep := &recordingReporter{}
	r := newTestReconciler(rep)
	set := testSet()

	_, metrics, breakdown := r.ApplySentiment(context.Background(), set, "https://news.example/d", model.SentimentNeutral, "", model.ReputationMetrics{})

	if rep.calls != 1 {
		t.Fatalf("reporter called %d times, want 1", rep.calls)
	}
	if rep.keyword != "acme corp" {
		t.Errorf("reported keyword = %q", rep.keyword)
	}
	if rep.positive != metrics.PositiveArticles || rep.negative != metrics.NegativeLinks || rep.total != breakdown.Total {
		t.Errorf("reported %d/%d/%d, want %d/%d/%d",
			rep.positive, rep.negative, rep.total,
			metrics.PositiveArticles, metrics.NegativeLinks, breakdown.Total)
	}
}

func TestApplySentiment_ReporterFailureDoesNotSurface(t *testing.T) {
	rep := &recordingReporter{err: errors.New("store offline")}
	r := newTestReconciler(rep)
	set := testSet()

	next, _, breakdown := r.ApplySentiment(context.Background(), set, "https://news.example/b", model.SentimentPositive, "", model.ReputationMetrics{})

	// The in-memory update stands regardless of the report failure.
	if next.Find("https://news.example/b").Override == nil {
		t.Error("override lost after reporter failure")
	}
	if breakdown.Total < 0 || breakdown.Total > 100 {
		t.Errorf("breakdown invalid after reporter failure: %d", breakdown.Total)
	}
}

func TestApplyAssetClaim_ReportsWithoutCountChanges(t *testing.T) {
	rep := &recordingReporter{}
	r := newTestReconciler(rep)
	set := testSet()

	_, metrics, _ := r.ApplyAssetClaim(context.Background(), set, "https://news.example/a", model.AssetNotRelevant, "", model.ReputationMetrics{})

	if rep.calls != 1 {
		t.Fatalf("reporter called %d times, want 1", rep.calls)
	}
	if metrics.PositiveArticles != set.PositiveArticles() || metrics.NegativeLinks != set.NegativeLinks() {
		t.Error("asset claim altered sentiment counts")
	}
}
