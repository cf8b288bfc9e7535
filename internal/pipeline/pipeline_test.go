package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/reconcile"
	"github.com/bb-after/status-score/internal/score"
	"github.com/bb-after/status-score/internal/store"
)

type stubFetcher struct {
	snapshots map[string]*model.FetchSnapshot
	failOn    map[string]bool
}

func (f *stubFetcher) Fetch(ctx context.Context, keyword string, entityType model.EntityType) (*model.FetchSnapshot, error) {
	if f.failOn[keyword] {
		return nil, fmt.Errorf("fetch failed for %s", keyword)
	}
	snapshot, ok := f.snapshots[keyword]
	if !ok {
		return nil, fmt.Errorf("no snapshot for %s", keyword)
	}
	return snapshot, nil
}

func snapshotFor(keyword string) *model.FetchSnapshot {
	return &model.FetchSnapshot{
		Keyword:    keyword,
		EntityType: model.EntityCompany,
		Items: []model.EvidenceItem{
			{URL: "https://example.com/good", Title: "Award", Rank: 1, BaseSentiment: model.SentimentPositive},
			{URL: "https://example.com/fine", Title: "Launch", Rank: 2, BaseSentiment: model.SentimentPositive},
			{URL: "https://example.com/bad", Title: "Lawsuit", Rank: 3, BaseSentiment: model.SentimentNegative},
		},
	}
}

func newTestPipeline(t *testing.T, fetcher *stubFetcher) *Pipeline {
	t.Helper()
	disk := store.NewDiskStore(t.TempDir())
	engine := score.NewEngine()

	return &Pipeline{
		fetcher:    fetcher,
		engine:     engine,
		reconciler: reconcile.NewReconciler(engine, disk),
		history:    disk,
		notes:      disk,
		renderer:   NewRenderer(false),
		config:     model.DefaultConfig(),
	}
}

func TestPipeline_Analyze(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*model.FetchSnapshot{
		"Acme Corp": snapshotFor("Acme Corp"),
	}}
	p := newTestPipeline(t, fetcher)

	report, err := p.Analyze(context.Background(), "Acme Corp", model.EntityCompany)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if report.Metrics.PositiveArticles != 2 || report.Metrics.NegativeLinks != 1 {
		t.Errorf("counts = %d/%d, want 2/1", report.Metrics.PositiveArticles, report.Metrics.NegativeLinks)
	}
	want := score.NewEngine().Compute(report.Metrics, model.EntityCompany)
	if report.Breakdown.Total != want.Total {
		t.Errorf("total = %d, want %d", report.Breakdown.Total, want.Total)
	}

	// The analysis is persisted as one snapshot.
	history, err := p.History(context.Background(), "Acme Corp")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history = %d snapshots, want 1", len(history))
	}
}

func TestPipeline_AnalyzeFetchFailure(t *testing.T) {
	fetcher := &stubFetcher{failOn: map[string]bool{"Acme Corp": true}}
	p := newTestPipeline(t, fetcher)

	if _, err := p.Analyze(context.Background(), "Acme Corp", model.EntityCompany); err == nil {
		t.Error("fetch failure should surface")
	}
}

func TestPipeline_AnnotateSentiment(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*model.FetchSnapshot{
		"Acme Corp": snapshotFor("Acme Corp"),
	}}
	p := newTestPipeline(t, fetcher)
	ctx := context.Background()

	before, err := p.Analyze(ctx, "Acme Corp", model.EntityCompany)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	after, err := p.AnnotateSentiment(ctx, "Acme Corp", "https://example.com/bad", model.SentimentPositive, "resolved in court")
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}

	if after.Metrics.PositiveArticles != 3 || after.Metrics.NegativeLinks != 0 {
		t.Errorf("counts = %d/%d, want 3/0", after.Metrics.PositiveArticles, after.Metrics.NegativeLinks)
	}
	if after.Breakdown.Total <= before.Breakdown.Total {
		t.Errorf("score should rise after flipping a negative: %d -> %d", before.Breakdown.Total, after.Breakdown.Total)
	}
	if !after.FetchedAt.Equal(before.FetchedAt) {
		t.Error("annotation must not change the fetch timestamp")
	}

	// The stored history was amended in place, not appended to.
	history, err := p.History(ctx, "Acme Corp")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history = %d snapshots, want 1", len(history))
	}
	if history[0].Breakdown.Total != after.Breakdown.Total {
		t.Errorf("stored total = %d, want %d", history[0].Breakdown.Total, after.Breakdown.Total)
	}
}

func TestPipeline_SequentialAnnotationsCompound(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*model.FetchSnapshot{
		"Acme Corp": {
			Keyword:    "Acme Corp",
			EntityType: model.EntityCompany,
			Items: []model.EvidenceItem{
				{URL: "https://example.com/bad1", Title: "Recall", Rank: 1, BaseSentiment: model.SentimentNegative},
				{URL: "https://example.com/bad2", Title: "Outage", Rank: 2, BaseSentiment: model.SentimentNegative},
				{URL: "https://example.com/meh", Title: "Filing", Rank: 3, BaseSentiment: model.SentimentNeutral},
			},
		},
	}}
	p := newTestPipeline(t, fetcher)
	ctx := context.Background()

	if _, err := p.Analyze(ctx, "Acme Corp", model.EntityCompany); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	first, err := p.AnnotateSentiment(ctx, "Acme Corp", "https://example.com/bad1", model.SentimentPositive, "retracted")
	if err != nil {
		t.Fatalf("first annotation: %v", err)
	}
	second, err := p.AnnotateSentiment(ctx, "Acme Corp", "https://example.com/bad2", model.SentimentPositive, "retracted")
	if err != nil {
		t.Fatalf("second annotation: %v", err)
	}

	// The second edit must build on the first, not on the base sentiments.
	if second.Metrics.PositiveArticles != 2 || second.Metrics.NegativeLinks != 0 {
		t.Errorf("counts after both edits = %d/%d, want 2/0 (first annotation lost)",
			second.Metrics.PositiveArticles, second.Metrics.NegativeLinks)
	}
	if item := second.Evidence[0]; item.Override == nil || item.Override.Value != model.SentimentPositive {
		t.Error("earlier override missing from the reloaded evidence")
	}
	if second.Breakdown.Total <= first.Breakdown.Total {
		t.Errorf("score should keep rising across edits: %d -> %d", first.Breakdown.Total, second.Breakdown.Total)
	}
}

func TestPipeline_AnnotateAbsentURLIsNoOp(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*model.FetchSnapshot{
		"Acme Corp": snapshotFor("Acme Corp"),
	}}
	p := newTestPipeline(t, fetcher)
	ctx := context.Background()

	before, err := p.Analyze(ctx, "Acme Corp", model.EntityCompany)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	after, err := p.AnnotateSentiment(ctx, "Acme Corp", "https://nowhere.invalid/x", model.SentimentPositive, "")
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if after.Breakdown.Total != before.Breakdown.Total {
		t.Error("annotating an absent URL must not change the score")
	}
}

func TestPipeline_ReanalysisKeepsAnnotations(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*model.FetchSnapshot{
		"Acme Corp": snapshotFor("Acme Corp"),
	}}
	p := newTestPipeline(t, fetcher)
	ctx := context.Background()

	if _, err := p.Analyze(ctx, "Acme Corp", model.EntityCompany); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if _, err := p.AnnotateSentiment(ctx, "Acme Corp", "https://example.com/bad", model.SentimentPositive, "resolved"); err != nil {
		t.Fatalf("annotate: %v", err)
	}

	// A fresh analysis of the same keyword re-applies the stored override.
	report, err := p.Analyze(ctx, "Acme Corp", model.EntityCompany)
	if err != nil {
		t.Fatalf("re-analyze: %v", err)
	}
	if report.Metrics.NegativeLinks != 0 {
		t.Errorf("negative links = %d, want 0 (override re-applied)", report.Metrics.NegativeLinks)
	}
}

func TestPipeline_Compare(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*model.FetchSnapshot{
		"Acme Corp":  snapshotFor("Acme Corp"),
		"Other Inc.": snapshotFor("Other Inc."),
	}}
	p := newTestPipeline(t, fetcher)

	comparison, err := p.Compare(context.Background(), "Acme Corp", "Other Inc.", model.EntityCompany)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if comparison.Left.Keyword != "Acme Corp" || comparison.Right.Keyword != "Other Inc." {
		t.Errorf("sides = %q / %q", comparison.Left.Keyword, comparison.Right.Keyword)
	}
}

func TestPipeline_CompareOneSideFails(t *testing.T) {
	fetcher := &stubFetcher{
		snapshots: map[string]*model.FetchSnapshot{"Acme Corp": snapshotFor("Acme Corp")},
		failOn:    map[string]bool{"Other Inc.": true},
	}
	p := newTestPipeline(t, fetcher)

	if _, err := p.Compare(context.Background(), "Acme Corp", "Other Inc.", model.EntityCompany); err == nil {
		t.Error("comparison must fail when either side fails")
	}
}
