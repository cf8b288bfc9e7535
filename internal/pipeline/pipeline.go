package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/bb-after/status-score/internal/cache"
	"github.com/bb-after/status-score/internal/fetch"
	"github.com/bb-after/status-score/internal/llm"
	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/probe"
	"github.com/bb-after/status-score/internal/reconcile"
	"github.com/bb-after/status-score/internal/score"
	"github.com/bb-after/status-score/internal/session"
	"github.com/bb-after/status-score/internal/store"
	"github.com/bb-after/status-score/internal/worker"
)

// Pipeline orchestrates the complete analysis: fetch evidence, merge stored
// annotations, refine asset metrics by probing, score, persist, and
// optionally narrate. It implements worker.Analyzer so batch runs reuse the
// exact same path as single analyses.
type Pipeline struct {
	fetcher    session.Fetcher
	engine     *score.Engine
	reconciler *reconcile.Reconciler
	prober     *probe.Prober // nil when probing is disabled
	history    store.HistoryStore
	notes      store.AnnotationStore
	summarizer *llm.Summarizer      // nil when no LLM provider is configured
	visibility *llm.VisibilityProbe // nil unless the geo probe is enabled
	renderer   *Renderer
	config     *model.Config
}

// NewPipeline creates a pipeline from configuration.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	var limiter *worker.Limiter
	if cfg.HTTP.RatePerHost > 0 {
		limiter = worker.NewLimiter(cfg.HTTP.RatePerHost, cfg.HTTP.Burst)
	}

	fetcher := fetch.NewSearchFetcher(cfg.HTTP, cfg.Search, c, limiter, cfg.Cache.MemoryTTL)

	var prober *probe.Prober
	if cfg.Probe.Enabled {
		prober = probe.NewProber(&cfg.Probe, cfg.HTTP, cfg.Concurrency.ProbeWorkers)
	}

	disk := store.NewDiskStore(cfg.Store.Dir)
	engine := score.NewEngine()

	var summarizer *llm.Summarizer
	var visibility *llm.VisibilityProbe
	if cfg.LLM.Provider != "" {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			return nil, fmt.Errorf("configure LLM provider: %w", err)
		}
		summarizer = llm.NewSummarizer(provider)
		if cfg.LLM.GeoProbe {
			visibility = llm.NewVisibilityProbe(provider)
		}
	}

	return &Pipeline{
		fetcher:    fetcher,
		engine:     engine,
		reconciler: reconcile.NewReconciler(engine, disk),
		prober:     prober,
		history:    disk,
		notes:      disk,
		summarizer: summarizer,
		visibility: visibility,
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		config:     cfg,
	}, nil
}

// Analyze runs one complete analysis for a keyword. It satisfies
// worker.Analyzer.
func (p *Pipeline) Analyze(ctx context.Context, keyword string, entityType model.EntityType) (*model.AnalysisReport, error) {
	sess := session.New(p.fetcher, p.engine)

	report, err := sess.Analyze(ctx, keyword, entityType)
	if err != nil {
		return nil, fmt.Errorf("analyze %q: %w", keyword, err)
	}

	p.enrich(ctx, report)
	p.persist(ctx, report)
	p.narrate(ctx, report)

	return report, nil
}

// Compare runs two analyses side by side. Both must succeed; there is no
// partial comparison.
func (p *Pipeline) Compare(ctx context.Context, keywordA, keywordB string, entityType model.EntityType) (*model.ComparisonReport, error) {
	sess := session.New(p.fetcher, p.engine)

	comparison, err := sess.Compare(ctx, keywordA, keywordB, entityType)
	if err != nil {
		return nil, fmt.Errorf("compare %q vs %q: %w", keywordA, keywordB, err)
	}

	for _, report := range []*model.AnalysisReport{comparison.Left, comparison.Right} {
		p.enrich(ctx, report)
		p.persist(ctx, report)
		p.narrate(ctx, report)
	}

	return comparison, nil
}

// AnnotateSentiment applies a sentiment override to the latest stored
// analysis for the keyword, recomputes the score, and persists both the
// annotation and the amended snapshot. An absent URL is a silent no-op.
func (p *Pipeline) AnnotateSentiment(ctx context.Context, keyword, url string, value model.Sentiment, reason string) (*model.AnalysisReport, error) {
	latest, set, err := p.loadLatest(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if set.Find(url) == nil {
		return latest, nil
	}

	next, metrics, breakdown := p.reconciler.ApplySentiment(ctx, set, url, value, reason, latest.Metrics)

	// Persist the exact override the reconciler stamped.
	if item := next.Find(url); item != nil && item.Override != nil {
		if err := p.notes.PutSentiment(ctx, keyword, url, *item.Override); err != nil {
			return nil, fmt.Errorf("store annotation: %w", err)
		}
	}

	return amended(latest, next, metrics, breakdown), nil
}

// AnnotateAsset applies an ownership claim the same way.
func (p *Pipeline) AnnotateAsset(ctx context.Context, keyword, url string, claim model.AssetClaimType, reason string) (*model.AnalysisReport, error) {
	latest, set, err := p.loadLatest(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if set.Find(url) == nil {
		return latest, nil
	}

	next, metrics, breakdown := p.reconciler.ApplyAssetClaim(ctx, set, url, claim, reason, latest.Metrics)

	if item := next.Find(url); item != nil && item.Claim != nil {
		if err := p.notes.PutClaim(ctx, keyword, url, *item.Claim); err != nil {
			return nil, fmt.Errorf("store annotation: %w", err)
		}
	}

	return amended(latest, next, metrics, breakdown), nil
}

// History returns all stored snapshots for a keyword, oldest first.
func (p *Pipeline) History(ctx context.Context, keyword string) ([]*model.AnalysisReport, error) {
	return p.history.ListSnapshots(ctx, keyword)
}

// Renderer exposes the output renderer.
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// enrich applies stored annotations and probe/LLM refinements to a freshly
// fetched report, recomputing the score after each stage. Refinement stages
// never fail the analysis: on error the report keeps the fetched metrics.
func (p *Pipeline) enrich(ctx context.Context, report *model.AnalysisReport) {
	p.mergeAnnotations(ctx, report)

	if p.prober != nil {
		result, err := p.prober.Probe(ctx, report.Evidence)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: asset probe failed for %q: %v\n", report.Keyword, err)
		} else if len(result.Checks) > 0 {
			report.Metrics.OwnedAssets = result.OwnedAssets
			report.Metrics.SocialPresence = result.SocialPresence
			report.Breakdown = p.engine.Compute(report.Metrics, report.EntityType)
		}
	}

	if p.visibility != nil {
		value, err := p.visibility.Estimate(ctx, report.Keyword, report.EntityType.String())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: visibility probe failed for %q: %v\n", report.Keyword, err)
		} else {
			report.Metrics.GeoPresence = value
			report.Breakdown = p.engine.Compute(report.Metrics, report.EntityType)
		}
	}
}

// mergeAnnotations folds previously stored overrides into the fresh evidence
// so a re-analysis never silently drops the user's edits.
func (p *Pipeline) mergeAnnotations(ctx context.Context, report *model.AnalysisReport) {
	overrides, err := p.notes.Overrides(ctx, report.Keyword, urlsOf(report.Evidence))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: loading annotations failed for %q: %v\n", report.Keyword, err)
		return
	}
	if len(overrides) == 0 {
		return
	}

	merged := store.MergeOverrides(report.Evidence, overrides)
	set := &model.EvidenceSet{
		Keyword:    report.Keyword,
		EntityType: report.EntityType,
		Items:      merged,
	}

	metrics, breakdown := p.reconciler.Recompute(set, report.Metrics, report.EntityType)
	report.Evidence = merged
	report.Metrics = metrics
	report.Breakdown = breakdown
}

// persist saves the snapshot. Persistence is fire-and-forget: a failure is
// logged and the analysis result stands.
func (p *Pipeline) persist(ctx context.Context, report *model.AnalysisReport) {
	if err := p.history.SaveSnapshot(ctx, report); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: saving snapshot failed for %q: %v\n", report.Keyword, err)
	}
}

// narrate attaches the optional LLM summary. It runs after scoring and can
// only decorate the report, never change its numbers.
func (p *Pipeline) narrate(ctx context.Context, report *model.AnalysisReport) {
	if p.summarizer == nil {
		return
	}

	summary, err := p.summarizer.Summarize(ctx, report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: LLM summary failed for %q: %v\n", report.Keyword, err)
		report.LLM = &model.LLMSummary{Enabled: true, Warnings: []string{err.Error()}}
		return
	}
	report.LLM = summary
}

func (p *Pipeline) loadLatest(ctx context.Context, keyword string) (*model.AnalysisReport, *model.EvidenceSet, error) {
	latest, err := p.history.LatestSnapshot(ctx, keyword)
	if err != nil {
		return nil, nil, fmt.Errorf("load latest analysis: %w", err)
	}

	// Stored evidence carries base sentiments only. Fold the stored
	// overrides back in so a second edit compounds with the earlier ones
	// instead of recounting from the base classifications.
	overrides, err := p.notes.Overrides(ctx, keyword, urlsOf(latest.Evidence))
	if err != nil {
		return nil, nil, fmt.Errorf("load annotations: %w", err)
	}
	latest.Evidence = store.MergeOverrides(latest.Evidence, overrides)

	set := &model.EvidenceSet{
		Keyword:    latest.Keyword,
		EntityType: latest.EntityType,
		Items:      latest.Evidence,
	}
	return latest, set, nil
}

func urlsOf(items []model.EvidenceItem) []string {
	urls := make([]string, 0, len(items))
	for _, item := range items {
		urls = append(urls, item.URL)
	}
	return urls
}

// amended returns a copy of the prior report carrying the edited evidence and
// the recomputed score. The fetch timestamp is preserved: an annotation is an
// amendment, not a new analysis.
func amended(prior *model.AnalysisReport, set *model.EvidenceSet, metrics model.ReputationMetrics, breakdown model.ScoreBreakdown) *model.AnalysisReport {
	next := *prior
	next.Evidence = set.Items
	next.Metrics = metrics
	next.Breakdown = breakdown
	return &next
}
