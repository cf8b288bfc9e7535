package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/score"
)

// State is the lifecycle state of one analysis or comparison request.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateSettled State = "settled"
	StateErrored State = "errored" // Recoverable: retry or reset returns to running/idle
)

// Fetcher is the external evidence-fetch collaborator. The session imposes
// no retry policy; a failure surfaces as a single error.
type Fetcher interface {
	Fetch(ctx context.Context, keyword string, entityType model.EntityType) (*model.FetchSnapshot, error)
}

// Session coordinates one analysis or comparison lifecycle: it requests
// evidence, builds the evidence set, and computes the initial score. The
// scoring itself stays pure; the session only sequences it.
type Session struct {
	mu sync.Mutex

	state      State
	keyword    string
	entityType model.EntityType
	set        *model.EvidenceSet
	metrics    model.ReputationMetrics
	breakdown  model.ScoreBreakdown
	history    []model.HistoryPoint
	comparison *model.ComparisonReport
	lastErr    error

	fetcher Fetcher
	engine  *score.Engine
}

// New creates an idle session.
func New(fetcher Fetcher, engine *score.Engine) *Session {
	return &Session{
		state:   StateIdle,
		fetcher: fetcher,
		engine:  engine,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the settled evidence set, metrics, and breakdown.
func (s *Session) Result() (*model.EvidenceSet, model.ReputationMetrics, model.ScoreBreakdown) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set, s.metrics, s.breakdown
}

// Comparison returns the settled comparison report, if any.
func (s *Session) Comparison() *model.ComparisonReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comparison
}

// Err returns the error that moved the session to errored, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reset discards all results and returns the session to idle. A fetch still
// in flight completes against the old keyword and is discarded when it lands.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.keyword = ""
	s.set = nil
	s.metrics = model.ReputationMetrics{}
	s.breakdown = model.ScoreBreakdown{}
	s.history = nil
	s.comparison = nil
	s.lastErr = nil
}

// Analyze runs one analysis: fetch evidence for the keyword, build the
// evidence set, and compute the initial score. Errored sessions recover by
// calling Analyze again.
func (s *Session) Analyze(ctx context.Context, keyword string, entityType model.EntityType) (*model.AnalysisReport, error) {
	s.begin(keyword, entityType)

	snapshot, err := s.fetcher.Fetch(ctx, keyword, entityType)
	if err != nil {
		s.fail(keyword, fmt.Errorf("fetch evidence: %w", err))
		return nil, err
	}

	report := s.settle(keyword, entityType, snapshot)
	if report == nil {
		return nil, fmt.Errorf("analysis for %q superseded", keyword)
	}
	return report, nil
}

// Compare runs two analyses concurrently and settles only when both
// succeed. Completion order is unconstrained; if either side fails the whole
// session moves to errored and no partial result is kept.
func (s *Session) Compare(ctx context.Context, keywordA, keywordB string, entityType model.EntityType) (*model.ComparisonReport, error) {
	s.begin(keywordA+"|"+keywordB, entityType)

	var wg sync.WaitGroup
	snapshots := make([]*model.FetchSnapshot, 2)
	errs := make([]error, 2)

	for i, kw := range []string{keywordA, keywordB} {
		wg.Add(1)
		go func(idx int, keyword string) {
			defer wg.Done()
			snapshots[idx], errs[idx] = s.fetcher.Fetch(ctx, keyword, entityType)
		}(i, kw)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			s.fail(keywordA+"|"+keywordB, fmt.Errorf("fetch comparison side %d: %w", i+1, err))
			return nil, err
		}
	}

	left := buildReport(s.engine, snapshots[0])
	right := buildReport(s.engine, snapshots[1])

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keyword != keywordA+"|"+keywordB {
		// Session moved on while the fetches were in flight.
		return nil, fmt.Errorf("comparison for %q/%q superseded", keywordA, keywordB)
	}
	s.comparison = &model.ComparisonReport{Left: left, Right: right}
	s.state = StateSettled
	return s.comparison, nil
}

func (s *Session) begin(keyword string, entityType model.EntityType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateRunning
	s.keyword = keyword
	s.entityType = entityType
	s.lastErr = nil
	s.comparison = nil
}

// fail moves the session to errored, unless the result is stale.
func (s *Session) fail(keyword string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keyword != keyword {
		return
	}
	s.state = StateErrored
	s.lastErr = err
}

// settle installs a fetch result and computes the score. Results are tagged
// with the request keyword; if the session has moved on, the stale result is
// dropped without a state change and settle returns nil.
func (s *Session) settle(keyword string, entityType model.EntityType, snapshot *model.FetchSnapshot) *model.AnalysisReport {
	report := buildReport(s.engine, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keyword != keyword {
		return nil
	}

	s.set = &model.EvidenceSet{
		Keyword:    keyword,
		EntityType: entityType,
		Items:      snapshot.Items,
	}
	s.metrics = report.Metrics
	s.breakdown = report.Breakdown
	s.history = snapshot.History
	s.state = StateSettled
	return report
}

// buildReport derives an analysis report from one fetch snapshot: the
// metrics' evidence counts are recomputed from the items so the snapshot and
// the set can never disagree.
func buildReport(engine *score.Engine, snapshot *model.FetchSnapshot) *model.AnalysisReport {
	set := &model.EvidenceSet{
		Keyword:    snapshot.Keyword,
		EntityType: snapshot.EntityType,
		Items:      snapshot.Items,
	}

	metrics := snapshot.Metrics
	if len(snapshot.Items) > 0 {
		total := set.TotalResults()
		if metrics.TotalResults == nil {
			metrics.TotalResults = &total
		}
		metrics.PositiveArticles = set.PositiveArticles()
		metrics.NegativeLinks = set.NegativeLinks()
	}

	return &model.AnalysisReport{
		Keyword:    snapshot.Keyword,
		EntityType: snapshot.EntityType,
		FetchedAt:  time.Now().UTC(),
		Metrics:    metrics,
		Breakdown:  engine.Compute(metrics, snapshot.EntityType),
		Evidence:   snapshot.Items,
		History:    snapshot.History,
	}
}
