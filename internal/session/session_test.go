package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/score"
)

// stubFetcher returns canned snapshots or errors per keyword.
type stubFetcher struct {
	mu        sync.Mutex
	snapshots map[string]*model.FetchSnapshot
	errs      map[string]error
	block     chan struct{} // When set, Fetch waits until closed
}

func (f *stubFetcher) Fetch(ctx context.Context, keyword string, entityType model.EntityType) (*model.FetchSnapshot, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[keyword]; ok {
		return nil, err
	}
	if snap, ok := f.snapshots[keyword]; ok {
		return snap, nil
	}
	return &model.FetchSnapshot{
		Keyword:    keyword,
		EntityType: entityType,
		Metrics:    model.ReputationMetrics{SocialPresence: 50},
		Items: []model.EvidenceItem{
			{URL: "https://example.com/1", Rank: 1, BaseSentiment: model.SentimentPositive},
			{URL: "https://example.com/2", Rank: 2, BaseSentiment: model.SentimentNegative},
		},
	}, nil
}

func TestSession_AnalyzeLifecycle(t *testing.T) {
	s := New(&stubFetcher{}, score.NewEngine())

	if s.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", s.State())
	}

	report, err := s.Analyze(context.Background(), "acme", model.EntityCompany)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if s.State() != StateSettled {
		t.Errorf("state = %s, want settled", s.State())
	}
	if report.Breakdown.Total < 0 || report.Breakdown.Total > 100 {
		t.Errorf("total out of range: %d", report.Breakdown.Total)
	}

	set, metrics, _ := s.Result()
	if set == nil || set.Keyword != "acme" {
		t.Fatal("evidence set not installed")
	}
	if metrics.PositiveArticles != 1 || metrics.NegativeLinks != 1 {
		t.Errorf("counts = %d/%d, want 1/1 from items", metrics.PositiveArticles, metrics.NegativeLinks)
	}
}

func TestSession_FetchFailureErrorsAndRecovers(t *testing.T) {
	f := &stubFetcher{errs: map[string]error{"broken": errors.New("search api down")}}
	s := New(f, score.NewEngine())

	if _, err := s.Analyze(context.Background(), "broken", model.EntityIndividual); err == nil {
		t.Fatal("expected fetch error")
	}
	if s.State() != StateErrored {
		t.Fatalf("state = %s, want errored", s.State())
	}
	if s.Err() == nil {
		t.Error("errored session lost its error")
	}

	// Errored is not terminal: a retry with a working keyword settles.
	if _, err := s.Analyze(context.Background(), "working", model.EntityIndividual); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if s.State() != StateSettled {
		t.Errorf("state after retry = %s, want settled", s.State())
	}
	if s.Err() != nil {
		t.Error("stale error kept after successful retry")
	}
}

func TestSession_ResetReturnsToIdle(t *testing.T) {
	s := New(&stubFetcher{}, score.NewEngine())

	if _, err := s.Analyze(context.Background(), "acme", model.EntityCompany); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	s.Reset()

	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
	if set, _, _ := s.Result(); set != nil {
		t.Error("reset kept the evidence set")
	}
}

func TestSession_StaleResultDiscardedAfterReset(t *testing.T) {
	block := make(chan struct{})
	f := &stubFetcher{block: block}
	s := New(f, score.NewEngine())

	done := make(chan error, 1)
	go func() {
		_, err := s.Analyze(context.Background(), "old keyword", model.EntityCompany)
		done <- err
	}()

	// Move the session on while the fetch is in flight.
	for s.State() != StateRunning {
		time.Sleep(time.Millisecond)
	}
	s.Reset()
	close(block)

	if err := <-done; err == nil {
		t.Error("superseded analysis returned a result")
	}
	if s.State() != StateIdle {
		t.Errorf("stale completion changed state to %s", s.State())
	}
	if set, _, _ := s.Result(); set != nil {
		t.Error("stale result installed after reset")
	}
}

func TestSession_CompareSettlesWhenBothResolve(t *testing.T) {
	s := New(&stubFetcher{}, score.NewEngine())

	cmp, err := s.Compare(context.Background(), "acme", "globex", model.EntityCompany)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if s.State() != StateSettled {
		t.Errorf("state = %s, want settled", s.State())
	}
	if cmp.Left == nil || cmp.Right == nil {
		t.Fatal("comparison missing a side")
	}
	if cmp.Left.Keyword != "acme" || cmp.Right.Keyword != "globex" {
		t.Errorf("sides = %q/%q", cmp.Left.Keyword, cmp.Right.Keyword)
	}
}

func TestSession_CompareFailsWholeOnOneError(t *testing.T) {
	f := &stubFetcher{errs: map[string]error{"globex": errors.New("quota exceeded")}}
	s := New(f, score.NewEngine())

	if _, err := s.Compare(context.Background(), "acme", "globex", model.EntityCompany); err == nil {
		t.Fatal("expected comparison error")
	}
	if s.State() != StateErrored {
		t.Errorf("state = %s, want errored", s.State())
	}
	if s.Comparison() != nil {
		t.Error("partial comparison result kept")
	}
}
