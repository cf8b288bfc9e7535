package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/score"
)

// DiskStore persists history and annotations as JSON files under one root
// directory, one subdirectory per keyword:
//
//	<dir>/<keyword-slug>/20250601T120000Z.json  (snapshots)
//	<dir>/<keyword-slug>/annotations.json       (override map)
type DiskStore struct {
	dir    string
	engine *score.Engine
}

// NewDiskStore creates a disk store rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{
		dir:    dir,
		engine: score.NewEngine(),
	}
}

const annotationsFile = "annotations.json"

// SaveSnapshot writes a full analysis snapshot keyed by keyword+timestamp.
func (s *DiskStore) SaveSnapshot(ctx context.Context, report *model.AnalysisReport) error {
	dir := s.keywordDir(report.Keyword)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	stamp := report.FetchedAt
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}
	path := filepath.Join(dir, stamp.UTC().Format("20060102T150405Z")+".json")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns all snapshots for a keyword, oldest first. A keyword
// with no history returns an empty slice, not an error.
func (s *DiskStore) ListSnapshots(ctx context.Context, keyword string) ([]*model.AnalysisReport, error) {
	dir := s.keywordDir(keyword)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*model.AnalysisReport{}, nil
		}
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == annotationsFile || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names) // Timestamp filenames sort chronologically

	reports := make([]*model.AnalysisReport, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read snapshot %s: %w", name, err)
		}
		var report model.AnalysisReport
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
		}
		reports = append(reports, &report)
	}
	return reports, nil
}

// LatestSnapshot returns the most recent snapshot for a keyword, or an
// error if none exist.
func (s *DiskStore) LatestSnapshot(ctx context.Context, keyword string) (*model.AnalysisReport, error) {
	reports, err := s.ListSnapshots(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("no snapshots for %q", keyword)
	}
	return reports[len(reports)-1], nil
}

// ReportScore folds reconciled counts into the latest snapshot so history
// reflects the user's edits. The whole breakdown is recomputed from the
// amended metrics rather than patching the total in, so the stored
// sub-scores and total can never disagree.
func (s *DiskStore) ReportScore(ctx context.Context, keyword string, positive, negative, total int) error {
	reports, err := s.ListSnapshots(ctx, keyword)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return fmt.Errorf("no snapshots for %q", keyword)
	}

	latest := reports[len(reports)-1]
	latest.Metrics.PositiveArticles = positive
	latest.Metrics.NegativeLinks = negative
	latest.Breakdown = s.engine.Compute(latest.Metrics, latest.EntityType)

	// Rewrite under the original timestamp: this is an amendment to the
	// existing record, not a new analysis.
	return s.SaveSnapshot(ctx, latest)
}

// PutSentiment stores a sentiment override for (keyword, url).
func (s *DiskStore) PutSentiment(ctx context.Context, keyword, url string, override model.SentimentOverride) error {
	return s.updateAnnotations(keyword, url, func(a *StoredAnnotation) {
		a.Sentiment = &override
	})
}

// PutClaim stores an asset claim for (keyword, url).
func (s *DiskStore) PutClaim(ctx context.Context, keyword, url string, claim model.AssetClaim) error {
	return s.updateAnnotations(keyword, url, func(a *StoredAnnotation) {
		a.Claim = &claim
	})
}

// Overrides returns the stored annotations for the given URLs.
func (s *DiskStore) Overrides(ctx context.Context, keyword string, urls []string) (map[string]StoredAnnotation, error) {
	all, err := s.readAnnotations(keyword)
	if err != nil {
		return nil, err
	}

	out := make(map[string]StoredAnnotation)
	for _, u := range urls {
		if stored, ok := all[u]; ok {
			out[u] = stored
		}
	}
	return out, nil
}

func (s *DiskStore) updateAnnotations(keyword, url string, apply func(*StoredAnnotation)) error {
	all, err := s.readAnnotations(keyword)
	if err != nil {
		return err
	}

	stored := all[url]
	apply(&stored)
	all[url] = stored

	dir := s.keywordDir(keyword)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal annotations: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, annotationsFile), data, 0644); err != nil {
		return fmt.Errorf("write annotations: %w", err)
	}
	return nil
}

func (s *DiskStore) readAnnotations(keyword string) (map[string]StoredAnnotation, error) {
	path := filepath.Join(s.keywordDir(keyword), annotationsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]StoredAnnotation{}, nil
		}
		return nil, fmt.Errorf("read annotations: %w", err)
	}

	var all map[string]StoredAnnotation
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode annotations: %w", err)
	}
	if all == nil {
		all = map[string]StoredAnnotation{}
	}
	return all, nil
}

func (s *DiskStore) keywordDir(keyword string) string {
	return filepath.Join(s.dir, slugify(keyword))
}

// slugify turns a keyword into a safe directory name.
func slugify(keyword string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(keyword)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "keyword"
	}
	return slug
}
