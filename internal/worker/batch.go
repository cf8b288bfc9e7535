package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bb-after/status-score/internal/model"
)

// Analyzer runs one keyword analysis end to end.
type Analyzer interface {
	Analyze(ctx context.Context, keyword string, entityType model.EntityType) (*model.AnalysisReport, error)
}

// AnalyzeJob analyzes one keyword.
type AnalyzeJob struct {
	Keyword    string
	EntityType model.EntityType
	Analyzer   Analyzer
}

// Execute runs the analysis.
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.Analyze(ctx, j.Keyword, j.EntityType)
	if err != nil {
		return &AnalyzeResult{Keyword: j.Keyword, Error: err}
	}
	return &AnalyzeResult{Keyword: j.Keyword, Report: report}
}

// AnalyzeResult is the outcome of one keyword analysis.
type AnalyzeResult struct {
	Keyword string
	Report  *model.AnalysisReport
	Error   error
}

// GetError returns the analysis error, if any.
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple keywords concurrently through the pool.
type BatchProcessor struct {
	analyzer    Analyzer
	entityType  model.EntityType
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(analyzer Analyzer, entityType model.EntityType, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		entityType:  entityType,
		concurrency: concurrency,
	}
}

// ProcessKeywords analyzes the keywords concurrently and returns one result
// per keyword.
func (b *BatchProcessor) ProcessKeywords(ctx context.Context, keywords []string) []*AnalyzeResult {
	if len(keywords) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, keyword := range keywords {
		pool.Submit(&AnalyzeJob{
			Keyword:    keyword,
			EntityType: b.entityType,
			Analyzer:   b.analyzer,
		})
	}

	results := pool.Wait()

	out := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		out[i] = result.(*AnalyzeResult)
	}
	return out
}

// ProcessFile reads keywords from a file and analyzes them concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	keywords, err := ReadKeywordsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read keywords: %w", err)
	}
	return b.ProcessKeywords(ctx, keywords), nil
}

// ReadKeywordsFromFile reads keywords from a file, one per line. Blank lines
// and # comments are skipped; duplicates are dropped.
func ReadKeywordsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var keywords []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			keywords = append(keywords, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return keywords, nil
}
