package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/pipeline"
	"github.com/bb-after/status-score/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple keywords from a file in parallel",
	Long: `Batch analyzes keywords concurrently:
- Read keywords from input file (one per line, # comments skipped)
- Analyze keywords in parallel with a configurable worker count
- Write one JSON and one Markdown report per keyword

Example:
  statusscore batch keywords.txt --entity-type company
  statusscore batch keywords.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&entityTypeFlag, "entity-type", "individual", entityTypeHelp)
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./statusscore-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&searchURL, "search-url", "", "search API base URL (overrides config)")
	batchCmd.Flags().StringVar(&searchKey, "search-key", "", "search API key (overrides config)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := analysisConfig(cmd)
	if err != nil {
		return err
	}
	if concurrency <= 0 {
		concurrency = cfg.Concurrency.BatchWorkers
	}
	entityType := model.ParseEntityType(entityTypeFlag)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Batch analysis: %s (%s, %d workers)\n\n", file, entityType, concurrency)

	processor := worker.NewBatchProcessor(p, entityType, concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	renderer := p.Renderer()

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Keyword, result.Error)
			continue
		}
		successCount++

		slug := reportFilename(result.Keyword)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Keyword, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Keyword, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (score: %d/100)\n", result.Keyword, result.Report.Breakdown.Total)
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d total, %d succeeded, %d failed\n", len(results), successCount, failureCount)
	fmt.Fprintf(os.Stderr, "Reports: %s\n", outputDir)

	return nil
}

// reportFilename turns a keyword into a safe report filename.
func reportFilename(keyword string) string {
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
	if len(slug) > 100 {
		slug = slug[:100]
	}
	return slug
}
