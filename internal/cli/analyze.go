package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/pipeline"
)

var (
	entityTypeFlag string
	outJSON        string
	outMD          string
	timeout        time.Duration
	searchURL      string
	searchKey      string
	noCache        bool
	noFooter       bool
	insecureTLS    bool
	probeEnabled   bool
	ownedDomains   []string
	homepage       string
	llmEnabled     bool
	llmProvider    string
	llmModel       string
	geoProbe       bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <keyword>",
	Short: "Analyze a keyword and compute its reputation score",
	Long: `Analyze fetches evidence for a keyword, applies any stored annotations,
optionally probes owned and social web properties, and computes the
weighted 0-100 reputation score.

Example:
  statusscore analyze "Acme Corp" --entity-type company
  statusscore analyze "Jane Doe" --entity-type individual --json report.json
  statusscore analyze "Acme Corp" --probe --owned-domain acme.com --homepage https://acme.com
  statusscore analyze "Acme Corp" --llm openai --geo-probe`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&entityTypeFlag, "entity-type", "individual", entityTypeHelp)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Fetch flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", commandTimeout, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&searchURL, "search-url", "", "search API base URL (overrides config)")
	analyzeCmd.Flags().StringVar(&searchKey, "search-key", "", "search API key (overrides config)")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	analyzeCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")

	// Probe flags
	analyzeCmd.Flags().BoolVar(&probeEnabled, "probe", false, "probe owned and social properties for live checks")
	analyzeCmd.Flags().StringSliceVar(&ownedDomains, "owned-domain", nil, "domain the entity controls (repeatable)")
	analyzeCmd.Flags().StringVar(&homepage, "homepage", "", "entity homepage, crawled for profile links")

	// LLM flags
	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	analyzeCmd.Flags().BoolVar(&geoProbe, "geo-probe", false, "refine AI visibility via the LLM provider")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	keyword := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := analysisConfig(cmd)
	if err != nil {
		return err
	}

	entityType := model.ParseEntityType(entityTypeFlag)

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s (%s)\n", keyword, entityType)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	report, err := p.Analyze(ctx, keyword, entityType)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Fetched %d evidence items\n", len(report.Evidence))
		fmt.Fprintf(os.Stderr, "✓ Computed score: %d/100\n", report.Breakdown.Total)
		if report.LLM != nil && report.LLM.SummaryMD != "" {
			fmt.Fprintf(os.Stderr, "✓ Generated summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	return renderAnalysis(p, report)
}

// analysisConfig merges the shared analyze/compare/batch flag set over the
// config file and defaults.
func analysisConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := buildConfig()
	if timeout > 0 {
		cfg.HTTP.Timeout = timeout
	}
	cfg.HTTP.InsecureTLS = insecureTLS
	cfg.Cache.Enabled = !noCache
	cfg.Output.IncludeFooter = !noFooter

	if searchURL != "" {
		cfg.Search.BaseURL = searchURL
	}
	if searchKey != "" {
		cfg.Search.APIKey = searchKey
	}

	if cmd.Flags().Changed("probe") {
		cfg.Probe.Enabled = probeEnabled
	}
	if len(ownedDomains) > 0 {
		cfg.Probe.OwnedDomains = ownedDomains
	}
	if homepage != "" {
		cfg.Probe.Homepage = homepage
	}

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
		if cmd.Flags().Changed("geo-probe") {
			cfg.LLM.GeoProbe = geoProbe
		}
		if err := applyLLMEnv(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// renderAnalysis writes the requested outputs and prints the summary.
func renderAnalysis(p *pipeline.Pipeline, report *model.AnalysisReport) error {
	renderer := p.Renderer()

	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}

	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.RenderSummary(report)
	return nil
}
