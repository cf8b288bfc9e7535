package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/pipeline"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <keyword-a> <keyword-b>",
	Short: "Analyze two keywords side by side",
	Long: `Compare runs two full analyses concurrently and renders them side by
side. Both analyses must succeed; there is no partial comparison.

Example:
  statusscore compare "Acme Corp" "Other Inc." --entity-type company`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&entityTypeFlag, "entity-type", "individual", entityTypeHelp)
	compareCmd.Flags().DurationVar(&timeout, "timeout", commandTimeout, "overall comparison timeout")
	compareCmd.Flags().StringVar(&searchURL, "search-url", "", "search API base URL (overrides config)")
	compareCmd.Flags().StringVar(&searchKey, "search-key", "", "search API key (overrides config)")
	compareCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	keywordA, keywordB := args[0], args[1]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := analysisConfig(cmd)
	if err != nil {
		return err
	}
	entityType := model.ParseEntityType(entityTypeFlag)

	if verbose {
		fmt.Fprintf(os.Stderr, "Comparing: %s vs %s (%s)\n\n", keywordA, keywordB, entityType)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	comparison, err := p.Compare(ctx, keywordA, keywordB, entityType)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	p.Renderer().RenderComparison(comparison)
	return nil
}
