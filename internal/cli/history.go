package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bb-after/status-score/internal/pipeline"
)

var historyJSON bool

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history <keyword>",
	Short: "Show stored analyses for a keyword",
	Long: `History lists every stored analysis for a keyword, oldest first, so
score movement over time is visible.

Example:
  statusscore history "Acme Corp"
  statusscore history "Acme Corp" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print full snapshots as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	keyword := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	p, err := pipeline.NewPipeline(buildConfig())
	if err != nil {
		return err
	}

	reports, err := p.History(ctx, keyword)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	if historyJSON {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal history: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	p.Renderer().RenderHistory(keyword, reports)
	return nil
}
