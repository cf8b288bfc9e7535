package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/pipeline"
)

var (
	annotateSentiment string
	annotateClaim     string
	annotateReason    string
)

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate <keyword> <url>",
	Short: "Correct the sentiment or ownership of an evidence item",
	Long: `Annotate overrides how one evidence URL from the latest stored analysis
is classified, then recomputes the score from the corrected evidence.
The original classification is kept; the override is an overlay on top
of it, and the last annotation per URL wins.

Annotating a URL the analysis never saw changes nothing.

Example:
  statusscore annotate "Acme Corp" https://news.example.com/story --sentiment positive --reason "resolved in court"
  statusscore annotate "Acme Corp" https://acme-blog.example.com --asset-claim owned`,
	Args: cobra.ExactArgs(2),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().StringVar(&annotateSentiment, "sentiment", "", "override sentiment: positive, neutral, or negative")
	annotateCmd.Flags().StringVar(&annotateClaim, "asset-claim", "", "ownership claim: owned, not_owned, or not_relevant")
	annotateCmd.Flags().StringVar(&annotateReason, "reason", "", "free-form reason recorded with the annotation")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	keyword, url := args[0], args[1]

	if (annotateSentiment == "") == (annotateClaim == "") {
		return fmt.Errorf("exactly one of --sentiment or --asset-claim is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	p, err := pipeline.NewPipeline(buildConfig())
	if err != nil {
		return err
	}

	var report *model.AnalysisReport
	if annotateSentiment != "" {
		value, err := parseSentimentFlag(annotateSentiment)
		if err != nil {
			return err
		}
		report, err = p.AnnotateSentiment(ctx, keyword, url, value, annotateReason)
		if err != nil {
			return fmt.Errorf("annotate failed: %w", err)
		}
	} else {
		claim, err := parseClaimFlag(annotateClaim)
		if err != nil {
			return err
		}
		report, err = p.AnnotateAsset(ctx, keyword, url, claim, annotateReason)
		if err != nil {
			return fmt.Errorf("annotate failed: %w", err)
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Annotation recorded for %s\n\n", url)
	}

	p.Renderer().RenderSummary(report)
	return nil
}

// parseSentimentFlag validates the --sentiment value. Unlike fetched data,
// user input is rejected rather than coerced.
func parseSentimentFlag(s string) (model.Sentiment, error) {
	switch s {
	case "positive":
		return model.SentimentPositive, nil
	case "neutral":
		return model.SentimentNeutral, nil
	case "negative":
		return model.SentimentNegative, nil
	default:
		return "", fmt.Errorf("invalid sentiment %q (expected positive, neutral, or negative)", s)
	}
}

// parseClaimFlag validates the --asset-claim value.
func parseClaimFlag(s string) (model.AssetClaimType, error) {
	switch s {
	case "owned":
		return model.AssetOwned, nil
	case "not_owned":
		return model.AssetNotOwned, nil
	case "not_relevant":
		return model.AssetNotRelevant, nil
	default:
		return "", fmt.Errorf("invalid asset claim %q (expected owned, not_owned, or not_relevant)", s)
	}
}
