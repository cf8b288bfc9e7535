package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/score"
)

var (
	simPositive     int
	simNegative     int
	simWikipedia    int
	simOwned        int
	simSocial       int
	simGeo          int
	simTotalResults int
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Compute a score from manually supplied metrics",
	Long: `Simulate runs the scoring engine on metrics you type in, without any
fetching. Useful for what-if questions: "what happens to a company's
score if two more negative articles land?"

The engine is the same one analyze uses, so simulated and fetched
metrics can never disagree.

Example:
  statusscore simulate --entity-type company --positive 12 --negative 2 --owned 4
  statusscore simulate --entity-type individual --positive 8 --total-results 40`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&entityTypeFlag, "entity-type", "individual", entityTypeHelp)
	simulateCmd.Flags().IntVar(&simPositive, "positive", 0, "count of positive articles")
	simulateCmd.Flags().IntVar(&simNegative, "negative", 0, "count of negative links")
	simulateCmd.Flags().IntVar(&simWikipedia, "wikipedia", 0, "Wikipedia presence, 0-5")
	simulateCmd.Flags().IntVar(&simOwned, "owned", 0, "count of owned web properties")
	simulateCmd.Flags().IntVar(&simSocial, "social", 0, "social presence percentage, 0-100")
	simulateCmd.Flags().IntVar(&simGeo, "geo", 0, "AI visibility percentage, 0-100")
	simulateCmd.Flags().IntVar(&simTotalResults, "total-results", -1, "total search results (-1 derives from counts)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	entityType := model.ParseEntityType(entityTypeFlag)

	metrics := model.ReputationMetrics{
		PositiveArticles:  simPositive,
		NegativeLinks:     simNegative,
		WikipediaPresence: simWikipedia,
		OwnedAssets:       simOwned,
		SocialPresence:    simSocial,
		GeoPresence:       simGeo,
	}
	if simTotalResults >= 0 {
		metrics.TotalResults = &simTotalResults
	}

	breakdown := score.NewEngine().Compute(metrics, entityType)
	profile := score.Resolve(entityType)

	fmt.Printf("\nSimulated score (%s): %d/100\n\n", entityType, breakdown.Total)
	fmt.Println("Breakdown:")
	fmt.Printf("  Positive coverage:  %+.2f / %.0f\n", breakdown.Positive, profile.PositiveMax)
	fmt.Printf("  Wikipedia:          %+.2f / %.0f\n", breakdown.Wikipedia, profile.WikipediaMax)
	fmt.Printf("  Owned assets:       %+.2f / %.0f  (tier %.0f%%)\n",
		breakdown.Owned, profile.OwnedAssetsMax, score.OwnedAssetTier(simOwned)*100)
	fmt.Printf("  Negative links:     %+.2f  (%.0f per link)\n", breakdown.Negative, profile.NegativePenaltyPerItem)
	fmt.Printf("  Social presence:    %+.2f / %.0f\n", breakdown.Social, profile.SocialMax)
	fmt.Printf("  AI visibility:      %+.2f / %.0f\n", breakdown.Geo, profile.GeoMax)
	fmt.Println()

	return nil
}
