package score

import (
	"math"

	"github.com/bb-after/status-score/internal/model"
)

// fallbackFloor guards percentage scoring against tiny denominators that
// would otherwise saturate the positive term.
const fallbackFloor = 10

// Engine converts raw reputation metrics into a weighted, bounded score.
// Compute is pure: no I/O, no shared state, safe for concurrent use.
type Engine struct{}

// NewEngine creates a new scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Compute calculates the score breakdown for one metrics snapshot. It is
// total over its input domain: out-of-range values are clamped, never
// rejected, and identical input always yields identical output.
func (e *Engine) Compute(metrics model.ReputationMetrics, entityType model.EntityType) model.ScoreBreakdown {
	profile := Resolve(entityType)

	positives := clampMin(metrics.PositiveArticles, 0)
	negatives := clampMin(metrics.NegativeLinks, 0)
	wikipedia := clampRange(metrics.WikipediaPresence, 0, 5)
	owned := clampMin(metrics.OwnedAssets, 0)
	social := clampRange(metrics.SocialPresence, 0, 100)
	geo := clampRange(metrics.GeoPresence, 0, 100)

	total := resolveTotalResults(metrics.TotalResults, positives, negatives)

	// Positive coverage is percentage-based and capped at its max regardless
	// of raw count. A zero denominator scores zero, not NaN.
	positiveScore := 0.0
	if total > 0 {
		positiveScore = math.Min(float64(positives)/float64(total), 1) * profile.PositiveMax
	}

	wikipediaScore := float64(wikipedia) / 5 * profile.WikipediaMax
	ownedScore := ownedAssetTier(owned) * profile.OwnedAssetsMax
	negativeScore := -float64(negatives) * profile.NegativePenaltyPerItem
	socialScore := float64(social) / 100 * profile.SocialMax
	geoScore := float64(geo) / 100 * profile.GeoMax

	// The total comes from the unrounded sub-scores; the 2-decimal values
	// below are display-only and never summed.
	sum := positiveScore + wikipediaScore + ownedScore + negativeScore + socialScore + geoScore

	return model.ScoreBreakdown{
		Positive:  round2(positiveScore),
		Wikipedia: round2(wikipediaScore),
		Owned:     round2(ownedScore),
		Negative:  round2(negativeScore),
		Social:    round2(socialScore),
		Geo:       round2(geoScore),
		Total:     clampRange(roundHalfUp(sum), 0, 100),
	}
}

// resolveTotalResults picks the percentage-scoring denominator: the explicit
// value when the snapshot carries one, else max(positives+negatives, floor).
func resolveTotalResults(explicit *int, positives, negatives int) int {
	if explicit != nil {
		return clampMin(*explicit, 0)
	}
	derived := positives + negatives
	if derived < fallbackFloor {
		return fallbackFloor
	}
	return derived
}

// OwnedAssetTier returns the fraction of the owned-assets max earned by a
// given count. Reaching a threshold is rewarded, not linear accumulation:
// 5+ assets earn full points, 3-4 earn 80%, 1-2 earn 50%.
//
// This is the one shared tier function; live what-if previews use it too.
func OwnedAssetTier(count int) float64 {
	return ownedAssetTier(clampMin(count, 0))
}

func ownedAssetTier(count int) float64 {
	switch {
	case count >= 5:
		return 1.0
	case count >= 3:
		return 0.8
	case count >= 1:
		return 0.5
	default:
		return 0
	}
}

// roundHalfUp rounds to the nearest integer with ties rounding up.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// round2 rounds to 2 decimal places for display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}

func clampRange(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
