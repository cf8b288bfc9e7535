package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bb-after/status-score/internal/model"
)

// Renderer writes analysis reports as JSON files, Markdown files, or a
// terminal summary.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON.
func (r *Renderer) RenderJSON(report *model.AnalysisReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report.
func (r *Renderer) RenderMarkdown(report *model.AnalysisReport, path string) error {
	if err := os.WriteFile(path, []byte(r.markdown(report)), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderSummary prints the score and its breakdown to stdout.
func (r *Renderer) RenderSummary(report *model.AnalysisReport) {
	fmt.Printf("\n%s (%s)\n", report.Keyword, report.EntityType)
	fmt.Printf("Reputation Score: %d/100\n\n", report.Breakdown.Total)

	fmt.Println("Breakdown:")
	fmt.Printf("  Positive coverage:  %+.2f\n", report.Breakdown.Positive)
	fmt.Printf("  Wikipedia:          %+.2f\n", report.Breakdown.Wikipedia)
	fmt.Printf("  Owned assets:       %+.2f\n", report.Breakdown.Owned)
	fmt.Printf("  Negative links:     %+.2f\n", report.Breakdown.Negative)
	fmt.Printf("  Social presence:    %+.2f\n", report.Breakdown.Social)
	fmt.Printf("  AI visibility:      %+.2f\n", report.Breakdown.Geo)

	fmt.Printf("\nEvidence: %d items (%d positive, %d negative)\n",
		len(report.Evidence), report.Metrics.PositiveArticles, report.Metrics.NegativeLinks)

	if report.LLM != nil && report.LLM.SummaryMD != "" {
		fmt.Printf("\nSummary (%s/%s):\n%s\n", report.LLM.Provider, report.LLM.Model, report.LLM.SummaryMD)
	}
}

// RenderComparison prints two reports side by side.
func (r *Renderer) RenderComparison(comparison *model.ComparisonReport) {
	left, right := comparison.Left, comparison.Right

	fmt.Printf("\n%-30s %8s    %-30s %8s\n", left.Keyword, "", right.Keyword, "")
	fmt.Printf("%-30s %8d    %-30s %8d\n", "Score", left.Breakdown.Total, "Score", right.Breakdown.Total)

	rows := []struct {
		label    string
		lhs, rhs float64
	}{
		{"Positive coverage", left.Breakdown.Positive, right.Breakdown.Positive},
		{"Wikipedia", left.Breakdown.Wikipedia, right.Breakdown.Wikipedia},
		{"Owned assets", left.Breakdown.Owned, right.Breakdown.Owned},
		{"Negative links", left.Breakdown.Negative, right.Breakdown.Negative},
		{"Social presence", left.Breakdown.Social, right.Breakdown.Social},
		{"AI visibility", left.Breakdown.Geo, right.Breakdown.Geo},
	}
	for _, row := range rows {
		fmt.Printf("%-30s %+8.2f    %-30s %+8.2f\n", row.label, row.lhs, row.label, row.rhs)
	}

	diff := left.Breakdown.Total - right.Breakdown.Total
	switch {
	case diff > 0:
		fmt.Printf("\n%s leads by %d points\n", left.Keyword, diff)
	case diff < 0:
		fmt.Printf("\n%s leads by %d points\n", right.Keyword, -diff)
	default:
		fmt.Println("\nBoth subjects score equally")
	}
}

// RenderHistory prints the stored score series for a keyword.
func (r *Renderer) RenderHistory(keyword string, reports []*model.AnalysisReport) {
	if len(reports) == 0 {
		fmt.Printf("No stored analyses for %q\n", keyword)
		return
	}

	fmt.Printf("\nHistory for %s:\n", keyword)
	for _, report := range reports {
		fmt.Printf("  %s  score %3d  (%d positive, %d negative)\n",
			report.FetchedAt.Format("2006-01-02 15:04"),
			report.Breakdown.Total,
			report.Metrics.PositiveArticles,
			report.Metrics.NegativeLinks)
	}
}

func (r *Renderer) markdown(report *model.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Reputation Report: %s\n\n", report.Keyword)
	fmt.Fprintf(&b, "- **Entity type:** %s\n", report.EntityType)
	fmt.Fprintf(&b, "- **Analyzed:** %s\n", report.FetchedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "- **Score:** %d/100\n\n", report.Breakdown.Total)

	b.WriteString("## Breakdown\n\n")
	b.WriteString("| Factor | Points |\n|---|---|\n")
	fmt.Fprintf(&b, "| Positive coverage | %+.2f |\n", report.Breakdown.Positive)
	fmt.Fprintf(&b, "| Wikipedia | %+.2f |\n", report.Breakdown.Wikipedia)
	fmt.Fprintf(&b, "| Owned assets | %+.2f |\n", report.Breakdown.Owned)
	fmt.Fprintf(&b, "| Negative links | %+.2f |\n", report.Breakdown.Negative)
	fmt.Fprintf(&b, "| Social presence | %+.2f |\n", report.Breakdown.Social)
	fmt.Fprintf(&b, "| AI visibility | %+.2f |\n", report.Breakdown.Geo)

	if len(report.Evidence) > 0 {
		b.WriteString("\n## Evidence\n\n")
		items := make([]model.EvidenceItem, len(report.Evidence))
		copy(items, report.Evidence)
		sort.SliceStable(items, func(i, j int) bool { return items[i].Rank < items[j].Rank })

		for _, item := range items {
			marker := " "
			switch item.EffectiveSentiment() {
			case model.SentimentPositive:
				marker = "+"
			case model.SentimentNegative:
				marker = "-"
			}
			fmt.Fprintf(&b, "%d. [%s] %s — %s\n", item.Rank, marker, item.Title, item.URL)
			if item.Override != nil {
				fmt.Fprintf(&b, "   *sentiment overridden to %s*\n", item.Override.Value)
			}
		}
	}

	if report.LLM != nil && report.LLM.SummaryMD != "" {
		b.WriteString("\n## Summary\n\n")
		b.WriteString(report.LLM.SummaryMD)
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("\n---\n")
		b.WriteString("*Scores measure online presence signals, not the subject itself.*\n")
	}

	return b.String()
}
