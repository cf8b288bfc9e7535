package llm

import (
	"context"
	"fmt"

	"github.com/bb-after/status-score/internal/model"
)

const summarizerSystem = "You are a helpful assistant that summarizes reputation reports with strict adherence to evidence constraints."

// Summarizer turns a finished analysis report into a short narrative. The
// narrative is decoration: it is generated after scoring and never feeds
// back into the score.
type Summarizer struct {
	provider Provider
}

// NewSummarizer wraps a provider. Provider must be non-nil.
func NewSummarizer(provider Provider) *Summarizer {
	return &Summarizer{provider: provider}
}

// Summarize generates the narrative. Every URL the model cites must come
// from the report's own evidence; a citation outside that allowlist fails
// the summary rather than shipping a hallucinated reference.
func (s *Summarizer) Summarize(ctx context.Context, report *model.AnalysisReport) (*model.LLMSummary, error) {
	allowed := evidenceURLs(report)

	resp, err := s.provider.Complete(ctx, CompletionRequest{
		System: summarizerSystem,
		Prompt: BuildSummaryPrompt(report, allowed),
	})
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	for _, citedURL := range extractURLs(resp.Text) {
		if !contains(allowed, citedURL) {
			return nil, fmt.Errorf("citation leak: model cited disallowed URL: %s", citedURL)
		}
	}

	return &model.LLMSummary{
		Enabled:   true,
		Provider:  s.provider.Name(),
		Model:     resp.Model,
		SummaryMD: resp.Text,
	}, nil
}

// BuildSummaryPrompt constructs the summarization prompt with the strict
// evidence allowlist embedded.
func BuildSummaryPrompt(report *model.AnalysisReport, evidenceURLs []string) string {
	prompt := fmt.Sprintf(`You are summarizing a reputation analysis. The analysis measures online presence signals - it NEVER asserts what the subject is actually like.

CRITICAL RULES:
1. You MUST ONLY cite URLs from this allowed list:
%s

2. DO NOT infer, speculate, or cite external sources beyond this list.
3. If evidence is sparse, state that explicitly.
4. Describe presence, not character. Use phrases like:
   - "Search results show X positive articles..."
   - "Negative coverage includes..."
   - "The subject maintains N owned properties..."
5. Never praise or condemn the subject - only describe the signals.

Report Summary:
- Subject: %s (%s)
- Reputation Score: %d/100
- Positive Articles: %d
- Negative Links: %d
- Owned Assets: %d
- Wikipedia Presence: %v

Provide a 3-4 sentence summary focusing on the signal mix behind the score.`,
		joinURLs(evidenceURLs),
		report.Keyword, report.EntityType,
		report.Breakdown.Total,
		report.Metrics.PositiveArticles,
		report.Metrics.NegativeLinks,
		report.Metrics.OwnedAssets,
		report.Metrics.WikipediaPresence > 0)

	return prompt
}

func evidenceURLs(report *model.AnalysisReport) []string {
	urls := make([]string, 0, len(report.Evidence))
	for _, item := range report.Evidence {
		if item.URL != "" {
			urls = append(urls, item.URL)
		}
	}
	return urls
}

func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "(No evidence URLs available)"
	}
	result := ""
	for i, url := range urls {
		if i >= 20 { // Limit to first 20 to avoid token bloat
			result += fmt.Sprintf("\n... and %d more URLs", len(urls)-20)
			break
		}
		result += fmt.Sprintf("\n- %s", url)
	}
	return result
}
