package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const visibilitySystem = "You estimate how visible a subject is to AI assistants. Answer with a single integer."

// VisibilityProbe asks the provider how recognizable a subject is, refining
// the generative-engine presence factor. It is an estimate of the model's
// own recall, not a fact about the subject.
type VisibilityProbe struct {
	provider Provider
}

// NewVisibilityProbe wraps a provider. Provider must be non-nil.
func NewVisibilityProbe(provider Provider) *VisibilityProbe {
	return &VisibilityProbe{provider: provider}
}

// Estimate returns a 0-100 visibility percentage for the subject.
func (v *VisibilityProbe) Estimate(ctx context.Context, keyword, entityType string) (int, error) {
	prompt := fmt.Sprintf(`How recognizable is the following subject to you from your training data?

Subject: %s
Type: %s

Reply with ONLY an integer from 0 to 100:
- 0 means you have no knowledge of this subject
- 50 means you have partial or ambiguous knowledge
- 100 means the subject is widely documented and you know it well`, keyword, entityType)

	resp, err := v.provider.Complete(ctx, CompletionRequest{
		System:    visibilitySystem,
		Prompt:    prompt,
		MaxTokens: 10,
	})
	if err != nil {
		return 0, fmt.Errorf("visibility probe: %w", err)
	}

	return parseVisibility(resp.Text)
}

// parseVisibility extracts the leading integer from a model response and
// clamps it to 0..100.
func parseVisibility(text string) (int, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(text), func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) == 0 {
		return 0, fmt.Errorf("no number in response %q", text)
	}

	value, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("parse visibility %q: %w", fields[0], err)
	}

	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	return value, nil
}
