package model

import "time"

// Sentiment classifies one piece of coverage about the entity.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment parses a sentiment label, defaulting to neutral for
// anything unrecognized.
func ParseSentiment(s string) Sentiment {
	switch s {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// AssetClaimType classifies a user's ownership claim on an evidence item.
type AssetClaimType string

const (
	AssetOwned       AssetClaimType = "owned"
	AssetNotOwned    AssetClaimType = "not_owned"
	AssetNotRelevant AssetClaimType = "not_relevant"
)

// SentimentOverride is a user correction of an item's base sentiment.
// Last write wins per item; superseded overrides are replaced, not kept.
type SentimentOverride struct {
	Value  Sentiment `json:"value"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// AssetClaim is a user claim about whether an evidence item is an owned asset.
type AssetClaim struct {
	Type   AssetClaimType `json:"type"`
	Reason string         `json:"reason,omitempty"`
	At     time.Time      `json:"at"`
}

// EvidenceItem is one discovered piece of content about the entity.
// Overrides are an overlay on the fetched data: the base classification is
// never mutated, only superseded.
type EvidenceItem struct {
	URL           string             `json:"url"`
	Title         string             `json:"title,omitempty"`
	Snippet       string             `json:"snippet,omitempty"`
	Source        string             `json:"source,omitempty"`
	Rank          int                `json:"rank"` // 1-based position in the fetched result list
	BaseSentiment Sentiment          `json:"base_sentiment"`
	Override      *SentimentOverride `json:"override,omitempty"`
	Claim         *AssetClaim        `json:"asset_claim,omitempty"`
}

// EffectiveSentiment returns the user override when present, else the
// originally observed sentiment.
func (i EvidenceItem) EffectiveSentiment() Sentiment {
	if i.Override != nil {
		return i.Override.Value
	}
	return i.BaseSentiment
}

// EvidenceSet is the ordered evidence for one (keyword, entityType) pair.
// Aggregate counts are always derived by a full recount over the current
// classifications, never tracked incrementally.
type EvidenceSet struct {
	Keyword    string         `json:"keyword"`
	EntityType EntityType     `json:"entity_type"`
	Items      []EvidenceItem `json:"items"`
}

// PositiveArticles counts items whose effective sentiment is positive.
func (s *EvidenceSet) PositiveArticles() int {
	n := 0
	for _, item := range s.Items {
		if item.EffectiveSentiment() == SentimentPositive {
			n++
		}
	}
	return n
}

// NegativeLinks counts items whose effective sentiment is negative.
func (s *EvidenceSet) NegativeLinks() int {
	n := 0
	for _, item := range s.Items {
		if item.EffectiveSentiment() == SentimentNegative {
			n++
		}
	}
	return n
}

// TotalResults is the number of items in the set.
func (s *EvidenceSet) TotalResults() int {
	return len(s.Items)
}

// Clone returns a deep-enough copy for copy-on-write updates: the item slice
// is copied so annotating the clone never mutates the original.
func (s *EvidenceSet) Clone() *EvidenceSet {
	items := make([]EvidenceItem, len(s.Items))
	copy(items, s.Items)
	return &EvidenceSet{
		Keyword:    s.Keyword,
		EntityType: s.EntityType,
		Items:      items,
	}
}

// Find returns a pointer to the first item with the given URL, or nil.
func (s *EvidenceSet) Find(url string) *EvidenceItem {
	for i := range s.Items {
		if s.Items[i].URL == url {
			return &s.Items[i]
		}
	}
	return nil
}
