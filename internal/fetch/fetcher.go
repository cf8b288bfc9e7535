package fetch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bb-after/status-score/internal/cache"
	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/util"
	"github.com/bb-after/status-score/internal/worker"
)

// SearchFetcher is the evidence-fetch collaborator: it asks the configured
// search-intelligence API for one (keyword, entityType) snapshot. Responses
// go through the layered cache and a per-host rate limit.
type SearchFetcher struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	maxBytes   int64
	cache      cache.Cache     // nil disables caching
	limiter    *worker.Limiter // nil disables rate limiting
	cacheTTL   time.Duration
}

// NewSearchFetcher creates a fetcher from configuration. c and limiter may
// be nil.
func NewSearchFetcher(httpCfg model.HTTPConfig, searchCfg model.SearchConfig, c cache.Cache, limiter *worker.Limiter, cacheTTL time.Duration) *SearchFetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
	}
	if httpCfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &SearchFetcher{
		httpClient: &http.Client{
			Timeout:   httpCfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		baseURL:   searchCfg.BaseURL,
		apiKey:    searchCfg.APIKey,
		userAgent: httpCfg.UserAgent,
		maxBytes:  httpCfg.MaxBodyBytes,
		cache:     c,
		limiter:   limiter,
		cacheTTL:  cacheTTL,
	}
}

// Wire format of the search-intelligence API.
type apiResponse struct {
	TotalResults      *int             `json:"total_results,omitempty"`
	WikipediaPresence int              `json:"wikipedia_presence"`
	OwnedAssets       int              `json:"owned_assets"`
	SocialPresence    int              `json:"social_presence"`
	GeoPresence       int              `json:"geo_presence"`
	Results           []apiResult      `json:"results"`
	History           []apiHistoryItem `json:"history,omitempty"`
}

type apiResult struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Source    string `json:"source"`
	Rank      int    `json:"rank"`
	Sentiment string `json:"sentiment"`
}

type apiHistoryItem struct {
	Date  string `json:"date"` // RFC 3339 date
	Score int    `json:"score"`
}

// Fetch retrieves one evidence snapshot for the keyword.
func (f *SearchFetcher) Fetch(ctx context.Context, keyword string, entityType model.EntityType) (*model.FetchSnapshot, error) {
	if f.baseURL == "" {
		return nil, fmt.Errorf("search API base URL not configured")
	}

	requestURL := fmt.Sprintf("%s/v1/reputation?keyword=%s&entity_type=%s",
		f.baseURL, url.QueryEscape(keyword), url.QueryEscape(entityType.String()))

	body, err := f.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return buildSnapshot(keyword, entityType, &resp), nil
}

// get performs the HTTP request, consulting the cache first.
func (f *SearchFetcher) get(ctx context.Context, requestURL string) ([]byte, error) {
	key := cache.Key(requestURL)
	if f.cache != nil {
		if body, found := f.cache.Get(key); found {
			return body, nil
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, requestURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")
	if f.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if f.cache != nil {
		_ = f.cache.Set(key, body, f.cacheTTL)
	}

	return body, nil
}

// buildSnapshot maps the wire response into the model. Evidence counts are
// derived from the classified results so the metrics and the items can never
// disagree at the source.
func buildSnapshot(keyword string, entityType model.EntityType, resp *apiResponse) *model.FetchSnapshot {
	items := make([]model.EvidenceItem, 0, len(resp.Results))
	positives, negatives := 0, 0

	for i, r := range resp.Results {
		rank := r.Rank
		if rank <= 0 {
			rank = i + 1
		}

		sentiment := model.ParseSentiment(r.Sentiment)
		switch sentiment {
		case model.SentimentPositive:
			positives++
		case model.SentimentNegative:
			negatives++
		}

		items = append(items, model.EvidenceItem{
			URL:           r.URL,
			Title:         r.Title,
			Snippet:       r.Snippet,
			Source:        r.Source,
			Rank:          rank,
			BaseSentiment: sentiment,
		})
	}

	totalResults := resp.TotalResults
	if totalResults == nil && len(items) > 0 {
		n := len(items)
		totalResults = &n
	}

	var history []model.HistoryPoint
	for _, h := range resp.History {
		date, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			continue
		}
		history = append(history, model.HistoryPoint{Date: date, Score: h.Score})
	}

	return &model.FetchSnapshot{
		Keyword:    keyword,
		EntityType: entityType,
		Metrics: model.ReputationMetrics{
			PositiveArticles:  positives,
			WikipediaPresence: resp.WikipediaPresence,
			OwnedAssets:       resp.OwnedAssets,
			NegativeLinks:     negatives,
			SocialPresence:    resp.SocialPresence,
			GeoPresence:       resp.GeoPresence,
			TotalResults:      totalResults,
		},
		Items:   items,
		History: history,
	}
}
