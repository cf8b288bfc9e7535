package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bb-after/status-score/internal/model"
	"github.com/bb-after/status-score/internal/util"
)

// CheckResult is the outcome of probing one candidate URL.
type CheckResult struct {
	URL        string `json:"url"`
	Class      string `json:"class"`
	Live       bool   `json:"live"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Result refines the owned-asset and social-presence factors from live
// checks rather than trusting the search API's counts.
type Result struct {
	OwnedAssets    int           `json:"owned_assets"`
	SocialPresence int           `json:"social_presence"` // percentage 0..100
	Checks         []CheckResult `json:"checks"`
}

// Prober HEAD-checks candidate owned-asset and social-profile URLs
// concurrently, honoring robots.txt when configured.
type Prober struct {
	httpClient *http.Client
	userAgent  string
	maxWorkers int
	robots     *util.RobotsChecker
	cfg        *model.ProbeConfig
	classifier *Classifier
}

// NewProber creates a prober.
func NewProber(cfg *model.ProbeConfig, httpCfg model.HTTPConfig, maxWorkers int) *Prober {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	return &Prober{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:  httpCfg.UserAgent,
		maxWorkers: maxWorkers,
		robots:     util.NewRobotsChecker(httpCfg.UserAgent, 10*time.Second),
		cfg:        cfg,
		classifier: NewClassifier(cfg),
	}
}

// Probe refines owned-asset and social-presence metrics from the fetched
// evidence. Candidates are evidence URLs on configured owned domains plus
// profile links discovered on the entity homepage. Probe never fails the
// analysis: on error the caller keeps the fetched metrics.
func (p *Prober) Probe(ctx context.Context, evidence []model.EvidenceItem) (*Result, error) {
	candidates := p.collectCandidates(ctx, evidence)
	if len(candidates) == 0 {
		return &Result{Checks: []CheckResult{}}, nil
	}

	checks := make([]CheckResult, len(candidates))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.maxWorkers)

	for i, candidate := range candidates {
		wg.Add(1)
		go func(idx int, rawURL string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				checks[idx] = CheckResult{URL: rawURL, Class: p.classifier.Classify(rawURL).String(), Error: "context cancelled"}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			checks[idx] = p.checkOne(ctx, rawURL)
		}(i, candidate)
	}
	wg.Wait()

	return p.tally(checks), nil
}

// collectCandidates gathers URLs worth probing: owned/social evidence plus
// links discovered on the homepage.
func (p *Prober) collectCandidates(ctx context.Context, evidence []model.EvidenceItem) []string {
	seen := make(map[string]bool)
	var candidates []string

	add := func(rawURL string) {
		if rawURL == "" || seen[rawURL] {
			return
		}
		if p.classifier.Classify(rawURL) == ClassOther {
			return
		}
		seen[rawURL] = true
		candidates = append(candidates, rawURL)
	}

	for _, item := range evidence {
		// A user claim of not_owned/not_relevant removes the item from
		// candidacy even when the domain matches.
		if item.Claim != nil && item.Claim.Type != model.AssetOwned {
			continue
		}
		add(item.URL)
	}

	if p.cfg.Homepage != "" {
		for _, link := range p.homepageLinks(ctx) {
			add(link)
		}
	}

	return candidates
}

// homepageLinks fetches the entity homepage and extracts its outbound links.
func (p *Prober) homepageLinks(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.Homepage, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2_000_000))
	if err != nil {
		return nil
	}

	links, err := ExtractLinks(string(body), p.cfg.Homepage)
	if err != nil {
		return nil
	}
	return links
}

// checkOne HEAD-checks a single candidate.
func (p *Prober) checkOne(ctx context.Context, rawURL string) CheckResult {
	result := CheckResult{
		URL:   rawURL,
		Class: p.classifier.Classify(rawURL).String(),
	}

	if p.cfg.RespectRobots && !p.robots.IsAllowed(ctx, rawURL) {
		result.Error = "disallowed by robots.txt"
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		return result
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	result.Live = resp.StatusCode >= 200 && resp.StatusCode < 400
	return result
}

// tally converts raw checks into the two refined factors. Owned assets are
// counted per distinct live URL; social presence is the percentage of
// configured platforms with at least one live profile.
func (p *Prober) tally(checks []CheckResult) *Result {
	owned := 0
	liveSocial := make(map[string]bool)

	for _, check := range checks {
		if !check.Live {
			continue
		}
		switch check.Class {
		case ClassOwned.String():
			owned++
		case ClassSocial.String():
			if host, ok := p.classifier.SocialHost(check.URL); ok {
				liveSocial[host] = true
			}
		}
	}

	social := 0
	if len(p.cfg.SocialHosts) > 0 {
		social = len(liveSocial) * 100 / len(p.cfg.SocialHosts)
	}

	return &Result{
		OwnedAssets:    owned,
		SocialPresence: social,
		Checks:         checks,
	}
}
