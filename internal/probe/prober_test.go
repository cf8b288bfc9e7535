package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bb-after/status-score/internal/model"
)

func testProbeConfig() *model.ProbeConfig {
	return &model.ProbeConfig{
		Enabled:      true,
		OwnedDomains: []string{"acme.com"},
		SocialHosts:  []string{"linkedin.com", "x.com", "facebook.com", "instagram.com"},
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(testProbeConfig())

	cases := map[string]Class{
		"https://acme.com/about":              ClassOwned,
		"https://www.acme.com/":               ClassOwned,
		"https://blog.acme.com/post":          ClassOwned,
		"https://linkedin.com/company/acme":   ClassSocial,
		"https://www.x.com/acmecorp":          ClassSocial,
		"https://news.example.com/acme-story": ClassOther,
		"https://notacme.com/":                ClassOther,
		"": ClassOther,
	}

	for rawURL, want := range cases {
		if got := c.Classify(rawURL); got != want {
			t.Errorf("Classify(%q) = %s, want %s", rawURL, got, want)
		}
	}
}

func TestClassifier_SocialHost(t *testing.T) {
	c := NewClassifier(testProbeConfig())

	host, ok := c.SocialHost("https://www.linkedin.com/in/someone")
	if !ok || host != "linkedin.com" {
		t.Errorf("SocialHost = %q/%v, want linkedin.com/true", host, ok)
	}
	if _, ok := c.SocialHost("https://example.com/"); ok {
		t.Error("non-social host matched a platform")
	}
}

func TestExtractLinks(t *testing.T) {
	page := `<html><body>
		<a href="https://linkedin.com/company/acme">LinkedIn</a>
		<a href="/contact">Contact</a>
		<a href="#top">Top</a>
		<a href="mailto:hi@acme.com">Mail</a>
		<a href="https://linkedin.com/company/acme">Dup</a>
	</body></html>`

	links, err := ExtractLinks(page, "https://acme.com/")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	want := []string{"https://linkedin.com/company/acme", "https://acme.com/contact"}
	if len(links) != len(want) {
		t.Fatalf("links = %v, want %v", links, want)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("link %d = %q, want %q", i, links[i], want[i])
		}
	}
}

func TestProber_Probe(t *testing.T) {
	// One host serves everything; paths decide the outcome.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "dead") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	cfg := &model.ProbeConfig{
		Enabled:      true,
		OwnedDomains: []string{host},
		SocialHosts:  []string{"social.invalid"},
	}

	evidence := []model.EvidenceItem{
		{URL: server.URL + "/site", BaseSentiment: model.SentimentNeutral},
		{URL: server.URL + "/dead-page", BaseSentiment: model.SentimentNeutral},
		{URL: "https://unrelated.example/x", BaseSentiment: model.SentimentNeutral},
	}

	p := NewProber(cfg, model.DefaultConfig().HTTP, 4)
	result, err := p.Probe(context.Background(), evidence)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}

	if result.OwnedAssets != 1 {
		t.Errorf("owned assets = %d, want 1 (dead page excluded)", result.OwnedAssets)
	}
	if result.SocialPresence != 0 {
		t.Errorf("social presence = %d, want 0", result.SocialPresence)
	}
	// The unrelated URL never becomes a candidate.
	if len(result.Checks) != 2 {
		t.Errorf("checks = %d, want 2", len(result.Checks))
	}
}

func TestProber_Probe_RespectsUserClaims(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	cfg := &model.ProbeConfig{OwnedDomains: []string{host}}

	evidence := []model.EvidenceItem{
		{
			URL:           server.URL + "/impostor",
			BaseSentiment: model.SentimentNeutral,
			Claim:         &model.AssetClaim{Type: model.AssetNotOwned},
		},
	}

	p := NewProber(cfg, model.DefaultConfig().HTTP, 2)
	result, err := p.Probe(context.Background(), evidence)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}

	if result.OwnedAssets != 0 {
		t.Errorf("owned assets = %d, want 0 (user disclaimed the URL)", result.OwnedAssets)
	}
}
