package probe

import (
	"net/url"
	"strings"

	"github.com/bb-after/status-score/internal/model"
)

// Class labels what a probed URL is to the entity.
type Class int

const (
	ClassOther  Class = 0 // Third-party content
	ClassOwned  Class = 1 // Hosted on a domain the entity controls
	ClassSocial Class = 2 // Profile on a recognized social platform
)

func (c Class) String() string {
	switch c {
	case ClassOwned:
		return "owned"
	case ClassSocial:
		return "social"
	default:
		return "other"
	}
}

// Classifier decides ownership from the configured domain lists. A host
// matches a configured domain exactly or as a subdomain.
type Classifier struct {
	ownedMap  map[string]bool
	socialMap map[string]bool
}

// NewClassifier builds a classifier from probe configuration.
func NewClassifier(cfg *model.ProbeConfig) *Classifier {
	c := &Classifier{
		ownedMap:  make(map[string]bool),
		socialMap: make(map[string]bool),
	}
	for _, domain := range cfg.OwnedDomains {
		c.ownedMap[normalizeDomain(domain)] = true
	}
	for _, domain := range cfg.SocialHosts {
		c.socialMap[normalizeDomain(domain)] = true
	}
	return c
}

// normalizeDomain lowercases a configured domain and strips any scheme,
// www prefix, port, or path so it compares cleanly against URL hosts.
func normalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	if idx := strings.Index(d, "/"); idx > 0 {
		d = d[:idx]
	}
	if idx := strings.Index(d, ":"); idx > 0 {
		d = d[:idx]
	}
	return strings.TrimPrefix(d, "www.")
}

// Classify labels one URL.
func (c *Classifier) Classify(rawURL string) Class {
	host := hostOf(rawURL)
	if host == "" {
		return ClassOther
	}

	if matchesAny(host, c.ownedMap) {
		return ClassOwned
	}
	if matchesAny(host, c.socialMap) {
		return ClassSocial
	}
	return ClassOther
}

// SocialHost returns the configured platform domain a URL belongs to, if any.
func (c *Classifier) SocialHost(rawURL string) (string, bool) {
	host := hostOf(rawURL)
	if host == "" {
		return "", false
	}
	for domain := range c.socialMap {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return domain, true
		}
	}
	return "", false
}

func matchesAny(host string, domains map[string]bool) bool {
	if domains[host] {
		return true
	}
	for domain := range domains {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}
