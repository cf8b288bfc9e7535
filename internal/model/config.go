package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the full configuration tree. Values come from (highest priority
// first) CLI flags, STATUSSCORE_* environment variables, the config file,
// and the defaults below.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Search      SearchConfig      `yaml:"search" json:"search"`
	Probe       ProbeConfig       `yaml:"probe" json:"probe"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Store       StoreConfig       `yaml:"store" json:"store"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
}

// HTTPConfig controls outbound HTTP behavior.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls" json:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy" json:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" json:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" json:"no_proxy"`
	RatePerHost  float64       `yaml:"rate_per_host" json:"rate_per_host"` // requests/second per host
	Burst        int           `yaml:"burst" json:"burst"`
}

// SearchConfig points at the evidence-fetch collaborator.
type SearchConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	APIKey  string `yaml:"api_key" json:"api_key"`
}

// ProbeConfig controls the owned-asset / social-presence prober.
type ProbeConfig struct {
	Enabled       bool     `yaml:"enabled" json:"enabled"`
	OwnedDomains  []string `yaml:"owned_domains" json:"owned_domains"`   // Domains the entity controls (suffix match)
	SocialHosts   []string `yaml:"social_hosts" json:"social_hosts"`     // Platforms counted toward social presence
	Homepage      string   `yaml:"homepage" json:"homepage"`             // Entity homepage, crawled for profile links
	RespectRobots bool     `yaml:"respect_robots" json:"respect_robots"`
}

// CacheConfig controls fetch response caching.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// StoreConfig controls where analysis history and annotations persist.
type StoreConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// LLMConfig controls the optional LLM provider.
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // openai, ollama, "" = disabled
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"api_key" json:"api_key"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	Timeout   int    `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
	GeoProbe  bool   `yaml:"geo_probe" json:"geo_probe"` // Refine geo presence via the provider
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// ConcurrencyConfig controls worker counts.
type ConcurrencyConfig struct {
	ProbeWorkers int `yaml:"probe_workers" json:"probe_workers"`
	BatchWorkers int `yaml:"batch_workers" json:"batch_workers"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".statusscore")

	return &Config{
		HTTP: HTTPConfig{
			Timeout:      2 * time.Minute,
			UserAgent:    "StatusScore/0.1 (+https://github.com/bb-after/status-score)",
			MaxBodyBytes: 2_000_000,
			RatePerHost:  2,
			Burst:        5,
		},
		Search: SearchConfig{},
		Probe: ProbeConfig{
			Enabled: false,
			SocialHosts: []string{
				"linkedin.com", "x.com", "facebook.com", "instagram.com", "youtube.com",
			},
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Store: StoreConfig{
			Dir: filepath.Join(base, "history"),
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 1000,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Concurrency: ConcurrencyConfig{
			ProbeWorkers: 10,
			BatchWorkers: 4,
		},
	}
}
