package config

import (
	"time"

	"github.com/mvp-joe/project-atlas/internal/crawler"
	"github.com/mvp-joe/project-atlas/internal/hosting"
	"github.com/mvp-joe/project-atlas/internal/retriever"
)

// Config represents the complete atlas configuration.
// It can be loaded from .atlas/config.yml with environment variable overrides.
type Config struct {
	Hosting   HostingConfig   `yaml:"hosting" mapstructure:"hosting"`
	Retrieval RetrievalConfig `yaml:"retrieval" mapstructure:"retrieval"`
	Crawl     CrawlConfig     `yaml:"crawl" mapstructure:"crawl"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// HostingConfig configures access to the repository host.
type HostingConfig struct {
	APIURL         string `yaml:"api_url" mapstructure:"api_url"`
	RawURL         string `yaml:"raw_url" mapstructure:"raw_url"`
	Token          string `yaml:"token" mapstructure:"token"` // falls back to GITHUB_TOKEN
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	CacheEntries   int    `yaml:"cache_entries" mapstructure:"cache_entries"` // 0 disables the response cache
}

// RetrievalConfig bounds file retrieval.
type RetrievalConfig struct {
	Phase          string   `yaml:"phase" mapstructure:"phase"`
	MaxFiles       int      `yaml:"max_files" mapstructure:"max_files"`
	TruncateTokens int      `yaml:"truncate_tokens" mapstructure:"truncate_tokens"`
	TruncateChars  int      `yaml:"truncate_chars" mapstructure:"truncate_chars"`
	Denylist       []string `yaml:"denylist" mapstructure:"denylist"` // added to the built-in denylist
}

// CrawlConfig configures documentation-site crawling.
type CrawlConfig struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	MaxPages       int  `yaml:"max_pages" mapstructure:"max_pages"`
	Window         int  `yaml:"window" mapstructure:"window"`
	TimeoutSeconds int  `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// LogConfig configures the execution log.
type LogConfig struct {
	Path    string `yaml:"path" mapstructure:"path"` // JSONL file; empty disables it
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Hosting: HostingConfig{
			APIURL:         hosting.DefaultAPIBaseURL,
			RawURL:         hosting.DefaultRawBaseURL,
			UserAgent:      "project-atlas",
			TimeoutSeconds: 30,
			CacheEntries:   1000,
		},
		Retrieval: RetrievalConfig{
			Phase:          string(retriever.PhaseAll),
			MaxFiles:       20,
			TruncateTokens: retriever.DefaultTruncateTokens,
			TruncateChars:  retriever.DefaultTruncateChars,
			Denylist:       []string{},
		},
		Crawl: CrawlConfig{
			Enabled:        false,
			MaxPages:       crawler.DefaultMaxPages,
			Window:         crawler.DefaultWindow,
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Path:    "",
			Verbose: false,
		},
	}
}

// HostingOptions converts the hosting section into client options.
func (c *Config) HostingOptions() hosting.Options {
	return hosting.Options{
		APIBaseURL:   c.Hosting.APIURL,
		RawBaseURL:   c.Hosting.RawURL,
		Token:        c.Hosting.Token,
		UserAgent:    c.Hosting.UserAgent,
		Timeout:      time.Duration(c.Hosting.TimeoutSeconds) * time.Second,
		CacheEntries: c.Hosting.CacheEntries,
	}
}

// RetrievalOptions converts the retrieval section into retriever options.
func (c *Config) RetrievalOptions() retriever.Options {
	return retriever.Options{
		TruncateTokens: c.Retrieval.TruncateTokens,
		TruncateChars:  c.Retrieval.TruncateChars,
		Denylist:       c.Retrieval.Denylist,
	}
}

// CrawlOptions converts the crawl section into crawler options.
func (c *Config) CrawlOptions() crawler.Options {
	return crawler.Options{
		Window:    c.Crawl.Window,
		UserAgent: c.Hosting.UserAgent,
		Timeout:   time.Duration(c.Crawl.TimeoutSeconds) * time.Second,
	}
}
