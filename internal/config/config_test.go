package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-atlas/internal/hosting"
	"github.com/mvp-joe/project-atlas/internal/retriever"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load uses defaults when no config file exists
// - Load reads .atlas/config.yml and .atlas/config.yaml
// - A partial config file merges with defaults
// - The project config wins over ~/.atlas/config.yml
// - Environment variables override config file values and defaults
// - GITHUB_TOKEN is used only when no token is configured
// - Malformed YAML and invalid values are reported
// - Validate() rejects bad URLs, timeouts, budgets, limits and phases
// - Validate() returns multiple errors, each matchable with errors.Is
// - Option conversions carry the configured values

// isolate points HOME at an empty directory and clears token variables.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(TokenFallbackEnv, "")
	t.Setenv("ATLAS_HOSTING_TOKEN", "")
	return t.TempDir()
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	atlasDir := filepath.Join(dir, ".atlas")
	require.NoError(t, os.MkdirAll(atlasDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(atlasDir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, hosting.DefaultAPIBaseURL, cfg.Hosting.APIURL)
	assert.Equal(t, hosting.DefaultRawBaseURL, cfg.Hosting.RawURL)
	assert.Equal(t, 30, cfg.Hosting.TimeoutSeconds)
	assert.Equal(t, 1000, cfg.Hosting.CacheEntries)
	assert.Equal(t, "all", cfg.Retrieval.Phase)
	assert.Equal(t, 20, cfg.Retrieval.MaxFiles)
	assert.Equal(t, 50000, cfg.Retrieval.TruncateTokens)
	assert.Equal(t, 200000, cfg.Retrieval.TruncateChars)
	assert.False(t, cfg.Crawl.Enabled)
	assert.Equal(t, 10, cfg.Crawl.MaxPages)
	assert.Equal(t, 6, cfg.Crawl.Window)
	assert.Empty(t, cfg.Log.Path)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := NewLoader(dir).Load()

	require.NoError(t, err)
	expected := Default()
	assert.Equal(t, expected.Hosting, cfg.Hosting)
	assert.Equal(t, expected.Crawl, cfg.Crawl)
	assert.Equal(t, expected.Log, cfg.Log)
	assert.Equal(t, expected.Retrieval.Phase, cfg.Retrieval.Phase)
	assert.Equal(t, expected.Retrieval.MaxFiles, cfg.Retrieval.MaxFiles)
	assert.Empty(t, cfg.Retrieval.Denylist)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config.yml", `
hosting:
  api_url: https://ghe.example.com/api/v3
  raw_url: https://ghe.example.com/raw
  token: file-token
  timeout_seconds: 5
  cache_entries: 0
retrieval:
  phase: docs
  max_files: 8
  denylist: ["internal", "vendor"]
crawl:
  enabled: true
  max_pages: 3
log:
  path: /tmp/atlas.jsonl
  verbose: true
`)

	cfg, err := NewLoader(dir).Load()

	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.Hosting.APIURL)
	assert.Equal(t, "https://ghe.example.com/raw", cfg.Hosting.RawURL)
	assert.Equal(t, "file-token", cfg.Hosting.Token)
	assert.Equal(t, 5, cfg.Hosting.TimeoutSeconds)
	assert.Equal(t, 0, cfg.Hosting.CacheEntries)
	assert.Equal(t, "docs", cfg.Retrieval.Phase)
	assert.Equal(t, 8, cfg.Retrieval.MaxFiles)
	assert.Equal(t, []string{"internal", "vendor"}, cfg.Retrieval.Denylist)
	assert.True(t, cfg.Crawl.Enabled)
	assert.Equal(t, 3, cfg.Crawl.MaxPages)
	assert.Equal(t, "/tmp/atlas.jsonl", cfg.Log.Path)
	assert.True(t, cfg.Log.Verbose)

	// Untouched keys keep their defaults
	assert.Equal(t, 50000, cfg.Retrieval.TruncateTokens)
	assert.Equal(t, 6, cfg.Crawl.Window)
}

func TestLoadConfig_LoadsFromConfigYaml(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config.yaml", "retrieval:\n  max_files: 4\n")

	cfg, err := NewLoader(dir).Load()

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Retrieval.MaxFiles)
	assert.Equal(t, "all", cfg.Retrieval.Phase)
}

func TestLoadConfig_ProjectConfigWinsOverHome(t *testing.T) {
	dir := isolate(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfig(t, home, "config.yml", "retrieval:\n  max_files: 2\n")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Retrieval.MaxFiles, "home config applies without a project config")

	writeConfig(t, dir, "config.yml", "retrieval:\n  max_files: 7\n")

	cfg, err = NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Retrieval.MaxFiles)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config.yml", "hosting:\n  token: file-token\nretrieval:\n  max_files: 8\n")

	t.Setenv("ATLAS_HOSTING_TOKEN", "env-token")
	t.Setenv("ATLAS_RETRIEVAL_MAX_FILES", "12")
	t.Setenv("ATLAS_CRAWL_ENABLED", "true")

	cfg, err := NewLoader(dir).Load()

	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Hosting.Token)
	assert.Equal(t, 12, cfg.Retrieval.MaxFiles)
	assert.True(t, cfg.Crawl.Enabled)
}

func TestLoadConfig_TokenFallback(t *testing.T) {
	dir := isolate(t)
	t.Setenv(TokenFallbackEnv, "gh-token")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "gh-token", cfg.Hosting.Token)

	writeConfig(t, dir, "config.yml", "hosting:\n  token: file-token\n")

	cfg, err = NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Hosting.Token)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config.yml", "hosting:\n  api_url: [unterminated\n")

	_, err := NewLoader(dir).Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config.yml", "retrieval:\n  phase: everything\n")

	_, err := NewLoader(dir).Load()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"relative api url", func(c *Config) { c.Hosting.APIURL = "api.github.com" }, ErrInvalidURL},
		{"ftp raw url", func(c *Config) { c.Hosting.RawURL = "ftp://raw.example.com" }, ErrInvalidURL},
		{"zero hosting timeout", func(c *Config) { c.Hosting.TimeoutSeconds = 0 }, ErrInvalidTimeout},
		{"negative cache", func(c *Config) { c.Hosting.CacheEntries = -1 }, ErrInvalidCacheSettings},
		{"unknown phase", func(c *Config) { c.Retrieval.Phase = "binary" }, ErrInvalidPhase},
		{"zero max files", func(c *Config) { c.Retrieval.MaxFiles = 0 }, ErrInvalidBudget},
		{"zero truncate tokens", func(c *Config) { c.Retrieval.TruncateTokens = 0 }, ErrInvalidLimit},
		{"negative truncate chars", func(c *Config) { c.Retrieval.TruncateChars = -5 }, ErrInvalidLimit},
		{"zero max pages", func(c *Config) { c.Crawl.MaxPages = 0 }, ErrInvalidBudget},
		{"zero window", func(c *Config) { c.Crawl.Window = 0 }, ErrInvalidLimit},
		{"zero crawl timeout", func(c *Config) { c.Crawl.TimeoutSeconds = 0 }, ErrInvalidTimeout},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Hosting.APIURL = ""
	cfg.Retrieval.MaxFiles = -1
	cfg.Crawl.Window = 0

	err := Validate(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.ErrorIs(t, err, ErrInvalidBudget)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Hosting.Token = "t"
	cfg.Hosting.TimeoutSeconds = 7
	cfg.Retrieval.Denylist = []string{"internal"}
	cfg.Crawl.Window = 4

	h := cfg.HostingOptions()
	assert.Equal(t, "t", h.Token)
	assert.Equal(t, 7*time.Second, h.Timeout)
	assert.Equal(t, 1000, h.CacheEntries)

	r := cfg.RetrievalOptions()
	assert.Equal(t, []string{"internal"}, r.Denylist)
	assert.Equal(t, retriever.DefaultTruncateChars, r.TruncateChars)

	c := cfg.CrawlOptions()
	assert.Equal(t, 4, c.Window)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, "project-atlas", c.UserAgent)
}
