package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// TokenFallbackEnv is consulted when no hosting token is configured.
const TokenFallbackEnv = "GITHUB_TOKEN"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
	homeDir string
}

// NewLoader creates a new configuration loader for the given root directory.
// A project config in rootDir/.atlas wins over one in ~/.atlas.
func NewLoader(rootDir string) Loader {
	home, _ := os.UserHomeDir()
	return &loader{
		rootDir: rootDir,
		homeDir: home,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (ATLAS_*)
// 2. Config file (.atlas/config.yml or .atlas/config.yaml, then ~/.atlas)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, ".atlas"))
	if l.homeDir != "" {
		v.AddConfigPath(filepath.Join(l.homeDir, ".atlas"))
	}

	// ATLAS_HOSTING_TOKEN, ATLAS_RETRIEVAL_MAX_FILES, ...
	v.SetEnvPrefix("ATLAS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"hosting.api_url",
		"hosting.raw_url",
		"hosting.token",
		"hosting.user_agent",
		"hosting.timeout_seconds",
		"hosting.cache_entries",
		"retrieval.phase",
		"retrieval.max_files",
		"retrieval.truncate_tokens",
		"retrieval.truncate_chars",
		"crawl.enabled",
		"crawl.max_pages",
		"crawl.window",
		"crawl.timeout_seconds",
		"log.path",
		"log.verbose",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Hosting.Token == "" {
		cfg.Hosting.Token = os.Getenv(TokenFallbackEnv)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("hosting.api_url", defaults.Hosting.APIURL)
	v.SetDefault("hosting.raw_url", defaults.Hosting.RawURL)
	v.SetDefault("hosting.token", defaults.Hosting.Token)
	v.SetDefault("hosting.user_agent", defaults.Hosting.UserAgent)
	v.SetDefault("hosting.timeout_seconds", defaults.Hosting.TimeoutSeconds)
	v.SetDefault("hosting.cache_entries", defaults.Hosting.CacheEntries)

	v.SetDefault("retrieval.phase", defaults.Retrieval.Phase)
	v.SetDefault("retrieval.max_files", defaults.Retrieval.MaxFiles)
	v.SetDefault("retrieval.truncate_tokens", defaults.Retrieval.TruncateTokens)
	v.SetDefault("retrieval.truncate_chars", defaults.Retrieval.TruncateChars)
	v.SetDefault("retrieval.denylist", defaults.Retrieval.Denylist)

	v.SetDefault("crawl.enabled", defaults.Crawl.Enabled)
	v.SetDefault("crawl.max_pages", defaults.Crawl.MaxPages)
	v.SetDefault("crawl.window", defaults.Crawl.Window)
	v.SetDefault("crawl.timeout_seconds", defaults.Crawl.TimeoutSeconds)

	v.SetDefault("log.path", defaults.Log.Path)
	v.SetDefault("log.verbose", defaults.Log.Verbose)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
