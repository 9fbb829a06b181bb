package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mvp-joe/project-atlas/internal/retriever"
)

var (
	// ErrInvalidURL indicates a host URL that is not absolute http(s)
	ErrInvalidURL = errors.New("invalid URL")

	// ErrInvalidTimeout indicates a non-positive timeout
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")

	// ErrInvalidPhase indicates an unknown retrieval phase
	ErrInvalidPhase = errors.New("invalid retrieval phase")

	// ErrInvalidBudget indicates a non-positive file or page budget
	ErrInvalidBudget = errors.New("invalid budget")

	// ErrInvalidLimit indicates a non-positive truncation limit or window
	ErrInvalidLimit = errors.New("invalid limit")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateHosting(&cfg.Hosting); err != nil {
		errs = append(errs, err)
	}
	if err := validateRetrieval(&cfg.Retrieval); err != nil {
		errs = append(errs, err)
	}
	if err := validateCrawl(&cfg.Crawl); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateHosting(cfg *HostingConfig) error {
	var errs []error

	if !absoluteHTTP(cfg.APIURL) {
		errs = append(errs, fmt.Errorf("%w: api_url must be an absolute http(s) URL, got '%s'", ErrInvalidURL, cfg.APIURL))
	}
	if !absoluteHTTP(cfg.RawURL) {
		errs = append(errs, fmt.Errorf("%w: raw_url must be an absolute http(s) URL, got '%s'", ErrInvalidURL, cfg.RawURL))
	}

	if cfg.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("%w: hosting timeout_seconds must be positive, got %d", ErrInvalidTimeout, cfg.TimeoutSeconds))
	}

	// Zero disables the cache
	if cfg.CacheEntries < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_entries cannot be negative, got %d", ErrInvalidCacheSettings, cfg.CacheEntries))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateRetrieval(cfg *RetrievalConfig) error {
	var errs []error

	if _, err := retriever.ParsePhase(cfg.Phase); err != nil {
		errs = append(errs, fmt.Errorf("%w: must be docs, types, source or all, got '%s'", ErrInvalidPhase, cfg.Phase))
	}

	if cfg.MaxFiles <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_files must be positive, got %d", ErrInvalidBudget, cfg.MaxFiles))
	}

	if cfg.TruncateTokens <= 0 {
		errs = append(errs, fmt.Errorf("%w: truncate_tokens must be positive, got %d", ErrInvalidLimit, cfg.TruncateTokens))
	}

	if cfg.TruncateChars <= 0 {
		errs = append(errs, fmt.Errorf("%w: truncate_chars must be positive, got %d", ErrInvalidLimit, cfg.TruncateChars))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateCrawl(cfg *CrawlConfig) error {
	var errs []error

	if cfg.MaxPages <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_pages must be positive, got %d", ErrInvalidBudget, cfg.MaxPages))
	}

	if cfg.Window <= 0 {
		errs = append(errs, fmt.Errorf("%w: window must be positive, got %d", ErrInvalidLimit, cfg.Window))
	}

	if cfg.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("%w: crawl timeout_seconds must be positive, got %d", ErrInvalidTimeout, cfg.TimeoutSeconds))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func absoluteHTTP(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Sentinels stay reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return &validationError{msg: "validation failed:\n  - " + strings.Join(msgs, "\n  - "), errs: errs}
}

type validationError struct {
	msg  string
	errs []error
}

func (e *validationError) Error() string   { return e.msg }
func (e *validationError) Unwrap() []error { return e.errs }
