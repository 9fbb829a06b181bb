package hosting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maypok86/otter"
)

const (
	// DefaultAPIBaseURL is the GitHub REST endpoint.
	DefaultAPIBaseURL = "https://api.github.com"

	// DefaultRawBaseURL serves raw file content by branch and path.
	DefaultRawBaseURL = "https://raw.githubusercontent.com"

	// maxBodyBytes bounds a single response body.
	maxBodyBytes = 32 << 20
)

// Options configures the HTTP client.
type Options struct {
	APIBaseURL   string
	RawBaseURL   string
	Token        string
	UserAgent    string
	Timeout      time.Duration
	CacheEntries int          // 0 disables the response cache
	HTTPClient   *http.Client // optional, overrides Timeout
}

// cachedResponse stores either a body (200) or a negative 404 entry.
type cachedResponse struct {
	body     []byte
	notFound bool
}

// githubClient is the real implementation over HTTP.
type githubClient struct {
	opts   Options
	http   *http.Client
	cache  otter.Cache[string, cachedResponse]
	cached bool
}

// NewGitHubClient creates a Client for the GitHub REST API and raw content host.
func NewGitHubClient(opts Options) (Client, error) {
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = DefaultAPIBaseURL
	}
	if opts.RawBaseURL == "" {
		opts.RawBaseURL = DefaultRawBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "project-atlas"
	}
	opts.APIBaseURL = strings.TrimRight(opts.APIBaseURL, "/")
	opts.RawBaseURL = strings.TrimRight(opts.RawBaseURL, "/")

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &githubClient{opts: opts, http: httpClient}
	if opts.CacheEntries > 0 {
		cache, err := otter.MustBuilder[string, cachedResponse](opts.CacheEntries).
			Cost(func(key string, value cachedResponse) uint32 {
				return 1
			}).
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build response cache: %w", err)
		}
		c.cache = cache
		c.cached = true
	}
	return c, nil
}

func (c *githubClient) GetRepository(ctx context.Context, repo RepoRef) (*Repository, error) {
	var out Repository
	if err := c.getJSON(ctx, c.apiURL("repos", repo.Owner, repo.Name), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *githubClient) GetLanguages(ctx context.Context, repo RepoRef) (map[string]int64, error) {
	out := map[string]int64{}
	if err := c.getJSON(ctx, c.apiURL("repos", repo.Owner, repo.Name, "languages"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *githubClient) ListDirectory(ctx context.Context, repo RepoRef, ref, dir string) ([]DirEntry, error) {
	u := c.apiURL("repos", repo.Owner, repo.Name, "contents") + escapePath(dir)
	if ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}

	body, err := c.get(ctx, u, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	var entries []DirEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		// The contents API returns an object, not an array, for a file path.
		return nil, fmt.Errorf("%s is not a directory: %w", dir, err)
	}
	return entries, nil
}

func (c *githubClient) GetRawFile(ctx context.Context, repo RepoRef, branch, path string) ([]byte, error) {
	u := c.opts.RawBaseURL + "/" + url.PathEscape(repo.Owner) + "/" + url.PathEscape(repo.Name) +
		"/" + url.PathEscape(branch) + escapePath(path)
	return c.get(ctx, u, "")
}

func (c *githubClient) apiURL(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.opts.APIBaseURL + "/" + strings.Join(escaped, "/")
}

func (c *githubClient) getJSON(ctx context.Context, u string, out any) error {
	body, err := c.get(ctx, u, "application/vnd.github+json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", u, err)
	}
	return nil
}

// get performs a GET, consulting the in-run cache first. Only 200 and 404
// outcomes are cached.
func (c *githubClient) get(ctx context.Context, u, accept string) ([]byte, error) {
	if c.cached {
		if hit, ok := c.cache.Get(u); ok {
			if hit.notFound {
				return nil, fmt.Errorf("%s: %w", u, ErrNotFound)
			}
			return hit.body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		if c.cached {
			c.cache.Set(u, cachedResponse{notFound: true})
		}
		return nil, fmt.Errorf("%s: %w", u, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u, err)
	}
	if c.cached {
		c.cache.Set(u, cachedResponse{body: body})
	}
	return body, nil
}

// escapePath escapes each segment of a slash-separated path and returns it
// with a leading slash, or "" for an empty path.
func escapePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(parts, "/")
}
