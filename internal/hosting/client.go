// Package hosting talks to the remote repository host: repository metadata,
// language histograms, directory listings and raw file content by branch.
package hosting

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotFound reports an expected absence (HTTP 404). Callers skip it silently.
var ErrNotFound = errors.New("not found")

// ErrInvalidRepoRef indicates a repository identifier that could not be parsed.
var ErrInvalidRepoRef = errors.New("invalid repository identifier")

// StatusError is a non-2xx, non-404 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// IsNotFound reports whether err is an expected 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Client defines the remote hosting operations used by the pipeline.
// This allows mocking the host in tests.
type Client interface {
	// GetRepository returns repository metadata.
	GetRepository(ctx context.Context, repo RepoRef) (*Repository, error)

	// GetLanguages returns the byte-weighted language histogram.
	GetLanguages(ctx context.Context, repo RepoRef) (map[string]int64, error)

	// ListDirectory lists the immediate entries of dir ("" for the root).
	// An empty ref means the repository's default branch.
	ListDirectory(ctx context.Context, repo RepoRef, ref, dir string) ([]DirEntry, error)

	// GetRawFile returns the raw content of path on branch.
	GetRawFile(ctx context.Context, repo RepoRef, branch, path string) ([]byte, error)
}

// Repository is the subset of repository metadata the pipeline consumes.
type Repository struct {
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	Homepage      string `json:"homepage"`
	HTMLURL       string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`
	Language      string `json:"language"`
	HasWiki       bool   `json:"has_wiki"`
}

// DirEntry is one item of a directory listing.
type DirEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
	Size int64  `json:"size"`
}

// IsDir reports whether the entry is a directory.
func (e DirEntry) IsDir() bool {
	return e.Type == "dir"
}

// RepoRef identifies a repository on the host.
type RepoRef struct {
	Owner string
	Name  string
}

// String returns "owner/name".
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// URL returns the browsable repository URL.
func (r RepoRef) URL() string {
	return "https://github.com/" + r.String()
}

// ParseRepoRef accepts "owner/name", https URLs (with or without .git or a
// trailing path) and scp-style "git@github.com:owner/name.git" remotes.
func ParseRepoRef(s string) (RepoRef, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return RepoRef{}, fmt.Errorf("%w: empty", ErrInvalidRepoRef)
	}

	path := raw
	switch {
	case strings.HasPrefix(raw, "git@"):
		idx := strings.Index(raw, ":")
		if idx < 0 {
			return RepoRef{}, fmt.Errorf("%w: %s", ErrInvalidRepoRef, s)
		}
		path = raw[idx+1:]
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return RepoRef{}, fmt.Errorf("%w: %v", ErrInvalidRepoRef, err)
		}
		path = u.Path
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, fmt.Errorf("%w: %s", ErrInvalidRepoRef, s)
	}
	return RepoRef{
		Owner: parts[0],
		Name:  strings.TrimSuffix(parts[1], ".git"),
	}, nil
}
