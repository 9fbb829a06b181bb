package hosting

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
)

// MockClient is an in-memory Client for testing.
//
// Files are keyed by "branch/path". Directory listings are derived from the
// files on DefaultBranch unless Dirs provides an explicit listing.
type MockClient struct {
	Repo          *Repository
	RepoErr       error
	Languages     map[string]int64
	LanguagesErr  error
	DefaultBranch string
	Files         map[string]string
	Dirs          map[string][]DirEntry
	Errors        map[string]error // keyed like Files (or "dir:<path>" for listings)

	// Requests records every call in order, e.g. "raw:main/README.md".
	Requests []string
}

// NewMockClient creates a mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Repo: &Repository{
			FullName:      "user/repo",
			HTMLURL:       "https://github.com/user/repo",
			DefaultBranch: "main",
		},
		Languages:     map[string]int64{},
		DefaultBranch: "main",
		Files:         map[string]string{},
		Dirs:          map[string][]DirEntry{},
		Errors:        map[string]error{},
	}
}

// AddFile registers content at path on branch.
func (m *MockClient) AddFile(branch, p, content string) *MockClient {
	m.Files[branch+"/"+strings.TrimPrefix(p, "/")] = content
	return m
}

func (m *MockClient) GetRepository(ctx context.Context, repo RepoRef) (*Repository, error) {
	m.Requests = append(m.Requests, "repo:"+repo.String())
	if m.RepoErr != nil {
		return nil, m.RepoErr
	}
	return m.Repo, nil
}

func (m *MockClient) GetLanguages(ctx context.Context, repo RepoRef) (map[string]int64, error) {
	m.Requests = append(m.Requests, "languages:"+repo.String())
	if m.LanguagesErr != nil {
		return nil, m.LanguagesErr
	}
	return m.Languages, nil
}

func (m *MockClient) ListDirectory(ctx context.Context, repo RepoRef, ref, dir string) ([]DirEntry, error) {
	dir = strings.Trim(dir, "/")
	m.Requests = append(m.Requests, "dir:"+dir)
	if err, ok := m.Errors["dir:"+dir]; ok {
		return nil, err
	}
	if entries, ok := m.Dirs[dir]; ok {
		return entries, nil
	}

	branch := ref
	if branch == "" {
		branch = m.DefaultBranch
	}
	prefix := branch + "/"
	if dir != "" {
		prefix += dir + "/"
	}

	seen := map[string]DirEntry{}
	for key := range m.Files {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		name, _, nested := strings.Cut(rest, "/")
		entryPath := path.Join(dir, name)
		if nested {
			seen[name] = DirEntry{Name: name, Path: entryPath, Type: "dir"}
		} else if _, exists := seen[name]; !exists {
			seen[name] = DirEntry{Name: name, Path: entryPath, Type: "file"}
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("dir %s: %w", dir, ErrNotFound)
	}

	entries := make([]DirEntry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *MockClient) GetRawFile(ctx context.Context, repo RepoRef, branch, p string) ([]byte, error) {
	key := branch + "/" + strings.TrimPrefix(p, "/")
	m.Requests = append(m.Requests, "raw:"+key)
	if err, ok := m.Errors[key]; ok {
		return nil, err
	}
	content, ok := m.Files[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return []byte(content), nil
}

// RawRequests returns only the raw file requests, in order, without the prefix.
func (m *MockClient) RawRequests() []string {
	var out []string
	for _, r := range m.Requests {
		if rest, ok := strings.CutPrefix(r, "raw:"); ok {
			out = append(out, rest)
		}
	}
	return out
}
