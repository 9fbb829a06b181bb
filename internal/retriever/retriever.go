// Package retriever fetches API-relevant files from a hosted repository.
//
// A retrieval walks a static, ranked candidate table for the requested phase,
// then widens to documentation and type-definition directories, manifest
// entry points and monorepo packages while the file budget lasts. Requests
// are issued strictly one at a time, in table order.
package retriever

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/mvp-joe/project-atlas/internal/extractor"
	"github.com/mvp-joe/project-atlas/internal/hosting"
	"github.com/mvp-joe/project-atlas/internal/logsink"
)

var (
	ErrUnknownPhase   = errors.New("unknown retrieval phase")
	ErrInvalidBudget  = errors.New("maxFiles must be positive")
	ErrNothingFetched = errors.New("no candidate files could be fetched")
)

const (
	DefaultTruncateTokens = 50000
	DefaultTruncateChars  = 200000

	defaultBranch  = "main"
	fallbackBranch = "master"
	branchProbe    = "README.md"
)

// FetchedFile is one successfully retrieved file.
type FetchedFile struct {
	Path            string         `json:"path"`
	Content         string         `json:"content"`
	Kind            extractor.Kind `json:"kind"`
	EstimatedTokens int            `json:"estimated_tokens"`
	Truncated       bool           `json:"truncated"`
	OriginalSize    int            `json:"original_size,omitempty"`
}

// Result is the outcome of one phase.
type Result struct {
	Phase   Phase         `json:"phase"`
	Branch  string        `json:"branch"`
	Files   []FetchedFile `json:"files"`
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
}

// Options configures a Retriever. Zero values select defaults.
type Options struct {
	TruncateTokens int
	TruncateChars  int

	// Denylist adds filename fragments to the built-in denylist.
	Denylist []string

	// DocDirectories are ranked documentation directories listed ahead of
	// the built-in ones in the docs phase.
	DocDirectories []string

	Sink     logsink.Sink
	Progress ProgressReporter
}

// Retriever fetches candidate files through a hosting client.
type Retriever struct {
	client   hosting.Client
	limits   limits
	denylist []string
	docDirs  []string
	log      *logsink.Logger
	progress ProgressReporter
}

// New creates a Retriever.
func New(client hosting.Client, opts Options) *Retriever {
	l := limits{tokens: opts.TruncateTokens, chars: opts.TruncateChars}
	if l.tokens <= 0 {
		l.tokens = DefaultTruncateTokens
	}
	if l.chars <= 0 {
		l.chars = DefaultTruncateChars
	}

	progress := opts.Progress
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	return &Retriever{
		client:   client,
		limits:   l,
		denylist: append(append([]string(nil), defaultDenylist...), opts.Denylist...),
		docDirs:  rankedDirectories(opts.DocDirectories, docDirectories),
		log:      logsink.NewLogger(opts.Sink, "retriever"),
		progress: progress,
	}
}

// ResolveBranch checks the root readme on main, then master. The first
// branch that serves it wins; if neither does, main is assumed.
func (r *Retriever) ResolveBranch(ctx context.Context, repo hosting.RepoRef) string {
	for _, branch := range []string{defaultBranch, fallbackBranch} {
		if _, err := r.client.GetRawFile(ctx, repo, branch, branchProbe); err == nil {
			return branch
		} else if !hosting.IsNotFound(err) {
			r.log.Warn("branch check failed", "repo", repo.String(), "branch", branch, "error", err)
		}
	}
	return defaultBranch
}

// Retrieve runs one phase and returns at most maxFiles files.
func (r *Retriever) Retrieve(ctx context.Context, repo hosting.RepoRef, phase Phase, maxFiles int) *Result {
	result := &Result{Phase: phase, Files: []FetchedFile{}}
	if _, err := ParsePhase(string(phase)); err != nil {
		result.Error = fmt.Sprintf("%v: %q", err, phase)
		return result
	}
	if maxFiles <= 0 {
		result.Error = ErrInvalidBudget.Error()
		return result
	}

	branch := r.ResolveBranch(ctx, repo)
	result.Branch = branch
	r.log.Info("retrieval started", "repo", repo.String(), "phase", string(phase), "branch", branch, "max_files", maxFiles)
	r.progress.OnRetrievalStart(phase, maxFiles)

	w := &walk{
		Retriever: r,
		ctx:       ctx,
		repo:      repo,
		branch:    branch,
		maxFiles:  maxFiles,
		seen:      make(map[string]bool),
	}

	for _, candidate := range candidatesFor(phase, repo.Name) {
		if w.full() {
			break
		}
		w.fetch(candidate)
	}
	if phase.includes(PhaseDocs) {
		w.directoryMembers(r.docDirs, isDocMember)
	}
	if phase.includes(PhaseTypes) {
		w.directoryMembers(typeDirectories, isTypeMember)
	}
	if phase.includes(PhaseSource) {
		if manifest, ok := w.file("package.json"); ok && !manifest.Truncated {
			w.manifestEntries("", manifest.Content, phase)
		}
	}
	w.packages(phase)

	result.Files = w.files
	result.Success = len(w.files) > 0
	if !result.Success {
		result.Error = fmt.Sprintf("%s phase: %v", phase, ErrNothingFetched)
	}
	r.log.Info("retrieval finished", "repo", repo.String(), "phase", string(phase), "files", len(w.files))
	r.progress.OnRetrievalComplete(len(w.files))
	return result
}

// walk holds the locally scoped accumulators of a single retrieval.
type walk struct {
	*Retriever
	ctx      context.Context
	repo     hosting.RepoRef
	branch   string
	maxFiles int
	files    []FetchedFile
	seen     map[string]bool
}

func (w *walk) full() bool {
	return len(w.files) >= w.maxFiles
}

func (w *walk) file(p string) (FetchedFile, bool) {
	for _, f := range w.files {
		if f.Path == p {
			return f, true
		}
	}
	return FetchedFile{}, false
}

// fetch retrieves p unless it is denylisted, already attempted, or the
// budget is spent. Failures are logged and swallowed.
func (w *walk) fetch(p string) (FetchedFile, bool) {
	if p == "" || w.full() || w.seen[p] {
		return FetchedFile{}, false
	}
	w.seen[p] = true
	if denylisted(p, w.denylist) {
		w.log.Debug("skipping denylisted path", "path", p)
		return FetchedFile{}, false
	}

	raw, err := w.client.GetRawFile(w.ctx, w.repo, w.branch, p)
	if err != nil {
		if hosting.IsNotFound(err) {
			w.log.Debug("candidate not found", "path", p)
		} else {
			w.log.Warn("fetch failed", "path", p, "branch", w.branch, "error", err)
		}
		return FetchedFile{}, false
	}

	f := newFetchedFile(p, raw, w.limits)
	if f.Truncated {
		w.log.Info("truncated oversized file", "path", p, "original_size", f.OriginalSize, "kept", len(f.Content))
	}
	w.files = append(w.files, f)
	w.progress.OnFileFetched(p, f.Truncated)
	return f, true
}

// directoryMembers lists each directory and fetches members accepted by match.
func (w *walk) directoryMembers(dirs []string, match func(name string) bool) {
	for _, dir := range dirs {
		if w.full() {
			return
		}
		entries, err := w.client.ListDirectory(w.ctx, w.repo, w.branch, dir)
		if err != nil {
			if !hosting.IsNotFound(err) {
				w.log.Warn("list directory failed", "dir", dir, "error", err)
			}
			continue
		}
		for _, e := range entries {
			if w.full() {
				return
			}
			if e.IsDir() || !match(e.Name) {
				continue
			}
			w.fetch(path.Join(dir, e.Name))
		}
	}
}

// packageManifest is the subset of package.json used to locate entry points.
type packageManifest struct {
	Main    string          `json:"main"`
	Module  string          `json:"module"`
	Browser json.RawMessage `json:"browser"`
	Types   string          `json:"types"`
	Typings string          `json:"typings"`
}

// entries returns declared source and type entry paths, in that order.
func (m packageManifest) entries() (source, types []string) {
	var browser string
	// browser may also be an object map; only the string form names a file.
	_ = json.Unmarshal(m.Browser, &browser)
	for _, p := range []string{m.Main, m.Module, browser} {
		if p != "" {
			source = append(source, p)
		}
	}
	for _, p := range []string{m.Types, m.Typings} {
		if p != "" {
			types = append(types, p)
		}
	}
	return source, types
}

// manifestEntries fetches the paths a package.json declares. It reports
// whether the manifest parsed and declared anything for the phase.
func (w *walk) manifestEntries(base, content string, phase Phase) bool {
	var m packageManifest
	if err := json.Unmarshal([]byte(content), &m); err != nil {
		w.log.Warn("malformed manifest", "path", path.Join(base, "package.json"), "error", err)
		return false
	}

	source, types := m.entries()
	var declared []string
	if phase.includes(PhaseSource) {
		declared = append(declared, source...)
	}
	declared = append(declared, types...)

	for _, p := range declared {
		if w.full() {
			break
		}
		w.fetch(cleanEntry(base, p))
	}
	return len(declared) > 0
}

// packages walks immediate subdirectories of "packages" when present.
func (w *walk) packages(phase Phase) {
	if w.full() {
		return
	}
	entries, err := w.client.ListDirectory(w.ctx, w.repo, w.branch, "packages")
	if err != nil {
		if !hosting.IsNotFound(err) {
			w.log.Warn("list packages failed", "error", err)
		}
		return
	}

	for _, e := range entries {
		if w.full() {
			return
		}
		if !e.IsDir() {
			continue
		}
		dir := path.Join("packages", e.Name)

		if phase.includes(PhaseDocs) {
			w.fetch(path.Join(dir, "README.md"))
		}
		if !phase.includes(PhaseTypes) && !phase.includes(PhaseSource) {
			continue
		}

		manifest, ok := w.fetch(path.Join(dir, "package.json"))
		declared := ok && !manifest.Truncated && w.manifestEntries(dir, manifest.Content, phase)
		if declared {
			continue
		}
		if phase.includes(PhaseSource) {
			w.fetch(path.Join(dir, "src/index.ts"))
		}
		w.fetch(path.Join(dir, "index.d.ts"))
	}
}
