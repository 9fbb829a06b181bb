// Package resolver determines what a repository is and where its
// documentation lives: primary language, ranked documentation sources,
// package-manager binding and project structure.
//
// Every remote call degrades independently. Only a failure to read the
// repository metadata fails a resolution as a whole.
package resolver

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/mvp-joe/project-atlas/internal/hosting"
	"github.com/mvp-joe/project-atlas/internal/logsink"
)

// LanguageShare is one entry of the language breakdown.
type LanguageShare struct {
	Name    string `json:"name"`
	Bytes   int64  `json:"bytes"`
	Percent int    `json:"percent"`
}

// Resolution is the outcome of resolving one repository.
type Resolution struct {
	Repo            string                `json:"repo"`
	Description     string                `json:"description,omitempty"`
	DefaultBranch   string                `json:"default_branch,omitempty"`
	Success         bool                  `json:"success"`
	Error           string                `json:"error,omitempty"`
	PrimaryLanguage string                `json:"primary_language"`
	Languages       []LanguageShare       `json:"languages"`
	Sources         []DocumentationSource `json:"sources"`
	PackageManager  *PackageBinding       `json:"package_manager,omitempty"`
	Structure       ProjectStructure      `json:"structure"`
}

// Website returns the best-ranked website source, if any.
func (r *Resolution) Website() (DocumentationSource, bool) {
	for _, s := range r.Sources {
		if s.Kind == SourceWebsite {
			return s, true
		}
	}
	return DocumentationSource{}, false
}

// DocDirectories returns the repository directories of the generated and
// source entries, in ranked order.
func (r *Resolution) DocDirectories() []string {
	marker := "/tree/" + r.DefaultBranch + "/"
	var dirs []string
	for _, s := range r.Sources {
		if s.Kind != SourceGenerated && s.Kind != SourceSource {
			continue
		}
		if i := strings.Index(s.Locator, marker); i >= 0 {
			dirs = append(dirs, s.Locator[i+len(marker):])
		}
	}
	return dirs
}

// Options configures a Resolver.
type Options struct {
	Sink logsink.Sink
}

// Resolver resolves repositories through a hosting client.
type Resolver struct {
	client hosting.Client
	log    *logsink.Logger
}

// New creates a Resolver.
func New(client hosting.Client, opts Options) *Resolver {
	return &Resolver{
		client: client,
		log:    logsink.NewLogger(opts.Sink, "resolver"),
	}
}

var readmeNames = []string{"README.md", "readme.md", "README.rst", "README.markdown", "README"}

// Resolve inspects repo. It never returns nil.
func (r *Resolver) Resolve(ctx context.Context, repo hosting.RepoRef) *Resolution {
	res := &Resolution{
		Repo:      repo.String(),
		Languages: []LanguageShare{},
		Sources:   []DocumentationSource{},
		Structure: ProjectStructure{Kind: StructureStandard, Packages: []string{}},
	}

	meta, err := r.client.GetRepository(ctx, repo)
	if err != nil {
		r.log.Error("repository metadata unavailable", "repo", repo.String(), "error", err)
		res.Error = "fetch repository metadata: " + err.Error()
		return res
	}
	res.Success = true
	res.Description = meta.Description
	res.DefaultBranch = meta.DefaultBranch
	if res.DefaultBranch == "" {
		res.DefaultBranch = "main"
	}

	res.Languages = r.languages(ctx, repo)
	if len(res.Languages) > 0 {
		res.PrimaryLanguage = res.Languages[0].Name
	} else {
		res.PrimaryLanguage = meta.Language
	}

	b := &sourceList{seen: make(map[string]bool)}
	if meta.Homepage != "" {
		b.add(SourceWebsite, meta.Homepage)
	}
	if meta.HasWiki {
		b.add(SourceWiki, repo.URL()+"/wiki")
	}
	r.scanReadmeSources(ctx, repo, res, b)

	entries, err := r.client.ListDirectory(ctx, repo, "", "")
	if err != nil {
		if !hosting.IsNotFound(err) {
			r.log.Warn("root listing failed", "repo", repo.String(), "error", err)
		}
	} else {
		names := entryNames(entries)
		res.PackageManager = r.bindPackageManager(ctx, repo, res, names, b)
		r.directorySources(ctx, repo, res, entries, b)
		res.Structure = r.classify(ctx, repo, res.DefaultBranch, entries)
	}

	sort.SliceStable(b.sources, func(i, j int) bool {
		return b.sources[i].Priority < b.sources[j].Priority
	})
	res.Sources = b.sources
	r.log.Info("resolved repository", "repo", repo.String(), "primary_language", res.PrimaryLanguage,
		"sources", len(res.Sources), "structure", string(res.Structure.Kind))
	return res
}

// languages converts the byte histogram into shares, largest first.
func (r *Resolver) languages(ctx context.Context, repo hosting.RepoRef) []LanguageShare {
	hist, err := r.client.GetLanguages(ctx, repo)
	if err != nil {
		r.log.Warn("language histogram unavailable", "repo", repo.String(), "error", err)
		return []LanguageShare{}
	}
	return Breakdown(hist)
}

// Breakdown ranks a byte-weighted histogram. Percentages are rounded to the
// nearest integer; equal byte counts are ordered by name.
func Breakdown(hist map[string]int64) []LanguageShare {
	var total int64
	shares := make([]LanguageShare, 0, len(hist))
	for name, bytes := range hist {
		total += bytes
		shares = append(shares, LanguageShare{Name: name, Bytes: bytes})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Bytes != shares[j].Bytes {
			return shares[i].Bytes > shares[j].Bytes
		}
		return shares[i].Name < shares[j].Name
	})
	if total > 0 {
		for i := range shares {
			shares[i].Percent = int(math.Round(float64(shares[i].Bytes) * 100 / float64(total)))
		}
	}
	return shares
}

func (r *Resolver) scanReadmeSources(ctx context.Context, repo hosting.RepoRef, res *Resolution, b *sourceList) {
	for _, name := range readmeNames {
		content, err := r.client.GetRawFile(ctx, repo, res.DefaultBranch, name)
		if err != nil {
			if !hosting.IsNotFound(err) {
				r.log.Warn("readme fetch failed", "path", name, "error", err)
			}
			continue
		}
		for _, u := range scanReadme(string(content), res.PrimaryLanguage) {
			b.add(SourceWebsite, u)
		}
		b.add(SourceReadme, repo.URL()+"/blob/"+res.DefaultBranch+"/"+name)
		return
	}
}

func (r *Resolver) bindPackageManager(ctx context.Context, repo hosting.RepoRef, res *Resolution, names []string, b *sourceList) *PackageBinding {
	spec, file, ok := matchManifest(names, res.PrimaryLanguage)
	if !ok {
		return nil
	}

	binding := &PackageBinding{
		Manager:  spec.manager,
		Manifest: file,
		Registry: spec.registry,
		Locator:  spec.registry,
	}
	if spec.name != nil {
		content, err := r.client.GetRawFile(ctx, repo, res.DefaultBranch, file)
		switch {
		case err != nil:
			if !hosting.IsNotFound(err) {
				r.log.Warn("manifest fetch failed", "path", file, "error", err)
			}
		default:
			name, err := spec.name(content)
			if err != nil {
				r.log.Warn("manifest name unavailable", "path", file, "error", err)
				break
			}
			binding.PackageName = name
			binding.Locator = spec.locatorFor(name)
		}
	}
	b.add(SourceRegistry, binding.Locator)
	return binding
}

// directorySources adds docs-like, generated-doc and mkdocs sources.
func (r *Resolver) directorySources(ctx context.Context, repo hosting.RepoRef, res *Resolution, entries []hosting.DirEntry, b *sourceList) {
	dirs := make(map[string]bool)
	files := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			dirs[e.Name] = true
		} else {
			files[e.Name] = true
		}
	}

	if files["mkdocs.yml"] {
		content, err := r.client.GetRawFile(ctx, repo, res.DefaultBranch, "mkdocs.yml")
		if err == nil {
			siteURL, err := mkdocsSiteURL(content)
			if err != nil {
				r.log.Warn("malformed mkdocs.yml", "error", err)
			} else if siteURL != "" {
				b.add(SourceWebsite, siteURL)
			}
		} else if !hosting.IsNotFound(err) {
			r.log.Warn("mkdocs.yml fetch failed", "error", err)
		}
	}

	tree := repo.URL() + "/tree/" + res.DefaultBranch + "/"
	for _, d := range generatedDirs {
		if dirs[d] {
			b.add(SourceGenerated, tree+d)
		}
	}
	for _, d := range docDirs {
		if dirs[d] {
			b.add(SourceSource, tree+d)
		}
	}
}

// sourceList accumulates sources in discovery order, dropping repeated locators.
type sourceList struct {
	sources []DocumentationSource
	seen    map[string]bool
}

func (b *sourceList) add(kind SourceKind, locator string) {
	key := normalizeLocator(locator)
	if key == "" || b.seen[key] {
		return
	}
	b.seen[key] = true
	b.sources = append(b.sources, DocumentationSource{
		Kind:     kind,
		Locator:  locator,
		Priority: kindPriority[kind],
	})
}

func entryNames(entries []hosting.DirEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name)
		}
	}
	return names
}
