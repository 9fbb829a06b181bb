package resolver

import (
	"context"
	"sort"

	"github.com/mvp-joe/project-atlas/internal/hosting"
)

// StructureKind is the repository's overall layout.
type StructureKind string

const (
	StructureMonorepo     StructureKind = "monorepo"
	StructureStandard     StructureKind = "standard"
	StructureMultiPackage StructureKind = "multi-package"
)

// ProjectStructure summarizes the repository layout.
type ProjectStructure struct {
	Kind        StructureKind `json:"kind"`
	MainPath    string        `json:"main_path,omitempty"`
	Packages    []string      `json:"packages"`
	HasDocs     bool          `json:"has_docs"`
	HasTests    bool          `json:"has_tests"`
	HasExamples bool          `json:"has_examples"`
}

var (
	workspaceManifests = []string{"pnpm-workspace.yaml", "lerna.json", "nx.json", "turbo.json", "rush.json", "go.work"}
	pluralDirs         = []string{"packages", "modules", "apps", "libs", "crates", "plugins", "services"}
	mainPaths          = []string{"src", "lib", "app"}
	testDirs           = []string{"test", "tests", "__tests__", "spec", "testing"}
	exampleDirs        = []string{"examples", "example", "samples", "demo", "demos"}
)

// classify derives the project structure from the root listing.
func (r *Resolver) classify(ctx context.Context, repo hosting.RepoRef, branch string, entries []hosting.DirEntry) ProjectStructure {
	dirs := make(map[string]bool)
	files := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			dirs[e.Name] = true
		} else {
			files[e.Name] = true
		}
	}

	s := ProjectStructure{
		Kind:        StructureStandard,
		Packages:    []string{},
		HasDocs:     anyOf(dirs, docDirs),
		HasTests:    anyOf(dirs, testDirs),
		HasExamples: anyOf(dirs, exampleDirs),
	}
	for _, p := range mainPaths {
		if dirs[p] {
			s.MainPath = p
			break
		}
	}

	switch {
	case anyOf(files, workspaceManifests) || dirs["packages"] || r.npmWorkspaces(ctx, repo, branch, files):
		s.Kind = StructureMonorepo
	case anyOf(dirs, pluralDirs):
		s.Kind = StructureMultiPackage
	}

	if s.Kind == StructureMonorepo && dirs["packages"] {
		s.Packages = r.packageNames(ctx, repo, branch)
	}
	return s
}

func (r *Resolver) npmWorkspaces(ctx context.Context, repo hosting.RepoRef, branch string, files map[string]bool) bool {
	if !files["package.json"] {
		return false
	}
	content, err := r.client.GetRawFile(ctx, repo, branch, "package.json")
	if err != nil {
		if !hosting.IsNotFound(err) {
			r.log.Warn("package.json fetch failed", "error", err)
		}
		return false
	}
	return hasWorkspaces(content)
}

func (r *Resolver) packageNames(ctx context.Context, repo hosting.RepoRef, branch string) []string {
	entries, err := r.client.ListDirectory(ctx, repo, branch, "packages")
	if err != nil {
		if !hosting.IsNotFound(err) {
			r.log.Warn("packages listing failed", "error", err)
		}
		return []string{}
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names
}

func anyOf(set map[string]bool, names []string) bool {
	for _, n := range names {
		if set[n] {
			return true
		}
	}
	return false
}
