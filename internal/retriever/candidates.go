package retriever

import (
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Phase selects which candidate table a retrieval walks.
type Phase string

const (
	PhaseDocs   Phase = "docs"
	PhaseTypes  Phase = "types"
	PhaseSource Phase = "source"
	PhaseAll    Phase = "all"
)

// ParsePhase validates a phase name.
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(strings.ToLower(strings.TrimSpace(s))); p {
	case PhaseDocs, PhaseTypes, PhaseSource, PhaseAll:
		return p, nil
	}
	return "", ErrUnknownPhase
}

func (p Phase) includes(sub Phase) bool {
	return p == PhaseAll || p == sub
}

// Canonical documentation files, most useful first.
var docCandidates = []string{
	"README.md",
	"readme.md",
	"README.rst",
	"README.markdown",
	"README",
	"docs/README.md",
	"docs/index.md",
	"docs/api.md",
	"docs/API.md",
	"API.md",
	"docs/reference.md",
	"docs/usage.md",
	"docs/getting-started.md",
	"docs/guide.md",
	"USAGE.md",
	"GUIDE.md",
	"doc/README.md",
	"documentation/README.md",
	"docs/index.rst",
	"docs/api.rst",
}

// Canonical type-definition files.
var typeCandidates = []string{
	"index.d.ts",
	"types/index.d.ts",
	"dist/index.d.ts",
	"lib/index.d.ts",
	"typings/index.d.ts",
	"src/index.d.ts",
	"types.d.ts",
	"src/types.ts",
	"src/types/index.ts",
	"lib/types.d.ts",
}

// Canonical entry points. package.json comes first so its declared entries
// can be followed once the table is exhausted.
var sourceCandidates = []string{
	"package.json",
	"src/index.ts",
	"src/index.js",
	"index.ts",
	"index.js",
	"lib/index.js",
	"src/main.ts",
	"mod.ts",
	"main.js",
	"src/lib.rs",
	"lib.rs",
	"main.go",
	"__init__.py",
	"src/__init__.py",
}

// Directories whose markdown/rst members are fetched in the docs phase.
var docDirectories = []string{"docs", "doc", "documentation", "api", "guide", "guides", "website/docs"}

// Directories searched for type definitions in the types phase.
var typeDirectories = []string{"types", "typings", "@types", "dist/types", "lib/types"}

// defaultDenylist holds filename fragments that never carry API surface.
var defaultDenylist = []string{
	"changelog",
	"changes.md",
	"history",
	"license",
	"licence",
	"contributing",
	"contributors",
	"code_of_conduct",
	"code-of-conduct",
	"security",
	"authors",
	"funding",
	"codeowners",
	"release-notes",
	"releases.md",
}

var (
	docMemberGlob  = glob.MustCompile("*.{md,mdx,markdown,rst}", '/')
	typeMemberGlob = glob.MustCompile("*.{d.ts,d.mts,d.cts,pyi}", '/')
)

// rankedDirectories puts ranked ahead of defaults, cleaned and without repeats.
func rankedDirectories(ranked, defaults []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range append(append([]string(nil), ranked...), defaults...) {
		d = strings.Trim(path.Clean("/"+d), "/")
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// candidatesFor returns the ordered static candidates for phase, with
// name-derived entry points appended for the source phase.
func candidatesFor(phase Phase, repoName string) []string {
	var out []string
	if phase.includes(PhaseDocs) {
		out = append(out, docCandidates...)
	}
	if phase.includes(PhaseTypes) {
		out = append(out, typeCandidates...)
	}
	if phase.includes(PhaseSource) {
		out = append(out, sourceCandidates...)
		out = append(out, nameCandidates(repoName)...)
	}
	return out
}

// nameCandidates derives package-named entry points such as
// "src/<name>/__init__.py" or "lib/<name>.rb".
func nameCandidates(repoName string) []string {
	name := strings.ToLower(strings.TrimSpace(repoName))
	if name == "" {
		return nil
	}
	py := strings.ReplaceAll(name, "-", "_")
	return []string{
		py + "/__init__.py",
		"src/" + py + "/__init__.py",
		"lib/" + name + ".rb",
		"src/" + name + ".ts",
	}
}

// denylisted reports whether any segment of p contains a denylisted fragment.
func denylisted(p string, denylist []string) bool {
	for _, segment := range strings.Split(strings.ToLower(p), "/") {
		for _, term := range denylist {
			if term != "" && strings.Contains(segment, term) {
				return true
			}
		}
	}
	return false
}

func isDocMember(name string) bool {
	return docMemberGlob.Match(strings.ToLower(name))
}

func isTypeMember(name string) bool {
	return typeMemberGlob.Match(strings.ToLower(name))
}

// cleanEntry normalizes a manifest-declared path ("./lib/index.js") to a
// repository path relative to base.
func cleanEntry(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || strings.Contains(p, "://") {
		return ""
	}
	joined := path.Clean(path.Join(base, strings.TrimPrefix(p, "./")))
	if joined == "." || strings.HasPrefix(joined, "..") {
		return ""
	}
	return strings.TrimPrefix(joined, "/")
}
