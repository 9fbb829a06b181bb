package resolver

import (
	"net/url"
	"regexp"
	"strings"
)

// SourceKind classifies a documentation source.
type SourceKind string

const (
	SourceWebsite   SourceKind = "website"
	SourceWiki      SourceKind = "wiki"
	SourceReadme    SourceKind = "readme"
	SourceSource    SourceKind = "source"
	SourceRegistry  SourceKind = "registry"
	SourceGenerated SourceKind = "generated"
)

// Priorities per kind. Lower is preferred.
var kindPriority = map[SourceKind]int{
	SourceWebsite:   1,
	SourceReadme:    2,
	SourceRegistry:  2,
	SourceGenerated: 3,
	SourceWiki:      3,
	SourceSource:    4,
}

// DocumentationSource is one ranked place to look for documentation.
type DocumentationSource struct {
	Kind     SourceKind `json:"kind"`
	Locator  string     `json:"locator"`
	Priority int        `json:"priority"`
}

var urlPattern = regexp.MustCompile("https?://[^\\s<>()\\[\\]\"'`]+")

// docSegments are path segments that mark a URL as documentation.
var docSegments = map[string]bool{
	"doc": true, "docs": true, "api": true, "reference": true, "documentation": true,
}

// languageDocHosts are host substrings that serve documentation for a language.
var languageDocHosts = map[string][]string{
	"Rust":       {"docs.rs"},
	"Python":     {"readthedocs.io", "readthedocs.org", "docs.python.org"},
	"Go":         {"pkg.go.dev", "godoc.org"},
	"JavaScript": {"github.io", "netlify.app", "vercel.app", "gitbook.io"},
	"TypeScript": {"github.io", "netlify.app", "vercel.app", "gitbook.io"},
	"Ruby":       {"rubydoc.info"},
	"Java":       {"javadoc.io"},
	"Kotlin":     {"javadoc.io"},
	"Elixir":     {"hexdocs.pm"},
	"Dart":       {"pub.dev/documentation"},
	"PHP":        {"readthedocs.io"},
}

// badgeHosts only serve images and status badges.
var badgeHosts = []string{"shields.io", "badge", "travis-ci", "circleci", "codecov", "coveralls"}

// scanReadme returns documentation URLs referenced by readme, in first-seen
// order: generically doc-shaped URLs and known documentation hosts for the
// primary language.
func scanReadme(readme, primaryLanguage string) []string {
	hosts := languageDocHosts[primaryLanguage]

	var out []string
	seen := make(map[string]bool)
	for _, raw := range urlPattern.FindAllString(readme, -1) {
		candidate := strings.TrimRight(raw, ".,;:!?*_")
		u, err := url.Parse(candidate)
		if err != nil || u.Host == "" || isBadge(u.Host) {
			continue
		}
		if !isDocShaped(u) && !matchesHost(candidate, hosts) {
			continue
		}
		key := normalizeLocator(candidate)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, candidate)
	}
	return out
}

func isDocShaped(u *url.URL) bool {
	if strings.HasPrefix(strings.ToLower(u.Host), "docs.") {
		return true
	}
	if strings.EqualFold(u.Host, "github.com") {
		return false
	}
	for _, segment := range strings.Split(strings.ToLower(u.Path), "/") {
		if docSegments[segment] {
			return true
		}
	}
	return false
}

func matchesHost(raw string, hosts []string) bool {
	lower := strings.ToLower(raw)
	for _, h := range hosts {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func isBadge(host string) bool {
	return matchesHost(host, badgeHosts)
}

// normalizeLocator is the dedup key for website locators.
func normalizeLocator(raw string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(raw)), "/")
}

// Root directory names that indicate documentation.
var (
	docDirs       = []string{"docs", "doc", "documentation", "guide", "guides", "website", "book"}
	generatedDirs = []string{"api-docs", "apidocs", "javadoc", "typedoc", "jsdoc", "rustdoc", "doxygen", "site"}
)
