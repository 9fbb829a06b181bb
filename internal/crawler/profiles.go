package crawler

import "strings"

// Profile is the pattern table used to read one documentation site.
// Selectors are CSS selectors evaluated with goquery.
type Profile struct {
	Name string

	// Hosts are matched against the page host: an entry starting with "."
	// is a suffix, anything else must match exactly.
	Hosts []string

	// Headings selects the elements that mark a documented entity.
	Headings string

	// Signature selects a signature block near a heading. Ignored when
	// SignatureInHeading is set.
	Signature string

	// SignatureInHeading means the heading text is itself the signature.
	SignatureInHeading bool

	// Description selects the descriptive paragraph near a heading.
	Description string

	// LinkPatterns are path substrings marking API-ish links. Empty means
	// the generic keyword list.
	LinkPatterns []string
}

var sphinxProfile = Profile{
	Name:               "sphinx",
	Headings:           "dl.py > dt, dl.function > dt, dl.method > dt, dl.class > dt, dl.attribute > dt, dl.exception > dt",
	SignatureInHeading: true,
	Description:        "p",
	LinkPatterns:       []string{"api", "reference", "library", "modules", "generated"},
}

// profiles are checked in order; the first host match wins.
var profiles = []Profile{
	{
		Name:               "docs.rs",
		Hosts:              []string{"docs.rs"},
		Headings:           "h3.code-header, h4.code-header",
		SignatureInHeading: true,
		Description:        ".docblock p",
		LinkPatterns:       []string{"/struct.", "/trait.", "/fn.", "/enum.", "/macro.", "/type.", "/index.html"},
	},
	{
		Name:        "pkg.go.dev",
		Hosts:       []string{"pkg.go.dev"},
		Headings:    "h4.Documentation-functionHeader, h4.Documentation-typeHeader, h4.Documentation-typeFuncHeader, h4.Documentation-typeMethodHeader",
		Signature:   "pre",
		Description: "p",
	},
	withHosts(sphinxProfile, ".readthedocs.io", ".readthedocs.org", "docs.python.org"),
	{
		Name:         "mdn",
		Hosts:        []string{"developer.mozilla.org"},
		Headings:     "h1",
		Signature:    "pre",
		Description:  "p",
		LinkPatterns: []string{"/docs/web/api/", "/reference/global_objects/"},
	},
}

var genericProfile = Profile{
	Name:        "generic",
	Headings:    "h2, h3, h4, dt",
	Signature:   "pre, code",
	Description: "p, dd",
}

var genericLinkKeywords = []string{"api", "reference", "docs", "doc", "guide", "class", "function", "method", "module", "package"}

// ProfileFor returns the site profile for host, or the generic profile.
func ProfileFor(host string) Profile {
	host = strings.ToLower(host)
	for _, p := range profiles {
		for _, h := range p.Hosts {
			if host == strings.TrimPrefix(h, ".") || (strings.HasPrefix(h, ".") && strings.HasSuffix(host, h)) {
				return p
			}
		}
	}
	return genericProfile
}

func withHosts(p Profile, hosts ...string) Profile {
	p.Hosts = hosts
	return p
}

// apiLink reports whether a same-host link path looks like API documentation.
func (p Profile) apiLink(path string) bool {
	patterns := p.LinkPatterns
	if len(patterns) == 0 {
		patterns = genericLinkKeywords
	}
	lower := strings.ToLower(path)
	for _, pat := range patterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}

// languageHints are signature fragments preferred for a declared language.
var languageHints = map[string][]string{
	"python":     {"def ", "class ", "("},
	"go":         {"func ", "type "},
	"rust":       {"fn ", "struct ", "trait ", "enum "},
	"javascript": {"function", "=>", "("},
	"typescript": {"function", "=>", "):", "interface "},
	"ruby":       {"def ", "class ", "module "},
	"java":       {"public ", "(", "class "},
}
