package crawler

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/mvp-joe/project-atlas/internal/extractor"
)

const (
	minNameLength        = 2
	maxNameLength        = 100
	maxSignatureLength   = 200
	maxDescriptionLength = 300
)

var (
	qualifiedName = regexp.MustCompile(`[A-Za-z_$][\w$]*(?:(?:\.|::|#|->)[A-Za-z_$][\w$]*)*`)
	validName     = regexp.MustCompile(`^[A-Za-z_$][\w$]*(?:(?:\.|::|#|->)[A-Za-z_$][\w$]*)*$`)
	headingJunk   = strings.NewReplacer("¶", "", "§", "", "\u00a0", " ", "[source]", "", "[src]", "")
)

// declarationWords never name an entity on their own.
var declarationWords = map[string]bool{
	"pub": true, "fn": true, "struct": true, "enum": true, "trait": true, "impl": true,
	"type": true, "const": true, "static": true, "unsafe": true, "async": true, "class": true,
	"def": true, "function": true, "func": true, "interface": true, "public": true,
	"private": true, "protected": true, "final": true, "abstract": true, "exception": true,
	"method": true, "attribute": true, "property": true, "classmethod": true,
	"staticmethod": true, "let": true, "var": true, "export": true, "default": true,
	"macro_rules": true, "mod": true, "crate": true, "where": true,
}

// scrapePage extracts records and outbound API-ish links from one page.
func scrapePage(doc *goquery.Document, pageURL *url.URL, profile Profile, language string, window int) ([]Record, []string) {
	var records []Record
	doc.Find(profile.Headings).Each(func(_ int, heading *goquery.Selection) {
		label := cleanText(heading.Text())
		if label == "" {
			return
		}

		neighbours := windowAfter(heading, window)

		signature := label
		if !profile.SignatureInHeading {
			signature = findSignature(neighbours, profile.Signature, label, language)
		}
		name := nameFromSignature(label)
		if !validEntity(name) || signature == "" {
			return
		}

		records = append(records, Record{
			Name:        name,
			Signature:   clip(signature, maxSignatureLength),
			Description: clip(findDescription(neighbours, profile.Description), maxDescriptionLength),
			SourceURL:   anchorURL(pageURL, heading),
			Category:    categorize(name, signature),
		})
	})

	return records, pageLinks(doc, pageURL, profile)
}

// windowAfter returns up to n element siblings following heading. When the
// heading has fewer, its parent's following siblings fill the window.
func windowAfter(heading *goquery.Selection, n int) *goquery.Selection {
	siblings := heading.NextAll()
	if siblings.Length() >= n {
		return siblings.Slice(0, n)
	}
	rest := heading.Parent().NextAll()
	if rest.Length() > n-siblings.Length() {
		rest = rest.Slice(0, n-siblings.Length())
	}
	return siblings.AddSelection(rest)
}

// findSignature returns the first line within the window mentioning the
// entity, preferring lines with a hint for the declared language.
func findSignature(neighbours *goquery.Selection, selector, label, language string) string {
	name := lastSegment(nameFromSignature(label))
	if name == "" {
		return ""
	}
	hints := languageHints[strings.ToLower(language)]

	var fallback, hinted string
	neighbours.Each(func(_ int, s *goquery.Selection) {
		if hinted != "" {
			return
		}
		blocks := s.Filter(selector).AddSelection(s.Find(selector))
		blocks.Each(func(_ int, b *goquery.Selection) {
			if hinted != "" {
				return
			}
			for _, line := range strings.Split(b.Text(), "\n") {
				line = cleanText(line)
				if !strings.Contains(line, name) {
					continue
				}
				if fallback == "" {
					fallback = line
				}
				if len(hints) == 0 || containsAny(line, hints) {
					hinted = line
					return
				}
			}
		})
	})
	if hinted != "" {
		return hinted
	}
	return fallback
}

// findDescription returns the first non-empty description in the window,
// preferring nested matches over the window element itself.
func findDescription(neighbours *goquery.Selection, selector string) string {
	var desc string
	neighbours.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		candidates := s.Find(selector).AddSelection(s.Filter(selector))
		candidates.EachWithBreak(func(_ int, c *goquery.Selection) bool {
			desc = cleanText(c.Text())
			return desc == ""
		})
		return desc == ""
	})
	return desc
}

// nameFromSignature picks the entity name out of a heading or signature:
// the qualified identifier before the first parenthesis, otherwise the first
// identifier that is not a declaration keyword.
func nameFromSignature(sig string) string {
	head := sig
	if idx := strings.Index(sig, "("); idx > 0 {
		head = sig[:idx]
		names := qualifiedName.FindAllString(head, -1)
		for i := len(names) - 1; i >= 0; i-- {
			if !declarationWords[names[i]] {
				return names[i]
			}
		}
		return ""
	}
	if idx := strings.IndexAny(head, "<:=["); idx > 0 && !strings.Contains(head, "::") {
		head = head[:idx]
	}
	for _, n := range qualifiedName.FindAllString(head, -1) {
		if !declarationWords[n] {
			return n
		}
	}
	return ""
}

func validEntity(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= minNameLength && n <= maxNameLength && validName.MatchString(name)
}

func lastSegment(name string) string {
	for _, sep := range []string{"::", "->", ".", "#"} {
		if idx := strings.LastIndex(name, sep); idx >= 0 {
			name = name[idx+len(sep):]
		}
	}
	return name
}

func categorize(name, signature string) extractor.Category {
	lower := " " + strings.ToLower(signature) + " "
	switch {
	case strings.Contains(lower, " class "):
		return extractor.CategoryClass
	case strings.Contains(lower, " struct "):
		return extractor.CategoryStruct
	case strings.Contains(lower, " trait "):
		return extractor.CategoryTrait
	case strings.Contains(lower, " enum "):
		return extractor.CategoryEnum
	case strings.Contains(lower, " interface "):
		return extractor.CategoryInterface
	case strings.Contains(lower, " type "):
		return extractor.CategoryType
	case strings.Contains(lower, "macro") || strings.HasSuffix(strings.TrimSpace(signature), "!"):
		return extractor.CategoryMacro
	case strings.Contains(signature, "("):
		if strings.ContainsAny(name, ".#") || strings.Contains(name, "::") || strings.Contains(lower, "self") {
			return extractor.CategoryMethod
		}
		return extractor.CategoryFunction
	}
	return extractor.CategoryProperty
}

// anchorURL points at the heading's id when it has one.
func anchorURL(pageURL *url.URL, heading *goquery.Selection) string {
	u := *pageURL
	if id, ok := heading.Attr("id"); ok && id != "" {
		u.Fragment = id
	}
	return u.String()
}

var assetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".ico": true,
	".css": true, ".js": true, ".zip": true, ".gz": true, ".pdf": true, ".woff": true,
	".woff2": true, ".ttf": true, ".json": true, ".xml": true, ".txt": true,
}

// pageLinks returns same-host API-ish links as absolute URLs without fragments.
func pageLinks(doc *goquery.Document, pageURL *url.URL, profile Profile) []string {
	var out []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := pageURL.ResolveReference(ref)
		abs.Fragment = ""
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if !strings.EqualFold(abs.Host, pageURL.Host) {
			return
		}
		if assetExtensions[strings.ToLower(path.Ext(abs.Path))] || !profile.apiLink(abs.Path) {
			return
		}
		s := abs.String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	})
	return out
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(headingJunk.Replace(s)), " ")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max-3])) + "..."
}
