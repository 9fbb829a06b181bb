package extractor

import (
	"regexp"
	"strings"
)

var (
	inlineCodeDescribed = regexp.MustCompile("`([^`\\n]{2,120})`\\s*[-–—:]\\s*(\\S.*)$")
	rstInlineDescribed  = regexp.MustCompile("``([^`\\n]{2,120})``\\s*[-–—:]\\s*(\\S.*)$")
	listLabel           = regexp.MustCompile("^\\s*(?:[-*+]|\\d+[.)])\\s+(?:`([^`\\n]+)`|\\*\\*([^*\\n]+)\\*\\*)(.*)$")
	mdHeading           = regexp.MustCompile(`^(#{2,4})\s+(.+?)(?:\s+#+)?\s*$`)

	callShape     = regexp.MustCompile(`^(?:new\s+)?` + identifier + `(?:(?:\.|::|#|->)` + identifier + `)*\s*\(.*\)(?:\s*(?::|->|=>)\s*.+)?$`)
	accessorShape = regexp.MustCompile(`^` + identifier + `(?:(?:\.|::|#|->)` + identifier + `)+$`)

	callChain = regexp.MustCompile(`(?:^|[^\w$.])(` + identifier + `(?:(?:\.|::|->)` + identifier + `)+)\s*\(([^()\n]{0,80})\)`)
	pathChain = regexp.MustCompile(`(?:^|[^\w:])([A-Za-z_]\w*(?:::[A-Za-z_]\w*)+)(\s*\()?`)

	rstDirective = regexp.MustCompile(`^[ \t]*\.\.[ \t]+(?:[a-z]+:)?(function|method|class|attribute|data|exception|decorator|module|classmethod|staticmethod|property|autofunction|autoclass|automethod|automodule)::[ \t]*(.+)$`)
	rstCodeStart = regexp.MustCompile(`^[ \t]*\.\.[ \t]+(?:code-block|code|sourcecode)::`)
)

// noisyRoots are call-chain roots that are language builtins rather than the
// documented library.
var noisyRoots = map[string]bool{
	"console": true, "Math": true, "JSON": true, "Object": true, "Array": true,
	"Promise": true, "process": true, "window": true, "document": true,
	"System": true, "this": true, "self": true, "fmt": true, "os": true,
	"std": true, "String": true, "Number": true,
}

var rstDirectiveCategories = map[string]Category{
	"function":     CategoryFunction,
	"autofunction": CategoryFunction,
	"method":       CategoryMethod,
	"classmethod":  CategoryMethod,
	"staticmethod": CategoryMethod,
	"automethod":   CategoryMethod,
	"class":        CategoryClass,
	"autoclass":    CategoryClass,
	"exception":    CategoryClass,
	"attribute":    CategoryProperty,
	"data":         CategoryProperty,
	"property":     CategoryProperty,
	"decorator":    CategoryDecorator,
	"module":       CategoryModule,
	"automodule":   CategoryModule,
}

// looksLikeAPI reports whether label is call-shaped or a qualified accessor.
func looksLikeAPI(label string) bool {
	return callShape.MatchString(label) || accessorShape.MatchString(label)
}

// markdownInlineCode captures `code` spans followed by a dash or colon and prose.
func markdownInlineCode(content string) []Signature {
	prose, _ := splitFenced(content)
	return describedSpans(prose, inlineCodeDescribed)
}

func rstInlineCode(content string) []Signature {
	return describedSpans(strings.Split(content, "\n"), rstInlineDescribed)
}

func describedSpans(lines []string, pattern *regexp.Regexp) []Signature {
	var c collector
	for _, line := range lines {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		label := strings.TrimSpace(m[1])
		c.add(label, label, m[2], CategoryReference)
	}
	return c.out
}

// markdownListLabels captures bullet or numbered items labelled by inline code or bold text.
func markdownListLabels(content string) []Signature {
	prose, _ := splitFenced(content)

	var c collector
	for _, line := range prose {
		m := listLabel.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		label := m[1]
		if label == "" {
			label = strings.TrimSuffix(stripInlineMarkup(m[2]), ":")
		}
		label = strings.TrimSpace(label)
		c.add(label, label, trimSeparator(m[3]), CategoryReference)
	}
	return c.out
}

// markdownTableRows captures rows whose first cell is call- or accessor-shaped.
func markdownTableRows(content string) []Signature {
	prose, _ := splitFenced(content)

	var c collector
	for _, line := range prose {
		t := strings.TrimSpace(line)
		if !strings.HasPrefix(t, "|") {
			continue
		}
		cells := strings.Split(strings.Trim(t, "|"), "|")
		first := stripInlineMarkup(cells[0])
		if first == "" || strings.Trim(first, "-: ") == "" || !looksLikeAPI(first) {
			continue
		}
		desc := ""
		if len(cells) > 1 {
			desc = strings.TrimSpace(cells[1])
		}
		c.add(first, first, desc, CategoryReference)
	}
	return c.out
}

// markdownHeadings captures level 2-4 headings shaped like a qualified identifier or call.
func markdownHeadings(content string) []Signature {
	prose, _ := splitFenced(content)

	var c collector
	for i, line := range prose {
		m := mdHeading.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		label := stripInlineMarkup(m[2])
		if !looksLikeAPI(label) {
			continue
		}
		c.add(label, label, nextProseLine(prose, i), CategoryReference)
	}
	return c.out
}

// markdownFencedCalls captures dotted call chains inside fenced code blocks.
func markdownFencedCalls(content string) []Signature {
	_, blocks := splitFenced(content)

	var c collector
	for _, block := range blocks {
		callsIn(block, &c)
	}
	return c.out
}

// markdownFencedPaths captures `a::b::c` accessors inside fenced code that are not called.
func markdownFencedPaths(content string) []Signature {
	_, blocks := splitFenced(content)

	var c collector
	for _, block := range blocks {
		for _, m := range pathChain.FindAllStringSubmatch(block, -1) {
			if m[2] != "" || noisyRoots[rootOf(m[1])] {
				continue
			}
			c.add(m[1], m[1], "", CategoryPath)
		}
	}
	return c.out
}

func callsIn(block string, c *collector) {
	for _, m := range callChain.FindAllStringSubmatch(block, -1) {
		chain := m[1]
		if noisyRoots[rootOf(chain)] {
			continue
		}
		c.add(chain, chain+"("+collapseSpace(m[2])+")", "", CategoryCall)
	}
}

// rootOf returns the first segment of a dotted, :: or -> chain.
func rootOf(chain string) string {
	end := len(chain)
	for _, sep := range []string{".", "::", "->"} {
		if i := strings.Index(chain, sep); i >= 0 && i < end {
			end = i
		}
	}
	return chain[:end]
}

// rstDirectives captures Sphinx object directives such as ".. py:function:: name(args)".
func rstDirectives(content string) []Signature {
	lines := strings.Split(content, "\n")

	var c collector
	for i, line := range lines {
		m := rstDirective.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		sig := strings.TrimSpace(m[2])
		name := sig
		if idx := strings.IndexAny(name, "(["); idx >= 0 {
			name = name[:idx]
		}
		c.add(name, sig, directiveBody(lines, i), rstDirectiveCategories[m[1]])
	}
	return c.out
}

// directiveBody returns the first indented content line after a directive,
// skipping field options such as ":noindex:".
func directiveBody(lines []string, i int) string {
	for j := i + 1; j < len(lines) && j <= i+8; j++ {
		raw := lines[j]
		t := strings.TrimSpace(raw)
		if t == "" {
			continue
		}
		if raw[0] != ' ' && raw[0] != '\t' {
			return ""
		}
		if strings.HasPrefix(t, ":") || strings.HasPrefix(t, "..") {
			continue
		}
		return t
	}
	return ""
}

// rstHeadings captures underlined section titles shaped like an API.
func rstHeadings(content string) []Signature {
	lines := strings.Split(content, "\n")

	var c collector
	for i := 0; i+1 < len(lines); i++ {
		title := strings.TrimSpace(lines[i])
		under := strings.TrimSpace(lines[i+1])
		if title == "" || !isUnderline(under) || len(under) < len(title) || isUnderline(title) {
			continue
		}
		label := strings.TrimSpace(strings.Trim(title, "`*"))
		if !looksLikeAPI(label) {
			continue
		}
		c.add(label, label, nextProseLine(lines, i+1), CategoryReference)
	}
	return c.out
}

// rstLiteralCalls captures call chains in "::" literal blocks and code-block directives.
func rstLiteralCalls(content string) []Signature {
	var c collector
	for _, block := range rstLiteralBlocks(content) {
		callsIn(block, &c)
	}
	return c.out
}

func rstLiteralBlocks(content string) []string {
	lines := strings.Split(content, "\n")

	var blocks []string
	for i := 0; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		if !strings.HasSuffix(t, "::") && !rstCodeStart.MatchString(lines[i]) {
			continue
		}
		if rstDirective.MatchString(lines[i]) {
			continue
		}
		base := indentOf(lines[i])

		var buf []string
		j := i + 1
		for ; j < len(lines); j++ {
			l := lines[j]
			if strings.TrimSpace(l) == "" {
				buf = append(buf, "")
				continue
			}
			if indentOf(l) <= base {
				break
			}
			if strings.HasPrefix(strings.TrimSpace(l), ":") && len(strings.TrimSpace(strings.Join(buf, ""))) == 0 {
				continue
			}
			buf = append(buf, l)
		}
		if block := strings.TrimSpace(strings.Join(buf, "\n")); block != "" {
			blocks = append(blocks, block)
		}
		i = j - 1
	}
	return blocks
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
