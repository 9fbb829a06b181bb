package extractor

import (
	"strings"

	"github.com/mvp-joe/project-atlas/internal/markdown"
)

// paramList matches a parenthesized parameter list allowing one level of
// nested parentheses. Group 1 is the inner text.
const paramList = `\(((?:[^()]|\([^()]*\))*)\)`

// identifier is a JS-flavoured identifier ($ allowed).
const identifier = `[A-Za-z_$][\w$]*`

// splitFenced separates prose lines from fenced code blocks.
func splitFenced(content string) (prose []string, blocks []string) {
	var (
		fences markdown.FenceTracker
		buf    []string
	)
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if isFence, closed := fences.Step(line); isFence {
			if closed {
				blocks = append(blocks, strings.Join(buf, "\n"))
				buf = nil
			}
			continue
		}
		if fences.InCode() {
			buf = append(buf, line)
		} else {
			prose = append(prose, line)
		}
	}
	if fences.InCode() && len(buf) > 0 {
		blocks = append(blocks, strings.Join(buf, "\n"))
	}
	return prose, blocks
}

// nextProseLine returns the first non-blank line after index i, looking at
// most six lines ahead. Headings, table rows and directives end the search.
func nextProseLine(lines []string, i int) string {
	for j := i + 1; j < len(lines) && j <= i+6; j++ {
		t := strings.TrimSpace(lines[j])
		switch {
		case t == "":
			continue
		case strings.HasPrefix(t, "#"), strings.HasPrefix(t, "|"), strings.HasPrefix(t, ".."):
			return ""
		case isUnderline(t):
			continue
		}
		return t
	}
	return ""
}

const adornmentChars = "=-~^\"'`#*+:."

// isUnderline reports whether t is an RST section adornment line.
func isUnderline(t string) bool {
	if len(t) < 3 || !strings.ContainsRune(adornmentChars, rune(t[0])) {
		return false
	}
	return strings.Count(t, t[:1]) == len(t)
}

// leadingComment returns the first descriptive line of the comment block
// immediately above offset. Attribute and annotation lines between the
// comment and the declaration are skipped.
func leadingComment(content string, offset int) string {
	if offset <= 0 || offset > len(content) {
		return ""
	}
	lines := strings.Split(content[:offset], "\n")
	lines = lines[:len(lines)-1]

	var collected []string
	for i := len(lines) - 1; i >= 0; i-- {
		t := strings.TrimSpace(lines[i])
		if t == "" {
			break
		}
		text, ok := commentText(t)
		if !ok {
			if strings.HasPrefix(t, "#[") || strings.HasPrefix(t, "@") {
				continue
			}
			break
		}
		collected = append(collected, text)
	}

	for i := len(collected) - 1; i >= 0; i-- {
		line := collected[i]
		if line == "" || strings.HasPrefix(line, "@") || strings.HasPrefix(line, ":") {
			continue
		}
		return line
	}
	return ""
}

// commentText strips a line comment marker. ok is false for non-comment lines.
func commentText(t string) (string, bool) {
	switch {
	case strings.HasPrefix(t, "///"), strings.HasPrefix(t, "//!"):
		return strings.TrimSpace(t[3:]), true
	case strings.HasPrefix(t, "//"):
		return strings.TrimSpace(t[2:]), true
	case strings.HasPrefix(t, "/**"):
		return strings.TrimSpace(strings.TrimSuffix(t[3:], "*/")), true
	case strings.HasPrefix(t, "/*"):
		return strings.TrimSpace(strings.TrimSuffix(t[2:], "*/")), true
	case strings.HasPrefix(t, "*/"):
		return "", true
	case strings.HasPrefix(t, "*"):
		return strings.TrimSpace(strings.TrimSuffix(t[1:], "*/")), true
	case strings.HasPrefix(t, "#") && !strings.HasPrefix(t, "#[") && !strings.HasPrefix(t, "#!"):
		return strings.TrimSpace(strings.TrimLeft(t, "#")), true
	}
	return "", false
}

// docstringAfter returns the first line of a Python docstring that starts on
// the first non-blank line after offset.
func docstringAfter(content string, offset int) string {
	if offset >= len(content) {
		return ""
	}
	rest := content[offset:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		return ""
	}

	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		t = strings.TrimLeft(t, "rRuUbB")
		var quote string
		switch {
		case strings.HasPrefix(t, `"""`):
			quote = `"""`
		case strings.HasPrefix(t, `'''`):
			quote = `'''`
		default:
			return ""
		}
		body := strings.TrimSpace(strings.TrimPrefix(t, quote))
		if idx := strings.Index(body, quote); idx >= 0 {
			return strings.TrimSpace(body[:idx])
		}
		if body != "" {
			return body
		}
		for _, next := range lines[i+1:] {
			n := strings.TrimSpace(next)
			if n == "" {
				continue
			}
			return strings.TrimSpace(strings.TrimSuffix(n, quote))
		}
		return ""
	}
	return ""
}

// stripInlineMarkup removes surrounding backticks and bold/italic asterisks.
func stripInlineMarkup(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`*")
	return strings.TrimSpace(s)
}

// trimSeparator removes a leading dash, en/em dash or colon separator.
func trimSeparator(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-–—:")
	return strings.TrimSpace(s)
}

// controlKeywords are names that method-shaped patterns frequently misread.
var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"function": true, "return": true, "with": true, "else": true, "do": true,
	"try": true, "typeof": true, "super": true, "new": true, "delete": true,
	"await": true, "yield": true, "throw": true, "import": true, "elif": true,
	"foreach": true, "until": true, "unless": true, "case": true, "void": true,
}
