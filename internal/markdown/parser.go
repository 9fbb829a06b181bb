// Package markdown splits raw markdown into flat sections, fenced code blocks
// and link targets.
package markdown

import (
	"regexp"
	"strings"
)

// Section is a heading and the text that follows it up to the next heading.
// Sections never nest: every heading starts a new entry regardless of level.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Content string `json:"content"`
}

// Document is the structural summary of a markdown file.
type Document struct {
	Sections   []Section `json:"sections"`
	CodeBlocks []string  `json:"code_blocks"`
	Links      []string  `json:"links"`
}

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*?)(?:\s+#+)?\s*$`)
	linkPattern    = regexp.MustCompile(`\[([^\]]*)\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)
)

// Parse runs the two-state (outside/inside code) line machine over text.
//
// A fence opens on three or more backticks or tildes with any info string and
// closes only on a bare run of the same character at least as long. Fence
// lines are never part of a code block or a section.
// Lines before the first heading are dropped. An unterminated fence at end of
// input is committed as a code block.
func Parse(text string) *Document {
	doc := &Document{
		Sections:   []Section{},
		CodeBlocks: []string{},
		Links:      []string{},
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	var (
		fences  FenceTracker
		codeBuf []string
		current *Section
		body    []string
	)

	closeSection := func() {
		if current == nil {
			return
		}
		current.Content = trimBlankLines(body)
		doc.Sections = append(doc.Sections, *current)
		current = nil
		body = nil
	}

	for _, line := range lines {
		if isFence, closed := fences.Step(line); isFence {
			if closed {
				doc.CodeBlocks = append(doc.CodeBlocks, strings.Join(codeBuf, "\n"))
				codeBuf = nil
			}
			continue
		}

		if fences.InCode() {
			codeBuf = append(codeBuf, line)
			continue
		}

		for _, m := range linkPattern.FindAllStringSubmatch(line, -1) {
			doc.Links = append(doc.Links, m[2])
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			closeSection()
			current = &Section{Heading: m[2], Level: len(m[1])}
			continue
		}

		if current != nil {
			body = append(body, line)
		}
	}

	if fences.InCode() {
		doc.CodeBlocks = append(doc.CodeBlocks, strings.Join(codeBuf, "\n"))
	}
	closeSection()

	return doc
}

// trimBlankLines joins lines after dropping leading and trailing blank lines.
// Interior blank lines are kept.
func trimBlankLines(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// SectionsAtLevel returns sections whose heading level is between min and max inclusive.
func (d *Document) SectionsAtLevel(min, max int) []Section {
	var out []Section
	for _, s := range d.Sections {
		if s.Level >= min && s.Level <= max {
			out = append(out, s)
		}
	}
	return out
}

// Find returns the first section whose heading contains substr, case-insensitively.
func (d *Document) Find(substr string) (Section, bool) {
	needle := strings.ToLower(substr)
	for _, s := range d.Sections {
		if strings.Contains(strings.ToLower(s.Heading), needle) {
			return s, true
		}
	}
	return Section{}, false
}
