// Package assembler renders the final repository document from summarizer
// prose and extracted signatures. Rendering is pure: the same Input always
// produces byte-identical output.
package assembler

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/project-atlas/internal/extractor"
)

// DefaultMaxAPIs bounds the API Reference section when building from signatures.
const DefaultMaxAPIs = 50

const emptySection = "_None identified._"

// API is one API Reference entry.
type API struct {
	Signature   string `json:"signature"`
	Description string `json:"description"`
}

// Pattern is one usage pattern, optionally with a code example.
type Pattern struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Example     string `json:"example,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Prose holds the fields a summarizer writes.
type Prose struct {
	Purpose  string    `json:"purpose"`
	Concepts []string  `json:"concepts"`
	Patterns []Pattern `json:"patterns"`
}

// Input is everything Render needs.
type Input struct {
	RepoName string
	RepoURL  string
	Purpose  string
	Concepts []string
	APIs     []API
	Patterns []Pattern
}

// Build combines prose with extracted signatures. At most maxAPIs signatures
// are kept, in their given order; maxAPIs <= 0 selects DefaultMaxAPIs.
func Build(repoName, repoURL string, prose Prose, sigs []extractor.Signature, maxAPIs int) Input {
	if maxAPIs <= 0 {
		maxAPIs = DefaultMaxAPIs
	}
	apis := make([]API, 0, min(len(sigs), maxAPIs))
	for _, s := range sigs {
		if len(apis) == maxAPIs {
			break
		}
		apis = append(apis, API{Signature: s.Signature, Description: s.Description})
	}
	return Input{
		RepoName: repoName,
		RepoURL:  repoURL,
		Purpose:  prose.Purpose,
		Concepts: prose.Concepts,
		APIs:     apis,
		Patterns: prose.Patterns,
	}
}

// Render produces the markdown document: Overview, Key Concepts,
// API Reference and Usage Patterns, then an attribution line.
func Render(in Input) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", in.RepoName))
	if in.RepoURL != "" {
		sb.WriteString(fmt.Sprintf("Repository: <%s>\n\n", in.RepoURL))
	}

	sb.WriteString("## Overview\n\n")
	sb.WriteString(orEmpty(strings.TrimSpace(in.Purpose)))
	sb.WriteString("\n\n")

	sb.WriteString("## Key Concepts\n\n")
	writeList(&sb, in.Concepts, func(c string) string { return strings.TrimSpace(c) })

	sb.WriteString("## API Reference\n\n")
	if len(in.APIs) == 0 {
		sb.WriteString(emptySection + "\n\n")
	} else {
		for _, api := range in.APIs {
			sb.WriteString(fmt.Sprintf("- %s", codeSpan(api.Signature)))
			if d := strings.TrimSpace(api.Description); d != "" {
				sb.WriteString(": " + d)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Usage Patterns\n\n")
	if len(in.Patterns) == 0 {
		sb.WriteString(emptySection + "\n\n")
	}
	for _, p := range in.Patterns {
		sb.WriteString(fmt.Sprintf("### %s\n\n", strings.TrimSpace(p.Title)))
		if d := strings.TrimSpace(p.Description); d != "" {
			sb.WriteString(d + "\n\n")
		}
		if ex := strings.Trim(p.Example, "\n"); ex != "" {
			fence := fenceFor(ex)
			sb.WriteString(fence + p.Language + "\n" + ex + "\n" + fence + "\n\n")
		}
	}

	sb.WriteString("---\n\n")
	if in.RepoURL != "" {
		sb.WriteString(fmt.Sprintf("_Generated by project-atlas from %s._\n", in.RepoURL))
	} else {
		sb.WriteString("_Generated by project-atlas._\n")
	}
	return sb.String()
}

func writeList(sb *strings.Builder, items []string, format func(string) string) {
	n := 0
	for _, item := range items {
		if s := format(item); s != "" {
			sb.WriteString("- " + s + "\n")
			n++
		}
	}
	if n == 0 {
		sb.WriteString(emptySection + "\n")
	}
	sb.WriteString("\n")
}

func orEmpty(s string) string {
	if s == "" {
		return emptySection
	}
	return s
}

// codeSpan wraps s in backticks, widening the delimiter when s contains one.
func codeSpan(s string) string {
	ticks := "`"
	for strings.Contains(s, ticks) {
		ticks += "`"
	}
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return ticks + " " + s + " " + ticks
	}
	return ticks + s + ticks
}

// fenceFor returns a backtick fence longer than any run inside the example.
func fenceFor(example string) string {
	fence := "```"
	for strings.Contains(example, fence) {
		fence += "`"
	}
	return fence
}
