package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Parser:
// - Intro/API example produces two flat sections with trimmed bodies
// - Headings of any level never nest
// - Code blocks are committed verbatim without fence lines, in order
// - Lines inside code never reach section bodies or links
// - Links are collected in document order without dedup
// - Content before the first heading is dropped
// - Unterminated fence is committed at end of input
// - Fences with attribute info strings open and close normally
// - A fence closes only on the same character, at least as long as the opener
// - Closing hashes are stripped but "C#" survives
// - Round trip: headings+bodies rebuild the non-code, non-blank lines

func TestParse_IntroAndAPIExample(t *testing.T) {
	t.Parallel()

	doc := Parse("# Intro\n\nHello\n\n## API\n* `foo(x)` - does foo\n")

	require.Len(t, doc.Sections, 2)
	assert.Equal(t, Section{Heading: "Intro", Level: 1, Content: "Hello"}, doc.Sections[0])
	assert.Equal(t, Section{Heading: "API", Level: 2, Content: "* `foo(x)` - does foo"}, doc.Sections[1])
	assert.Empty(t, doc.CodeBlocks)
	assert.Empty(t, doc.Links)
}

func TestParse_FlatHeadings(t *testing.T) {
	t.Parallel()

	doc := Parse("# A\n### B\nb body\n## C\n###### F\nf\n")

	require.Len(t, doc.Sections, 4)
	levels := []int{}
	for _, s := range doc.Sections {
		levels = append(levels, s.Level)
	}
	assert.Equal(t, []int{1, 3, 2, 6}, levels)
	assert.Equal(t, "", doc.Sections[0].Content)
	assert.Equal(t, "b body", doc.Sections[1].Content)
}

func TestParse_CodeBlocks(t *testing.T) {
	t.Parallel()

	content := "# Usage\n\nInstall it:\n\n```bash\nnpm i widget\n\n# not a heading\n```\n\nThen:\n\n~~~\nwidget.run([a](b))\n~~~\n"

	doc := Parse(content)

	require.Len(t, doc.CodeBlocks, 2)
	assert.Equal(t, "npm i widget\n\n# not a heading", doc.CodeBlocks[0])
	assert.Equal(t, "widget.run([a](b))", doc.CodeBlocks[1])

	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Install it:\n\n\nThen:", doc.Sections[0].Content)
	assert.Empty(t, doc.Links, "links inside code are ignored")
}

func TestParse_Links(t *testing.T) {
	t.Parallel()

	doc := Parse("# See [docs](https://x.dev/docs)\n[a](./a.md) and [a](./a.md) ![logo](img/logo.png \"Logo\")\n")

	assert.Equal(t, []string{"https://x.dev/docs", "./a.md", "./a.md", "img/logo.png"}, doc.Links)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "See [docs](https://x.dev/docs)", doc.Sections[0].Heading)
}

func TestParse_PreambleDropped(t *testing.T) {
	t.Parallel()

	doc := Parse("badge line\n\n# Title\nbody\n")

	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "body", doc.Sections[0].Content)
}

func TestParse_UnterminatedFence(t *testing.T) {
	t.Parallel()

	doc := Parse("# T\n```\nline one\nline two")

	assert.Equal(t, []string{"line one\nline two"}, doc.CodeBlocks)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "", doc.Sections[0].Content)
}

func TestParse_FenceInfoAttributes(t *testing.T) {
	t.Parallel()

	doc := Parse("# A\n```js title=\"x.js\"\n# not heading\n```\ntext\n\n```ts {1,3}\nlet a = 1\n```\n")

	assert.Equal(t, []string{"# not heading", "let a = 1"}, doc.CodeBlocks)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, Section{Heading: "A", Level: 1, Content: "text"}, doc.Sections[0])
}

func TestParse_FenceClosingRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		code  []string
		body  string
	}{
		{
			name:  "tilde inside backtick block",
			input: "# A\n```\n~~~\n# still code\n```\nafter\n",
			code:  []string{"~~~\n# still code"},
			body:  "after",
		},
		{
			name:  "backticks inside tilde block",
			input: "# A\n~~~ python\n```\n~~~\nafter\n",
			code:  []string{"```"},
			body:  "after",
		},
		{
			name:  "four backtick fence nests three",
			input: "# A\n````markdown\n```go\nx := 1\n```\n````\nafter\n",
			code:  []string{"```go\nx := 1\n```"},
			body:  "after",
		},
		{
			name:  "shorter run does not close",
			input: "# A\n````\n```\n``````\nafter\n",
			code:  []string{"```"},
			body:  "after",
		},
		{
			name:  "closing run with info string is content",
			input: "# A\n```\n``` js\n```\nafter\n",
			code:  []string{"``` js"},
			body:  "after",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := Parse(tt.input)

			assert.Equal(t, tt.code, doc.CodeBlocks)
			require.Len(t, doc.Sections, 1)
			assert.Equal(t, tt.body, doc.Sections[0].Content)
		})
	}
}

func TestParse_HeadingText(t *testing.T) {
	t.Parallel()

	doc := Parse("## Closing ##\n## C#\n#nospace\n")

	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "Closing", doc.Sections[0].Heading)
	assert.Equal(t, "C#", doc.Sections[1].Heading)
	assert.Equal(t, "#nospace", doc.Sections[1].Content)
}

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"# Widget",
		"",
		"A small library.",
		"",
		"## Install",
		"```",
		"go get widget",
		"```",
		"Run it.",
		"",
		"",
		"### Options",
		"- fast",
		"- small",
	}, "\n")

	doc := Parse(content)

	var rebuilt []string
	for _, s := range doc.Sections {
		rebuilt = append(rebuilt, strings.Repeat("#", s.Level)+" "+s.Heading)
		for _, l := range strings.Split(s.Content, "\n") {
			if strings.TrimSpace(l) != "" {
				rebuilt = append(rebuilt, l)
			}
		}
	}

	var expected []string
	inCode := false
	for _, l := range strings.Split(content, "\n") {
		if strings.HasPrefix(l, "```") {
			inCode = !inCode
			continue
		}
		if inCode || strings.TrimSpace(l) == "" {
			continue
		}
		expected = append(expected, l)
	}

	assert.Equal(t, expected, rebuilt)
	assert.Equal(t, []string{"go get widget"}, doc.CodeBlocks)
}

func TestDocument_Helpers(t *testing.T) {
	t.Parallel()

	doc := Parse("# Widget\n## Getting Started\nx\n### API Reference\ny\n")

	assert.Len(t, doc.SectionsAtLevel(2, 4), 2)
	s, ok := doc.Find("api")
	require.True(t, ok)
	assert.Equal(t, "y", s.Content)
	_, ok = doc.Find("missing")
	assert.False(t, ok)
}
