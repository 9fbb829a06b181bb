package retriever

import (
	"unicode/utf8"

	"github.com/mvp-joe/project-atlas/internal/extractor"
)

type limits struct {
	tokens int
	chars  int
}

// EstimateTokens approximates a token count as ceil(characters/4).
func EstimateTokens(content string) int {
	return (utf8.RuneCountInString(content) + 3) / 4
}

// newFetchedFile classifies and, when oversized, truncates raw content.
// Package manifests are kept whole so they stay parseable.
func newFetchedFile(p string, raw []byte, l limits) FetchedFile {
	content := string(raw)
	kind := extractor.KindForPath(p)

	f := FetchedFile{Path: p, Kind: kind, Content: content}
	size := utf8.RuneCountInString(content)
	if kind != extractor.KindManifest && EstimateTokens(content) > l.tokens && size > l.chars {
		f.Content = truncate(content, l.chars)
		f.Truncated = true
		f.OriginalSize = size
	}
	f.EstimatedTokens = EstimateTokens(f.Content)
	return f
}

// truncate keeps the first limit characters.
func truncate(content string, limit int) string {
	cut := 0
	for i := 0; i < limit && cut < len(content); i++ {
		_, w := utf8.DecodeRuneInString(content[cut:])
		cut += w
	}
	return content[:cut]
}
