package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-atlas/internal/assembler"
	"github.com/mvp-joe/project-atlas/internal/extractor"
	"github.com/mvp-joe/project-atlas/internal/hosting"
	"github.com/mvp-joe/project-atlas/internal/logsink"
	"github.com/mvp-joe/project-atlas/internal/markdown"
)

// Test Plan for Pipeline:
// - Run resolves, retrieves, extracts and merges without duplicate signatures
// - Markdown files carry an outline and the README overview is captured
// - Crawling the website source adds crawled signatures
// - Every log entry of a run carries the run id
// - Directories ranked by the resolver are walked in the docs phase
// - Files are flagged as documentation by kind
// - An empty repository yields success=false without panicking
// - Document fills the purpose from the overview and renders the template
// - Summarizer errors are wrapped

var widget = hosting.RepoRef{Owner: "acme", Name: "widget"}

const readme = "# Widget\n\n" +
	"## Overview\n\n" +
	"Widgets for everyone.\n\n" +
	"## Usage\n\n" +
	"- `connect(host)` - Open a connection.\n"

func newMock() *hosting.MockClient {
	mock := hosting.NewMockClient()
	mock.Repo.FullName = "acme/widget"
	mock.Languages = map[string]int64{"JavaScript": 100}
	mock.AddFile("main", "README.md", readme).
		AddFile("main", "package.json", `{"name":"widget"}`).
		AddFile("main", "index.js", "function connect(host) {}\n")
	return mock
}

func signatureCount(sigs []extractor.Signature, sig string) int {
	n := 0
	for _, s := range sigs {
		if s.Signature == sig {
			n++
		}
	}
	return n
}

func TestRun_InventoriesRepository(t *testing.T) {
	t.Parallel()

	sink := &logsink.Memory{}
	inv := New(newMock(), Options{Sink: sink}).Run(context.Background(), widget)

	require.True(t, inv.Success)
	assert.Empty(t, inv.Error)
	assert.NotEmpty(t, inv.RunID)
	assert.Equal(t, "acme/widget", inv.Repo)
	assert.Equal(t, "https://github.com/acme/widget", inv.RepoURL)
	assert.Equal(t, "main", inv.Branch)
	require.NotNil(t, inv.Resolution)
	assert.Equal(t, "JavaScript", inv.Resolution.PrimaryLanguage)
	assert.Nil(t, inv.Crawl)

	paths := make([]string, 0, len(inv.Files))
	for _, f := range inv.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"README.md", "package.json", "index.js"}, paths)

	assert.Equal(t, []markdown.Section{
		{Heading: "Widget", Level: 1},
		{Heading: "Overview", Level: 2},
		{Heading: "Usage", Level: 2},
	}, inv.Files[0].Outline)
	assert.Equal(t, "Widgets for everyone.", inv.Overview)

	assert.Equal(t, 1, signatureCount(inv.Signatures, "connect(host)"))
	for _, s := range inv.Signatures {
		if s.Signature == "connect(host)" {
			assert.Equal(t, "Open a connection.", s.Description, "first occurrence wins")
		}
	}

	entries := sink.Entries()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, inv.RunID, e.RunID, e.Message)
	}
}

func TestRun_CrawlsWebsite(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
<h2 id="connect">connect</h2>
<pre>function connect(host, opts)</pre>
<p>Opens a connection.</p>
</body></html>`))
	}))
	t.Cleanup(srv.Close)

	mock := newMock()
	mock.Repo.Homepage = srv.URL + "/docs/index.html"

	inv := New(mock, Options{Crawl: true, CrawlPages: 3}).Run(context.Background(), widget)

	require.NotNil(t, inv.Crawl)
	assert.True(t, inv.Crawl.Success)
	assert.Equal(t, 1, inv.Crawl.PagesScraped)
	assert.Equal(t, 1, signatureCount(inv.Signatures, "function connect(host, opts)"))
	assert.Equal(t, 1, signatureCount(inv.Signatures, "connect(host)"))
}

func TestRun_RetrievesResolvedDocDirectories(t *testing.T) {
	t.Parallel()

	mock := newMock()
	mock.AddFile("main", "book/intro.md", "# Intro\n\nStart here.\n")

	inv := New(mock, Options{}).Run(context.Background(), widget)

	require.True(t, inv.Success)
	assert.Contains(t, inv.Resolution.DocDirectories(), "book")

	docs := map[string]bool{}
	for _, f := range inv.Files {
		docs[f.Path] = f.Documentation
	}
	require.Contains(t, docs, "book/intro.md", "resolved directories feed the docs walk")
	assert.True(t, docs["book/intro.md"])
	assert.True(t, docs["README.md"])
	assert.False(t, docs["index.js"])
}

func TestRun_EmptyRepository(t *testing.T) {
	t.Parallel()

	mock := hosting.NewMockClient()
	mock.RepoErr = errors.New("boom")

	inv := New(mock, Options{Crawl: true}).Run(context.Background(), hosting.RepoRef{Owner: "user", Name: "repo"})

	assert.False(t, inv.Success)
	assert.NotEmpty(t, inv.Error)
	assert.False(t, inv.Resolution.Success)
	assert.Empty(t, inv.Files)
	assert.NotNil(t, inv.Signatures)
	assert.Nil(t, inv.Crawl)
}

type failingSummarizer struct{}

func (failingSummarizer) Summarize(ctx context.Context, inv *Inventory) (assembler.Prose, error) {
	return assembler.Prose{}, errors.New("model unavailable")
}

func TestDocument(t *testing.T) {
	t.Parallel()

	inv := &Inventory{
		Repo:     "acme/widget",
		RepoURL:  "https://github.com/acme/widget",
		Overview: "Widgets for everyone.",
		Signatures: []extractor.Signature{
			{Signature: "connect(host)", Description: "Open a connection."},
		},
	}

	out, err := Document(context.Background(), inv, StaticSummarizer{Prose: assembler.Prose{Concepts: []string{"Widgets"}}}, 0)
	require.NoError(t, err)
	assert.Contains(t, out, "# acme/widget\n")
	assert.Contains(t, out, "## Overview\n\nWidgets for everyone.\n")
	assert.Contains(t, out, "- Widgets\n")
	assert.Contains(t, out, "- `connect(host)`: Open a connection.\n")

	_, err = Document(context.Background(), inv, failingSummarizer{}, 0)
	assert.ErrorContains(t, err, "model unavailable")

	_, err = Document(context.Background(), nil, StaticSummarizer{}, 0)
	assert.ErrorIs(t, err, ErrNoInventory)
}
