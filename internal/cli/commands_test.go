package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-atlas/internal/config"
	"github.com/mvp-joe/project-atlas/internal/extractor"
	"github.com/mvp-joe/project-atlas/internal/hosting"
	"github.com/mvp-joe/project-atlas/internal/logsink"
	"github.com/mvp-joe/project-atlas/internal/markdown"
	"github.com/mvp-joe/project-atlas/internal/pipeline"
	"github.com/mvp-joe/project-atlas/internal/retriever"
)

// Test Plan for CLI commands:
// - parse prints the markdown structure of a file or stdin
// - extract picks the kind from the file name, honors --kind and rejects unknown kinds
// - extract requires --kind for stdin
// - inventoryOptions applies flag overrides over configuration
// - inventory writes JSON and fails on an empty repository
// - render combines an inventory with YAML or JSON prose
// - render falls back to the inventory overview without prose
// - writeJSON keeps HTML characters unescaped

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestRunParse(t *testing.T) {
	t.Parallel()

	p := writeFile(t, "guide.md", "# Guide\n\nIntro.\n\n```go\nx := 1\n```\n")
	var out bytes.Buffer

	require.NoError(t, runParse(&out, nil, p))

	var doc markdown.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Guide", doc.Sections[0].Heading)
	assert.Equal(t, []string{"x := 1"}, doc.CodeBlocks)
}

func TestRunParse_Stdin(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, runParse(&out, strings.NewReader("## Usage\n\nSee [docs](https://example.com).\n"), "-"))

	var doc markdown.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, []string{"https://example.com"}, doc.Links)
}

func TestRunParse_MissingFile(t *testing.T) {
	t.Parallel()

	err := runParse(&bytes.Buffer{}, nil, filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestRunExtract(t *testing.T) {
	t.Parallel()

	p := writeFile(t, "client.go", "// Dial opens a connection.\nfunc Dial(addr string) (*Conn, error) {\n\treturn nil, nil\n}\n")

	tests := []struct {
		name    string
		kind    string
		wantSig bool
	}{
		{"kind from file name", "", true},
		{"explicit kind", string(extractor.KindGo), true},
		{"text kind yields nothing", string(extractor.KindText), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			require.NoError(t, runExtract(&out, nil, p, tt.kind))

			var res extractor.Result
			require.NoError(t, json.Unmarshal(out.Bytes(), &res))
			assert.True(t, res.Success)
			if tt.wantSig {
				require.NotEmpty(t, res.Signatures)
				assert.Contains(t, res.Signatures[0].Signature, "Dial(addr string)")
			} else {
				assert.Empty(t, res.Signatures)
			}
		})
	}
}

func TestRunExtract_RejectsBadInput(t *testing.T) {
	t.Parallel()

	err := runExtract(&bytes.Buffer{}, strings.NewReader("x"), "-", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--kind is required")

	err = runExtract(&bytes.Buffer{}, strings.NewReader("x"), "-", "cobol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown kind "cobol"`)
}

func TestInventoryOptions(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Crawl.Enabled = true
	cfg.Crawl.Window = 3
	sink := &logsink.Memory{}

	opts, err := inventoryOptions(cfg, sink, "", 0)
	require.NoError(t, err)
	assert.Equal(t, retriever.PhaseAll, opts.Phase)
	assert.Equal(t, cfg.Retrieval.MaxFiles, opts.MaxFiles)
	assert.True(t, opts.Crawl)
	assert.Equal(t, 3, opts.CrawlOptions.Window)
	assert.Same(t, sink, opts.Sink)

	opts, err = inventoryOptions(cfg, sink, "DOCS", 4)
	require.NoError(t, err)
	assert.Equal(t, retriever.PhaseDocs, opts.Phase)
	assert.Equal(t, 4, opts.MaxFiles)

	_, err = inventoryOptions(cfg, sink, "binary", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --phase")
}

func TestRunInventory(t *testing.T) {
	t.Parallel()

	mock := hosting.NewMockClient()
	mock.Repo.FullName = "acme/widget"
	mock.AddFile("main", "README.md", "# Widget\n\n## Overview\n\nWidgets for everyone.\n")
	repo := hosting.RepoRef{Owner: "acme", Name: "widget"}

	var out bytes.Buffer
	require.NoError(t, runInventory(context.Background(), &out, mock, pipeline.Options{}, repo))

	var inv pipeline.Inventory
	require.NoError(t, json.Unmarshal(out.Bytes(), &inv))
	assert.True(t, inv.Success)
	assert.Equal(t, "acme/widget", inv.Repo)
	assert.Equal(t, "Widgets for everyone.", inv.Overview)
}

func TestRunInventory_EmptyRepository(t *testing.T) {
	t.Parallel()

	repo := hosting.RepoRef{Owner: "acme", Name: "empty"}
	var out bytes.Buffer

	err := runInventory(context.Background(), &out, hosting.NewMockClient(), pipeline.Options{}, repo)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventory of acme/empty failed")
	assert.Contains(t, out.String(), `"success": false`, "the inventory is written before failing")
}

const renderInventory = `{
  "repo": "acme/widget",
  "repo_url": "https://github.com/acme/widget",
  "overview": "Widgets for everyone.",
  "signatures": [
    {"signature": "connect(host)", "description": "Open a connection."},
    {"signature": "close()", "description": "Close it."}
  ],
  "success": true
}`

func TestRunRender_WithProse(t *testing.T) {
	t.Parallel()

	invPath := writeFile(t, "inventory.json", renderInventory)
	prosePath := writeFile(t, "prose.yml", `purpose: Connect widgets.
concepts:
  - Connections are pooled
patterns:
  - title: Connect
    description: Open and close.
    example: connect("db")
    language: js
`)

	var out bytes.Buffer
	require.NoError(t, runRender(context.Background(), &out, nil, invPath, prosePath, 1))

	doc := out.String()
	assert.True(t, strings.HasPrefix(doc, "# acme/widget\n"))
	assert.Contains(t, doc, "## Overview\n\nConnect widgets.\n")
	assert.Contains(t, doc, "- Connections are pooled\n")
	assert.Contains(t, doc, "- `connect(host)`: Open a connection.\n")
	assert.NotContains(t, doc, "close()", "max-apis caps the API Reference")
	assert.Contains(t, doc, "### Connect\n\nOpen and close.\n\n```js\nconnect(\"db\")\n```\n")
	assert.Contains(t, doc, "_Generated by project-atlas from https://github.com/acme/widget._")
}

func TestRunRender_JSONProseFromStdinInventory(t *testing.T) {
	t.Parallel()

	prosePath := writeFile(t, "prose.json", `{"purpose": "From JSON.", "concepts": [], "patterns": []}`)

	var out bytes.Buffer
	require.NoError(t, runRender(context.Background(), &out, strings.NewReader(renderInventory), "-", prosePath, 0))

	assert.Contains(t, out.String(), "## Overview\n\nFrom JSON.\n")
	assert.Contains(t, out.String(), "- `close()`: Close it.\n")
}

func TestRunRender_OverviewFallback(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, runRender(context.Background(), &out, strings.NewReader(renderInventory), "-", "", 0))

	assert.Contains(t, out.String(), "## Overview\n\nWidgets for everyone.\n")
}

func TestRunRender_BadInventory(t *testing.T) {
	t.Parallel()

	err := runRender(context.Background(), &bytes.Buffer{}, strings.NewReader("not json"), "-", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode inventory")
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, writeJSON(&out, map[string]string{"sig": "Vec<T> & Option<U>"}))
	assert.Equal(t, "{\n  \"sig\": \"Vec<T> & Option<U>\"\n}\n", out.String())
}
