package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Extractor:
// - Markdown list item with inline code yields one deduplicated signature
// - Manifest exports map, main and types become export entries
// - Export subpaths and conditions keep their declaration order
// - Malformed manifest fails the call with an empty result
// - Repeated extraction is order-stable with no duplicate signatures
// - Names outside 2..100 characters are discarded
// - Default descriptions fill in when no prose is adjacent
// - Fenced code call chains skip builtin roots
// - Fences with info attributes, foreign tilde lines and longer runs keep code and prose apart
// - API-shaped headings and RST directives pick up the following prose
// - Each source kind recognises its core declaration idioms
// - KindForPath classifies by name and extension
// - Register adds passes for new kinds; unknown kinds succeed empty
// - Merge unions and re-deduplicates

func signatures(r Result) []string {
	out := make([]string, 0, len(r.Signatures))
	for _, s := range r.Signatures {
		out = append(out, s.Signature)
	}
	return out
}

func TestExtract_MarkdownListItem(t *testing.T) {
	t.Parallel()

	r := Extract("* `foo(x)` - does foo", KindMarkdown)

	require.True(t, r.Success)
	require.Len(t, r.Signatures, 1)
	assert.Equal(t, "foo(x)", r.Signatures[0].Signature)
	assert.Equal(t, "does foo", r.Signatures[0].Description)
}

func TestExtract_ManifestExports(t *testing.T) {
	t.Parallel()

	r := Extract(`{"exports":{".":"./index.js"},"main":"./index.js","types":"./index.d.ts"}`, KindManifest)

	require.True(t, r.Success)
	assert.Equal(t, []string{".", "main", "types"}, signatures(r))
	for _, s := range r.Signatures {
		assert.Equal(t, CategoryExport, s.Category)
	}
}

func TestExtract_ManifestConditions(t *testing.T) {
	t.Parallel()

	manifest := `{
  "exports": {
    ".": {"import": "./esm/index.js", "require": "./cjs/index.js"},
    "./utils": "./utils.js"
  }
}`
	r := Extract(manifest, KindManifest)

	require.True(t, r.Success)
	assert.Equal(t, []string{". (import)", ". (require)", "./utils"}, signatures(r))
}

func TestExtract_ManifestKeepsDeclarationOrder(t *testing.T) {
	t.Parallel()

	manifest := `{
  "exports": {
    "./server": {"types": "./server.d.ts", "import": "./server.mjs", "default": "./server.js"},
    ".": {"node": {"require": "./node.cjs", "import": "./node.mjs"}, "default": "./index.js"}
  },
  "main": 3
}`
	r := Extract(manifest, KindManifest)

	require.True(t, r.Success)
	assert.Equal(t, []string{
		"./server (types)",
		"./server (import)",
		"./server (default)",
		". (node.require)",
		". (node.import)",
		". (default)",
	}, signatures(r), "conditions keep manifest order; a non-string main is ignored")
}

func TestExtract_MalformedManifest(t *testing.T) {
	t.Parallel()

	r := Extract(`{"exports": {`, KindManifest)

	assert.False(t, r.Success)
	assert.NotNil(t, r.Signatures)
	assert.Empty(t, r.Signatures)
	assert.NotEmpty(t, r.Error)
}

func TestExtract_DedupIdempotence(t *testing.T) {
	t.Parallel()

	content := "## API\n\n" +
		"* `open(path)` - opens a file\n" +
		"* `open(path)` - opens a file again\n" +
		"| `close(fd)` | closes it |\n" +
		"```\nfs.open(path)\nfs.open(path)\n```\n"

	first := Extract(content, KindMarkdown)
	second := Extract(content, KindMarkdown)

	require.True(t, first.Success)
	assert.Equal(t, first, second)

	seen := map[string]bool{}
	for _, s := range first.Signatures {
		assert.False(t, seen[s.Signature], "duplicate %q", s.Signature)
		seen[s.Signature] = true
	}
	assert.Equal(t, []string{"open(path)", "close(fd)", "fs.open(path)"}, signatures(first))
	assert.Equal(t, "opens a file", first.Signatures[0].Description)
}

func TestExtract_NameLengthBounds(t *testing.T) {
	t.Parallel()

	r := Extract("* `x` - too short\n", KindMarkdown)

	assert.True(t, r.Success)
	assert.Empty(t, r.Signatures)
}

func TestExtract_DefaultDescription(t *testing.T) {
	t.Parallel()

	r := Extract("package demo\n\nfunc Run() {}\n", KindGo)

	require.Len(t, r.Signatures, 1)
	assert.Equal(t, "func Run()", r.Signatures[0].Signature)
	assert.Equal(t, "Function", r.Signatures[0].Description)
}

func TestExtract_FencedCalls(t *testing.T) {
	t.Parallel()

	r := Extract("```js\nclient.users.list({ page: 2 })\nconsole.log(x)\n```\n", KindMarkdown)

	require.Len(t, r.Signatures, 1)
	assert.Equal(t, "client.users.list({ page: 2 })", r.Signatures[0].Signature)
	assert.Equal(t, CategoryCall, r.Signatures[0].Category)
}

func TestExtract_FenceForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"info attributes", "## Usage\n```js title=\"app.js\"\nclient.connect(opts)\n```\n\n* `foo(x)` - does foo\n"},
		{"tilde line inside backticks", "## Usage\n```\nclient.connect(opts)\n~~~\n```\n\n* `foo(x)` - does foo\n"},
		{"four backtick fence", "## Usage\n````md\n```\nclient.connect(opts)\n```\n````\n\n* `foo(x)` - does foo\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := Extract(tt.content, KindMarkdown)

			require.True(t, r.Success)
			bySig := map[string]Signature{}
			for _, s := range r.Signatures {
				bySig[s.Signature] = s
			}
			require.Contains(t, bySig, "client.connect(opts)")
			assert.Equal(t, CategoryCall, bySig["client.connect(opts)"].Category)
			require.Contains(t, bySig, "foo(x)")
			assert.Equal(t, "does foo", bySig["foo(x)"].Description)
		})
	}
}

func TestExtract_HeadingsAndDirectives(t *testing.T) {
	t.Parallel()

	md := Extract("## Client.connect(url)\nOpens a connection.\n", KindMarkdown)
	require.NotEmpty(t, md.Signatures)
	assert.Equal(t, Signature{
		Signature:   "Client.connect(url)",
		Description: "Opens a connection.",
		Category:    CategoryReference,
	}, md.Signatures[0])

	rst := Extract(".. py:function:: connect(host, port)\n\n   Open a connection.\n", KindRST)
	require.NotEmpty(t, rst.Signatures)
	assert.Equal(t, Signature{
		Signature:   "connect(host, port)",
		Description: "Open a connection.",
		Category:    CategoryFunction,
	}, rst.Signatures[0])
}

func TestExtract_SourceKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    Kind
		content string
		want    []string
		absent  []string
	}{
		{
			name: "go",
			kind: KindGo,
			content: `package demo

// Client talks to the API.
type Client struct {
	Name string
}

// New returns a client.
func New(name string) *Client {
	return &Client{Name: name}
}

// Do performs a request.
func (c *Client) Do(ctx context.Context) error {
	return nil
}

func helper() {}

const (
	// MaxSize is the limit.
	MaxSize = 10
	minSize = 1
)
`,
			want:   []string{"func New(name string) *Client", "func (c *Client) Do(ctx context.Context) error", "type Client struct", "const MaxSize"},
			absent: []string{"func helper()", "const minSize", "type Name"},
		},
		{
			name: "python",
			kind: KindPython,
			content: `class Parser(Base):
    """Parses things."""

    def __init__(self, src):
        self.src = src

    def parse(self, text: str) -> Tree:
        """Parse text into a tree."""
        return Tree()

    def _internal(self):
        pass

def load(path):
    '''Load a file.'''
    return Parser(path)

def _private():
    pass

@app.route("/items")
def items():
    pass
`,
			want:   []string{"class Parser(Base)", "def __init__(self, src)", "def parse(self, text: str) -> Tree", "def load(path)", `@app.route("/items")`},
			absent: []string{"def _internal(self)", "def _private()"},
		},
		{
			name: "rust",
			kind: KindRust,
			content: `/// Creates a buffer.
pub fn new_buffer(size: usize) -> Buffer {
    Buffer { size }
}

/// A growable buffer.
#[derive(Debug)]
pub struct Buffer<T> {
    size: usize,
}

pub trait Reader {
}

macro_rules! log_line {
    () => {};
}

fn hidden() {}
`,
			want:   []string{"fn new_buffer(size: usize) -> Buffer", "struct Buffer<T>", "trait Reader", "log_line!"},
			absent: []string{"fn hidden()"},
		},
		{
			name: "typescript",
			kind: KindTypeScript,
			content: `/** Formats a value. */
export function format(value: string, opts?: Options): string {
  return value;
}

export const parse = (input: string): Node => {
  return null;
};

export const VERSION: string = "1.0";

export interface Options {
  indent?: number;
  onChange: (v: string) => void;
}

export type Mode = "a" | "b";

export enum Color { Red }
`,
			want: []string{
				"format(value: string, opts?: Options): string",
				"parse(input: string): Node",
				"const VERSION: string",
				"interface Options",
				"onChange: (v: string) => void",
				`type Mode = "a" | "b"`,
				"enum Color",
			},
			absent: []string{"const parse"},
		},
		{
			name: "javascript",
			kind: KindJavaScript,
			content: `function add(a, b) {
  return a + b;
}

const double = x => x * 2;

class Store extends Base {
  fetch(key) {
    if (key) {
      return 1;
    }
  }
  _hidden() {}
}

exports.create = function (opts) {};
`,
			want:   []string{"add(a, b)", "double(x)", "class Store extends Base", "fetch(key)", "create(opts)"},
			absent: []string{"if(key)", "_hidden()"},
		},
		{
			name: "java",
			kind: KindJava,
			content: `/** A widget. */
public class Widget<T> {
    /** Renders it. */
    public String render(int width) {
        return "";
    }
    private void secret() {}
    public Widget() {}
}
`,
			want:   []string{"class Widget<T>", "String render(int width)"},
			absent: []string{"void secret()"},
		},
		{
			name: "ruby",
			kind: KindRuby,
			content: `# Manages sessions.
class SessionStore < Base
  attr_reader :name, :ttl

  # Fetches a session.
  def fetch(id)
  end

  def self.build
  end

  private

  def secret
  end
end
`,
			want:   []string{"class SessionStore < Base", "def fetch(id)", "def self.build", "attr_reader :name", "attr_reader :ttl"},
			absent: []string{"def secret"},
		},
		{
			name: "php",
			kind: KindPHP,
			content: `<?php
class Cart implements Countable
{
    public function add(Item $item): void
    {
    }
    private function recalc() {}
    public static function empty(): self {}
}
function helper_fn($x) {}
`,
			want:   []string{"class Cart implements Countable", "function add(Item $item): void", "static function empty(): self", "function helper_fn($x)"},
			absent: []string{"function recalc()"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := Extract(tt.content, tt.kind)
			require.True(t, r.Success)

			got := signatures(r)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, got, a)
			}
		})
	}
}

func TestExtract_LeadingComments(t *testing.T) {
	t.Parallel()

	r := Extract("// New returns a client.\nfunc New() *Client {\n}\n", KindGo)
	require.Len(t, r.Signatures, 1)
	assert.Equal(t, "New returns a client.", r.Signatures[0].Description)

	rs := Extract("/// A growable buffer.\n#[derive(Debug)]\npub struct Buffer {\n}\n", KindRust)
	require.Len(t, rs.Signatures, 1)
	assert.Equal(t, "A growable buffer.", rs.Signatures[0].Description)
}

func TestKindForPath(t *testing.T) {
	t.Parallel()

	tests := map[string]Kind{
		"README":             KindMarkdown,
		"README.md":          KindMarkdown,
		"docs/guide.rst":     KindRST,
		"dist/index.d.ts":    KindTypeScript,
		"package.json":       KindManifest,
		"pkg/a/package.json": KindManifest,
		"src/lib.rs":         KindRust,
		"main.go":            KindGo,
		"lib/index.mjs":      KindJavaScript,
		"notes.txt":          KindText,
	}
	for p, want := range tests {
		assert.Equal(t, want, KindForPath(p), p)
	}
	assert.True(t, KindRST.IsDocumentation())
	assert.False(t, KindGo.IsDocumentation())
}

func TestExtractor_Register(t *testing.T) {
	t.Parallel()

	e := New()
	e.Register(Kind("custom"), func(content string) ([]Signature, error) {
		return []Signature{{Signature: content, Description: "custom"}}, nil
	})

	r := e.Extract("thing()", Kind("custom"))
	require.True(t, r.Success)
	assert.Equal(t, []string{"thing()"}, signatures(r))

	unknown := e.Extract("thing()", Kind("nope"))
	assert.True(t, unknown.Success)
	assert.Empty(t, unknown.Signatures)

	assert.Equal(t, 1, e.Kinds()[Kind("custom")])
	assert.Equal(t, 6, e.Kinds()[KindMarkdown])
}

func TestMerge(t *testing.T) {
	t.Parallel()

	a := Signature{Signature: "a()", Description: "first"}
	b := Signature{Signature: "b()"}
	c := Signature{Signature: "c()"}
	dupA := Signature{Signature: "a()", Description: "second"}

	got := Merge([]Signature{a, b}, []Signature{dupA, c})

	assert.Equal(t, []Signature{a, b, c}, got)
}
