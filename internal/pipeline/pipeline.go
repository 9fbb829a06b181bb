// Package pipeline runs the full discovery and extraction flow for one
// repository and produces an Inventory for a downstream summarizer.
//
// The order is fixed: resolve, retrieve, parse and extract each file, merge,
// then optionally crawl the best-ranked website source. Every stage degrades
// on its own; only an empty retrieval marks the inventory unsuccessful.
package pipeline

import (
	"context"
	"strings"

	"github.com/mvp-joe/project-atlas/internal/crawler"
	"github.com/mvp-joe/project-atlas/internal/extractor"
	"github.com/mvp-joe/project-atlas/internal/hosting"
	"github.com/mvp-joe/project-atlas/internal/logsink"
	"github.com/mvp-joe/project-atlas/internal/markdown"
	"github.com/mvp-joe/project-atlas/internal/resolver"
	"github.com/mvp-joe/project-atlas/internal/retriever"
)

const (
	DefaultMaxFiles   = 20
	DefaultCrawlPages = crawler.DefaultMaxPages
)

// overviewHeadings are tried in order when picking the overview section.
var overviewHeadings = []string{"overview", "introduction", "about", "what is"}

// FileSummary describes one retrieved file.
type FileSummary struct {
	Path            string             `json:"path"`
	Kind            extractor.Kind     `json:"kind"`
	EstimatedTokens int                `json:"estimated_tokens"`
	Truncated       bool               `json:"truncated"`
	Documentation   bool               `json:"documentation"`
	Signatures      int                `json:"signatures"`
	ExtractError    string             `json:"extract_error,omitempty"`
	Outline         []markdown.Section `json:"outline,omitempty"`
	CodeBlocks      int                `json:"code_blocks,omitempty"`
	Links           int                `json:"links,omitempty"`
}

// Inventory is the structured output of a run.
type Inventory struct {
	RunID      string                `json:"run_id"`
	Repo       string                `json:"repo"`
	RepoURL    string                `json:"repo_url"`
	Branch     string                `json:"branch"`
	Resolution *resolver.Resolution  `json:"resolution"`
	Files      []FileSummary         `json:"files"`
	Overview   string                `json:"overview,omitempty"`
	Signatures []extractor.Signature `json:"signatures"`
	Crawl      *crawler.Result       `json:"crawl,omitempty"`
	Success    bool                  `json:"success"`
	Error      string                `json:"error,omitempty"`
}

// Options configures a Pipeline. Zero values select defaults.
type Options struct {
	Sink     logsink.Sink
	Phase    retriever.Phase
	MaxFiles int

	// Retrieval carries truncation limits, denylist and progress; its Sink
	// is replaced by the run's sink.
	Retrieval retriever.Options

	Crawl      bool
	CrawlPages int

	// CrawlOptions configures the crawler; its Sink is replaced by the run's sink.
	CrawlOptions crawler.Options
}

// Pipeline runs inventories against one hosting client.
type Pipeline struct {
	client hosting.Client
	opts   Options
}

// New creates a Pipeline.
func New(client hosting.Client, opts Options) *Pipeline {
	if opts.Phase == "" {
		opts.Phase = retriever.PhaseAll
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = DefaultMaxFiles
	}
	if opts.CrawlPages <= 0 {
		opts.CrawlPages = DefaultCrawlPages
	}
	return &Pipeline{client: client, opts: opts}
}

// Run inventories repo. It never returns nil.
func (p *Pipeline) Run(ctx context.Context, repo hosting.RepoRef) *Inventory {
	runID := logsink.NewRunID()
	sink := logsink.WithRunID(p.opts.Sink, runID)
	log := logsink.NewLogger(p.opts.Sink, "pipeline").WithRun(runID)

	inv := &Inventory{
		RunID:      runID,
		Repo:       repo.String(),
		RepoURL:    repo.URL(),
		Files:      []FileSummary{},
		Signatures: []extractor.Signature{},
	}
	log.Info("run started", "repo", inv.Repo, "phase", string(p.opts.Phase), "max_files", p.opts.MaxFiles)

	inv.Resolution = resolver.New(p.client, resolver.Options{Sink: sink}).Resolve(ctx, repo)

	retrievalOpts := p.opts.Retrieval
	retrievalOpts.Sink = sink
	retrievalOpts.DocDirectories = append(inv.Resolution.DocDirectories(), retrievalOpts.DocDirectories...)
	retrieved := retriever.New(p.client, retrievalOpts).Retrieve(ctx, repo, p.opts.Phase, p.opts.MaxFiles)
	inv.Branch = retrieved.Branch

	var sets [][]extractor.Signature
	for _, f := range retrieved.Files {
		summary, sigs := summarize(f)
		if summary.ExtractError != "" {
			log.Warn("extraction failed", "path", f.Path, "error", summary.ExtractError)
		}
		if inv.Overview == "" && summary.Kind == extractor.KindMarkdown {
			inv.Overview = overview(markdown.Parse(f.Content))
		}
		inv.Files = append(inv.Files, summary)
		sets = append(sets, sigs)
	}

	if p.opts.Crawl {
		if site, ok := inv.Resolution.Website(); ok {
			inv.Crawl = p.crawl(ctx, sink, site.Locator, inv.Resolution.PrimaryLanguage)
			sets = append(sets, crawlSignatures(inv.Crawl))
		} else {
			log.Debug("no website source to crawl", "repo", inv.Repo)
		}
	}

	inv.Signatures = extractor.Merge(sets...)
	inv.Success = retrieved.Success
	inv.Error = retrieved.Error

	log.Info("run finished", "repo", inv.Repo, "files", len(inv.Files), "signatures", len(inv.Signatures),
		"success", inv.Success)
	return inv
}

func (p *Pipeline) crawl(ctx context.Context, sink logsink.Sink, site, language string) *crawler.Result {
	opts := p.opts.CrawlOptions
	opts.Sink = sink
	return crawler.New(opts).Crawl(ctx, crawler.Request{
		URL:      site,
		MaxPages: p.opts.CrawlPages,
		Language: strings.ToLower(language),
	})
}

// summarize extracts one file, flags documentation kinds and, for markdown,
// records its outline.
func summarize(f retriever.FetchedFile) (FileSummary, []extractor.Signature) {
	res := extractor.Extract(f.Content, f.Kind)
	summary := FileSummary{
		Path:            f.Path,
		Kind:            f.Kind,
		EstimatedTokens: f.EstimatedTokens,
		Truncated:       f.Truncated,
		Documentation:   f.Kind.IsDocumentation(),
		Signatures:      len(res.Signatures),
		ExtractError:    res.Error,
	}
	if f.Kind == extractor.KindMarkdown {
		doc := markdown.Parse(f.Content)
		summary.Outline = outline(doc)
		summary.CodeBlocks = len(doc.CodeBlocks)
		summary.Links = len(doc.Links)
	}
	return summary, res.Signatures
}

// outline keeps level 1-3 headings without their bodies.
func outline(doc *markdown.Document) []markdown.Section {
	var out []markdown.Section
	for _, s := range doc.SectionsAtLevel(1, 3) {
		out = append(out, markdown.Section{Heading: s.Heading, Level: s.Level})
	}
	return out
}

// overview returns the body of the first overview-like section, falling back
// to the first section with a body.
func overview(doc *markdown.Document) string {
	for _, h := range overviewHeadings {
		if s, ok := doc.Find(h); ok && s.Content != "" {
			return s.Content
		}
	}
	for _, s := range doc.Sections {
		if s.Content != "" {
			return s.Content
		}
	}
	return ""
}

func crawlSignatures(res *crawler.Result) []extractor.Signature {
	out := make([]extractor.Signature, 0, len(res.Records))
	for _, r := range res.Records {
		out = append(out, extractor.Signature{
			Signature:   r.Signature,
			Description: r.Description,
			Category:    r.Category,
		})
	}
	return out
}
