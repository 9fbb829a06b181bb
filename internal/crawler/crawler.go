// Package crawler scrapes signature-like records from documentation sites.
//
// A crawl is a bounded breadth-first walk from a start URL. Each page is read
// with the profile registered for its host, or a generic profile, and the
// API-ish links it carries extend the frontier until the page budget is spent.
package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mvp-joe/project-atlas/internal/extractor"
	"github.com/mvp-joe/project-atlas/internal/logsink"
)

const (
	DefaultMaxPages = 10
	DefaultWindow   = 6

	maxPageBytes = 8 << 20
)

var (
	ErrInvalidURL = errors.New("crawl start URL must be absolute http(s)")
	ErrNotHTML    = errors.New("response is not HTML")
	ErrNoneFound  = errors.New("no records found")
)

// Request describes one crawl.
type Request struct {
	URL      string
	MaxPages int
	Language string
}

// Record is one documented entity found on a page.
type Record struct {
	Name        string             `json:"name"`
	Signature   string             `json:"signature"`
	Description string             `json:"description"`
	SourceURL   string             `json:"source_url"`
	Category    extractor.Category `json:"category"`
}

// Result is the outcome of a crawl.
type Result struct {
	Records      []Record `json:"records"`
	PagesScraped int      `json:"pages_scraped"`
	Success      bool     `json:"success"`
	Error        string   `json:"error,omitempty"`
}

// Fetcher retrieves a page body.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// HTTPFetcher fetches pages over HTTP and rejects non-HTML responses.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher creates an HTTPFetcher with the given timeout.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if userAgent == "" {
		userAgent = "project-atlas"
	}
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}, UserAgent: userAgent}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("request %s: status %d", pageURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || (mediaType != "text/html" && mediaType != "application/xhtml+xml") {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("%s (%s): %w", pageURL, ct, ErrNotHTML)
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pageURL, err)
	}
	return body, nil
}

// Options configures a Crawler. Zero values select defaults.
type Options struct {
	Fetcher  Fetcher
	Sink     logsink.Sink
	Progress ProgressReporter

	// Window is the number of sibling elements searched after a heading.
	Window int

	// UserAgent and Timeout apply to the default HTTP fetcher.
	UserAgent string
	Timeout   time.Duration
}

// Crawler runs bounded documentation crawls.
type Crawler struct {
	fetcher  Fetcher
	window   int
	log      *logsink.Logger
	progress ProgressReporter
}

// New creates a Crawler.
func New(opts Options) *Crawler {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(opts.UserAgent, opts.Timeout)
	}
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}
	progress := opts.Progress
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	return &Crawler{
		fetcher:  fetcher,
		window:   window,
		log:      logsink.NewLogger(opts.Sink, "crawler"),
		progress: progress,
	}
}

// Crawl walks the site breadth-first from req.URL. It never returns nil.
// Pages that fail to load are logged and skipped; they do not count toward
// the page budget.
func (c *Crawler) Crawl(ctx context.Context, req Request) *Result {
	result := &Result{Records: []Record{}}

	start, err := url.Parse(req.URL)
	if err != nil || (start.Scheme != "http" && start.Scheme != "https") || start.Host == "" {
		result.Error = fmt.Sprintf("%v: %q", ErrInvalidURL, req.URL)
		return result
	}
	start.Fragment = ""

	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	c.log.Info("crawl started", "url", start.String(), "max_pages", maxPages, "language", req.Language)
	c.progress.OnCrawlStart(start.String(), maxPages)

	queue := []string{start.String()}
	visited := map[string]bool{start.String(): true}
	seen := make(map[string]bool)

	for len(queue) > 0 && result.PagesScraped < maxPages {
		if ctx.Err() != nil {
			c.log.Warn("crawl cancelled", "error", ctx.Err())
			break
		}

		current := queue[0]
		queue = queue[1:]

		records, links, err := c.scrape(ctx, current, req.Language)
		if err != nil {
			c.log.Warn("page skipped", "url", current, "error", err)
			continue
		}
		result.PagesScraped++

		added := 0
		for _, r := range records {
			key := r.Name + "\x00" + r.Signature
			if seen[key] {
				continue
			}
			seen[key] = true
			result.Records = append(result.Records, r)
			added++
		}
		for _, link := range links {
			if !visited[link] {
				visited[link] = true
				queue = append(queue, link)
			}
		}

		c.log.Debug("page scraped", "url", current, "records", added, "links", len(links))
		c.progress.OnPageScraped(current, added)
	}

	result.Success = len(result.Records) > 0
	if !result.Success {
		result.Error = ErrNoneFound.Error()
	}
	c.log.Info("crawl finished", "url", start.String(), "pages", result.PagesScraped, "records", len(result.Records))
	c.progress.OnCrawlComplete(result.PagesScraped, len(result.Records))
	return result
}

func (c *Crawler) scrape(ctx context.Context, pageURL, language string) ([]Record, []string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, err
	}
	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	records, links := scrapePage(doc, u, ProfileFor(u.Hostname()), language, c.window)
	return records, links, nil
}
