package cli

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/project-atlas/internal/crawler"
	"github.com/mvp-joe/project-atlas/internal/retriever"
)

// CLIProgressReporter draws progress bars for retrieval and crawling.
type CLIProgressReporter struct {
	quiet     bool
	out       io.Writer
	fileBar   *progressbar.ProgressBar
	pageBar   *progressbar.ProgressBar
	startTime time.Time
	truncated int
}

var (
	_ retriever.ProgressReporter = (*CLIProgressReporter)(nil)
	_ crawler.ProgressReporter   = (*CLIProgressReporter)(nil)
)

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:     quiet,
		out:       out,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) newBar(max int, description, its string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(its),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnRetrievalStart(phase retriever.Phase, maxFiles int) {
	if c.quiet {
		return
	}
	c.truncated = 0
	c.fileBar = c.newBar(maxFiles, fmt.Sprintf("Retrieving %s files", phase), "files/s")
}

func (c *CLIProgressReporter) OnFileFetched(path string, truncated bool) {
	if c.quiet {
		return
	}
	if truncated {
		c.truncated++
	}
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnRetrievalComplete(fetched int) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		closeBar(c.fileBar, fetched)
		c.fileBar = nil
	}
	if c.truncated > 0 {
		log.Printf("Warning: %d file(s) truncated to the retrieval limit\n", c.truncated)
	}
	fmt.Fprintf(c.out, "✓ Retrieved %d file(s)\n", fetched)
}

func (c *CLIProgressReporter) OnCrawlStart(startURL string, maxPages int) {
	if c.quiet {
		return
	}
	log.Printf("Crawling %s\n", startURL)
	c.pageBar = c.newBar(maxPages, "Crawling pages", "pages/s")
}

func (c *CLIProgressReporter) OnPageScraped(pageURL string, records int) {
	if c.quiet {
		return
	}
	if c.pageBar != nil {
		c.pageBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnCrawlComplete(pages, records int) {
	if c.quiet {
		return
	}
	if c.pageBar != nil {
		closeBar(c.pageBar, pages)
		c.pageBar = nil
	}
	fmt.Fprintf(c.out, "✓ Crawl complete: %s record(s) from %d page(s) in %.1fs\n",
		formatNumber(records), pages, time.Since(c.startTime).Seconds())
}

// closeBar finishes bar at done, since budgets are upper bounds.
func closeBar(bar *progressbar.ProgressBar, done int) {
	if done == 0 {
		_ = bar.Exit()
		return
	}
	bar.ChangeMax(done)
	_ = bar.Finish()
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
