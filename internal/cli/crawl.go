package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/crawler"
)

var (
	crawlMaxPagesFlag int
	crawlLanguageFlag string
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl <url>",
	Short: "Scrape documented API entities from a documentation site",
	Long: `Crawl walks a documentation site breadth-first from the given page,
following same-host links, and prints the documented entities it finds as JSON.

Examples:
  atlas crawl https://docs.rs/serde/latest/serde/ --max-pages 5
  atlas crawl https://requests.readthedocs.io/en/latest/api/ --language python
`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawlCmd,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	crawlCmd.Flags().IntVar(&crawlMaxPagesFlag, "max-pages", 0, "Maximum pages to scrape (overrides crawl.max_pages)")
	crawlCmd.Flags().StringVar(&crawlLanguageFlag, "language", "", "Language hint for signature patterns (e.g. python, rust)")
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	maxPages := crawlMaxPagesFlag
	if maxPages <= 0 {
		maxPages = s.cfg.Crawl.MaxPages
	}

	opts := s.cfg.CrawlOptions()
	opts.Sink = s.sink
	opts.Progress = NewCLIProgressReporter(os.Stderr, quiet)

	ctx, cancel := signalContext()
	defer cancel()

	req := crawler.Request{URL: args[0], MaxPages: maxPages, Language: crawlLanguageFlag}
	return runCrawl(ctx, cmd.OutOrStdout(), crawler.New(opts), req)
}

func runCrawl(ctx context.Context, w io.Writer, c *crawler.Crawler, req crawler.Request) error {
	res := c.Crawl(ctx, req)
	if err := writeJSON(w, res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("crawl of %s failed: %s", req.URL, res.Error)
	}
	return nil
}
