package crawler

// ProgressReporter receives crawl progress callbacks.
type ProgressReporter interface {
	OnCrawlStart(startURL string, maxPages int)

	// OnPageScraped is called for each page that loaded, with the number of
	// new records it contributed.
	OnPageScraped(pageURL string, records int)

	OnCrawlComplete(pages, records int)
}

// NoOpProgressReporter discards all progress.
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnCrawlStart(startURL string, maxPages int) {}
func (n *NoOpProgressReporter) OnPageScraped(pageURL string, records int) {}
func (n *NoOpProgressReporter) OnCrawlComplete(pages, records int)        {}
