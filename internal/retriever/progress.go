package retriever

// ProgressReporter receives retrieval progress callbacks.
type ProgressReporter interface {
	// OnRetrievalStart is called once the branch is resolved.
	OnRetrievalStart(phase Phase, maxFiles int)

	// OnFileFetched is called after each successful fetch.
	OnFileFetched(path string, truncated bool)

	// OnRetrievalComplete is called when the phase finishes.
	OnRetrievalComplete(fetched int)
}

// NoOpProgressReporter discards all progress.
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnRetrievalStart(phase Phase, maxFiles int) {}
func (n *NoOpProgressReporter) OnFileFetched(path string, truncated bool) {}
func (n *NoOpProgressReporter) OnRetrievalComplete(fetched int) {}
