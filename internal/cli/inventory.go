package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/config"
	"github.com/mvp-joe/project-atlas/internal/hosting"
	"github.com/mvp-joe/project-atlas/internal/logsink"
	"github.com/mvp-joe/project-atlas/internal/pipeline"
	"github.com/mvp-joe/project-atlas/internal/retriever"
)

var (
	inventoryCrawlFlag    bool
	inventoryPhaseFlag    string
	inventoryMaxFilesFlag int
	inventoryOutFlag      string
)

// inventoryCmd represents the inventory command
var inventoryCmd = &cobra.Command{
	Use:   "inventory <owner/name | url>",
	Short: "Inventory a repository's API surface as JSON",
	Long: `Inventory resolves a repository, retrieves its documentation and source
files, extracts API signatures from each file and merges them into one JSON
document for a downstream summarizer.

Examples:
  # Inventory with configured defaults
  atlas inventory spf13/cobra

  # Include the documentation website and write to a file
  atlas inventory https://github.com/psf/requests --crawl --out requests.json

  # Only documentation files, at most 5
  atlas inventory tokio-rs/tokio --phase docs --max-files 5
`,
	Args: cobra.ExactArgs(1),
	RunE: runInventoryCmd,
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.Flags().BoolVar(&inventoryCrawlFlag, "crawl", false, "Crawl the best website source (overrides crawl.enabled)")
	inventoryCmd.Flags().StringVar(&inventoryPhaseFlag, "phase", "", "Retrieval phase: docs, types, source or all")
	inventoryCmd.Flags().IntVar(&inventoryMaxFilesFlag, "max-files", 0, "Maximum files to retrieve (overrides retrieval.max_files)")
	inventoryCmd.Flags().StringVarP(&inventoryOutFlag, "out", "o", "", "Write the inventory to a file instead of stdout")
}

func runInventoryCmd(cmd *cobra.Command, args []string) error {
	repo, err := hosting.ParseRepoRef(args[0])
	if err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	if cmd.Flags().Changed("crawl") {
		s.cfg.Crawl.Enabled = inventoryCrawlFlag
	}
	opts, err := inventoryOptions(s.cfg, s.sink, inventoryPhaseFlag, inventoryMaxFilesFlag)
	if err != nil {
		return err
	}
	progress := NewCLIProgressReporter(os.Stderr, quiet)
	opts.Retrieval.Progress = progress
	opts.CrawlOptions.Progress = progress

	ctx, cancel := signalContext()
	defer cancel()

	w, closeOut, err := output(cmd.OutOrStdout(), inventoryOutFlag)
	if err != nil {
		return err
	}
	defer closeOut()

	return runInventory(ctx, w, s.client, opts, repo)
}

// inventoryOptions merges flag overrides into the configured pipeline options.
func inventoryOptions(cfg *config.Config, sink logsink.Sink, phase string, maxFiles int) (pipeline.Options, error) {
	if phase == "" {
		phase = cfg.Retrieval.Phase
	}
	p, err := retriever.ParsePhase(phase)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("invalid --phase %q: %w", phase, err)
	}
	if maxFiles <= 0 {
		maxFiles = cfg.Retrieval.MaxFiles
	}
	return pipeline.Options{
		Sink:         sink,
		Phase:        p,
		MaxFiles:     maxFiles,
		Retrieval:    cfg.RetrievalOptions(),
		Crawl:        cfg.Crawl.Enabled,
		CrawlPages:   cfg.Crawl.MaxPages,
		CrawlOptions: cfg.CrawlOptions(),
	}, nil
}

// runInventory runs the pipeline and writes the inventory. An unsuccessful
// inventory is still written before the error is returned.
func runInventory(ctx context.Context, w io.Writer, client hosting.Client, opts pipeline.Options, repo hosting.RepoRef) error {
	inv := pipeline.New(client, opts).Run(ctx, repo)
	if err := writeJSON(w, inv); err != nil {
		return err
	}
	if !inv.Success {
		return fmt.Errorf("inventory of %s failed: %s", inv.Repo, inv.Error)
	}
	return nil
}
