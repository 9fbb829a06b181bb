package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/hosting"
	"github.com/mvp-joe/project-atlas/internal/retriever"
)

var (
	retrievePhaseFlag    string
	retrieveMaxFilesFlag int
)

// retrieveCmd represents the retrieve command
var retrieveCmd = &cobra.Command{
	Use:   "retrieve <owner/name | url>",
	Short: "Fetch candidate files for one retrieval phase",
	Long: `Retrieve walks the candidate table for a phase and prints the fetched
files, including their (possibly truncated) content, as JSON.

Examples:
  atlas retrieve spf13/viper --phase types
  atlas retrieve vitejs/vite --phase docs --max-files 3
`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieveCmd,
}

func init() {
	rootCmd.AddCommand(retrieveCmd)
	retrieveCmd.Flags().StringVar(&retrievePhaseFlag, "phase", "", "Retrieval phase: docs, types, source or all")
	retrieveCmd.Flags().IntVar(&retrieveMaxFilesFlag, "max-files", 0, "Maximum files to retrieve (overrides retrieval.max_files)")
}

func runRetrieveCmd(cmd *cobra.Command, args []string) error {
	repo, err := hosting.ParseRepoRef(args[0])
	if err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	phase := retrievePhaseFlag
	if phase == "" {
		phase = s.cfg.Retrieval.Phase
	}
	p, err := retriever.ParsePhase(phase)
	if err != nil {
		return fmt.Errorf("invalid --phase %q: %w", phase, err)
	}
	maxFiles := retrieveMaxFilesFlag
	if maxFiles <= 0 {
		maxFiles = s.cfg.Retrieval.MaxFiles
	}

	opts := s.cfg.RetrievalOptions()
	opts.Sink = s.sink
	opts.Progress = NewCLIProgressReporter(os.Stderr, quiet)

	ctx, cancel := signalContext()
	defer cancel()

	return runRetrieve(ctx, cmd.OutOrStdout(), retriever.New(s.client, opts), repo, p, maxFiles)
}

func runRetrieve(ctx context.Context, w io.Writer, r *retriever.Retriever, repo hosting.RepoRef, phase retriever.Phase, maxFiles int) error {
	res := r.Retrieve(ctx, repo, phase, maxFiles)
	if err := writeJSON(w, res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("retrieval of %s failed: %s", repo, res.Error)
	}
	return nil
}
