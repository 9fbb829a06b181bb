package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/hosting"
	"github.com/mvp-joe/project-atlas/internal/logsink"
	"github.com/mvp-joe/project-atlas/internal/resolver"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <owner/name | url>",
	Short: "Show a repository's language, documentation sources and structure",
	Long: `Resolve reports the primary language, the language breakdown, ranked
documentation sources, the package-manager binding and the project structure
of a repository as JSON.

Examples:
  atlas resolve pallets/flask
  atlas resolve git@github.com:rust-lang/regex.git
`,
	Args: cobra.ExactArgs(1),
	RunE: runResolveCmd,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolveCmd(cmd *cobra.Command, args []string) error {
	repo, err := hosting.ParseRepoRef(args[0])
	if err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := signalContext()
	defer cancel()

	return runResolve(ctx, cmd.OutOrStdout(), s.client, s.sink, repo)
}

func runResolve(ctx context.Context, w io.Writer, client hosting.Client, sink logsink.Sink, repo hosting.RepoRef) error {
	res := resolver.New(client, resolver.Options{Sink: sink}).Resolve(ctx, repo)
	if err := writeJSON(w, res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("resolution of %s failed: %s", repo, res.Error)
	}
	return nil
}
