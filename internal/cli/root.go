package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/config"
	"github.com/mvp-joe/project-atlas/internal/hosting"
	"github.com/mvp-joe/project-atlas/internal/logsink"
)

var (
	verbose bool
	quiet   bool
	logFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Atlas - inventory a repository's public API surface",
	Long: `Atlas turns a hosted repository into a deterministic inventory of its
public API signatures and documentation structure.

It resolves where the documentation lives, retrieves candidate files within
a token budget, extracts signatures with language-aware patterns and can
crawl the project's documentation site. The JSON inventory feeds a prose
summarizer; "atlas render" assembles the final markdown.

Configuration is read from .atlas/config.yml (then ~/.atlas/config.yml) and
ATLAS_* environment variables. GITHUB_TOKEN is used when no token is set.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug log lines")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Disable progress bars and informational output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append the execution log as JSON lines (overrides log.path)")
}

// session holds what every remote command needs.
type session struct {
	cfg    *config.Config
	sink   logsink.Sink
	client hosting.Client
	close  func() error
}

// newSession loads configuration and builds the log sink and hosting client.
func newSession() (*session, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logFile != "" {
		cfg.Log.Path = logFile
	}
	if verbose {
		cfg.Log.Verbose = true
	}

	s := &session{cfg: cfg, close: func() error { return nil }}

	std := logsink.NewStdSink(log.New(os.Stderr, "", log.LstdFlags), cfg.Log.Verbose)
	if quiet && !cfg.Log.Verbose {
		std = nil
	}
	var file logsink.Sink
	if cfg.Log.Path != "" {
		f, closeFn, err := logsink.NewFileSink(cfg.Log.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		s.close = closeFn
	}
	s.sink = logsink.Multi(std, file)

	client, err := hosting.NewGitHubClient(cfg.HostingOptions())
	if err != nil {
		_ = s.close()
		return nil, fmt.Errorf("failed to create hosting client: %w", err)
	}
	s.client = client
	return s, nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// output opens path for writing, or returns w when path is empty.
func output(w io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return w, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}
