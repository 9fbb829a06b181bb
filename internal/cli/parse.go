package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/extractor"
	"github.com/mvp-joe/project-atlas/internal/markdown"
)

var extractKindFlag string

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file | ->",
	Short: "Parse a markdown file into sections, code blocks and links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd.OutOrStdout(), cmd.InOrStdin(), args[0])
	},
}

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file | ->",
	Short: "Extract API signatures from a local file",
	Long: `Extract runs the signature strategy for a content kind over a local file
and prints the result as JSON. The kind is taken from the file name unless
--kind is given; it is required when reading stdin.

Kinds: markdown, rst, typescript, javascript, python, go, rust, java, ruby,
php, manifest, text.

Examples:
  atlas extract README.md
  cat lib.rs | atlas extract - --kind rust
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd.OutOrStdout(), cmd.InOrStdin(), args[0], extractKindFlag)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractKindFlag, "kind", "k", "", "Content kind (default: from file name)")
}

// readInput reads path, or stdin when path is "-".
func readInput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func runParse(w io.Writer, stdin io.Reader, path string) error {
	content, err := readInput(stdin, path)
	if err != nil {
		return err
	}
	return writeJSON(w, markdown.Parse(content))
}

func runExtract(w io.Writer, stdin io.Reader, path, kind string) error {
	k := extractor.Kind(kind)
	if k == "" {
		if path == "-" {
			return errors.New("--kind is required when reading stdin")
		}
		k = extractor.KindForPath(path)
	}
	if _, ok := extractor.New().Kinds()[k]; !ok && k != extractor.KindText {
		return fmt.Errorf("unknown kind %q", k)
	}

	content, err := readInput(stdin, path)
	if err != nil {
		return err
	}
	res := extractor.Extract(content, k)
	if err := writeJSON(w, res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("extraction failed: %s", res.Error)
	}
	return nil
}
