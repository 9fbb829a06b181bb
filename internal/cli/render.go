package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/project-atlas/internal/assembler"
	"github.com/mvp-joe/project-atlas/internal/pipeline"
)

var (
	renderInventoryFlag string
	renderProseFlag     string
	renderMaxAPIsFlag   int
	renderOutFlag       string
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Assemble the final markdown document from an inventory",
	Long: `Render combines an inventory written by "atlas inventory" with prose
(purpose, key concepts and usage patterns) and prints the final markdown.

Prose is read from a YAML or JSON file:

  purpose: A CLI framework for Go.
  concepts:
    - Commands form a tree
  patterns:
    - title: Define a command
      description: Create a cobra.Command and add it to the root.
      example: rootCmd.AddCommand(versionCmd)
      language: go

Without --prose the purpose falls back to the repository overview.

Examples:
  atlas inventory spf13/cobra -o cobra.json
  atlas render --inventory cobra.json --prose cobra-prose.yml -o COBRA.md
`,
	Args: cobra.NoArgs,
	RunE: runRenderCmd,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderInventoryFlag, "inventory", "i", "-", "Inventory JSON file (- for stdin)")
	renderCmd.Flags().StringVarP(&renderProseFlag, "prose", "p", "", "Prose file (YAML or JSON)")
	renderCmd.Flags().IntVar(&renderMaxAPIsFlag, "max-apis", assembler.DefaultMaxAPIs, "Maximum API Reference entries")
	renderCmd.Flags().StringVarP(&renderOutFlag, "out", "o", "", "Write the document to a file instead of stdout")
}

func runRenderCmd(cmd *cobra.Command, args []string) error {
	w, closeOut, err := output(cmd.OutOrStdout(), renderOutFlag)
	if err != nil {
		return err
	}
	defer closeOut()

	return runRender(cmd.Context(), w, cmd.InOrStdin(), renderInventoryFlag, renderProseFlag, renderMaxAPIsFlag)
}

func runRender(ctx context.Context, w io.Writer, stdin io.Reader, inventoryPath, prosePath string, maxAPIs int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	raw, err := readInput(stdin, inventoryPath)
	if err != nil {
		return err
	}
	var inv pipeline.Inventory
	if err := json.Unmarshal([]byte(raw), &inv); err != nil {
		return fmt.Errorf("failed to decode inventory: %w", err)
	}

	var prose assembler.Prose
	if prosePath != "" {
		data, err := os.ReadFile(prosePath)
		if err != nil {
			return fmt.Errorf("failed to read prose: %w", err)
		}
		if err := yaml.Unmarshal(data, &prose); err != nil {
			return fmt.Errorf("failed to decode prose: %w", err)
		}
	}

	doc, err := pipeline.Document(ctx, &inv, pipeline.StaticSummarizer{Prose: prose}, maxAPIs)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, doc)
	return err
}
