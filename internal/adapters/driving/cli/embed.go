package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-embed/internal/logger"
	"github.com/custodia-labs/sercha-embed/internal/normalisers"
)

// textRegistry extracts text from files passed with --file.
var textRegistry driven.NormaliserRegistry = normalisers.Default()

// previewDims is how many leading components the text output shows.
const previewDims = 8

var (
	embedFile string
	embedRaw  bool
	embedJSON bool
	embedFull bool
)

var embedCmd = &cobra.Command{
	Use:   "embed [text]",
	Short: "Embed one text",
	Long: `Embed a text of any length and print its vector.

The text is read from the argument or, with --file, from a file.
Use --file - to read standard input. Markdown and HTML files are reduced
to their text first unless --raw is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEmbed,
}

func init() {
	embedCmd.Flags().StringVarP(&embedFile, "file", "f", "", "read the text from a file (- for stdin)")
	embedCmd.Flags().BoolVar(&embedRaw, "raw", false, "embed file contents without extracting text")
	embedCmd.Flags().BoolVar(&embedJSON, "json", false, "output the embedding as JSON")
	embedCmd.Flags().BoolVar(&embedFull, "full", false, "print every vector component")
	rootCmd.AddCommand(embedCmd)
}

// embedOutput is the JSON form of one embedding.
type embedOutput struct {
	Model      string    `json:"model"`
	Dimension  int       `json:"dimension"`
	TokenCount int       `json:"token_count"`
	Vector     []float32 `json:"vector"`
}

func runEmbed(cmd *cobra.Command, args []string) error {
	svc, err := requireEmbedding()
	if err != nil {
		return err
	}

	text, err := readInput(cmd, args, embedFile, embedRaw)
	if err != nil {
		return err
	}

	embedding, err := svc.Embed(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("embed failed: %w", err)
	}

	if embedJSON {
		return printJSON(cmd, embedOutput{
			Model:      svc.ModelSpec().Name,
			Dimension:  len(embedding.Vector),
			TokenCount: embedding.TokenCount,
			Vector:     embedding.Vector,
		})
	}

	p := newPrinter(cmd.OutOrStdout())
	cmd.Printf("%s %s\n", p.Label("Model:"), svc.ModelSpec().Name)
	cmd.Printf("%s %d\n", p.Label("Dimension:"), len(embedding.Vector))
	cmd.Printf("%s %d\n", p.Label("Tokens:"), embedding.TokenCount)
	cmd.Printf("%s %s\n", p.Label("Vector:"), formatVector(embedding.Vector, embedFull))
	return nil
}

// readInput returns the text from the single argument or from path.
// File contents pass through the normaliser for their type unless raw.
func readInput(cmd *cobra.Command, args []string, path string, raw bool) (string, error) {
	switch {
	case path != "" && len(args) > 0:
		return "", errors.New("pass either a text argument or --file, not both")
	case path == "" && len(args) == 0:
		return "", errors.New("no text given: pass a text argument or --file")
	case path == "":
		return args[0], nil
	}

	data, err := readSource(cmd, path)
	if err != nil {
		return "", err
	}
	if raw {
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	mimeType := "text/plain"
	if path != "-" {
		mimeType = normalisers.MIMETypeForPath(path)
	}
	logger.Debug("Normalising %s as %s", path, mimeType)

	return textRegistry.Normalise(cmd.Context(), &domain.RawDocument{
		URI:      path,
		MIMEType: mimeType,
		Content:  data,
	})
}

func readSource(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// formatVector renders v, truncated to previewDims components unless full.
func formatVector(v domain.Vector, full bool) string {
	n := len(v)
	if !full {
		n = min(n, previewDims)
	}

	parts := make([]string, n)
	for i := range n {
		parts[i] = fmt.Sprintf("%.6f", v[i])
	}

	out := "[" + strings.Join(parts, ", ")
	if n < len(v) {
		out += fmt.Sprintf(", ... (%d more)", len(v)-n)
	}
	return out + "]"
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
