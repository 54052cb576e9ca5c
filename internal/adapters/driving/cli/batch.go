package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	batchFile string
	batchJSON bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [text...]",
	Short: "Embed several texts at once",
	Long: `Embed a list of texts and report their combined token usage.

Texts come from the arguments or, with --file, one per line from a file.
Blank lines are skipped. Results keep the input order, and a failure on
any text fails the whole batch.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "read texts from a file, one per line (- for stdin)")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output the batch as JSON")
	rootCmd.AddCommand(batchCmd)
}

// batchOutput is the JSON form of a batch.
type batchOutput struct {
	Model       string        `json:"model"`
	Embeddings  []embedOutput `json:"embeddings"`
	InputTokens int           `json:"input_tokens"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	svc, err := requireEmbedding()
	if err != nil {
		return err
	}

	texts, err := readTexts(cmd, args, batchFile)
	if err != nil {
		return err
	}

	batch, err := svc.EmbedAll(cmd.Context(), texts)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	model := svc.ModelSpec().Name

	if batchJSON {
		out := batchOutput{
			Model:       model,
			Embeddings:  make([]embedOutput, len(batch.Embeddings)),
			InputTokens: batch.Usage.InputTokens,
		}
		for i, e := range batch.Embeddings {
			out.Embeddings[i] = embedOutput{
				Model:      model,
				Dimension:  len(e.Vector),
				TokenCount: e.TokenCount,
				Vector:     e.Vector,
			}
		}
		return printJSON(cmd, out)
	}

	p := newPrinter(cmd.OutOrStdout())
	cmd.Printf("%s %s\n\n", p.Title("Embedded"), p.Muted(fmt.Sprintf("%d texts with %s", len(texts), model)))
	for i, e := range batch.Embeddings {
		cmd.Printf("[%d] %s %s\n", i+1, formatVector(e.Vector, false), p.Muted(fmt.Sprintf("(%d tokens)", e.TokenCount)))
	}
	cmd.Println()
	cmd.Printf("%s %d\n", p.Label("Input tokens:"), batch.Usage.InputTokens)
	return nil
}

// readTexts returns the arguments, or the non-blank lines of path.
func readTexts(cmd *cobra.Command, args []string, path string) ([]string, error) {
	switch {
	case path != "" && len(args) > 0:
		return nil, errors.New("pass either text arguments or --file, not both")
	case path == "" && len(args) == 0:
		return nil, errors.New("no texts given: pass text arguments or --file")
	case path == "":
		return args, nil
	}

	data, err := readSource(cmd, path)
	if err != nil {
		return nil, err
	}

	var texts []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts in %s", path)
	}
	return texts, nil
}
