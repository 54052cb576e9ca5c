package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
)

var similarityJSON bool

var similarityCmd = &cobra.Command{
	Use:   "similarity [first] [second]",
	Short: "Compare two texts",
	Long: `Embed two texts and print the cosine similarity of their vectors,
along with a relevance score mapped onto [0, 1].`,
	Args: cobra.ExactArgs(2),
	RunE: runSimilarity,
}

func init() {
	similarityCmd.Flags().BoolVar(&similarityJSON, "json", false, "output the scores as JSON")
	rootCmd.AddCommand(similarityCmd)
}

// similarityOutput is the JSON form of a comparison.
type similarityOutput struct {
	Model            string  `json:"model"`
	CosineSimilarity float64 `json:"cosine_similarity"`
	RelevanceScore   float64 `json:"relevance_score"`
	InputTokens      int     `json:"input_tokens"`
}

func runSimilarity(cmd *cobra.Command, args []string) error {
	svc, err := requireEmbedding()
	if err != nil {
		return err
	}

	batch, err := svc.EmbedAll(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("similarity failed: %w", err)
	}

	cos := domain.CosineSimilarity(batch.Embeddings[0].Vector, batch.Embeddings[1].Vector)
	out := similarityOutput{
		Model:            svc.ModelSpec().Name,
		CosineSimilarity: cos,
		RelevanceScore:   domain.RelevanceScore(cos),
		InputTokens:      batch.Usage.InputTokens,
	}

	if similarityJSON {
		return printJSON(cmd, out)
	}

	p := newPrinter(cmd.OutOrStdout())
	cmd.Printf("%s %s\n", p.Label("Cosine similarity:"), p.Score(cos, fmt.Sprintf("%.4f", cos)))
	cmd.Printf("%s %.4f\n", p.Label("Relevance score:"), out.RelevanceScore)
	cmd.Println(p.Muted(fmt.Sprintf("%d input tokens, model %s", out.InputTokens, out.Model)))
	return nil
}
