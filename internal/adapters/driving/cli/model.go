package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
)

var modelJSON bool

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Show or select the embedding model",
	Long: `Show the constants of the configured model, list the catalogued models,
or select a different one.`,
	RunE: runModelShow,
}

var modelListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List catalogued models",
	Annotations: map[string]string{offlineAnnotation: "true"},
	RunE:        runModelList,
}

var modelSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Select the embedding model",
	Long: `Select the embedding model used by later commands.

A model outside the catalogue also needs embedding.dimension and
embedding.pooling in the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runModelSet,
}

func init() {
	modelCmd.Flags().BoolVar(&modelJSON, "json", false, "output the model as JSON")
	modelCmd.AddCommand(modelListCmd)
	modelCmd.AddCommand(modelSetCmd)
	rootCmd.AddCommand(modelCmd)
}

// modelOutput is the JSON form of a model spec.
type modelOutput struct {
	Name              string `json:"name"`
	Dimension         int    `json:"dimension"`
	MaxSequenceLength int    `json:"max_sequence_length"`
	MaxChunkTokens    int    `json:"max_chunk_tokens"`
	Pooling           string `json:"pooling"`
	PadTokenID        int64  `json:"pad_token_id"`
	ClsTokenID        int64  `json:"cls_token_id"`
	SepTokenID        int64  `json:"sep_token_id"`
}

func runModelShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireEmbedding()
	if err != nil {
		return err
	}

	spec := svc.ModelSpec()

	if modelJSON {
		return printJSON(cmd, modelOutput{
			Name:              spec.Name,
			Dimension:         spec.Dimension,
			MaxSequenceLength: spec.MaxSequenceLength,
			MaxChunkTokens:    spec.MaxChunkTokens(),
			Pooling:           spec.Pooling.String(),
			PadTokenID:        spec.PadTokenID,
			ClsTokenID:        spec.ClsTokenID,
			SepTokenID:        spec.SepTokenID,
		})
	}

	p := newPrinter(cmd.OutOrStdout())
	cmd.Println(p.Title(spec.Name))
	cmd.Printf("  Dimension: %d\n", spec.Dimension)
	cmd.Printf("  Max sequence length: %d\n", spec.MaxSequenceLength)
	cmd.Printf("  Tokens per chunk: %d\n", spec.MaxChunkTokens())
	cmd.Printf("  Pooling: %s\n", spec.Pooling.Description())
	cmd.Printf("  Special tokens: pad=%d cls=%d sep=%d\n", spec.PadTokenID, spec.ClsTokenID, spec.SepTokenID)
	return nil
}

func runModelList(cmd *cobra.Command, _ []string) error {
	p := newPrinter(cmd.OutOrStdout())
	cmd.Println("Catalogued models:")
	cmd.Println()
	for _, name := range domain.KnownModels() {
		spec, _ := domain.LookupModel(name)
		marker := " "
		if name == domain.DefaultModel {
			marker = "*"
		}
		cmd.Printf("%s %-22s %s\n", marker, name,
			p.Muted(fmt.Sprintf("%d dims, %s pooling", spec.Dimension, spec.Pooling)))
	}
	cmd.Println()
	cmd.Println(p.Muted("* default"))
	return nil
}

func runModelSet(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	if err := svc.SetModel(args[0]); err != nil {
		return fmt.Errorf("failed to set model: %w", err)
	}

	cmd.Printf("Embedding model set to: %s\n", args[0])
	return nil
}
