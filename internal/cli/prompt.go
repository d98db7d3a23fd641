package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docqa/internal/adapter/synthesizer"
	"docqa/internal/domain"
)

var (
	promptQuery string
	promptTopK  int
	promptDoc   string
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print a question-answering prompt built from the retrieved chunks",
	Long: `Retrieve the chunks most similar to the question and print them laid out as
a question-answering prompt, ready to paste into a language model.

Examples:
  docqa prompt -q "How do I reset the thermostat?"
  docqa prompt -q "battery type" -k 5 > prompt.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topK := GetConfig().Retrieve.TopK
		if promptTopK > 0 {
			topK = promptTopK
		}

		p, err := openPipeline(cmd.Context(), promptDoc)
		if err != nil {
			return err
		}

		results, err := p.SimilarChunks(cmd.Context(), promptQuery, topK)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		chunks := make([]domain.Chunk, len(results))
		for i, r := range results {
			chunks[i] = r.Chunk
		}
		fmt.Println(synthesizer.BuildPrompt(chunks, promptQuery))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().StringVarP(&promptQuery, "query", "q", "", "question (required)")
	promptCmd.Flags().IntVarP(&promptTopK, "top-k", "k", 0, "number of chunks to include (default from config)")
	promptCmd.Flags().StringVar(&promptDoc, "doc", "", "ingest this document instead of using the saved index")
	promptCmd.MarkFlagRequired("query")
}
