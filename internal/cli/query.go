package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"docqa/internal/domain"
	"docqa/internal/tui"
)

var (
	queryText    string
	queryTopK    int
	queryJSON    bool
	queryDoc     string
	querySimilar bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Answer a question about the ingested document",
	Long: `Retrieve the windows most similar to the question and answer with the
most informative passage among them.

Examples:
  docqa query -q "How do I reset the thermostat?"
  docqa query -q "battery type" -k 5 --json
  docqa query -q "warranty" --similar
  docqa query -q "schedule" --doc manual.pdf   # ingest in memory, no snapshot`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "question (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().StringVar(&queryDoc, "doc", "", "ingest this document instead of using the saved index")
	queryCmd.Flags().BoolVar(&querySimilar, "similar", false, "only list the most similar chunks, without an answer")
	queryCmd.MarkFlagRequired("query")
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	answerStyle = lipgloss.NewStyle().PaddingLeft(2)
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	p, err := openPipeline(cmd.Context(), queryDoc)
	if err != nil {
		return err
	}

	if querySimilar {
		results, err := p.SimilarChunks(cmd.Context(), queryText, topK)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return printSimilar(results)
	}

	resp, err := p.QueryK(cmd.Context(), queryText, topK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(titleStyle.Render("Question"))
	fmt.Println(answerStyle.Render(resp.Question))
	fmt.Println()
	fmt.Println(titleStyle.Render("Answer"))
	fmt.Println(answerStyle.Render(resp.Answer))

	if len(resp.Sources) > 0 {
		fmt.Println()
		fmt.Println(titleStyle.Render(fmt.Sprintf("Sources (%d document chunks)", len(resp.Sources))))
		for _, s := range resp.Sources {
			fmt.Printf("  %s %s\n",
				metaStyle.Render(fmt.Sprintf("[%d] page %d, score %.3f:", s.Rank, s.Page, s.Score)),
				tui.Preview(s.Content, 100))
		}
	}
	return nil
}

type similarResult struct {
	Rank    int     `json:"rank"`
	Page    int     `json:"page"`
	Seq     int     `json:"seq"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

func printSimilar(results []domain.ScoredChunk) error {
	out := make([]similarResult, len(results))
	for i, r := range results {
		out[i] = similarResult{
			Rank:    r.Rank,
			Page:    r.Chunk.Page,
			Seq:     r.Chunk.Seq,
			Score:   r.Score,
			Content: r.Chunk.Text,
		}
	}

	if queryJSON {
		output, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(out) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d chunks for: %s\n\n", len(out), queryText)
	for _, r := range out {
		fmt.Println(metaStyle.Render(fmt.Sprintf("--- [%d] page %d, chunk %d (score: %.3f) ---", r.Rank, r.Page, r.Seq, r.Score)))
		fmt.Println(tui.Preview(r.Content, 500))
		fmt.Println()
	}
	return nil
}
