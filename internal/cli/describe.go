package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	describeJSON bool
	describeDoc  string
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Show what the index was built from",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPipeline(cmd.Context(), describeDoc)
		if err != nil {
			return err
		}

		info, err := p.DescribeIndex()
		if err != nil {
			return err
		}

		if describeJSON {
			output, _ := json.MarshalIndent(info, "", "  ")
			fmt.Println(string(output))
			return nil
		}

		fmt.Println("Document info:")
		fmt.Printf("  File:         %s\n", info.SourcePath)
		fmt.Printf("  Total chunks: %d\n", info.TotalChunks)
		fmt.Printf("  Chunk size:   %d\n", info.ChunkSize)
		fmt.Printf("  Overlap:      %d\n", info.ChunkOverlap)
		fmt.Printf("  Embeddings:   %s (%d dimensions)\n", info.EmbeddingModel, info.Dimension)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().BoolVar(&describeJSON, "json", false, "output as JSON")
	describeCmd.Flags().StringVar(&describeDoc, "doc", "", "ingest this document instead of using the saved index")
}
