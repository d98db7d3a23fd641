package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"docqa/config"
	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/loader"
	"docqa/internal/adapter/store"
	"docqa/internal/adapter/synthesizer"
	"docqa/internal/domain"
	"docqa/internal/usecase"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding the saved index")
	query := flag.String("q", "", "Question to probe retrieval with")
	topK := flag.Int("k", 5, "Number of results")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run ./cmd/probe -dir ./manuals -q \"question\"")
		fmt.Println("\nPrints the snapshot metadata and the top matches with their cosine similarity.")
		os.Exit(1)
	}

	if err := run(*dir, *query, *topK); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(dir, query string, k int) error {
	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	idx, meta, err := store.LoadSnapshot(cfg.IndexPath(dir), cfg)
	if err != nil {
		return err
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return err
	}

	p, err := usecase.NewPipeline(cfg, loader.New(cfg.Loader), embedder, synthesizer.New(cfg.Synthesis))
	if err != nil {
		return err
	}
	if err := p.Restore(idx); err != nil {
		return err
	}

	fmt.Println("RETRIEVAL PROBE")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Source:     %s\n", meta.Source)
	fmt.Printf("Chunks:     %d\n", meta.Count)
	fmt.Printf("Model:      %s (%s)\n", meta.EmbeddingModel, cfg.Embedding.Provider)
	fmt.Printf("Dimension:  %d\n", meta.Dimension)
	fmt.Println()

	fmt.Printf("Query: \"%s\"\n", query)
	fmt.Println(strings.Repeat("-", 70))

	results, err := p.SimilarChunks(context.Background(), query, k)
	if err != nil {
		return err
	}

	fmt.Printf("Top %d matches:\n\n", len(results))

	totalScore := 0.0
	for _, r := range results {
		totalScore += r.Score
		fmt.Printf("%d. [%s %.3f] page %d, chunk %d\n", r.Rank, rating(r.Score), r.Score, r.Chunk.Page, r.Chunk.Seq)
		fmt.Printf("   %s\n\n", preview(r.Chunk))
	}

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Average similarity: %.3f\n", totalScore/float64(len(results)))
	fmt.Printf("Top-1 similarity:   %.3f\n", results[0].Score)
	return nil
}

func rating(score float64) string {
	switch {
	case score > 0.7:
		return "HIGH"
	case score > 0.5:
		return "GOOD"
	case score > 0.3:
		return "OK"
	default:
		return "LOW"
	}
}

func preview(c domain.Chunk) string {
	runes := []rune(strings.ReplaceAll(c.Text, "\n", " "))
	if len(runes) > 150 {
		return string(runes[:150]) + "..."
	}
	return string(runes)
}
