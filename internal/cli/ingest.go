package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docqa/internal/adapter/store"
	"docqa/internal/usecase"
)

var ingestNoSave bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Build the index for a document",
	Long: `Load a document (PDF, text, Markdown or HTML), split it into overlapping
windows, embed every window and save the index to .docqa/index.db.

Examples:
  docqa ingest manual.pdf
  docqa ingest notes.md --no-save`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestNoSave, "no-save", false, "build the index without writing a snapshot")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	path := args[0]

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	progress := func(done, total int) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		bar.Set(done)

		if done > 0 && done < total {
			elapsed := time.Since(startTime)
			rate := float64(done) / elapsed.Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-done)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Embedding[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}

	p, err := newPipeline(usecase.WithProgress(progress))
	if err != nil {
		return err
	}

	fmt.Printf("Ingesting %s...\n", path)
	start := time.Now()

	info, err := p.Ingest(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete in %s:\n", formatDuration(time.Since(start)))
	fmt.Printf("  Document:     %s\n", info.SourcePath)
	fmt.Printf("  Chunks:       %d\n", info.TotalChunks)
	fmt.Printf("  Chunk size:   %d (overlap %d)\n", info.ChunkSize, info.ChunkOverlap)
	fmt.Printf("  Embeddings:   %s, %d dimensions\n", info.EmbeddingModel, info.Dimension)

	if ingestNoSave || !cfg.Index.Persist {
		return nil
	}

	root := GetRootDir()
	if err := cfg.EnsureIndexDir(root); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	dbPath := cfg.IndexPath(root)
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer st.Close()

	meta := store.Meta{
		ChunkSize:      info.ChunkSize,
		ChunkOverlap:   info.ChunkOverlap,
		EmbeddingModel: info.EmbeddingModel,
	}
	if err := st.SaveCurrent(p.Index(), meta, cfg); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	fmt.Printf("\nIndex stored at: %s\n", dbPath)
	return nil
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
