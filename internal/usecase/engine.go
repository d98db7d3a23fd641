package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"docqa/internal/adapter/index"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// ProgressFunc reports how many chunks have been embedded so far.
type ProgressFunc func(done, total int)

// Engine builds an index for one document and answers searches against it.
// Retrieve must be given an index built by the same Engine, or at least by
// the same embedding model; vectors from different models are not comparable.
type Engine struct {
	chunker   port.Chunker
	embedder  port.Embedder
	batchSize int
	workers   int
	logger    *slog.Logger
}

// NewEngine creates an engine. batchSize and workers fall back to 32 and 1.
func NewEngine(chunker port.Chunker, embedder port.Embedder, batchSize, workers int, logger *slog.Logger) *Engine {
	if batchSize <= 0 {
		batchSize = 32
	}
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		chunker:   chunker,
		embedder:  embedder,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
	}
}

// Ingest chunks doc, embeds every chunk and returns a fully built index.
// Any embedding failure aborts the whole ingestion with ErrIngestion.
func (e *Engine) Ingest(ctx context.Context, doc domain.Document, progress ProgressFunc) (*index.FlatIndex, error) {
	chunks, err := e.chunker.Split(doc.Pages, doc.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIngestion, doc.Source, err)
	}

	idx := index.NewFlatIndex(doc.Source)
	if len(chunks) == 0 {
		e.logger.Warn("document produced no chunks", "source", doc.Source)
		return idx, nil
	}

	vectors, err := e.embedChunks(ctx, chunks, progress)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIngestion, doc.Source, err)
	}

	items := make([]port.IndexItem, len(chunks))
	for i, c := range chunks {
		items[i] = port.IndexItem{Embedding: vectors[i], Chunk: c}
	}
	if err := idx.InsertBatch(items); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIngestion, doc.Source, err)
	}

	e.logger.Info("document ingested",
		"source", doc.Source,
		"pages", len(doc.Pages),
		"chunks", idx.Count(),
		"dimension", idx.Dimension(),
		"model", e.embedder.ModelName())

	return idx, nil
}

// embedChunks embeds chunks in batches on a bounded pool. Results land in a
// pre-sized slice so the output order matches the chunk order.
func (e *Engine) embedChunks(ctx context.Context, chunks []domain.Chunk, progress ProgressFunc) ([][]float32, error) {
	total := len(chunks)
	vectors := make([][]float32, total)

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for start := 0; start < total; start += e.batchSize {
		end := start + e.batchSize
		if end > total {
			end = total
		}

		g.Go(func() error {
			texts := make([]string, end-start)
			for i := range texts {
				texts[i] = chunks[start+i].Text
			}

			batch, err := e.embedder.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("embedding chunks %d-%d: %w", start, end-1, err)
			}
			if len(batch) != len(texts) {
				return fmt.Errorf("embedding chunks %d-%d: provider returned %d vectors for %d texts",
					start, end-1, len(batch), len(texts))
			}
			copy(vectors[start:end], batch)

			mu.Lock()
			done += len(texts)
			if progress != nil {
				progress(done, total)
			}
			mu.Unlock()

			e.logger.Debug("embedded batch", "from", start, "to", end-1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Retrieve embeds question and returns the k most similar chunks in idx.
func (e *Engine) Retrieve(ctx context.Context, idx port.VectorIndex, question string, k int) ([]domain.ScoredChunk, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", domain.ErrConfiguration)
	}
	if idx.Count() == 0 {
		return nil, domain.ErrEmptyIndex
	}

	vecs, err := e.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vecs) != 1 {
		return nil, errors.New("failed to embed question: provider returned no vector")
	}

	return idx.Search(vecs[0], k)
}

func (e *Engine) ModelName() string {
	return e.embedder.ModelName()
}
