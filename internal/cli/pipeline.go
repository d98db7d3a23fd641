package cli

import (
	"context"
	"errors"
	"fmt"

	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/loader"
	"docqa/internal/adapter/store"
	"docqa/internal/adapter/synthesizer"
	"docqa/internal/domain"
	"docqa/internal/usecase"
)

func newPipeline(opts ...usecase.Option) (*usecase.Pipeline, error) {
	cfg := GetConfig()

	emb, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	opts = append([]usecase.Option{usecase.WithLogger(logger)}, opts...)
	return usecase.NewPipeline(
		cfg,
		loader.New(cfg.Loader),
		emb,
		synthesizer.New(cfg.Synthesis, synthesizer.WithLogger(logger)),
		opts...,
	)
}

// openPipeline returns a pipeline ready for questions. With doc set the
// document is ingested in memory; otherwise the saved snapshot is restored.
func openPipeline(ctx context.Context, doc string) (*usecase.Pipeline, error) {
	p, err := newPipeline()
	if err != nil {
		return nil, err
	}

	if doc != "" {
		if _, err := p.Ingest(ctx, doc); err != nil {
			return nil, err
		}
		return p, nil
	}

	if err := restoreSnapshot(p); err != nil {
		return nil, err
	}
	return p, nil
}

func restoreSnapshot(p *usecase.Pipeline) error {
	cfg := GetConfig()
	dbPath := cfg.IndexPath(GetRootDir())

	idx, meta, err := store.LoadSnapshot(dbPath, cfg)
	if err != nil {
		if errors.Is(err, domain.ErrNotIngested) {
			return fmt.Errorf("%w. Run 'docqa ingest <file>' first or pass --doc", err)
		}
		return err
	}

	logger.Debug("snapshot loaded", "path", dbPath, "source", meta.Source, "created", meta.CreatedAt)
	return p.Restore(idx)
}
