package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"docqa/config"
	"docqa/internal/adapter/cache"
	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/index"
	"docqa/internal/adapter/synthesizer"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// Pipeline ingests one document and then answers any number of questions
// about it. Queries never see a partially built index.
type Pipeline struct {
	cfg         *config.Config
	loader      port.DocumentLoader
	engine      *Engine
	embedder    port.Embedder
	synthesizer port.Synthesizer
	logger      *slog.Logger
	progress    ProgressFunc

	answers *cache.QueryCache[domain.QueryResponse]
	similar *cache.QueryCache[[]domain.ScoredChunk]

	mu    sync.RWMutex
	index *index.FlatIndex
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithProgress reports embedding progress during Ingest.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// NewPipeline validates cfg and wires the collaborators.
func NewPipeline(
	cfg *config.Config,
	loader port.DocumentLoader,
	embedder port.Embedder,
	synth port.Synthesizer,
	opts ...Option,
) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:         cfg,
		loader:      loader,
		embedder:    embedder,
		synthesizer: synth,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	c, err := chunker.NewWindowChunker(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap, cfg.Chunking.LookbackRatio)
	if err != nil {
		return nil, err
	}

	p.engine = NewEngine(c, embedder, cfg.Embedding.BatchSize, cfg.Embedding.Workers, p.logger)
	p.answers = cache.NewQueryCache[domain.QueryResponse](cfg.Retrieve.CacheSize, cfg.Retrieve.CacheTTL)
	p.similar = cache.NewQueryCache[[]domain.ScoredChunk](cfg.Retrieve.CacheSize, cfg.Retrieve.CacheTTL)

	return p, nil
}

// Ingest loads the document at path and replaces the current index once the
// new one is complete. On failure the previous index stays in place.
func (p *Pipeline) Ingest(ctx context.Context, path string) (domain.IndexInfo, error) {
	doc, err := p.loader.Load(path)
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentLoad) {
			err = fmt.Errorf("%w: %s: %w", domain.ErrDocumentLoad, path, err)
		}
		return domain.IndexInfo{}, err
	}

	idx, err := p.engine.Ingest(ctx, doc, p.progress)
	if err != nil {
		return domain.IndexInfo{}, err
	}

	p.install(idx)
	return p.describe(idx), nil
}

// Restore installs an index built earlier, typically read back from a
// snapshot. Its dimension must match the embedder's when the latter is known.
func (p *Pipeline) Restore(idx *index.FlatIndex) error {
	if idx == nil {
		return fmt.Errorf("%w: nothing to restore", domain.ErrNotIngested)
	}
	if want := p.embedder.Dimension(); want > 0 && idx.Dimension() > 0 && want != idx.Dimension() {
		return fmt.Errorf("%w: snapshot has dimension %d, embedder %s produces %d",
			domain.ErrDimensionMismatch, idx.Dimension(), p.embedder.ModelName(), want)
	}

	p.install(idx)
	p.logger.Info("index restored", "source", idx.Source(), "chunks", idx.Count())
	return nil
}

func (p *Pipeline) install(idx *index.FlatIndex) {
	p.mu.Lock()
	p.index = idx
	p.mu.Unlock()

	p.answers.Invalidate()
	p.similar.Invalidate()
}

// Index returns the current index, or nil before the first Ingest or Restore.
func (p *Pipeline) Index() *index.FlatIndex {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index
}

func (p *Pipeline) current() (*index.FlatIndex, error) {
	idx := p.Index()
	if idx == nil {
		return nil, domain.ErrNotIngested
	}
	return idx, nil
}

// Query answers question using the configured top_k.
func (p *Pipeline) Query(ctx context.Context, question string) (domain.QueryResponse, error) {
	return p.QueryK(ctx, question, p.cfg.Retrieve.TopK)
}

// QueryK answers question from the k most similar chunks.
func (p *Pipeline) QueryK(ctx context.Context, question string, k int) (domain.QueryResponse, error) {
	// Read before the index so an answer from a replaced index is never cached.
	gen := p.answers.Generation()
	idx, err := p.current()
	if err != nil {
		return domain.QueryResponse{}, err
	}

	if resp, ok := p.answers.Get(question, k); ok {
		p.logger.Debug("answer served from cache", "question", question, "k", k)
		resp.Question = question
		return resp, nil
	}

	results, err := p.engine.Retrieve(ctx, idx, question, k)
	if err != nil {
		return domain.QueryResponse{}, err
	}

	chunks := make([]domain.Chunk, len(results))
	sources := make([]domain.Source, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
		sources[i] = domain.Source{
			Content: r.Chunk.Text,
			Page:    r.Chunk.Page,
			Rank:    r.Rank,
			Score:   r.Score,
		}
	}

	resp := domain.QueryResponse{
		Question: question,
		Answer:   p.synthesizer.SynthesizeContext(synthesizer.BuildPrompt(chunks, question)),
		Sources:  sources,
	}

	p.answers.PutAt(gen, question, k, resp)
	p.logger.Debug("question answered", "question", question, "k", k, "sources", len(sources))
	return resp, nil
}

// SimilarChunks returns the k most similar chunks without synthesizing an answer.
func (p *Pipeline) SimilarChunks(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	gen := p.similar.Generation()
	idx, err := p.current()
	if err != nil {
		return nil, err
	}

	if results, ok := p.similar.Get(question, k); ok {
		return results, nil
	}

	results, err := p.engine.Retrieve(ctx, idx, question, k)
	if err != nil {
		return nil, err
	}

	p.similar.PutAt(gen, question, k, results)
	return results, nil
}

// DescribeIndex reports what the current index was built from.
func (p *Pipeline) DescribeIndex() (domain.IndexInfo, error) {
	idx, err := p.current()
	if err != nil {
		return domain.IndexInfo{}, err
	}
	return p.describe(idx), nil
}

func (p *Pipeline) describe(idx *index.FlatIndex) domain.IndexInfo {
	return domain.IndexInfo{
		SourcePath:     idx.Source(),
		TotalChunks:    idx.Count(),
		ChunkSize:      p.cfg.Chunking.ChunkSize,
		ChunkOverlap:   p.cfg.Chunking.ChunkOverlap,
		Dimension:      idx.Dimension(),
		EmbeddingModel: p.engine.ModelName(),
	}
}
