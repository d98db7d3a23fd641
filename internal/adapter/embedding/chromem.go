package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"
)

// FuncEmbedder adapts a single-text chromem embedding function to the
// batch Embedder port. Texts are embedded one at a time, in order.
type FuncEmbedder struct {
	fn    chromem.EmbeddingFunc
	model string

	mu        sync.Mutex
	dimension int
}

func NewFuncEmbedder(fn chromem.EmbeddingFunc, model string) *FuncEmbedder {
	return &FuncEmbedder{fn: fn, model: model}
}

// NewOllamaEmbedder embeds through a local Ollama server. An empty baseURL
// means http://localhost:11434/api.
func NewOllamaEmbedder(model, baseURL string) *FuncEmbedder {
	return NewFuncEmbedder(chromem.NewEmbeddingFuncOllama(model, baseURL), model)
}

// NewOpenAICompatEmbedder embeds through any OpenAI-compatible server
// (LocalAI, vLLM, Jina, Mistral and similar).
func NewOpenAICompatEmbedder(baseURL, apiKey, model string) *FuncEmbedder {
	return NewFuncEmbedder(chromem.NewEmbeddingFuncOpenAICompat(baseURL, apiKey, model, nil), model)
}

func (e *FuncEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := e.fn(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("%s embeddings: text %d: %w", e.model, i, err)
		}
		embeddings[i] = v
	}

	if len(embeddings) > 0 {
		e.mu.Lock()
		if e.dimension == 0 {
			e.dimension = len(embeddings[0])
		}
		e.mu.Unlock()
	}

	return embeddings, nil
}

func (e *FuncEmbedder) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimension
}

func (e *FuncEmbedder) ModelName() string {
	return e.model
}
