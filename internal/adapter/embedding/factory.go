package embedding

import (
	"fmt"
	"os"

	"docqa/config"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// New builds the embedder selected by cfg.Provider.
func New(cfg config.EmbeddingConfig) (port.Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIEmbedder(cfg.APIKeyEnv, cfg.Model, cfg.BaseURL)
	case "ollama":
		return NewOllamaEmbedder(cfg.Model, cfg.BaseURL), nil
	case "openai-compat":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w: embedding.base_url is required for openai-compat", domain.ErrConfiguration)
		}
		return NewOpenAICompatEmbedder(cfg.BaseURL, os.Getenv(cfg.APIKeyEnv), cfg.Model), nil
	case "hash":
		return NewHashEmbedder(cfg.Dimension)
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrConfiguration, cfg.Provider)
	}
}
