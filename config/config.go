package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"docqa/internal/domain"
)

// Config holds all configuration for docqa.
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Index     IndexConfig     `yaml:"index"`
	Loader    LoaderConfig    `yaml:"loader"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ChunkingConfig controls how pages are split into windows.
type ChunkingConfig struct {
	ChunkSize     int     `yaml:"chunk_size" env:"DOCQA_CHUNK_SIZE"`
	ChunkOverlap  int     `yaml:"chunk_overlap" env:"DOCQA_CHUNK_OVERLAP"`
	LookbackRatio float64 `yaml:"lookback_ratio" env:"DOCQA_LOOKBACK_RATIO"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK      int           `yaml:"top_k" env:"DOCQA_TOP_K"`
	CacheSize int           `yaml:"cache_size" env:"DOCQA_CACHE_SIZE"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"DOCQA_CACHE_TTL"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider" env:"DOCQA_EMBEDDING_PROVIDER"` // "openai", "ollama", "openai-compat", "hash"
	Model     string `yaml:"model" env:"DOCQA_EMBEDDING_MODEL"`
	BaseURL   string `yaml:"base_url" env:"DOCQA_EMBEDDING_BASE_URL"`
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable holding the API key
	Dimension int    `yaml:"dimension" env:"DOCQA_EMBEDDING_DIMENSION"`
	BatchSize int    `yaml:"batch_size" env:"DOCQA_EMBEDDING_BATCH_SIZE"`
	Workers   int    `yaml:"workers" env:"DOCQA_EMBEDDING_WORKERS"`
}

// SynthesisConfig tunes the extractive answer heuristics.
type SynthesisConfig struct {
	MinBlockChars int      `yaml:"min_block_chars"`
	MinLineChars  int      `yaml:"min_line_chars"`
	PreviewChars  int      `yaml:"preview_chars"`
	Exclusions    []string `yaml:"exclusions"`
}

// IndexConfig controls snapshot persistence.
type IndexConfig struct {
	Persist bool   `yaml:"persist" env:"DOCQA_INDEX_PERSIST"`
	Path    string `yaml:"path" env:"DOCQA_INDEX_PATH"`
}

// LoaderConfig maps file name patterns to document formats.
type LoaderConfig struct {
	PDF      []string `yaml:"pdf"`
	Text     []string `yaml:"text"`
	Markdown []string `yaml:"markdown"`
	HTML     []string `yaml:"html"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" env:"DOCQA_LOG_LEVEL"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			ChunkSize:     500,
			ChunkOverlap:  100,
			LookbackRatio: 0.2,
		},
		Retrieve: RetrieveConfig{
			TopK:      3,
			CacheSize: 100,
			CacheTTL:  5 * time.Minute,
		},
		Embedding: EmbeddingConfig{
			Provider:  "hash",
			Model:     "hash-384",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 384,
			BatchSize: 32,
			Workers:   4,
		},
		Synthesis: SynthesisConfig{
			MinBlockChars: 50,
			MinLineChars:  30,
			PreviewChars:  300,
			Exclusions:    []string{"use the following", "given the context", "answer the question"},
		},
		Index: IndexConfig{
			Persist: true,
			Path:    filepath.Join(".docqa", "index.db"),
		},
		Loader: LoaderConfig{
			PDF:      []string{"*.pdf"},
			Text:     []string{"*.txt", "*.text"},
			Markdown: []string{"*.md", "*.markdown"},
			HTML:     []string{"*.html", "*.htm"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docqa.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docqa", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Defaults plus environment
	return Load("")
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	ch := c.Chunking
	if ch.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunking.chunk_size must be positive, got %d", domain.ErrConfiguration, ch.ChunkSize)
	}
	if ch.ChunkOverlap < 0 || ch.ChunkOverlap >= ch.ChunkSize {
		return fmt.Errorf("%w: chunking.chunk_overlap must be in [0, %d), got %d",
			domain.ErrConfiguration, ch.ChunkSize, ch.ChunkOverlap)
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("%w: retrieve.top_k must be positive, got %d", domain.ErrConfiguration, c.Retrieve.TopK)
	}
	if c.Embedding.Provider == "" {
		return fmt.Errorf("%w: embedding.provider is required", domain.ErrConfiguration)
	}
	return nil
}

// IndexPath resolves the snapshot path against dir.
func (c *Config) IndexPath(dir string) string {
	if filepath.IsAbs(c.Index.Path) {
		return c.Index.Path
	}
	return filepath.Join(dir, c.Index.Path)
}

// EnsureIndexDir ensures the directory holding the snapshot exists.
func (c *Config) EnsureIndexDir(dir string) error {
	return os.MkdirAll(filepath.Dir(c.IndexPath(dir)), 0755)
}
