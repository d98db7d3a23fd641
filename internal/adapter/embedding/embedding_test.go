package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"docqa/config"
	"docqa/internal/adapter/index"
	"docqa/internal/domain"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e, err := NewHashEmbedder(64)
	if err != nil {
		t.Fatal(err)
	}

	texts := []string{"Press the menu button to reset the device.", "Battery replacement"}
	a, err := e.Embed(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(context.Background(), texts)

	for i := range a {
		if len(a[i]) != 64 {
			t.Fatalf("expected dimension 64, got %d", len(a[i]))
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("embedding %d differs at %d", i, j)
			}
		}
	}
}

func TestHashEmbedderUnitLength(t *testing.T) {
	e, _ := NewHashEmbedder(128)
	vecs, _ := e.Embed(context.Background(), []string{"thermostat schedule weekday periods", ""})

	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("expected unit vector, got squared norm %f", norm)
	}

	for _, v := range vecs[1] {
		if v != 0 {
			t.Fatal("expected zero vector for empty text")
		}
	}
}

func TestHashEmbedderSharedVocabulary(t *testing.T) {
	e, _ := NewHashEmbedder(384)
	vecs, _ := e.Embed(context.Background(), []string{
		"How do I reset the device?",
		"To reset the device, hold the menu button for five seconds.",
		"Warranty coverage lasts two years from the date of purchase.",
	})

	related := index.CosineSimilarity(vecs[0], vecs[1])
	unrelated := index.CosineSimilarity(vecs[0], vecs[2])
	if related <= unrelated {
		t.Errorf("expected related text to score higher: %f <= %f", related, unrelated)
	}
}

func TestHashEmbedderInvalidDimension(t *testing.T) {
	if _, err := NewHashEmbedder(0); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestFuncEmbedder(t *testing.T) {
	calls := 0
	fn := func(ctx context.Context, text string) ([]float32, error) {
		calls++
		return []float32{float32(len(text)), 1}, nil
	}

	e := NewFuncEmbedder(fn, "fake")
	if e.Dimension() != 0 {
		t.Errorf("expected unknown dimension before first call, got %d", e.Dimension())
	}

	vecs, err := e.Embed(context.Background(), []string{"a", "bbb"})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if vecs[1][0] != 3 {
		t.Errorf("expected order to be preserved, got %v", vecs)
	}
	if e.Dimension() != 2 {
		t.Errorf("expected dimension 2, got %d", e.Dimension())
	}
	if e.ModelName() != "fake" {
		t.Errorf("unexpected model name %s", e.ModelName())
	}
}

func TestFuncEmbedderError(t *testing.T) {
	boom := errors.New("connection refused")
	e := NewFuncEmbedder(func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}, "fake")

	if _, err := e.Embed(context.Background(), []string{"x"}); !errors.Is(err, boom) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

// newEmbeddingServer answers OpenAI embedding requests with 3-dimensional
// vectors whose first component is the input position.
func newEmbeddingServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		// Reverse order to check that Index is honoured.
		data := make([]item, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Object: "embedding", Embedding: []float32{float32(i), 0.5, 0.25}, Index: i})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAIEmbedderAgainstServer(t *testing.T) {
	server := newEmbeddingServer(t)

	t.Setenv("DOCQA_TEST_KEY", "test-key")
	e, err := NewOpenAIEmbedder("DOCQA_TEST_KEY", "custom-model", server.URL+"/v1")
	if err != nil {
		t.Fatal(err)
	}

	vecs, err := e.Embed(context.Background(), []string{"first", "second", "third"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	for i, v := range vecs {
		if v[0] != float32(i) {
			t.Errorf("vector %d out of order: %v", i, v)
		}
	}
	if e.Dimension() != 3 {
		t.Errorf("expected dimension learned from response, got %d", e.Dimension())
	}
}

func TestOpenAIEmbedderMissingKey(t *testing.T) {
	t.Setenv("DOCQA_MISSING_KEY", "")
	if _, err := NewOpenAIEmbedder("DOCQA_MISSING_KEY", "text-embedding-3-small", ""); err == nil {
		t.Error("expected error without API key")
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EmbeddingConfig
		model   string
		wantErr bool
	}{
		{"hash", config.EmbeddingConfig{Provider: "hash", Dimension: 32}, "hash-32", false},
		{"ollama", config.EmbeddingConfig{Provider: "ollama", Model: "nomic-embed-text"}, "nomic-embed-text", false},
		{"compat without url", config.EmbeddingConfig{Provider: "openai-compat", Model: "m"}, "", true},
		{"compat", config.EmbeddingConfig{Provider: "openai-compat", Model: "m", BaseURL: "http://localhost:8080/v1"}, "m", false},
		{"unknown", config.EmbeddingConfig{Provider: "word2vec"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.cfg)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrConfiguration) {
					t.Errorf("expected ErrConfiguration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if e.ModelName() != tt.model {
				t.Errorf("expected model %s, got %s", tt.model, e.ModelName())
			}
		})
	}
}

func TestOpenAIEmbedderConcurrentEmbed(t *testing.T) {
	server := newEmbeddingServer(t)

	t.Setenv("DOCQA_TEST_KEY", "test-key")
	e, err := NewOpenAIEmbedder("DOCQA_TEST_KEY", "custom-model", server.URL+"/v1")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				if _, err := e.Embed(context.Background(), []string{"reset", "battery"}); err != nil {
					errs <- err
					return
				}
				_ = e.Dimension()
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if e.Dimension() != 3 {
		t.Errorf("expected dimension 3, got %d", e.Dimension())
	}
}
