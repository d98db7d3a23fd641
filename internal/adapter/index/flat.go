package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// FlatIndex is a brute-force cosine index over the chunks of one document.
// Entries are insert-only; norms are computed once at insert time.
type FlatIndex struct {
	mu        sync.RWMutex
	source    string
	dimension int
	entries   []domain.IndexEntry
	unit      [][]float32
}

// NewFlatIndex creates an empty index that only accepts chunks from source.
func NewFlatIndex(source string) *FlatIndex {
	return &FlatIndex{source: source}
}

// InsertBatch appends the items in order. The first item ever inserted fixes
// the dimension. The batch is validated up front so a bad item rejects all.
func (x *FlatIndex) InsertBatch(items []port.IndexItem) error {
	if len(items) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	dim := x.dimension
	if dim == 0 {
		dim = len(items[0].Embedding)
	}
	if dim == 0 {
		return fmt.Errorf("%w: embedding for chunk %d is empty", domain.ErrDimensionMismatch, items[0].Chunk.Seq)
	}

	for i, item := range items {
		if len(item.Embedding) != dim {
			return fmt.Errorf("%w: item %d has dimension %d, index expects %d",
				domain.ErrDimensionMismatch, i, len(item.Embedding), dim)
		}
		if item.Chunk.Source != x.source {
			return fmt.Errorf("%w: item %d is from %q, index holds %q",
				domain.ErrSourceMismatch, i, item.Chunk.Source, x.source)
		}
	}

	x.dimension = dim
	for _, item := range items {
		x.entries = append(x.entries, domain.IndexEntry{
			Embedding: item.Embedding,
			Chunk:     item.Chunk,
			Order:     len(x.entries),
		})
		x.unit = append(x.unit, normalize(item.Embedding))
	}

	return nil
}

// Search ranks every entry by cosine similarity to query and returns the best
// min(k, Count()) of them. Equal scores keep insertion order.
func (x *FlatIndex) Search(query []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrConfiguration, k)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			domain.ErrDimensionMismatch, len(query), x.dimension)
	}

	q := normalize(query)

	type scored struct {
		order int
		score float64
	}

	scores := make([]scored, len(x.unit))
	for i, v := range x.unit {
		scores[i] = scored{order: i, score: dot(q, v)}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if k > len(scores) {
		k = len(scores)
	}

	results := make([]domain.ScoredChunk, k)
	for i := 0; i < k; i++ {
		results[i] = domain.ScoredChunk{
			Chunk: x.entries[scores[i].order].Chunk,
			Score: scores[i].score,
			Rank:  i + 1,
		}
	}

	return results, nil
}

// Count returns the number of stored entries.
func (x *FlatIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Dimension returns the established dimension, 0 before the first insert.
func (x *FlatIndex) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

func (x *FlatIndex) Source() string {
	return x.source
}

// Entries returns a copy of the stored entries in insertion order.
func (x *FlatIndex) Entries() []domain.IndexEntry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]domain.IndexEntry, len(x.entries))
	copy(out, x.entries)
	return out
}

// normalize returns v scaled to unit length. A zero vector stays zero.
func normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}

	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}

	norm := math.Sqrt(sum)
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// CosineSimilarity is exported for callers comparing raw embeddings.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	return dot(normalize(a), normalize(b))
}
