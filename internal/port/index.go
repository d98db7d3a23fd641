package port

import "docqa/internal/domain"

// VectorIndex stores (embedding, chunk) pairs and answers nearest-neighbour queries.
type VectorIndex interface {
	// InsertBatch appends all items or none of them.
	InsertBatch(items []IndexItem) error

	// Search returns at most k chunks ranked by descending similarity.
	Search(query []float32, k int) ([]domain.ScoredChunk, error)

	// Count returns the number of stored entries.
	Count() int
}

// IndexItem is a pending insert.
type IndexItem struct {
	Embedding []float32
	Chunk     domain.Chunk
}
