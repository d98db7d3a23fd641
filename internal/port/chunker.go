package port

import "docqa/internal/domain"

type Chunker interface {
	Split(pages []domain.Page, source string) ([]domain.Chunk, error)
}
