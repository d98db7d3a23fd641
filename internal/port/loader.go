package port

import "docqa/internal/domain"

type DocumentLoader interface {
	Load(path string) (domain.Document, error)
}
