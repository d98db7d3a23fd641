package domain

import "errors"

var (
	// ErrConfiguration reports invalid chunking, retrieval or provider settings.
	ErrConfiguration = errors.New("configuration error")

	// ErrDocumentLoad reports a document that could not be read or parsed.
	ErrDocumentLoad = errors.New("document load error")

	// ErrIngestion reports an embedding failure during ingestion.
	// No index is produced when it is returned.
	ErrIngestion = errors.New("ingestion error")

	// ErrDimensionMismatch reports an embedding whose length differs from the index dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptyIndex reports a search against an index with no entries.
	ErrEmptyIndex = errors.New("index is empty")

	// ErrSourceMismatch reports a chunk inserted into an index built for another document.
	ErrSourceMismatch = errors.New("chunk belongs to a different document")

	// ErrNotIngested reports a query issued before any document was ingested.
	ErrNotIngested = errors.New("no document ingested")
)
