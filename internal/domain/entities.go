package domain

// Page is one page of a loaded document. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Document is an ordered sequence of pages read from Source.
type Document struct {
	Source string
	Pages  []Page
}

// Chunk is a window of page text. Seq orders chunks across the whole document.
type Chunk struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Page   int    `json:"page"`
	Seq    int    `json:"seq"`
}

// IndexEntry is a stored (embedding, chunk) pair. Order is the insertion position.
type IndexEntry struct {
	Embedding []float32
	Chunk     Chunk
	Order     int
}

// ScoredChunk is a search hit. Rank 1 is the most similar.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
	Rank  int
}

// Source is a ranked source returned alongside an answer.
type Source struct {
	Content string  `json:"content"`
	Page    int     `json:"page"`
	Rank    int     `json:"rank"`
	Score   float64 `json:"score"`
}

// QueryResponse is what the pipeline hands back for a question.
type QueryResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
}

// IndexInfo describes a built index.
type IndexInfo struct {
	SourcePath     string `json:"source_path"`
	TotalChunks    int    `json:"total_chunks"`
	ChunkSize      int    `json:"chunk_size"`
	ChunkOverlap   int    `json:"chunk_overlap"`
	Dimension      int    `json:"dimension"`
	EmbeddingModel string `json:"embedding_model"`
}
