package models

// Document is raw extracted text with provenance. It lives only between loading and chunking.
type Document struct {
	Source string `json:"source"`         // original filename (zip members keep their own name)
	Page   int    `json:"page,omitempty"` // 1-based page for PDFs, 0 otherwise
	Text   string `json:"text"`
}

// Chunk is a bounded slice of a document's text, the unit of embedding and retrieval
type Chunk struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Page   int    `json:"page,omitempty"`
	Index  int    `json:"index"`  // position within its document
	Offset int    `json:"offset"` // rune offset within the document text
	Text   string `json:"text"`
}

// Validate checks if the chunk is valid
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return NewValidationError("chunk text is required")
	}
	if c.Index < 0 || c.Offset < 0 {
		return NewValidationError("chunk index and offset cannot be negative")
	}
	return nil
}

// SearchHit is a chunk returned by a similarity search
type SearchHit struct {
	ChunkID string  `json:"chunk_id"`
	Source  string  `json:"source"`
	Page    int     `json:"page,omitempty"`
	Text    string  `json:"text"`
	Score   float32 `json:"score"` // cosine similarity, higher is better
	Seq     int64   `json:"seq"`   // insertion sequence within the store
}
