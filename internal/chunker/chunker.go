package chunker

import (
	"fmt"
	"strings"

	"rag-chatbot/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Chunker splits documents into fixed-size, overlapping windows measured in runes
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker. overlap must be smaller than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Default returns a chunker with size 1000 and overlap 200
func Default() *Chunker {
	return &Chunker{size: DefaultSize, overlap: DefaultOverlap}
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split chunks every document in order. Documents with no visible text yield nothing.
func (c *Chunker) Split(docs []models.Document) []models.Chunk {
	var chunks []models.Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.SplitText(doc)...)
	}
	return chunks
}

// SplitText chunks a single document. Window i starts at rune i*(size-overlap);
// the last window ends at the end of the text.
func (c *Chunker) SplitText(doc models.Document) []models.Chunk {
	if strings.TrimSpace(doc.Text) == "" {
		return nil
	}

	runes := []rune(doc.Text)
	step := c.size - c.overlap
	chunks := make([]models.Chunk, 0, Count(len(runes), c.size, c.overlap))

	for start, index := 0, 0; ; start, index = start+step, index+1 {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, models.Chunk{
			ID:     uuid.NewString(),
			Source: doc.Source,
			Page:   doc.Page,
			Index:  index,
			Offset: start,
			Text:   string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}

// Count returns how many chunks a text of length runes produces
func Count(length, size, overlap int) int {
	if length == 0 {
		return 0
	}
	if length <= size {
		return 1
	}
	step := size - overlap
	return (length - overlap + step - 1) / step
}

// Reconstruct joins the chunks of one document, dropping the overlapping prefix of every chunk after the first
func Reconstruct(chunks []models.Chunk, overlap int) string {
	var b strings.Builder
	for i, ch := range chunks {
		if i == 0 {
			b.WriteString(ch.Text)
			continue
		}
		runes := []rune(ch.Text)
		if overlap < len(runes) {
			b.WriteString(string(runes[overlap:]))
		}
	}
	return b.String()
}
