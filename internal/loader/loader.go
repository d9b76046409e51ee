package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rag-chatbot/internal/models"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for files that are neither PDF nor plain text
var ErrUnsupportedType = errors.New("unsupported file type")

// Member is one loadable file: either an upload or a file extracted from a zip archive
type Member struct {
	Name string // original filename, used as document provenance
	Path string // location on disk
}

// Loader turns PDF and TXT files into documents
type Loader struct{}

// New creates a loader
func New() *Loader {
	return &Loader{}
}

// Supported reports whether name has an extension the loader understands
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

// Load reads one member. PDFs yield one document per page, text files a single document.
func (l *Loader) Load(ctx context.Context, m Member) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(m.Name)) {
	case ".pdf":
		return l.loadPDF(m)
	case ".txt":
		return l.loadText(m)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, m.Name)
	}
}

func (l *Loader) loadText(m Member) ([]models.Document, error) {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", m.Name, err)
	}

	text := strings.ToValidUTF8(string(data), "�")
	return []models.Document{{Source: m.Name, Text: text}}, nil
}

func (l *Loader) loadPDF(m Member) (docs []models.Document, err error) {
	content, err := os.ReadFile(m.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", m.Name, err)
	}

	// the pdf package panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = fmt.Errorf("failed to parse PDF %s: %v", m.Name, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader for %s: %w", m.Name, err)
	}

	pages := reader.NumPage()
	docs = make([]models.Document, 0, pages)

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(make(map[string]*pdf.Font))
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from %s page %d: %w", m.Name, i, err)
		}

		docs = append(docs, models.Document{
			Source: m.Name,
			Page:   i,
			Text:   text,
		})
	}

	return docs, nil
}
