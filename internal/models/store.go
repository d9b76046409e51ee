package models

import (
	"time"
)

// MetadataFileName is the sidecar written into every store directory
const MetadataFileName = "rag_metadata.json"

// MetadataTimeFormat renders created_at as "YYYY-MM-DD HH:MM:SS"
const MetadataTimeFormat = "2006-01-02 15:04:05"

// StoreMetadata is the content of rag_metadata.json
type StoreMetadata struct {
	Files       []string `json:"files"`
	CreatedAt   string   `json:"created_at"`
	TotalChunks int      `json:"total_chunks"`
}

// NewStoreMetadata builds a metadata record stamped with t
func NewStoreMetadata(files []string, totalChunks int, t time.Time) *StoreMetadata {
	if files == nil {
		files = []string{}
	}
	return &StoreMetadata{
		Files:       files,
		CreatedAt:   t.Format(MetadataTimeFormat),
		TotalChunks: totalChunks,
	}
}

// Validate checks the record against the sidecar invariants
func (m *StoreMetadata) Validate() error {
	if _, err := time.Parse(MetadataTimeFormat, m.CreatedAt); err != nil {
		return NewValidationError("created_at must be formatted as YYYY-MM-DD HH:MM:SS")
	}
	if m.TotalChunks < 0 {
		return NewValidationError("total_chunks cannot be negative")
	}
	return nil
}

// StoreInfo is the API view of a store
type StoreInfo struct {
	Name     string         `json:"name"`
	Path     string         `json:"path"`
	Backend  string         `json:"backend"`
	Metadata *StoreMetadata `json:"metadata,omitempty"`
}

// StoreListResponse represents a response with a list of stores
type StoreListResponse struct {
	Stores []string `json:"stores"`
	Total  int      `json:"total"`
}
