package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rag-chatbot/internal/models"
)

// MetadataRepository reads and writes the rag_metadata.json record of a store
type MetadataRepository interface {
	Read(storePath string) (*models.StoreMetadata, error)
	Write(storePath string, meta *models.StoreMetadata) error
}

// FileMetadataRepository keeps metadata as a JSON file next to the index
type FileMetadataRepository struct{}

// NewFileMetadataRepository creates a file-backed metadata repository
func NewFileMetadataRepository() *FileMetadataRepository {
	return &FileMetadataRepository{}
}

// Read returns a not_found error when the store has no metadata file yet
func (r *FileMetadataRepository) Read(storePath string) (*models.StoreMetadata, error) {
	file := filepath.Join(storePath, models.MetadataFileName)

	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, models.NewNotFoundError(file)
	}
	if err != nil {
		return nil, NewIndexRepositoryError("read_metadata", storePath, err, "")
	}

	var meta models.StoreMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, NewIndexRepositoryError("read_metadata", storePath, err, "corrupt metadata file "+file)
	}
	if meta.Files == nil {
		meta.Files = []string{}
	}
	return &meta, nil
}

// Write replaces the metadata file atomically
func (r *FileMetadataRepository) Write(storePath string, meta *models.StoreMetadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return NewIndexRepositoryError("write_metadata", storePath, err, "")
	}

	tmp, err := os.CreateTemp(storePath, ".rag_metadata-*.tmp")
	if err != nil {
		return NewIndexRepositoryError("write_metadata", storePath, err, "")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return NewIndexRepositoryError("write_metadata", storePath, err, "")
	}
	if err := tmp.Close(); err != nil {
		return NewIndexRepositoryError("write_metadata", storePath, err, "")
	}
	if err := os.Rename(tmp.Name(), filepath.Join(storePath, models.MetadataFileName)); err != nil {
		return NewIndexRepositoryError("write_metadata", storePath, fmt.Errorf("rename: %w", err), "")
	}
	return nil
}
