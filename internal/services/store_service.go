package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rag-chatbot/internal/models"
	"rag-chatbot/internal/repositories"
)

// storeLockTTL bounds how long a crashed ingestion can keep a store locked
const storeLockTTL = 30 * time.Minute

// CacheInvalidator drops cached retrieval results for a store
type CacheInvalidator interface {
	Invalidate(storePath string)
}

// StoreService manages the named stores under the base directory
type StoreService struct {
	baseDir     string
	indexRepo   repositories.IndexRepository
	metaRepo    repositories.MetadataRepository
	locks       repositories.LockRepository
	invalidator CacheInvalidator
	logger      *logrus.Logger
}

// NewStoreService creates a new store service rooted at baseDir
func NewStoreService(
	baseDir string,
	indexRepo repositories.IndexRepository,
	metaRepo repositories.MetadataRepository,
	locks repositories.LockRepository,
	invalidator CacheInvalidator,
	logger *logrus.Logger,
) (*StoreService, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base dir: %w", err)
	}

	return &StoreService{
		baseDir:     abs,
		indexRepo:   indexRepo,
		metaRepo:    metaRepo,
		locks:       locks,
		invalidator: invalidator,
		logger:      logger,
	}, nil
}

// BaseDir returns the absolute base directory
func (s *StoreService) BaseDir() string {
	return s.baseDir
}

// ValidateStoreName checks a store name: 1-63 characters of letters, digits, dash
// and underscore, starting with a letter or digit
func ValidateStoreName(name string) error {
	if name == "" {
		return models.NewValidationError("store name is required")
	}
	if len(name) > 63 {
		return models.NewValidationError("store name must be at most 63 characters")
	}

	for i, ch := range name {
		alnum := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
		if i == 0 && !alnum {
			return models.NewValidationError("store name must start with a letter or digit")
		}
		if !alnum && ch != '-' && ch != '_' {
			return models.NewValidationError(fmt.Sprintf("store name contains invalid character: %c", ch))
		}
	}
	return nil
}

// Path returns the directory of a store. The name is not validated.
func (s *StoreService) Path(name string) string {
	return filepath.Join(s.baseDir, name)
}

// Exists reports whether a store directory exists
func (s *StoreService) Exists(name string) bool {
	if ValidateStoreName(name) != nil {
		return false
	}
	info, err := os.Stat(s.Path(name))
	return err == nil && info.IsDir()
}

// Resolve accepts a store name or a path to a directory under the base dir and
// returns the absolute store path
func (s *StoreService) Resolve(pathOrName string) (string, error) {
	pathOrName = strings.TrimSpace(pathOrName)
	if pathOrName == "" {
		return "", models.NewValidationError("store name is required")
	}

	if !strings.ContainsAny(pathOrName, `/\`) {
		if err := ValidateStoreName(pathOrName); err != nil {
			return "", err
		}
		return s.Path(pathOrName), nil
	}

	abs, err := filepath.Abs(pathOrName)
	if err != nil {
		return "", models.NewValidationError("invalid store path: " + pathOrName)
	}
	rel, err := filepath.Rel(s.baseDir, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsAny(rel, `/\`) {
		return "", models.NewValidationError(fmt.Sprintf("store path must be a directory directly under %s", s.baseDir))
	}
	if err := ValidateStoreName(rel); err != nil {
		return "", err
	}
	return abs, nil
}

// List returns the names of all stores, sorted
func (s *StoreService) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	s.logger.Debugf("Found %d stores", len(names))
	return names, nil
}

// Info returns a store's path, backend and metadata. Metadata is nil when the sidecar is missing or unreadable.
func (s *StoreService) Info(ctx context.Context, name string) (*models.StoreInfo, error) {
	if err := ValidateStoreName(name); err != nil {
		return nil, err
	}
	if !s.Exists(name) {
		return nil, models.NewNotFoundError("store " + name)
	}

	path := s.Path(name)
	info := &models.StoreInfo{
		Name:    name,
		Path:    path,
		Backend: s.indexRepo.Backend(),
	}

	meta, err := s.metaRepo.Read(path)
	switch {
	case err == nil:
		info.Metadata = meta
	case errors.Is(err, models.ErrNotFound):
	default:
		s.logger.Warnf("Failed to read metadata for store %s: %v", name, err)
	}

	return info, nil
}

// Delete removes a store and everything in it
func (s *StoreService) Delete(ctx context.Context, name string) error {
	s.logger.Infof("Deleting store: %s", name)

	if err := ValidateStoreName(name); err != nil {
		return err
	}
	if !s.Exists(name) {
		return models.NewNotFoundError("store " + name)
	}

	path := s.Path(name)
	release, err := s.locks.Acquire(ctx, path, storeLockTTL)
	if err != nil {
		return fmt.Errorf("failed to lock store %s: %w", name, err)
	}
	defer release()

	if err := s.indexRepo.Drop(ctx, path); err != nil {
		s.logger.Warnf("Failed to drop index backend for store %s: %v", name, err)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete store %s: %w", name, err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(path)
	}

	s.logger.Infof("Store deleted: %s", name)
	return nil
}
