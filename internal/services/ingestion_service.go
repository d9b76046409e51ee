package services

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"rag-chatbot/config"
	"rag-chatbot/internal/chunker"
	"rag-chatbot/internal/loader"
	"rag-chatbot/internal/models"
	"rag-chatbot/internal/repositories"
)

// Ingestion outcomes reported in IngestSummary.Status
const (
	IngestStatusOK        = "ok"
	IngestStatusPartial   = "partial"
	IngestStatusNoContent = "no_content"
)

// UploadedFile is one file received from a client
type UploadedFile struct {
	Name string
	Data []byte
}

// Progress is reported after every embedded batch
type Progress struct {
	Processed  int     `json:"processed"`
	Total      int     `json:"total"`
	Percent    int     `json:"percent"`
	ETASeconds float64 `json:"eta_seconds"`
	Message    string  `json:"message"`
}

// ProgressFunc receives progress updates. It is called from the ingesting goroutine.
type ProgressFunc func(Progress)

// IngestRequest asks for files to be added to a store
type IngestRequest struct {
	StoreName string
	Files     []UploadedFile
	Progress  ProgressFunc
}

// SkippedFile is a file that was not embedded
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// IngestSummary describes a completed ingestion
type IngestSummary struct {
	Store       string        `json:"store"`
	Files       []string      `json:"files"`
	Skipped     []SkippedFile `json:"skipped"`
	ChunksAdded int           `json:"chunks_added"`
	TotalChunks int           `json:"total_chunks"`
	Status      string        `json:"status"`
	Message     string        `json:"message"`
}

// Err returns a partial_ingest_failure error when some files were skipped, nil otherwise
func (s *IngestSummary) Err() error {
	if s.Status != IngestStatusPartial {
		return nil
	}
	names := make([]string, len(s.Skipped))
	for i, sk := range s.Skipped {
		names[i] = sk.Name
	}
	return models.NewError(models.KindPartialIngest,
		fmt.Sprintf("⚠️ %d file(s) skipped: %v", len(s.Skipped), names), nil)
}

// IngestionService runs uploads through loading, chunking and embedding into a store
type IngestionService struct {
	cfg         config.IngestionConfig
	tempDir     string
	stores      *StoreService
	indexRepo   repositories.IndexRepository
	metaRepo    repositories.MetadataRepository
	locks       repositories.LockRepository
	loader      *loader.Loader
	chunker     *chunker.Chunker
	invalidator CacheInvalidator
	logger      *logrus.Logger
	now         func() time.Time
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	cfg config.IngestionConfig,
	tempDir string,
	stores *StoreService,
	indexRepo repositories.IndexRepository,
	metaRepo repositories.MetadataRepository,
	locks repositories.LockRepository,
	invalidator CacheInvalidator,
	logger *logrus.Logger,
) (*IngestionService, error) {
	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 30
	}
	if cfg.LoadWorkers <= 0 {
		cfg.LoadWorkers = 4
	}

	return &IngestionService{
		cfg:         cfg,
		tempDir:     tempDir,
		stores:      stores,
		indexRepo:   indexRepo,
		metaRepo:    metaRepo,
		locks:       locks,
		loader:      loader.New(),
		chunker:     ch,
		invalidator: invalidator,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Ingest adds the uploaded files to the named store, creating it if needed.
// Per-file failures are reported in the summary; the returned error is reserved
// for failures that stop the whole ingestion.
func (s *IngestionService) Ingest(ctx context.Context, req IngestRequest) (*IngestSummary, error) {
	if err := ValidateStoreName(req.StoreName); err != nil {
		return nil, err
	}
	if len(req.Files) == 0 {
		return nil, models.NewValidationError("no files uploaded")
	}

	storePath := s.stores.Path(req.StoreName)
	s.logger.Infof("Ingesting %d file(s) into store %s", len(req.Files), req.StoreName)

	release, err := s.locks.Acquire(ctx, storePath, storeLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock store %s: %w", req.StoreName, err)
	}
	defer release()

	workDir, err := os.MkdirTemp(s.tempDir, "ingest-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			s.logger.Warnf("Failed to remove temp dir %s: %v", workDir, err)
		}
	}()

	summary := &IngestSummary{
		Store:   req.StoreName,
		Files:   []string{},
		Skipped: []SkippedFile{},
	}

	members := s.stage(req.Files, workDir, summary)

	docs, err := s.loadAll(ctx, members, summary)
	if err != nil {
		return nil, err
	}

	chunks := s.chunker.Split(docs)
	if len(chunks) == 0 {
		s.logger.Infof("No chunks to embed for store %s", req.StoreName)
		summary.Status = IngestStatusNoContent
		summary.Message = "No chunks to embed."
		return summary, nil
	}

	idx, err := s.indexRepo.Open(ctx, storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", req.StoreName, err)
	}

	added, err := s.embed(ctx, idx, chunks, req.Progress)
	if s.invalidator != nil {
		s.invalidator.Invalidate(storePath)
	}
	if err != nil {
		if added > 0 {
			// the batches already added stay searchable, keep the sidecar in step with them
			if _, metaErr := s.writeMetadata(context.WithoutCancel(ctx), idx, storePath, summary.Files); metaErr != nil {
				s.logger.Warnf("Failed to record partial ingestion for %s: %v", req.StoreName, metaErr)
			}
		}
		return nil, fmt.Errorf("embedding stopped after %d of %d chunks: %w", added, len(chunks), err)
	}

	total, err := s.writeMetadata(ctx, idx, storePath, summary.Files)
	if err != nil {
		return nil, fmt.Errorf("failed to record ingestion for %s: %w", req.StoreName, err)
	}

	summary.ChunksAdded = added
	summary.TotalChunks = total
	summary.Message = fmt.Sprintf("✅ Added %d chunks to the vector database.", added)
	summary.Status = IngestStatusOK
	if len(summary.Skipped) > 0 {
		summary.Status = IngestStatusPartial
	}

	s.logger.WithFields(logrus.Fields{
		"store":   req.StoreName,
		"added":   added,
		"total":   total,
		"skipped": len(summary.Skipped),
	}).Info("Ingestion completed")

	return summary, nil
}

// writeMetadata rewrites the store sidecar with the index's current chunk count
func (s *IngestionService) writeMetadata(ctx context.Context, idx repositories.Index, storePath string, files []string) (int, error) {
	total, err := idx.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	if err := s.metaRepo.Write(storePath, models.NewStoreMetadata(files, total, s.now())); err != nil {
		return 0, fmt.Errorf("write metadata: %w", err)
	}
	return total, nil
}

// stage writes uploads into workDir, expanding zip archives, and returns loadable members in upload order
func (s *IngestionService) stage(files []UploadedFile, workDir string, summary *IngestSummary) []loader.Member {
	var members []loader.Member

	for i, f := range files {
		name := filepath.Base(filepath.FromSlash(f.Name))

		if loader.IsZip(name, f.Data) {
			dir := filepath.Join(workDir, "zip-"+strconv.Itoa(i))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				summary.skip(name, err)
				continue
			}
			expanded, failures, err := loader.ExpandZip(f.Data, dir)
			if err != nil {
				s.logger.Warnf("Skipping archive %s: %v", name, err)
				summary.skip(name, err)
				continue
			}
			for _, failure := range failures {
				summary.skip(failure.Name, failure.Err)
			}
			members = append(members, expanded...)
			continue
		}

		if !loader.Supported(name) {
			summary.skip(name, loader.ErrUnsupportedType)
			continue
		}

		target := filepath.Join(workDir, strconv.Itoa(i)+"_"+name)
		if err := os.WriteFile(target, f.Data, 0o600); err != nil {
			summary.skip(name, err)
			continue
		}
		members = append(members, loader.Member{Name: name, Path: target})
	}

	return members
}

// loadAll loads members concurrently and returns their documents in member order
func (s *IngestionService) loadAll(ctx context.Context, members []loader.Member, summary *IngestSummary) ([]models.Document, error) {
	results := make([][]models.Document, len(members))
	failures := make([]error, len(members))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.LoadWorkers)

	for i, m := range members {
		i, m := i, m
		g.Go(func() error {
			docs, err := s.loader.Load(gctx, m)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures[i] = err
				return nil
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var docs []models.Document
	for i, m := range members {
		if failures[i] != nil {
			s.logger.Warnf("Skipping %s: %v", m.Name, failures[i])
			summary.skip(m.Name, failures[i])
			continue
		}
		summary.Files = append(summary.Files, m.Name)
		docs = append(docs, results[i]...)
	}
	return docs, nil
}

// embed adds chunks in sequential batches, reporting progress after each one
func (s *IngestionService) embed(ctx context.Context, idx repositories.Index, chunks []models.Chunk, progress ProgressFunc) (int, error) {
	total := len(chunks)
	start := s.now()
	processed := 0

	for processed < total {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		end := processed + s.cfg.BatchSize
		if end > total {
			end = total
		}

		n, err := idx.Add(ctx, chunks[processed:end])
		if err != nil {
			return processed, err
		}
		processed += n

		p := computeProgress(processed, total, s.now().Sub(start))
		s.logger.Debug(p.Message)
		if progress != nil {
			progress(p)
		}
	}

	return processed, nil
}

// computeProgress estimates the remaining time as elapsed * remaining / processed
func computeProgress(processed, total int, elapsed time.Duration) Progress {
	percent := 100
	if total > 0 {
		percent = processed * 100 / total
	}

	eta := 0.0
	if processed > 0 && processed < total {
		eta = elapsed.Seconds() * float64(total-processed) / float64(processed)
	}

	return Progress{
		Processed:  processed,
		Total:      total,
		Percent:    percent,
		ETASeconds: eta,
		Message: fmt.Sprintf("Embedding chunks... %d%% complete (%d/%d) | ~%ds left",
			percent, processed, total, int(math.Round(eta))),
	}
}

func (s *IngestSummary) skip(name string, err error) {
	s.Skipped = append(s.Skipped, SkippedFile{Name: name, Reason: err.Error()})
}
