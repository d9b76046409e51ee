package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"rag-chatbot/internal/services"
)

// NDJSONContentType selects streamed progress for uploads
const NDJSONContentType = "application/x-ndjson"

// IngestHandler accepts document uploads into a store
type IngestHandler struct {
	ingestionService *services.IngestionService
	storeService     *services.StoreService
	maxUploadBytes   int64
	logger           *logrus.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(ingestionService *services.IngestionService, storeService *services.StoreService, maxUploadMB int64, logger *logrus.Logger) *IngestHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 200
	}
	return &IngestHandler{
		ingestionService: ingestionService,
		storeService:     storeService,
		maxUploadBytes:   maxUploadMB << 20,
		logger:           logger,
	}
}

// IngestEvent is one line of a streamed upload response
type IngestEvent struct {
	Type     string                  `json:"type"` // progress, summary or error
	Progress *services.Progress      `json:"progress,omitempty"`
	Summary  *services.IngestSummary `json:"summary,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// UploadDocuments handles multipart uploads
// @Summary Upload documents into a store
// @Description Accepts PDF, TXT and ZIP files in the "files" field. With Accept: application/x-ndjson the response streams progress events followed by the summary.
// @Tags stores
// @Accept multipart/form-data
// @Produce json
// @Param name path string true "Store name"
// @Param files formData file true "Documents"
// @Param create_only query bool false "Refuse an existing store"
// @Success 200 {object} services.IngestSummary
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /stores/{name}/documents [post]
func (h *IngestHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := services.ValidateStoreName(name); err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	if r.URL.Query().Get("create_only") == "true" && h.storeService.Exists(name) {
		sendError(w, h.logger, http.StatusConflict, "A store named '"+name+"' already exists")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, h.logger, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		sendError(w, h.logger, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files, err := readUploads(r)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	if len(files) == 0 {
		sendError(w, h.logger, http.StatusBadRequest, "No files uploaded")
		return
	}

	req := services.IngestRequest{StoreName: name, Files: files}

	if !strings.Contains(r.Header.Get("Accept"), NDJSONContentType) {
		summary, err := h.ingestionService.Ingest(r.Context(), req)
		if err != nil {
			sendServiceError(w, h.logger, err)
			return
		}
		sendJSON(w, h.logger, http.StatusOK, summary)
		return
	}

	h.stream(w, r, req)
}

func (h *IngestHandler) stream(w http.ResponseWriter, r *http.Request, req services.IngestRequest) {
	w.Header().Set("Content-Type", NDJSONContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	emit := func(ev IngestEvent) {
		if err := enc.Encode(ev); err != nil {
			h.logger.Debugf("Progress stream closed: %v", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	req.Progress = func(p services.Progress) {
		emit(IngestEvent{Type: "progress", Progress: &p})
	}

	summary, err := h.ingestionService.Ingest(r.Context(), req)
	if err != nil {
		h.logger.Errorf("Ingestion into %s failed: %v", req.StoreName, err)
		emit(IngestEvent{Type: "error", Error: err.Error()})
		return
	}
	emit(IngestEvent{Type: "summary", Summary: summary})
}

func readUploads(r *http.Request) ([]services.UploadedFile, error) {
	headers := r.MultipartForm.File["files"]
	files := make([]services.UploadedFile, 0, len(headers))

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.New("failed to read upload " + fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.New("failed to read upload " + fh.Filename)
		}
		files = append(files, services.UploadedFile{Name: fh.Filename, Data: data})
	}
	return files, nil
}
