package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"rag-chatbot/internal/models"
	"rag-chatbot/internal/services"
)

// StoreHandler handles HTTP requests for store operations
type StoreHandler struct {
	storeService     *services.StoreService
	retrievalService *services.RetrievalService
	logger           *logrus.Logger
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(storeService *services.StoreService, retrievalService *services.RetrievalService, logger *logrus.Logger) *StoreHandler {
	return &StoreHandler{
		storeService:     storeService,
		retrievalService: retrievalService,
		logger:           logger,
	}
}

// SearchRequest is the body of a store search
type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// SearchResponse lists scored chunks, best first
type SearchResponse struct {
	Store   string             `json:"store"`
	Query   string             `json:"query"`
	Results []models.SearchHit `json:"results"`
	Total   int                `json:"total"`
}

// ListStores handles requests to list all stores
// @Summary List stores
// @Tags stores
// @Produce json
// @Success 200 {object} models.StoreListResponse
// @Failure 500 {object} ErrorResponse
// @Router /stores [get]
func (h *StoreHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	names, err := h.storeService.List(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, models.StoreListResponse{
		Stores: names,
		Total:  len(names),
	})
}

// GetStore handles requests for store details
// @Summary Get store info
// @Tags stores
// @Produce json
// @Param name path string true "Store name"
// @Success 200 {object} models.StoreInfo
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /stores/{name} [get]
func (h *StoreHandler) GetStore(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	info, err := h.storeService.Info(r.Context(), name)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, info)
}

// DeleteStore handles store deletion requests
// @Summary Delete store
// @Description Removes the store directory, its index and metadata
// @Tags stores
// @Produce json
// @Param name path string true "Store name"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /stores/{name} [delete]
func (h *StoreHandler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	h.logger.Infof("Delete store request: %s", name)

	if err := h.storeService.Delete(r.Context(), name); err != nil {
		sendServiceError(w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Store '" + name + "' deleted",
	})
}

// SearchStore handles similarity search within a store
// @Summary Search a store
// @Tags stores
// @Accept json
// @Produce json
// @Param name path string true "Store name"
// @Param request body SearchRequest true "Search request"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /stores/{name}/search [post]
func (h *StoreHandler) SearchStore(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		sendError(w, h.logger, http.StatusBadRequest, "query is required")
		return
	}
	if req.K > 100 {
		sendError(w, h.logger, http.StatusBadRequest, "k cannot exceed 100")
		return
	}

	if err := services.ValidateStoreName(name); err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	if !h.storeService.Exists(name) {
		sendServiceError(w, h.logger, models.NewNotFoundError("store "+name))
		return
	}

	hits, err := h.retrievalService.Search(r.Context(), h.storeService.Path(name), req.Query, req.K)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, SearchResponse{
		Store:   name,
		Query:   req.Query,
		Results: hits,
		Total:   len(hits),
	})
}
