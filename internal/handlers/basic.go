package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"rag-chatbot/internal/models"
)

// BreakerReporter reports circuit breaker state per provider
type BreakerReporter interface {
	BreakerStates() map[string]string
}

// BasicHandler serves the liveness endpoints
type BasicHandler struct {
	breakers BreakerReporter
	logger   *logrus.Logger
}

// NewBasicHandler creates a new basic handler. breakers may be nil.
func NewBasicHandler(breakers BreakerReporter, logger *logrus.Logger) *BasicHandler {
	return &BasicHandler{breakers: breakers, logger: logger}
}

// Root handles the landing endpoint
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} models.StatusResponse
// @Router / [get]
func (h *BasicHandler) Root(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, h.logger, http.StatusOK, models.StatusResponse{Message: "RAG chatbot backend is running"})
}

// Health reports liveness and the provider circuit breakers. It has no side effects.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func (h *BasicHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{Status: "healthy"}
	if h.breakers != nil {
		resp.Breakers = h.breakers.BreakerStates()
	}
	sendJSON(w, h.logger, http.StatusOK, resp)
}
