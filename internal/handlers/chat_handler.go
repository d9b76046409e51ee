package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"rag-chatbot/internal/models"
	"rag-chatbot/internal/services"
)

// SessionHeader carries the client's session id in both directions
const SessionHeader = "X-Session-ID"

// ChatHandler serves chat queries
type ChatHandler struct {
	chatService *services.ChatService
	sessions    *services.SessionManager
	logger      *logrus.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService, sessions *services.SessionManager, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		sessions:    sessions,
		logger:      logger,
	}
}

// QueryLLM handles chat queries
// @Summary Query an LLM
// @Description Sends a prompt to DeepSeek, Gemini or ChatGPT, optionally with RAG context. Provider and validation failures are reported with success=false and HTTP 200.
// @Tags chat
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Session id; generated when absent"
// @Param request body models.QueryRequest true "Query"
// @Success 200 {object} models.QueryResponse
// @Failure 400 {object} ErrorResponse
// @Router /query_llm [post]
func (h *ChatHandler) QueryLLM(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnf("Failed to decode query: %v", err)
		sendError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	session := h.sessions.Get(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, session.ID)

	h.logger.WithFields(logrus.Fields{
		"session": session.ID,
		"model":   req.ModelName,
		"rag":     req.UseRAG,
	}).Info("Query request")

	resp := h.chatService.Query(r.Context(), session, req)
	sendJSON(w, h.logger, http.StatusOK, resp)
}
