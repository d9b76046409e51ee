package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"rag-chatbot/internal/models"
	"rag-chatbot/internal/services"
)

// SessionHandler exposes the per-session defaults used by chat queries
type SessionHandler struct {
	sessions *services.SessionManager
	stores   *services.StoreService
	presets  []models.Preset
	logger   *logrus.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *services.SessionManager, stores *services.StoreService, presets []models.Preset, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		stores:   stores,
		presets:  presets,
		logger:   logger,
	}
}

// GetSession returns the session state
// @Summary Get session
// @Tags session
// @Produce json
// @Param X-Session-ID header string false "Session id; generated when absent"
// @Success 200 {object} models.SessionInfo
// @Router /session [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	sendJSON(w, h.logger, http.StatusOK, session.Info())
}

// UpdateSession selects the RAG store and saves the system message for later queries
// @Summary Update session defaults
// @Description Sets the store used when a RAG query names none, and the system message used when a query carries none. Either a preset name or a custom system message may be given.
// @Tags session
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Session id; generated when absent"
// @Param request body models.SessionUpdate true "Defaults to change"
// @Success 200 {object} models.SessionInfo
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /session [put]
func (h *SessionHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var update models.SessionUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if update.Preset != nil && update.SystemMessage != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Give either a preset or a system message, not both")
		return
	}

	var store string
	if update.Store != nil {
		store = strings.TrimSpace(*update.Store)
		if store != "" {
			if err := services.ValidateStoreName(store); err != nil {
				sendServiceError(w, h.logger, err)
				return
			}
			if !h.stores.Exists(store) {
				sendServiceError(w, h.logger, models.NewNotFoundError("store "+store))
				return
			}
		}
	}

	var message string
	if update.Preset != nil {
		preset, ok := h.findPreset(*update.Preset)
		if !ok {
			sendError(w, h.logger, http.StatusBadRequest, "Unknown preset: "+*update.Preset)
			return
		}
		message = preset.SystemMessage
	} else if update.SystemMessage != nil {
		message = strings.TrimSpace(*update.SystemMessage)
	}

	session := h.session(w, r)
	if update.Store != nil {
		session.SelectStore(store)
	}
	if update.Preset != nil || update.SystemMessage != nil {
		session.SaveSystemMessage(message)
	}

	h.logger.WithFields(logrus.Fields{
		"session": session.ID,
		"store":   session.SelectedStore(),
	}).Info("Session defaults updated")

	sendJSON(w, h.logger, http.StatusOK, session.Info())
}

// ClearHistory forgets the session's conversation
// @Summary Clear chat history
// @Tags session
// @Produce json
// @Param X-Session-ID header string false "Session id; generated when absent"
// @Success 200 {object} SuccessResponse
// @Router /session/history [delete]
func (h *SessionHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	session.Clear()
	sendJSON(w, h.logger, http.StatusOK, SuccessResponse{Success: true, Message: "Chat history cleared"})
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) *services.Session {
	session := h.sessions.Get(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, session.ID)
	return session
}

func (h *SessionHandler) findPreset(name string) (models.Preset, bool) {
	for _, p := range h.presets {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return models.Preset{}, false
}
