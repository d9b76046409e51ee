package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"rag-chatbot/internal/models"
)

// PresetHandler serves the system message presets
type PresetHandler struct {
	presets []models.Preset
	logger  *logrus.Logger
}

func NewPresetHandler(presets []models.Preset, logger *logrus.Logger) *PresetHandler {
	return &PresetHandler{presets: presets, logger: logger}
}

// List returns every preset
// @Summary List system message presets
// @Tags chat
// @Produce json
// @Success 200 {array} models.Preset
// @Router /presets [get]
func (h *PresetHandler) List(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, h.logger, http.StatusOK, h.presets)
}
