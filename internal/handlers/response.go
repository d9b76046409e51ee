package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"rag-chatbot/internal/models"
)

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// SuccessResponse acknowledges an operation without a payload
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func sendJSON(w http.ResponseWriter, logger *logrus.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

func sendError(w http.ResponseWriter, logger *logrus.Logger, status int, message string) {
	sendJSON(w, logger, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}

// sendServiceError maps classified errors to status codes; anything unclassified is a 500
func sendServiceError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var classified *models.Error
	if errors.As(err, &classified) {
		message = classified.Error()
		switch classified.Kind {
		case models.KindValidation:
			status = http.StatusBadRequest
		case models.KindNotFound:
			status = http.StatusNotFound
		case models.KindIndexMismatch:
			status = http.StatusConflict
		case models.KindRagRetrieval:
			status = http.StatusBadGateway
			if errors.Is(err, models.ErrIndexMismatch) {
				status = http.StatusConflict
			}
		}
	}

	if status == http.StatusInternalServerError {
		logger.Errorf("Request failed: %v", err)
	}
	sendError(w, logger, status, message)
}
