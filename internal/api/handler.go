// Package api exposes the conversation service over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"loanlens-backend/internal/common/errors"
	"loanlens-backend/internal/common/logger"
	"loanlens-backend/internal/conversation"
	"loanlens-backend/internal/uploads"
)

// Handler carries the dependencies shared by all route handlers.
type Handler struct {
	svc       *conversation.Service
	validator *uploads.Validator
	logger    logger.Logger
}

func NewHandler(svc *conversation.Service, validator *uploads.Validator, log logger.Logger) *Handler {
	return &Handler{svc: svc, validator: validator, logger: log}
}

// JSON writes v as a JSON response body.
func (h *Handler) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response encoding failed", map[string]interface{}{"error": err.Error()})
	}
}

// Error writes err as a structured error body, mapping the code to an HTTP
// status.
func (h *Handler) Error(w http.ResponseWriter, err error) {
	stdErr := errors.Normalize(err)
	if stdErr.Code == errors.ErrCodeInternal {
		h.logger.Error("request failed", map[string]interface{}{
			"code":    string(stdErr.Code),
			"details": stdErr.Details,
		})
	}
	h.JSON(w, stdErr.HTTPStatus(), map[string]any{
		"error": map[string]any{
			"code":    stdErr.Code,
			"message": stdErr.Message,
		},
	})
}
