package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/morb-dev/morbsite/internal/api"
	internal_errors "github.com/morb-dev/morbsite/internal/errors"
	"github.com/morb-dev/morbsite/internal/logger"
	"github.com/morb-dev/morbsite/internal/service"
	"github.com/morb-dev/morbsite/internal/tokenstats"
)

type Handler struct {
	message    service.MessageService
	reaction   service.ReactionService
	meme       service.MemeService
	tokenStats *tokenstats.Service
}

func New(message service.MessageService, reaction service.ReactionService, meme service.MemeService, tokenStats *tokenstats.Service) *Handler {
	return &Handler{message, reaction, meme, tokenStats}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "component", "handler", "error", err)
	}
}

// writeError maps classified errors to their status and code; everything
// else is a 500 with the fallback code and a generic message, detail goes to
// the log only.
func writeError(w http.ResponseWriter, err error, fallbackCode, fallbackMessage string) {
	if e, ok := err.(*internal_errors.ErrorWithStatusCode); ok {
		writeJSON(w, e.StatusCode, api.ErrorResponse{Error: e.Message, Code: e.Code})
		return
	}
	logger.Log.Error("request failed", "component", "handler", "error", err)
	writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: fallbackMessage, Code: fallbackCode})
}

func decodeValidate(r io.ReadCloser, body interface{}) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		return internal_errors.Validation("Body is invalid json")
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(body); err != nil {
		return internal_errors.Validation("Required fields missing")
	}
	return nil
}
