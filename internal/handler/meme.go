package handler

import (
	"net/http"
	"strconv"

	"github.com/morb-dev/morbsite/internal/api"
	internal_errors "github.com/morb-dev/morbsite/internal/errors"
)

func (h *Handler) ListMemes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitQuery := r.URL.Query().Get("limit"); limitQuery != "" {
		if parsed, err := strconv.Atoi(limitQuery); err == nil {
			limit = parsed
		}
	}

	memes, err := h.meme.List(r.Context(), limit)
	if err != nil {
		writeError(w, err, internal_errors.CodeFetch, "Failed to fetch memes")
		return
	}

	writeJSON(w, http.StatusOK, api.MemesResponse{Memes: memes})
}

func (h *Handler) CreateMeme(w http.ResponseWriter, r *http.Request) {
	var body api.CreateMemeRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err, internal_errors.CodeCreate, "")
		return
	}

	meme, err := h.meme.Create(r.Context(), body.ImageData, body.Title, body.CreatorName)
	if err != nil {
		writeError(w, err, internal_errors.CodeCreate, "Failed to create meme")
		return
	}

	writeJSON(w, http.StatusCreated, api.CreateMemeResponse{Meme: *meme})
}
