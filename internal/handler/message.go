package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/morb-dev/morbsite/internal/api"
	internal_errors "github.com/morb-dev/morbsite/internal/errors"
	"github.com/morb-dev/morbsite/internal/iphash"
)

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitQuery := r.URL.Query().Get("limit"); limitQuery != "" {
		parsed, err := strconv.Atoi(limitQuery)
		if err != nil {
			writeError(w, internal_errors.Validation("limit must be an integer"), internal_errors.CodeFetch, "")
			return
		}
		limit = parsed
	}
	before := r.URL.Query().Get("before")

	feed, err := h.message.List(r.Context(), limit, before)
	if err != nil {
		writeError(w, err, internal_errors.CodeFetch, "Failed to fetch messages")
		return
	}

	writeJSON(w, http.StatusOK, api.MessagesResponse{
		Messages:   feed.Messages,
		HasMore:    feed.HasMore,
		NextCursor: feed.NextCursor,
	})
}

func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.message.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, internal_errors.CodeFetch, "Failed to fetch message")
		return
	}

	writeJSON(w, http.StatusOK, api.MessageResponse{Message: *msg})
}

func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var body api.CreateMessageRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err, internal_errors.CodeCreate, "")
		return
	}

	msg, err := h.message.Create(r.Context(), body.Content, body.Username, body.ParentId, iphash.ClientIP(r))
	if err != nil {
		writeError(w, err, internal_errors.CodeCreate, "Failed to create message")
		return
	}

	writeJSON(w, http.StatusCreated, api.CreateMessageResponse{Message: *msg})
}

func (h *Handler) ApplyReaction(w http.ResponseWriter, r *http.Request) {
	messageId := chi.URLParam(r, "id")

	var body api.ReactionRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err, internal_errors.CodeReaction, "")
		return
	}

	counts, err := h.reaction.Apply(r.Context(), messageId, body.Reaction)
	if err != nil {
		writeError(w, err, internal_errors.CodeReaction, "Failed to apply reaction")
		return
	}

	writeJSON(w, http.StatusOK, api.ReactionResponse{MessageId: messageId, Reactions: counts})
}

func (h *Handler) SoftDeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageId := chi.URLParam(r, "id")
	suppliedSecret := r.Header.Get("x-moderation-secret")

	msg, err := h.message.SoftDelete(r.Context(), messageId, suppliedSecret)
	if err != nil {
		writeError(w, err, internal_errors.CodeDelete, "Failed to delete message")
		return
	}

	writeJSON(w, http.StatusOK, api.DeleteMessageResponse{Success: true, Message: *msg})
}
