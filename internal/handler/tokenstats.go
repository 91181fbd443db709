package handler

import (
	"net/http"

	"github.com/morb-dev/morbsite/internal/api"
	internal_errors "github.com/morb-dev/morbsite/internal/errors"
)

func (h *Handler) TokenStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tokenStats.Get(r.Context())
	if err != nil {
		writeError(w, err, internal_errors.CodeFetch, "Failed to fetch token stats")
		return
	}

	writeJSON(w, http.StatusOK, api.TokenStatsResponse{Success: true, Data: stats})
}
