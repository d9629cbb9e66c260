package api

import (
	"context"
	"net/http"
	"time"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/database"
)

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong"))
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := database.Ping(ctx, h.db); err != nil {
		respondError(w, r, apperr.Internal("database unavailable", err))
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "ok"}, "")
}
