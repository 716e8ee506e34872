package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db   Pinger
	mode string
}

// NewHealthHandler takes a nil db when the cache lives in memory.
func NewHealthHandler(db Pinger, mode string) *HealthHandler {
	return &HealthHandler{db: db, mode: mode}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	store := "memory"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		store = "postgres"
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "comedyFinder-api",
		"mode":    h.mode,
		"cache":   store,
	})
}
