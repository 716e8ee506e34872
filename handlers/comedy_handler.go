package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"comedyFinderAPI/internal/logger"
	"comedyFinderAPI/internal/types/comedy"
	"comedyFinderAPI/services"
	"comedyFinderAPI/utils"
)

const maxRequestBody = 1 << 20

// ComedyFinder runs the search pipeline for one coordinate.
type ComedyFinder interface {
	FindComedy(ctx context.Context, lat, lng float64) (*comedy.FindResponse, error)
}

type ComedyHandler struct {
	comedyService ComedyFinder
}

func NewComedyHandler(comedyService ComedyFinder) *ComedyHandler {
	return &ComedyHandler{
		comedyService: comedyService,
	}
}

func (h *ComedyHandler) FindComedy(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), "handler")

	var req comedy.FindRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing latitude or longitude")
		return
	}

	if req.Latitude == nil || req.Longitude == nil {
		respondWithError(w, http.StatusBadRequest, "Missing latitude or longitude")
		return
	}

	lat, lng := *req.Latitude, *req.Longitude
	if !utils.ValidCoordinates(lat, lng) {
		respondWithError(w, http.StatusBadRequest, "Invalid latitude or longitude")
		return
	}

	// no handler deadline: the pipeline is bounded by the provider timeouts
	resp, err := h.comedyService.FindComedy(r.Context(), lat, lng)
	if err != nil {
		status := services.StatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Errorw("find comedy failed", "lat", lat, "lng", lng, "error", err)
		} else {
			log.Infow("find comedy returned no results", "lat", lat, "lng", lng, "status", status)
		}
		respondWithError(w, status, services.PublicMessage(err))
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
