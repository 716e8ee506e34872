package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"comedyFinderAPI/internal/logger"
	"comedyFinderAPI/services"
)

type VenueHandler struct {
	venueService services.VenueStore
}

// NewVenueHandler accepts a nil store; every request then answers 503.
func NewVenueHandler(venueService services.VenueStore) *VenueHandler {
	return &VenueHandler{
		venueService: venueService,
	}
}

func (h *VenueHandler) GetAllVenues(w http.ResponseWriter, r *http.Request) {
	if h.venueService == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Venue store not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	allVenues, err := h.venueService.GetAllVenues(ctx)
	if err != nil {
		logger.FromContext(ctx, "handler").Errorw("failed to list venues", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondWithJSON(w, http.StatusOK, allVenues)
}

func (h *VenueHandler) GetVenue(w http.ResponseWriter, r *http.Request) {
	if h.venueService == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Venue store not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	placeID := mux.Vars(r)["placeId"]

	venue, err := h.venueService.GetVenue(ctx, placeID)
	if err != nil {
		if errors.Is(err, services.ErrVenueNotFound) {
			respondWithError(w, http.StatusNotFound, "Venue not found")
			return
		}
		logger.FromContext(ctx, "handler").Errorw("failed to get venue", "place_id", placeID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondWithJSON(w, http.StatusOK, venue)
}
