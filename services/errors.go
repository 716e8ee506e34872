package services

import (
	"errors"
	"net/http"
)

// PipelineError carries the HTTP status a failure should surface as.
type PipelineError struct {
	Status  int
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

var (
	ErrNotConfigured = &PipelineError{
		Status:  http.StatusInternalServerError,
		Message: "API keys not configured. Please set GOOGLE_PLACES_API_KEY and OPENAI_API_KEY.",
	}
	ErrScraperNotConfigured = &PipelineError{
		Status:  http.StatusInternalServerError,
		Message: "Scraping API key not configured. Please set FIRECRAWL_API_KEY.",
	}
	ErrNoVenues = &PipelineError{
		Status:  http.StatusNotFound,
		Message: "No comedy venues found in your area",
	}
	ErrNoEvents = &PipelineError{
		Status:  http.StatusNotFound,
		Message: "No comedy events found in your area",
	}
	ErrClassification = &PipelineError{
		Status:  http.StatusInternalServerError,
		Message: "Could not classify comedy events",
	}
)

// StatusCode maps an error from the pipeline to an HTTP status.
func StatusCode(err error) int {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Status
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text placed in the JSON error body.
func PublicMessage(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Message
	}
	if err == nil || err.Error() == "" {
		return "Internal server error"
	}
	return err.Error()
}
