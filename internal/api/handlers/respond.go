package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/credencelab/credence/internal/domain"
	"github.com/credencelab/credence/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeViolation reports a constitutional violation with its structured detail.
func writeViolation(w http.ResponseWriter, violation *domain.ConstitutionalViolation) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error": violation.Error(),
		"violation": map[string]any{
			"field":  violation.Field,
			"value":  violation.Value,
			"bound":  violation.Bound,
			"detail": violation.Detail,
		},
	})
}

// handleServiceError maps service errors to HTTP statuses: constitutional
// violations to 422, unknown hashes to 404, validation sentinels to 400,
// anything else to 500 with the fallback message.
func handleServiceError(w http.ResponseWriter, err error, fallback string) {
	var violation *domain.ConstitutionalViolation
	if errors.As(err, &violation) {
		writeViolation(w, violation)
		return
	}

	switch {
	case errors.Is(err, service.ErrTruthNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrContentEmpty),
		errors.Is(err, service.ErrSourceEmpty),
		errors.Is(err, service.ErrAgentEmpty),
		errors.Is(err, service.ErrNoUpstreams),
		errors.Is(err, service.ErrNoSources),
		errors.Is(err, service.ErrOpportunityEmpty),
		errors.Is(err, service.ErrInvalidThreshold):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
