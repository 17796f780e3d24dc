package service

import (
	"errors"

	"github.com/credencelab/credence/internal/domain"
)

// Error type constants for classification
const (
	ErrTypeConstitutional = "constitutional_violation"
	ErrTypeNotFound       = "not_found"
	ErrTypeValidation     = "validation"
	ErrTypeInternal       = "internal"
)

// ClassifyError inspects an error and returns its type classification.
// This enables grouping errors by category in metrics.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	var violation *domain.ConstitutionalViolation
	if errors.As(err, &violation) {
		return ErrTypeConstitutional
	}

	if errors.Is(err, ErrTruthNotFound) {
		return ErrTypeNotFound
	}

	switch {
	case errors.Is(err, ErrContentEmpty),
		errors.Is(err, ErrSourceEmpty),
		errors.Is(err, ErrAgentEmpty),
		errors.Is(err, ErrNoUpstreams),
		errors.Is(err, ErrNoSources),
		errors.Is(err, ErrOpportunityEmpty),
		errors.Is(err, ErrInvalidThreshold):
		return ErrTypeValidation
	}

	return ErrTypeInternal
}
