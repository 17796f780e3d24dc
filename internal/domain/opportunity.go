package domain

import (
	"encoding/json"
	"fmt"
)

// Opportunity is the free-form record collaborators submit for validation,
// e.g. {"type": ..., "description": ..., "confidence": "HIGH", "source": ...}.
type Opportunity map[string]any

// ConfidenceLabel is the coarse three-level confidence attached to
// submitted opportunity records.
type ConfidenceLabel string

const (
	ConfidenceLow    ConfidenceLabel = "LOW"
	ConfidenceMedium ConfidenceLabel = "MEDIUM"
	ConfidenceHigh   ConfidenceLabel = "HIGH"
)

// ConfidenceWeights maps labels to initial confidence values.
var ConfidenceWeights = map[ConfidenceLabel]float64{
	ConfidenceLow:    0.3,
	ConfidenceMedium: 0.5,
	ConfidenceHigh:   0.8,
}

// Weight returns the label's confidence value. Unrecognized labels fall
// back to MEDIUM.
func (l ConfidenceLabel) Weight() float64 {
	if w, ok := ConfidenceWeights[l]; ok {
		return w
	}
	return ConfidenceWeights[ConfidenceMedium]
}

// UnknownSource labels records submitted without a source field.
const UnknownSource = "UNKNOWN"

// Source returns the record's source identifier, or UnknownSource when the
// field is absent or not a string.
func (o Opportunity) Source() string {
	if s, ok := o["source"].(string); ok && s != "" {
		return s
	}
	return UnknownSource
}

// Confidence maps the record's confidence label to its weight. Absent or
// unrecognized labels count as MEDIUM.
func (o Opportunity) Confidence() float64 {
	s, _ := o["confidence"].(string)
	return ConfidenceLabel(s).Weight()
}

// CanonicalContent serializes the record with stable key ordering, so the
// same record always derives the same content identity regardless of how
// its keys were supplied. encoding/json marshals map keys sorted, at every
// nesting level.
func (o Opportunity) CanonicalContent() (string, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("failed to serialize opportunity: %w", err)
	}
	return string(b), nil
}

// Enrich returns a copy of the record with the truth vector summary
// attached under "truth_vector". The receiver is not modified.
func (o Opportunity) Enrich(summary TruthSummary) Opportunity {
	out := make(Opportunity, len(o)+1)
	for k, v := range o {
		out[k] = v
	}
	out["truth_vector"] = summary
	return out
}
