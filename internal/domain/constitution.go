package domain

import (
	"fmt"
	"math"
)

// Default constitutional bounds.
const (
	DefaultConfidenceMin    = 0.0
	DefaultConfidenceMax    = 1.0
	DefaultContradictionMin = 0.0
	DefaultContradictionMax = 1.0
	DefaultMaxSources       = 1024
)

// Constitution is the fixed set of numeric invariant bounds governing all
// truth vector state. It is built once and read-only afterwards.
type Constitution struct {
	ConfidenceMin    float64 `json:"confidence_min"`
	ConfidenceMax    float64 `json:"confidence_max"`
	ContradictionMin float64 `json:"contradiction_min"`
	ContradictionMax float64 `json:"contradiction_max"`
	MaxSources       int     `json:"max_sources"`
}

func DefaultConstitution() Constitution {
	return Constitution{
		ConfidenceMin:    DefaultConfidenceMin,
		ConfidenceMax:    DefaultConfidenceMax,
		ContradictionMin: DefaultContradictionMin,
		ContradictionMax: DefaultContradictionMax,
		MaxSources:       DefaultMaxSources,
	}
}

// ClampConfidence normalizes a raw confidence input into bounds. NaN maps
// to the lower bound so malformed input cannot smuggle NaN into a record.
func (c Constitution) ClampConfidence(v float64) float64 {
	if math.IsNaN(v) || v < c.ConfidenceMin {
		return c.ConfidenceMin
	}
	if v > c.ConfidenceMax {
		return c.ConfidenceMax
	}
	return v
}

// ClampContradiction normalizes a raw contradiction score into bounds.
func (c Constitution) ClampContradiction(v float64) float64 {
	if math.IsNaN(v) || v < c.ContradictionMin {
		return c.ContradictionMin
	}
	if v > c.ContradictionMax {
		return c.ContradictionMax
	}
	return v
}

// CheckVector audits a fully mutated vector against every bound. It runs
// after each mutation and before commit, and never clamps: an out-of-range
// field fails the whole operation even when input-side clamping should
// have made that impossible.
func (c Constitution) CheckVector(v *TruthVector) error {
	if math.IsNaN(v.Confidence) || v.Confidence < c.ConfidenceMin || v.Confidence > c.ConfidenceMax {
		return &ConstitutionalViolation{
			Field: "confidence",
			Value: v.Confidence,
			Bound: fmt.Sprintf("[%g, %g]", c.ConfidenceMin, c.ConfidenceMax),
		}
	}
	if math.IsNaN(v.ContradictionScore) || v.ContradictionScore < c.ContradictionMin || v.ContradictionScore > c.ContradictionMax {
		return &ConstitutionalViolation{
			Field: "contradiction_score",
			Value: v.ContradictionScore,
			Bound: fmt.Sprintf("[%g, %g]", c.ContradictionMin, c.ContradictionMax),
		}
	}
	if len(v.Sources) > c.MaxSources {
		return &ConstitutionalViolation{
			Field: "sources",
			Value: len(v.Sources),
			Bound: fmt.Sprintf("max %d", c.MaxSources),
		}
	}
	return nil
}
