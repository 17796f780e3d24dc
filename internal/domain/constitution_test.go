package domain

import (
	"math"
	"strings"
	"testing"
)

func TestClampConfidence(t *testing.T) {
	c := DefaultConstitution()

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 0.42, 0.42},
		{"below min", -0.5, 0.0},
		{"above max", 1.5, 1.0},
		{"at min", 0.0, 0.0},
		{"at max", 1.0, 1.0},
		{"NaN maps to min", math.NaN(), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ClampConfidence(tt.in); got != tt.want {
				t.Errorf("ClampConfidence(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampContradiction(t *testing.T) {
	c := DefaultConstitution()

	if got := c.ClampContradiction(1.7); got != 1.0 {
		t.Errorf("ClampContradiction(1.7) = %v, want 1.0", got)
	}
	if got := c.ClampContradiction(-0.1); got != 0.0 {
		t.Errorf("ClampContradiction(-0.1) = %v, want 0.0", got)
	}
	if got := c.ClampContradiction(math.NaN()); got != 0.0 {
		t.Errorf("ClampContradiction(NaN) = %v, want 0.0", got)
	}
}

func TestCheckVector(t *testing.T) {
	c := DefaultConstitution()

	valid := NewTruthVector("content", "a", 0.5)
	if err := c.CheckVector(valid); err != nil {
		t.Fatalf("valid vector rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*TruthVector)
		field  string
	}{
		{"confidence above max", func(v *TruthVector) { v.Confidence = 1.5 }, "confidence"},
		{"confidence below min", func(v *TruthVector) { v.Confidence = -0.1 }, "confidence"},
		{"confidence NaN", func(v *TruthVector) { v.Confidence = math.NaN() }, "confidence"},
		{"contradiction above max", func(v *TruthVector) { v.ContradictionScore = 2.0 }, "contradiction_score"},
		{"contradiction NaN", func(v *TruthVector) { v.ContradictionScore = math.NaN() }, "contradiction_score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewTruthVector("content", "a", 0.5)
			tt.mutate(v)

			err := c.CheckVector(v)
			if err == nil {
				t.Fatal("expected a constitutional violation")
			}
			violation, ok := err.(*ConstitutionalViolation)
			if !ok {
				t.Fatalf("expected *ConstitutionalViolation, got %T", err)
			}
			if violation.Field != tt.field {
				t.Errorf("violation field = %q, want %q", violation.Field, tt.field)
			}
		})
	}
}

func TestCheckVectorMaxSources(t *testing.T) {
	c := DefaultConstitution()
	c.MaxSources = 2

	v := NewTruthVector("content", "a", 0.5)
	v.AddSource("b")
	if err := c.CheckVector(v); err != nil {
		t.Fatalf("vector at the source limit rejected: %v", err)
	}

	v.AddSource("c")
	err := c.CheckVector(v)
	if err == nil {
		t.Fatal("expected a violation above the source limit")
	}
	violation := err.(*ConstitutionalViolation)
	if violation.Field != "sources" {
		t.Errorf("violation field = %q, want sources", violation.Field)
	}
	if violation.Bound != "max 2" {
		t.Errorf("violation bound = %q, want %q", violation.Bound, "max 2")
	}
}

func TestNarrowConstitution(t *testing.T) {
	c := Constitution{
		ConfidenceMin:    0.2,
		ConfidenceMax:    0.8,
		ContradictionMin: 0.0,
		ContradictionMax: 1.0,
		MaxSources:       DefaultMaxSources,
	}

	if got := c.ClampConfidence(0.1); got != 0.2 {
		t.Errorf("ClampConfidence(0.1) = %v, want 0.2", got)
	}
	if got := c.ClampConfidence(0.95); got != 0.8 {
		t.Errorf("ClampConfidence(0.95) = %v, want 0.8", got)
	}

	v := NewTruthVector("content", "a", 0.9)
	if err := c.CheckVector(v); err == nil {
		t.Error("confidence 0.9 should violate a 0.8 ceiling")
	}
}

func TestViolationMessage(t *testing.T) {
	err := &ConstitutionalViolation{Field: "confidence", Value: 1.5, Bound: "[0, 1]"}
	want := "constitutional violation: confidence=1.5 violates [0, 1]"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	withDetail := &ConstitutionalViolation{
		Field:  "dependency_graph",
		Value:  "a -> b -> a",
		Bound:  "acyclic",
		Detail: "adding a -> [b] closes a cycle",
	}
	if !strings.Contains(withDetail.Error(), "closes a cycle") {
		t.Errorf("Error() = %q, want detail appended", withDetail.Error())
	}
}
