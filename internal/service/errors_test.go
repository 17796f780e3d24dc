package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/credencelab/credence/internal/domain"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"constitutional", &domain.ConstitutionalViolation{Field: "confidence"}, ErrTypeConstitutional},
		{"not found", ErrTruthNotFound, ErrTypeNotFound},
		{"empty content", ErrContentEmpty, ErrTypeValidation},
		{"empty source", ErrSourceEmpty, ErrTypeValidation},
		{"bad threshold", ErrInvalidThreshold, ErrTypeValidation},
		{"wrapped validation", fmt.Errorf("decode: %w", ErrContentEmpty), ErrTypeValidation},
		{"wrapped violation", fmt.Errorf("engine: %w", &domain.ConstitutionalViolation{Field: "sources"}), ErrTypeConstitutional},
		{"unknown", errors.New("boom"), ErrTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
