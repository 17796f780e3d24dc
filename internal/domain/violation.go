package domain

import "fmt"

// ConstitutionalViolation reports an attempted breach of an invariant
// bound: a bounded field leaving its legal range, a source set exceeding
// the maximum, or a dependency edge that would close a cycle. It aborts
// the single operation that raised it and leaves prior state untouched.
type ConstitutionalViolation struct {
	Field  string `json:"field"`
	Value  any    `json:"value"`
	Bound  string `json:"bound"`
	Detail string `json:"detail,omitempty"`
}

func (e *ConstitutionalViolation) Error() string {
	msg := fmt.Sprintf("constitutional violation: %s=%v violates %s", e.Field, e.Value, e.Bound)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}
