package audit

import (
	"time"

	"github.com/credencelab/credence/internal/domain"
)

// Trail is the ordered, append-only sequence of audit records. Records are
// never mutated, filtered, or deduplicated: every Record call produces
// exactly one entry, for the lifetime of the process. The trail has no
// internal locking; the host serializes access along with the rest of the
// engine.
type Trail struct {
	records []domain.AuditRecord
}

func NewTrail() *Trail {
	return &Trail{}
}

// Record appends one immutable entry stamped with the current time.
func (t *Trail) Record(eventType domain.EventType, payload map[string]any) {
	t.records = append(t.records, domain.AuditRecord{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Payload:   payload,
	})
}

// Len returns the number of recorded events.
func (t *Trail) Len() int {
	return len(t.records)
}

// Events returns a copy of the trail in insertion order.
func (t *Trail) Events() []domain.AuditRecord {
	out := make([]domain.AuditRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Export renders the full trail as plain nested mappings for external
// consumption. The result is a snapshot; later appends do not affect it.
func (t *Trail) Export() []map[string]any {
	out := make([]map[string]any, 0, len(t.records))
	for _, r := range t.records {
		out = append(out, r.Export())
	}
	return out
}
