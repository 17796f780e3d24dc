package domain

import "time"

// EventType enumerates the audit events the engine emits.
type EventType string

const (
	EventTruthCreated         EventType = "truth_created"
	EventTruthCorroborated    EventType = "truth_corroborated"
	EventTruthContradiction   EventType = "truth_contradiction"
	EventOpportunityValidated EventType = "opportunity_validated"
	EventDependencyAdded      EventType = "dependency_added"
	EventDependencyCycle      EventType = "dependency_cycle_detected"
	EventEngineIntegration    EventType = "engine_integration"
)

func ValidEventType(t string) bool {
	switch EventType(t) {
	case EventTruthCreated, EventTruthCorroborated, EventTruthContradiction,
		EventOpportunityValidated, EventDependencyAdded, EventDependencyCycle,
		EventEngineIntegration:
		return true
	}
	return false
}

// AuditRecord is one immutable entry in the append-only audit trail.
type AuditRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	EventType EventType      `json:"event_type"`
	Payload   map[string]any `json:"payload"`
}

// Export renders the record as a plain mapping with an RFC 3339 timestamp
// string, the shape consumed by external logging and storage.
func (r AuditRecord) Export() map[string]any {
	return map[string]any{
		"timestamp":  r.Timestamp.Format(time.RFC3339Nano),
		"event_type": string(r.EventType),
		"payload":    r.Payload,
	}
}
