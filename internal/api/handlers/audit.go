package handlers

import (
	"net/http"

	"github.com/credencelab/credence/internal/domain"
	"github.com/credencelab/credence/internal/service"
)

type AuditHandler struct {
	svc *service.EpistemicService
}

func NewAuditHandler(svc *service.EpistemicService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

type auditResponse struct {
	Events []map[string]any `json:"events"`
	Count  int              `json:"count"`
}

// List returns the audit trail oldest first, optionally filtered by event_type.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	events := h.svc.AuditLog(r.Context())

	if eventType := r.URL.Query().Get("event_type"); eventType != "" {
		if !domain.ValidEventType(eventType) {
			writeError(w, http.StatusBadRequest, "invalid event_type parameter")
			return
		}
		filtered := make([]map[string]any, 0, len(events))
		for _, e := range events {
			if e["event_type"] == eventType {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	if events == nil {
		events = []map[string]any{}
	}

	writeJSON(w, http.StatusOK, auditResponse{
		Events: events,
		Count:  len(events),
	})
}
