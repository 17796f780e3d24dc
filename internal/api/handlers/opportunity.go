package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/credencelab/credence/internal/domain"
	"github.com/credencelab/credence/internal/engine"
	"github.com/credencelab/credence/internal/service"
)

type OpportunityHandler struct {
	svc *service.EpistemicService
}

func NewOpportunityHandler(svc *service.EpistemicService) *OpportunityHandler {
	return &OpportunityHandler{svc: svc}
}

func (h *OpportunityHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var opportunity domain.Opportunity
	if err := json.NewDecoder(r.Body).Decode(&opportunity); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	enriched, err := h.svc.ValidateOpportunity(r.Context(), opportunity)
	if err != nil {
		handleServiceError(w, err, "failed to validate opportunity")
		return
	}

	writeJSON(w, http.StatusOK, enriched)
}

type consensusResponse struct {
	Consensus []engine.ConsensusEntry `json:"consensus"`
	Count     int                     `json:"count"`
}

func (h *OpportunityHandler) Consensus(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ConsensusOpportunities(r.Context())
	if err != nil {
		handleServiceError(w, err, "failed to list consensus opportunities")
		return
	}
	if entries == nil {
		entries = []engine.ConsensusEntry{}
	}

	writeJSON(w, http.StatusOK, consensusResponse{
		Consensus: entries,
		Count:     len(entries),
	})
}
