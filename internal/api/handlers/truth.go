package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/credencelab/credence/internal/engine"
	"github.com/credencelab/credence/internal/service"
)

type TruthHandler struct {
	svc *service.EpistemicService
}

func NewTruthHandler(svc *service.EpistemicService) *TruthHandler {
	return &TruthHandler{svc: svc}
}

type createTruthRequest struct {
	Content    string   `json:"content"`
	Source     string   `json:"source"`
	Confidence *float64 `json:"confidence,omitempty"`
}

func (h *TruthHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTruthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	confidence := engine.DefaultConfidence
	if req.Confidence != nil {
		confidence = *req.Confidence
	}

	v, err := h.svc.CreateTruthVector(r.Context(), req.Content, req.Source, confidence)
	if err != nil {
		handleServiceError(w, err, "failed to create truth vector")
		return
	}

	writeJSON(w, http.StatusCreated, v)
}

func (h *TruthHandler) GetByHash(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	v, err := h.svc.Vector(r.Context(), hash)
	if err != nil {
		handleServiceError(w, err, "failed to get truth vector")
		return
	}

	writeJSON(w, http.StatusOK, v)
}

type corroborateRequest struct {
	Source string `json:"source"`
}

func (h *TruthHandler) Corroborate(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	var req corroborateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v, err := h.svc.Corroborate(r.Context(), hash, req.Source)
	if err != nil {
		handleServiceError(w, err, "failed to corroborate truth vector")
		return
	}

	writeJSON(w, http.StatusOK, v)
}

type contradictRequest struct {
	Score *float64 `json:"score"`
}

func (h *TruthHandler) FlagContradiction(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	var req contradictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Score == nil {
		writeError(w, http.StatusBadRequest, "score is required")
		return
	}

	v, err := h.svc.FlagContradiction(r.Context(), hash, *req.Score)
	if err != nil {
		handleServiceError(w, err, "failed to flag contradiction")
		return
	}

	writeJSON(w, http.StatusOK, v)
}
