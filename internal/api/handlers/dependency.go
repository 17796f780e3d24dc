package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/credencelab/credence/internal/graph"
	"github.com/credencelab/credence/internal/service"
)

type DependencyHandler struct {
	svc *service.EpistemicService
}

func NewDependencyHandler(svc *service.EpistemicService) *DependencyHandler {
	return &DependencyHandler{svc: svc}
}

type createDependencyRequest struct {
	Source   string   `json:"source"`
	Upstream []string `json:"upstream"`
}

type dependencyResponse struct {
	Source   string   `json:"source"`
	Upstream []string `json:"upstream"`
}

func (h *DependencyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDependencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.AddDependency(r.Context(), req.Source, req.Upstream); err != nil {
		handleServiceError(w, err, "failed to add dependency")
		return
	}

	writeJSON(w, http.StatusCreated, dependencyResponse{
		Source:   req.Source,
		Upstream: req.Upstream,
	})
}

type upstreamResponse struct {
	Source   string   `json:"source"`
	Upstream []string `json:"upstream"`
	Count    int      `json:"count"`
}

func (h *DependencyHandler) Upstream(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")

	upstream, err := h.svc.AllUpstream(r.Context(), source)
	if err != nil {
		handleServiceError(w, err, "failed to resolve upstream sources")
		return
	}
	if upstream == nil {
		upstream = []string{}
	}

	writeJSON(w, http.StatusOK, upstreamResponse{
		Source:   source,
		Upstream: upstream,
		Count:    len(upstream),
	})
}

type independenceResponse struct {
	Sources []string `json:"sources"`
	Score   float64  `json:"independence_score"`
}

func (h *DependencyHandler) Independence(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("sources")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "sources parameter is required")
		return
	}

	var sources []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			sources = append(sources, s)
		}
	}

	score, err := h.svc.IndependenceScore(r.Context(), sources)
	if err != nil {
		handleServiceError(w, err, "failed to compute independence score")
		return
	}

	writeJSON(w, http.StatusOK, independenceResponse{
		Sources: sources,
		Score:   score,
	})
}

type convergencesResponse struct {
	Convergences []graph.Convergence `json:"convergences"`
	Threshold    float64             `json:"threshold"`
	Count        int                 `json:"count"`
}

func (h *DependencyHandler) Convergences(w http.ResponseWriter, r *http.Request) {
	threshold := service.DefaultConvergenceThreshold
	if tStr := r.URL.Query().Get("threshold"); tStr != "" {
		t, err := strconv.ParseFloat(tStr, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid threshold parameter")
			return
		}
		threshold = t
	}

	convergences, err := h.svc.HiddenConvergences(r.Context(), threshold)
	if err != nil {
		handleServiceError(w, err, "failed to detect convergences")
		return
	}
	if convergences == nil {
		convergences = []graph.Convergence{}
	}

	writeJSON(w, http.StatusOK, convergencesResponse{
		Convergences: convergences,
		Threshold:    threshold,
		Count:        len(convergences),
	})
}

type integrateRequest struct {
	Agent    string   `json:"agent"`
	Upstream []string `json:"upstream"`
}

type integrateResponse struct {
	Agent    string   `json:"agent"`
	Upstream []string `json:"upstream"`
}

func (h *DependencyHandler) Integrate(w http.ResponseWriter, r *http.Request) {
	var req integrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.IntegrateAgent(r.Context(), req.Agent, req.Upstream); err != nil {
		handleServiceError(w, err, "failed to integrate agent")
		return
	}

	writeJSON(w, http.StatusCreated, integrateResponse{
		Agent:    req.Agent,
		Upstream: req.Upstream,
	})
}
