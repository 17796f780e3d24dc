package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/credencelab/credence/internal/domain"
	"github.com/credencelab/credence/internal/engine"
	"github.com/credencelab/credence/internal/graph"
	"github.com/credencelab/credence/internal/metrics"
	"go.uber.org/zap"
)

var (
	ErrTruthNotFound    = errors.New("truth vector not found")
	ErrContentEmpty     = errors.New("content is required")
	ErrSourceEmpty      = errors.New("source is required")
	ErrAgentEmpty       = errors.New("agent is required")
	ErrNoUpstreams      = errors.New("at least one upstream source is required")
	ErrNoSources        = errors.New("at least one source is required")
	ErrOpportunityEmpty = errors.New("opportunity data is required")
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")
)

// Status labels for operation metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Storage type labels for gauge metrics.
const (
	StorageTruthVectors = "truth_vectors"
	StorageGraphNodes   = "graph_nodes"
	StorageGraphEdges   = "graph_edges"
	StorageAuditEvents  = "audit_events"
)

// EpistemicService serializes access to the validation engine. The engine is
// not safe for concurrent use, so every call holds a single mutex. Vectors
// the engine returns are copy-on-write snapshots and stay stable after the
// lock is released.
type EpistemicService struct {
	mu      sync.Mutex
	engine  *engine.Engine
	logger  *zap.Logger
	metrics metrics.Collector
}

func NewEpistemicService(e *engine.Engine, logger *zap.Logger, collector metrics.Collector) *EpistemicService {
	return &EpistemicService{
		engine:  e,
		logger:  logger,
		metrics: collector,
	}
}

func (s *EpistemicService) CreateTruthVector(ctx context.Context, content, source string, confidence float64) (v *domain.TruthVector, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "create_truth_vector", start, err) }()

	if content == "" {
		return nil, ErrContentEmpty
	}
	if source == "" {
		return nil, ErrSourceEmpty
	}

	s.mu.Lock()
	v, err = s.engine.CreateTruthVector(content, source, confidence)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("truth vector created",
		zap.String("content_hash", v.ContentHash),
		zap.String("source", source),
		zap.Float64("confidence", v.Confidence))

	return v, nil
}

func (s *EpistemicService) Corroborate(ctx context.Context, contentHash, source string) (v *domain.TruthVector, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "corroborate", start, err) }()

	if source == "" {
		return nil, ErrSourceEmpty
	}

	s.mu.Lock()
	v, err = s.engine.Corroborate(contentHash, source)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrTruthNotFound
	}

	s.logger.Debug("truth vector corroborated",
		zap.String("content_hash", v.ContentHash),
		zap.String("source", source),
		zap.Int("sources", len(v.Sources)),
		zap.Float64("confidence", v.Confidence),
		zap.String("state", string(v.State)))

	return v, nil
}

func (s *EpistemicService) FlagContradiction(ctx context.Context, contentHash string, score float64) (v *domain.TruthVector, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "flag_contradiction", start, err) }()

	s.mu.Lock()
	v, err = s.engine.FlagContradiction(contentHash, score)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrTruthNotFound
	}

	s.logger.Debug("contradiction flagged",
		zap.String("content_hash", v.ContentHash),
		zap.Float64("contradiction_score", v.ContradictionScore),
		zap.String("state", string(v.State)))

	return v, nil
}

func (s *EpistemicService) ValidateOpportunity(ctx context.Context, opportunity domain.Opportunity) (enriched domain.Opportunity, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "validate_opportunity", start, err) }()

	if len(opportunity) == 0 {
		return nil, ErrOpportunityEmpty
	}

	s.mu.Lock()
	enriched, err = s.engine.ValidateOpportunity(opportunity)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("opportunity validated", zap.String("source", opportunity.Source()))

	return enriched, nil
}

func (s *EpistemicService) ConsensusOpportunities(ctx context.Context) ([]engine.ConsensusEntry, error) {
	start := time.Now()

	s.mu.Lock()
	entries := s.engine.ConsensusOpportunities()
	s.mu.Unlock()

	s.record(ctx, "consensus_opportunities", start, nil)
	return entries, nil
}

func (s *EpistemicService) AddDependency(ctx context.Context, source string, upstreams []string) (err error) {
	start := time.Now()
	defer func() { s.record(ctx, "add_dependency", start, err) }()

	if source == "" {
		return ErrSourceEmpty
	}
	if len(upstreams) == 0 {
		return ErrNoUpstreams
	}
	for _, u := range upstreams {
		if u == "" {
			return ErrSourceEmpty
		}
	}

	s.mu.Lock()
	err = s.engine.AddDependency(source, upstreams)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Debug("dependency recorded",
		zap.String("source", source),
		zap.Strings("upstream", upstreams))

	return nil
}

func (s *EpistemicService) IntegrateAgent(ctx context.Context, agent string, upstreams []string) (err error) {
	start := time.Now()
	defer func() { s.record(ctx, "integrate_agent", start, err) }()

	if agent == "" {
		return ErrAgentEmpty
	}
	if len(upstreams) == 0 {
		return ErrNoUpstreams
	}
	for _, u := range upstreams {
		if u == "" {
			return ErrSourceEmpty
		}
	}

	s.mu.Lock()
	err = s.engine.IntegrateAgent(agent, upstreams)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Debug("agent integrated",
		zap.String("agent", agent),
		zap.Strings("upstream", upstreams))

	return nil
}

func (s *EpistemicService) AllUpstream(ctx context.Context, source string) (upstream []string, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "all_upstream", start, err) }()

	if source == "" {
		return nil, ErrSourceEmpty
	}

	s.mu.Lock()
	upstream = s.engine.AllUpstream(source)
	s.mu.Unlock()

	return upstream, nil
}

func (s *EpistemicService) IndependenceScore(ctx context.Context, sources []string) (score float64, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "independence_score", start, err) }()

	if len(sources) == 0 {
		return 0, ErrNoSources
	}
	for _, src := range sources {
		if src == "" {
			return 0, ErrSourceEmpty
		}
	}

	s.mu.Lock()
	score = s.engine.IndependenceScore(sources)
	s.mu.Unlock()

	return score, nil
}

func (s *EpistemicService) HiddenConvergences(ctx context.Context, threshold float64) (convergences []graph.Convergence, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "hidden_convergences", start, err) }()

	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, ErrInvalidThreshold
	}

	s.mu.Lock()
	convergences = s.engine.HiddenConvergences(threshold)
	s.mu.Unlock()

	return convergences, nil
}

func (s *EpistemicService) Vector(ctx context.Context, contentHash string) (v *domain.TruthVector, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "get_truth_vector", start, err) }()

	s.mu.Lock()
	v = s.engine.Vector(contentHash)
	s.mu.Unlock()
	if v == nil {
		return nil, ErrTruthNotFound
	}

	return v, nil
}

// AuditLog returns the full audit trail as exportable records, oldest first.
func (s *EpistemicService) AuditLog(ctx context.Context) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Trail().Export()
}

// EngineStats is a point-in-time snapshot of engine storage sizes.
type EngineStats struct {
	TruthVectors int `json:"truth_vectors"`
	GraphNodes   int `json:"graph_nodes"`
	GraphEdges   int `json:"graph_edges"`
	AuditEvents  int `json:"audit_events"`
}

func (s *EpistemicService) Stats(ctx context.Context) EngineStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EngineStats{
		TruthVectors: s.engine.VectorCount(),
		GraphNodes:   s.engine.Graph().NodeCount(),
		GraphEdges:   s.engine.Graph().EdgeCount(),
		AuditEvents:  s.engine.Trail().Len(),
	}
}

// PublishGauges pushes current storage sizes to the metrics collector.
func (s *EpistemicService) PublishGauges(ctx context.Context) {
	stats := s.Stats(ctx)
	s.metrics.SetStorageCount(ctx, StorageTruthVectors, int64(stats.TruthVectors))
	s.metrics.SetStorageCount(ctx, StorageGraphNodes, int64(stats.GraphNodes))
	s.metrics.SetStorageCount(ctx, StorageGraphEdges, int64(stats.GraphEdges))
	s.metrics.SetStorageCount(ctx, StorageAuditEvents, int64(stats.AuditEvents))
}

func (s *EpistemicService) record(ctx context.Context, operation string, start time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
		s.metrics.RecordError(ctx, operation, ClassifyError(err))
	}
	s.metrics.RecordOperation(ctx, operation, status, time.Since(start))
}
