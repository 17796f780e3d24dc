// Package engine implements the epistemic validation core: content-hashed
// truth vectors, corroboration weighted by source independence,
// contradiction scoring, constitutional invariant checks, and the audit
// trail every operation records into.
//
// The engine is deliberately unsynchronized and never blocks: no operation
// suspends, performs I/O, or yields control mid-mutation. Multi-threaded
// hosts must treat every exported method as a critical section and
// serialize access, which is what service.EpistemicService does.
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/credencelab/credence/internal/audit"
	"github.com/credencelab/credence/internal/domain"
	"github.com/credencelab/credence/internal/graph"
	"github.com/credencelab/credence/internal/store"
)

// DefaultConfidence is assumed for observations submitted without an
// explicit confidence.
const DefaultConfidence = 0.5

// Engine owns the truth store, the dependency graph, and the audit trail.
// Nothing else writes to them.
type Engine struct {
	constitution domain.Constitution
	truths       domain.TruthStore
	deps         *graph.DependencyGraph
	trail        *audit.Trail
}

func New() *Engine {
	return NewWithConstitution(domain.DefaultConstitution())
}

func NewWithConstitution(c domain.Constitution) *Engine {
	return &Engine{
		constitution: c,
		truths:       store.NewTruthStore(),
		deps:         graph.New(),
		trail:        audit.NewTrail(),
	}
}

// CreateTruthVector registers an observation and returns its stored
// record. Confidence is normalized into constitutional bounds before the
// record is built; a prior vector at the same content hash is overwritten.
func (e *Engine) CreateTruthVector(content, source string, confidence float64) (*domain.TruthVector, error) {
	v := domain.NewTruthVector(content, source, e.constitution.ClampConfidence(confidence))
	if err := e.constitution.CheckVector(v); err != nil {
		return nil, e.auditRejection(domain.EventTruthCreated, map[string]any{
			"content_hash": v.ContentHash,
			"source":       source,
		}, err)
	}

	e.truths.Put(v)
	e.trail.Record(domain.EventTruthCreated, map[string]any{
		"content_hash": v.ContentHash,
		"source":       source,
		"confidence":   v.Confidence,
	})
	return v, nil
}

// Corroborate records that source attests the content stored under hash.
// Unknown hashes are a soft no-op returning (nil, nil). The confidence
// boost scales with how independent the attesting sources are: sources
// sharing upstream providers corroborate weakly. Duplicate sources do not
// grow the source set but still append lineage and recompute confidence.
func (e *Engine) Corroborate(hash, source string) (*domain.TruthVector, error) {
	cur, ok := e.truths.Get(hash)
	if !ok {
		return nil, nil
	}

	v := cur.Clone()
	added := v.AddSource(source)
	v.Lineage = append(v.Lineage, domain.LineageCorroborationPrefix+source)
	v.State = domain.Classify(v)

	independence := e.deps.IndependenceScore(v.Sources)
	v.Confidence += independence * domain.CorroborationBoost
	if v.Confidence > e.constitution.ConfidenceMax {
		v.Confidence = e.constitution.ConfidenceMax
	}

	if err := e.constitution.CheckVector(v); err != nil {
		return nil, e.auditRejection(domain.EventTruthCorroborated, map[string]any{
			"content_hash": hash,
			"source":       source,
		}, err)
	}

	e.truths.Put(v)
	e.trail.Record(domain.EventTruthCorroborated, map[string]any{
		"content_hash": hash,
		"source":       source,
		"source_added": added,
		"sources":      len(v.Sources),
		"independence": independence,
		"confidence":   v.Confidence,
		"state":        string(v.State),
	})
	return v, nil
}

// FlagContradiction records conflicting evidence against the content
// stored under hash. The score is clamped into bounds and the state
// reclassified, so a vector disputes above the threshold and recovers
// below it. Unknown hashes are a soft no-op returning (nil, nil).
func (e *Engine) FlagContradiction(hash string, score float64) (*domain.TruthVector, error) {
	cur, ok := e.truths.Get(hash)
	if !ok {
		return nil, nil
	}

	v := cur.Clone()
	v.ContradictionScore = e.constitution.ClampContradiction(score)
	v.State = domain.Classify(v)

	if err := e.constitution.CheckVector(v); err != nil {
		return nil, e.auditRejection(domain.EventTruthContradiction, map[string]any{
			"content_hash": hash,
		}, err)
	}

	e.truths.Put(v)
	e.trail.Record(domain.EventTruthContradiction, map[string]any{
		"content_hash":        hash,
		"contradiction_score": v.ContradictionScore,
		"state":               string(v.State),
	})
	return v, nil
}

// ValidateOpportunity derives a content identity from the record via
// canonical serialization, registers it as a truth vector, and returns a
// copy of the record enriched with the vector summary under
// "truth_vector". The input record is never modified.
func (e *Engine) ValidateOpportunity(op domain.Opportunity) (domain.Opportunity, error) {
	content, err := op.CanonicalContent()
	if err != nil {
		return nil, err
	}

	v, err := e.CreateTruthVector(content, op.Source(), op.Confidence())
	if err != nil {
		return nil, err
	}

	e.trail.Record(domain.EventOpportunityValidated, map[string]any{
		"content_hash": v.ContentHash,
		"source":       op.Source(),
		"confidence":   v.Confidence,
		"state":        string(v.State),
	})
	return op.Enrich(v.Summary()), nil
}

// ConsensusEntry is one consensus-grade result.
type ConsensusEntry struct {
	ContentHash string                `json:"content_hash"`
	Content     string                `json:"content"`
	Sources     []string              `json:"sources"`
	Confidence  float64               `json:"confidence"`
	State       domain.EpistemicState `json:"epistemic_state"`
}

// ConsensusOpportunities returns every stored vector that is consensus
// grade and does not require investigation, in ascending content hash
// order.
func (e *Engine) ConsensusOpportunities() []ConsensusEntry {
	var out []ConsensusEntry
	for _, hash := range e.truths.Hashes() {
		v, ok := e.truths.Get(hash)
		if !ok {
			continue
		}
		if !v.IsConsensus() || v.RequiresInvestigation() {
			continue
		}
		out = append(out, ConsensusEntry{
			ContentHash: v.ContentHash,
			Content:     v.Content(),
			Sources:     append([]string(nil), v.Sources...),
			Confidence:  v.Confidence,
			State:       v.State,
		})
	}
	return out
}

// AddDependency declares that source pulls data from each named upstream
// provider. Insertions that would close a cycle are fully rolled back,
// recorded in the audit trail, and rejected as a constitutional violation.
func (e *Engine) AddDependency(source string, upstreams []string) error {
	if err := e.deps.AddDependency(source, upstreams); err != nil {
		var cycleErr *graph.CycleError
		if errors.As(err, &cycleErr) {
			e.trail.Record(domain.EventDependencyCycle, map[string]any{
				"source":   source,
				"upstream": upstreams,
				"cycle":    cycleErr.Path,
			})
			return &domain.ConstitutionalViolation{
				Field:  "dependency_graph",
				Value:  strings.Join(cycleErr.Path, " -> "),
				Bound:  "acyclic",
				Detail: fmt.Sprintf("adding %s -> %v closes a cycle", source, upstreams),
			}
		}
		return err
	}

	e.trail.Record(domain.EventDependencyAdded, map[string]any{
		"source":   source,
		"upstream": upstreams,
	})
	return nil
}

// IntegrateAgent registers an external agent and the upstream providers it
// reports through, so corroborations arriving from it are independence
// weighted like any other source. Fails like AddDependency on cycles.
func (e *Engine) IntegrateAgent(agent string, upstreams []string) error {
	if err := e.AddDependency(agent, upstreams); err != nil {
		return err
	}
	e.trail.Record(domain.EventEngineIntegration, map[string]any{
		"agent":    agent,
		"upstream": upstreams,
	})
	return nil
}

// AllUpstream returns the transitive upstream closure of source, sorted.
func (e *Engine) AllUpstream(source string) []string {
	return e.deps.AllUpstream(source)
}

// IndependenceScore scores how independent a set of sources is.
func (e *Engine) IndependenceScore(sources []string) float64 {
	return e.deps.IndependenceScore(sources)
}

// HiddenConvergences surfaces source pairs whose upstream closures exceed
// the given Jaccard similarity threshold.
func (e *Engine) HiddenConvergences(threshold float64) []graph.Convergence {
	return e.deps.HiddenConvergences(threshold)
}

// Vector returns the stored record for hash, or nil when unknown.
func (e *Engine) Vector(hash string) *domain.TruthVector {
	v, ok := e.truths.Get(hash)
	if !ok {
		return nil
	}
	return v
}

// Hashes lists stored content hashes in ascending order.
func (e *Engine) Hashes() []string {
	return e.truths.Hashes()
}

// VectorCount returns the number of stored truth vectors.
func (e *Engine) VectorCount() int {
	return e.truths.Len()
}

// Trail exposes the audit trail for export.
func (e *Engine) Trail() *audit.Trail {
	return e.trail
}

// Graph exposes the dependency graph for read queries.
func (e *Engine) Graph() *graph.DependencyGraph {
	return e.deps
}

// Constitution returns the bounds this engine enforces.
func (e *Engine) Constitution() domain.Constitution {
	return e.constitution
}

// auditRejection preserves a trail entry for an operation rejected by the
// constitutional check, then propagates the violation unmodified.
func (e *Engine) auditRejection(event domain.EventType, payload map[string]any, err error) error {
	payload["rejected"] = true
	payload["violation"] = err.Error()
	e.trail.Record(event, payload)
	return err
}
