package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// EpistemicState classifies how well a truth vector's content is supported
// by the evidence recorded against it.
type EpistemicState string

const (
	StateRawObservation EpistemicState = "RAW_OBSERVATION"
	StateCorroborated   EpistemicState = "CORROBORATED"
	StateDisputed       EpistemicState = "DISPUTED"
	StateAnomalous      EpistemicState = "ANOMALOUS"
	StateArchetypal     EpistemicState = "ARCHETYPAL"
)

func ValidEpistemicState(s string) bool {
	switch EpistemicState(s) {
	case StateRawObservation, StateCorroborated, StateDisputed, StateAnomalous, StateArchetypal:
		return true
	}
	return false
}

// External reports whether the state was assigned by outside analysis
// rather than derived from source count and contradiction score. External
// states survive reclassification.
func (s EpistemicState) External() bool {
	return s == StateAnomalous || s == StateArchetypal
}

const (
	// LineageObservation is the sentinel first entry of every lineage.
	LineageObservation = "OBSERVATION"
	// LineageCorroborationPrefix marks lineage entries recorded per
	// corroboration call, duplicates included.
	LineageCorroborationPrefix = "CORROBORATION:"
)

// Classification and scoring thresholds shared across the engine.
const (
	ConsensusMinSources       = 3
	ConsensusMaxContradiction = 0.3
	DisputeThreshold          = 0.7
	InvestigationConfidence   = 0.5
	CorroborationBoost        = 0.2
)

// TruthVector is one piece of tracked knowledge: a content-addressed claim
// with provenance, confidence, and contradiction metadata.
type TruthVector struct {
	ContentHash        string         `json:"content_hash"`
	Sources            []string       `json:"sources"`
	Lineage            []string       `json:"lineage"`
	Confidence         float64        `json:"confidence"`
	ContradictionScore float64        `json:"contradiction_score"`
	State              EpistemicState `json:"epistemic_state"`
	Timestamp          time.Time      `json:"timestamp"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// HashContent returns the content-addressed identity of an observation:
// the hex SHA-256 of the content string. The hash depends on content only,
// never on the reporting source.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// NewTruthVector builds the initial record for an observation. The caller
// is expected to clamp confidence into constitutional bounds first.
func NewTruthVector(content, source string, confidence float64) *TruthVector {
	return &TruthVector{
		ContentHash: HashContent(content),
		Sources:     []string{source},
		Lineage:     []string{LineageObservation, source},
		Confidence:  confidence,
		State:       StateRawObservation,
		Timestamp:   time.Now().UTC(),
		Metadata:    map[string]any{"content": content},
	}
}

// HasSource reports whether source already attests this vector.
func (v *TruthVector) HasSource(source string) bool {
	for _, s := range v.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// AddSource inserts source into the sorted source set and reports whether
// the set grew. Sources are a set, not a multiset.
func (v *TruthVector) AddSource(source string) bool {
	i := sort.SearchStrings(v.Sources, source)
	if i < len(v.Sources) && v.Sources[i] == source {
		return false
	}
	v.Sources = append(v.Sources, "")
	copy(v.Sources[i+1:], v.Sources[i:])
	v.Sources[i] = source
	return true
}

// Content returns the original observed content when present in metadata.
func (v *TruthVector) Content() string {
	c, _ := v.Metadata["content"].(string)
	return c
}

// Clone returns a deep copy. Mutations run on a clone and commit only
// after the constitutional check passes, so a rejected operation leaves no
// partial record and returned snapshots are never written again.
func (v *TruthVector) Clone() *TruthVector {
	c := *v
	c.Sources = append([]string(nil), v.Sources...)
	c.Lineage = append([]string(nil), v.Lineage...)
	if v.Metadata != nil {
		c.Metadata = make(map[string]any, len(v.Metadata))
		for k, val := range v.Metadata {
			c.Metadata[k] = val
		}
	}
	return &c
}

// Classify recomputes the epistemic state from current field values.
// Externally assigned states are preserved; everything else derives from
// contradiction score and source count, so a disputed vector recovers once
// contradiction drops back under the threshold.
func Classify(v *TruthVector) EpistemicState {
	if v.State.External() {
		return v.State
	}
	if v.ContradictionScore > DisputeThreshold {
		return StateDisputed
	}
	if len(v.Sources) >= ConsensusMinSources {
		return StateCorroborated
	}
	return StateRawObservation
}

// IsConsensus reports whether enough distinct sources agree, with little
// enough contradiction, to treat the content as consensus-grade.
func (v *TruthVector) IsConsensus() bool {
	return len(v.Sources) >= ConsensusMinSources && v.ContradictionScore < ConsensusMaxContradiction
}

// IsSingular reports whether exactly one source attests the content.
func (v *TruthVector) IsSingular() bool {
	return len(v.Sources) == 1
}

// RequiresInvestigation reports whether the vector carries enough conflict
// to need attention: strongly contradicted yet still confident, or
// explicitly anomalous.
func (v *TruthVector) RequiresInvestigation() bool {
	if v.ContradictionScore > DisputeThreshold && v.Confidence > InvestigationConfidence {
		return true
	}
	return v.State == StateAnomalous
}

// TruthSummary is the compact read model attached to validated opportunity
// records.
type TruthSummary struct {
	ContentHash           string         `json:"content_hash"`
	Sources               []string       `json:"sources"`
	Confidence            float64        `json:"confidence"`
	State                 EpistemicState `json:"epistemic_state"`
	IsConsensus           bool           `json:"is_consensus"`
	RequiresInvestigation bool           `json:"requires_investigation"`
}

// Summary derives the TruthSummary view. Sources are already sorted.
func (v *TruthVector) Summary() TruthSummary {
	return TruthSummary{
		ContentHash:           v.ContentHash,
		Sources:               append([]string(nil), v.Sources...),
		Confidence:            v.Confidence,
		State:                 v.State,
		IsConsensus:           v.IsConsensus(),
		RequiresInvestigation: v.RequiresInvestigation(),
	}
}
