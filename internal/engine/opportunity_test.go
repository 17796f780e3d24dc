package engine

import (
	"sort"
	"testing"

	"github.com/credencelab/credence/internal/domain"
)

func TestValidateOpportunityEnriches(t *testing.T) {
	e := New()

	op := domain.Opportunity{
		"ticker":     "BTC",
		"thesis":     "breakout above resistance",
		"source":     "signal-desk",
		"confidence": "HIGH",
	}

	enriched, err := e.ValidateOpportunity(op)
	if err != nil {
		t.Fatalf("ValidateOpportunity failed: %v", err)
	}

	if _, ok := op["truth_vector"]; ok {
		t.Error("input opportunity was mutated")
	}
	if enriched["ticker"] != "BTC" {
		t.Errorf("enriched ticker = %v, want BTC", enriched["ticker"])
	}

	summary, ok := enriched["truth_vector"].(domain.TruthSummary)
	if !ok {
		t.Fatalf("truth_vector = %T, want domain.TruthSummary", enriched["truth_vector"])
	}
	if summary.Confidence != 0.8 {
		t.Errorf("summary confidence = %v, want 0.8 for HIGH", summary.Confidence)
	}
	if len(summary.Sources) != 1 || summary.Sources[0] != "signal-desk" {
		t.Errorf("summary sources = %v, want [signal-desk]", summary.Sources)
	}
	if summary.State != domain.StateRawObservation {
		t.Errorf("summary state = %q, want %q", summary.State, domain.StateRawObservation)
	}
	if summary.IsConsensus {
		t.Error("IsConsensus = true for a single-source record")
	}
}

func TestValidateOpportunityDefaults(t *testing.T) {
	e := New()

	enriched, err := e.ValidateOpportunity(domain.Opportunity{"ticker": "ETH"})
	if err != nil {
		t.Fatalf("ValidateOpportunity failed: %v", err)
	}

	summary := enriched["truth_vector"].(domain.TruthSummary)
	if len(summary.Sources) != 1 || summary.Sources[0] != "UNKNOWN" {
		t.Errorf("summary sources = %v, want [UNKNOWN]", summary.Sources)
	}
	if summary.Confidence != 0.5 {
		t.Errorf("summary confidence = %v, want default 0.5", summary.Confidence)
	}
}

func TestValidateOpportunityAuditSequence(t *testing.T) {
	e := New()

	if _, err := e.ValidateOpportunity(domain.Opportunity{"ticker": "SOL", "source": "desk"}); err != nil {
		t.Fatalf("ValidateOpportunity failed: %v", err)
	}

	events := e.Trail().Events()
	if len(events) != 2 {
		t.Fatalf("trail has %d events, want 2", len(events))
	}
	if events[0].EventType != domain.EventTruthCreated {
		t.Errorf("event[0] = %q, want %q", events[0].EventType, domain.EventTruthCreated)
	}
	if events[1].EventType != domain.EventOpportunityValidated {
		t.Errorf("event[1] = %q, want %q", events[1].EventType, domain.EventOpportunityValidated)
	}
	if events[1].Payload["source"] != "desk" {
		t.Errorf("validated source = %v, want desk", events[1].Payload["source"])
	}
}

func TestValidateOpportunityCanonicalIdentity(t *testing.T) {
	e := New()

	first, err := e.ValidateOpportunity(domain.Opportunity{"ticker": "BTC", "side": "long"})
	if err != nil {
		t.Fatalf("ValidateOpportunity failed: %v", err)
	}
	second, err := e.ValidateOpportunity(domain.Opportunity{"side": "long", "ticker": "BTC"})
	if err != nil {
		t.Fatalf("ValidateOpportunity failed: %v", err)
	}

	a := first["truth_vector"].(domain.TruthSummary)
	b := second["truth_vector"].(domain.TruthSummary)
	if a.ContentHash != b.ContentHash {
		t.Errorf("hashes differ for equal content: %q vs %q", a.ContentHash, b.ContentHash)
	}
	if e.VectorCount() != 1 {
		t.Errorf("VectorCount() = %d, want 1 for one logical claim", e.VectorCount())
	}
}

func TestValidateOpportunityUnserializable(t *testing.T) {
	e := New()

	_, err := e.ValidateOpportunity(domain.Opportunity{"bad": make(chan int)})
	if err == nil {
		t.Fatal("ValidateOpportunity accepted an unserializable record")
	}
	if e.VectorCount() != 0 {
		t.Errorf("VectorCount() = %d, want 0 after rejected record", e.VectorCount())
	}
	if e.Trail().Len() != 0 {
		t.Errorf("trail has %d events, want 0 after rejected record", e.Trail().Len())
	}
}

func TestValidateOpportunityThenCorroborate(t *testing.T) {
	e := New()

	enriched, err := e.ValidateOpportunity(domain.Opportunity{
		"ticker":     "BTC",
		"source":     "signal-desk",
		"confidence": "MEDIUM",
	})
	if err != nil {
		t.Fatalf("ValidateOpportunity failed: %v", err)
	}
	hash := enriched["truth_vector"].(domain.TruthSummary).ContentHash

	if _, err := e.Corroborate(hash, "quant-desk"); err != nil {
		t.Fatalf("Corroborate failed: %v", err)
	}
	v, err := e.Corroborate(hash, "macro-desk")
	if err != nil {
		t.Fatalf("Corroborate failed: %v", err)
	}

	if !v.IsConsensus() {
		t.Error("IsConsensus() = false after two independent corroborations")
	}
	if len(e.ConsensusOpportunities()) != 1 {
		t.Errorf("ConsensusOpportunities() = %v, want one entry", e.ConsensusOpportunities())
	}
}

func TestConsensusOpportunitiesOrdering(t *testing.T) {
	e := New()

	for _, claim := range []string{"claim one", "claim two", "claim three"} {
		v, err := e.CreateTruthVector(claim, "feed-a", 0.5)
		if err != nil {
			t.Fatalf("CreateTruthVector failed: %v", err)
		}
		for _, src := range []string{"feed-b", "feed-c"} {
			if _, err := e.Corroborate(v.ContentHash, src); err != nil {
				t.Fatalf("Corroborate failed: %v", err)
			}
		}
	}

	entries := e.ConsensusOpportunities()
	if len(entries) != 3 {
		t.Fatalf("ConsensusOpportunities() returned %d entries, want 3", len(entries))
	}

	hashes := make([]string, len(entries))
	for i, entry := range entries {
		hashes[i] = entry.ContentHash
	}
	if !sort.StringsAreSorted(hashes) {
		t.Errorf("entries not in ascending hash order: %v", hashes)
	}
}

func TestConsensusOpportunitiesExcludesInvestigation(t *testing.T) {
	e := New()

	v, err := e.CreateTruthVector("contested claim", "feed-a", 0.5)
	if err != nil {
		t.Fatalf("CreateTruthVector failed: %v", err)
	}
	for _, src := range []string{"feed-b", "feed-c"} {
		if _, err := e.Corroborate(v.ContentHash, src); err != nil {
			t.Fatalf("Corroborate failed: %v", err)
		}
	}
	if len(e.ConsensusOpportunities()) != 1 {
		t.Fatal("expected consensus before the anomaly flag")
	}

	// An externally flagged anomaly keeps consensus-grade support out of
	// the consensus listing.
	e.Vector(v.ContentHash).State = domain.StateAnomalous
	if got := e.ConsensusOpportunities(); len(got) != 0 {
		t.Errorf("ConsensusOpportunities() = %v, want empty for anomalous record", got)
	}
}

func TestConsensusOpportunitiesExcludesDisputed(t *testing.T) {
	e := New()

	v, err := e.CreateTruthVector("disputed claim", "feed-a", 0.5)
	if err != nil {
		t.Fatalf("CreateTruthVector failed: %v", err)
	}
	for _, src := range []string{"feed-b", "feed-c"} {
		if _, err := e.Corroborate(v.ContentHash, src); err != nil {
			t.Fatalf("Corroborate failed: %v", err)
		}
	}
	if _, err := e.FlagContradiction(v.ContentHash, 0.75); err != nil {
		t.Fatalf("FlagContradiction failed: %v", err)
	}

	if got := e.ConsensusOpportunities(); len(got) != 0 {
		t.Errorf("ConsensusOpportunities() = %v, want empty for disputed record", got)
	}
}
