package graph

import (
	"errors"
	"math"
	"testing"
)

func TestAddDependencyLookups(t *testing.T) {
	g := New()

	if err := g.AddDependency("marketwatch", []string{"reuters", "bloomberg"}); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}

	for _, node := range []string{"marketwatch", "reuters", "bloomberg"} {
		if !g.HasNode(node) {
			t.Errorf("HasNode(%q) = false, want true", node)
		}
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}

	ups := g.UpstreamOf("marketwatch")
	if len(ups) != 2 || ups[0] != "bloomberg" || ups[1] != "reuters" {
		t.Errorf("UpstreamOf(marketwatch) = %v, want [bloomberg reuters]", ups)
	}

	downs := g.DownstreamOf("reuters")
	if len(downs) != 1 || downs[0] != "marketwatch" {
		t.Errorf("DownstreamOf(reuters) = %v, want [marketwatch]", downs)
	}

	// Re-adding an existing edge must not double count.
	if err := g.AddDependency("marketwatch", []string{"reuters"}); err != nil {
		t.Fatalf("re-adding edge failed: %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() after duplicate add = %d, want 2", g.EdgeCount())
	}
}

func TestSelfDependencyRejected(t *testing.T) {
	g := New()

	err := g.AddDependency("a", []string{"a"})
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if len(cycleErr.Path) != 2 || cycleErr.Path[0] != "a" || cycleErr.Path[1] != "a" {
		t.Errorf("cycle path = %v, want [a a]", cycleErr.Path)
	}

	// The rejected call created the node, so rollback must remove it.
	if g.NodeCount() != 0 {
		t.Errorf("NodeCount() after rollback = %d, want 0", g.NodeCount())
	}
}

func TestCycleRollbackRestoresGraph(t *testing.T) {
	g := New()
	mustAdd(t, g, "a", "b")
	mustAdd(t, g, "b", "c")

	err := g.AddDependency("c", []string{"a"})
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}

	wantPath := []string{"c", "a", "b", "c"}
	if len(cycleErr.Path) != len(wantPath) {
		t.Fatalf("cycle path = %v, want %v", cycleErr.Path, wantPath)
	}
	for i := range wantPath {
		if cycleErr.Path[i] != wantPath[i] {
			t.Errorf("cycle path[%d] = %q, want %q", i, cycleErr.Path[i], wantPath[i])
		}
	}

	// Graph must be byte-for-byte what it was before the rejected call.
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if len(g.UpstreamOf("c")) != 0 {
		t.Errorf("UpstreamOf(c) = %v, want empty", g.UpstreamOf("c"))
	}
	if len(g.DownstreamOf("a")) != 0 {
		t.Errorf("DownstreamOf(a) = %v, want empty", g.DownstreamOf("a"))
	}
}

func TestCycleRollbackDropsNewNodes(t *testing.T) {
	g := New()
	mustAdd(t, g, "a", "b")

	err := g.AddDependency("b", []string{"a", "z"})
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}

	if g.HasNode("z") {
		t.Error("node z introduced by the rejected call survived rollback")
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if len(g.UpstreamOf("b")) != 0 {
		t.Errorf("UpstreamOf(b) = %v, want empty", g.UpstreamOf("b"))
	}
}

func TestAllUpstream(t *testing.T) {
	g := New()
	mustAdd(t, g, "a", "b")
	mustAdd(t, g, "b", "c")
	mustAdd(t, g, "a", "d")

	got := g.AllUpstream("a")
	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("AllUpstream(a) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllUpstream(a)[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if ups := g.AllUpstream("b"); len(ups) != 1 || ups[0] != "c" {
		t.Errorf("AllUpstream(b) = %v, want [c]", ups)
	}
	if ups := g.AllUpstream("c"); len(ups) != 0 {
		t.Errorf("AllUpstream(c) = %v, want empty", ups)
	}
	if ups := g.AllUpstream("ghost"); len(ups) != 0 {
		t.Errorf("AllUpstream(ghost) = %v, want empty", ups)
	}
}

func TestAllUpstreamDiamond(t *testing.T) {
	g := New()
	mustAdd(t, g, "top", "left")
	mustAdd(t, g, "top", "right")
	mustAdd(t, g, "left", "bottom")
	mustAdd(t, g, "right", "bottom")

	got := g.AllUpstream("top")
	want := []string{"bottom", "left", "right"}
	if len(got) != len(want) {
		t.Fatalf("AllUpstream(top) = %v, want %v (shared node counted once)", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllUpstream(top)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIndependenceScore(t *testing.T) {
	g := New()
	mustAdd(t, g, "a1", "wire")
	mustAdd(t, g, "a2", "wire")
	mustAdd(t, g, "b1", "tape")

	tests := []struct {
		name    string
		sources []string
		want    float64
	}{
		{"empty is vacuously independent", nil, 1.0},
		{"single source", []string{"a1"}, 1.0},
		{"duplicates collapse", []string{"a1", "a1"}, 1.0},
		{"shared provider", []string{"a1", "a2"}, 0.0},
		{"disjoint providers", []string{"a1", "b1"}, 1.0},
		{"unknown sources have no overlap", []string{"p", "q"}, 1.0},
		{"one shared pair of three", []string{"a1", "a2", "b1"}, 1.0 - 1.0/3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.IndependenceScore(tt.sources)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IndependenceScore(%v) = %v, want %v", tt.sources, got, tt.want)
			}
		})
	}
}

func TestIndependenceScoreTransitive(t *testing.T) {
	// c1 -> mid -> root, c2 -> root: overlap is transitive, not just direct.
	g := New()
	mustAdd(t, g, "c1", "mid")
	mustAdd(t, g, "mid", "root")
	mustAdd(t, g, "c2", "root")

	if got := g.IndependenceScore([]string{"c1", "c2"}); got != 0.0 {
		t.Errorf("IndependenceScore(c1, c2) = %v, want 0.0 (shared transitive root)", got)
	}
}

func TestHiddenConvergences(t *testing.T) {
	g := New()
	mustAdd(t, g, "pfeed", "zwire")
	mustAdd(t, g, "qfeed", "zwire")
	mustAdd(t, g, "mfeed", "x")
	mustAdd(t, g, "mfeed", "y")
	mustAdd(t, g, "nfeed", "y")
	mustAdd(t, g, "nfeed", "w")

	got := g.HiddenConvergences(0.3)
	if len(got) != 2 {
		t.Fatalf("HiddenConvergences(0.3) = %v, want 2 pairs", got)
	}

	// Identical closures first, partial overlap second.
	if got[0].SourceA != "pfeed" || got[0].SourceB != "qfeed" || got[0].Similarity != 1.0 {
		t.Errorf("first convergence = %+v, want pfeed/qfeed at 1.0", got[0])
	}
	if got[1].SourceA != "mfeed" || got[1].SourceB != "nfeed" {
		t.Errorf("second convergence = %+v, want mfeed/nfeed", got[1])
	}
	if math.Abs(got[1].Similarity-1.0/3.0) > 1e-9 {
		t.Errorf("mfeed/nfeed similarity = %v, want 1/3", got[1].Similarity)
	}
}

func TestHiddenConvergencesThresholdStrict(t *testing.T) {
	g := New()
	mustAdd(t, g, "pfeed", "zwire")
	mustAdd(t, g, "qfeed", "zwire")

	// Similarity must be strictly above the threshold.
	if got := g.HiddenConvergences(1.0); len(got) != 0 {
		t.Errorf("HiddenConvergences(1.0) = %v, want empty", got)
	}
	if got := g.HiddenConvergences(0.99); len(got) != 1 {
		t.Errorf("HiddenConvergences(0.99) = %v, want one pair", got)
	}
}

func TestHiddenConvergencesSkipsEmptyClosures(t *testing.T) {
	g := New()
	mustAdd(t, g, "pfeed", "zwire")
	mustAdd(t, g, "qfeed", "zwire")

	// zwire has no upstream of its own; pairs involving it are skipped
	// rather than reported as zero-similarity noise.
	for _, c := range g.HiddenConvergences(0.0) {
		if c.SourceA == "zwire" || c.SourceB == "zwire" {
			t.Errorf("pair %+v includes a node with an empty closure", c)
		}
	}
}

func TestHiddenConvergencesTieOrdering(t *testing.T) {
	g := New()
	mustAdd(t, g, "p", "z")
	mustAdd(t, g, "q", "z")
	mustAdd(t, g, "r", "z")

	got := g.HiddenConvergences(0.5)
	if len(got) != 3 {
		t.Fatalf("HiddenConvergences(0.5) = %v, want 3 pairs", got)
	}

	wantPairs := [][2]string{{"p", "q"}, {"p", "r"}, {"q", "r"}}
	for i, w := range wantPairs {
		if got[i].SourceA != w[0] || got[i].SourceB != w[1] {
			t.Errorf("pair[%d] = %s/%s, want %s/%s (ties ordered by name)",
				i, got[i].SourceA, got[i].SourceB, w[0], w[1])
		}
	}
}

func mustAdd(t *testing.T, g *DependencyGraph, source string, upstreams ...string) {
	t.Helper()
	if err := g.AddDependency(source, upstreams); err != nil {
		t.Fatalf("AddDependency(%s, %v) failed: %v", source, upstreams, err)
	}
}
