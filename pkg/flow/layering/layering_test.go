package layering

import (
	"maps"
	"math/rand"
	"testing"
	"time"

	errs "github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/identity"
)

func id(name string) identity.ID { return identity.ID{Account: name} }

func edge(from, to string, value float64) flow.Edge {
	return flow.Edge{Source: id(from), Target: id(to), Value: value}
}

func dated(from, to string, d int) flow.Edge {
	e := edge(from, to, 1)
	if d > 0 {
		e.Date = time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
	}
	return e
}

func levelsOf(pairs ...any) map[identity.ID]int {
	out := make(map[identity.ID]int, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out[id(pairs[i].(string))] = pairs[i+1].(int)
	}
	return out
}

func assertLevels(t *testing.T, got, want map[identity.ID]int) {
	t.Helper()
	if !maps.Equal(got, want) {
		t.Errorf("levels = %v, want %v", got, want)
	}
}

func TestTopDown(t *testing.T) {
	tests := []struct {
		name  string
		edges []flow.Edge
		want  map[identity.ID]int
	}{
		{
			name:  "chain",
			edges: []flow.Edge{edge("A", "B", 1), edge("B", "C", 1)},
			want:  levelsOf("A", 0, "B", 1, "C", 2),
		},
		{
			name:  "max over parents",
			edges: []flow.Edge{edge("A", "B", 1), edge("B", "C", 1), edge("A", "C", 1)},
			want:  levelsOf("A", 0, "B", 1, "C", 2),
		},
		{
			name:  "two roots",
			edges: []flow.Edge{edge("A", "C", 1), edge("B", "C", 1), edge("C", "D", 1)},
			want:  levelsOf("A", 0, "B", 0, "C", 1, "D", 2),
		},
		{
			name:  "cycle below root",
			edges: []flow.Edge{edge("R", "A", 1), edge("A", "B", 1), edge("B", "A", 1)},
			want:  levelsOf("R", 0, "A", 1, "B", 2),
		},
		{
			name:  "fully cyclic starts at heaviest sender",
			edges: []flow.Edge{edge("A", "B", 1), edge("B", "A", 5)},
			want:  levelsOf("B", 0, "A", 1),
		},
		{
			name:  "fully cyclic tie broken by id",
			edges: []flow.Edge{edge("B", "A", 3), edge("A", "B", 3)},
			want:  levelsOf("A", 0, "B", 1),
		},
		{
			name: "unreachable cyclic component",
			edges: []flow.Edge{
				edge("R", "S", 1),
				edge("X", "Y", 10), edge("Y", "X", 1),
			},
			want: levelsOf("R", 0, "S", 1, "X", 0, "Y", 1),
		},
		{
			name: "fully cyclic root stays on top across components",
			edges: []flow.Edge{
				edge("H", "A", 100), edge("A", "H", 1),
				edge("X", "Y", 1), edge("Y", "X", 1),
				edge("X", "H", 1),
			},
			want: levelsOf("H", 0, "A", 1, "X", 0, "Y", 1),
		},
		{
			name:  "self loop",
			edges: []flow.Edge{edge("R", "A", 1), edge("A", "A", 1)},
			want:  levelsOf("R", 0, "A", 1),
		},
		{
			name:  "parallel edges",
			edges: []flow.Edge{edge("A", "B", 1), edge("A", "B", 2)},
			want:  levelsOf("A", 0, "B", 1),
		},
		{
			name: "empty",
			want: levelsOf(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertLevels(t, TopDown(tt.edges), tt.want)
		})
	}
}

func TestTopDown_RootsAtLevelZero(t *testing.T) {
	edges := []flow.Edge{
		edge("H", "A", 100), edge("A", "H", 1),
		edge("X", "Y", 1), edge("Y", "X", 1),
		edge("X", "H", 1),
	}
	levels := TopDown(edges)
	for _, root := range Roots(edges) {
		if levels[root] != 0 {
			t.Errorf("root %v at level %d, want 0", root, levels[root])
		}
	}
}

func TestTopDown_MonotoneOnAcyclicInput(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	for trial := range 20 {
		var edges []flow.Edge
		for i := range names {
			for j := i + 1; j < len(names); j++ {
				if r.Intn(3) == 0 {
					edges = append(edges, edge(names[i], names[j], float64(r.Intn(100))))
				}
			}
		}
		levels := TopDown(edges)
		for _, e := range edges {
			if levels[e.Target] < levels[e.Source]+1 {
				t.Fatalf("trial %d: edge %v->%v has levels %d,%d", trial, e.Source, e.Target, levels[e.Source], levels[e.Target])
			}
		}
	}
}

func TestTopDown_Deterministic(t *testing.T) {
	edges := []flow.Edge{
		edge("A", "B", 1), edge("B", "C", 1), edge("C", "A", 1),
		edge("C", "D", 2), edge("D", "B", 1), edge("E", "D", 1),
	}
	want := TopDown(edges)
	reversed := make([]flow.Edge, len(edges))
	for i, e := range edges {
		reversed[len(edges)-1-i] = e
	}
	assertLevels(t, TopDown(reversed), want)
	assertLevels(t, TopDown(edges), want)
}

func TestBreakCycles(t *testing.T) {
	tests := []struct {
		name      string
		edges     []flow.Edge
		removed   int
		remaining int
	}{
		{"no cycles", []flow.Edge{edge("a", "b", 1), edge("b", "c", 1)}, 0, 2},
		{"simple", []flow.Edge{edge("a", "b", 1), edge("b", "a", 1)}, 1, 1},
		{"triangle", []flow.Edge{edge("a", "b", 1), edge("b", "c", 1), edge("c", "a", 1)}, 1, 2},
		{"two cycles", []flow.Edge{
			edge("a", "b", 1), edge("b", "a", 1),
			edge("c", "d", 1), edge("d", "c", 1),
		}, 2, 2},
		{"self loop", []flow.Edge{edge("a", "a", 1)}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdjacency(tt.edges)
			if got := BreakCycles(a); got != tt.removed {
				t.Errorf("BreakCycles() = %d, want %d", got, tt.removed)
			}
			if a.EdgeCount() != tt.remaining {
				t.Errorf("EdgeCount() = %d, want %d", a.EdgeCount(), tt.remaining)
			}
			if got := BreakCycles(a); got != 0 {
				t.Errorf("second BreakCycles() = %d, want 0", got)
			}
		})
	}
}

func TestRoots(t *testing.T) {
	got := Roots([]flow.Edge{edge("B", "C", 1), edge("A", "C", 1)})
	if len(got) != 2 || got[0] != id("A") || got[1] != id("B") {
		t.Errorf("Roots() = %v, want [A B]", got)
	}

	got = Roots([]flow.Edge{edge("A", "B", 2), edge("B", "A", 7), edge("B", "C", 1), edge("C", "A", 1)})
	if len(got) != 1 || got[0] != id("B") {
		t.Errorf("Roots() = %v, want [B]", got)
	}

	if got := Roots(nil); got != nil {
		t.Errorf("Roots(nil) = %v, want nil", got)
	}
}

func TestLeftRight(t *testing.T) {
	edges := []flow.Edge{edge("A", "B", 1), edge("B", "C", 1), edge("D", "C", 1), edge("E", "E", 1)}
	assertLevels(t, LeftRight(edges), levelsOf("A", 0, "D", 0, "B", 1, "E", 1, "C", 2))
}

func TestTimeline(t *testing.T) {
	edges := []flow.Edge{
		dated("D", "E", 0),
		dated("B", "C", 2),
		dated("A", "B", 1),
		dated("A", "F", 2),
	}
	assertLevels(t, Timeline(edges, -1), levelsOf("A", 0, "B", 1, "F", 2, "C", 3, "D", 4, "E", 5))
	assertLevels(t, Timeline(edges, 2), levelsOf("A", 0, "B", 1, "F", 2, "C", 2, "D", 2, "E", 2))
	assertLevels(t, Timeline(edges, 0), levelsOf("A", 0, "B", 0, "F", 0, "C", 0, "D", 0, "E", 0))
}

func TestDemoteHubs(t *testing.T) {
	var edges []flow.Edge
	for _, leaf := range []string{"X1", "X2", "X3", "X4", "X5", "X6"} {
		edges = append(edges, edge("H", leaf, 1))
	}
	edges = append(edges, edge("R", "H", 1))

	base := TopDown(edges)
	if base[id("H")] != 1 {
		t.Fatalf("base level of H = %d, want 1", base[id("H")])
	}

	got := DemoteHubs(Func(TopDown), 5).Assign(edges)
	if got[id("H")] != 2 {
		t.Errorf("demoted level of H = %d, want 2", got[id("H")])
	}
	if got[id("X1")] != 2 || got[id("R")] != 0 {
		t.Errorf("non-hubs moved: %v", got)
	}

	got = DemoteHubs(Func(TopDown), 7).Assign(edges)
	if got[id("H")] != 1 {
		t.Errorf("level of H with threshold 7 = %d, want 1", got[id("H")])
	}

	if hubs := Hubs(edges, 5); len(hubs) != 1 || hubs[0] != id("H") {
		t.Errorf("Hubs() = %v, want [H]", hubs)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"", StrategyTopDown},
		{"topdown", StrategyTopDown},
		{" TopDown ", StrategyTopDown},
		{"bfs", StrategyTopDown},
		{"left-right", StrategyLeftRight},
		{"timeline", StrategyTimeline},
		{"staircase", StrategyTimeline},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if err != nil {
				t.Fatalf("ParseStrategy(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	_, err := ParseStrategy("spiral")
	if !errs.Is(err, errs.ErrCodeInvalidStrategy) {
		t.Errorf("ParseStrategy(spiral) error = %v, want INVALID_STRATEGY", err)
	}
}

func TestNew(t *testing.T) {
	edges := []flow.Edge{dated("A", "B", 2), dated("B", "C", 1)}

	for _, st := range Strategies() {
		a, err := New(Options{Strategy: st})
		if err != nil {
			t.Fatalf("New(%s): %v", st, err)
		}
		if got := a.Assign(edges); len(got) != 3 {
			t.Errorf("%s assigned %d nodes, want 3", st, len(got))
		}
	}

	a, err := New(Options{Strategy: StrategyTimeline, MaxLevel: 1})
	if err != nil {
		t.Fatal(err)
	}
	assertLevels(t, a.Assign(edges), levelsOf("B", 0, "C", 1, "A", 1))

	if _, err := New(Options{Strategy: "nope"}); err == nil {
		t.Error("New with unknown strategy: want error")
	}
	if _, err := New(Options{MaxLevel: -1}); err == nil {
		t.Error("New with negative max level: want error")
	}
	if _, err := New(Options{HubThreshold: -1}); err == nil {
		t.Error("New with negative hub threshold: want error")
	}
}

func TestOptions_Defaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Strategy != DefaultStrategy || o.MaxLevel != DefaultMaxLevel || o.HubThreshold != DefaultHubThreshold {
		t.Errorf("defaults = %+v", o)
	}
}

func TestHubs_RepeatedPairIsNotHub(t *testing.T) {
	var edges []flow.Edge
	for range 7 {
		edges = append(edges, edge("P", "Q", 1))
	}
	if hubs := Hubs(edges, 1); len(hubs) != 0 {
		t.Errorf("Hubs = %v, want none for one repeated pair", hubs)
	}

	star := []flow.Edge{edge("P", "A", 1), edge("P", "B", 1), edge("C", "P", 1)}
	hubs := Hubs(star, 2)
	if len(hubs) != 1 || hubs[0] != id("P") {
		t.Errorf("Hubs = %v, want [P]", hubs)
	}
}
