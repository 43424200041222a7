package graph

import (
	"testing"

	"cardseer/internal/cards"
	"cardseer/internal/synergy"
)

func testCollection() *cards.Collection {
	return cards.NewCollection([]cards.Card{
		{ID: "a", Race: cards.RaceTerran, Level: 2, Value: 100},
		{ID: "b", Race: cards.RaceTerran, Level: 3, Value: 2500},
		{ID: "c", Race: cards.RaceZerg, Level: 1, Value: 9000},
	})
}

func TestBuildNodes(t *testing.T) {
	col := testCollection()
	tags := cards.TagTable{"a": {"单位": 2}}

	g := Build(col, tags, synergy.Synergies{}, DefaultOptions())

	if len(g.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(g.Nodes))
	}

	byID := make(map[string]Node)
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	// Size is value/100 clamped into [10, 50].
	if got := byID["a"].Size; got != 10 {
		t.Errorf("node a size = %v, want clamped minimum 10", got)
	}
	if got := byID["b"].Size; got != 25 {
		t.Errorf("node b size = %v, want 25", got)
	}
	if got := byID["c"].Size; got != 50 {
		t.Errorf("node c size = %v, want clamped maximum 50", got)
	}

	if got := byID["a"].Color; got != cards.RaceTerran.Color() {
		t.Errorf("node a color = %q, want Terran color", got)
	}
	if byID["a"].Tags.Weight("单位") != 2 {
		t.Error("node a should carry its tag set")
	}
}

func TestBuildLinksDeduplicatesPairs(t *testing.T) {
	col := testCollection()
	synergies := synergy.Synergies{
		"a": {{TargetID: "b", Points: 60}},
		"b": {{TargetID: "a", Points: 60}},
	}

	g := Build(col, cards.TagTable{}, synergies, DefaultOptions())

	if len(g.Links) != 1 {
		t.Fatalf("expected 1 deduplicated link, got %d", len(g.Links))
	}
	// Each direction contributes points/2, so the merged link carries the
	// pair's full score once.
	if got := g.Links[0].Points; got != 60 {
		t.Errorf("merged link points = %v, want 60", got)
	}
}

func TestBuildLinksNoDuplicateUnorderedPairs(t *testing.T) {
	col := testCollection()
	synergies := synergy.Synergies{
		"a": {{TargetID: "b", Points: 10}, {TargetID: "c", Points: 5}},
		"b": {{TargetID: "a", Points: 10}, {TargetID: "c", Points: 3}},
		"c": {{TargetID: "a", Points: 5}, {TargetID: "b", Points: 3}},
	}

	g := Build(col, cards.TagTable{}, synergies, DefaultOptions())

	seen := make(map[pairKey]bool)
	for _, l := range g.Links {
		key := makePairKey(l.Source, l.Target)
		if seen[key] {
			t.Errorf("duplicate link for pair %v", key)
		}
		seen[key] = true
	}
}

func TestBuildLinksRespectsCap(t *testing.T) {
	col := cards.NewCollection([]cards.Card{
		{ID: "hub"}, {ID: "p1"}, {ID: "p2"}, {ID: "p3"},
	})
	synergies := synergy.Synergies{
		"hub": {
			{TargetID: "p1", Points: 30},
			{TargetID: "p2", Points: 20},
			{TargetID: "p3", Points: 10},
		},
	}

	opts := DefaultOptions()
	opts.MaxLinksPerCard = 2
	g := Build(col, cards.TagTable{}, synergies, opts)

	if len(g.Links) != 2 {
		t.Fatalf("expected cap of 2 links, got %d", len(g.Links))
	}
	for _, l := range g.Links {
		if l.Target == "p3" {
			t.Error("weakest partner should be cut by the per-card cap")
		}
	}
}

func TestLinkDistanceNormalization(t *testing.T) {
	col := testCollection()
	synergies := synergy.Synergies{
		"a": {{TargetID: "b", Points: 200}},
		"b": {{TargetID: "c", Points: 100}},
	}

	g := Build(col, cards.TagTable{}, synergies, DefaultOptions())
	if len(g.Links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(g.Links))
	}

	var strong, weak Link
	for _, l := range g.Links {
		if l.Points == 100 {
			strong = l
		} else {
			weak = l
		}
	}

	// Strongest link (100 after halving) sits at the minimum distance.
	if strong.Distance != 10 {
		t.Errorf("strongest link distance = %v, want 10", strong.Distance)
	}
	// Half-strength link interpolates linearly: 100 - 0.5*90 = 55.
	if weak.Distance != 55 {
		t.Errorf("half-strength link distance = %v, want 55", weak.Distance)
	}
}

func TestVisibilityThreshold(t *testing.T) {
	col := testCollection()
	synergies := synergy.Synergies{
		"a": {{TargetID: "b", Points: 120}}, // 60 after halving
		"b": {{TargetID: "c", Points: 40}},  // 20 after halving
	}

	g := Build(col, cards.TagTable{}, synergies, DefaultOptions())

	var below *Link
	for i := range g.Links {
		if g.Links[i].Points < 50 {
			below = &g.Links[i]
		}
	}
	if below == nil {
		t.Fatal("expected a sub-threshold link in the unfiltered graph")
	}
	if below.Visible {
		t.Error("sub-threshold link must carry Visible=false")
	}

	visible := g.VisibleLinks()
	for _, l := range visible {
		if l.Points < 50 {
			t.Errorf("VisibleLinks returned sub-threshold link with %v points", l.Points)
		}
	}
	if len(visible) != 1 {
		t.Errorf("expected 1 visible link, got %d", len(visible))
	}
}

func TestApplyFilters(t *testing.T) {
	col := testCollection()
	tags := cards.TagTable{
		"a": {"单位": 1},
		"b": {"单位": 2},
	}
	synergies := synergy.Synergies{
		"a": {{TargetID: "b", Points: 100}, {TargetID: "c", Points: 80}},
	}

	g := Build(col, tags, synergies, DefaultOptions())

	t.Run("race filter prunes dangling links", func(t *testing.T) {
		filtered := g.ApplyFilters(cards.RaceTerran, "")
		if len(filtered.Nodes) != 2 {
			t.Fatalf("expected 2 Terran nodes, got %d", len(filtered.Nodes))
		}
		for _, l := range filtered.Links {
			if l.Source == "c" || l.Target == "c" {
				t.Error("link to filtered-out node c survived")
			}
		}
	})

	t.Run("tag filter", func(t *testing.T) {
		filtered := g.ApplyFilters("", "单位")
		if len(filtered.Nodes) != 2 {
			t.Fatalf("expected 2 tagged nodes, got %d", len(filtered.Nodes))
		}
	})

	t.Run("no filters keeps everything", func(t *testing.T) {
		filtered := g.ApplyFilters("", "")
		if len(filtered.Nodes) != len(g.Nodes) || len(filtered.Links) != len(g.Links) {
			t.Error("empty filters must not change the graph")
		}
	})
}
