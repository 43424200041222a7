// Package graph converts per-card synergy lists into a deduplicated,
// weighted node/link graph ready for force-directed layout.
package graph

import (
	"sort"

	"cardseer/internal/cards"
	"cardseer/internal/synergy"
)

// Node is one card in the rendered graph.
type Node struct {
	ID    string
	Label string
	Size  float64
	Color string
	Race  cards.Race
	Level int
	Value float64
	Tags  cards.TagSet
}

// Link is one unordered card pair with its aggregated synergy.
type Link struct {
	Source   string
	Target   string
	Points   float64
	Distance float64
	Width    float64
	Visible  bool
}

// Graph holds the full node and link sets. Links below the visibility
// threshold are present with Visible=false; filters drop them later.
type Graph struct {
	Nodes []Node
	Links []Link
}

// Options bound graph density and layout normalization.
type Options struct {
	// MaxLinksPerCard caps how many top partners each card contributes.
	MaxLinksPerCard int
	// VisibleThreshold is the minimum aggregated points for a link to be
	// marked visible.
	VisibleThreshold float64
	// MinDistance and MaxDistance bound the layout distance range; the
	// strongest link gets MinDistance.
	MinDistance float64
	MaxDistance float64
	// LinkWidth is the uniform rendered link width.
	LinkWidth float64
}

// DefaultOptions returns the graph bounds used by the synergy explorer.
func DefaultOptions() Options {
	return Options{
		MaxLinksPerCard:  20,
		VisibleThreshold: 50,
		MinDistance:      10,
		MaxDistance:      100,
		LinkWidth:        2,
	}
}

// nodeSize scales a card's value into the rendered symbol size.
func nodeSize(value float64) float64 {
	size := value / 100
	if size < 10 {
		return 10
	}
	if size > 50 {
		return 50
	}
	return size
}

// Build creates the graph for a collection and its computed synergies.
func Build(col *cards.Collection, tags cards.TagTable, synergies synergy.Synergies, opts Options) *Graph {
	g := &Graph{}

	for _, c := range col.All() {
		g.Nodes = append(g.Nodes, Node{
			ID:    c.ID,
			Label: c.ID,
			Size:  nodeSize(c.Value),
			Color: c.Race.Color(),
			Race:  c.Race,
			Level: c.Level,
			Value: c.Value,
			Tags:  tags.Tags(c.ID),
		})
	}

	g.Links = buildLinks(synergies, opts)
	return g
}

type pairKey struct {
	lo, hi string
}

func makePairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// buildLinks aggregates each card's top partners into unordered links.
// A pair reached from both directions merges by summing points/2 per
// direction, so symmetric synergies are not double counted.
func buildLinks(synergies synergy.Synergies, opts Options) []Link {
	type agg struct {
		source, target string
		points         float64
	}

	// Deterministic iteration over the synergy map.
	ids := make([]string, 0, len(synergies))
	for id := range synergies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	linkMap := make(map[pairKey]*agg)
	var order []pairKey
	var maxPoints float64

	for _, id := range ids {
		partners := synergies[id]
		if opts.MaxLinksPerCard > 0 && len(partners) > opts.MaxLinksPerCard {
			partners = partners[:opts.MaxLinksPerCard]
		}
		for _, p := range partners {
			key := makePairKey(id, p.TargetID)
			link, ok := linkMap[key]
			if !ok {
				link = &agg{source: id, target: p.TargetID}
				linkMap[key] = link
				order = append(order, key)
			}
			link.points += p.Points / 2
			if link.points > maxPoints {
				maxPoints = link.points
			}
		}
	}

	links := make([]Link, 0, len(order))
	span := opts.MaxDistance - opts.MinDistance
	for _, key := range order {
		a := linkMap[key]
		distance := opts.MaxDistance
		if maxPoints > 0 {
			distance = opts.MaxDistance - (a.points/maxPoints)*span
		}
		links = append(links, Link{
			Source:   a.source,
			Target:   a.target,
			Points:   a.points,
			Distance: distance,
			Width:    opts.LinkWidth,
			Visible:  a.points >= opts.VisibleThreshold,
		})
	}
	return links
}

// FilterByRace keeps only nodes of the given race; empty means no filter.
func FilterByRace(nodes []Node, race cards.Race) []Node {
	if race == "" {
		return nodes
	}
	var out []Node
	for _, n := range nodes {
		if n.Race == race {
			out = append(out, n)
		}
	}
	return out
}

// FilterByTag keeps only nodes carrying the tag; empty means no filter.
func FilterByTag(nodes []Node, tag string) []Node {
	if tag == "" {
		return nodes
	}
	var out []Node
	for _, n := range nodes {
		if n.Tags.Has(tag) {
			out = append(out, n)
		}
	}
	return out
}

// FilterLinks drops links whose endpoints are not both in the node set.
func FilterLinks(links []Link, nodes []Node) []Link {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	var out []Link
	for _, l := range links {
		if ids[l.Source] && ids[l.Target] {
			out = append(out, l)
		}
	}
	return out
}

// ApplyFilters filters nodes by race then tag, then prunes dangling links.
func (g *Graph) ApplyFilters(race cards.Race, tag string) *Graph {
	nodes := FilterByRace(g.Nodes, race)
	nodes = FilterByTag(nodes, tag)
	return &Graph{
		Nodes: nodes,
		Links: FilterLinks(g.Links, nodes),
	}
}

// VisibleLinks returns only links at or above the visibility threshold.
func (g *Graph) VisibleLinks() []Link {
	var out []Link
	for _, l := range g.Links {
		if l.Visible {
			out = append(out, l)
		}
	}
	return out
}
