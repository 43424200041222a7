package synergy

import (
	"sort"

	"cardseer/internal/cards"
)

// Partner is one entry in a card's synergy list.
type Partner struct {
	TargetID string
	Points   float64
}

// Synergies maps a card ID to its partners, sorted descending by points.
type Synergies map[string][]Partner

// Strategy computes the full synergy mapping for a collection. Two
// strategies exist: pairwise rule summation and grouped per-rule matching.
// They produce different totals; callers pick one.
type Strategy interface {
	Name() string
	ComputeAll(col *cards.Collection, tags cards.TagTable) Synergies
}

// PairwiseStrategy scores every ordered pair of distinct cards with the
// full rule registry plus the value multiplier.
type PairwiseStrategy struct{}

// Name returns the strategy identifier used in config.
func (PairwiseStrategy) Name() string { return "pairwise" }

// ComputeAll computes weighted scores for all ordered pairs. Only strictly
// positive scores are recorded; a card never scores against itself.
func (PairwiseStrategy) ComputeAll(col *cards.Collection, tags cards.TagTable) Synergies {
	all := col.All()
	synergies := make(Synergies, len(all))

	for i, c1 := range all {
		t1 := tags.Tags(c1.ID)
		list := synergies[c1.ID]

		for j, c2 := range all {
			if i == j {
				continue
			}
			t2 := tags.Tags(c2.ID)
			points := Score(c1, c2, t1, t2)
			if points > 0 {
				list = append(list, Partner{TargetID: c2.ID, Points: points})
			}
		}

		sortPartners(list)
		synergies[c1.ID] = list
	}

	return synergies
}

// sortPartners orders a partner list descending by points. The sort is
// stable so equal scores keep computation order, making output
// deterministic.
func sortPartners(list []Partner) {
	sort.SliceStable(list, func(a, b int) bool {
		return list[a].Points > list[b].Points
	})
}
