package synergy

import "cardseer/internal/cards"

// GroupRule matches a group of cards by membership, then weighs every
// within-group pair with its own function. Unlike the pairwise registry,
// a pair matched by two rules accumulates two separate contributions.
type GroupRule struct {
	Name string
	// Match reports whether a card belongs to this rule's group.
	Match func(c cards.Card, t cards.TagSet) bool
	// Weight scores one within-group pair.
	Weight func(c1, c2 cards.Card, t1, t2 cards.TagSet) float64
}

// Tag names specific to the grouped deck-archetype rules.
const (
	tagTaskChain     = "人族任务流"
	tagTaskChainCore = "人族任务流核心"
	tagBiotech       = "人族生化"
	tagMech          = "人族机械化"
	tagCardDraw      = "刷牌"
)

// raceGroupRule builds the membership rule for a single race. The race
// rules carry no weight of their own yet; they exist so race groups show
// up in rule listings and can be given weights without structural change.
func raceGroupRule(race cards.Race) GroupRule {
	return GroupRule{
		Name: string(race) + "_race",
		Match: func(c cards.Card, t cards.TagSet) bool {
			return c.Race == race
		},
		Weight: func(c1, c2 cards.Card, t1, t2 cards.TagSet) float64 {
			return 0
		},
	}
}

// sumTagRule matches cards carrying the tag and weighs pairs by the sum of
// both cards' weights for it.
func sumTagRule(tag string) GroupRule {
	return GroupRule{
		Name: tag,
		Match: func(c cards.Card, t cards.TagSet) bool {
			return t.Has(tag)
		},
		Weight: func(c1, c2 cards.Card, t1, t2 cards.TagSet) float64 {
			return t1.Weight(tag) + t2.Weight(tag)
		},
	}
}

// GroupRules is the default grouped-rule registry.
var GroupRules = []GroupRule{
	raceGroupRule(cards.RaceTerran),
	{
		Name: "任务流",
		Match: func(c cards.Card, t cards.TagSet) bool {
			return t.Has(tagTaskChain) || t.Has(tagTaskChainCore)
		},
		Weight: func(c1, c2 cards.Card, t1, t2 cards.TagSet) float64 {
			// Core task-chain cards count double.
			v1 := t1.Weight(tagTaskChain) + t1.Weight(tagTaskChainCore)*2
			v2 := t2.Weight(tagTaskChain) + t2.Weight(tagTaskChainCore)*2
			return v1 + v2
		},
	},
	sumTagRule(tagBiotech),
	sumTagRule(tagMech),
	raceGroupRule(cards.RaceZerg),
	raceGroupRule(cards.RaceNeutral),
	raceGroupRule(cards.RaceProtess),
	sumTagRule(tagCardDraw),
}

// GroupedStrategy matches cards into per-rule groups and scores only
// within-group pairs, one contribution per (rule, pair).
type GroupedStrategy struct {
	// Rules defaults to GroupRules when nil.
	Rules []GroupRule
}

// Name returns the strategy identifier used in config.
func (GroupedStrategy) Name() string { return "grouped" }

// ComputeAll applies every rule's weight function to each unordered pair
// within that rule's matched group. Positive contributions are recorded in
// both directions with the identical score.
func (s GroupedStrategy) ComputeAll(col *cards.Collection, tags cards.TagTable) Synergies {
	rules := s.Rules
	if rules == nil {
		rules = GroupRules
	}

	all := col.All()
	synergies := make(Synergies)

	for _, rule := range rules {
		var matched []cards.Card
		for _, c := range all {
			if rule.Match(c, tags.Tags(c.ID)) {
				matched = append(matched, c)
			}
		}

		for i := 0; i < len(matched); i++ {
			for j := i + 1; j < len(matched); j++ {
				c1, c2 := matched[i], matched[j]
				t1, t2 := tags.Tags(c1.ID), tags.Tags(c2.ID)
				points := rule.Weight(c1, c2, t1, t2)
				if points <= 0 {
					continue
				}
				synergies[c1.ID] = append(synergies[c1.ID], Partner{TargetID: c2.ID, Points: points})
				synergies[c2.ID] = append(synergies[c2.ID], Partner{TargetID: c1.ID, Points: points})
			}
		}
	}

	for id := range synergies {
		sortPartners(synergies[id])
	}

	return synergies
}

// StrategyByName resolves a configured strategy name. Unknown names fall
// back to pairwise.
func StrategyByName(name string) Strategy {
	if name == "grouped" {
		return GroupedStrategy{}
	}
	return PairwiseStrategy{}
}
