// Package synergy scores tag-based affinity between card pairs and
// aggregates per-card partner lists for the graph builder.
package synergy

import "cardseer/internal/cards"

// Tag names used by the built-in rules. The dataset's tag table is
// Chinese-labelled; these constants keep rule code readable.
const (
	TagHero     = "英雄"
	TagUnit     = "单位"
	TagFlyer    = "飞行"
	TagSpell    = "法术"
	TagMelee    = "近战"
	TagRanged   = "远程"
	TagBuilding = "建筑"
)

// Rule is a named, pure scoring function over a card pair. Rules are
// evaluated by iterating the registry; their contributions sum.
type Rule struct {
	Name  string
	Score func(c1, c2 cards.Card, t1, t2 cards.TagSet) float64
}

// Rules is the pairwise rule registry, evaluated in order.
var Rules = []Rule{
	{
		// Both cards of the same race combine their race-tag weights.
		Name: "same_race",
		Score: func(c1, c2 cards.Card, t1, t2 cards.TagSet) float64 {
			if c1.Race != c2.Race {
				return 0
			}
			raceTag := string(c1.Race)
			return (t1.Weight(raceTag) + t2.Weight(raceTag)) * 2
		},
	},
	{
		// Every tag present on both cards combines weights, excluding
		// race tags (those belong to same_race).
		Name: "shared_tag",
		Score: func(c1, c2 cards.Card, t1, t2 cards.TagSet) float64 {
			var total float64
			for tag, w1 := range t1 {
				if tag == string(c1.Race) || tag == string(c2.Race) {
					continue
				}
				if w2, ok := t2[tag]; ok {
					total += (w1 + w2) * 1.5
				}
			}
			return total
		},
	},
	{
		Name:  "tag_combos",
		Score: scoreTagCombos,
	},
}

// tagCombo names a pair of tags that work together, with a fixed
// multiplier applied to the combined weights. Either card may hold either
// role.
type tagCombo struct {
	tagA, tagB string
	multiplier float64
}

var tagCombos = []tagCombo{
	{TagHero, TagUnit, 1.3},     // heroes support units
	{TagFlyer, TagFlyer, 2.0},   // air superiority
	{TagSpell, TagMelee, 1.2},   // complementary tactics
	{TagBuilding, TagUnit, 0.8}, // infrastructure support
}

func scoreTagCombos(c1, c2 cards.Card, t1, t2 cards.TagSet) float64 {
	var total float64
	for _, combo := range tagCombos {
		matched := (t1.Has(combo.tagA) && t2.Has(combo.tagB)) ||
			(t2.Has(combo.tagA) && t1.Has(combo.tagB))
		if !matched {
			continue
		}
		sum := t1.Weight(combo.tagA) + t2.Weight(combo.tagA) +
			t1.Weight(combo.tagB) + t2.Weight(combo.tagB)
		if combo.tagA == combo.tagB {
			// Same-tag combos would double count the weights.
			sum = t1.Weight(combo.tagA) + t2.Weight(combo.tagA)
		}
		total += sum * combo.multiplier
	}
	return total
}

// valueMultipliers rank how strongly each tag amplifies a pair's score
// when both cards carry it. Unlisted tags default to 1.0.
var valueMultipliers = map[string]float64{
	TagHero:                  2.0,
	TagFlyer:                 1.8,
	TagSpell:                 1.6,
	TagMelee:                 1.4,
	TagUnit:                  1.2,
	TagRanged:                1.5,
	TagBuilding:              1.3,
	string(cards.RaceProtess): 1.1,
	string(cards.RaceZerg):    1.1,
	string(cards.RaceTerran):  1.1,
	string(cards.RaceNeutral): 0.9,
}

// TagImportance returns the value-multiplier weight for a tag.
func TagImportance(tag string) float64 {
	if m, ok := valueMultipliers[tag]; ok {
		return m
	}
	return 1.0
}

// valueMultiplier computes the score multiplier for a pair: 1.0 plus 0.1×
// importance for every tag both cards carry with nonzero weight.
func valueMultiplier(t1, t2 cards.TagSet) float64 {
	multiplier := 1.0
	for tag, w1 := range t1 {
		if w1 != 0 && t2.Has(tag) {
			multiplier += TagImportance(tag) * 0.1
		}
	}
	return multiplier
}

// RawScore sums every rule's contribution for a pair, before the value
// multiplier.
func RawScore(c1, c2 cards.Card, t1, t2 cards.TagSet) float64 {
	var total float64
	for _, rule := range Rules {
		total += rule.Score(c1, c2, t1, t2)
	}
	return total
}

// Score is the weighted pairwise synergy: rule sum times the shared-tag
// value multiplier.
func Score(c1, c2 cards.Card, t1, t2 cards.TagSet) float64 {
	return RawScore(c1, c2, t1, t2) * valueMultiplier(t1, t2)
}
