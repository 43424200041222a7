package cards

import (
	"encoding/json"
	"strconv"
)

// TagSet maps tag names to numeric weights for a single card. A missing
// tag reads as weight 0.
type TagSet map[string]float64

// Weight returns the weight for a tag, 0 when absent.
func (t TagSet) Weight(name string) float64 {
	return t[name]
}

// Has reports whether the tag is present with a nonzero weight.
func (t TagSet) Has(name string) bool {
	return t[name] != 0
}

// TagTable maps card IDs to their tag sets.
type TagTable map[string]TagSet

// Tags returns the tag set for a card, an empty set when the card is not
// in the table.
func (tt TagTable) Tags(cardID string) TagSet {
	if t, ok := tt[cardID]; ok {
		return t
	}
	return TagSet{}
}

// AllTagNames returns the sorted-insertion union of tag names across all
// cards. Used to populate tag filter choices.
func (tt TagTable) AllTagNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, tags := range tt {
		for name := range tags {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// NormalizeTagTable coerces raw tag values to numeric weights. The tag file
// mixes non-numeric entries (e.g. a "pack" label) into tag sets; those
// coerce to 0 so they never propagate NaN into rule arithmetic.
func NormalizeTagTable(raw map[string]map[string]json.RawMessage) TagTable {
	table := make(TagTable, len(raw))
	for cardID, tags := range raw {
		set := make(TagSet, len(tags))
		for name, value := range tags {
			set[name] = coerceWeight(value)
		}
		table[cardID] = set
	}
	return table
}

// coerceWeight interprets a raw JSON tag value as a weight. Numbers pass
// through; numeric strings parse; everything else is 0.
func coerceWeight(raw json.RawMessage) float64 {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(s, 64); err == nil {
			return parsed
		}
	}
	return 0
}
