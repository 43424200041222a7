// Package cards defines the card data model shared by the guess filter and
// the synergy engine.
package cards

import (
	"math"
	"strings"
)

// Race identifies a card's faction.
type Race string

// The four recognized races. Protess keeps the dataset's historical
// spelling; "protoss" is accepted as an input alias.
const (
	RaceProtess Race = "Protess"
	RaceZerg    Race = "Zerg"
	RaceTerran  Race = "Terran"
	RaceNeutral Race = "Neutral"
)

// Races lists all valid races in display order.
var Races = []Race{RaceProtess, RaceZerg, RaceTerran, RaceNeutral}

// raceColors maps each race to its display color.
var raceColors = map[Race]string{
	RaceProtess: "#0099FF",
	RaceZerg:    "#FF0099",
	RaceTerran:  "#FF9900",
	RaceNeutral: "#CCCCCC",
}

const defaultRaceColor = "#CCCCCC"

// NormalizeRace parses a free-form race string into a Race.
// Matching is case-insensitive and tolerates surrounding whitespace.
// Returns ok=false for any unrecognized input; callers drop such records.
func NormalizeRace(input string) (Race, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "protess", "protoss":
		return RaceProtess, true
	case "zerg":
		return RaceZerg, true
	case "terran":
		return RaceTerran, true
	case "neutral":
		return RaceNeutral, true
	default:
		return "", false
	}
}

// Color returns the display color for the race.
func (r Race) Color() string {
	if c, ok := raceColors[r]; ok {
		return c
	}
	return defaultRaceColor
}

// Valid reports whether the race is one of the four recognized variants.
func (r Race) Valid() bool {
	_, ok := raceColors[r]
	return ok
}

// MinLevel and MaxLevel bound the level range for dataset loads.
const (
	MinLevel = 0
	MaxLevel = 6
)

// ClampLevel clamps a level into [MinLevel, MaxLevel], flooring fractional
// input. Non-finite input reports ok=false.
func ClampLevel(n float64) (int, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	x := int(math.Floor(n))
	if x < MinLevel {
		return MinLevel, true
	}
	if x > MaxLevel {
		return MaxLevel, true
	}
	return x, true
}

// Card is a single immutable card record. Identity is ID, unique within a
// loaded collection.
type Card struct {
	ID      string
	Race    Race
	Level   int
	Number  float64
	Value   float64
	CoreSet bool
}

// Collection is an immutable set of cards keyed by ID, preserving load
// order for deterministic iteration.
type Collection struct {
	byID  map[string]Card
	order []string
}

// NewCollection builds a collection from cards, de-duplicating by ID with
// last-write-wins semantics.
func NewCollection(list []Card) *Collection {
	col := &Collection{byID: make(map[string]Card, len(list))}
	for _, c := range list {
		if _, seen := col.byID[c.ID]; !seen {
			col.order = append(col.order, c.ID)
		}
		col.byID[c.ID] = c
	}
	return col
}

// Lookup returns the card with the given ID.
func (col *Collection) Lookup(id string) (Card, bool) {
	c, ok := col.byID[id]
	return c, ok
}

// Len returns the number of cards in the collection.
func (col *Collection) Len() int {
	return len(col.order)
}

// All returns the cards in load order. The returned slice is a copy.
func (col *Collection) All() []Card {
	out := make([]Card, 0, len(col.order))
	for _, id := range col.order {
		out = append(out, col.byID[id])
	}
	return out
}

// CoreSet returns the cards flagged as belonging to the core set, in load
// order. Only these are eligible hidden-card candidates.
func (col *Collection) CoreSet() []Card {
	var out []Card
	for _, id := range col.order {
		if c := col.byID[id]; c.CoreSet {
			out = append(out, c)
		}
	}
	return out
}
