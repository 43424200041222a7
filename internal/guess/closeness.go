// Package guess implements the feedback model and the candidate
// consistency filter for the card-guessing aid.
package guess

import (
	"math"

	"cardseer/internal/cards"
)

// CloseThreshold is the maximum value difference for two cards to count as
// close on value alone.
const CloseThreshold = 200

// IsClose reports whether two cards are "close": same race, same number,
// or value within CloseThreshold. Symmetric in its arguments.
func IsClose(a, b cards.Card) bool {
	return a.Race == b.Race ||
		a.Number == b.Number ||
		math.Abs(a.Value-b.Value) <= CloseThreshold
}
