package guess

import (
	"fmt"

	"cardseer/internal/cards"
)

// Feedback is the recorded response to a guessed card.
type Feedback string

const (
	FeedbackClose    Feedback = "close"
	FeedbackNotClose Feedback = "not_close"
)

// ParseFeedback parses the serialized feedback form.
func ParseFeedback(s string) (Feedback, error) {
	switch Feedback(s) {
	case FeedbackClose, FeedbackNotClose:
		return Feedback(s), nil
	default:
		return "", fmt.Errorf("invalid feedback %q", s)
	}
}

// Guess records one guessed card and the feedback received for it.
type Guess struct {
	CardID   string   `json:"cardId"`
	Feedback Feedback `json:"feedback"`
}

// Consistent reports whether a candidate card could be the hidden card
// given every recorded guess. A guess referencing a card absent from the
// collection fails every candidate rather than being ignored.
//
// The result is a conjunction of per-guess constraints, so it is
// independent of guess order.
func Consistent(col *cards.Collection, guesses []Guess, candidate cards.Card) bool {
	for _, g := range guesses {
		picked, ok := col.Lookup(g.CardID)
		if !ok {
			return false
		}
		close := IsClose(picked, candidate)
		if g.Feedback == FeedbackClose && !close {
			return false
		}
		if g.Feedback == FeedbackNotClose && close {
			return false
		}
	}
	return true
}

// FilterCandidates returns the core-set cards consistent with every guess,
// in collection order. Pure function of its inputs.
func FilterCandidates(col *cards.Collection, guesses []Guess) []cards.Card {
	var out []cards.Card
	for _, c := range col.CoreSet() {
		if Consistent(col, guesses, c) {
			out = append(out, c)
		}
	}
	return out
}

// HasCloseSignal reports whether any resolvable guess is close to the
// candidate. This annotates candidates for highlighting; it never filters.
func HasCloseSignal(col *cards.Collection, guesses []Guess, candidate cards.Card) bool {
	for _, g := range guesses {
		if picked, ok := col.Lookup(g.CardID); ok && IsClose(picked, candidate) {
			return true
		}
	}
	return false
}
