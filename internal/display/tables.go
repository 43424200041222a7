// Package display renders candidate lists and guess history as text
// tables.
package display

import (
	"fmt"
	"io"
	"strings"

	"cardseer/internal/guess"
	"cardseer/internal/session"
)

// Displayer writes formatted tables to an output stream.
type Displayer struct {
	w io.Writer
}

// NewDisplayer creates a displayer writing to w.
func NewDisplayer(w io.Writer) *Displayer {
	return &Displayer{w: w}
}

// DisplayCandidates renders the remaining candidate table. The close
// signal column marks cards a recorded close guess points at; total is
// the full core-set size for the remaining/total line.
func (d *Displayer) DisplayCandidates(candidates []session.Candidate, total int) {
	if len(candidates) == 0 {
		fmt.Fprintln(d.w, "No candidates remain. The guess history is contradictory; consider removing a guess.")
		return
	}

	fmt.Fprintf(d.w, "\nRemaining Candidates: %d of %d\n\n", len(candidates), total)
	fmt.Fprintf(d.w, "%-4s %-24s %-8s %-6s %-8s %-8s %s\n", "#", "Card", "Race", "Level", "Number", "Value", "")
	fmt.Fprintf(d.w, "%s\n", strings.Repeat("─", 64))

	for i, c := range candidates {
		signal := ""
		if c.CloseSignal {
			signal = "◆ close"
		}
		fmt.Fprintf(d.w, "%-4d %-24s %-8s %-6d %-8g %-8g %s\n",
			i+1,
			truncateString(c.ID, 22),
			c.Race,
			c.Level,
			c.Number,
			c.Value,
			signal,
		)
	}
	fmt.Fprintln(d.w)
}

// DisplayHistory renders the guess history, newest last. Row numbers are
// 1-based and match the index RemoveGuess expects plus one.
func (d *Displayer) DisplayHistory(guesses []guess.Guess) {
	if len(guesses) == 0 {
		fmt.Fprintln(d.w, "No guesses recorded yet.")
		return
	}

	fmt.Fprintf(d.w, "\nGuess History (%d)\n\n", len(guesses))
	fmt.Fprintf(d.w, "%-4s %-24s %s\n", "#", "Card", "Feedback")
	fmt.Fprintf(d.w, "%s\n", strings.Repeat("─", 42))

	for i, g := range guesses {
		fmt.Fprintf(d.w, "%-4d %-24s %s\n", i+1, truncateString(g.CardID, 22), feedbackLabel(g.Feedback))
	}
	fmt.Fprintln(d.w)
}

// DisplayPacks renders the loaded pack names and drop count.
func (d *Displayer) DisplayPacks(names []string, dropped int) {
	fmt.Fprintf(d.w, "\nLoaded Packs: %d\n", len(names))
	for _, name := range names {
		fmt.Fprintf(d.w, "  - %s\n", name)
	}
	if dropped > 0 {
		fmt.Fprintf(d.w, "Dropped %d invalid card records.\n", dropped)
	}
	fmt.Fprintln(d.w)
}

func feedbackLabel(f guess.Feedback) string {
	switch f {
	case guess.FeedbackClose:
		return "close"
	case guess.FeedbackNotClose:
		return "not close"
	default:
		return string(f)
	}
}

// truncateString truncates a string to the specified length, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
