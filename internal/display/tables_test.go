package display

import (
	"bytes"
	"strings"
	"testing"

	"cardseer/internal/cards"
	"cardseer/internal/guess"
	"cardseer/internal/session"
)

func TestDisplayCandidates(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplayer(&buf)

	candidates := []session.Candidate{
		{Card: cards.Card{ID: "marine", Race: cards.RaceTerran, Level: 1, Number: 10, Value: 100}, CloseSignal: true},
		{Card: cards.Card{ID: "zealot", Race: cards.RaceProtess, Level: 2, Number: 10, Value: 150}},
	}
	d.DisplayCandidates(candidates, 40)

	out := buf.String()
	if !strings.Contains(out, "Remaining Candidates: 2 of 40") {
		t.Errorf("output missing remaining/total line:\n%s", out)
	}
	if !strings.Contains(out, "marine") || !strings.Contains(out, "zealot") {
		t.Errorf("output missing candidate rows:\n%s", out)
	}

	// Only the close-signal row carries the marker.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "zealot") && strings.Contains(line, "◆") {
			t.Errorf("zealot row should not carry the close marker: %q", line)
		}
	}
	if !strings.Contains(out, "◆ close") {
		t.Errorf("output missing close marker:\n%s", out)
	}
}

func TestDisplayCandidatesEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewDisplayer(&buf).DisplayCandidates(nil, 40)

	if !strings.Contains(buf.String(), "contradictory") {
		t.Errorf("empty candidate output should suggest removing a guess:\n%s", buf.String())
	}
}

func TestDisplayHistory(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplayer(&buf)

	d.DisplayHistory([]guess.Guess{
		{CardID: "marine", Feedback: guess.FeedbackClose},
		{CardID: "ghost", Feedback: guess.FeedbackNotClose},
	})

	out := buf.String()
	if !strings.Contains(out, "1 ") || !strings.Contains(out, "2 ") {
		t.Errorf("history rows should be numbered from 1:\n%s", out)
	}
	if !strings.Contains(out, "not close") {
		t.Errorf("output missing feedback label:\n%s", out)
	}
}

func TestDisplayHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewDisplayer(&buf).DisplayHistory(nil)

	if !strings.Contains(buf.String(), "No guesses") {
		t.Errorf("unexpected empty-history output:\n%s", buf.String())
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"a-very-long-card-name", 10, "a-very-..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
