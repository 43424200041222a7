// Package session owns the mutable application state and dispatches user
// actions into the pure core functions. Core packages never hold state
// across calls; the session passes snapshots in and stores results.
package session

import (
	"context"
	"fmt"
	"log"
	"sort"

	"cardseer/internal/cards"
	"cardseer/internal/dataset"
	"cardseer/internal/graph"
	"cardseer/internal/guess"
	"cardseer/internal/storage"
	"cardseer/internal/synergy"
)

// SortOrder selects the candidate list ordering.
type SortOrder string

const (
	SortByRace   SortOrder = "race"
	SortByNumber SortOrder = "number"
	SortByValue  SortOrder = "value"
)

// ParseSortOrder parses a sort order, defaulting to race.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortByNumber:
		return SortByNumber
	case SortByValue:
		return SortByValue
	default:
		return SortByRace
	}
}

// Candidate is a still-possible hidden card with its highlight annotation.
type Candidate struct {
	cards.Card
	// CloseSignal is true when any recorded guess is close to this card.
	// It never affects filtering.
	CloseSignal bool
}

// Session holds the application state for one user.
type Session struct {
	loader *dataset.Loader
	store  *storage.Service // nil disables persistence

	collection *cards.Collection
	tags       cards.TagTable
	packNames  []string
	dropped    int
	applied    uint64 // generation of the applied load

	guesses      []guess.Guess
	sortBy       SortOrder
	enabledPacks map[string]bool

	selectedRace  cards.Race
	selectedLevel int // -1 = no filter
	selectedTag   string
}

// New creates a session. store may be nil for ephemeral use.
func New(loader *dataset.Loader, store *storage.Service) *Session {
	return &Session{
		loader:        loader,
		store:         store,
		collection:    cards.NewCollection(nil),
		tags:          cards.TagTable{},
		sortBy:        SortByRace,
		enabledPacks:  make(map[string]bool),
		selectedLevel: -1,
	}
}

// Restore reads the persisted snapshot, restoring guess history and the
// sort preference. Called once at startup, before the first Reload.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if snap == nil {
		return nil
	}
	s.guesses = snap.Guesses
	s.sortBy = ParseSortOrder(snap.SortBy)
	return nil
}

// persist writes the current history and sort preference. Persistence
// failures are logged, not fatal: the in-memory state stays authoritative.
func (s *Session) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	snap := &storage.Snapshot{Guesses: s.guesses, SortBy: string(s.sortBy)}
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		log.Printf("[Session] failed to persist snapshot: %v", err)
	}
}

// EnabledPacks returns the enabled expansion pack keys, sorted.
func (s *Session) EnabledPacks() []string {
	var keys []string
	for key, on := range s.enabledPacks {
		if on {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// TogglePack flips an expansion pack on or off. The core pack is always
// loaded and cannot be toggled. The caller is expected to Reload after.
func (s *Session) TogglePack(key string) error {
	if key == dataset.CoreKey {
		return fmt.Errorf("the core pack is always enabled")
	}
	if _, ok := dataset.PackFiles[key]; !ok {
		return fmt.Errorf("unknown pack key %q", key)
	}
	s.enabledPacks[key] = !s.enabledPacks[key]
	return nil
}

// Reload fetches and merges the core pack plus enabled expansions,
// replacing the collection. Any failure leaves the previous state
// unmodified. A successful reload invalidates the guess history.
func (s *Session) Reload(ctx context.Context) error {
	result, err := s.loader.Load(ctx, s.EnabledPacks())
	if err != nil {
		return err
	}
	s.Apply(ctx, result)
	return nil
}

// Apply installs a load result, unless a newer load has been applied or
// started since. Stale results are discarded.
func (s *Session) Apply(ctx context.Context, result *dataset.Result) {
	if result.Generation <= s.applied || result.Generation < s.loader.CurrentGeneration() {
		log.Printf("[Session] discarding stale load (generation %d)", result.Generation)
		return
	}
	s.applied = result.Generation
	s.collection = result.Collection
	s.tags = result.Tags
	s.packNames = result.PackNames
	s.dropped = result.Dropped

	// A dataset change invalidates everything derived from it.
	s.guesses = nil
	s.selectedRace = ""
	s.selectedLevel = -1
	s.selectedTag = ""
	s.persist(ctx)
}

// Collection returns the current card collection.
func (s *Session) Collection() *cards.Collection { return s.collection }

// Tags returns the current tag table.
func (s *Session) Tags() cards.TagTable { return s.tags }

// PackNames returns the names of the loaded packs.
func (s *Session) PackNames() []string { return s.packNames }

// Dropped returns how many malformed records the last load discarded.
func (s *Session) Dropped() int { return s.dropped }

// Guesses returns the guess history in insertion order.
func (s *Session) Guesses() []guess.Guess { return s.guesses }

// SortBy returns the candidate sort preference.
func (s *Session) SortBy() SortOrder { return s.sortBy }

// AddGuess appends a guess to the history and persists it.
func (s *Session) AddGuess(ctx context.Context, cardID string, feedback guess.Feedback) error {
	if cardID == "" {
		return fmt.Errorf("card id required")
	}
	s.guesses = append(s.guesses, guess.Guess{CardID: cardID, Feedback: feedback})
	s.persist(ctx)
	return nil
}

// RemoveGuess deletes the guess at index, shifting later entries down.
func (s *Session) RemoveGuess(ctx context.Context, index int) error {
	if index < 0 || index >= len(s.guesses) {
		return fmt.Errorf("guess index %d out of range", index)
	}
	s.guesses = append(s.guesses[:index], s.guesses[index+1:]...)
	s.persist(ctx)
	return nil
}

// ResetGuesses clears the entire history. Confirmation is the caller's
// responsibility.
func (s *Session) ResetGuesses(ctx context.Context) {
	s.guesses = nil
	s.persist(ctx)
}

// SetSortOrder updates and persists the candidate sort preference.
func (s *Session) SetSortOrder(ctx context.Context, order SortOrder) {
	s.sortBy = order
	s.persist(ctx)
}

// SelectRace sets the card-picker race filter; empty clears it.
func (s *Session) SelectRace(race cards.Race) { s.selectedRace = race }

// SelectLevel sets the card-picker level filter; -1 clears it.
func (s *Session) SelectLevel(level int) { s.selectedLevel = level }

// SelectTag sets the graph tag filter; empty clears it.
func (s *Session) SelectTag(tag string) { s.selectedTag = tag }

// SelectedRace returns the active race filter.
func (s *Session) SelectedRace() cards.Race { return s.selectedRace }

// SelectedTag returns the active tag filter.
func (s *Session) SelectedTag() string { return s.selectedTag }

// PickerCards returns the cards matching the race/level selection, sorted
// for display (race, level, number, value).
func (s *Session) PickerCards() []cards.Card {
	var out []cards.Card
	for _, c := range s.collection.All() {
		if s.selectedRace != "" && c.Race != s.selectedRace {
			continue
		}
		if s.selectedLevel >= 0 && c.Level != s.selectedLevel {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Race != b.Race {
			return a.Race < b.Race
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return a.Value < b.Value
	})
	return out
}

// Candidates recomputes the consistent candidate set from scratch and
// sorts it by the current preference. Candidates are never cached.
func (s *Session) Candidates() []Candidate {
	filtered := guess.FilterCandidates(s.collection, s.guesses)

	out := make([]Candidate, 0, len(filtered))
	for _, c := range filtered {
		out = append(out, Candidate{
			Card:        c,
			CloseSignal: guess.HasCloseSignal(s.collection, s.guesses, c),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return lessCandidate(out[i].Card, out[j].Card, s.sortBy)
	})
	return out
}

func lessCandidate(a, b cards.Card, order SortOrder) bool {
	switch order {
	case SortByNumber:
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		if a.Race != b.Race {
			return a.Race < b.Race
		}
		return a.Value < b.Value
	case SortByValue:
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		if a.Race != b.Race {
			return a.Race < b.Race
		}
		return a.Number < b.Number
	default: // race
		if a.Race != b.Race {
			return a.Race < b.Race
		}
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return a.Value < b.Value
	}
}

// Import merges a local card file into the working collection and records
// the import in the audit table.
func (s *Session) Import(ctx context.Context, path string) (*dataset.ImportResult, error) {
	result, err := dataset.ImportFile(path)
	if err != nil {
		return nil, err
	}

	merged := append(s.collection.All(), result.Cards...)
	s.collection = cards.NewCollection(merged)

	if s.store != nil {
		if err := s.store.RecordImport(ctx, path, len(result.Cards), result.Dropped); err != nil {
			log.Printf("[Session] failed to record import: %v", err)
		}
	}
	return result, nil
}

// BuildGraph computes synergies with the given strategy and builds the
// filtered graph for rendering.
func (s *Session) BuildGraph(strategy synergy.Strategy, opts graph.Options) *graph.Graph {
	synergies := strategy.ComputeAll(s.collection, s.tags)
	g := graph.Build(s.collection, s.tags, synergies, opts)
	return g.ApplyFilters(s.selectedRace, s.selectedTag)
}
