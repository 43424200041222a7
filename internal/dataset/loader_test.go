package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"cardseer/internal/cards"
)

// fakeSource serves canned pack payloads for tests.
type fakeSource struct {
	packs map[string]*PackFile
	tags  cards.TagTable
	fail  map[string]error
}

func (f *fakeSource) FetchPack(ctx context.Context, key string) (*PackFile, error) {
	if err := f.fail[key]; err != nil {
		return nil, err
	}
	pack, ok := f.packs[key]
	if !ok {
		return nil, errors.New("no such pack")
	}
	return pack, nil
}

func (f *fakeSource) FetchTags(ctx context.Context) (cards.TagTable, error) {
	if err := f.fail["tags"]; err != nil {
		return nil, err
	}
	if f.tags == nil {
		return cards.TagTable{}, nil
	}
	return f.tags, nil
}

func record(id, race, level, number, value string) rawCard {
	return rawCard{
		ID:     id,
		Race:   race,
		Level:  json.Number(level),
		Number: json.Number(number),
		Value:  json.Number(value),
	}
}

func TestLoadMergesAndFlagsCoreSet(t *testing.T) {
	source := &fakeSource{
		packs: map[string]*PackFile{
			CoreKey: {Name: "核心", Cards: []rawCard{
				record("marine", "terran", "1", "1", "100"),
				record("zergling", "zerg", "1", "2", "50"),
			}},
			"pack1": {Name: "军备竞赛", Cards: []rawCard{
				record("tank", "Terran", "3", "4", "700"),
				record("marine", "terran", "2", "1", "150"), // overrides core record
			}},
		},
	}

	result, err := NewLoader(source).Load(context.Background(), []string{"pack1"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if result.Collection.Len() != 3 {
		t.Errorf("merged %d cards, want 3", result.Collection.Len())
	}

	// Last write wins: the pack1 record replaces the core one, and with
	// it the core-set flag.
	marine, ok := result.Collection.Lookup("marine")
	if !ok {
		t.Fatal("marine missing after merge")
	}
	if marine.Level != 2 || marine.CoreSet {
		t.Errorf("marine = %+v, want pack1 record without core-set flag", marine)
	}

	tank, _ := result.Collection.Lookup("tank")
	if tank.CoreSet {
		t.Error("expansion card flagged as core set")
	}

	if len(result.PackNames) != 2 || result.PackNames[0] != "核心" {
		t.Errorf("PackNames = %v", result.PackNames)
	}
}

func TestLoadDropsMalformedRecords(t *testing.T) {
	source := &fakeSource{
		packs: map[string]*PackFile{
			CoreKey: {Cards: []rawCard{
				record("good", "terran", "1", "1", "100"),
				record("badrace", "xel'naga", "1", "2", "100"),
				record("badnumber", "zerg", "1", "", "100"),
			}},
		},
	}

	result, err := NewLoader(source).Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if result.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", result.Dropped)
	}
	if result.Collection.Len() != 1 {
		t.Errorf("kept %d cards, want 1", result.Collection.Len())
	}
}

func TestLoadClampsLevel(t *testing.T) {
	source := &fakeSource{
		packs: map[string]*PackFile{
			CoreKey: {Cards: []rawCard{
				record("low", "terran", "-3", "1", "100"),
				record("high", "terran", "99", "2", "100"),
			}},
		},
	}

	result, err := NewLoader(source).Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	low, _ := result.Collection.Lookup("low")
	if low.Level != cards.MinLevel {
		t.Errorf("low level = %d, want %d", low.Level, cards.MinLevel)
	}
	high, _ := result.Collection.Lookup("high")
	if high.Level != cards.MaxLevel {
		t.Errorf("high level = %d, want %d", high.Level, cards.MaxLevel)
	}
}

func TestLoadFallbackID(t *testing.T) {
	source := &fakeSource{
		packs: map[string]*PackFile{
			CoreKey: {Cards: []rawCard{
				record("", "terran", "1", "7", "100"),
			}},
		},
	}

	result, err := NewLoader(source).Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, ok := result.Collection.Lookup("Terran-7"); !ok {
		t.Error("expected fallback id Terran-7")
	}
}

func TestLoadAbortsOnAnyFetchFailure(t *testing.T) {
	boom := errors.New("fetch failed")
	source := &fakeSource{
		packs: map[string]*PackFile{
			CoreKey: {Cards: []rawCard{record("a", "terran", "1", "1", "100")}},
		},
		fail: map[string]error{"pack2": boom},
	}

	if _, err := NewLoader(source).Load(context.Background(), []string{"pack2"}); !errors.Is(err, boom) {
		t.Errorf("Load() error = %v, want wrapped fetch failure", err)
	}
}

func TestLoadAbortsOnTagFailure(t *testing.T) {
	boom := errors.New("tags unavailable")
	source := &fakeSource{
		packs: map[string]*PackFile{CoreKey: {}},
		fail:  map[string]error{"tags": boom},
	}

	if _, err := NewLoader(source).Load(context.Background(), nil); !errors.Is(err, boom) {
		t.Errorf("Load() error = %v, want wrapped tag failure", err)
	}
}

func TestLoadGenerationsIncrease(t *testing.T) {
	source := &fakeSource{packs: map[string]*PackFile{CoreKey: {}}}
	loader := NewLoader(source)

	first, err := loader.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	second, err := loader.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if second.Generation <= first.Generation {
		t.Errorf("generations not increasing: %d then %d", first.Generation, second.Generation)
	}
	if loader.CurrentGeneration() != second.Generation {
		t.Errorf("CurrentGeneration() = %d, want %d", loader.CurrentGeneration(), second.Generation)
	}
}

func TestParseTagsCoercesValues(t *testing.T) {
	data := []byte(`{"cardTags": {"marine": {"单位": 3, "pack": "核心"}}}`)
	table, err := parseTags(data)
	if err != nil {
		t.Fatalf("parseTags() error: %v", err)
	}
	tags := table.Tags("marine")
	if tags.Weight("单位") != 3 {
		t.Errorf("单位 = %v, want 3", tags.Weight("单位"))
	}
	if tags.Weight("pack") != 0 {
		t.Errorf("non-numeric tag = %v, want 0", tags.Weight("pack"))
	}
}
