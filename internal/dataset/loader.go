// Package dataset loads and merges card pack files and the tag table into
// an immutable collection.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"

	"cardseer/internal/cards"
)

// CoreKey is the mandatory base pack. Its cards are the only eligible
// hidden-card candidates.
const CoreKey = "core"

// PackFiles maps pack keys to their data file names.
var PackFiles = map[string]string{
	CoreKey:    "core.json",
	"pack1":    "pack1JunBeiJingSai.json",
	"pack2":    "pack2ZuoZhanJiHua.json",
	"pack3":    "pack3JuanTuChongLai.json",
	"pack4":    "pack4ShiBuWoDai.json",
	"pack5":    "pack5ChongZhuangShangZhen.json",
	"pack6":    "pack6QiongBingDuWu.json",
	"pack7":    "pack7YiNianZhiCha.json",
	"pack8":    "pack8MuChangZhiZhan.json",
	"pack9":    "pack9ShenJingBaiZhan.json",
	"packDuo1": "packDuo1TongLuanShuangGou.json",
}

// TagsFile is the tag table file name.
const TagsFile = "tags.json"

// rawCard is a card record as it appears in pack files: race free-form,
// numeric fields unvalidated.
type rawCard struct {
	ID     string      `json:"id"`
	Race   string      `json:"race"`
	Level  json.Number `json:"level"`
	Number json.Number `json:"number"`
	Value  json.Number `json:"value"`
}

// PackFile is one parsed dataset fragment.
type PackFile struct {
	Name  string    `json:"name"`
	Cards []rawCard `json:"cards"`
}

// tagsFile mirrors the tag table file layout.
type tagsFile struct {
	CardTags map[string]map[string]json.RawMessage `json:"cardTags"`
}

// Source fetches dataset fragments. Implementations: FileSource for a
// local data directory, HTTPSource for a remote base URL.
type Source interface {
	FetchPack(ctx context.Context, key string) (*PackFile, error)
	FetchTags(ctx context.Context) (cards.TagTable, error)
}

// Result is a completed load: the merged collection, the names of the
// loaded packs, and how many malformed records were dropped.
type Result struct {
	Collection *cards.Collection
	Tags       cards.TagTable
	PackNames  []string
	Dropped    int

	// Generation tags this load attempt; the session only applies the
	// result from the most recent generation.
	Generation uint64
}

// Loader merges pack fragments into collections. Safe to reuse across
// loads; each Load gets a fresh generation.
type Loader struct {
	source     Source
	generation atomic.Uint64
}

// NewLoader creates a loader reading from the given source.
func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// NextGeneration reserves the generation for a load about to start.
func (l *Loader) NextGeneration() uint64 {
	return l.generation.Add(1)
}

// CurrentGeneration returns the most recently reserved generation.
func (l *Loader) CurrentGeneration() uint64 {
	return l.generation.Load()
}

// Load fetches the core pack plus the requested expansion keys, merges
// them by id (last write wins), and normalizes every record. Any fetch or
// parse failure aborts the whole merge; the caller keeps its prior state.
func (l *Loader) Load(ctx context.Context, expansionKeys []string) (*Result, error) {
	gen := l.NextGeneration()

	keys := append([]string{CoreKey}, expansionKeys...)

	tags, err := l.source.FetchTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tag table: %w", err)
	}

	var merged []cards.Card
	var packNames []string
	dropped := 0

	for _, key := range keys {
		pack, err := l.source.FetchPack(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to load pack %s: %w", key, err)
		}

		name := pack.Name
		if name == "" {
			name = key
		}
		packNames = append(packNames, name)

		for _, raw := range pack.Cards {
			card, ok := normalizeRecord(raw, key == CoreKey)
			if !ok {
				dropped++
				continue
			}
			merged = append(merged, card)
		}
	}

	if dropped > 0 {
		log.Printf("[Loader] %d invalid card records dropped", dropped)
	}

	return &Result{
		Collection: cards.NewCollection(merged),
		Tags:       tags,
		PackNames:  packNames,
		Dropped:    dropped,
		Generation: gen,
	}, nil
}

// normalizeRecord validates and converts one raw record. Records with an
// unknown race, a non-finite level, or unparseable number/value are
// dropped rather than failing the load. A missing id falls back to
// "race-number".
func normalizeRecord(raw rawCard, coreSet bool) (cards.Card, bool) {
	race, ok := cards.NormalizeRace(raw.Race)
	if !ok {
		return cards.Card{}, false
	}
	rawLevel, err := raw.Level.Float64()
	if err != nil {
		return cards.Card{}, false
	}
	level, ok := cards.ClampLevel(rawLevel)
	if !ok {
		return cards.Card{}, false
	}
	number, err := raw.Number.Float64()
	if err != nil {
		return cards.Card{}, false
	}
	value, err := raw.Value.Float64()
	if err != nil {
		return cards.Card{}, false
	}

	id := raw.ID
	if id == "" {
		id = fmt.Sprintf("%s-%v", race, number)
	}

	return cards.Card{
		ID:      id,
		Race:    race,
		Level:   level,
		Number:  number,
		Value:   value,
		CoreSet: coreSet,
	}, true
}

// parseTags decodes and normalizes a tag table payload.
func parseTags(data []byte) (cards.TagTable, error) {
	var tf tagsFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse tag file: %w", err)
	}
	return cards.NormalizeTagTable(tf.CardTags), nil
}

// parsePack decodes one pack payload.
func parsePack(data []byte, key string) (*PackFile, error) {
	var pack PackFile
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse pack %s: %w", key, err)
	}
	return &pack, nil
}
