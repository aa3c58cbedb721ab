// internal/board/field.go
//
// Per-match resource assignment ("field").
// GenerateField pairs a uniformly shuffled permutation of the producing hex
// ids with a uniformly shuffled multiset of resource tiles. Both shuffles are
// Fisher–Yates (rand.Shuffle); the counts per kind always match Layout.Tiles.
//
// The field is owned by the match; the shared Layout is never mutated.

package board

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
)

// Tile is one (hexId, resource) assignment.
// It encodes as a two-element JSON array: [3, "wood"].
type Tile struct {
	HexID    int
	Resource Resource
}

func (t Tile) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{t.HexID, t.Resource})
}

func (t *Tile) UnmarshalJSON(b []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &t.HexID); err != nil {
		return fmt.Errorf("tile hex id: %w", err)
	}
	return json.Unmarshal(raw[1], &t.Resource)
}

// Field is the ordered resource assignment sent to clients.
type Field []Tile

// GenerateField draws a fresh assignment from rng.
func (l *Layout) GenerateField(rng *rand.Rand) Field {
	n := l.ProducingHexes()

	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	tiles := make([]Resource, 0, n)
	for _, kind := range Kinds {
		for i := 0; i < l.Tiles[kind]; i++ {
			tiles = append(tiles, kind)
		}
	}
	rng.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })

	field := make(Field, n)
	for i := range ids {
		field[i] = Tile{HexID: ids[i], Resource: tiles[i]}
	}
	return field
}

// ResourceOf returns the resource assigned to hexID, or None.
func (f Field) ResourceOf(hexID int) Resource {
	for _, t := range f {
		if t.HexID == hexID {
			return t.Resource
		}
	}
	return None
}

// Counts tallies tiles per resource kind.
func (f Field) Counts() map[Resource]int {
	out := make(map[Resource]int, len(Kinds))
	for _, t := range f {
		out[t.Resource]++
	}
	return out
}

// Sorted returns a copy ordered by hex id.
func (f Field) Sorted() Field {
	out := append(Field(nil), f...)
	sort.Slice(out, func(i, j int) bool { return out[i].HexID < out[j].HexID })
	return out
}
