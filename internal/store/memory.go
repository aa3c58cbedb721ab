// internal/store/memory.go
//
// In-memory registry of live matches.
// Used by the lobby to publish running matches and by the HTTP layer to list them.
//
// Characteristics:
//   - Stores Match values keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts; finished results live in the history store.
//   - Errors are returned for missing match IDs on Get().

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for an unknown match id.
var ErrNotFound = errors.New("not found")

// Snapshot is a read-only summary of a running match.
type Snapshot struct {
	ID         string    `json:"id"`
	Generation int       `json:"generation"`
	StartedAt  time.Time `json:"startedAt"`
	Turn       string    `json:"turn"`
	Phase      string    `json:"phase"`
	Status     string    `json:"status"`
	Points     [2]int    `json:"points"` // white, blue
}

// Match is anything the registry can hold.
type Match interface {
	ID() string
	Snapshot() Snapshot
}

// Store defines the registry interface.
type Store interface {
	// Save registers or replaces a match.
	Save(ctx context.Context, m Match) error

	// Get retrieves a match by ID.
	// Returns ErrNotFound if the match is not registered.
	Get(ctx context.Context, id string) (Match, error)

	// Delete removes a match. Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error

	// List returns snapshots of every registered match, oldest first.
	List(ctx context.Context) ([]Snapshot, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex     // guards matches map
	matches map[string]Match // keyed by Match.ID()
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{matches: make(map[string]Match)}
}

// Save adds or updates the match in the map.
func (m *memory) Save(ctx context.Context, mt Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[mt.ID()] = mt
	return nil
}

// Get looks up a match by ID.
func (m *memory) Get(ctx context.Context, id string) (Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mt, ok := m.matches[id]; ok {
		return mt, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.matches, id)
	return nil
}

// List snapshots outside the registry lock: Snapshot takes the match's own lock.
func (m *memory) List(ctx context.Context) ([]Snapshot, error) {
	m.mu.RLock()
	all := make([]Match, 0, len(m.matches))
	for _, mt := range m.matches {
		all = append(all, mt)
	}
	m.mu.RUnlock()

	out := make([]Snapshot, 0, len(all))
	for _, mt := range all {
		out = append(out, mt.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}
