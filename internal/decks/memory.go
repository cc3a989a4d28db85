package decks

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
)

// MemoryStore keeps decks for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	decks []Deck
	stamp stamper
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{stamp: newStamper(opts)}
}

func (m *MemoryStore) List(context.Context) ([]Deck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.decks), nil
}

func (m *MemoryStore) Create(_ context.Context, fields map[string]json.RawMessage) (Deck, error) {
	d := m.stamp.stamp(fields)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.decks = append(m.decks, d)
	return d, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.decks, func(d Deck) bool { return d.ID == id })
	if idx < 0 {
		return ErrNotFound
	}
	m.decks = slices.Delete(m.decks, idx, idx+1)
	return nil
}
