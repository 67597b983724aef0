package storage

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"curator/internal/asset"
	"curator/internal/media"
)

// MemoryStore keeps assets in insertion order for the lifetime of the
// process. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	entries []memoryEntry
}

type memoryEntry struct {
	id string
	a  *asset.Asset
}

var _ Storage = (*MemoryStore)(nil)

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Add stores the asset and returns its identifier.
func (s *MemoryStore) Add(ctx context.Context, a *asset.Asset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if a == nil {
		return "", media.Wrap(media.ErrValidation, "storage", "add", "asset is nil", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strconv.FormatInt(s.nextID, 10)
	s.nextID++
	s.entries = append(s.entries, memoryEntry{id: id, a: a})
	return id, nil
}

// Remove deletes the first stored asset equal to a. Removing an asset that
// is not in the store is an error.
func (s *MemoryStore) Remove(ctx context.Context, a *asset.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a == nil {
		return media.Wrap(media.ErrValidation, "storage", "remove", "asset is nil", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.entries {
		if entry.a.Equal(a) {
			s.entries = slices.Delete(s.entries, i, i+1)
			return nil
		}
	}
	return media.Wrap(media.ErrStorage, "storage", "remove", "asset not found", nil)
}

// Contains reports whether an equal asset is stored.
func (s *MemoryStore) Contains(ctx context.Context, a *asset.Asset) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if a == nil {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.entries {
		if entry.a.Equal(a) {
			return true, nil
		}
	}
	return false, nil
}

// Assets returns all stored assets in insertion order.
func (s *MemoryStore) Assets(ctx context.Context) ([]*asset.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*asset.Asset, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry.a)
	}
	return out, nil
}

// Find returns stored assets whose attributes match every set filter field,
// in insertion order.
func (s *MemoryStore) Find(ctx context.Context, f Filter) ([]*asset.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*asset.Asset
	for _, entry := range s.entries {
		if f.matches(entry.a.Attributes()) {
			out = append(out, entry.a)
		}
	}
	return out, nil
}

// Get returns the asset stored under id, or false when the id is unknown.
func (s *MemoryStore) Get(ctx context.Context, id string) (*asset.Asset, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.entries {
		if entry.id == id {
			return entry.a, true, nil
		}
	}
	return nil, false, nil
}

// Len reports the number of stored assets.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
