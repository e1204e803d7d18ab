package asset

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Asset
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Asset)}
}

func (r *memoryRepository) Create(_ context.Context, a Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[a.ID] = a
	return nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var assets []Asset
	for _, a := range r.storage {
		if a.UserID == userID {
			assets = append(assets, a)
		}
	}
	return assets, nil
}

func (r *memoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.storage[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}
