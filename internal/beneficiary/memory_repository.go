package beneficiary

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.Mutex
	storage map[string]Beneficiary
}

// NewMemoryRepository builds an in-memory beneficiary store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Beneficiary)}
}

func (r *memoryRepository) Create(_ context.Context, b Beneficiary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[b.ID] = b
	return nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Beneficiary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []Beneficiary
	for _, b := range r.storage {
		if b.UserID == userID {
			list = append(list, b)
		}
	}
	return list, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Beneficiary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.storage[id]
	if !ok {
		return Beneficiary{}, ErrNotFound
	}
	return b, nil
}

func (r *memoryRepository) FindByAccessKey(_ context.Context, accessKey string) (Beneficiary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.storage {
		if b.AccessKey == accessKey {
			return b, nil
		}
	}
	return Beneficiary{}, ErrNotFound
}

func (r *memoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.storage[id]
	if !ok || b.UserID != userID {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}

func (r *memoryRepository) StartSession(_ context.Context, id, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.storage[id]
	if !ok {
		return ErrNotFound
	}
	b.SessionID = sessionID
	b.VerificationStatus = StatusPending
	r.storage[id] = b
	return nil
}

func (r *memoryRepository) MarkVerified(_ context.Context, id, sessionID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.storage[id]
	if !ok {
		return false, ErrNotFound
	}
	if b.VerificationStatus == StatusVerified {
		return false, nil
	}
	granted := at.UTC()
	b.VerificationStatus = StatusVerified
	b.SessionID = sessionID
	b.AccessGrantedAt = &granted
	r.storage[id] = b
	return true, nil
}

func (r *memoryRepository) MarkFailed(_ context.Context, id, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.storage[id]
	if !ok {
		return ErrNotFound
	}
	b.VerificationStatus = StatusFailed
	b.SessionID = sessionID
	r.storage[id] = b
	return nil
}
