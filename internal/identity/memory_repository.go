package identity

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.Mutex
	users map[string]User // keyed by id
}

// NewMemoryRepository builds an in-memory user store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return errors.New("user exists")
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) UpdateSettings(_ context.Context, id string, periodDays int, emergencyEmail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.DMSPeriodDays = periodDays
	user.EmergencyEmail = emergencyEmail
	r.users[id] = user
	return nil
}

func (r *memoryRepository) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.LastActiveAt = at.UTC()
	r.users[id] = user
	return nil
}

func (r *memoryRepository) MarkTriggered(_ context.Context, id string, cutoff time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return false, ErrNotFound
	}
	if user.DMSStatus != StatusActive || user.LastActiveAt.After(cutoff) {
		return false, nil
	}
	user.DMSStatus = StatusTriggered
	r.users[id] = user
	return true, nil
}

func (r *memoryRepository) Reactivate(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return false, ErrNotFound
	}
	if user.DMSStatus != StatusTriggered {
		return false, nil
	}
	user.DMSStatus = StatusActive
	user.LastActiveAt = at.UTC()
	r.users[id] = user
	return true, nil
}

func (r *memoryRepository) ListByStatus(_ context.Context, status string) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []User
	for _, user := range r.users {
		if user.DMSStatus == status {
			users = append(users, user)
		}
	}
	return users, nil
}
