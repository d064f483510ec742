package users

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu    sync.Mutex
	users map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, u User) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.users {
		if existing.PhoneNumber != u.PhoneNumber {
			continue
		}
		existing.FCMToken = u.FCMToken
		if u.CountryCode != nil {
			existing.CountryCode = u.CountryCode
		}
		existing.UpdatedAt = u.CreatedAt
		r.users[id] = existing
		return existing, false, nil
	}
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = u
	return u, true, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) GetByPhone(ctx context.Context, phone string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) UpdatePhone(ctx context.Context, id, phone string, countryCode *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	for otherID, other := range r.users {
		if otherID != id && other.PhoneNumber == phone {
			return ErrPhoneTaken
		}
	}
	u.PhoneNumber = phone
	u.CountryCode = countryCode
	r.users[id] = u
	return nil
}

func (r *MemoryRepo) SetNotificationsEnabled(ctx context.Context, id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PushNotificationsEnabled = enabled
	r.users[id] = u
	return nil
}
