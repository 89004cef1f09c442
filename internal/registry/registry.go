// Package registry owns the user collection. The whole collection is kept
// as one JSON document under a fixed key and rewritten after each change.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	apperrors "fittrack/internal/errors"
	"fittrack/internal/kvstore"
	"fittrack/internal/models"
	"fittrack/internal/password"
)

// UsersKey is the store key holding the user collection.
const UsersKey = "fitness_users"

// Registry is an in-memory copy of the user collection backed by a store.
// Callers that read-modify-write must serialize those sequences themselves.
type Registry struct {
	store kvstore.Store

	mu    sync.RWMutex
	users []models.User
}

// New creates an empty registry over store. Call Load to read existing users.
func New(store kvstore.Store) *Registry {
	return &Registry{store: store}
}

// Load replaces the in-memory collection with the stored one. A missing
// key yields an empty registry.
func (r *Registry) Load(ctx context.Context) error {
	raw, err := r.store.Get(ctx, UsersKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		r.mu.Lock()
		r.users = nil
		r.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read user registry: %w", err)
	}

	var users []models.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return fmt.Errorf("failed to decode user registry: %w", err)
	}

	r.mu.Lock()
	r.users = users
	r.mu.Unlock()
	return nil
}

// Save writes the whole collection back to the store.
func (r *Registry) Save(ctx context.Context) error {
	r.mu.RLock()
	users := r.users
	if users == nil {
		users = []models.User{}
	}
	raw, err := json.Marshal(users)
	r.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode user registry: %w", err)
	}
	if err := r.store.Set(ctx, UsersKey, string(raw)); err != nil {
		return fmt.Errorf("failed to write user registry: %w", err)
	}
	return nil
}

// FindByEmail returns a copy of the user with email, compared case-insensitively.
func (r *Registry) FindByEmail(email string) (models.User, bool) {
	email = password.NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

// FindByID returns a copy of the user with id.
func (r *Registry) FindByID(id string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// Create appends user. Its email is normalized first and must be unique.
func (r *Registry) Create(user models.User) (models.User, error) {
	user.Email = password.NormalizeEmail(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return models.User{}, apperrors.ErrDuplicateEmail
		}
	}
	r.users = append(r.users, user)
	return user, nil
}

// Update replaces the stored user with the same id.
func (r *Registry) Update(user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == user.ID {
			r.users[i] = user
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
