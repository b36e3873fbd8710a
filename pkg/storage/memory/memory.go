// Package memory provides an in-memory implementation of transport.UserStore
// for testing and lightweight deployments. Users are held in memory and lost
// when the process restarts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rhuss/gatehouse/pkg/api"
	"github.com/rhuss/gatehouse/pkg/storage"
	"github.com/rhuss/gatehouse/pkg/transport"
)

// Store is an in-memory UserStore. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	users map[string]*api.User
	now   func() time.Time
}

// Ensure Store implements transport.UserStore at compile time.
var _ transport.UserStore = (*Store)(nil)

// New creates a store holding the given users. Users without a CreatedAt
// are stamped with the current time. Duplicate IDs return ErrConflict.
func New(users ...*api.User) (*Store, error) {
	s := &Store{
		users: make(map[string]*api.User, len(users)),
		now:   time.Now,
	}
	for _, u := range users {
		if err := s.SaveUser(context.Background(), u); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SaveUser adds a user. Returns storage.ErrConflict if the ID is taken.
func (s *Store) SaveUser(_ context.Context, u *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists {
		return storage.ErrConflict
	}

	stored := *u
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now().UTC()
	}
	s.users[u.ID] = &stored
	return nil
}

// GetUser returns a copy of the user with the given ID, or
// storage.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (*api.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *u
	return &out, nil
}

// ListUsers returns copies of all users ordered by creation time, then ID.
func (s *Store) ListUsers(ctx context.Context) ([]*api.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]*api.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		out = append(out, &c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
