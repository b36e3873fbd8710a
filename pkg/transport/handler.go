package transport

import (
	"context"

	"github.com/rhuss/gatehouse/pkg/api"
)

// UserStore handles retrieval of user records.
type UserStore interface {
	// GetUser retrieves a user by ID. Returns storage.ErrNotFound if the
	// user does not exist.
	GetUser(ctx context.Context, id string) (*api.User, error)

	// ListUsers returns all users ordered by creation time.
	ListUsers(ctx context.Context) ([]*api.User, error)

	// HealthCheck verifies the store connection is functional.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
