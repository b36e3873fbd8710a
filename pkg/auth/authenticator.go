package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rhuss/gatehouse/pkg/auth/jwt"
	"github.com/rhuss/gatehouse/pkg/debug"
	"github.com/rhuss/gatehouse/pkg/observability"
	"github.com/rhuss/gatehouse/pkg/storage"
)

// TokenVerifier verifies a token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (jwt.Claims, error)
}

// Authenticator verifies a candidate token and resolves its subject to an
// Identity. It holds only what it was constructed with and is safe for
// concurrent use.
type Authenticator struct {
	verifier TokenVerifier
	users    UserLookup
}

// NewAuthenticator creates an Authenticator from a verifier and a user store.
func NewAuthenticator(verifier TokenVerifier, users UserLookup) *Authenticator {
	return &Authenticator{verifier: verifier, users: users}
}

// Authenticate runs verification and subject resolution for one request.
// present is the second result of ExtractToken.
//
// Outcomes:
//   - ErrMissingCredential: no token; the store is not consulted
//   - ErrInvalidCredential: bad signature, wrong algorithm, malformed, or expired
//   - ErrPrincipalNotFound: valid token whose subject has no user record
//   - ErrStoreUnavailable: the lookup failed for any other reason
func (a *Authenticator) Authenticate(ctx context.Context, token string, present bool) (Identity, error) {
	if !present {
		return Identity{}, ErrMissingCredential
	}

	claims, err := a.verifier.Verify(token)
	if err != nil {
		debug.Log("auth", "token rejected", "error", err)
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}

	start := time.Now()
	user, err := a.users.GetUser(ctx, claims.Subject)
	observability.UserLookupDuration.Observe(time.Since(start).Seconds())

	if errors.Is(err, storage.ErrNotFound) {
		return Identity{}, fmt.Errorf("%w: subject %q", ErrPrincipalNotFound, claims.Subject)
	}
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if user == nil || user.ID == "" {
		return Identity{}, fmt.Errorf("%w: store returned empty record for %q", ErrPrincipalNotFound, claims.Subject)
	}

	return Identity{ID: user.ID, Role: Role(user.Role)}, nil
}
