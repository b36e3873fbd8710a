package auth

import (
	"errors"

	"github.com/rhuss/gatehouse/pkg/api"
)

// Sentinel errors.
var (
	// ErrMissingCredential means the request carried no token.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredential means the token failed verification or expired.
	ErrInvalidCredential = errors.New("invalid or expired credential")

	// ErrPrincipalNotFound means the token verified but its subject does
	// not resolve to a user.
	ErrPrincipalNotFound = errors.New("principal not found")

	// ErrForbidden means the caller is authenticated but its role is not
	// in the route's required set.
	ErrForbidden = errors.New("insufficient role")

	// ErrStoreUnavailable means the user store lookup failed for a reason
	// other than a missing record.
	ErrStoreUnavailable = errors.New("user store unavailable")
)

// IsUnauthorized reports whether err is one of the authentication failures
// that collapse to a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrMissingCredential) ||
		errors.Is(err, ErrInvalidCredential) ||
		errors.Is(err, ErrPrincipalNotFound)
}

// ToAPIError maps a gate error to the error sent to the client. The cause
// is never included.
func ToAPIError(err error) *api.APIError {
	switch {
	case IsUnauthorized(err):
		return api.NewUnauthorizedError()
	case errors.Is(err, ErrForbidden):
		return api.NewForbiddenError()
	case errors.Is(err, ErrStoreUnavailable):
		return api.NewServerError(api.MessageStoreFailure)
	default:
		return api.NewServerError(api.MessageServerError)
	}
}
