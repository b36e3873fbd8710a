// Package auth implements the gate every protected gatehouse request passes
// through: authentication followed, where a route requires it, by role
// authorization.
//
// Authentication extracts a bearer token from the Authorization header or
// the token cookie, verifies its signature and expiry, resolves the subject
// against the user store, and binds the resulting Identity to the request
// context. Authorization checks the bound Identity's role against the
// static RoleSet attached to the route at registration time.
//
// All authentication failures are reported to clients with one message;
// the distinct internal causes are only logged. A user store outage is not
// an authentication failure and surfaces as a server error.
package auth
