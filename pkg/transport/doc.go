// Package transport defines the user store contract and the HTTP
// middleware chain for the gatehouse HTTP layer.
//
// # Store Interface
//
// UserStore is the contract between the HTTP layer and the storage
// adapters in pkg/storage. The auth gate consumes a narrower view of it
// (lookup by ID only).
//
// # Middleware
//
// Middleware wraps an http.Handler with cross-cutting behavior. Built-in
// middleware provides panic recovery, request ID assignment
// (X-Request-ID), client IP restoration behind Cloudflare and proxies,
// per-client rate limiting, security headers, and structured access
// logging via log/slog.
//
// # Errors
//
// WriteAPIError renders an api.APIError as the failure envelope with the
// status derived from its type. WriteJSON renders success envelopes.
package transport
