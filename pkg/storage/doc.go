// Package storage provides what the user store adapters share: sentinel
// errors.
//
// Adapters (memory, postgres, sqlite) implement the transport.UserStore
// interface defined in pkg/transport/handler.go. This package contains
// only shared types, not the interface itself.
package storage
