// Package session provides the per-browser-session key/value store backing
// the registration flow and the login attempt counters. Values are scoped by
// a cookie-carried session ID and expire with a TTL at least as long as the
// verification-code window.
package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key is absent for the session. Callers treat
// it as "no state yet", not as a failure.
var ErrNotFound = errors.New("session: key not found")

// Store is the consumed session-store contract: read, write, and
// read-and-delete of one value under one session. Implementations must give
// read-modify-write consistency per session key; cross-session ordering does
// not matter.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Pop(ctx context.Context, sessionID, key string) (string, error)
	Delete(ctx context.Context, sessionID, key string) error
}
