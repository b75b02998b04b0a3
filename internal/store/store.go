// Package store persists user sessions and their provider tokens. The flow
// controllers depend on the narrow SessionStore interface; Postgres and
// file-backed implementations are provided.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/coyotiv/meta-auth/internal/auth/meta"
	"github.com/coyotiv/meta-auth/internal/session"
)

// ErrSessionNotFound is returned when no session exists for the given user id.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore is the persistence contract for user sessions and provider
// tokens. Writes are keyed by the derived user id, so re-authentication for
// the same provider account overwrites rather than duplicates. The session
// row and the token row are written separately and are not atomic; the
// session row is the authoritative record for the verification path.
type SessionStore interface {
	// StoreUserSession creates or replaces the session row for the user.
	StoreUserSession(ctx context.Context, s *session.UserSession) error
	// StoreUserTokens creates or replaces the provider token row for the user.
	StoreUserTokens(ctx context.Context, userID string, tokens *meta.TokenSet) error
	// GetUserSession fetches a session row, failing with ErrSessionNotFound.
	GetUserSession(ctx context.Context, userID string) (*session.UserSession, error)
	// TouchUserSession updates the session's last-used timestamp.
	TouchUserSession(ctx context.Context, userID string, at time.Time) error
	// DeleteUserSession removes the session and token rows. Deleting a user
	// that does not exist is not an error.
	DeleteUserSession(ctx context.Context, userID string) error
}
