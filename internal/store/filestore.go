package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/coyotiv/meta-auth/internal/auth/meta"
	"github.com/coyotiv/meta-auth/internal/session"
)

// FileSessionStore persists sessions and provider tokens as JSON files under
// a base directory, one pair of files per user. It is intended for local
// development and single-node deployments.
type FileSessionStore struct {
	mu      sync.Mutex
	baseDir string
}

// tokenRecord is the on-disk shape of a stored token set.
type tokenRecord struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresIn    int64     `json:"expiresIn,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewFileSessionStore creates a file-backed session store rooted at baseDir.
func NewFileSessionStore(baseDir string) (*FileSessionStore, error) {
	trimmed := strings.TrimSpace(baseDir)
	if trimmed == "" {
		return nil, fmt.Errorf("file store: base directory is required")
	}
	if err := os.MkdirAll(trimmed, 0o700); err != nil {
		return nil, fmt.Errorf("file store: create base directory: %w", err)
	}
	return &FileSessionStore{baseDir: trimmed}, nil
}

// StoreUserSession creates or replaces the session file for the user.
func (s *FileSessionStore) StoreUserSession(ctx context.Context, sess *session.UserSession) error {
	if sess == nil || sess.UserID == "" {
		return fmt.Errorf("file store: session user id is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: marshal session failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err = os.WriteFile(s.sessionPath(sess.UserID), raw, 0o600); err != nil {
		return fmt.Errorf("file store: write session failed: %w", err)
	}
	return nil
}

// StoreUserTokens creates or replaces the token file for the user.
func (s *FileSessionStore) StoreUserTokens(ctx context.Context, userID string, tokens *meta.TokenSet) error {
	if userID == "" {
		return fmt.Errorf("file store: user id is empty")
	}
	if tokens == nil {
		return fmt.Errorf("file store: token set is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	record := tokenRecord{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		UpdatedAt:    time.Now().UTC(),
	}
	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: marshal tokens failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err = os.WriteFile(s.tokenPath(userID), raw, 0o600); err != nil {
		return fmt.Errorf("file store: write tokens failed: %w", err)
	}
	return nil
}

// GetUserSession reads a session file, failing with ErrSessionNotFound when
// the user has never authenticated.
func (s *FileSessionStore) GetUserSession(ctx context.Context, userID string) (*session.UserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	raw, err := os.ReadFile(s.sessionPath(userID))
	s.mu.Unlock()
	if os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read session failed: %w", err)
	}

	var sess session.UserSession
	if err = json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("file store: decode session failed: %w", err)
	}
	return &sess, nil
}

// TouchUserSession updates the session's last-used timestamp.
func (s *FileSessionStore) TouchUserSession(ctx context.Context, userID string, at time.Time) error {
	sess, err := s.GetUserSession(ctx, userID)
	if err != nil {
		return err
	}
	sess.LastUsed = at
	return s.StoreUserSession(ctx, sess)
}

// DeleteUserSession removes the session and token files for the user.
func (s *FileSessionStore) DeleteUserSession(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.sessionPath(userID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file store: remove session failed: %w", err)
	}
	if err := os.Remove(s.tokenPath(userID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file store: remove tokens failed: %w", err)
	}
	return nil
}

func (s *FileSessionStore) sessionPath(userID string) string {
	return filepath.Join(s.baseDir, sanitizeFileName(userID)+".json")
}

func (s *FileSessionStore) tokenPath(userID string) string {
	return filepath.Join(s.baseDir, sanitizeFileName(userID)+".tokens.json")
}

// sanitizeFileName keeps user-derived file names inside the base directory.
func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
