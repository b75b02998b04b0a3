package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coyotiv/meta-auth/internal/auth/meta"
	"github.com/coyotiv/meta-auth/internal/session"
)

func newTestFileStore(t *testing.T) *FileSessionStore {
	t.Helper()
	s, err := NewFileSessionStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSessionStore: %v", err)
	}
	return s
}

func testSession(userID string) *session.UserSession {
	now := time.Now().UTC().Truncate(time.Second)
	exp := now.Add(time.Hour)
	return &session.UserSession{
		UserID:          userID,
		Email:           "a@b.com",
		Name:            "Ada",
		ProviderUserID:  "42",
		AccessToken:     "tok",
		TokenExpiration: &exp,
		CreatedAt:       now,
		LastUsed:        now,
	}
}

func TestFileStoreSessionRoundTrip(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	want := testSession("meta_42")
	if err := s.StoreUserSession(ctx, want); err != nil {
		t.Fatalf("StoreUserSession: %v", err)
	}

	got, err := s.GetUserSession(ctx, "meta_42")
	if err != nil {
		t.Fatalf("GetUserSession: %v", err)
	}
	if got.UserID != want.UserID || got.Email != want.Email || got.AccessToken != want.AccessToken {
		t.Fatalf("got session %+v, want %+v", got, want)
	}
	if got.TokenExpiration == nil || !got.TokenExpiration.Equal(*want.TokenExpiration) {
		t.Fatalf("got token expiration %v, want %v", got.TokenExpiration, want.TokenExpiration)
	}
}

func TestFileStoreReauthenticationOverwrites(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	first := testSession("meta_42")
	if err := s.StoreUserSession(ctx, first); err != nil {
		t.Fatalf("StoreUserSession: %v", err)
	}

	second := testSession("meta_42")
	second.AccessToken = "fresh-tok"
	if err := s.StoreUserSession(ctx, second); err != nil {
		t.Fatalf("StoreUserSession (second login): %v", err)
	}

	got, err := s.GetUserSession(ctx, "meta_42")
	if err != nil {
		t.Fatalf("GetUserSession: %v", err)
	}
	if got.AccessToken != "fresh-tok" {
		t.Fatalf("got access token %q, want fresh-tok", got.AccessToken)
	}
}

func TestFileStoreMissingSession(t *testing.T) {
	s := newTestFileStore(t)
	if _, err := s.GetUserSession(context.Background(), "meta_404"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("got error %v, want ErrSessionNotFound", err)
	}
}

func TestFileStoreTokens(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	tokens := &meta.TokenSet{AccessToken: "tok", RefreshToken: "refresh", ExpiresIn: 3600}
	if err := s.StoreUserTokens(ctx, "meta_42", tokens); err != nil {
		t.Fatalf("StoreUserTokens: %v", err)
	}
	if err := s.StoreUserTokens(ctx, "", tokens); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if err := s.StoreUserTokens(ctx, "meta_42", nil); err == nil {
		t.Fatal("expected error for nil token set")
	}
}

func TestFileStoreTouch(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if err := s.StoreUserSession(ctx, testSession("meta_42")); err != nil {
		t.Fatalf("StoreUserSession: %v", err)
	}

	later := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	if err := s.TouchUserSession(ctx, "meta_42", later); err != nil {
		t.Fatalf("TouchUserSession: %v", err)
	}

	got, err := s.GetUserSession(ctx, "meta_42")
	if err != nil {
		t.Fatalf("GetUserSession: %v", err)
	}
	if !got.LastUsed.Equal(later) {
		t.Fatalf("got last used %v, want %v", got.LastUsed, later)
	}

	if err := s.TouchUserSession(ctx, "meta_404", later); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("got error %v, want ErrSessionNotFound", err)
	}
}

func TestFileStoreDelete(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if err := s.StoreUserSession(ctx, testSession("meta_42")); err != nil {
		t.Fatalf("StoreUserSession: %v", err)
	}
	if err := s.StoreUserTokens(ctx, "meta_42", &meta.TokenSet{AccessToken: "tok"}); err != nil {
		t.Fatalf("StoreUserTokens: %v", err)
	}

	if err := s.DeleteUserSession(ctx, "meta_42"); err != nil {
		t.Fatalf("DeleteUserSession: %v", err)
	}
	if _, err := s.GetUserSession(ctx, "meta_42"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("got error %v, want ErrSessionNotFound", err)
	}

	// Deleting an absent user is not an error.
	if err := s.DeleteUserSession(ctx, "meta_42"); err != nil {
		t.Fatalf("DeleteUserSession (absent): %v", err)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"meta_42", "meta_42"},
		{"../../etc/passwd", "______etc_passwd"},
		{"meta_42/evil", "meta_42_evil"},
	}
	for i := range tests {
		if got := sanitizeFileName(tests[i].in); got != tests[i].want {
			t.Fatalf("sanitize %q: got %q, want %q", tests[i].in, got, tests[i].want)
		}
	}
}
