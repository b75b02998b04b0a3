package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coyotiv/meta-auth/internal/auth/meta"
	"github.com/coyotiv/meta-auth/internal/session"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	defaultSessionTable = "user_sessions"
	defaultTokenTable   = "user_tokens"
)

// PostgresStoreConfig captures configuration required to initialize a
// Postgres-backed session store.
type PostgresStoreConfig struct {
	DSN          string
	Schema       string
	SessionTable string
	TokenTable   string
}

// PostgresSessionStore persists sessions and provider tokens in PostgreSQL.
type PostgresSessionStore struct {
	db  *sql.DB
	cfg PostgresStoreConfig
}

// NewPostgresSessionStore establishes a connection to PostgreSQL and verifies
// it with a ping.
func NewPostgresSessionStore(ctx context.Context, cfg PostgresStoreConfig) (*PostgresSessionStore, error) {
	trimmedDSN := strings.TrimSpace(cfg.DSN)
	if trimmedDSN == "" {
		return nil, fmt.Errorf("postgres store: DSN is required")
	}
	cfg.DSN = trimmedDSN
	if cfg.SessionTable == "" {
		cfg.SessionTable = defaultSessionTable
	}
	if cfg.TokenTable == "" {
		cfg.TokenTable = defaultTokenTable
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres store: open database connection: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres store: ping database: %w", err)
	}

	return &PostgresSessionStore{db: db, cfg: cfg}, nil
}

// Close releases the underlying database connection.
func (s *PostgresSessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureSchema creates the required tables (and schema when provided).
func (s *PostgresSessionStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store: not initialized")
	}
	if schema := strings.TrimSpace(s.cfg.Schema); schema != "" {
		query := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", quoteIdentifier(schema))
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("postgres store: create schema: %w", err)
		}
	}

	sessions := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		user_id TEXT PRIMARY KEY,
		email TEXT,
		name TEXT,
		provider_user_id TEXT NOT NULL,
		access_token TEXT NOT NULL,
		refresh_token TEXT,
		token_expiration TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		last_used TIMESTAMPTZ NOT NULL
	)`, s.sessionTable())
	if _, err := s.db.ExecContext(ctx, sessions); err != nil {
		return fmt.Errorf("postgres store: create session table: %w", err)
	}

	tokens := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		user_id TEXT PRIMARY KEY,
		access_token TEXT NOT NULL,
		refresh_token TEXT,
		expires_in BIGINT,
		updated_at TIMESTAMPTZ NOT NULL
	)`, s.tokenTable())
	if _, err := s.db.ExecContext(ctx, tokens); err != nil {
		return fmt.Errorf("postgres store: create token table: %w", err)
	}
	return nil
}

// StoreUserSession creates or replaces the session row for the user.
func (s *PostgresSessionStore) StoreUserSession(ctx context.Context, sess *session.UserSession) error {
	if sess == nil || sess.UserID == "" {
		return fmt.Errorf("postgres store: session user id is empty")
	}
	query := fmt.Sprintf(`INSERT INTO %s
		(user_id, email, name, provider_user_id, access_token, refresh_token, token_expiration, created_at, last_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			provider_user_id = EXCLUDED.provider_user_id,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expiration = EXCLUDED.token_expiration,
			last_used = EXCLUDED.last_used`, s.sessionTable())
	_, err := s.db.ExecContext(ctx, query,
		sess.UserID, nullString(sess.Email), nullString(sess.Name), sess.ProviderUserID,
		sess.AccessToken, nullString(sess.RefreshToken), nullTime(sess.TokenExpiration),
		sess.CreatedAt, sess.LastUsed)
	if err != nil {
		return fmt.Errorf("postgres store: store session: %w", err)
	}
	return nil
}

// StoreUserTokens creates or replaces the provider token row for the user.
func (s *PostgresSessionStore) StoreUserTokens(ctx context.Context, userID string, tokens *meta.TokenSet) error {
	if userID == "" {
		return fmt.Errorf("postgres store: user id is empty")
	}
	if tokens == nil {
		return fmt.Errorf("postgres store: token set is nil")
	}
	query := fmt.Sprintf(`INSERT INTO %s (user_id, access_token, refresh_token, expires_in, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_in = EXCLUDED.expires_in,
			updated_at = EXCLUDED.updated_at`, s.tokenTable())
	_, err := s.db.ExecContext(ctx, query,
		userID, tokens.AccessToken, nullString(tokens.RefreshToken), tokens.ExpiresIn, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("postgres store: store tokens: %w", err)
	}
	return nil
}

// GetUserSession fetches a session row, failing with ErrSessionNotFound.
func (s *PostgresSessionStore) GetUserSession(ctx context.Context, userID string) (*session.UserSession, error) {
	query := fmt.Sprintf(`SELECT user_id, email, name, provider_user_id, access_token, refresh_token, token_expiration, created_at, last_used
		FROM %s WHERE user_id = $1`, s.sessionTable())

	var (
		sess            session.UserSession
		email           sql.NullString
		name            sql.NullString
		refreshToken    sql.NullString
		tokenExpiration sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&sess.UserID, &email, &name, &sess.ProviderUserID, &sess.AccessToken,
		&refreshToken, &tokenExpiration, &sess.CreatedAt, &sess.LastUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres store: get session: %w", err)
	}

	sess.Email = email.String
	sess.Name = name.String
	sess.RefreshToken = refreshToken.String
	if tokenExpiration.Valid {
		t := tokenExpiration.Time
		sess.TokenExpiration = &t
	}
	return &sess, nil
}

// TouchUserSession updates the session's last-used timestamp.
func (s *PostgresSessionStore) TouchUserSession(ctx context.Context, userID string, at time.Time) error {
	query := fmt.Sprintf("UPDATE %s SET last_used = $2 WHERE user_id = $1", s.sessionTable())
	result, err := s.db.ExecContext(ctx, query, userID, at)
	if err != nil {
		return fmt.Errorf("postgres store: touch session: %w", err)
	}
	if affected, errRows := result.RowsAffected(); errRows == nil && affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteUserSession removes the session and token rows for the user.
func (s *PostgresSessionStore) DeleteUserSession(ctx context.Context, userID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", s.sessionTable())
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("postgres store: delete session: %w", err)
	}
	query = fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", s.tokenTable())
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("postgres store: delete tokens: %w", err)
	}
	return nil
}

func (s *PostgresSessionStore) sessionTable() string {
	return s.qualifiedTable(s.cfg.SessionTable)
}

func (s *PostgresSessionStore) tokenTable() string {
	return s.qualifiedTable(s.cfg.TokenTable)
}

func (s *PostgresSessionStore) qualifiedTable(table string) string {
	if schema := strings.TrimSpace(s.cfg.Schema); schema != "" {
		return quoteIdentifier(schema) + "." + quoteIdentifier(table)
	}
	return quoteIdentifier(table)
}

func quoteIdentifier(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
