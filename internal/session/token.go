package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failures are split so callers can distinguish "log in again"
// from "tampering detected".
var (
	ErrTokenExpired = errors.New("session token expired")
	ErrTokenInvalid = errors.New("session token invalid")
)

// Issuer mints and verifies signed session tokens. The signing key is
// process-wide configuration, loaded once at startup and never mutated.
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewIssuer creates an Issuer signing with the given key; minted tokens
// expire after ttl.
func NewIssuer(signingKey string, ttl time.Duration) *Issuer {
	return &Issuer{
		key: []byte(signingKey),
		ttl: ttl,
		now: time.Now,
	}
}

// Mint produces a signed token embedding the user ID and an absolute
// expiration ttl from now.
func (i *Issuer) Mint(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("session token: user id is empty")
	}

	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("session token: signing failed: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiration and returns the embedded
// user ID. Expired tokens fail with ErrTokenExpired; malformed or tampered
// tokens fail with ErrTokenInvalid.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.key, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
