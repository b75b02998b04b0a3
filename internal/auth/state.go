// Package auth provides primitives shared by the OAuth login flow.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateState creates a cryptographically random CSRF state token for a
// login attempt. The token carries 256 bits of entropy, URL-safe base64
// encoded without padding so it travels cleanly in both cookies and query
// strings.
func GenerateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("state: failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
