// Package session defines the first-party user session model and the signed
// session token issuer.
package session

import "time"

// UserSession is the authoritative record of an authenticated user. It is
// created on a successful OAuth callback, keyed by the deterministically
// derived user ID, and updated (LastUsed, token fields) on subsequent use.
type UserSession struct {
	UserID          string     `json:"userId"`
	Email           string     `json:"email,omitempty"`
	Name            string     `json:"name,omitempty"`
	ProviderUserID  string     `json:"providerUserId"`
	AccessToken     string     `json:"accessToken"`
	RefreshToken    string     `json:"refreshToken,omitempty"`
	TokenExpiration *time.Time `json:"tokenExpiration,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastUsed        time.Time  `json:"lastUsed"`
}

// DeriveUserID maps a provider identity onto a stable first-party user ID.
// The same provider account always yields the same key, which makes
// re-authentication idempotent: a later login simply overwrites the session
// row rather than creating a new user.
func DeriveUserID(provider, providerUserID string) string {
	return provider + "_" + providerUserID
}
