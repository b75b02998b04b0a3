package meta

import "fmt"

// Provider is the identity prefix used when deriving first-party user IDs
// from Meta accounts.
const Provider = "meta"

// TokenSet holds the credentials returned by a code exchange. RefreshToken
// and ExpiresIn are optional; Meta's server-side flow typically omits the
// refresh token and relies on long-lived token exchange instead.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// UserIdentity is the provider-side identity fetched with an access token.
type UserIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ExchangeError reports a failed authorization code exchange. It carries the
// provider's status and error payload for diagnostics; callers must not echo
// it to end users.
type ExchangeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("meta: code exchange failed: %d %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("meta: code exchange failed: %v", e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// IdentityFetchError reports a failed user info lookup.
type IdentityFetchError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *IdentityFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("meta: identity fetch failed: %d %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("meta: identity fetch failed: %v", e.Err)
}

func (e *IdentityFetchError) Unwrap() error { return e.Err }
