// Package meta implements the OAuth client for Meta's authorization code
// flow: building the authorization URL, exchanging codes for tokens, and
// fetching the authenticated user's identity from the Graph API.
package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coyotiv/meta-auth/internal/config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// defaultGraphBaseURL is the Graph API root used for identity lookups and
// long-lived token exchange.
const defaultGraphBaseURL = "https://graph.facebook.com/v18.0"

// Client encapsulates the HTTP helpers for Meta's OAuth flow.
type Client struct {
	conf         *oauth2.Config
	httpClient   *http.Client
	graphBaseURL string
}

// NewClient constructs a Meta OAuth client from the loaded configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		conf: &oauth2.Config{
			ClientID:     cfg.Meta.ClientID,
			ClientSecret: cfg.Meta.ClientSecret,
			RedirectURL:  cfg.Meta.RedirectURI,
			Scopes:       cfg.Meta.Scopes,
			Endpoint:     endpoints.Facebook,
		},
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		graphBaseURL: defaultGraphBaseURL,
	}
}

// AuthorizationURL builds the provider authorization URL embedding the given
// CSRF state token. The provider echoes the state back unmodified on redirect.
func (c *Client) AuthorizationURL(state string) string {
	return c.conf.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for access and refresh tokens.
// Provider rejections and network failures surface as *ExchangeError.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenSet, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &ExchangeError{Err: errors.New("authorization code is empty")}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.conf.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			log.Debugf("meta token exchange rejected: status=%d body=%s", retrieveErr.Response.StatusCode, string(retrieveErr.Body))
			return nil, &ExchangeError{
				StatusCode: retrieveErr.Response.StatusCode,
				Body:       strings.TrimSpace(string(retrieveErr.Body)),
				Err:        err,
			}
		}
		return nil, &ExchangeError{Err: err}
	}
	if token.AccessToken == "" {
		return nil, &ExchangeError{Err: errors.New("missing access token in response")}
	}

	set := &TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		set.ExpiresIn = int64(time.Until(token.Expiry).Round(time.Second).Seconds())
	}
	return set, nil
}

// FetchIdentity retrieves the account identity for the provided access token.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*UserIdentity, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, &IdentityFetchError{Err: errors.New("access token is empty")}
	}

	endpoint := c.graphBaseURL + "/me?fields=id,name,email"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &IdentityFetchError{Err: fmt.Errorf("create request failed: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &IdentityFetchError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &IdentityFetchError{Err: fmt.Errorf("read response failed: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		log.Debugf("meta identity fetch failed: status=%d body=%s", resp.StatusCode, string(body))
		return nil, &IdentityFetchError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var identity UserIdentity
	if err = json.Unmarshal(body, &identity); err != nil {
		return nil, &IdentityFetchError{Err: fmt.Errorf("decode response failed: %w", err)}
	}
	if identity.ID == "" {
		return nil, &IdentityFetchError{Err: errors.New("missing user id in response")}
	}
	return &identity, nil
}

// ExchangeLongLivedToken trades a short-lived user access token for Meta's
// long-lived variant via the fb_exchange_token grant. Callers treat failure
// as non-fatal; the short-lived token remains usable.
func (c *Client) ExchangeLongLivedToken(ctx context.Context, accessToken string) (*TokenSet, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, &ExchangeError{Err: errors.New("access token is empty")}
	}

	values := url.Values{}
	values.Set("grant_type", "fb_exchange_token")
	values.Set("client_id", c.conf.ClientID)
	values.Set("client_secret", c.conf.ClientSecret)
	values.Set("fb_exchange_token", accessToken)
	endpoint := c.graphBaseURL + "/oauth/access_token?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("create request failed: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("read response failed: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		log.Debugf("meta long-lived token exchange failed: status=%d body=%s", resp.StatusCode, string(body))
		return nil, &ExchangeError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var set TokenSet
	if err = json.Unmarshal(body, &set); err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("decode response failed: %w", err)}
	}
	if set.AccessToken == "" {
		return nil, &ExchangeError{Err: errors.New("missing access token in response")}
	}
	return &set, nil
}
