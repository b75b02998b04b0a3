package authflow

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coyotiv/meta-auth/internal/api/middleware"
	"github.com/coyotiv/meta-auth/internal/auth/meta"
	"github.com/coyotiv/meta-auth/internal/session"
	"github.com/coyotiv/meta-auth/internal/util"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// GetCallback completes a login attempt. The stages run strictly in order and
// each failure is terminal: provider error check, parameter presence, CSRF
// state validation, code exchange, identity fetch, session persistence, and
// finally session token issuance with cookie rotation.
func (h *Handler) GetCallback(c *gin.Context) {
	query := c.Request.URL.Query()

	if errParam := strings.TrimSpace(query.Get("error")); errParam != "" {
		log.Warnf("oauth authorization failed: %s", errParam)
		respondError(c, http.StatusBadRequest, "oauth_authorization_failed", "OAuth authorization failed")
		return
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		respondError(c, http.StatusBadRequest, "missing_parameter", "Missing authorization code or state parameter")
		return
	}

	cookies := util.ParseCookies(c.GetHeader("Cookie"))
	stateCookie := cookies[stateCookieName]
	if stateCookie == "" || subtle.ConstantTimeCompare([]byte(stateCookie), []byte(state)) != 1 {
		log.Warnf("oauth state mismatch for host %s", c.Request.Host)
		respondError(c, http.StatusBadRequest, "csrf_mismatch", "Invalid state parameter - possible CSRF attack")
		return
	}

	// The state token is single-use: once the CSRF check has consumed it the
	// cookie is cleared on every outcome, success or failure.
	h.clearStateCookie(c)

	ctx := c.Request.Context()

	tokens, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		log.Errorf("code exchange failed: %v", err)
		respondError(c, http.StatusInternalServerError, "exchange_failed", "Authentication failed")
		return
	}

	identity, err := h.provider.FetchIdentity(ctx, tokens.AccessToken)
	if err != nil {
		log.Errorf("identity fetch failed: %v", err)
		respondError(c, http.StatusInternalServerError, "identity_fetch_failed", "Authentication failed")
		return
	}

	// Trade up to a long-lived token when the provider allows it. The
	// short-lived token remains valid, so failure here is not fatal.
	if longLived, errLL := h.provider.ExchangeLongLivedToken(ctx, tokens.AccessToken); errLL == nil && longLived != nil {
		tokens = longLived
	} else if errLL != nil {
		log.Debugf("long-lived token exchange skipped: %v", errLL)
	}

	userID := session.DeriveUserID(meta.Provider, identity.ID)
	now := time.Now().UTC()
	sess := &session.UserSession{
		UserID:         userID,
		Email:          identity.Email,
		Name:           identity.Name,
		ProviderUserID: identity.ID,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
		CreatedAt:      now,
		LastUsed:       now,
	}
	if tokens.ExpiresIn > 0 {
		expiration := now.Add(time.Duration(tokens.ExpiresIn) * time.Second)
		sess.TokenExpiration = &expiration
	}

	// Two related writes; the session row is authoritative and goes first.
	if err = h.sessions.StoreUserSession(ctx, sess); err != nil {
		log.Errorf("failed to store session for %s: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "store_failed", "Authentication failed")
		return
	}
	if err = h.sessions.StoreUserTokens(ctx, userID, tokens); err != nil {
		log.Errorf("failed to store tokens for %s: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "store_failed", "Authentication failed")
		return
	}

	sessionToken, err := h.issuer.Mint(userID)
	if err != nil {
		log.Errorf("failed to mint session token for %s: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Authentication failed")
		return
	}

	h.setFlowCookie(c, middleware.SessionCookieName, sessionToken, h.cfg.Session.TokenTTLSeconds)

	log.WithField("user_id", userID).Info("session issued")

	redirect, err := url.Parse(h.cfg.DashboardURL)
	if err != nil {
		log.Errorf("invalid dashboard url %q: %v", h.cfg.DashboardURL, err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Authentication failed")
		return
	}
	values := redirect.Query()
	values.Set("token", sessionToken)
	redirect.RawQuery = values.Encode()

	c.Redirect(http.StatusFound, redirect.String())
}
