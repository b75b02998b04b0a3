// Package authflow implements the OAuth login and callback flow controllers:
// CSRF state issuance, authorization-code exchange, session persistence, and
// session token issuance.
package authflow

import (
	"context"
	"net/http"

	"github.com/coyotiv/meta-auth/internal/auth/meta"
	"github.com/coyotiv/meta-auth/internal/config"
	"github.com/coyotiv/meta-auth/internal/session"
	"github.com/coyotiv/meta-auth/internal/store"
	"github.com/coyotiv/meta-auth/internal/util"
	"github.com/gin-gonic/gin"
)

// stateCookieName is the short-lived cookie binding an OAuth redirect to the
// browser session that initiated the login.
const stateCookieName = "oauth_state"

// Provider is the capability required from the OAuth provider client. Fakes
// implementing it stand in for Meta in tests.
type Provider interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*meta.TokenSet, error)
	FetchIdentity(ctx context.Context, accessToken string) (*meta.UserIdentity, error)
	ExchangeLongLivedToken(ctx context.Context, accessToken string) (*meta.TokenSet, error)
}

// Handler carries the collaborators of the login and callback flows. All
// fields are immutable after construction.
type Handler struct {
	cfg      *config.Config
	provider Provider
	issuer   *session.Issuer
	sessions store.SessionStore
}

// NewHandler creates the flow controller with its collaborators.
func NewHandler(cfg *config.Config, provider Provider, issuer *session.Issuer, sessions store.SessionStore) *Handler {
	return &Handler{
		cfg:      cfg,
		provider: provider,
		issuer:   issuer,
		sessions: sessions,
	}
}

// respondError emits the uniform error payload. Messages for provider or
// internal failures stay generic; client-caused errors get specific ones.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   code,
		"message": message,
	})
}

// MethodNotAllowed is the handler installed for requests reaching a known
// path with an unsupported method. It runs before any flow side effect.
func MethodNotAllowed(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
}

// setFlowCookie issues a flow cookie with the hardened attribute set used by
// both the state and session cookies. The Secure attribute is added only for
// production-like hosts so local development over plain HTTP keeps working.
func (h *Handler) setFlowCookie(c *gin.Context, name, value string, maxAge int) {
	cookie := util.SerializeCookie(name, value, util.CookieOptions{
		HTTPOnly: true,
		Secure:   util.IsProductionHost(c.Request.Host, h.cfg.ProductionHosts),
		SameSite: util.SameSiteLax,
		MaxAge:   maxAge,
		Path:     "/",
	})
	c.Writer.Header().Add("Set-Cookie", cookie)
}

// clearStateCookie expires the OAuth state cookie; the state token is
// single-use and consumed by the first callback attempt.
func (h *Handler) clearStateCookie(c *gin.Context) {
	h.setFlowCookie(c, stateCookieName, "", 0)
}
