// Package middleware provides Gin middleware for authenticating requests with
// first-party session tokens.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coyotiv/meta-auth/internal/session"
	"github.com/coyotiv/meta-auth/internal/store"
	"github.com/coyotiv/meta-auth/internal/util"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// principalKey is the Gin context key holding the authenticated session.
const principalKey = "__session_principal__"

// SessionCookieName is the cookie carrying the first-party session token.
const SessionCookieName = "session_token"

// SessionAuth returns middleware that authenticates requests using a session
// token taken from the Authorization header, the session cookie, or the
// "token" query parameter, in that order. On success the session row is
// loaded, its last-used timestamp refreshed, and the session exposed via
// SessionFromContext.
func SessionAuth(issuer *session.Issuer, sessions store.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "token_invalid",
				"message": "Missing session token",
			})
			return
		}

		userID, err := issuer.Verify(token)
		if err != nil {
			code := "token_invalid"
			message := "Invalid session token"
			if errors.Is(err, session.ErrTokenExpired) {
				code = "token_expired"
				message = "Session expired, please log in again"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   code,
				"message": message,
			})
			return
		}

		sess, err := sessions.GetUserSession(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, store.ErrSessionNotFound) {
				log.Errorf("session lookup failed for %s: %v", userID, err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "token_invalid",
				"message": "Session no longer exists, please log in again",
			})
			return
		}

		// Best effort; a failed touch must not block an authenticated request.
		if err = sessions.TouchUserSession(c.Request.Context(), userID, time.Now().UTC()); err != nil {
			log.Warnf("failed to touch session %s: %v", userID, err)
		}

		c.Set(principalKey, sess)
		c.Next()
	}
}

// SessionFromContext returns the authenticated session attached by
// SessionAuth, or nil when the request is unauthenticated.
func SessionFromContext(c *gin.Context) *session.UserSession {
	if c == nil {
		return nil
	}
	if value, exists := c.Get(principalKey); exists {
		if sess, ok := value.(*session.UserSession); ok {
			return sess
		}
	}
	return nil
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" {
			return token
		}
	}
	cookies := util.ParseCookies(c.GetHeader("Cookie"))
	if token := cookies[SessionCookieName]; token != "" {
		return token
	}
	return strings.TrimSpace(c.Query("token"))
}
