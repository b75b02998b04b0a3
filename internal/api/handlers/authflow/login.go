package authflow

import (
	"net/http"

	"github.com/coyotiv/meta-auth/internal/auth"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// GetLogin starts a login attempt: it generates a fresh CSRF state token,
// stores it in a short-lived cookie, and returns the provider authorization
// URL for the front end to redirect to.
func (h *Handler) GetLogin(c *gin.Context) {
	state, err := auth.GenerateState()
	if err != nil {
		log.Errorf("failed to generate oauth state: %v", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to generate authorization URL")
		return
	}

	h.setFlowCookie(c, stateCookieName, state, h.cfg.Session.StateTTLSeconds)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"authUrl": h.provider.AuthorizationURL(state),
		"message": "Redirect user to this URL to begin OAuth flow",
	})
}
