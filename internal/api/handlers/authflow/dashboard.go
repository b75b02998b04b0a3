package authflow

import (
	"net/http"

	"github.com/coyotiv/meta-auth/internal/api/middleware"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// GetDashboard returns the authenticated user's profile. It only runs behind
// the session middleware, so a nil principal means the route was wired wrong.
func (h *Handler) GetDashboard(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		respondError(c, http.StatusUnauthorized, "token_invalid", "Missing session token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"userId":  sess.UserID,
		"email":   sess.Email,
		"name":    sess.Name,
	})
}

// PostLogout deletes the caller's session and expires the session cookie.
func (h *Handler) PostLogout(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		respondError(c, http.StatusUnauthorized, "token_invalid", "Missing session token")
		return
	}

	if err := h.sessions.DeleteUserSession(c.Request.Context(), sess.UserID); err != nil {
		log.Errorf("failed to delete session for %s: %v", sess.UserID, err)
		respondError(c, http.StatusInternalServerError, "store_failed", "Failed to log out")
		return
	}

	h.setFlowCookie(c, middleware.SessionCookieName, "", 0)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}
