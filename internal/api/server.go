// Package api assembles the HTTP surface: routing, middleware, and server
// lifecycle.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coyotiv/meta-auth/internal/api/handlers/authflow"
	"github.com/coyotiv/meta-auth/internal/api/middleware"
	"github.com/coyotiv/meta-auth/internal/config"
	"github.com/coyotiv/meta-auth/internal/logging"
	"github.com/coyotiv/meta-auth/internal/session"
	"github.com/coyotiv/meta-auth/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Server owns the Gin engine and the underlying HTTP listener.
type Server struct {
	cfg        *config.Config
	engine     *gin.Engine
	httpServer *http.Server
}

// NewServer builds the router and wires the auth flow routes. The protected
// group sits behind the session middleware; login and callback stay public.
func NewServer(cfg *config.Config, flow *authflow.Handler, issuer *session.Issuer, sessions store.SessionStore) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logging.GinLogrusLogger(), logging.GinLogrusRecovery())
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(authflow.MethodNotAllowed)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.GET("/auth/login", flow.GetLogin)
	engine.GET("/auth/callback", flow.GetCallback)

	protected := engine.Group("/auth", middleware.SessionAuth(issuer, sessions))
	protected.GET("/dashboard", flow.GetDashboard)
	protected.POST("/logout", flow.PostLogout)

	return &Server{
		cfg:    cfg,
		engine: engine,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests with a
// short grace period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("auth service listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down auth service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}
