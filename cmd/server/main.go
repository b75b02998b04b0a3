// Package main provides the entry point for the Meta OAuth authentication
// service: it loads configuration, selects the session store backend, and
// serves the login, callback, and session routes.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coyotiv/meta-auth/internal/api"
	"github.com/coyotiv/meta-auth/internal/api/handlers/authflow"
	"github.com/coyotiv/meta-auth/internal/auth/meta"
	"github.com/coyotiv/meta-auth/internal/config"
	"github.com/coyotiv/meta-auth/internal/logging"
	"github.com/coyotiv/meta-auth/internal/session"
	"github.com/coyotiv/meta-auth/internal/store"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to the configuration file")
	flag.Parse()

	// Missing .env is fine; real deployments inject environment directly.
	_ = godotenv.Load()

	logging.SetupBaseLogger()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config %s: %v", configPath, err)
	}

	if err = logging.ConfigureLogOutput(cfg.LoggingToFile, cfg.LogDir); err != nil {
		log.Warnf("failed to configure log output: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	sessions, cleanup, err := buildSessionStore(cfg)
	if err != nil {
		log.Fatalf("failed to initialize session store: %v", err)
	}
	defer cleanup()

	provider := meta.NewClient(cfg)
	issuer := session.NewIssuer(cfg.Session.SigningKey, time.Duration(cfg.Session.TokenTTLSeconds)*time.Second)
	flow := authflow.NewHandler(cfg, provider, issuer, sessions)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(cfg, flow, issuer, sessions)
	if err = server.Run(ctx); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func buildSessionStore(cfg *config.Config) (store.SessionStore, func(), error) {
	switch cfg.Store.Backend {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		pg, err := store.NewPostgresSessionStore(ctx, store.PostgresStoreConfig{
			DSN:    cfg.Store.PostgresDSN,
			Schema: cfg.Store.Schema,
		})
		if err != nil {
			return nil, nil, err
		}
		if err = pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		log.Info("using postgres session store")
		return pg, func() { pg.Close() }, nil
	default:
		fs, err := store.NewFileSessionStore(cfg.Store.Dir)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("using file session store in %s", cfg.Store.Dir)
		return fs, func() {}, nil
	}
}
