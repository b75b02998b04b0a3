// Package config provides configuration management for the Meta auth service.
// It handles loading and parsing YAML configuration files, and provides
// structured access to application settings including server port, OAuth
// client credentials, session signing, and the session store backend.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default lifetimes for the two time-based invariants of the flow. The OAuth
// state cookie lives for ten minutes; a minted session lives for seven days.
const (
	DefaultStateTTLSeconds   = 600
	DefaultSessionTTLSeconds = 7 * 24 * 60 * 60
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int `yaml:"port" json:"port"`

	// Debug enables verbose logging and Gin debug mode.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile redirects logs from stdout to rotating files under LogDir.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogDir is the directory used for rotated log files. Defaults to "logs".
	LogDir string `yaml:"log-dir" json:"log-dir"`

	// DashboardURL is the redirect target after a successful callback. The
	// session token is appended as a "token" query parameter for clients that
	// cannot rely on cookies.
	DashboardURL string `yaml:"dashboard-url" json:"dashboard-url"`

	// ProductionHosts lists host suffixes that mark a deployment as
	// production-like; cookies issued for those hosts carry the Secure flag.
	ProductionHosts []string `yaml:"production-hosts" json:"production-hosts"`

	// Meta holds the OAuth client settings for the Meta provider.
	Meta MetaConfig `yaml:"meta" json:"meta"`

	// Session holds session token signing settings.
	Session SessionConfig `yaml:"session" json:"session"`

	// Store selects and configures the session store backend.
	Store StoreConfig `yaml:"store" json:"store"`
}

// MetaConfig holds the OAuth client settings for the Meta provider.
type MetaConfig struct {
	// ClientID is the Meta app's OAuth client identifier.
	ClientID string `yaml:"client-id" json:"client-id"`

	// ClientSecret is the Meta app's OAuth client secret. Prefer supplying it
	// through the META_CLIENT_SECRET environment variable.
	ClientSecret string `yaml:"client-secret" json:"client-secret"`

	// RedirectURI is the callback URL registered with the Meta app.
	RedirectURI string `yaml:"redirect-uri" json:"redirect-uri"`

	// Scopes lists the OAuth scopes requested during authorization.
	Scopes []string `yaml:"scopes" json:"scopes"`
}

// SessionConfig holds session token signing settings.
type SessionConfig struct {
	// SigningKey is the HMAC key used to sign session tokens. Prefer supplying
	// it through the SESSION_SIGNING_KEY environment variable.
	SigningKey string `yaml:"signing-key" json:"signing-key"`

	// TokenTTLSeconds is the session token lifetime. Defaults to seven days.
	TokenTTLSeconds int `yaml:"token-ttl-seconds,omitempty" json:"token-ttl-seconds,omitempty"`

	// StateTTLSeconds is the OAuth state cookie lifetime. Defaults to ten minutes.
	StateTTLSeconds int `yaml:"state-ttl-seconds,omitempty" json:"state-ttl-seconds,omitempty"`
}

// StoreConfig selects and configures the session store backend.
type StoreConfig struct {
	// Backend picks the session store implementation: "postgres" or "file".
	Backend string `yaml:"backend" json:"backend"`

	// PostgresDSN is the connection string for the postgres backend. Prefer
	// supplying it through the DATABASE_URL environment variable.
	PostgresDSN string `yaml:"postgres-dsn,omitempty" json:"postgres-dsn,omitempty"`

	// Schema optionally namespaces the postgres tables.
	Schema string `yaml:"schema,omitempty" json:"schema,omitempty"`

	// Dir is the base directory for the file backend. Defaults to "sessions".
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// LoadConfig reads the YAML configuration file, applies environment variable
// overrides for secrets, and fills in defaults. The returned Config is treated
// as immutable for the lifetime of the process.
func LoadConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("config: read %s failed: %w", configFile, err)
	}

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s failed: %w", configFile, err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err = cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("META_CLIENT_ID")); v != "" {
		c.Meta.ClientID = v
	}
	if v := strings.TrimSpace(os.Getenv("META_CLIENT_SECRET")); v != "" {
		c.Meta.ClientSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("META_REDIRECT_URI")); v != "" {
		c.Meta.RedirectURI = v
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_SIGNING_KEY")); v != "" {
		c.Session.SigningKey = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		c.Store.PostgresDSN = v
	}
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8317
	}
	if c.LogDir == "" {
		c.LogDir = "logs"
	}
	if c.DashboardURL == "" {
		c.DashboardURL = "/auth/dashboard"
	}
	if len(c.Meta.Scopes) == 0 {
		c.Meta.Scopes = []string{"email", "public_profile", "ads_read"}
	}
	if c.Session.TokenTTLSeconds <= 0 {
		c.Session.TokenTTLSeconds = DefaultSessionTTLSeconds
	}
	if c.Session.StateTTLSeconds <= 0 {
		c.Session.StateTTLSeconds = DefaultStateTTLSeconds
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.Store.Dir == "" {
		c.Store.Dir = "sessions"
	}
}

func (c *Config) validate() error {
	if c.Meta.ClientID == "" {
		return fmt.Errorf("config: meta client-id is required")
	}
	if c.Meta.ClientSecret == "" {
		return fmt.Errorf("config: meta client-secret is required (set META_CLIENT_SECRET)")
	}
	if c.Meta.RedirectURI == "" {
		return fmt.Errorf("config: meta redirect-uri is required")
	}
	if c.Session.SigningKey == "" {
		return fmt.Errorf("config: session signing-key is required (set SESSION_SIGNING_KEY)")
	}
	switch c.Store.Backend {
	case "postgres":
		if strings.TrimSpace(c.Store.PostgresDSN) == "" {
			return fmt.Errorf("config: postgres backend requires a DSN (set DATABASE_URL)")
		}
	case "file":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	return nil
}
