package config

import (
	"os"
	"time"
)

const (
	defaultListenAddr = ":8080"
	defaultTokenTTL   = 24 * time.Hour

	// Development fallback only; set AUTH_SECRET in any real deployment.
	defaultAuthSecret = "hellobooks-dev-secret"
)

// APIConfig holds the HTTP server settings.
type APIConfig struct {
	ListenAddr string
	AuthSecret []byte
	TokenTTL   time.Duration
}

// LoadAPIConfig reads the server settings from the environment,
// falling back to development defaults.
func LoadAPIConfig() APIConfig {
	cfg := APIConfig{
		ListenAddr: defaultListenAddr,
		AuthSecret: []byte(defaultAuthSecret),
		TokenTTL:   defaultTokenTTL,
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		cfg.AuthSecret = []byte(secret)
	}

	if ttl := os.Getenv("AUTH_TOKEN_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			cfg.TokenTTL = parsed
		}
	}

	return cfg
}
