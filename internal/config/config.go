package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	OIDCIssuer      string `env:"OIDC_ISSUER"`
	OIDCClientID    string `env:"OIDC_CLIENT_ID"`
	OIDCRedirectURL string `env:"OIDC_REDIRECT_URL"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// SignedInUserCacheTTL bounds how stale a cached signed-in user
	// view may be before it is resolved from the store again.
	SignedInUserCacheTTL time.Duration `env:"SIGNED_IN_USER_CACHE_TTL" envDefault:"5s"`

	AutoAssignOrg     bool   `env:"AUTO_ASSIGN_ORG" envDefault:"true"`
	AutoAssignOrgName string `env:"AUTO_ASSIGN_ORG_NAME" envDefault:"Main Org."`
	AutoAssignOrgRole string `env:"AUTO_ASSIGN_ORG_ROLE" envDefault:"Viewer"`
}

func Load() (Config, error) {
	return env.ParseAs[Config]()
}
