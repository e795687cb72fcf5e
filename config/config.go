// config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment after an optional .env file.
type Config struct {
	Port           int      `env:"PORT" envDefault:"5200"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ServiceToken   string   `env:"DASHBOARD_SERVICE_TOKEN"`

	// Fixtures are read over HTTP unless FIXTURE_SOURCE is r2 or dir.
	FixtureSource   string        `env:"FIXTURE_SOURCE" envDefault:"http"`
	FixtureBaseURL  string        `env:"FIXTURE_BASE_URL" envDefault:"http://localhost:5200/SLP/"`
	FixtureDir      string        `env:"FIXTURE_DIR" envDefault:"./fixtures/SLP"`
	FixtureManifest string        `env:"FIXTURE_MANIFEST"`
	FixtureTimeout  time.Duration `env:"FIXTURE_TIMEOUT" envDefault:"30s"`
	AssetCacheTTL   time.Duration `env:"ASSET_CACHE_TTL" envDefault:"5m"`

	PricePollInterval    time.Duration `env:"PRICE_POLL_INTERVAL" envDefault:"5m"`
	GuildRefreshInterval time.Duration `env:"GUILD_REFRESH_INTERVAL" envDefault:"10m"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"guildhall.db"`

	R2 R2Config

	OTelEndpoint string `env:"GUILDHALL_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"GUILDHALL_OTEL_ENABLED" envDefault:"true"`
}

// R2Config addresses a Cloudflare R2 (or any S3-compatible) bucket holding the fixtures.
type R2Config struct {
	AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	Bucket          string `env:"R2_BUCKET_NAME"`
	Prefix          string `env:"R2_PREFIX" envDefault:"SLP"`
	Endpoint        string `env:"R2_ENDPOINT"`
}

// EndpointURL returns the explicit endpoint or the account's R2 endpoint.
func (c R2Config) EndpointURL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

// Load reads envFiles (missing files are ignored) and parses the environment.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		// godotenv never overrides variables already set in the process.
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	switch c.FixtureSource {
	case "http":
		if strings.TrimSpace(c.FixtureBaseURL) == "" {
			return fmt.Errorf("FIXTURE_BASE_URL is required for http fixtures")
		}
	case "r2":
		if c.R2.Bucket == "" {
			return fmt.Errorf("R2_BUCKET_NAME is required for r2 fixtures")
		}
		if c.R2.Endpoint == "" && c.R2.AccountID == "" {
			return fmt.Errorf("CLOUDFLARE_ACCOUNT_ID or R2_ENDPOINT is required for r2 fixtures")
		}
	case "dir":
		if strings.TrimSpace(c.FixtureDir) == "" {
			return fmt.Errorf("FIXTURE_DIR is required for dir fixtures")
		}
	default:
		return fmt.Errorf("invalid FIXTURE_SOURCE %q: must be http, r2 or dir", c.FixtureSource)
	}

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: must be sqlite or postgres", c.DBDriver)
	}

	if c.AssetCacheTTL <= 0 {
		return fmt.Errorf("ASSET_CACHE_TTL must be positive")
	}
	if c.PricePollInterval <= 0 {
		return fmt.Errorf("PRICE_POLL_INTERVAL must be positive")
	}
	if c.GuildRefreshInterval <= 0 {
		return fmt.Errorf("GUILD_REFRESH_INTERVAL must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
