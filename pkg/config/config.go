// Package config loads settings from the environment and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-training/deezer-connect/pkg/deezer"
	"github.com/go-training/deezer-connect/pkg/store"

	"github.com/caarlos0/env/v11"
	"golang.org/x/oauth2"
)

// Config holds the settings shared by the binaries.
type Config struct {
	AppID          string        `env:"DEEZER_APP_ID"`
	Secret         string        `env:"DEEZER_SECRET"`
	Perms          []string      `env:"DEEZER_PERMS"            envSeparator:","`
	AuthURL        string        `env:"DEEZER_AUTH_URL"`
	TokenURL       string        `env:"DEEZER_TOKEN_URL"`
	RequestTimeout time.Duration `env:"DEEZER_REQUEST_TIMEOUT"  envDefault:"30s"`

	Addr      string        `env:"CONNECT_ADDR"       envDefault:":8095"`
	PublicURL string        `env:"CONNECT_PUBLIC_URL"`
	LoginTTL  time.Duration `env:"CONNECT_LOGIN_TTL"  envDefault:"10m"`
	Transport string        `env:"MCP_TRANSPORT"      envDefault:"http"`
	// MCPToken, when set, must be sent as a bearer token to reach /mcp.
	MCPToken string `env:"MCP_TOKEN"`

	LogLevel string `env:"LOG_LEVEL"`

	StoreType     string `env:"STORE_TYPE"     envDefault:"memory"`
	RedisAddr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"       envDefault:"0"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.Perms = trimCSV(cfg.Perms)
	return cfg, nil
}

// BindFlags registers flags on fs that override the loaded values.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.AppID, "app_id", c.AppID, "Deezer application ID")
	fs.StringVar(&c.Secret, "secret", c.Secret, "Deezer application secret")
	fs.Func("perms", "comma separated Deezer permissions (default basic_access)", func(s string) error {
		c.Perms = trimCSV(strings.Split(s, ","))
		return nil
	})
	fs.StringVar(&c.AuthURL, "auth-url", c.AuthURL, "override the Deezer login endpoint")
	fs.StringVar(&c.TokenURL, "token-url", c.TokenURL, "override the Deezer access token endpoint")
	fs.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "timeout for calls to Deezer")
	fs.StringVar(&c.Addr, "addr", c.Addr, "address to listen on")
	fs.StringVar(&c.PublicURL, "public-url", c.PublicURL, "externally reachable base URL (default http://localhost<addr>)")
	fs.DurationVar(&c.LoginTTL, "login-ttl", c.LoginTTL, "how long a login redirect stays valid")
	fs.StringVar(&c.Transport, "transport", c.Transport, "MCP transport: stdio or http")
	fs.StringVar(&c.MCPToken, "mcp-token", c.MCPToken, "bearer token required on /mcp (empty disables the check)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (DEBUG, INFO, WARN, ERROR). Defaults to DEBUG in development, INFO in production")
	fs.StringVar(&c.StoreType, "store", c.StoreType, "Store type: memory or redis")
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "Redis address (only used when store=redis)")
	fs.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password (only used when store=redis)")
	fs.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database (only used when store=redis)")
}

// Validate checks the settings needed to exchange codes.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.AppID) == "" {
		errs = append(errs, errors.New("app_id is required"))
	}
	if c.Secret == "" {
		errs = append(errs, errors.New("secret is required"))
	}
	if c.LoginTTL <= 0 {
		errs = append(errs, fmt.Errorf("login ttl must be positive, got %s", c.LoginTTL))
	}
	switch c.Transport {
	case "stdio", "http":
	default:
		errs = append(errs, fmt.Errorf("invalid transport %q", c.Transport))
	}
	return errors.Join(errs...)
}

// DeezerAppID returns the configured application ID. Numeric values are
// kept as integers.
func (c Config) DeezerAppID() deezer.AppID {
	id := strings.TrimSpace(c.AppID)
	if id == "" {
		return deezer.AppID{}
	}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return deezer.IntAppID(n)
	}
	return deezer.StringAppID(id)
}

// Permissions returns the configured permissions, or nil so that the
// Deezer default applies.
func (c Config) Permissions() []deezer.Permission {
	if len(c.Perms) == 0 {
		return nil
	}
	return deezer.ParsePermissions(c.Perms)
}

// DeezerClient builds a client for the configured endpoints.
func (c Config) DeezerClient() *deezer.Client {
	return deezer.NewClient(deezer.Config{
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.AuthURL,
			TokenURL: c.TokenURL,
		},
		HTTPClient: &http.Client{Timeout: c.RequestTimeout},
	})
}

// BaseURL returns the public base URL without a trailing slash.
func (c Config) BaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}
	addr := c.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// StoreConfig returns the login store configuration.
func (c Config) StoreConfig() store.Config {
	return store.Config{
		Type: store.ParseStoreType(c.StoreType),
		Redis: store.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
	}
}

// trimCSV removes empty entries from a string slice.
func trimCSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
