package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/persistence"
	"golang.org/x/crypto/bcrypt"
)

const redacted = "[redacted]"

// Config is the process configuration. It is read once at startup.
type Config struct {
	HTTP     HTTPConfig
	Auth     AuthConfig
	Database DatabaseConfig
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8000" json:"addr"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s" json:"shutdown_timeout"`
}

type AuthConfig struct {
	SecretKey  string        `env:"SECRET_KEY" json:"secret_key"`
	Algorithm  string        `env:"ALGORITHM" envDefault:"HS256" json:"algorithm"`
	TokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m" json:"token_ttl"`
	Issuer     string        `env:"TOKEN_ISSUER" json:"issuer,omitempty"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"12" json:"bcrypt_cost"`
}

type DatabaseConfig struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite" json:"driver"`
	URL    string `env:"DATABASE_URL" envDefault:"file:blog.db?cache=shared" json:"url"`
	Debug  bool   `env:"DATABASE_DEBUG" envDefault:"false" json:"debug"`
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	return LoadWith(env.Options{})
}

// LoadWith is Load with explicit parser options, tests pass Environment
func LoadWith(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	return validation.Errors{
		"http":     c.HTTP.Validate(),
		"auth":     c.Auth.Validate(),
		"database": c.Database.Validate(),
	}.Filter()
}

func (c HTTPConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
	)
}

func (c AuthConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SecretKey, validation.Required),
		validation.Field(&c.Algorithm, validation.Required, validation.In("HS256", "HS384", "HS512")),
		validation.Field(&c.TokenTTL, validation.By(positiveDuration)),
		validation.Field(&c.BcryptCost, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
	)
}

func (c DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(persistence.DriverSQLite, persistence.DriverPostgres)),
		validation.Field(&c.URL, validation.Required),
	)
}

// TokenConfig builds the signing configuration for blog.NewTokenService
func (c AuthConfig) TokenConfig() *blog.TokenConfig {
	return &blog.TokenConfig{
		SigningKey: []byte(c.SecretKey),
		Algorithm:  strings.ToUpper(c.Algorithm),
		TTL:        c.TokenTTL,
		Issuer:     c.Issuer,
	}
}

// Persistence builds the database options for persistence.Open
func (c DatabaseConfig) Persistence() persistence.Config {
	return persistence.Config{
		Driver: c.Driver,
		DSN:    c.URL,
		Debug:  c.Debug,
	}
}

// Redacted returns a copy safe to print
func (c Config) Redacted() Config {
	if c.Auth.SecretKey != "" {
		c.Auth.SecretKey = redacted
	}
	if c.Database.Driver == persistence.DriverPostgres && c.Database.URL != "" {
		c.Database.URL = redacted
	}
	return c
}

func positiveDuration(value any) error {
	d, _ := value.(time.Duration)
	if d <= 0 {
		return errors.New("must be a positive duration")
	}
	return nil
}
