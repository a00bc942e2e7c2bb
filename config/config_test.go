package config_test

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-blog/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(vars map[string]string) (*config.Config, error) {
	return config.LoadWith(env.Options{Environment: vars})
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(map[string]string{"SECRET_KEY": "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:blog.db?cache=shared", cfg.Database.URL)
	assert.False(t, cfg.Database.Debug)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(map[string]string{
		"SECRET_KEY":       "s3cret",
		"ALGORITHM":        "HS512",
		"ACCESS_TOKEN_TTL": "1h",
		"TOKEN_ISSUER":     "go-blog",
		"BCRYPT_COST":      "10",
		"DATABASE_DRIVER":  "postgres",
		"DATABASE_URL":     "postgres://u:p@localhost/blog",
		"DATABASE_DEBUG":   "true",
		"HTTP_ADDR":        "127.0.0.1:9000",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Database.Debug)

	tc := cfg.Auth.TokenConfig()
	assert.Equal(t, []byte("s3cret"), tc.SigningKey)
	assert.Equal(t, "HS512", tc.Algorithm)
	assert.Equal(t, "go-blog", tc.Issuer)

	pc := cfg.Database.Persistence()
	assert.Equal(t, "postgres", pc.Driver)
	assert.Equal(t, "postgres://u:p@localhost/blog", pc.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"asymmetric algorithm", map[string]string{"SECRET_KEY": "k", "ALGORITHM": "RS256"}},
		{"zero ttl", map[string]string{"SECRET_KEY": "k", "ACCESS_TOKEN_TTL": "0s"}},
		{"bad ttl", map[string]string{"SECRET_KEY": "k", "ACCESS_TOKEN_TTL": "soon"}},
		{"bcrypt cost too low", map[string]string{"SECRET_KEY": "k", "BCRYPT_COST": "2"}},
		{"unknown driver", map[string]string{"SECRET_KEY": "k", "DATABASE_DRIVER": "mysql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.vars)
			assert.Error(t, err)
		})
	}
}

func TestConfig_Redacted(t *testing.T) {
	cfg, err := load(map[string]string{
		"SECRET_KEY":      "s3cret",
		"DATABASE_DRIVER": "postgres",
		"DATABASE_URL":    "postgres://u:p@localhost/blog",
	})
	require.NoError(t, err)

	safe := cfg.Redacted()
	assert.NotEqual(t, "s3cret", safe.Auth.SecretKey)
	assert.NotContains(t, safe.Database.URL, "u:p")

	assert.Equal(t, "s3cret", cfg.Auth.SecretKey)

	sqlite, err := load(map[string]string{"SECRET_KEY": "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "file:blog.db?cache=shared", sqlite.Redacted().Database.URL)
}
