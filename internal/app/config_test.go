package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/internal/tokens"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.False(t, cfg.Monitoring.Prometheus.Enabled)
	require.True(t, cfg.Monitoring.Health.Enabled)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "accounts.example.com", cfg.Auth.JWT.Issuer)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 1440*time.Hour, cfg.Auth.Session.RefreshTTL)
	require.Equal(t, 64, cfg.Auth.Session.RefreshLength)
	require.Equal(t, 12, cfg.Auth.Local.BcryptCost)
	require.Equal(t, "lifecycle-secret", cfg.Auth.Tokens.Secret)
	require.Equal(t, 2*time.Hour, cfg.Auth.Tokens.TTL)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, "no-reply@example.com", cfg.Email.SMTP.From)
	require.Equal(t, 15*time.Second, cfg.Email.SMTP.Timeout)

	require.Equal(t, "https://accounts.example.com", cfg.Links.BaseURL)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/accountd.sqlite", cfg.Database.Path)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 720*time.Hour, cfg.Auth.Session.RefreshTTL)
	require.Equal(t, 10, cfg.Auth.Local.BcryptCost)
	require.Equal(t, time.Hour, cfg.Auth.Tokens.TTL)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "http://localhost:8000", cfg.Links.BaseURL)
}

func TestAuthConfigAdapters(t *testing.T) {
	cfg := Config{
		Auth: AuthConfig{
			JWT: JWTSettings{
				Secret: "jwt-secret",
				Issuer: "accountd",
				TTL:    45 * time.Minute,
			},
			Session: SessionSettings{
				RefreshTTL:    72 * time.Hour,
				RefreshLength: 32,
			},
			Tokens: TokenSettings{
				TTL: 90 * time.Minute,
			},
		},
	}

	jwtCfg := cfg.Auth.JWTServiceConfig()
	require.Equal(t, auth.JWTConfig{
		Secret:         "jwt-secret",
		Issuer:         "accountd",
		AccessTokenTTL: 45 * time.Minute,
	}, jwtCfg)

	sessionCfg := cfg.Auth.SessionServiceConfig()
	require.Equal(t, auth.SessionConfig{
		RefreshTokenTTL: 72 * time.Hour,
		RefreshLength:   32,
	}, sessionCfg)

	// The lifecycle codec shares the JWT secret when no dedicated one is set.
	codecCfg := cfg.Auth.TokenCodecConfig()
	require.Equal(t, tokens.Config{
		Secret: "jwt-secret",
		Issuer: "accountd",
		TTL:    90 * time.Minute,
	}, codecCfg)

	cfg.Auth.Tokens.Secret = "dedicated"
	require.Equal(t, "dedicated", cfg.Auth.TokenCodecConfig().Secret)
}

func TestAuthConfigAdapterFallbacks(t *testing.T) {
	cfg := Config{}

	require.Equal(t, auth.DefaultAccessTokenTTL, cfg.Auth.JWTServiceConfig().AccessTokenTTL)
	require.Equal(t, auth.DefaultRefreshTokenTTL, cfg.Auth.SessionServiceConfig().RefreshTokenTTL)
	require.Equal(t, 48, cfg.Auth.SessionServiceConfig().RefreshLength)
	require.Equal(t, tokens.DefaultTTL, cfg.Auth.TokenCodecConfig().TTL)
}
