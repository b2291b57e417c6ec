package app

import (
	"strings"

	"github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/internal/tokens"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// SessionServiceConfig converts AuthConfig into SessionService parameters.
func (c AuthConfig) SessionServiceConfig() auth.SessionConfig {
	ttl := c.Session.RefreshTTL
	if ttl <= 0 {
		ttl = auth.DefaultRefreshTokenTTL
	}

	length := c.Session.RefreshLength
	if length <= 0 {
		length = 48
	}

	return auth.SessionConfig{
		RefreshTokenTTL: ttl,
		RefreshLength:   length,
	}
}

// TokenCodecConfig converts AuthConfig into lifecycle token codec parameters.
// The codec signs the activation and recovery links sent by email; it shares
// the JWT secret unless a dedicated one is configured.
func (c AuthConfig) TokenCodecConfig() tokens.Config {
	secret := strings.TrimSpace(c.Tokens.Secret)
	if secret == "" {
		secret = strings.TrimSpace(c.JWT.Secret)
	}

	ttl := c.Tokens.TTL
	if ttl <= 0 {
		ttl = tokens.DefaultTTL
	}

	return tokens.Config{
		Secret: secret,
		Issuer: c.JWT.Issuer,
		TTL:    ttl,
	}
}
