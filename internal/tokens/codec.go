package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL defines the fallback validity period for issued tokens.
const DefaultTTL = time.Hour

// Purpose discriminates the claim variants a token can carry.
type Purpose string

const (
	// PurposeActivation marks tokens carrying a pending registration.
	PurposeActivation Purpose = "activation"
	// PurposeRecovery marks tokens carrying a password-reset capability.
	PurposeRecovery Purpose = "recovery"
)

// Verification failure reasons. The codec reports precisely why a token was
// rejected; user-facing layers are expected to collapse these into a generic
// message.
var (
	ErrMalformed    = errors.New("token: malformed")
	ErrBadSignature = errors.New("token: bad signature")
	ErrExpired      = errors.New("token: expired")
)

// ActivationClaims is the pending registration carried inside an activation
// token. The record is created in the store only when the token is redeemed.
type ActivationClaims struct {
	Name         string
	Email        string
	PasswordHash string
}

// RecoveryClaims binds a reset link to the recovery id current at issue time.
type RecoveryClaims struct {
	RecoveryID string
}

// ClaimSet is the decoded, verified content of a token. Exactly one of
// Activation or Recovery is set, matching Purpose.
type ClaimSet struct {
	Purpose    Purpose
	Activation *ActivationClaims
	Recovery   *RecoveryClaims
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Config bundles the configuration required to build a Codec.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Clock  func() time.Time
}

// Codec signs claim sets into opaque token strings and verifies them back.
// Both directions are pure: no store access, no side effects beyond signing.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec constructs a Codec when provided with the required configuration.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: secret must be provided")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &Codec{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    now,
	}, nil
}

// TTL reports the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

type wireClaims struct {
	Purpose      string `json:"purpose"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"pwh,omitempty"`
	RecoveryID   string `json:"rid,omitempty"`
	jwt.RegisteredClaims
}

// IssueActivation signs a pending registration into an activation token.
func (c *Codec) IssueActivation(claims ActivationClaims) (string, error) {
	if claims.Email == "" || claims.PasswordHash == "" {
		return "", errors.New("token: activation claims require email and password hash")
	}

	return c.sign(wireClaims{
		Purpose:      string(PurposeActivation),
		Name:         claims.Name,
		Email:        claims.Email,
		PasswordHash: claims.PasswordHash,
	})
}

// IssueRecovery signs a recovery id into a password-reset token.
func (c *Codec) IssueRecovery(claims RecoveryClaims) (string, error) {
	if claims.RecoveryID == "" {
		return "", errors.New("token: recovery claims require a recovery id")
	}

	return c.sign(wireClaims{
		Purpose:    string(PurposeRecovery),
		RecoveryID: claims.RecoveryID,
	})
}

func (c *Codec) sign(claims wireClaims) (string, error) {
	now := c.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}

	return signed, nil
}

// Verify checks signature integrity and expiry, returning the typed claim set
// or one of ErrMalformed, ErrBadSignature, ErrExpired.
func (c *Codec) Verify(tokenString string) (*ClaimSet, error) {
	if tokenString == "" {
		return nil, ErrMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)

	var claims wireClaims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformed
		}
	}

	if c.issuer != "" && claims.Issuer != c.issuer {
		return nil, ErrBadSignature
	}

	set := &ClaimSet{Purpose: Purpose(claims.Purpose)}
	if claims.IssuedAt != nil {
		set.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		set.ExpiresAt = claims.ExpiresAt.Time
	}

	switch set.Purpose {
	case PurposeActivation:
		if claims.Email == "" || claims.PasswordHash == "" {
			return nil, ErrMalformed
		}
		set.Activation = &ActivationClaims{
			Name:         claims.Name,
			Email:        claims.Email,
			PasswordHash: claims.PasswordHash,
		}
	case PurposeRecovery:
		if claims.RecoveryID == "" {
			return nil, ErrMalformed
		}
		set.Recovery = &RecoveryClaims{RecoveryID: claims.RecoveryID}
	default:
		return nil, ErrMalformed
	}

	return set, nil
}
