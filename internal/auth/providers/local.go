package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charlesng35/accountd/internal/models"
	"github.com/charlesng35/accountd/internal/store"
	"github.com/charlesng35/accountd/pkg/crypto"
)

var (
	// ErrInvalidCredentials is returned when the supplied email/password pair is invalid.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrNotActivated signals that the identity has not confirmed its email yet.
	ErrNotActivated = errors.New("auth: account not activated")
)

// AuthenticateInput contains the credentials and client metadata for a login attempt.
type AuthenticateInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// LocalProvider implements email/password authentication against the identity store.
type LocalProvider struct {
	identities store.IdentityStore
}

// NewLocalProvider builds a provider backed by the supplied store.
func NewLocalProvider(identities store.IdentityStore) (*LocalProvider, error) {
	if identities == nil {
		return nil, errors.New("local provider: identity store is required")
	}

	return &LocalProvider{identities: identities}, nil
}

// Authenticate verifies the supplied credentials and returns the matching
// identity. Unknown emails and wrong passwords are indistinguishable to the
// caller; only an unactivated account gets its own error.
func (p *LocalProvider) Authenticate(ctx context.Context, input AuthenticateInput) (*models.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	identity, err := p.identities.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("local provider: query identity: %w", err)
	}

	if !crypto.VerifyPassword(identity.PasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}

	if !identity.Activated {
		return nil, ErrNotActivated
	}

	return identity, nil
}
