package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/charlesng35/accountd/internal/models"
	"github.com/charlesng35/accountd/internal/store"
	"github.com/charlesng35/accountd/internal/tokens"
	"github.com/charlesng35/accountd/pkg/crypto"
	"github.com/charlesng35/accountd/pkg/mail"
)

// RecoveryOption customises the RecoveryService.
type RecoveryOption func(*RecoveryService)

// WithRecoveryBaseURL sets the base URL used in emailed reset links.
func WithRecoveryBaseURL(url string) RecoveryOption {
	return func(s *RecoveryService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithRecoveryBcryptCost overrides the password hashing work factor.
func WithRecoveryBcryptCost(cost int) RecoveryOption {
	return func(s *RecoveryService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// RecoveryService drives password recovery: emailed reset link, password
// change, and recovery-id rotation. Reset links are single-use because the
// token is bound to the recovery id current at issue time; once a completed
// reset rotates it, the old link no longer resolves.
type RecoveryService struct {
	identities store.IdentityStore
	codec      *tokens.Codec
	mailer     mail.Mailer
	baseURL    string
	bcryptCost int
}

// NewRecoveryService constructs the workflow with its collaborators.
func NewRecoveryService(identities store.IdentityStore, codec *tokens.Codec, mailer mail.Mailer, opts ...RecoveryOption) (*RecoveryService, error) {
	if identities == nil {
		return nil, errors.New("recovery service: identity store is required")
	}
	if codec == nil {
		return nil, errors.New("recovery service: token codec is required")
	}

	service := &RecoveryService{
		identities: identities,
		codec:      codec,
		mailer:     mailer,
		bcryptCost: bcrypt.DefaultCost,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// ResetRequestReceipt reports the outcome of a reset request. Dispatched is
// internal bookkeeping only; the caller's user-visible wording must be the
// same whether or not the account exists.
type ResetRequestReceipt struct {
	Email      string
	Token      string
	Link       string
	Dispatched bool
}

// RequestReset mails a reset link when the email belongs to an identity. An
// unknown email yields the same success-shaped receipt with no token issued
// and no mail sent, so the outcome never reveals account existence.
func (s *RecoveryService) RequestReset(ctx context.Context, email string) (*ResetRequestReceipt, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, &ValidationError{Messages: []string{msgFieldsRequired}}
	}

	identity, err := s.identities.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return &ResetRequestReceipt{Email: email}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recovery service: find identity: %w", err)
	}

	token, err := s.codec.IssueRecovery(tokens.RecoveryClaims{RecoveryID: identity.RecoveryID})
	if err != nil {
		return nil, fmt.Errorf("recovery service: issue token: %w", err)
	}

	link := s.resetLink(token)

	if s.mailer != nil {
		message := mail.Message{
			To:      []string{email},
			Subject: "Set a new password",
			Body:    s.resetBody(link),
		}
		if mailErr := s.mailer.Send(ctx, message); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
			return nil, &NotificationError{Err: mailErr}
		}
	}

	return &ResetRequestReceipt{Email: email, Token: token, Link: link, Dispatched: true}, nil
}

// ResolveToken verifies a reset token and resolves the identity that currently
// holds the embedded recovery id. A rotated (already used) id resolves to
// nothing and is rejected, even while the token itself is still unexpired.
func (s *RecoveryService) ResolveToken(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, &TokenRejectedError{Reason: err}
	}
	if claims.Purpose != tokens.PurposeRecovery || claims.Recovery == nil {
		return nil, &TokenRejectedError{Reason: tokens.ErrMalformed}
	}

	identity, err := s.identities.FindByRecoveryID(ctx, claims.Recovery.RecoveryID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &TokenRejectedError{Reason: errRecoveryConsumed}
	}
	if err != nil {
		return nil, fmt.Errorf("recovery service: resolve recovery id: %w", err)
	}

	return identity, nil
}

// CompleteReset validates the new password, updates the hash, then rotates the
// recovery id. Both steps must succeed; a committed password with a failed
// rotation is reported as a PartialFailureError, never as success.
func (s *RecoveryService) CompleteReset(ctx context.Context, recoveryID, password, passwordConfirm string) (*models.Identity, error) {
	if messages := validatePasswordReset(password, passwordConfirm); len(messages) > 0 {
		return nil, &ValidationError{Messages: messages}
	}

	identity, err := s.identities.FindByRecoveryID(ctx, recoveryID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidRequest
	}
	if err != nil {
		return nil, fmt.Errorf("recovery service: find identity: %w", err)
	}

	passwordHash, err := crypto.HashPasswordCost(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("recovery service: hash password: %w", err)
	}

	if err := s.identities.UpdatePassword(ctx, identity.ID, passwordHash); err != nil {
		return nil, fmt.Errorf("recovery service: update password: %w", err)
	}
	identity.PasswordHash = passwordHash

	rotated, err := s.rotateRecoveryID(ctx, identity.ID)
	if err != nil {
		return nil, &PartialFailureError{Err: err}
	}
	identity.RecoveryID = rotated

	return identity, nil
}

// rotateRecoveryID installs a fresh recovery id, retrying when the generated
// value collides with another record. The write itself re-detects collisions
// via the unique constraint, so a race between lookup and update also retries.
func (s *RecoveryService) rotateRecoveryID(ctx context.Context, identityID string) (string, error) {
	for {
		candidate, err := freshRecoveryID(ctx, s.identities)
		if err != nil {
			return "", err
		}

		err = s.identities.UpdateRecoveryID(ctx, identityID, candidate)
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			return "", err
		}

		return candidate, nil
	}
}

func (s *RecoveryService) resetLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/recover/%s", s.baseURL, token)
}

func (s *RecoveryService) resetBody(link string) string {
	return fmt.Sprintf("Please follow the link below to set a new password:\n%s\n\nThis link expires in %s. If you did not request a password reset, you can ignore this message.\n", link, s.codec.TTL())
}
