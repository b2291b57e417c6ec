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

// ActivationOption customises the ActivationService.
type ActivationOption func(*ActivationService)

// WithActivationBaseURL sets the base URL used in emailed activation links.
func WithActivationBaseURL(url string) ActivationOption {
	return func(s *ActivationService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithBcryptCost overrides the password hashing work factor.
func WithBcryptCost(cost int) ActivationOption {
	return func(s *ActivationService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// ActivationService drives registration through emailed confirmation to a
// persisted, activated identity. No record exists before Activate succeeds;
// the pending registration travels only inside the signed token.
type ActivationService struct {
	identities store.IdentityStore
	codec      *tokens.Codec
	mailer     mail.Mailer
	baseURL    string
	bcryptCost int
}

// NewActivationService constructs the workflow with its collaborators.
func NewActivationService(identities store.IdentityStore, codec *tokens.Codec, mailer mail.Mailer, opts ...ActivationOption) (*ActivationService, error) {
	if identities == nil {
		return nil, errors.New("activation service: identity store is required")
	}
	if codec == nil {
		return nil, errors.New("activation service: token codec is required")
	}

	service := &ActivationService{
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

// RegisterInput captures the registration form fields.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// RegistrationReceipt reports a dispatched confirmation mail.
type RegistrationReceipt struct {
	Email string
	Token string
	Link  string
}

// Register validates the form, refuses known emails, and mails an activation
// link carrying the pending registration. No identity record is created here.
func (s *ActivationService) Register(ctx context.Context, input RegisterInput) (*RegistrationReceipt, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if messages := validateRegistration(name, email, input.Password, input.PasswordConfirm); len(messages) > 0 {
		return nil, &ValidationError{Messages: messages, Name: name, Email: email}
	}

	_, err := s.identities.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("activation service: check email: %w", err)
	}

	passwordHash, err := crypto.HashPasswordCost(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("activation service: hash password: %w", err)
	}

	token, err := s.codec.IssueActivation(tokens.ActivationClaims{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return nil, fmt.Errorf("activation service: issue token: %w", err)
	}

	link := s.activationLink(token)

	if s.mailer != nil {
		message := mail.Message{
			To:      []string{email},
			Subject: "Please confirm your email account",
			Body:    s.activationBody(link),
		}
		if mailErr := s.mailer.Send(ctx, message); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
			return nil, &NotificationError{Err: mailErr}
		}
	}

	return &RegistrationReceipt{Email: email, Token: token, Link: link}, nil
}

// Activate redeems an activation token into a persisted identity. Email
// uniqueness is re-checked here, the authoritative point: a second
// registration may have activated between issue and redeem.
func (s *ActivationService) Activate(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, &TokenRejectedError{Reason: err}
	}
	if claims.Purpose != tokens.PurposeActivation || claims.Activation == nil {
		return nil, &TokenRejectedError{Reason: tokens.ErrMalformed}
	}

	pending := claims.Activation

	_, err = s.identities.FindByEmail(ctx, pending.Email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("activation service: check email: %w", err)
	}

	recoveryID, err := freshRecoveryID(ctx, s.identities)
	if err != nil {
		return nil, err
	}

	identity := &models.Identity{
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Activated:    true,
		RecoveryID:   recoveryID,
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the creation race to a concurrent activation.
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("activation service: create identity: %w", err)
	}

	return identity, nil
}

func (s *ActivationService) activationLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/activate/%s", s.baseURL, token)
}

func (s *ActivationService) activationBody(link string) string {
	return fmt.Sprintf("Welcome!\n\nPlease follow the link below to activate your account:\n%s\n\nThis link expires in %s. If you did not register, you can ignore this message.\n", link, s.codec.TTL())
}
