package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/accountd/internal/models"
)

var (
	// ErrNotFound indicates that no identity matches the lookup key.
	ErrNotFound = errors.New("identity store: not found")
	// ErrDuplicate marks a uniqueness constraint violation on email or recovery id.
	ErrDuplicate = errors.New("identity store: duplicate key")
)

// IdentityStore persists identity records keyed by email and by recovery id.
// Implementations must provide atomic single-record create/update operations;
// cross-record transactions are not assumed by callers.
type IdentityStore interface {
	FindByID(ctx context.Context, identityID string) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByRecoveryID(ctx context.Context, recoveryID string) (*models.Identity, error)
	Create(ctx context.Context, identity *models.Identity) error
	UpdatePassword(ctx context.Context, identityID, passwordHash string) error
	UpdateRecoveryID(ctx context.Context, identityID, recoveryID string) error
}

// GormStore implements IdentityStore on top of a gorm database handle.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps the provided database handle.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("identity store: db is required")
	}
	return &GormStore{db: db}, nil
}

// FindByID looks up an identity by primary key.
func (s *GormStore) FindByID(ctx context.Context, identityID string) (*models.Identity, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return nil, ErrNotFound
	}

	var identity models.Identity
	err := s.db.WithContext(ctx).Take(&identity, "id = ?", identityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("identity store: find by id: %w", err)
	}

	return &identity, nil
}

// FindByEmail looks up an identity by email, compared case-insensitively.
func (s *GormStore) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrNotFound
	}

	var identity models.Identity
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		Take(&identity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("identity store: find by email: %w", err)
	}

	return &identity, nil
}

// FindByRecoveryID looks up the identity currently holding the given recovery id.
func (s *GormStore) FindByRecoveryID(ctx context.Context, recoveryID string) (*models.Identity, error) {
	recoveryID = strings.TrimSpace(recoveryID)
	if recoveryID == "" {
		return nil, ErrNotFound
	}

	var identity models.Identity
	err := s.db.WithContext(ctx).
		Where("recovery_id = ?", recoveryID).
		Take(&identity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("identity store: find by recovery id: %w", err)
	}

	return &identity, nil
}

// Create persists a new identity record. Uniqueness violations on email or
// recovery id surface as ErrDuplicate so callers can resolve creation races.
func (s *GormStore) Create(ctx context.Context, identity *models.Identity) error {
	if identity == nil {
		return errors.New("identity store: identity is required")
	}

	if err := s.db.WithContext(ctx).Create(identity).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("identity store: create: %w", err)
	}

	return nil
}

// UpdatePassword stores a new password hash for the identity.
func (s *GormStore) UpdatePassword(ctx context.Context, identityID, passwordHash string) error {
	if strings.TrimSpace(identityID) == "" || passwordHash == "" {
		return errors.New("identity store: identity id and password hash are required")
	}

	result := s.db.WithContext(ctx).
		Model(&models.Identity{}).
		Where("id = ?", identityID).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("identity store: update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateRecoveryID rotates the recovery secret for the identity.
func (s *GormStore) UpdateRecoveryID(ctx context.Context, identityID, recoveryID string) error {
	if strings.TrimSpace(identityID) == "" || strings.TrimSpace(recoveryID) == "" {
		return errors.New("identity store: identity id and recovery id are required")
	}

	result := s.db.WithContext(ctx).
		Model(&models.Identity{}).
		Where("id = ?", identityID).
		Update("recovery_id", recoveryID)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrDuplicate
		}
		return fmt.Errorf("identity store: update recovery id: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
