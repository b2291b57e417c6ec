package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/charlesng35/accountd/internal/models"
)

func TestGormStoreCreateAndFind(t *testing.T) {
	identities := openTestStore(t)

	identity := &models.Identity{
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$hash",
		Activated:    true,
		RecoveryID:   "rid-ada",
	}
	require.NoError(t, identities.Create(context.Background(), identity))
	require.NotEmpty(t, identity.ID)

	// Email comparison is case-insensitive.
	found, err := identities.FindByEmail(context.Background(), "ADA@Example.COM")
	require.NoError(t, err)
	require.Equal(t, identity.ID, found.ID)

	found, err = identities.FindByRecoveryID(context.Background(), "rid-ada")
	require.NoError(t, err)
	require.Equal(t, identity.ID, found.ID)

	found, err = identities.FindByID(context.Background(), identity.ID)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", found.Email)

	_, err = identities.FindByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = identities.FindByRecoveryID(context.Background(), "rid-unknown")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreDuplicateEmail(t *testing.T) {
	identities := openTestStore(t)

	first := &models.Identity{
		Name:         "First",
		Email:        "dup@example.com",
		PasswordHash: "$2a$10$hash",
		RecoveryID:   "rid-first",
	}
	require.NoError(t, identities.Create(context.Background(), first))

	second := &models.Identity{
		Name:         "Second",
		Email:        "dup@example.com",
		PasswordHash: "$2a$10$hash",
		RecoveryID:   "rid-second",
	}
	require.ErrorIs(t, identities.Create(context.Background(), second), ErrDuplicate)
}

func TestGormStoreDuplicateRecoveryID(t *testing.T) {
	identities := openTestStore(t)

	first := &models.Identity{
		Name:         "First",
		Email:        "one@example.com",
		PasswordHash: "$2a$10$hash",
		RecoveryID:   "rid-shared",
	}
	require.NoError(t, identities.Create(context.Background(), first))

	second := &models.Identity{
		Name:         "Second",
		Email:        "two@example.com",
		PasswordHash: "$2a$10$hash",
		RecoveryID:   "rid-two",
	}
	require.NoError(t, identities.Create(context.Background(), second))

	err := identities.UpdateRecoveryID(context.Background(), second.ID, "rid-shared")
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestGormStoreUpdates(t *testing.T) {
	identities := openTestStore(t)

	identity := &models.Identity{
		Name:         "Changing",
		Email:        "change@example.com",
		PasswordHash: "$2a$10$old",
		RecoveryID:   "rid-old",
	}
	require.NoError(t, identities.Create(context.Background(), identity))

	require.NoError(t, identities.UpdatePassword(context.Background(), identity.ID, "$2a$10$new"))
	require.NoError(t, identities.UpdateRecoveryID(context.Background(), identity.ID, "rid-new"))

	stored, err := identities.FindByID(context.Background(), identity.ID)
	require.NoError(t, err)
	require.Equal(t, "$2a$10$new", stored.PasswordHash)
	require.Equal(t, "rid-new", stored.RecoveryID)

	require.ErrorIs(t, identities.UpdatePassword(context.Background(), "missing-id", "$2a$10$x"), ErrNotFound)
	require.ErrorIs(t, identities.UpdateRecoveryID(context.Background(), "missing-id", "rid-x"), ErrNotFound)
}

func openTestStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Identity{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	identities, err := NewGormStore(db)
	require.NoError(t, err)
	return identities
}
