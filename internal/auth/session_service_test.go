package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/charlesng35/accountd/internal/models"
	"github.com/charlesng35/accountd/pkg/crypto"
)

func TestCreateSessionGeneratesTokens(t *testing.T) {
	db, svc, clock := setupSessionService(t)

	identity := createTestIdentity(t, db, "create")

	tokens, session, err := svc.CreateSession(identity.ID, SessionMetadata{
		IPAddress: "10.0.0.1 ",
		UserAgent: "unit-test",
	})
	require.NoError(t, err)

	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	require.NotNil(t, session)
	require.Equal(t, identity.ID, session.IdentityID)
	require.Equal(t, "10.0.0.1", session.IPAddress)
	require.Equal(t, "unit-test", session.UserAgent)

	var reloaded models.Session
	require.NoError(t, db.Take(&reloaded, "id = ?", session.ID).Error)
	require.Equal(t, tokens.RefreshToken, reloaded.RefreshToken)
	require.True(t, reloaded.ExpiresAt.After(clock.Now()))
	require.True(t, reloaded.LastUsedAt.Equal(clock.Now()))
}

func TestRefreshSessionRotatesToken(t *testing.T) {
	db, svc, clock := setupSessionService(t)
	identity := createTestIdentity(t, db, "refresh")

	tokens, session, err := svc.CreateSession(identity.ID, SessionMetadata{})
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)

	newTokens, updatedSession, err := svc.RefreshSession(tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, tokens.RefreshToken, newTokens.RefreshToken)
	require.NotEqual(t, tokens.AccessToken, newTokens.AccessToken)

	require.Equal(t, session.ID, updatedSession.ID)
	require.Equal(t, newTokens.RefreshToken, updatedSession.RefreshToken)
	require.True(t, updatedSession.LastUsedAt.Equal(clock.Now()))

	_, _, err = svc.RefreshSession(tokens.RefreshToken)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRefreshSessionExpired(t *testing.T) {
	db, svc, clock := setupSessionService(t)
	identity := createTestIdentity(t, db, "expired")

	tokens, session, err := svc.CreateSession(identity.ID, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Session{}).
		Where("id = ?", session.ID).
		Update("expires_at", clock.Now().Add(-time.Minute)).Error)

	_, _, err = svc.RefreshSession(tokens.RefreshToken)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestRevokeSessionPreventsRefresh(t *testing.T) {
	db, svc, clock := setupSessionService(t)

	identity := createTestIdentity(t, db, "revoke")

	tokens, session, err := svc.CreateSession(identity.ID, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeSession(session.ID))

	err = svc.RevokeSession("non-existent")
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, _, err = svc.RefreshSession(tokens.RefreshToken)
	require.ErrorIs(t, err, ErrSessionRevoked)

	var stored models.Session
	require.NoError(t, db.Take(&stored, "id = ?", session.ID).Error)
	require.NotNil(t, stored.RevokedAt)
	require.True(t, stored.RevokedAt.After(clock.Now().Add(-time.Nanosecond)))
}

func TestCleanupExpiredRemovesStaleSessions(t *testing.T) {
	db, svc, clock := setupSessionService(t)
	identity := createTestIdentity(t, db, "cleanup")

	_, live, err := svc.CreateSession(identity.ID, SessionMetadata{})
	require.NoError(t, err)

	_, stale, err := svc.CreateSession(identity.ID, SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Session{}).
		Where("id = ?", stale.ID).
		Update("expires_at", clock.Now().Add(-time.Hour)).Error)

	_, revoked, err := svc.CreateSession(identity.ID, SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, svc.RevokeSession(revoked.ID))

	removed, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	var remaining []models.Session
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, live.ID, remaining[0].ID)
}

func setupSessionService(t *testing.T) (*gorm.DB, *SessionService, *testClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Identity{}, &models.Session{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	clock := &testClock{current: time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)}

	jwtService, err := NewJWTService(JWTConfig{
		Secret:         "session-secret",
		AccessTokenTTL: time.Hour,
		Clock:          clock.Now,
	})
	require.NoError(t, err)

	sessionService, err := NewSessionService(db, jwtService, SessionConfig{
		RefreshTokenTTL: 2 * time.Hour,
		RefreshLength:   24,
		Clock:           clock.Now,
	})
	require.NoError(t, err)

	return db, sessionService, clock
}

func createTestIdentity(t *testing.T, db *gorm.DB, slug string) *models.Identity {
	t.Helper()

	hashed, err := crypto.HashPassword("password")
	require.NoError(t, err)

	identity := &models.Identity{
		Name:         slug,
		Email:        slug + "@example.com",
		PasswordHash: hashed,
		Activated:    true,
		RecoveryID:   "rid-" + slug,
	}
	require.NoError(t, db.Create(identity).Error)
	return identity
}

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
