package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	iauth "github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/internal/models"
)

func TestCleanerRunOnce(t *testing.T) {
	db, sessions := setupCleanupFixture(t)

	identity := seedCleanupIdentity(t, db, "run-once")

	_, live, err := sessions.CreateSession(identity.ID, iauth.SessionMetadata{})
	require.NoError(t, err)

	_, stale, err := sessions.CreateSession(identity.ID, iauth.SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Session{}).
		Where("id = ?", stale.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	cleaner := NewCleaner(sessions)
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var remaining []models.Session
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, live.ID, remaining[0].ID)
}

func TestCleanerStartRegistersJob(t *testing.T) {
	_, sessions := setupCleanupFixture(t)

	scheduler := cron.New(cron.WithLogger(cron.DiscardLogger))
	cleaner := NewCleaner(sessions, WithCron(scheduler), WithSessionSchedule("@every 1h"))

	require.NoError(t, cleaner.Start())
	require.Len(t, scheduler.Entries(), 1)

	<-cleaner.Stop().Done()
}

func TestCleanerWithoutSessionsIsNoop(t *testing.T) {
	cleaner := NewCleaner(nil)
	require.NoError(t, cleaner.Start())
	require.NoError(t, cleaner.RunOnce(context.Background()))
}

func setupCleanupFixture(t *testing.T) (*gorm.DB, *iauth.SessionService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Identity{}, &models.Session{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	jwtService, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "cleanup-secret"})
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(db, jwtService, iauth.SessionConfig{})
	require.NoError(t, err)

	return db, sessions
}

func seedCleanupIdentity(t *testing.T, db *gorm.DB, slug string) *models.Identity {
	t.Helper()

	identity := &models.Identity{
		Name:         slug,
		Email:        slug + "@example.com",
		PasswordHash: "$2a$10$hash",
		Activated:    true,
		RecoveryID:   "rid-" + slug,
	}
	require.NoError(t, db.Create(identity).Error)
	return identity
}
