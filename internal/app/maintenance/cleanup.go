package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/pkg/logger"
)

const defaultSessionSpec = "@hourly"

// Cleaner runs background maintenance, currently purging expired and revoked
// sessions. Lifecycle tokens need no cleanup job: pending registrations and
// reset links live only inside their signed tokens and expire on their own.
type Cleaner struct {
	sessions *iauth.SessionService
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger

	sessionSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for scheduling and cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil session
// service results in the cleanup job being skipped.
func NewCleaner(sessions *iauth.SessionService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:        sessions,
		now:             time.Now,
		sessionSchedule: defaultSessionSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.sessions == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
		ctx := context.Background()
		if _, err := c.sessions.CleanupExpired(ctx); err != nil {
			c.log.Warn("session cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if _, err := c.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
