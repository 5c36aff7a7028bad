// Package maintenance runs the background retention job that prunes old
// analysis run logs.
package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/storage"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/logger"
)

const (
	defaultRetentionDays = 30
	defaultSpec          = "@daily"
)

// Cleaner prunes run log files older than the retention window across every
// registered analysis.
type Cleaner struct {
	store     *storage.ConfigStore
	logs      *storage.LogStore
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention int
	schedule  string
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

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetentionDays adjusts how long run logs are kept.
func WithRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithSchedule overrides the cron expression for the pruning job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(store *storage.ConfigStore, logs *storage.LogStore, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		store:     store,
		logs:      logs,
		now:       time.Now,
		retention: defaultRetentionDays,
		schedule:  defaultSpec,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the pruning job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.store == nil || c.logs == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if _, err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("log retention run failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running job to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce prunes stale logs for every analysis and reports how many files
// were removed. A failing analysis does not stop the sweep.
func (c *Cleaner) RunOnce(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := c.store.GetConfig()
	if err != nil {
		return 0, err
	}

	cutoff := c.now().AddDate(0, 0, -c.retention)

	removed := 0
	var errs error
	for id := range doc.Analyses {
		n, err := c.logs.PruneOlderThan(id, cutoff)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed += n
	}

	if removed > 0 {
		c.log.Info("pruned analysis logs",
			zap.Int("files_removed", removed),
			zap.Time("cutoff", cutoff),
		)
	}
	return removed, errs
}
