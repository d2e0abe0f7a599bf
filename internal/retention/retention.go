// Package retention sweeps orphaned draft entries. Drafts live only for
// one confirm/cancel round trip; a crash between preview and decision can
// leave one behind in the persisted record forever. The sweeper deletes
// drafts older than a configured age. Live entries are never purged.
package retention

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adhocore/gronx"

	"kidoku/pkg/config"
	"kidoku/pkg/logger"
	"kidoku/pkg/models"
	"kidoku/pkg/store"
)

const defaultCron = "0 3 * * *"

// Start starts the retention scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.RetentionConfig) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = defaultCron
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}

	maxAge := cfg.DraftMaxAge.Duration()
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	logger.Info("retention_enabled", "cron", cronExpr, "draft_max_age", maxAge)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, maxAge)
	return cancel, nil
}

// runScheduler computes the next tick for the configured cron expression
// with gronx and sleeps until that time.
func runScheduler(ctx context.Context, cronExpr string, maxAge time.Duration) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}

		if err := RunOnce(maxAge); err != nil {
			logger.Error("retention_run_error", "error", err)
		}
	}
}

// RunOnce sweeps every channel record and deletes draft entries older than
// maxAge. Exported so admin tooling and tests can trigger a sweep.
func RunOnce(maxAge time.Duration) error {
	channels, err := store.ListChannelIDs()
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-maxAge)
	purged := 0
	for _, ch := range channels {
		rec, err := store.GetChannelRecord(ch)
		if err != nil {
			logger.Error("retention_record_load_failed", "channel", ch, "error", err)
			continue
		}
		changed := false
		for key, e := range rec.Entries {
			if e.Kind != models.EntryDraft {
				continue
			}
			created, ok := draftKeyTime(key)
			if !ok || !created.Before(cutoff) {
				continue
			}
			delete(rec.Entries, key)
			changed = true
			purged++
			logger.Info("retention_draft_purged", "channel", ch, "key", key, "created", created)
		}
		if changed {
			if err := store.SaveChannelRecord(ch, rec); err != nil {
				logger.Error("retention_record_save_failed", "channel", ch, "error", err)
			}
		}
	}
	logger.Info("retention_run_complete", "channels", len(channels), "purged", purged)
	return nil
}

// draftKeyTime recovers the creation time of a draft key (unix millis).
func draftKeyTime(key string) (time.Time, bool) {
	ms, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
