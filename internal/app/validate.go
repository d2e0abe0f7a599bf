package app

import (
	"fmt"

	"github.com/adhocore/gronx"

	"kidoku/pkg/config"
)

// validateConfig checks the effective config for fatal misconfiguration
// before any resource is opened.
func validateConfig(eff config.EffectiveConfigResult) error {
	if eff.Config == nil {
		return fmt.Errorf("no configuration loaded")
	}
	cfg := eff.Config
	if cfg.Slack.BotToken == "" {
		return fmt.Errorf("slack bot token is required (slack.bot_token or KIDOKU_SLACK_BOT_TOKEN)")
	}
	if cfg.Slack.SigningSecret == "" {
		return fmt.Errorf("slack signing secret is required (slack.signing_secret or KIDOKU_SLACK_SIGNING_SECRET)")
	}
	if eff.DBPath == "" && cfg.Storage.DBPath == "" {
		return fmt.Errorf("db path is required (--db or storage.db_path)")
	}
	if cfg.Security.RateLimit.RPS < 0 || cfg.Security.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	if cfg.Retention.Enabled && cfg.Retention.Cron != "" && !gronx.IsValid(cfg.Retention.Cron) {
		return fmt.Errorf("invalid retention cron expression: %s", cfg.Retention.Cron)
	}
	return nil
}
