// Package app wires configuration, storage, the Slack client and the HTTP
// server into a runnable service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"kidoku/internal/retention"
	"kidoku/pkg/api"
	"kidoku/pkg/banner"
	"kidoku/pkg/bot"
	"kidoku/pkg/compose"
	"kidoku/pkg/config"
	"kidoku/pkg/logger"
	"kidoku/pkg/platform"
	"kidoku/pkg/store"
)

// App encapsulates the service components and lifecycle.
type App struct {
	eff     config.EffectiveConfigResult
	version string

	client *platform.SlackClient
	disp   *bot.Dispatcher

	srv             *http.Server
	cancelRetention context.CancelFunc
}

// New validates the config and initializes resources that do not require a
// running context: logging, the record store, the Slack client and the
// dispatcher. Call Run to start the HTTP server and block until shutdown.
func New(eff config.EffectiveConfigResult, version string) (*App, error) {
	if err := validateConfig(eff); err != nil {
		return nil, err
	}
	cfg := eff.Config

	logger.InitWithLevel(cfg.Logging.Level)

	dbPath := eff.DBPath
	if dbPath == "" {
		dbPath = cfg.Storage.DBPath
	}
	if err := store.Open(dbPath, cfg.Storage.CacheSize.Int64()); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", dbPath, err)
	}

	client := platform.NewSlackClient(cfg.Slack.BotToken)
	comp := compose.New(compose.StringsWithOverrides(cfg.Messages))
	disp := bot.NewDispatcher(client, comp)

	return &App{eff: eff, version: version, client: client, disp: disp}, nil
}

// Run verifies the Slack credentials, starts the retention scheduler and the
// HTTP server, and blocks until ctx is canceled or a fatal server error
// occurs.
func (a *App) Run(ctx context.Context) error {
	authCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := a.client.AuthTest(authCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("slack auth test failed: %w", err)
	}
	logger.Info("slack_auth_ok")

	stopRetention, err := retention.Start(ctx, a.eff.Config.Retention)
	if err != nil {
		return err
	}
	a.cancelRetention = stopRetention

	banner.Print(a.eff, a.version)

	errCh := a.startHTTP()

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		a.shutdown()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// shutdown stops the scheduler, drains the HTTP server and closes the store.
func (a *App) shutdown() {
	if a.cancelRetention != nil {
		a.cancelRetention()
	}
	if a.srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = a.srv.Shutdown(sctx)
		cancel()
	}
	if err := store.Close(); err != nil {
		logger.Error("store_close_failed", "error", err)
	}
	logger.Info("shutdown_complete")
}

// handler exposes the webhook handler for startHTTP.
func (a *App) handler() *api.Handler {
	cfg := a.eff.Config
	return api.New(a.disp, cfg.Slack.SigningSecret, cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst)
}
