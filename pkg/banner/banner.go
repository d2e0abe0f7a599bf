package banner

import (
	"fmt"

	"kidoku/pkg/config"
)

const banner = `
██╗  ██╗██╗██████╗  ██████╗ ██╗  ██╗██╗   ██╗
██║ ██╔╝██║██╔══██╗██╔═══██╗██║ ██╔╝██║   ██║
█████╔╝ ██║██║  ██║██║   ██║█████╔╝ ██║   ██║
██╔═██╗ ██║██║  ██║██║   ██║██╔═██╗ ██║   ██║
██║  ██╗██║██████╔╝╚██████╔╝██║  ██╗╚██████╔╝
╚═╝  ╚═╝╚═╝╚═════╝  ╚═════╝ ╚═╝  ╚═╝ ╚═════╝
`

// Print prints the startup banner using the effective config.
func Print(eff config.EffectiveConfigResult, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	dbPath := eff.DBPath
	if dbPath == "" && eff.Config != nil {
		dbPath = eff.Config.Storage.DBPath
	}
	src := eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", src)

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Printf("POST http://%s/slack/commands - slash command webhook\n", addr)
	fmt.Printf("POST http://%s/slack/actions  - interactive button webhook\n", addr)
	fmt.Printf("GET  http://%s/metrics        - Prometheus metrics\n", addr)

	fmt.Println("\n== Production? ================================================")
	if eff.Config != nil && eff.Config.Slack.BotToken != "" {
		fmt.Println("- Slack bot token: configured")
	} else {
		fmt.Println("- Slack bot token: MISSING (set slack.bot_token or KIDOKU_SLACK_BOT_TOKEN)")
	}
	if eff.Config != nil && eff.Config.Slack.SigningSecret != "" {
		fmt.Println("- Signing secret: configured")
	} else {
		fmt.Println("- Signing secret: MISSING (inbound webhooks cannot be verified)")
	}
	if eff.Config != nil && eff.Config.Security.RateLimit.RPS > 0 {
		fmt.Printf("- Rate limit: %.1f req/s (burst %d)\n", eff.Config.Security.RateLimit.RPS, eff.Config.Security.RateLimit.Burst)
	} else {
		fmt.Println("- Rate limit: defaults")
	}
	if eff.Config != nil && eff.Config.Retention.Enabled {
		fmt.Printf("- Draft retention: enabled (cron=%s)\n", eff.Config.Retention.Cron)
	} else {
		fmt.Println("- Draft retention: disabled")
	}

	fmt.Println("\n== Logs: =================================================")
}
