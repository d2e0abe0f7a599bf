package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// TestLoadYAML verifies the full config schema parses, including the
// human-friendly size and duration forms.
func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  address: "127.0.0.1"
  port: 8080
storage:
  db_path: "/var/lib/kidoku"
  cache_size: "64MB"
slack:
  bot_token: "xoxb-test"
  signing_secret: "sekrit"
security:
  rate_limit:
    rps: 5
    burst: 10
logging:
  level: "debug"
retention:
  enabled: true
  cron: "0 3 * * *"
  draft_max_age: "72h"
messages:
  success: "Done!"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Fatalf("Addr = %q", cfg.Addr())
	}
	if cfg.Storage.CacheSize.Int64() != 64*1000*1000 {
		t.Fatalf("cache_size = %d", cfg.Storage.CacheSize.Int64())
	}
	if cfg.Slack.BotToken != "xoxb-test" || cfg.Slack.SigningSecret != "sekrit" {
		t.Fatalf("slack config not parsed: %+v", cfg.Slack)
	}
	if cfg.Security.RateLimit.RPS != 5 || cfg.Security.RateLimit.Burst != 10 {
		t.Fatalf("rate limit not parsed: %+v", cfg.Security.RateLimit)
	}
	if !cfg.Retention.Enabled || cfg.Retention.DraftMaxAge.Duration() != 72*time.Hour {
		t.Fatalf("retention not parsed: %+v", cfg.Retention)
	}
	if cfg.Messages["success"] != "Done!" {
		t.Fatalf("messages not parsed: %v", cfg.Messages)
	}
}

// TestLoadMissingFile verifies a missing config file is reported.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

// TestAddrDefaults verifies the default listen address.
func TestAddrDefaults(t *testing.T) {
	var cfg Config
	if got := cfg.Addr(); got != "0.0.0.0:3000" {
		t.Fatalf("default Addr = %q", got)
	}
}

// TestSizeBytesForms verifies plain-integer and humanized size values.
func TestSizeBytesForms(t *testing.T) {
	var s struct {
		V SizeBytes `yaml:"v"`
	}
	if err := yaml.Unmarshal([]byte(`v: 1024`), &s); err != nil {
		t.Fatalf("unmarshal int: %v", err)
	}
	if s.V.Int64() != 1024 {
		t.Fatalf("plain int = %d", s.V.Int64())
	}
	if err := yaml.Unmarshal([]byte(`v: "1KiB"`), &s); err != nil {
		t.Fatalf("unmarshal humanized: %v", err)
	}
	if s.V.Int64() != 1024 {
		t.Fatalf("humanized = %d", s.V.Int64())
	}
	if err := yaml.Unmarshal([]byte(`v: "bogus"`), &s); err == nil {
		t.Fatalf("expected error for invalid size")
	}
}

// TestDurationForms verifies duration strings and numeric seconds.
func TestDurationForms(t *testing.T) {
	var s struct {
		V Duration `yaml:"v"`
	}
	if err := yaml.Unmarshal([]byte(`v: "90m"`), &s); err != nil {
		t.Fatalf("unmarshal duration: %v", err)
	}
	if s.V.Duration() != 90*time.Minute {
		t.Fatalf("duration = %v", s.V.Duration())
	}
	if err := yaml.Unmarshal([]byte(`v: 30`), &s); err != nil {
		t.Fatalf("unmarshal seconds: %v", err)
	}
	if s.V.Duration() != 30*time.Second {
		t.Fatalf("numeric seconds = %v", s.V.Duration())
	}
}

// TestLoadEnvOverrides verifies environment variables override loaded
// values and report usage.
func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("KIDOKU_ADDR", "127.0.0.1:9000")
	t.Setenv("KIDOKU_SLACK_BOT_TOKEN", "xoxb-env")
	t.Setenv("KIDOKU_RATE_RPS", "2.5")

	cfg := &Config{}
	if !LoadEnvOverrides(cfg) {
		t.Fatalf("expected env usage to be reported")
	}
	if cfg.Addr() != "127.0.0.1:9000" {
		t.Fatalf("Addr = %q", cfg.Addr())
	}
	if cfg.Slack.BotToken != "xoxb-env" {
		t.Fatalf("bot token = %q", cfg.Slack.BotToken)
	}
	if cfg.Security.RateLimit.RPS != 2.5 {
		t.Fatalf("rps = %v", cfg.Security.RateLimit.RPS)
	}
}

// TestLoadEffectiveToleratesMissingFile verifies env can carry the full
// configuration when no config file exists.
func TestLoadEffectiveToleratesMissingFile(t *testing.T) {
	t.Setenv("KIDOKU_DB_PATH", "/tmp/kidoku-db")

	cfg, envUsed, err := LoadEffective(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadEffective: %v", err)
	}
	if !envUsed {
		t.Fatalf("expected env usage")
	}
	if cfg.Storage.DBPath != "/tmp/kidoku-db" {
		t.Fatalf("db path = %q", cfg.Storage.DBPath)
	}
}

// TestResolveConfigPathPrecedence verifies flag > env > default.
func TestResolveConfigPathPrecedence(t *testing.T) {
	t.Setenv("KIDOKU_CONFIG", "/etc/kidoku/env.yaml")
	if got := ResolveConfigPath("/from/flag.yaml", true); got != "/from/flag.yaml" {
		t.Fatalf("flag should win; got %q", got)
	}
	if got := ResolveConfigPath("./config.yaml", false); got != "/etc/kidoku/env.yaml" {
		t.Fatalf("env should win over default; got %q", got)
	}
	os.Unsetenv("KIDOKU_CONFIG")
	if got := ResolveConfigPath("./config.yaml", false); got != "./config.yaml" {
		t.Fatalf("default should apply; got %q", got)
	}
}
