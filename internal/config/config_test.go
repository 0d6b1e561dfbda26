package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"CoinSentinel/internal/model"
)

var overrideVars = []string{
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DATA_SOURCE", "COINGECKO_BASE_URL",
	"VS_CURRENCY", "UPDATE_INTERVAL", "NOTIFY_PERMISSION", "REDIS_ADDR", "STATE_FILE",
	"SQLITE_PATH", "DASHBOARD_ADDR", "HTTPS_PROXY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range overrideVars {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if len(cfg.Assets) != 11 || cfg.Assets[9].FeedID != "matic-network" {
		t.Errorf("unexpected default assets: %+v", cfg.Assets)
	}
	if cfg.DataSource.VsCurrency != "jpy" || cfg.DataSource.Attempts != 3 ||
		cfg.DataSource.RetryDelay != 3*time.Second || cfg.DataSource.Timeout != 10*time.Second {
		t.Errorf("unexpected data source defaults: %+v", cfg.DataSource)
	}
	if cfg.Schedule.UpdateInterval != 30*time.Second {
		t.Errorf("interval = %v", cfg.Schedule.UpdateInterval)
	}
	if cfg.Notifications.Permission != model.PermissionDefault {
		t.Errorf("permission = %s", cfg.Notifications.Permission)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled without credentials")
	}
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
data_source:
  kind: mock
  vs_currency: usd
  retry_delay: 1s
assets:
  - id: bitcoin
    symbol: BTC
    name: Bitcoin
  - id: polygon
    symbol: POL
    name: Polygon
    feed_id: matic-network
schedule:
  update_interval: 15s
background:
  enabled: true
  sync_assets: [bitcoin]
  update_assets: [bitcoin, polygon]
`)
	t.Setenv("UPDATE_INTERVAL", "60")
	t.Setenv("NOTIFY_PERMISSION", "GRANTED")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.DataSource.Kind != "mock" || cfg.DataSource.VsCurrency != "usd" || cfg.DataSource.RetryDelay != time.Second {
		t.Errorf("unexpected data source: %+v", cfg.DataSource)
	}
	if cfg.Schedule.UpdateInterval != 60*time.Second {
		t.Errorf("env override not applied: %v", cfg.Schedule.UpdateInterval)
	}
	if cfg.Notifications.Permission != model.PermissionGranted || !cfg.TelegramEnabled() {
		t.Errorf("unexpected notifications: %+v", cfg.Notifications)
	}
	bg, err := cfg.AssetsByID(cfg.Background.UpdateAssets)
	if err != nil || len(bg) != 2 || bg[1].FeedID != "matic-network" {
		t.Errorf("unexpected background assets: %+v err=%v", bg, err)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }},
		{"bad kind", func(c *Config) { c.DataSource.Kind = "binance" }},
		{"odd interval", func(c *Config) { c.Schedule.UpdateInterval = 45 * time.Second }},
		{"bad permission", func(c *Config) { c.Notifications.Permission = "maybe" }},
		{"duplicate asset", func(c *Config) { c.Assets = append(c.Assets, c.Assets[0]) }},
		{"unknown background asset", func(c *Config) {
			c.Background.Enabled = true
			c.Background.SyncAssets = []string{"dogecoin"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	cfg, _ := Load(filepath.Join(t.TempDir(), "none.yaml"))
	cfg.Schedule.UpdateInterval = 45 * time.Second
	cfg.Schedule.AllowAnyInterval = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("allow_any_interval should accept 45s: %v", err)
	}
}

func TestLoad_BadInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPDATE_INTERVAL", "soon")
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for unparsable UPDATE_INTERVAL")
	}
}
