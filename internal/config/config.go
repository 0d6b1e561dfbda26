package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"CoinSentinel/internal/model"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Kind       string        `yaml:"kind"` // "coingecko" or "mock"
		BaseURL    string        `yaml:"base_url"`
		VsCurrency string        `yaml:"vs_currency"`
		Timeout    time.Duration `yaml:"timeout"`
		Attempts   int           `yaml:"attempts"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"data_source"`

	Assets []model.Asset `yaml:"assets"`

	Schedule struct {
		UpdateInterval   time.Duration `yaml:"update_interval"`
		AllowAnyInterval bool          `yaml:"allow_any_interval"`
		BackgroundCron   string        `yaml:"background_cron"`
	} `yaml:"schedule"`
	Background struct {
		Enabled      bool     `yaml:"enabled"`
		SyncAssets   []string `yaml:"sync_assets"`
		UpdateAssets []string `yaml:"update_assets"`
		Threshold    float64  `yaml:"threshold"`
	} `yaml:"background"`
	Notifications struct {
		Permission model.Permission `yaml:"permission"`
	} `yaml:"notifications"`
	State struct {
		File      string `yaml:"file"`
		RedisAddr string `yaml:"redis_addr"`
		RedisDB   int    `yaml:"redis_db"`
		Prefix    string `yaml:"prefix"`
	} `yaml:"state"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Dashboard struct {
		Addr string `yaml:"addr"`
	} `yaml:"dashboard"`
	Proxy string `yaml:"proxy"`
}

// DefaultAssets is the built-in watch list.
var DefaultAssets = []model.Asset{
	{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"},
	{ID: "ethereum", Symbol: "ETH", Name: "Ethereum"},
	{ID: "bitcoin-cash", Symbol: "BCH", Name: "Bitcoin Cash"},
	{ID: "litecoin", Symbol: "LTC", Name: "Litecoin"},
	{ID: "ripple", Symbol: "XRP", Name: "XRP"},
	{ID: "stellar", Symbol: "XLM", Name: "Stellar Lumens"},
	{ID: "cardano", Symbol: "ADA", Name: "Cardano"},
	{ID: "polkadot", Symbol: "DOT", Name: "Polkadot"},
	{ID: "tezos", Symbol: "XTZ", Name: "Tezos"},
	{ID: "polygon", Symbol: "POL", Name: "Polygon", FeedID: "matic-network"},
	{ID: "oasys", Symbol: "OAS", Name: "Oasys"},
}

// Load reads an optional .env file, then the YAML config, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		c.DataSource.Kind = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("VS_CURRENCY"); v != "" {
		c.DataSource.VsCurrency = strings.ToLower(v)
	}
	if v := os.Getenv("UPDATE_INTERVAL"); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			return fmt.Errorf("UPDATE_INTERVAL: %w", err)
		}
		c.Schedule.UpdateInterval = d
	}
	if v := os.Getenv("NOTIFY_PERMISSION"); v != "" {
		c.Notifications.Permission = model.Permission(strings.ToLower(v))
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.State.RedisAddr = v
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		c.State.File = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		c.Dashboard.Addr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

// parseInterval accepts "30s" style durations or bare seconds.
func parseInterval(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func (c *Config) applyDefaults() {
	if c.DataSource.Kind == "" {
		c.DataSource.Kind = "coingecko"
	}
	if c.DataSource.BaseURL == "" {
		c.DataSource.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.DataSource.VsCurrency == "" {
		c.DataSource.VsCurrency = "jpy"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 10 * time.Second
	}
	if c.DataSource.Attempts == 0 {
		c.DataSource.Attempts = 3
	}
	if c.DataSource.RetryDelay == 0 {
		c.DataSource.RetryDelay = 3 * time.Second
	}
	if len(c.Assets) == 0 {
		c.Assets = append([]model.Asset(nil), DefaultAssets...)
	}
	if c.Schedule.UpdateInterval == 0 {
		c.Schedule.UpdateInterval = 30 * time.Second
	}
	if c.Schedule.BackgroundCron == "" {
		c.Schedule.BackgroundCron = "0 */15 * * * *"
	}
	if len(c.Background.SyncAssets) == 0 {
		c.Background.SyncAssets = []string{"bitcoin", "ethereum"}
	}
	if len(c.Background.UpdateAssets) == 0 {
		c.Background.UpdateAssets = []string{"bitcoin", "ethereum", "ripple", "litecoin"}
	}
	if c.Background.Threshold == 0 {
		c.Background.Threshold = 5
	}
	if c.Notifications.Permission == "" {
		c.Notifications.Permission = model.PermissionDefault
	}
	if c.State.File == "" {
		c.State.File = "data/user_state.json"
	}
	if c.State.Prefix == "" {
		c.State.Prefix = "coinsentinel"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/coin_sentinel.db"
	}
	if c.Dashboard.Addr == "" {
		c.Dashboard.Addr = ":8080"
	}
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// AssetsByID resolves ids against the configured asset list.
func (c *Config) AssetsByID(ids []string) ([]model.Asset, error) {
	index := make(map[string]model.Asset, len(c.Assets))
	for _, a := range c.Assets {
		index[a.ID] = a
	}
	out := make([]model.Asset, 0, len(ids))
	for _, id := range ids {
		a, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("asset %q is not configured", id)
		}
		out = append(out, a)
	}
	return out, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	switch c.DataSource.Kind {
	case "coingecko", "mock":
	default:
		return fmt.Errorf("data_source.kind must be coingecko or mock, got %q", c.DataSource.Kind)
	}
	if c.DataSource.Attempts < 1 {
		return fmt.Errorf("data_source.attempts must be at least 1")
	}
	if c.Schedule.UpdateInterval < time.Second {
		return fmt.Errorf("schedule.update_interval must be at least 1s")
	}
	if !c.Schedule.AllowAnyInterval {
		switch c.Schedule.UpdateInterval {
		case 15 * time.Second, 30 * time.Second, 60 * time.Second:
		default:
			return fmt.Errorf("schedule.update_interval must be 15s, 30s or 60s unless allow_any_interval is set")
		}
	}
	switch c.Notifications.Permission {
	case model.PermissionGranted, model.PermissionDenied, model.PermissionDefault:
	default:
		return fmt.Errorf("notifications.permission must be granted, denied or default")
	}
	seen := make(map[string]bool, len(c.Assets))
	for _, a := range c.Assets {
		if a.ID == "" {
			return fmt.Errorf("assets: every asset needs an id")
		}
		if seen[a.ID] {
			return fmt.Errorf("assets: duplicate id %q", a.ID)
		}
		seen[a.ID] = true
	}
	if c.Background.Enabled {
		if _, err := c.AssetsByID(c.Background.SyncAssets); err != nil {
			return fmt.Errorf("background.sync_assets: %w", err)
		}
		if _, err := c.AssetsByID(c.Background.UpdateAssets); err != nil {
			return fmt.Errorf("background.update_assets: %w", err)
		}
	}
	return nil
}
