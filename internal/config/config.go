package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Input bounds enforced for user-facing threshold inputs. The analyzer
// itself only rejects values outside their type-level domain.
const (
	MinVolumeThresholdPct      = 50
	MinPriceChangeThresholdPct = 0.1
	MinHoldingPeriod           = 1
)

// Config holds all application configuration.
type Config struct {
	Analysis struct {
		Symbol                  string  `yaml:"symbol"`
		LookbackDays            int     `yaml:"lookback_days"`
		VolumeThresholdPct      float64 `yaml:"volume_threshold_pct"`
		PriceChangeThresholdPct float64 `yaml:"price_change_threshold_pct"`
		HoldingPeriodDays       int     `yaml:"holding_period_days"`
		MAWindow                int     `yaml:"ma_window"`
		ReturnLag               int     `yaml:"return_lag"`
	} `yaml:"analysis"`
	DataSource struct {
		Provider string `yaml:"provider"`
	} `yaml:"data_source"`
	Cache struct {
		SQLitePath string        `yaml:"sqlite_path"`
		TTL        time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file and a .env file, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	// Threshold defaults are seeded before decoding so that any value the
	// file sets, including a negative one, reaches Validate.
	cfg := &Config{}
	cfg.Analysis.VolumeThresholdPct = 200
	cfg.Analysis.PriceChangeThresholdPct = 2.0

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("BREAKOUT_SYMBOL"); v != "" {
		cfg.Analysis.Symbol = v
	}
	if v := os.Getenv("BREAKOUT_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v, ok := os.LookupEnv("CACHE_SQLITE_PATH"); ok {
		cfg.Cache.SQLitePath = v
		if v == "" {
			cfg.Cache.SQLitePath = "off"
		}
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"BREAKOUT_VOLUME_THRESHOLD", &cfg.Analysis.VolumeThresholdPct},
		{"BREAKOUT_PRICE_THRESHOLD", &cfg.Analysis.PriceChangeThresholdPct},
	}
	for _, f := range floats {
		if v := os.Getenv(f.key); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("parse %s: %w", f.key, err)
			}
			*f.dst = n
		}
	}
	if v := os.Getenv("BREAKOUT_HOLDING_PERIOD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BREAKOUT_HOLDING_PERIOD: %w", err)
		}
		cfg.Analysis.HoldingPeriodDays = n
	}
	return nil
}

func applyDefaults(cfg *Config) {
	cfg.Analysis.Symbol = strings.ToUpper(strings.TrimSpace(cfg.Analysis.Symbol))
	if cfg.Analysis.Symbol == "" {
		cfg.Analysis.Symbol = "AAPL"
	}
	if cfg.Analysis.LookbackDays == 0 {
		cfg.Analysis.LookbackDays = 365
	}
	if cfg.Analysis.HoldingPeriodDays == 0 {
		cfg.Analysis.HoldingPeriodDays = 10
	}
	if cfg.Analysis.MAWindow == 0 {
		cfg.Analysis.MAWindow = 20
	}
	if cfg.Analysis.ReturnLag == 0 {
		cfg.Analysis.ReturnLag = 1
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	switch cfg.Cache.SQLitePath {
	case "":
		cfg.Cache.SQLitePath = ".cache/bars.db"
	case "off":
		cfg.Cache.SQLitePath = ""
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 12 * time.Hour
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 30 22 * * 1-5"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks input bounds and required pairs.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.VolumeThresholdPct < MinVolumeThresholdPct {
		return fmt.Errorf("analysis.volume_threshold_pct must be >= %d, got %.2f", MinVolumeThresholdPct, a.VolumeThresholdPct)
	}
	if a.PriceChangeThresholdPct < MinPriceChangeThresholdPct {
		return fmt.Errorf("analysis.price_change_threshold_pct must be >= %.1f, got %.2f", MinPriceChangeThresholdPct, a.PriceChangeThresholdPct)
	}
	if a.HoldingPeriodDays < MinHoldingPeriod {
		return fmt.Errorf("analysis.holding_period_days must be >= %d, got %d", MinHoldingPeriod, a.HoldingPeriodDays)
	}
	if a.LookbackDays < 1 {
		return fmt.Errorf("analysis.lookback_days must be positive")
	}
	if a.MAWindow < 1 || a.ReturnLag < 1 {
		return fmt.Errorf("analysis.ma_window and analysis.return_lag must be positive")
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether report delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
