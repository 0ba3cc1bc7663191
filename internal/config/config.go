package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"PriceSweep/internal/window"
)

// Config holds all application configuration.
type Config struct {
	Source struct {
		CSVPath    string `yaml:"csv_path"`
		DateFormat string `yaml:"date_format"`
		Symbol     string `yaml:"symbol"`
		Range      string `yaml:"range"`
		BaseURL    string `yaml:"base_url"`
		APIKey     string `yaml:"api_key"`
	} `yaml:"source"`
	Output struct {
		CSVPath   string `yaml:"csv_path"`
		ChartPath string `yaml:"chart_path"`
	} `yaml:"output"`
	Filter struct {
		// Maximum fractional deviation from the window baseline,
		// e.g. 0.05 for 5%.
		AcceptablePcntChange float64 `yaml:"acceptable_pcnt_change"`
		WindowSize           int     `yaml:"window_size"`
		Reference            string  `yaml:"reference"`
	} `yaml:"filter"`
	Schedule struct {
		Cron             string  `yaml:"cron"`
		AlertRejectRatio float64 `yaml:"alert_reject_ratio"`
		StateFile        string  `yaml:"state_file"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
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

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("BARS_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("BARS_API_KEY"); v != "" {
		cfg.Source.APIKey = v
	}
	if v := os.Getenv("SERIES_CSV_PATH"); v != "" {
		cfg.Source.CSVPath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("ACCEPTABLE_PCNT_CHANGE"); v != "" {
		var pcnt float64
		if _, err := fmt.Sscanf(v, "%f", &pcnt); err == nil {
			cfg.Filter.AcceptablePcntChange = pcnt
		}
	}
	if v := os.Getenv("WINDOW_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Filter.WindowSize = n
		}
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Filter.AcceptablePcntChange == 0 {
		cfg.Filter.AcceptablePcntChange = 0.05
	}
	if cfg.Filter.WindowSize == 0 {
		cfg.Filter.WindowSize = 5
	}
	if cfg.Filter.Reference == "" {
		cfg.Filter.Reference = "mean"
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 7 * * 1-5"
	}
	if cfg.Schedule.AlertRejectRatio == 0 {
		cfg.Schedule.AlertRejectRatio = 0.10
	}
	if cfg.Schedule.StateFile == "" {
		cfg.Schedule.StateFile = "data/run_state.json"
	}

	return cfg, nil
}

// Validate checks that the pipeline has a source to read and sane filter
// settings. Telegram and the database are optional.
func (c *Config) Validate() error {
	t := c.Filter.AcceptablePcntChange
	if math.IsNaN(t) || t <= 0 || t > 1 {
		return fmt.Errorf("filter.acceptable_pcnt_change must be within (0, 1], got %v", t)
	}
	if c.Filter.WindowSize < 1 {
		return fmt.Errorf("filter.window_size must be at least 1, got %d", c.Filter.WindowSize)
	}
	if _, err := window.ParseStatistic(c.Filter.Reference); err != nil {
		return fmt.Errorf("filter.reference: %w", err)
	}
	if c.Source.CSVPath == "" && c.Source.Symbol == "" && c.Source.BaseURL == "" {
		return fmt.Errorf("no series source configured: set one of source.csv_path, source.symbol or source.base_url")
	}
	if c.Source.BaseURL != "" && c.Source.Symbol == "" {
		return fmt.Errorf("source.symbol is required when source.base_url is set")
	}
	r := c.Schedule.AlertRejectRatio
	if math.IsNaN(r) || r < 0 || r > 1 {
		return fmt.Errorf("schedule.alert_reject_ratio must be within [0, 1], got %v", r)
	}
	return nil
}
