package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Filter.AcceptablePcntChange != 0.05 {
		t.Errorf("expected default threshold 0.05, got %v", cfg.Filter.AcceptablePcntChange)
	}
	if cfg.Filter.WindowSize != 5 {
		t.Errorf("expected default window size 5, got %d", cfg.Filter.WindowSize)
	}
	if cfg.Filter.Reference != "mean" {
		t.Errorf("expected default reference mean, got %q", cfg.Filter.Reference)
	}
	if cfg.Schedule.AlertRejectRatio != 0.10 {
		t.Errorf("expected default alert ratio 0.10, got %v", cfg.Schedule.AlertRejectRatio)
	}
}

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "filter:\n  acceptable_pcnt_change: 0.1\n  window_size: 7\nsource:\n  csv_path: data/Outliers.csv\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WINDOW_SIZE", "9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Filter.AcceptablePcntChange != 0.1 {
		t.Errorf("expected file threshold 0.1, got %v", cfg.Filter.AcceptablePcntChange)
	}
	if cfg.Filter.WindowSize != 9 {
		t.Errorf("expected env to override window size to 9, got %d", cfg.Filter.WindowSize)
	}
	if cfg.Source.CSVPath != "data/Outliers.csv" {
		t.Errorf("expected csv path from file, got %q", cfg.Source.CSVPath)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Source.CSVPath = "data/Outliers.csv"
		cfg.Filter.AcceptablePcntChange = 0.05
		cfg.Filter.WindowSize = 5
		cfg.Filter.Reference = "mean"
		cfg.Schedule.AlertRejectRatio = 0.10
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("expected valid base config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero threshold", func(c *Config) { c.Filter.AcceptablePcntChange = 0 }},
		{"threshold above one", func(c *Config) { c.Filter.AcceptablePcntChange = 1.5 }},
		{"zero window", func(c *Config) { c.Filter.WindowSize = 0 }},
		{"unknown reference", func(c *Config) { c.Filter.Reference = "mode" }},
		{"no source", func(c *Config) { c.Source.CSVPath = "" }},
		{"base url without symbol", func(c *Config) { c.Source.BaseURL = "http://localhost:8080" }},
		{"alert ratio above one", func(c *Config) { c.Schedule.AlertRejectRatio = 2 }},
	}
	for _, c := range cases {
		cfg := base()
		c.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected a validation error, got none", c.name)
		}
	}
}
