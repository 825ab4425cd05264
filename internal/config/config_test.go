package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Provider.Source != "tencent" {
		t.Errorf("source = %q", cfg.Provider.Source)
	}
	if cfg.Push.Time != "15:30" || cfg.Push.Retries != 3 {
		t.Errorf("push = %+v", cfg.Push)
	}
	if cfg.Scan.Workers != 8 || cfg.Scan.Limit != 200 {
		t.Errorf("scan = %+v", cfg.Scan)
	}
	if len(cfg.Strategy.MAPeriods) != 4 || cfg.Strategy.MAPeriods[0] != 7 {
		t.Errorf("ma periods = %v", cfg.Strategy.MAPeriods)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFileAndPartialStrategy(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9001
provider:
  source: mock
strategy:
  hammer_shadow_ratio: 2.5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9001 || cfg.Provider.Source != "mock" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Strategy.HammerShadowRatio != 2.5 {
		t.Errorf("hammer ratio = %v", cfg.Strategy.HammerShadowRatio)
	}
	// Unnamed strategy fields keep their defaults.
	if cfg.Strategy.DojiBodyRatio != 0.1 {
		t.Errorf("doji ratio = %v", cfg.Strategy.DojiBodyRatio)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("QUOTE_SOURCE", "mock")
	t.Setenv("SQLITE_PATH", "/tmp/alt.db")
	t.Setenv("PUSH_TIME", "10:00")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 || cfg.Provider.Source != "mock" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Database.SQLitePath != "/tmp/alt.db" || cfg.Push.Time != "10:00" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = -1 }},
		{"bad source", func(c *Config) { c.Provider.Source = "yahoo" }},
		{"no db path", func(c *Config) { c.Database.SQLitePath = "" }},
		{"zero workers", func(c *Config) { c.Scan.Workers = 0 }},
		{"bad strategy", func(c *Config) { c.Strategy.MACDFast = 30 }},
	}
	for _, tt := range tests {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("%s: Load: %v", tt.name, err)
		}
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate should fail", tt.name)
		}
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
