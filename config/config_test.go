package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.DaemonTimeout().Seconds() != 5 {
		t.Errorf("expected 5s daemon timeout, got %v", cfg.DaemonTimeout())
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[daemon]
url = "http://127.0.0.1:9999"
poll_seconds = 5

[server]
rewrite_links = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Daemon.URL != "http://127.0.0.1:9999" {
		t.Errorf("url not overridden: %q", cfg.Daemon.URL)
	}
	if cfg.Daemon.PollSeconds != 5 {
		t.Errorf("poll not overridden: %d", cfg.Daemon.PollSeconds)
	}
	if cfg.Daemon.TimeoutSeconds != 5 {
		t.Errorf("timeout default lost: %d", cfg.Daemon.TimeoutSeconds)
	}
	if cfg.Server.RewriteLinks {
		t.Error("explicit false should override default true")
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("store default lost: %q", cfg.Store.Backend)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[daemon]\nurll = \"x\"\n")
	_, err := Load(path)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "daemon.urll") {
		t.Errorf("error should name the key: %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadMissingUserFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Daemon.URL != Default().Daemon.URL {
		t.Errorf("expected defaults, got %+v", cfg.Daemon)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.Daemon.URL = "" }},
		{"zero timeout", func(c *Config) { c.Daemon.TimeoutSeconds = 0 }},
		{"poll too fast", func(c *Config) { c.Daemon.PollSeconds = 1 }},
		{"poll too slow", func(c *Config) { c.Daemon.PollSeconds = 60 }},
		{"bad backend", func(c *Config) { c.Store.Backend = "disk" }},
		{"zero ttl", func(c *Config) { c.Store.SessionTTLMinutes = 0 }},
		{"negative threshold", func(c *Config) { c.Store.CompressThreshold = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestDefaultTOMLRoundTrip(t *testing.T) {
	out, err := DefaultTOML()
	if err != nil {
		t.Fatalf("DefaultTOML failed: %v", err)
	}
	var cfg Config
	if _, err := toml.Decode(out, &cfg); err != nil {
		t.Fatalf("default TOML does not parse: %v", err)
	}
	if cfg.Daemon != Default().Daemon {
		t.Errorf("daemon section changed: %+v", cfg.Daemon)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := ExpandHome("~/cache"); got != "/home/tester/cache" {
		t.Errorf("ExpandHome = %q", got)
	}
	if got := ExpandHome("/abs"); got != "/abs" {
		t.Errorf("ExpandHome changed absolute path: %q", got)
	}
}
