// Package config provides configuration loading for meshbrowse using TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"meshbrowse/logger"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Daemon settings for the local mesh daemon.
type Daemon struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	PollSeconds    int    `toml:"poll_seconds"` // status poll interval, 5-30
}

// Server settings for the viewer surfaces.
type Server struct {
	Listen       string `toml:"listen"`
	RewriteLinks bool   `toml:"rewrite_links"` // point ctt:// anchors in HTML content back at /open
}

// Store settings for session content.
type Store struct {
	Backend           string `toml:"backend"` // "memory" or "redis"
	RedisAddress      string `toml:"redis_address"`
	RedisPassword     string `toml:"redis_password"`
	RedisDB           int    `toml:"redis_db"`
	SessionTTLMinutes int    `toml:"session_ttl_minutes"`
	CompressThreshold int    `toml:"compress_threshold"` // bytes; redis payloads above are zstd-compressed
}

// Bridge settings for the reference daemon bridge.
type Bridge struct {
	Listen   string `toml:"listen"`
	CacheDir string `toml:"cache_dir"`
	Compress bool   `toml:"compress"`
}

// Config is the main configuration struct.
type Config struct {
	Daemon Daemon        `toml:"daemon"`
	Server Server        `toml:"server"`
	Store  Store         `toml:"store"`
	Bridge Bridge        `toml:"bridge"`
	Log    logger.Config `toml:"log"`
}

const (
	minPollSeconds = 5
	maxPollSeconds = 30
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Daemon: Daemon{
			URL:            "http://localhost:8765",
			TimeoutSeconds: 5,
			PollSeconds:    30,
		},
		Server: Server{
			Listen:       "127.0.0.1:8766",
			RewriteLinks: true,
		},
		Store: Store{
			Backend:           "memory",
			RedisAddress:      "localhost:6379",
			SessionTTLMinutes: 12 * 60,
			CompressThreshold: 1024,
		},
		Bridge: Bridge{
			Listen:   "127.0.0.1:8765",
			CacheDir: "~/.ctt-mesh/content",
		},
		Log: logger.Config{
			Level: "info",
		},
	}
}

// DaemonTimeout returns the bounded request timeout for daemon calls.
func (c *Config) DaemonTimeout() time.Duration {
	return time.Duration(c.Daemon.TimeoutSeconds) * time.Second
}

// PollInterval returns the daemon status poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Daemon.PollSeconds) * time.Second
}

// SessionTTL returns how long session content lives without activity.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Store.SessionTTLMinutes) * time.Minute
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.Daemon.URL == "":
		return fmt.Errorf("%w: daemon.url is empty", ErrInvalid)
	case c.Daemon.TimeoutSeconds <= 0:
		return fmt.Errorf("%w: daemon.timeout_seconds must be positive", ErrInvalid)
	case c.Daemon.PollSeconds < minPollSeconds || c.Daemon.PollSeconds > maxPollSeconds:
		return fmt.Errorf("%w: daemon.poll_seconds must be between %d and %d",
			ErrInvalid, minPollSeconds, maxPollSeconds)
	case c.Store.Backend != "memory" && c.Store.Backend != "redis":
		return fmt.Errorf("%w: store.backend %q (want memory or redis)", ErrInvalid, c.Store.Backend)
	case c.Store.SessionTTLMinutes <= 0:
		return fmt.Errorf("%w: store.session_ttl_minutes must be positive", ErrInvalid)
	case c.Store.CompressThreshold < 0:
		return fmt.Errorf("%w: store.compress_threshold is negative", ErrInvalid)
	}
	return nil
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "meshbrowse"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "meshbrowse"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load layers the TOML file at path on top of defaults. An empty path
// means the user config file; a missing user config yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return cfg, nil
	}

	// Decoding onto the defaults keeps every key the file leaves out.
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// DefaultTOML returns the default configuration as a TOML document.
// Used by `meshbrowse config init`.
func DefaultTOML() (string, error) {
	var buf bytes.Buffer
	buf.WriteString("# meshbrowse configuration\n")
	buf.WriteString("# Save to ~/.config/meshbrowse/config.toml and customize\n\n")
	if err := toml.NewEncoder(&buf).Encode(Default()); err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}
	return buf.String(), nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// FormatError formats a configuration error for user display.
func FormatError(err error) string {
	return fmt.Sprintf("Configuration error:\n\n%s", err.Error())
}
