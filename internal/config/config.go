package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hirrd/hirrd/internal/gate"
	"github.com/joho/godotenv"
)

const (
	FeedLocal = "local"
	FeedRedis = "redis"

	DefaultRedisAddr          = "localhost:6379"
	DefaultReconnectPerSecond = 2
)

// Config represents the global ~/.hirrd/config.toml.
type Config struct {
	DefaultInstance    string   `toml:"default_instance"`
	UnlockedStates     []string `toml:"unlocked_states"`
	Feed               string   `toml:"feed"`
	RedisAddr          string   `toml:"redis_addr"`
	RedisPassword      string   `toml:"redis_password"`
	RedisDB            int      `toml:"redis_db"`
	ReconnectPerSecond int      `toml:"reconnect_per_second"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.UnlockedStates) == 0 {
		for _, s := range gate.DefaultUnlocked {
			c.UnlockedStates = append(c.UnlockedStates, string(s))
		}
	}
	if c.Feed == "" {
		c.Feed = FeedLocal
	}
	if c.RedisAddr == "" {
		c.RedisAddr = DefaultRedisAddr
	}
	if c.ReconnectPerSecond <= 0 {
		c.ReconnectPerSecond = DefaultReconnectPerSecond
	}
}

// Load reads config from the given path. Returns nil config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Missing
// files are skipped and variables already set are left alone.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides fields from HIRRD_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("HIRRD_DEFAULT_INSTANCE"); ok && v != "" {
		c.DefaultInstance = v
	}
	if v, ok := lookup("HIRRD_UNLOCKED_STATES"); ok && v != "" {
		c.UnlockedStates = nil
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.UnlockedStates = append(c.UnlockedStates, s)
			}
		}
	}
	if v, ok := lookup("HIRRD_FEED"); ok && v != "" {
		c.Feed = v
	}
	if v, ok := lookup("HIRRD_REDIS_ADDR"); ok && v != "" {
		c.RedisAddr = v
	}
	if v, ok := lookup("HIRRD_REDIS_PASSWORD"); ok {
		c.RedisPassword = v
	}
	if v, ok := lookup("HIRRD_REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HIRRD_REDIS_DB: %w", err)
		}
		c.RedisDB = n
	}
	if v, ok := lookup("HIRRD_RECONNECT_PER_SECOND"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HIRRD_RECONNECT_PER_SECOND: %w", err)
		}
		c.ReconnectPerSecond = n
	}
	return nil
}

// Validate checks that the unlocked states and the feed backend are usable.
func (c *Config) Validate() error {
	if _, err := c.Gate(); err != nil {
		return fmt.Errorf("unlocked_states: %w", err)
	}
	switch c.Feed {
	case FeedLocal:
	case FeedRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("feed %q requires redis_addr", c.Feed)
		}
	default:
		return fmt.Errorf("unknown feed %q: want %q or %q", c.Feed, FeedLocal, FeedRedis)
	}
	if c.ReconnectPerSecond <= 0 {
		return fmt.Errorf("reconnect_per_second must be positive, got %d", c.ReconnectPerSecond)
	}
	return nil
}

// Gate builds the messaging gate from UnlockedStates.
func (c *Config) Gate() (*gate.Gate, error) {
	return gate.Parse(c.UnlockedStates)
}
