// Load envs from .env
// Load YAML config
// Apply env overrides and defaults
// Validate config

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"

	FetchHTTP    = "http"
	FetchBrowser = "browser"
)

var (
	ErrUnknownBackend     = errors.New("unknown snapshot backend")
	ErrMissingRedisURL    = errors.New("REDIS_URL is required for the redis backend")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required for the postgres backend")
	ErrUnknownFetchMode   = errors.New("unknown fetch mode")
	ErrInvalidChatID      = errors.New("invalid TELEGRAM_CHAT_ID")
	ErrUnnamedSource      = errors.New("source without a name")
)

type SnapshotConfig struct {
	Backend     string `yaml:"backend"`
	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`
}

type FetchConfig struct {
	TimeoutSec    int    `yaml:"timeout_sec"`
	UserAgent     string `yaml:"user_agent"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

type NotifyConfig struct {
	BatchPauseMs int `yaml:"batch_pause_ms"`
}

type ScheduleConfig struct {
	Spec string `yaml:"spec"`
}

// SourceConfig selects a catalogue source for a city and tunes it.
type SourceConfig struct {
	Name             string   `yaml:"name"`
	URL              string   `yaml:"url"`
	Fetch            string   `yaml:"fetch"`
	ExcludeKeywords  []string `yaml:"exclude_keywords"`
	PersistUnchanged bool     `yaml:"persist_unchanged"`
}

type CityConfig struct {
	Sources []SourceConfig `yaml:"sources"`
}

type Config struct {
	LogLevel string `yaml:"log_level"`
	// RootDir holds the flat legacy snapshot files, DataDir the per-city ones.
	RootDir  string                `yaml:"root_dir"`
	DataDir  string                `yaml:"data_dir"`
	Snapshot SnapshotConfig        `yaml:"snapshot"`
	Fetch    FetchConfig           `yaml:"fetch"`
	Notify   NotifyConfig          `yaml:"notify"`
	Schedule ScheduleConfig        `yaml:"schedule"`
	Cities   map[string]CityConfig `yaml:"cities"`

	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	getenv func(string) string
}

// Load reads .env, then the YAML file at path, then environment overrides.
// A missing YAML file is not an error: defaults are used.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	cfg := &Config{getenv: getenv}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("could not read config file, using defaults", "path", path, "error", err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"LOG_LEVEL":          &c.LogLevel,
		"DATA_DIR":           &c.DataDir,
		"SNAPSHOT_BACKEND":   &c.Snapshot.Backend,
		"REDIS_URL":          &c.Snapshot.RedisURL,
		"DATABASE_URL":       &c.Snapshot.DatabaseURL,
		"TELEGRAM_BOT_TOKEN": &c.TelegramToken,
	}
	for env, field := range overrides {
		if v := c.getenv(env); v != "" {
			*field = v
		}
	}

	if chatID := c.getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidChatID, err)
		}
		c.TelegramChatID = id
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RootDir == "" {
		c.RootDir = "."
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = BackendFile
	}
	if c.Fetch.TimeoutSec <= 0 {
		c.Fetch.TimeoutSec = 30
	}
	if c.Fetch.ScreenshotDir == "" {
		c.Fetch.ScreenshotDir = "logs/screenshots"
	}
	if c.Notify.BatchPauseMs <= 0 {
		c.Notify.BatchPauseMs = 1000
	}
	if c.Schedule.Spec == "" {
		c.Schedule.Spec = "@every 6h"
	}
	if len(c.Cities) == 0 {
		c.Cities = defaultCities()
	}
	for name, city := range c.Cities {
		for i := range city.Sources {
			if city.Sources[i].Fetch == "" {
				city.Sources[i].Fetch = FetchHTTP
			}
		}
		c.Cities[name] = city
	}
}

// defaultCities mirrors the deployed city runs. halifax-csds-jobs has no
// scraper yet and is reported as not found.
func defaultCities() map[string]CityConfig {
	return map[string]CityConfig{
		"halifax": {Sources: []SourceConfig{
			{Name: "halifax-dns-jobs"},
			{Name: "halifax-csds-jobs"},
			{Name: "halifax-dns-events"},
		}},
		"toronto": {Sources: []SourceConfig{
			{Name: "toronto-techto-jobs"},
			{Name: "toronto-techto-events"},
		}},
		"legacy": {Sources: []SourceConfig{
			{Name: "dns-jobs"},
			{Name: "dns-events"},
			{Name: "ns-jobs"},
		}},
	}
}

func (c *Config) Validate() error {
	switch c.Snapshot.Backend {
	case BackendFile:
	case BackendRedis:
		if c.Snapshot.RedisURL == "" {
			return ErrMissingRedisURL
		}
	case BackendPostgres:
		if c.Snapshot.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Snapshot.Backend)
	}

	for city, cc := range c.Cities {
		for _, s := range cc.Sources {
			if strings.TrimSpace(s.Name) == "" {
				return fmt.Errorf("%w in city %s", ErrUnnamedSource, city)
			}
			if s.Fetch != FetchHTTP && s.Fetch != FetchBrowser {
				return fmt.Errorf("%w %q for %s", ErrUnknownFetchMode, s.Fetch, s.Name)
			}
		}
	}
	return nil
}

// CityNames returns the configured cities in sorted order.
func (c *Config) CityNames() []string {
	names := make([]string, 0, len(c.Cities))
	for name := range c.Cities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Webhook reads a webhook URL from the environment. Empty means not configured.
func (c *Config) Webhook(env string) string {
	getenv := c.getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return strings.TrimSpace(getenv(env))
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSec) * time.Second
}

func (c *Config) BatchPause() time.Duration {
	return time.Duration(c.Notify.BatchPauseMs) * time.Millisecond
}

// UsesBrowser reports whether any configured source renders with Playwright.
func (c *Config) UsesBrowser() bool {
	for _, city := range c.Cities {
		for _, s := range city.Sources {
			if s.Fetch == FetchBrowser {
				return true
			}
		}
	}
	return false
}
