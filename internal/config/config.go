package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds everything worldwise needs at runtime.
type Config struct {
	APIURL          string
	RequestTimeout  time.Duration // zero means requests are not bounded
	RefreshInterval time.Duration // zero disables background refresh
	LogLevel        slog.Level
	LogFile         string
	Server          ServerConfig
}

// ServerConfig configures the development backend.
type ServerConfig struct {
	Addr     string
	DBPath   string
	SeedPath string
}

const (
	defaultConfigPath = "~/.config/worldwise/config.toml"
	defaultAPIURL     = "http://localhost:9000"
	defaultLogFile    = "~/.local/state/worldwise/worldwise.log"
	defaultServerAddr = ":9000"
	defaultDBPath     = "~/.local/share/worldwise/cities.db"
)

type fileConfig struct {
	APIURL          string `toml:"api_url" yaml:"api_url"`
	RequestTimeout  string `toml:"request_timeout" yaml:"request_timeout"`
	RefreshInterval string `toml:"refresh_interval" yaml:"refresh_interval"`
	LogLevel        string `toml:"log_level" yaml:"log_level"`
	LogFile         string `toml:"log_file" yaml:"log_file"`
	Server          struct {
		Addr     string `toml:"addr" yaml:"addr"`
		DBPath   string `toml:"db_path" yaml:"db_path"`
		SeedPath string `toml:"seed_path" yaml:"seed_path"`
	} `toml:"server" yaml:"server"`
}

type envOverrides struct {
	APIURL          string `env:"WORLDWISE_API_URL"`
	RequestTimeout  string `env:"WORLDWISE_REQUEST_TIMEOUT"`
	RefreshInterval string `env:"WORLDWISE_REFRESH_INTERVAL"`
	LogLevel        string `env:"WORLDWISE_LOG_LEVEL"`
	LogFile         string `env:"WORLDWISE_LOG_FILE"`
	ServerAddr      string `env:"WORLDWISE_SERVER_ADDR"`
	DBPath          string `env:"WORLDWISE_DB_PATH"`
	SeedPath        string `env:"WORLDWISE_SEED_PATH"`
}

// Load reads the config file at path (the default location when empty),
// applies WORLDWISE_* environment overrides and validates the result. A
// missing file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	raw, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	overrides.applyTo(&raw)

	cfg, err := raw.build()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// logLevels are the accepted log_level names, matched case-insensitively.
var logLevels = []any{"debug", "info", "warn", "error"}

// Validate checks value ranges after defaults have been applied.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.RequestTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RefreshInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.LogFile, validation.Required),
		validation.Field(&c.Server),
	)
}

// Validate checks the development backend settings.
func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DBPath, validation.Required),
	)
}

func readFile(path string) (fileConfig, error) {
	var raw fileConfig

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return raw, nil
		}
		return raw, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return raw, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return raw, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return raw, fmt.Errorf("parse config: %w", err)
		}
	}
	return raw, nil
}

func (o envOverrides) applyTo(raw *fileConfig) {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&raw.APIURL, o.APIURL)
	set(&raw.RequestTimeout, o.RequestTimeout)
	set(&raw.RefreshInterval, o.RefreshInterval)
	set(&raw.LogLevel, o.LogLevel)
	set(&raw.LogFile, o.LogFile)
	set(&raw.Server.Addr, o.ServerAddr)
	set(&raw.Server.DBPath, o.DBPath)
	set(&raw.Server.SeedPath, o.SeedPath)
}

func (raw fileConfig) build() (Config, error) {
	cfg := Config{
		APIURL:   orDefault(raw.APIURL, defaultAPIURL),
		LogLevel: slog.LevelInfo,
		LogFile:  mustExpand(orDefault(raw.LogFile, defaultLogFile)),
		Server: ServerConfig{
			Addr:   orDefault(raw.Server.Addr, defaultServerAddr),
			DBPath: mustExpand(orDefault(raw.Server.DBPath, defaultDBPath)),
		},
	}
	if !strings.Contains(cfg.APIURL, "://") {
		cfg.APIURL = "http://" + cfg.APIURL
	}
	if seed := strings.TrimSpace(raw.Server.SeedPath); seed != "" {
		cfg.Server.SeedPath = mustExpand(seed)
	}

	var err error
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RefreshInterval, err = parseDuration("refresh_interval", raw.RefreshInterval); err != nil {
		return Config{}, err
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		if err := validation.Validate(strings.ToLower(level), validation.In(logLevels...)); err != nil {
			return Config{}, fmt.Errorf("parse config: log_level %q: %w", level, err)
		}
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return Config{}, fmt.Errorf("parse config: log_level: %w", err)
		}
	}
	return cfg, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", key, err)
	}
	return d, nil
}

func httpURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use http or https")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
