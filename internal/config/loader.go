// Package config loads the baby pool configuration from an optional .env
// file, an optional YAML file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/example/baby-pool/internal/slots"
)

// ConfigPathEnv names the variable pointing at an optional YAML file.
const ConfigPathEnv = "BABYPOOL_CONFIG"

// Config captures the process level settings of the pool. Pool rules such as
// the due date only seed the settings registry; once stored, the registry wins.
type Config struct {
	HTTPPort             int           `yaml:"http_port" env:"BABYPOOL_HTTP_PORT" env-default:"8080"`
	SQLitePath           string        `yaml:"sqlite_path" env:"BABYPOOL_SQLITE_PATH" env-default:"babypool.db"`
	SessionTTL           time.Duration `yaml:"session_ttl" env:"BABYPOOL_SESSION_TTL" env-default:"24h"`
	SessionSweepInterval time.Duration `yaml:"session_sweep_interval" env:"BABYPOOL_SESSION_SWEEP_INTERVAL" env-default:"0s"`
	TimeZone             string        `yaml:"time_zone" env:"BABYPOOL_TIME_ZONE" env-default:"UTC"`

	SitePassword     string `yaml:"site_password" env:"BABYPOOL_SITE_PASSWORD"`
	DueDate          string `yaml:"due_date" env:"BABYPOOL_DUE_DATE"`
	TimeBlockMinutes int    `yaml:"time_block_minutes" env:"BABYPOOL_TIME_BLOCK_MINUTES" env-default:"30"`
	MaxBlockMinutes  int    `yaml:"max_block_minutes" env:"BABYPOOL_MAX_BLOCK_MINUTES" env-default:"60"`
	AllowSurprise    bool   `yaml:"allow_surprise" env:"BABYPOOL_ALLOW_SURPRISE" env-default:"true"`

	LoginRatePerMinute int    `yaml:"login_rate_per_minute" env:"BABYPOOL_LOGIN_RATE_PER_MINUTE" env-default:"10"`
	LoginBurst         int    `yaml:"login_burst" env:"BABYPOOL_LOGIN_BURST" env-default:"5"`
	MetricsEnabled     bool   `yaml:"metrics_enabled" env:"BABYPOOL_METRICS_ENABLED" env-default:"true"`
	StaticDir          string `yaml:"static_dir" env:"BABYPOOL_STATIC_DIR"`

	LogLevel  string `yaml:"log_level" env:"BABYPOOL_LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"BABYPOOL_LOG_FORMAT" env-default:"json"`
}

// Load reads configuration. A .env file in the working directory is applied
// first without overriding variables that are already set; BABYPOOL_CONFIG,
// when set, names a YAML file whose values the environment may override.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path := strings.TrimSpace(os.Getenv(ConfigPathEnv)); path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var invalid []string

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		invalid = append(invalid, "BABYPOOL_HTTP_PORT")
	}
	if strings.TrimSpace(c.SQLitePath) == "" {
		invalid = append(invalid, "BABYPOOL_SQLITE_PATH")
	}
	if c.SessionTTL <= 0 {
		invalid = append(invalid, "BABYPOOL_SESSION_TTL")
	}
	if c.SessionSweepInterval < 0 {
		invalid = append(invalid, "BABYPOOL_SESSION_SWEEP_INTERVAL")
	}
	if _, err := time.LoadLocation(strings.TrimSpace(c.TimeZone)); err != nil {
		invalid = append(invalid, "BABYPOOL_TIME_ZONE")
	}
	if due := strings.TrimSpace(c.DueDate); due != "" {
		if _, err := slots.ParseDate(due); err != nil {
			invalid = append(invalid, "BABYPOOL_DUE_DATE")
		}
	}
	if c.TimeBlockMinutes <= 0 {
		invalid = append(invalid, "BABYPOOL_TIME_BLOCK_MINUTES")
	}
	if c.MaxBlockMinutes < c.TimeBlockMinutes {
		invalid = append(invalid, "BABYPOOL_MAX_BLOCK_MINUTES")
	}
	if c.LoginRatePerMinute <= 0 {
		invalid = append(invalid, "BABYPOOL_LOGIN_RATE_PER_MINUTE")
	}
	if c.LoginBurst <= 0 {
		invalid = append(invalid, "BABYPOOL_LOGIN_BURST")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, "BABYPOOL_LOG_LEVEL")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		invalid = append(invalid, "BABYPOOL_LOG_FORMAT")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(invalid, ", "))
	}
	return nil
}

// ErrInvalidConfig is returned when one or more values fail validation.
var ErrInvalidConfig = errors.New("invalid configuration values")

// Location returns the pool time zone, falling back to UTC when TimeZone
// does not name a known zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(strings.TrimSpace(c.TimeZone))
	if err != nil {
		return time.UTC
	}
	return loc
}

// SQLiteDSN builds the driver DSN for SQLitePath.
func (c Config) SQLiteDSN() string {
	path := strings.TrimSpace(c.SQLitePath)
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
