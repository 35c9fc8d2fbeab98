package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "ams.yaml"

// Config holds all ams configuration. Environment overrides are named
// AMS_<SECTION>_<FIELD>, e.g. AMS_STORE_PATH or AMS_LIST_PAGE_SIZE.
type Config struct {
	BaseURL   string          `yaml:"base_url" split_words:"true" validate:"required,url"`
	Timeout   time.Duration   `yaml:"timeout" validate:"gt=0"`
	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
	List      ListConfig      `yaml:"list"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Report    ReportConfig    `yaml:"report"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console structured"`
}

// StoreConfig selects where the session token and profile are persisted.
// Driver is "sqlite" (default), "redis" or "memory".
type StoreConfig struct {
	Driver      string `yaml:"driver" validate:"oneof=sqlite redis memory"`
	Path        string `yaml:"path" validate:"required_if=Driver sqlite"`
	RedisAddr   string `yaml:"redis_addr" split_words:"true" validate:"required_if=Driver redis"`
	RedisDB     int    `yaml:"redis_db" split_words:"true" validate:"gte=0"`
	RedisPrefix string `yaml:"redis_prefix" split_words:"true"`
}

// ListConfig controls incremental reveal of the audit list.
type ListConfig struct {
	PageSize        int     `yaml:"page_size" split_words:"true" validate:"gt=0"`
	ScrollThreshold float64 `yaml:"scroll_threshold" split_words:"true" validate:"gte=0"`
}

// DashboardConfig sets the trailing windows of the dashboard charts.
type DashboardConfig struct {
	TrendMonths int `yaml:"trend_months" split_words:"true" validate:"gt=0"`
	VolumeYears int `yaml:"volume_years" split_words:"true" validate:"gt=0"`
}

// ReportConfig controls the report generator.
type ReportConfig struct {
	Recent int `yaml:"recent" validate:"gt=0"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		BaseURL: "https://ams-backend-0it4.onrender.com/api/v1",
		Timeout: 30 * time.Second,
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Store: StoreConfig{
			Driver:      "sqlite",
			Path:        defaultStorePath(),
			RedisPrefix: "ams",
		},
		List: ListConfig{
			PageSize:        10,
			ScrollThreshold: 20,
		},
		Dashboard: DashboardConfig{
			TrendMonths: 5,
			VolumeYears: 5,
		},
		Report: ReportConfig{
			Recent: 5,
		},
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ams-session.db"
	}
	return filepath.Join(dir, "ams", "session.db")
}

// Load reads a YAML config file, expands environment variables, applies
// AMS_* overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

// LoadOrDefault behaves like Load but treats a missing file as empty.
func LoadOrDefault(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return parse(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := envconfig.Process("ams", cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
