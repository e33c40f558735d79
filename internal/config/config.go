// Package config holds runtime settings. Values come from defaults, then an
// optional YAML file, then FOCUSFLOW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/focusflow/internal/breakdown"
	"github.com/sandeepkv93/focusflow/internal/model"
	"github.com/sandeepkv93/focusflow/internal/storage"
	"github.com/sandeepkv93/focusflow/internal/timer"
)

type TimerConfig struct {
	WorkSeconds       int `yaml:"work_seconds" mapstructure:"work_seconds"`
	ShortBreakSeconds int `yaml:"short_break_seconds" mapstructure:"short_break_seconds"`
	LongBreakSeconds  int `yaml:"long_break_seconds" mapstructure:"long_break_seconds"`
	LongBreakEvery    int `yaml:"long_break_every" mapstructure:"long_break_every"`
}

type StorageConfig struct {
	Backend storage.Backend `yaml:"backend" mapstructure:"backend"`
	Path    string          `yaml:"path" mapstructure:"path"`
	Key     string          `yaml:"key" mapstructure:"key"`
}

type BreakdownConfig struct {
	APIKey string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Model  string `yaml:"model" mapstructure:"model"`
}

type UIConfig struct {
	DesktopNotifications bool          `yaml:"desktop_notifications" mapstructure:"desktop_notifications"`
	TickInterval         time.Duration `yaml:"tick_interval" mapstructure:"tick_interval"`
	TickBuffer           int           `yaml:"tick_buffer" mapstructure:"tick_buffer"`
}

type Config struct {
	Timer     TimerConfig     `yaml:"timer" mapstructure:"timer"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Breakdown BreakdownConfig `yaml:"breakdown" mapstructure:"breakdown"`
	UI        UIConfig        `yaml:"ui" mapstructure:"ui"`
	LogFile   string          `yaml:"log_file" mapstructure:"log_file"`
}

func Default() Config {
	d := timer.DefaultDurations()
	return Config{
		Timer: TimerConfig{
			WorkSeconds:       d.Work,
			ShortBreakSeconds: d.ShortBreak,
			LongBreakSeconds:  d.LongBreak,
			LongBreakEvery:    d.LongBreakEvery,
		},
		Storage: StorageConfig{
			Backend: storage.BackendSQLite,
			Path:    DefaultStorePath(storage.BackendSQLite),
			Key:     storage.DefaultTaskKey,
		},
		Breakdown: BreakdownConfig{
			Model: breakdown.DefaultModel,
		},
		UI: UIConfig{
			TickInterval: time.Second,
			TickBuffer:   4,
		},
	}
}

// DefaultStorePath is the per-user data file for backend.
func DefaultStorePath(backend storage.Backend) string {
	name := "focusflow.db"
	if backend == storage.BackendFile {
		name = "focusflow.json"
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "focusflow", name)
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "focusflow.yaml"
	}
	return filepath.Join(dir, "focusflow", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv overlays FOCUSFLOW_* variables on base. Unparseable or
// non-positive numbers are ignored.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvInt("FOCUSFLOW_WORK_SECONDS"); ok && v > 0 {
		cfg.Timer.WorkSeconds = v
	}
	if v, ok := getEnvInt("FOCUSFLOW_SHORT_BREAK_SECONDS"); ok && v > 0 {
		cfg.Timer.ShortBreakSeconds = v
	}
	if v, ok := getEnvInt("FOCUSFLOW_LONG_BREAK_SECONDS"); ok && v > 0 {
		cfg.Timer.LongBreakSeconds = v
	}
	if v, ok := getEnvInt("FOCUSFLOW_LONG_BREAK_EVERY"); ok && v > 0 {
		cfg.Timer.LongBreakEvery = v
	}
	if v := strings.TrimSpace(os.Getenv("FOCUSFLOW_STORE_BACKEND")); v != "" {
		cfg.Storage.Backend = storage.Backend(strings.ToLower(v))
	}
	if v := strings.TrimSpace(os.Getenv("FOCUSFLOW_STORE_PATH")); v != "" {
		cfg.Storage.Path = v
	}
	if v, ok := getEnvBool("FOCUSFLOW_DESKTOP_NOTIFICATIONS"); ok {
		cfg.UI.DesktopNotifications = v
	}
	if v := strings.TrimSpace(os.Getenv("FOCUSFLOW_LOG_FILE")); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(os.Getenv("FOCUSFLOW_MODEL")); v != "" {
		cfg.Breakdown.Model = v
	}
	for _, name := range []string{"FOCUSFLOW_API_KEY", "GEMINI_API_KEY", "API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			cfg.Breakdown.APIKey = v
			break
		}
	}
	return cfg
}

func (c Config) Durations() timer.Durations {
	return timer.Durations{
		Work:           c.Timer.WorkSeconds,
		ShortBreak:     c.Timer.ShortBreakSeconds,
		LongBreak:      c.Timer.LongBreakSeconds,
		LongBreakEvery: c.Timer.LongBreakEvery,
	}
}

// Validate reports settings the program cannot start with as configuration
// errors.
func (c Config) Validate() error {
	if err := c.Durations().Validate(); err != nil {
		return invalid(err)
	}
	switch c.Storage.Backend {
	case storage.BackendSQLite, storage.BackendFile:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return invalid(fmt.Errorf("storage path is required for backend %q", c.Storage.Backend))
		}
	case storage.BackendMemory:
	default:
		return invalid(fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	if c.UI.TickInterval <= 0 {
		return invalid(errors.New("tick interval must be positive"))
	}
	return nil
}

func invalid(cause error) error {
	return &model.Error{Kind: model.KindConfiguration, Message: "invalid config: " + cause.Error(), Err: cause}
}

// YAML renders the effective config with the credential masked.
func (c Config) YAML() (string, error) {
	out := c
	if out.Breakdown.APIKey != "" {
		out.Breakdown.APIKey = "********"
	}
	b, err := yaml.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(b), nil
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
