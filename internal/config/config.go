// Package config loads savetrack settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"

	"github.com/castlemilk/savetrack/internal/forecast"
)

// Store backends.
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
)

// DefaultPath is read when SAVETRACK_CONFIG is unset.
const DefaultPath = "savetrack.toml"

// Config holds all savetrack configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Store    StoreConfig    `toml:"store"`
	Forecast ForecastConfig `toml:"forecast"`
	Jobs     JobsConfig     `toml:"jobs"`
	Export   ExportConfig   `toml:"export"`
}

type ServerConfig struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
	// RequestTimeout bounds a single REST or RPC call.
	RequestTimeout Duration `toml:"request_timeout"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type StoreConfig struct {
	Backend         string `toml:"backend"`
	ProjectID       string `toml:"project_id,omitempty"`
	CredentialsFile string `toml:"credentials_file,omitempty"`
	DSN             string `toml:"dsn,omitempty"`
}

type ForecastConfig struct {
	WindowDays      int                     `toml:"window_days"`
	MinDailySamples int                     `toml:"min_daily_samples"`
	Thresholds      forecast.RiskThresholds `toml:"risk_thresholds"`
	CurrencySymbol  string                  `toml:"currency_symbol"`
}

// Predictor returns the prediction pipeline settings.
func (f ForecastConfig) Predictor() forecast.Config {
	return forecast.Config{
		WindowDays:      f.WindowDays,
		MinDailySamples: f.MinDailySamples,
		Thresholds:      f.Thresholds,
	}
}

type JobsConfig struct {
	// RiskSweep is a cron spec; empty disables the sweep.
	RiskSweep string `toml:"risk_sweep"`
}

type ExportConfig struct {
	Bucket string `toml:"bucket,omitempty"`
	Prefix string `toml:"prefix"`
}

// Duration is a time.Duration written as "15s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	fc := forecast.DefaultConfig()
	return Config{
		Server: ServerConfig{
			Port: "8111",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
			ReadTimeout:    Duration{10 * time.Second},
			WriteTimeout:   Duration{10 * time.Second},
			RequestTimeout: Duration{30 * time.Second},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Backend: BackendMemory,
		},
		Forecast: ForecastConfig{
			WindowDays:      fc.WindowDays,
			MinDailySamples: fc.MinDailySamples,
			Thresholds:      fc.Thresholds,
			CurrencySymbol:  forecast.DefaultCurrencySymbol,
		},
		Jobs: JobsConfig{
			RiskSweep: "0 6 * * *",
		},
		Export: ExportConfig{
			Prefix: "reports",
		},
	}
}

// Path returns the config file location.
func Path() string {
	return getEnv("SAVETRACK_CONFIG", DefaultPath)
}

// Load reads the config file at path, returning defaults if it doesn't
// exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	if origins, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(origins)
	}
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Store.Backend = getEnv("STORE_BACKEND", c.Store.Backend)
	// Kept for deployments that still set the old toggle.
	if getEnv("USE_MEMORY_STORE", "") == "true" {
		c.Store.Backend = BackendMemory
	}
	c.Store.ProjectID = getEnv("GOOGLE_CLOUD_PROJECT", c.Store.ProjectID)
	c.Store.CredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", c.Store.CredentialsFile)
	c.Store.DSN = getEnv("SQL_DSN", c.Store.DSN)

	c.Forecast.CurrencySymbol = getEnv("CURRENCY_SYMBOL", c.Forecast.CurrencySymbol)
	if v, ok := os.LookupEnv("FORECAST_WINDOW_DAYS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FORECAST_WINDOW_DAYS: %w", err)
		}
		c.Forecast.WindowDays = n
	}

	c.Jobs.RiskSweep = getEnv("RISK_SWEEP_SCHEDULE", c.Jobs.RiskSweep)
	c.Export.Bucket = getEnv("EXPORT_BUCKET", c.Export.Bucket)
	c.Export.Prefix = getEnv("EXPORT_PREFIX", c.Export.Prefix)
	return nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if _, err := strconv.ParseUint(c.Server.Port, 10, 16); err != nil {
		return fmt.Errorf("server.port %q is not a valid port", c.Server.Port)
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendFirestore:
		if c.Store.ProjectID == "" {
			return errors.New("store.project_id is required for the firestore backend")
		}
	case BackendSQLite, BackendPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the %s backend", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Forecast.WindowDays < 0 {
		return fmt.Errorf("forecast.window_days must not be negative, got %d", c.Forecast.WindowDays)
	}
	if c.Forecast.MinDailySamples < 0 {
		return fmt.Errorf("forecast.min_daily_samples must not be negative, got %d", c.Forecast.MinDailySamples)
	}
	if err := c.Forecast.Thresholds.Validate(); err != nil {
		return fmt.Errorf("forecast.risk_thresholds: %w", err)
	}

	if c.Jobs.RiskSweep != "" {
		if _, err := cron.ParseStandard(c.Jobs.RiskSweep); err != nil {
			return fmt.Errorf("jobs.risk_sweep: %w", err)
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
