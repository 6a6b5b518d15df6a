package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlemilk/savetrack/internal/forecast"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "savetrack.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	want := DefaultConfig()
	assert.Equal(t, want, cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, forecast.DefaultConfig(), cfg.Forecast.Predictor())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = "9000"
read_timeout = "5s"

[store]
backend = "sqlite"
dsn = "/tmp/savetrack.db"

[forecast]
window_days = 60
currency_symbol = "$"

[forecast.risk_thresholds]
low = 1.2
medium = 0.6

[jobs]
risk_sweep = "@hourly"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout.Duration)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, 60, cfg.Forecast.WindowDays)
	assert.Equal(t, forecast.DefaultMinDailySamples, cfg.Forecast.MinDailySamples)
	assert.Equal(t, forecast.RiskThresholds{Low: 1.2, Medium: 0.6}, cfg.Forecast.Thresholds)
	assert.Equal(t, "$", cfg.Forecast.CurrencySymbol)
	assert.Equal(t, "@hourly", cfg.Jobs.RiskSweep)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "[server\nport = 1"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORE_BACKEND", BackendFirestore)
	t.Setenv("GOOGLE_CLOUD_PROJECT", "savetrack-test")
	t.Setenv("EXPORT_BUCKET", "reports-bucket")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("FORECAST_WINDOW_DAYS", "14")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, BackendFirestore, cfg.Store.Backend)
	assert.Equal(t, "savetrack-test", cfg.Store.ProjectID)
	assert.Equal(t, "reports-bucket", cfg.Export.Bucket)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 14, cfg.Forecast.WindowDays)
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrideBadNumber(t *testing.T) {
	t.Setenv("FORECAST_WINDOW_DAYS", "a month")
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = "http" }, "not a valid port"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, "unknown store backend"},
		{"firestore without project", func(c *Config) { c.Store.Backend = BackendFirestore }, "project_id"},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = BackendPostgres }, "dsn"},
		{"inverted thresholds", func(c *Config) {
			c.Forecast.Thresholds = forecast.RiskThresholds{Low: 0.5, Medium: 1}
		}, "risk_thresholds"},
		{"bad cron", func(c *Config) { c.Jobs.RiskSweep = "every day" }, "jobs.risk_sweep"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("empty sweep disables the job", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Jobs.RiskSweep = ""
		assert.NoError(t, cfg.Validate())
	})
}
