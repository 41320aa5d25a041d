package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
pipeline:
  sources:
    raw_dir: "./testdata/raw"
  retry:
    max_attempts: 3
    initial_delay_ms: 100
    max_delay_ms: 5000
    backoff_multiplier: 2.0
    timeout_sec: 30
  normalize:
    seed: 7
  calendar:
    start_year: 2020
    end_year: 2021
    auto_extend: false
  star:
    location_join: attributes
  snowflake:
    parallel: true
  output:
    base_path: "./out"
    formats: ["json", "csv", "parquet"]
  validation:
    fail_on_warnings: true
    max_reported: 5
  logging:
    level: "debug"
    format: "json"
stores:
  relational:
    enabled: true
    driver: sqlite
    dsn: "file::memory:"
    layouts: ["star", "normalized"]
metrics:
  textfile: "./out/metrics.prom"
`

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Pipeline.Normalize.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", cfg.Pipeline.Normalize.Seed)
	}

	if cfg.Pipeline.Star.LocationJoin != LocationJoinAttributes {
		t.Errorf("Expected attributes join, got %q", cfg.Pipeline.Star.LocationJoin)
	}

	if !cfg.Pipeline.Snowflake.Parallel {
		t.Error("Expected parallel snowflake")
	}

	if len(cfg.Pipeline.Output.Formats) != 3 {
		t.Errorf("Expected 3 formats, got %v", cfg.Pipeline.Output.Formats)
	}

	// Unset sections keep their defaults.
	if cfg.Stores.Relational.BatchSize != 500 {
		t.Errorf("Expected default batch size 500, got %d", cfg.Stores.Relational.BatchSize)
	}

	if cfg.Stores.Redis.TTL.ProductSec != 86400 {
		t.Errorf("Expected default product TTL, got %d", cfg.Stores.Redis.TTL.ProductSec)
	}

	if cfg.Metrics.Textfile != "./out/metrics.prom" {
		t.Errorf("Unexpected metrics textfile %q", cfg.Metrics.Textfile)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestLoadConfig_DotEnvOverrides(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	dotenv := "POSTGRES_DSN=host=db user=etl\nREDIS_PASSWORD=secret\n"
	if err := os.WriteFile(filepath.Join(filepath.Dir(configPath), ".env"), []byte(dotenv), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	t.Setenv(EnvLogLevel, "WARN")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Stores.Relational.DSN != "host=db user=etl" {
		t.Errorf("Expected DSN from .env, got %q", cfg.Stores.Relational.DSN)
	}

	if cfg.Stores.Redis.Password != "secret" {
		t.Errorf("Expected redis password from .env, got %q", cfg.Stores.Redis.Password)
	}

	if cfg.Pipeline.Logging.Level != "warn" {
		t.Errorf("Expected log level from environment, got %q", cfg.Pipeline.Logging.Level)
	}
}

func TestApplyEnv_ProcessWinsOverFile(t *testing.T) {
	cfg := Default()
	env := map[string]string{EnvMongoURI: "mongodb://env:27017", EnvRedisAddr: "cache:6379"}

	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if cfg.Stores.Mongo.URI != "mongodb://env:27017" {
		t.Errorf("Unexpected mongo uri %q", cfg.Stores.Mongo.URI)
	}

	if cfg.Stores.Redis.Addr != "cache:6379" {
		t.Errorf("Unexpected redis addr %q", cfg.Stores.Redis.Addr)
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"no sources", func(c *Config) { c.Pipeline.Sources.RawDir = "" }, ErrNoSources},
		{"api without url", func(c *Config) {
			c.Pipeline.Sources.API.Enabled = true
			c.Pipeline.Sources.API.BaseURL = ""
		}, ErrMissingAPIBaseURL},
		{"api page size", func(c *Config) {
			c.Pipeline.Sources.API.Enabled = true
			c.Pipeline.Sources.API.PageSize = 0
		}, ErrInvalidPageSize},
		{"max attempts", func(c *Config) { c.Pipeline.Retry.MaxAttempts = 0 }, ErrInvalidMaxAttempts},
		{"initial delay", func(c *Config) { c.Pipeline.Retry.InitialDelayMs = -1 }, ErrInvalidInitialDelay},
		{"backoff multiplier", func(c *Config) { c.Pipeline.Retry.BackoffMultiplier = 0.5 }, ErrInvalidBackoffMultiplier},
		{"timeout", func(c *Config) { c.Pipeline.Retry.TimeoutSec = 0 }, ErrInvalidTimeout},
		{"calendar reversed", func(c *Config) {
			c.Pipeline.Calendar.StartYear = 2030
			c.Pipeline.Calendar.EndYear = 2020
		}, ErrInvalidCalendarRange},
		{"calendar missing", func(c *Config) {
			c.Pipeline.Calendar = CalendarConfig{}
		}, ErrMissingCalendarRange},
		{"location join", func(c *Config) { c.Pipeline.Star.LocationJoin = "nearest" }, ErrInvalidLocationJoin},
		{"output path", func(c *Config) { c.Pipeline.Output.BasePath = "" }, ErrMissingOutputPath},
		{"output format", func(c *Config) { c.Pipeline.Output.Formats = []string{"xml"} }, ErrInvalidOutputFormat},
		{"max reported", func(c *Config) { c.Pipeline.Validation.MaxReported = -1 }, ErrInvalidMaxReported},
		{"log level", func(c *Config) { c.Pipeline.Logging.Level = "verbose" }, ErrInvalidLogLevel},
		{"log format", func(c *Config) { c.Pipeline.Logging.Format = "xml" }, ErrInvalidLogFormat},
		{"driver", func(c *Config) {
			c.Stores.Relational.Enabled = true
			c.Stores.Relational.Driver = "mysql"
		}, ErrInvalidDriver},
		{"dsn", func(c *Config) { c.Stores.Relational.Enabled = true }, ErrMissingDSN},
		{"batch size", func(c *Config) {
			c.Stores.Relational.Enabled = true
			c.Stores.Relational.DSN = "x"
			c.Stores.Relational.BatchSize = 0
		}, ErrInvalidBatchSize},
		{"layout", func(c *Config) {
			c.Stores.Relational.Enabled = true
			c.Stores.Relational.DSN = "x"
			c.Stores.Relational.Layouts = []string{"document"}
		}, ErrInvalidLayout},
		{"mongo uri", func(c *Config) { c.Stores.Mongo.Enabled = true }, ErrMissingMongoURI},
		{"redis addr", func(c *Config) {
			c.Stores.Redis.Enabled = true
			c.Stores.Redis.Addr = ""
		}, ErrMissingRedisAddr},
		{"redis ttl", func(c *Config) {
			c.Stores.Redis.Enabled = true
			c.Stores.Redis.TTL.OrderSec = -1
		}, ErrInvalidTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

// --- RetryPolicy Tests ---

func TestRetryPolicy_GetRetryDelay(t *testing.T) {
	rp := RetryPolicy{
		InitialDelayMs:    100,
		MaxDelayMs:        1000,
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 0},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1000 * time.Millisecond},
		{10, 1000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			got := rp.GetRetryDelay(tt.attempt)
			if got != tt.expected {
				t.Errorf("GetRetryDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestRetryPolicy_GetTimeout(t *testing.T) {
	rp := RetryPolicy{TimeoutSec: 30}
	expected := 30 * time.Second

	if got := rp.GetTimeout(); got != expected {
		t.Errorf("GetTimeout() = %v, want %v", got, expected)
	}
}

// --- Config Helper Method Tests ---

func TestConfig_RelationalLayouts(t *testing.T) {
	cfg := Default()
	cfg.Stores.Relational.Layouts = []string{"snowflake", "normalized"}

	got := cfg.RelationalLayouts()
	if len(got) != 2 || got[0] != "normalized" || got[1] != "snowflake" {
		t.Errorf("RelationalLayouts() = %v, want [normalized snowflake]", got)
	}
}

func TestTTLConfig_EntityTTL(t *testing.T) {
	ttl := Default().Stores.Redis.TTL

	tests := []struct {
		entity   string
		expected time.Duration
	}{
		{"users", time.Hour},
		{"products", 24 * time.Hour},
		{"orders", 30 * time.Minute},
		{"unknown", 0},
	}

	for _, tt := range tests {
		if got := ttl.EntityTTL(tt.entity); got != tt.expected {
			t.Errorf("EntityTTL(%q) = %v, want %v", tt.entity, got, tt.expected)
		}
	}
}

func TestConfig_GetLayoutPath(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.Output.BasePath = "/tmp/out"

	if got := cfg.GetLayoutPath("star"); got != "/tmp/out/star" {
		t.Errorf("GetLayoutPath() = %q", got)
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")

	cfg := Default()
	cfg.Pipeline.Normalize.Seed = 99

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Pipeline.Normalize.Seed != 99 {
		t.Errorf("Expected seed 99, got %d", loaded.Pipeline.Normalize.Seed)
	}
}
