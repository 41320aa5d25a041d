// Package config provides configuration management for the reshape pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"reshape/internal/models"
)

// Configuration validation errors.
var (
	ErrNoSources                = errors.New("sources.raw_dir or an enabled sources.api is required")
	ErrMissingAPIBaseURL        = errors.New("sources.api.base_url is required when the api is enabled")
	ErrInvalidPageSize          = errors.New("sources.api.page_size must be at least 1")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidCalendarRange     = errors.New("calendar.start_year cannot exceed calendar.end_year")
	ErrMissingCalendarRange     = errors.New("calendar.start_year and calendar.end_year are required unless auto_extend is set")
	ErrInvalidLocationJoin      = errors.New("star.location_join must be 'address_key' or 'attributes'")
	ErrMissingOutputPath        = errors.New("output.base_path is required")
	ErrInvalidOutputFormat      = errors.New("output.formats may only contain json, csv, xlsx, parquet")
	ErrInvalidMaxReported       = errors.New("validation.max_reported must be non-negative")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
	ErrInvalidDriver            = errors.New("stores.relational.driver must be 'postgres' or 'sqlite'")
	ErrMissingDSN               = errors.New("stores.relational.dsn is required when enabled")
	ErrInvalidBatchSize         = errors.New("stores.relational.batch_size must be at least 1")
	ErrInvalidLayout            = errors.New("stores.relational.layouts may only contain normalized, star, snowflake")
	ErrMissingMongoURI          = errors.New("stores.mongo.uri is required when enabled")
	ErrMissingRedisAddr         = errors.New("stores.redis.addr is required when enabled")
	ErrInvalidTTL               = errors.New("stores.redis.ttl values must be non-negative")
)

// Location join strategies for the star schema.
const (
	LocationJoinAddressKey = "address_key"
	LocationJoinAttributes = "attributes"
)

// Environment variables that override file settings.
const (
	EnvLogLevel      = "RESHAPE_LOG_LEVEL"
	EnvPostgresDSN   = "POSTGRES_DSN"
	EnvMongoURI      = "MONGO_URI"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
)

var (
	outputFormats    = []string{"json", "csv", "xlsx", "parquet"}
	relationalLayout = []string{models.LayoutNormalized, models.LayoutStar, models.LayoutSnowflake}
)

// Config represents the complete pipeline configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Stores   StoresConfig   `yaml:"stores"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// PipelineConfig contains the extract, transform and export settings.
type PipelineConfig struct {
	Sources    SourcesConfig    `yaml:"sources"`
	Output     OutputConfig     `yaml:"output"`
	Star       StarConfig       `yaml:"star"`
	Logging    LoggingConfig    `yaml:"logging"`
	Retry      RetryPolicy      `yaml:"retry"`
	Calendar   CalendarConfig   `yaml:"calendar"`
	Normalize  NormalizeConfig  `yaml:"normalize"`
	Validation ValidationConfig `yaml:"validation"`
	Snowflake  SnowflakeConfig  `yaml:"snowflake"`
}

// SourcesConfig says where raw data comes from. When the api is enabled it wins
// over RawDir.
type SourcesConfig struct {
	RawDir string    `yaml:"raw_dir"`
	API    APIConfig `yaml:"api"`
}

// APIConfig configures the paginated upstream API.
type APIConfig struct {
	BaseURL  string `yaml:"base_url"`
	PageSize int    `yaml:"page_size"`
	Enabled  bool   `yaml:"enabled"`
	SaveRaw  bool   `yaml:"save_raw"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// NormalizeConfig seeds the synthetic order dates and statuses.
type NormalizeConfig struct {
	Seed uint64 `yaml:"seed"`
}

// CalendarConfig bounds the date dimension. With AutoExtend the range is widened to
// cover every order date.
type CalendarConfig struct {
	StartYear  int  `yaml:"start_year"`
	EndYear    int  `yaml:"end_year"`
	AutoExtend bool `yaml:"auto_extend"`
}

// StarConfig configures the star projection.
type StarConfig struct {
	LocationJoin string `yaml:"location_join"`
}

// SnowflakeConfig configures the snowflake projection.
type SnowflakeConfig struct {
	Parallel bool `yaml:"parallel"`
}

// OutputConfig defines output behavior.
type OutputConfig struct {
	BasePath    string   `yaml:"base_path"`
	Formats     []string `yaml:"formats"`
	PrettyPrint bool     `yaml:"pretty_print"`
}

// ValidationConfig controls how integrity findings are treated and reported.
type ValidationConfig struct {
	MaxReported    int  `yaml:"max_reported"`
	FailOnWarnings bool `yaml:"fail_on_warnings"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoresConfig lists the optional load targets.
type StoresConfig struct {
	Relational RelationalConfig `yaml:"relational"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Redis      RedisConfig      `yaml:"redis"`
}

// RelationalConfig configures the SQL loader.
type RelationalConfig struct {
	Driver    string   `yaml:"driver"`
	DSN       string   `yaml:"dsn"`
	Layouts   []string `yaml:"layouts"`
	BatchSize int      `yaml:"batch_size"`
	Enabled   bool     `yaml:"enabled"`
	Verify    bool     `yaml:"verify"`
}

// MongoConfig configures the document loader.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	TimeoutSec int    `yaml:"timeout_sec"`
	Enabled    bool   `yaml:"enabled"`
}

// RedisConfig configures the key-value cache loader.
type RedisConfig struct {
	Addr     string    `yaml:"addr"`
	Password string    `yaml:"password"`
	TTL      TTLConfig `yaml:"ttl"`
	DB       int       `yaml:"db"`
	Enabled  bool      `yaml:"enabled"`
}

// TTLConfig holds cache lifetimes per entity in seconds. Zero means no expiry.
type TTLConfig struct {
	UserSec    int `yaml:"user_sec"`
	ProductSec int `yaml:"product_sec"`
	OrderSec   int `yaml:"order_sec"`
}

// MetricsConfig configures the Prometheus textfile output.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns a configuration that reads ./data/raw, writes JSON to ./output and
// loads nothing.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Sources: SourcesConfig{
				RawDir: "./data/raw",
				API:    APIConfig{BaseURL: "https://dummyjson.com", PageSize: 100},
			},
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        5000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
			Normalize:  NormalizeConfig{Seed: 42},
			Calendar:   CalendarConfig{StartYear: 2020, EndYear: 2030, AutoExtend: true},
			Star:       StarConfig{LocationJoin: LocationJoinAddressKey},
			Output:     OutputConfig{BasePath: "./output", Formats: []string{"json"}, PrettyPrint: true},
			Validation: ValidationConfig{MaxReported: 20},
			Logging:    LoggingConfig{Level: "info", Format: "text"},
		},
		Stores: StoresConfig{
			Relational: RelationalConfig{
				Driver:    "postgres",
				BatchSize: 500,
				Layouts:   slices.Clone(relationalLayout),
			},
			Mongo: MongoConfig{Database: "reshape", TimeoutSec: 10},
			Redis: RedisConfig{
				Addr: "localhost:6379",
				TTL:  TTLConfig{UserSec: 3600, ProductSec: 86400, OrderSec: 1800},
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of Default. A .env file next
// to the config is read first; process environment variables take precedence over it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	dotenv, err := readDotEnv(filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := dotenv[key]

		return v, ok
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func readDotEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return env, nil
}

// ApplyEnv overrides connection settings and the log level from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Pipeline.Logging.Level = strings.ToLower(v)
	}

	if v, ok := lookup(EnvPostgresDSN); ok && v != "" {
		c.Stores.Relational.DSN = v
	}

	if v, ok := lookup(EnvMongoURI); ok && v != "" {
		c.Stores.Mongo.URI = v
	}

	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Stores.Redis.Addr = v
	}

	if v, ok := lookup(EnvRedisPassword); ok {
		c.Stores.Redis.Password = v
	}
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	p := &c.Pipeline

	if p.Sources.RawDir == "" && !p.Sources.API.Enabled {
		return ErrNoSources
	}

	if p.Sources.API.Enabled {
		if p.Sources.API.BaseURL == "" {
			return ErrMissingAPIBaseURL
		}

		if p.Sources.API.PageSize < 1 {
			return ErrInvalidPageSize
		}
	}

	if err := p.Retry.Validate(); err != nil {
		return err
	}

	if !p.Calendar.AutoExtend && (p.Calendar.StartYear == 0 || p.Calendar.EndYear == 0) {
		return ErrMissingCalendarRange
	}

	if p.Calendar.StartYear != 0 && p.Calendar.EndYear != 0 && p.Calendar.StartYear > p.Calendar.EndYear {
		return ErrInvalidCalendarRange
	}

	if p.Star.LocationJoin != LocationJoinAddressKey && p.Star.LocationJoin != LocationJoinAttributes {
		return ErrInvalidLocationJoin
	}

	if p.Output.BasePath == "" {
		return ErrMissingOutputPath
	}

	for _, f := range p.Output.Formats {
		if !slices.Contains(outputFormats, f) {
			return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, f)
		}
	}

	if p.Validation.MaxReported < 0 {
		return ErrInvalidMaxReported
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[p.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if p.Logging.Format != "" && p.Logging.Format != "text" && p.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return c.Stores.Validate()
}

// Validate checks the retry policy bounds.
func (rp *RetryPolicy) Validate() error {
	if rp.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if rp.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if rp.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if rp.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	return nil
}

// Validate checks the enabled stores.
func (s *StoresConfig) Validate() error {
	if r := s.Relational; r.Enabled {
		if r.Driver != "postgres" && r.Driver != "sqlite" {
			return ErrInvalidDriver
		}

		if r.DSN == "" {
			return ErrMissingDSN
		}

		if r.BatchSize < 1 {
			return ErrInvalidBatchSize
		}

		for _, l := range r.Layouts {
			if !slices.Contains(relationalLayout, l) {
				return fmt.Errorf("%w: %q", ErrInvalidLayout, l)
			}
		}
	}

	if s.Mongo.Enabled && s.Mongo.URI == "" {
		return ErrMissingMongoURI
	}

	if s.Redis.Enabled {
		if s.Redis.Addr == "" {
			return ErrMissingRedisAddr
		}

		ttl := s.Redis.TTL
		if ttl.UserSec < 0 || ttl.ProductSec < 0 || ttl.OrderSec < 0 {
			return ErrInvalidTTL
		}
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// GetLayoutPath follows structure: {base_path}/{layout}.
func (c *Config) GetLayoutPath(layout string) string {
	return filepath.Join(c.Pipeline.Output.BasePath, layout)
}

// RelationalLayouts returns the layouts to load into the relational store, in load order.
func (c *Config) RelationalLayouts() []string {
	var layouts []string

	for _, l := range relationalLayout {
		if slices.Contains(c.Stores.Relational.Layouts, l) {
			layouts = append(layouts, l)
		}
	}

	return layouts
}

// EntityTTL returns the cache lifetime of an entity collection.
func (t TTLConfig) EntityTTL(entity string) time.Duration {
	switch entity {
	case models.CollectionUsers:
		return time.Duration(t.UserSec) * time.Second
	case models.CollectionProducts:
		return time.Duration(t.ProductSec) * time.Second
	case models.CollectionOrders:
		return time.Duration(t.OrderSec) * time.Second
	default:
		return 0
	}
}

// MongoTimeout returns the connect and operation timeout for the document store.
func (m MongoConfig) MongoTimeout() time.Duration {
	return time.Duration(m.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{RawDir: %s, API: %t, Output: %s, Formats: %v}",
		c.Pipeline.Sources.RawDir,
		c.Pipeline.Sources.API.Enabled,
		c.Pipeline.Output.BasePath,
		c.Pipeline.Output.Formats,
	)
}
