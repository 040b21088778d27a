package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

// Source kinds an instrument can be read from.
const (
	SourceSensorAPI = "sensor_api"
	SourcePostgres  = "postgres"
)

// Config holds all service configuration.
type Config struct {
	Sampler     domain.SampleOptions `yaml:"sampler"`
	HTTP        HTTPConfig           `yaml:"http"`
	Logging     LoggingConfig        `yaml:"logging"`
	Cache       CacheConfig          `yaml:"cache"`
	Postgres    PostgresConfig       `yaml:"postgres"`
	SensorAPI   SensorAPIConfig      `yaml:"sensor_api"`
	S3          S3Config             `yaml:"s3"`
	RabbitMQ    RabbitMQConfig       `yaml:"rabbitmq"`
	Instruments []InstrumentConfig   `yaml:"instruments"`

	// FrameConcurrency bounds concurrent instrument fetches.
	FrameConcurrency int `yaml:"frame_concurrency"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Development bool   `yaml:"development"` // console encoder, stack traces on warn
	Encoding    string `yaml:"encoding"`    // json or console
}

// CacheConfig configures the Redis frame cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

// PostgresConfig configures the readings database.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SslMode  string `yaml:"sslmode"`
}

// SensorAPIConfig configures the third-party sensor API.
type SensorAPIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// S3Config configures the export archive.
type S3Config struct {
	Enabled   bool          `yaml:"enabled"`
	Endpoint  string        `yaml:"endpoint"`
	Bucket    string        `yaml:"bucket"`
	AccessKey string        `yaml:"access_key"`
	SecretKey string        `yaml:"secret_key"`
	Secure    bool          `yaml:"secure"`
	URLExpiry time.Duration `yaml:"url_expiry"`
}

// RabbitMQConfig configures the frame request queue.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	Queue      string `yaml:"queue"`
}

// InstrumentConfig declares one instrument and where its readings live.
type InstrumentConfig struct {
	ID     string                `yaml:"id"`
	Name   string                `yaml:"name"`
	Kind   domain.InstrumentKind `yaml:"kind"`
	Source string                `yaml:"source"` // sensor_api or postgres
	Path   string                `yaml:"path"`   // sensor_api endpoint path
	Table  string                `yaml:"table"`  // postgres table
}

// Info returns the catalog entry for the instrument.
func (i InstrumentConfig) Info() domain.InstrumentInfo {
	return domain.InstrumentInfo{ID: i.ID, Name: i.Name, Kind: i.Kind}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sampler: domain.DefaultSampleOptions(),
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Cache: CacheConfig{
			Addr:   "localhost:6379",
			TTL:    10 * time.Minute,
			Prefix: "dgmts:",
		},
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			SslMode: "disable",
		},
		SensorAPI: SensorAPIConfig{
			Timeout: 30 * time.Second,
		},
		S3: S3Config{
			Bucket:    "dgmts-exports",
			URLExpiry: 24 * time.Hour,
		},
		RabbitMQ: RabbitMQConfig{
			Exchange:   "frames.exchange",
			RoutingKey: "frames.requested",
			Queue:      "frames.requested.q",
		},
		FrameConcurrency: 8,
	}
}

// Load reads the YAML file at path (optional), loads a .env file if present,
// then applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	// .env is optional; absent file falls back to the process environment.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks sampler options and the instrument list.
func (c *Config) Validate() error {
	if err := c.Sampler.Validate(); err != nil {
		return fmt.Errorf("sampler: %w", err)
	}
	seen := make(map[string]bool, len(c.Instruments))
	var errs []error
	for i, inst := range c.Instruments {
		switch {
		case inst.ID == "":
			errs = append(errs, fmt.Errorf("instruments[%d]: id is required", i))
		case seen[inst.ID]:
			errs = append(errs, fmt.Errorf("instruments[%d]: duplicate id %q", i, inst.ID))
		}
		seen[inst.ID] = true

		switch inst.Source {
		case SourceSensorAPI:
			if inst.Path == "" {
				errs = append(errs, fmt.Errorf("instruments[%d]: path is required for %s", i, SourceSensorAPI))
			}
		case SourcePostgres:
			if inst.Table == "" {
				errs = append(errs, fmt.Errorf("instruments[%d]: table is required for %s", i, SourcePostgres))
			}
		default:
			errs = append(errs, fmt.Errorf("instruments[%d]: unknown source %q", i, inst.Source))
		}
	}
	return errors.Join(errs...)
}

// InstrumentsBySource returns the instruments that read from source.
func (c *Config) InstrumentsBySource(source string) []InstrumentConfig {
	var out []InstrumentConfig
	for _, inst := range c.Instruments {
		if inst.Source == source {
			out = append(out, inst)
		}
	}
	return out
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnvOverrides() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("DGMTS_HTTP_ADDR", &c.HTTP.Addr)
	setString("DGMTS_LOG_LEVEL", &c.Logging.Level)
	setInt("DGMTS_MIN_POINTS", &c.Sampler.MinPoints)

	setString("REDIS_ADDR", &c.Cache.Addr)
	setString("REDIS_PASSWORD", &c.Cache.Password)
	setInt("REDIS_DB", &c.Cache.DB)

	setString("PSQL_HOST", &c.Postgres.Host)
	setInt("PSQL_PORT", &c.Postgres.Port)
	setString("PSQL_USER", &c.Postgres.User)
	setString("PSQL_PASSWORD", &c.Postgres.Password)
	setString("PSQL_DB", &c.Postgres.DBName)
	setString("PSQL_SSLMODE", &c.Postgres.SslMode)

	setString("SENSOR_API_BASE_URL", &c.SensorAPI.BaseURL)
	setString("SENSOR_API_TOKEN", &c.SensorAPI.Token)

	setString("S3_ENDPOINT", &c.S3.Endpoint)
	setString("S3_BUCKET", &c.S3.Bucket)
	setString("S3_ACCESS_KEY", &c.S3.AccessKey)
	setString("S3_SECRET_KEY", &c.S3.SecretKey)

	setString("RABBITMQ_URL", &c.RabbitMQ.URL)
}
