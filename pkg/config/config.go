package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Catalog configuration
	Catalog CatalogConfig `mapstructure:"catalog"`

	// Search configuration
	Search SearchConfig `mapstructure:"search"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Explain configuration
	Explain ExplainConfig `mapstructure:"explain"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=debug release test"` // gin mode
}

// DatabaseConfig holds graph store configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"required,oneof=neo4j memory"`
	URI      string `mapstructure:"uri"` // bolt URI, or snapshot path for memory (empty = embedded sample)
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// CatalogConfig points at the company catalog. An empty path builds the
// catalog from the graph store.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// SearchConfig holds search pipeline settings
type SearchConfig struct {
	DefaultPersona      string `mapstructure:"default_persona" validate:"required,oneof=value_investor pe_firm growth_vc strategic_acquirer enterprise_buyer"`
	AttributeLimit      int    `mapstructure:"attribute_limit" validate:"min=1,max=500"`
	GraphTopN           int    `mapstructure:"graph_top_n" validate:"min=0"`
	SummaryTopN         int    `mapstructure:"summary_top_n" validate:"min=1"`
	StrategyConcurrency int    `mapstructure:"strategy_concurrency" validate:"min=1,max=16"`
	PersonaConcurrency  int    `mapstructure:"persona_concurrency" validate:"min=1,max=5"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio" validate:"min=0,max=1"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
	DbURL       string `mapstructure:"db_url"` // MySQL-compatible DSN; empty disables the SQL sink
}

// ExplainConfig holds configuration of the narrative explanation model
type ExplainConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Provider    string  `mapstructure:"provider" validate:"omitempty,oneof=openai"`
	Model       string  `mapstructure:"model" validate:"required_if=Enabled true"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url" validate:"omitempty,url"`
	Temperature float32 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"min=0"`
}

var validate = validator.New()

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	// Set defaults
	setDefaults(viper.GetViper())

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default returns the default configuration without reading files or the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	config := &Config{}
	// Defaults always decode.
	_ = v.Unmarshal(config)
	return config
}

// Validate checks the configuration against its validation tags.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("invalid config: %w", err)
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s failed on '%s' (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")

	// Database defaults
	v.SetDefault("database.driver", "neo4j")
	v.SetDefault("database.uri", "")
	v.SetDefault("database.username", "neo4j")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "neo4j")

	v.SetDefault("catalog.path", "")

	// Search defaults
	v.SetDefault("search.default_persona", "value_investor")
	v.SetDefault("search.attribute_limit", 20)
	v.SetDefault("search.graph_top_n", 10)
	v.SetDefault("search.summary_top_n", 5)
	v.SetDefault("search.strategy_concurrency", 4)
	v.SetDefault("search.persona_concurrency", 5)

	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.max_requests", 1)
	v.SetDefault("circuit_breaker.interval", 60)
	v.SetDefault("circuit_breaker.timeout", 30)
	v.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	v.SetDefault("explain.enabled", false)
	v.SetDefault("explain.provider", "openai")
	v.SetDefault("explain.model", "gpt-4o-mini")
	v.SetDefault("explain.temperature", 0.3)
	v.SetDefault("explain.max_tokens", 600)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		defaultPath := fmt.Sprintf("%s/.investorlens/telemetry", home)
		v.SetDefault("telemetry.parquet_path", defaultPath)
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) error {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Explain.APIKey = apiKey
	}

	// Database credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Database.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Database.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Database.Password = pass
	}

	// Generic database settings
	if dbDriver := os.Getenv("DB_DRIVER"); dbDriver != "" {
		config.Database.Driver = dbDriver
	}
	if dbURI := os.Getenv("DB_URI"); dbURI != "" {
		config.Database.URI = dbURI
	}

	if path := os.Getenv("CATALOG_PATH"); path != "" {
		config.Catalog.Path = path
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT %q: %w", port, err)
		}
		config.Server.Port = p
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
	if dsn := os.Getenv("TELEMETRY_DB_URL"); dsn != "" {
		config.Telemetry.DbURL = dsn
	}
	return nil
}
