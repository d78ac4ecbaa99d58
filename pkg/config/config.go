package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/plugboard/plugboard/pkg/observability"
	"github.com/plugboard/plugboard/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Plugin configuration
	Plugins PluginsConfig

	// Storage configuration
	Storage storage.Config

	// Redis configuration (optional schema backend)
	Redis RedisConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// PluginsConfig holds plugin loading configuration
type PluginsConfig struct {
	// Root is the directory containing one subdirectory per plugin, each
	// with a plugin.yaml manifest and an optional schema/ directory.
	Root string

	// Autoload lists the top-level plugin ids loaded at startup.
	// Dependencies are pulled in transitively and need not be listed.
	Autoload []string

	// LoadTimeout bounds one top-level load call, dependencies included.
	LoadTimeout time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Plugins:       loadPluginsConfig(),
		Storage:       loadStorageConfig(),
		Redis:         loadRedisConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Clone returns a deep copy of the configuration. Loaders capture their
// configuration with Clone so later mutation of the caller's Config cannot
// leak into an in-flight orchestrator.
func (c Config) Clone() Config {
	clone := c
	clone.Plugins.Autoload = append([]string(nil), c.Plugins.Autoload...)
	return clone
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("PLUGBOARD_HOST", "0.0.0.0"),
		Port:            getEnv("PLUGBOARD_PORT", "8080"),
		ReadTimeout:     getEnvDuration("PLUGBOARD_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("PLUGBOARD_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("PLUGBOARD_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("PLUGBOARD_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("PLUGBOARD_HEALTH_PORT", "9090"),
	}
}

// loadPluginsConfig loads plugin configuration from environment
func loadPluginsConfig() PluginsConfig {
	cfg := PluginsConfig{
		Root:        getEnv("PLUGBOARD_PLUGIN_ROOT", "./plugins"),
		LoadTimeout: getEnvDuration("PLUGBOARD_PLUGIN_LOAD_TIMEOUT", 60*time.Second),
	}

	if autoload := getEnv("PLUGBOARD_PLUGINS", ""); autoload != "" {
		for _, id := range strings.Split(autoload, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.Autoload = append(cfg.Autoload, id)
			}
		}
	}

	return cfg
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if driver := getEnv("PLUGBOARD_DB_DRIVER", ""); driver != "" {
		cfg.Driver = driver
	}
	if dsn := getEnv("PLUGBOARD_DB_DSN", ""); dsn != "" {
		cfg.DSN = dsn
	}
	if maxConns := getEnvInt("PLUGBOARD_DB_MAX_CONNS", 0); maxConns > 0 {
		cfg.MaxOpenConns = maxConns
	}
	if idleConns := getEnvInt("PLUGBOARD_DB_IDLE_CONNS", 0); idleConns > 0 {
		cfg.MaxIdleConns = idleConns
	}
	if lifetime := getEnvDuration("PLUGBOARD_DB_CONN_LIFETIME", 0); lifetime > 0 {
		cfg.ConnMaxLifetime = lifetime
	}

	return cfg
}

// loadRedisConfig loads Redis configuration from environment
func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  getEnvBool("PLUGBOARD_REDIS_ENABLED", false),
		Addr:     getEnv("PLUGBOARD_REDIS_ADDR", "localhost:6379"),
		Password: getEnv("PLUGBOARD_REDIS_PASSWORD", ""),
		DB:       getEnvInt("PLUGBOARD_REDIS_DB", 0),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("PLUGBOARD_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("PLUGBOARD_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("PLUGBOARD_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("PLUGBOARD_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("PLUGBOARD_OTEL_SERVICE_NAME", "plugboard"),
		OTelServiceVersion: getEnv("PLUGBOARD_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("PLUGBOARD_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Plugins.Root == "" {
		return fmt.Errorf("plugin root directory is required")
	}

	if err := c.Storage.Validate(); err != nil {
		return err
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
