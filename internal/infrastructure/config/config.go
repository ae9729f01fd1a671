package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Economy  EconomyConfig  `mapstructure:"economy"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Regions  RegionsConfig  `mapstructure:"regions"`
}

// envKeys are bound explicitly so environment variables work without a config file
var envKeys = []string{
	"api.base_url", "api.token", "api.fingerprint", "api.timeout", "api.scrape_delay",
	"api.rate_limit.requests", "api.rate_limit.burst",
	"api.retry.max_attempts", "api.retry.backoff_base",
	"api.circuit_breaker.max_failures", "api.circuit_breaker.timeout",
	"economy.catalog_path", "economy.default_salary",
	"storage.type", "storage.file_path", "storage.stale_after", "storage.background_refresh",
	"database.type", "database.url", "database.path",
	"server.address", "server.pid_file", "metrics.enabled", "metrics.path",
	"logging.level", "logging.format", "logging.output", "logging.file_path",
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	// Set config file details
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/warera")
	}

	// Enable environment variable reading
	v.SetEnvPrefix("WARERA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// Read config file (optional - don't error if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Short names for the session credentials, matching the upstream web client's env vars
	if token := os.Getenv("WARERA_TOKEN"); token != "" {
		v.Set("api.token", token)
	}
	if fingerprint := os.Getenv("WARERA_FINGERPRINT"); fingerprint != "" {
		v.Set("api.fingerprint", fingerprint)
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadConfigOrDefault loads configuration or returns a default config on error
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns a configuration with every default applied
func DefaultConfig() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}

// MustLoadConfig loads configuration and panics on error (for use in main.go)
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
