package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "warera.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "warera"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "warera"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// API defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api2.warera.io"
	}
	if cfg.API.Origin == "" {
		cfg.API.Origin = "https://app.warera.io"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.RateLimit.Requests == 0 {
		cfg.API.RateLimit.Requests = 5
	}
	if cfg.API.RateLimit.Burst == 0 {
		cfg.API.RateLimit.Burst = 5
	}
	if cfg.API.Retry.MaxAttempts == 0 {
		cfg.API.Retry.MaxAttempts = 3
	}
	if cfg.API.Retry.BackoffBase == 0 {
		cfg.API.Retry.BackoffBase = 1 * time.Second
	}
	if cfg.API.CircuitBreaker.MaxFailures == 0 {
		cfg.API.CircuitBreaker.MaxFailures = 5
	}
	if cfg.API.CircuitBreaker.Timeout == 0 {
		cfg.API.CircuitBreaker.Timeout = 60 * time.Second
	}
	if cfg.API.ScrapeDelay == 0 {
		cfg.API.ScrapeDelay = 200 * time.Millisecond
	}

	// Economy defaults
	std := economy.StandardDefaults()
	if cfg.Economy.WorkOutputFactor == 0 {
		cfg.Economy.WorkOutputFactor = std.WorkOutputFactor
	}
	if cfg.Economy.AutomationWorkPerLevel == 0 {
		cfg.Economy.AutomationWorkPerLevel = std.AutomationWorkPerLevel
	}
	if cfg.Economy.MissingRecipeWorkPoints == 0 {
		cfg.Economy.MissingRecipeWorkPoints = std.MissingRecipeWorkPoints
	}
	if cfg.Economy.MinLevel == 0 {
		cfg.Economy.MinLevel = std.MinLevel
	}
	if cfg.Economy.MaxLevel == 0 {
		cfg.Economy.MaxLevel = std.MaxLevel
	}
	if cfg.Economy.InternalUseThreshold == 0 {
		cfg.Economy.InternalUseThreshold = std.InternalUseThreshold
	}

	// Storage defaults
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "file"
	}
	if cfg.Storage.FilePath == "" {
		cfg.Storage.FilePath = "market-cache.json"
	}
	if cfg.Storage.StaleAfter == 0 {
		cfg.Storage.StaleAfter = time.Hour
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = "localhost:8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.PIDFile == "" {
		cfg.Server.PIDFile = filepath.Join(os.TempDir(), "warera-server.pid")
	}

	// Metrics defaults
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Resolver defaults
	if cfg.Resolver.ChunkSize == 0 {
		cfg.Resolver.ChunkSize = 50
	}
	if cfg.Resolver.RetryDelay == 0 {
		cfg.Resolver.RetryDelay = time.Second
	}
	if cfg.Resolver.PauseEvery == 0 {
		cfg.Resolver.PauseEvery = 5
	}
	if cfg.Resolver.PauseDuration == 0 {
		cfg.Resolver.PauseDuration = 150 * time.Millisecond
	}
	if cfg.Resolver.CacheTTL == 0 {
		cfg.Resolver.CacheTTL = 24 * time.Hour
	}
	if cfg.Resolver.RankingLimit == 0 {
		cfg.Resolver.RankingLimit = 10000
	}

	// Regions defaults
	if cfg.Regions.TTL == 0 {
		cfg.Regions.TTL = time.Hour
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

// Defaults returns the economy policy for this configuration
func (c *Config) Defaults() economy.Defaults {
	return c.Economy.Defaults()
}
