package config

import "time"

// StorageConfig selects where the price snapshot is kept
type StorageConfig struct {
	// Backend: "file" (JSON cache file) or "database" (see DatabaseConfig)
	Type string `mapstructure:"type" validate:"required,oneof=file database"`

	// JSON cache file location (file backend)
	FilePath string `mapstructure:"file_path" validate:"required_if=Type file"`

	// Snapshot age after which prices are refreshed
	StaleAfter time.Duration `mapstructure:"stale_after" validate:"required"`

	// Serve stale prices immediately and refresh in the background
	BackgroundRefresh bool `mapstructure:"background_refresh"`
}
