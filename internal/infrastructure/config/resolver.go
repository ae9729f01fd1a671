package config

import "time"

// ResolverConfig tunes username resolution against the ranking API
type ResolverConfig struct {
	// Users per batched lookup
	ChunkSize int `mapstructure:"chunk_size" validate:"min=1"`

	// Delay before the single retry of a failed chunk
	RetryDelay time.Duration `mapstructure:"retry_delay"`

	// Pause for PauseDuration after every PauseEvery chunks
	PauseEvery    int           `mapstructure:"pause_every" validate:"min=0"`
	PauseDuration time.Duration `mapstructure:"pause_duration"`

	// How long resolved usernames stay cached; 0 keeps them for the process lifetime
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// Number of ranked users scanned
	RankingLimit int `mapstructure:"ranking_limit" validate:"min=1"`
}

// RegionsConfig tunes the region/country directory cache
type RegionsConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"required"`
}
