package config

import "time"

// APIConfig holds WarEra API client configuration
type APIConfig struct {
	// Base URL for the WarEra API; tRPC procedures live under /trpc
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Session JWT and browser fingerprint sent with every call
	Token       string `mapstructure:"token"`
	Fingerprint string `mapstructure:"fingerprint"`

	// Origin sent with requests; the API checks it against the web client
	Origin string `mapstructure:"origin" validate:"omitempty,url"`

	// Rate limiting settings
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Request timeout
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	// Retry configuration
	Retry RetryConfig `mapstructure:"retry"`

	// Circuit breaker around upstream calls
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Minimum delay between per-item price requests while scraping
	ScrapeDelay time.Duration `mapstructure:"scrape_delay"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Maximum requests per second
	Requests int `mapstructure:"requests" validate:"min=1"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}

// RetryConfig holds retry configuration for failed requests
type RetryConfig struct {
	// Maximum number of retry attempts
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=0"`

	// Base duration for exponential backoff
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}

// CircuitBreakerConfig holds circuit breaker thresholds
type CircuitBreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures" validate:"min=1"`
	Timeout     time.Duration `mapstructure:"timeout"`
}
