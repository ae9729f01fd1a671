package config

// MetricsConfig exposes Prometheus metrics on the API server.
// "warera serve --metrics" turns them on regardless of Enabled.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
