package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

// UserConfig represents user preferences stored in ~/.warera/config.json
// This file stores ONLY preferences, never tokens or secrets
type UserConfig struct {
	// Salary per work point used when not specified via CLI
	DefaultSalary *float64 `json:"default_salary,omitempty"`

	// Manual price overrides, merged over scraped prices
	PriceOverrides map[string]float64 `json:"price_overrides,omitempty"`

	// Last looked-up player for the playground command
	DefaultUsername string `json:"default_username,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a new user config handler
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".warera", "config.json"))
}

// NewUserConfigHandlerAt creates a handler bound to an explicit file path
func NewUserConfigHandlerAt(configPath string) (*UserConfigHandler, error) {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return &UserConfigHandler{
		configPath: configPath,
	}, nil
}

// Load reads the user config from disk
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	// If file doesn't exist, return empty config
	if _, err := os.Stat(h.configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(h.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var config UserConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return &config, nil
}

// Save writes the user config to disk
func (h *UserConfigHandler) Save(config *UserConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(h.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}

// SetDefaultSalary sets the salary per work point
func (h *UserConfigHandler) SetDefaultSalary(salary float64) error {
	if salary < 0 {
		return fmt.Errorf("salary must be non-negative, got %v", salary)
	}

	config, err := h.Load()
	if err != nil {
		return err
	}

	config.DefaultSalary = &salary
	return h.Save(config)
}

// SetPriceOverride pins the price of one item
func (h *UserConfigHandler) SetPriceOverride(itemID string, price float64) error {
	if price < 0 {
		return fmt.Errorf("price must be non-negative, got %v", price)
	}

	config, err := h.Load()
	if err != nil {
		return err
	}

	if config.PriceOverrides == nil {
		config.PriceOverrides = make(map[string]float64)
	}
	config.PriceOverrides[recipe.NormalizeID(itemID)] = price
	return h.Save(config)
}

// ClearPriceOverrides removes every manual price
func (h *UserConfigHandler) ClearPriceOverrides() error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.PriceOverrides = nil
	return h.Save(config)
}

// SetDefaultUsername remembers the playground username
func (h *UserConfigHandler) SetDefaultUsername(username string) error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.DefaultUsername = username
	return h.Save(config)
}

// OverrideIDs returns the overridden item ids in sorted order
func (c *UserConfig) OverrideIDs() []string {
	ids := make([]string, 0, len(c.PriceOverrides))
	for id := range c.PriceOverrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SalaryOr returns the stored salary or the fallback when none is set
func (c *UserConfig) SalaryOr(fallback float64) float64 {
	if c == nil || c.DefaultSalary == nil {
		return fallback
	}
	return *c.DefaultSalary
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
