package config

import (
	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
)

// EconomyConfig holds the tunable platform constants
type EconomyConfig struct {
	// Optional path to a recipes JSON file; the bundled catalog is used when empty
	CatalogPath string `mapstructure:"catalog_path"`

	// Salary per work point used when a request does not specify one
	DefaultSalary float64 `mapstructure:"default_salary" validate:"gte=0"`

	WorkOutputFactor        float64 `mapstructure:"work_output_factor" validate:"gt=0"`
	AutomationWorkPerLevel  float64 `mapstructure:"automation_work_per_level" validate:"gte=0"`
	MissingRecipeWorkPoints float64 `mapstructure:"missing_recipe_work_points" validate:"gt=0"`
	MinLevel                int     `mapstructure:"min_level" validate:"min=0"`
	MaxLevel                int     `mapstructure:"max_level" validate:"gtefield=MinLevel"`
	InternalUseThreshold    float64 `mapstructure:"internal_use_threshold" validate:"gt=0,lte=1"`
}

// Defaults converts the configuration into the computation policy
func (c EconomyConfig) Defaults() economy.Defaults {
	d := economy.StandardDefaults()
	d.WorkOutputFactor = c.WorkOutputFactor
	d.AutomationWorkPerLevel = c.AutomationWorkPerLevel
	d.MissingRecipeWorkPoints = c.MissingRecipeWorkPoints
	d.MinLevel = c.MinLevel
	d.MaxLevel = c.MaxLevel
	d.InternalUseThreshold = c.InternalUseThreshold
	return d
}
