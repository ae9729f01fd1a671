package economy

import (
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

// Defaults holds the platform constants and the substitution policy applied
// when data is missing. Every computation takes one explicitly.
type Defaults struct {
	// WorkOutputFactor is K in energy*skill*K; empirically 0.24
	WorkOutputFactor float64

	// AutomationWorkPerLevel is E, the work points one automation level contributes per day
	AutomationWorkPerLevel float64

	// MissingPrice is used for items without a price entry
	MissingPrice float64

	// MissingRecipeCost is the production cost of an item absent from the catalog
	MissingRecipeCost float64

	// MissingRecipeWorkPoints divides output when the item has no recipe
	// or the recipe declares zero work points
	MissingRecipeWorkPoints float64

	// MinLevel and MaxLevel bound facility automation and storage levels
	MinLevel int
	MaxLevel int

	// InternalUseThreshold is the consumed share of production above which an
	// item is classified as internal use
	InternalUseThreshold float64
}

// StandardDefaults returns the values observed on the live platform
func StandardDefaults() Defaults {
	return Defaults{
		WorkOutputFactor:        0.24,
		AutomationWorkPerLevel:  24,
		MissingPrice:            0,
		MissingRecipeCost:       0,
		MissingRecipeWorkPoints: 1,
		MinLevel:                1,
		MaxLevel:                20,
		InternalUseThreshold:    0.5,
	}
}

// PriceOf returns the table price for itemID, or MissingPrice
func (d Defaults) PriceOf(prices market.PriceTable, itemID string) float64 {
	if p, ok := prices.Lookup(itemID); ok {
		return p
	}
	return d.MissingPrice
}

// WorkPointsOf returns the labor divisor for an item
func (d Defaults) WorkPointsOf(catalog *recipe.Catalog, itemID string) float64 {
	if catalog != nil {
		if r, ok := catalog.Get(itemID); ok && r.WorkPoints() > 0 {
			return r.WorkPoints()
		}
	}
	return d.MissingRecipeWorkPoints
}

// ClampLevel bounds a level into [MinLevel, MaxLevel]
func (d Defaults) ClampLevel(level int) int {
	if level < d.MinLevel {
		return d.MinLevel
	}
	if level > d.MaxLevel {
		return d.MaxLevel
	}
	return level
}
