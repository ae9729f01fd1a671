package costing

import (
	"errors"
	"fmt"
	"math"

	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

// ErrInvalidSalary is returned for negative, NaN or infinite salaries
var ErrInvalidSalary = errors.New("salary per work point must be a non-negative number")

// AcquisitionMethod says how a node's cost was obtained
type AcquisitionMethod string

const (
	// AcquisitionBuy means the market price was used and recursion stopped
	AcquisitionBuy AcquisitionMethod = "BUY"

	// AcquisitionCraft means the cost was computed from the recipe
	AcquisitionCraft AcquisitionMethod = "CRAFT"

	// AcquisitionUnknown means the item has no recipe and no price
	AcquisitionUnknown AcquisitionMethod = "UNKNOWN"
)

// CostNode is one item in a cost breakdown tree
type CostNode struct {
	ItemID   string
	Method   AcquisitionMethod
	Quantity float64 // units needed per unit of the parent (1 for the root)

	UnitPrice float64 // market price, only for AcquisitionBuy
	LaborCost float64 // work points * salary, only for AcquisitionCraft
	UnitCost  float64 // cost of one unit of this item
	Total     float64 // UnitCost * Quantity

	Children []*CostNode
}

// Resolver computes production costs over a catalog with a fixed salary and price table.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	catalog  *recipe.Catalog
	prices   market.PriceTable
	salary   float64
	defaults economy.Defaults
}

// NewResolver validates the salary and builds a resolver
func NewResolver(
	catalog *recipe.Catalog,
	prices market.PriceTable,
	salaryPerWorkPoint float64,
	defaults economy.Defaults,
) (*Resolver, error) {
	if math.IsNaN(salaryPerWorkPoint) || math.IsInf(salaryPerWorkPoint, 0) || salaryPerWorkPoint < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSalary, salaryPerWorkPoint)
	}
	return &Resolver{
		catalog:  catalog,
		prices:   prices,
		salary:   salaryPerWorkPoint,
		defaults: defaults,
	}, nil
}

// ProductionCost is the cost to manufacture one unit of itemID:
// workPoints*salary plus, for each input, either its market price (when one
// exists) or its own production cost, times the quantity.
func ProductionCost(
	itemID string,
	salaryPerWorkPoint float64,
	catalog *recipe.Catalog,
	prices market.PriceTable,
	defaults economy.Defaults,
) (float64, error) {
	r, err := NewResolver(catalog, prices, salaryPerWorkPoint, defaults)
	if err != nil {
		return 0, err
	}
	return r.Cost(itemID)
}

// Cost returns the unit production cost of itemID
func (r *Resolver) Cost(itemID string) (float64, error) {
	node, err := r.Explain(itemID)
	if err != nil {
		return 0, err
	}
	return node.UnitCost, nil
}

// Explain returns the full cost breakdown tree of one unit of itemID.
// A cyclic chain yields *recipe.CyclicRecipeError.
func (r *Resolver) Explain(itemID string) (*CostNode, error) {
	visiting := make(map[string]bool)
	return r.resolve(itemID, 1, visiting, []string{})
}

func (r *Resolver) resolve(
	itemID string,
	quantity float64,
	visiting map[string]bool,
	path []string,
) (*CostNode, error) {
	rec, ok := r.catalog.Get(itemID)
	if !ok {
		return &CostNode{
			ItemID:   itemID,
			Method:   AcquisitionUnknown,
			Quantity: quantity,
			UnitCost: r.defaults.MissingRecipeCost,
			Total:    r.defaults.MissingRecipeCost * quantity,
		}, nil
	}

	key := recipe.NormalizeID(rec.ID())
	if visiting[key] {
		chain := make([]string, len(path), len(path)+1)
		copy(chain, path)
		return nil, &recipe.CyclicRecipeError{
			Item:  rec.ID(),
			Chain: append(chain, rec.ID()),
		}
	}
	visiting[key] = true
	defer func() { visiting[key] = false }()

	currentPath := append(path, rec.ID())

	node := &CostNode{
		ItemID:    rec.ID(),
		Method:    AcquisitionCraft,
		Quantity:  quantity,
		LaborCost: rec.WorkPoints() * r.salary,
	}
	unit := node.LaborCost

	for _, in := range rec.Inputs() {
		var child *CostNode
		if price, ok := r.prices.Lookup(in.ItemID); ok {
			child = &CostNode{
				ItemID:    r.catalog.CanonicalID(in.ItemID),
				Method:    AcquisitionBuy,
				Quantity:  in.Quantity,
				UnitPrice: price,
				UnitCost:  price,
				Total:     price * in.Quantity,
			}
		} else {
			var err error
			child, err = r.resolve(in.ItemID, in.Quantity, visiting, currentPath)
			if err != nil {
				return nil, err
			}
		}
		unit += child.Total
		node.Children = append(node.Children, child)
	}

	node.UnitCost = unit
	node.Total = unit * quantity
	return node, nil
}
