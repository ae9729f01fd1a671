package recipe

import (
	"math"
	"strings"

	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

// Input is one line of a bill of materials: Quantity units of ItemID per unit produced
type Input struct {
	ItemID   string
	Quantity float64
}

// Recipe is the immutable definition of how one unit of an item is made
type Recipe struct {
	id         string
	name       string
	inputs     []Input
	workPoints float64
	isBase     bool
}

// NewRecipe validates and builds a Recipe.
// Quantities must be positive and finite; work points must be non-negative and finite.
func NewRecipe(id, name string, inputs []Input, workPoints float64, isBase bool) (*Recipe, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, shared.NewValidationError("id", "recipe id cannot be empty")
	}
	if math.IsNaN(workPoints) || math.IsInf(workPoints, 0) || workPoints < 0 {
		return nil, shared.NewValidationError("work_points", "must be a non-negative number for "+id)
	}

	copied := make([]Input, 0, len(inputs))
	for _, in := range inputs {
		inID := strings.TrimSpace(in.ItemID)
		if inID == "" {
			return nil, shared.NewValidationError("inputs", "input id cannot be empty for "+id)
		}
		if math.IsNaN(in.Quantity) || math.IsInf(in.Quantity, 0) || in.Quantity <= 0 {
			return nil, shared.NewValidationError("inputs", "quantity must be positive for "+id+" <- "+inID)
		}
		copied = append(copied, Input{ItemID: inID, Quantity: in.Quantity})
	}

	if name == "" {
		name = id
	}

	return &Recipe{
		id:         id,
		name:       name,
		inputs:     copied,
		workPoints: workPoints,
		isBase:     isBase,
	}, nil
}

// MustNewRecipe is NewRecipe for static fixtures; it panics on invalid input
func MustNewRecipe(id, name string, inputs []Input, workPoints float64, isBase bool) *Recipe {
	r, err := NewRecipe(id, name, inputs, workPoints, isBase)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Recipe) ID() string          { return r.id }
func (r *Recipe) Name() string        { return r.name }
func (r *Recipe) WorkPoints() float64 { return r.workPoints }
func (r *Recipe) IsBase() bool        { return r.isBase }

// Inputs returns a copy of the bill of materials
func (r *Recipe) Inputs() []Input {
	out := make([]Input, len(r.inputs))
	copy(out, r.inputs)
	return out
}

// HasInputs reports whether the item is manufactured from other items
func (r *Recipe) HasInputs() bool {
	return len(r.inputs) > 0
}

// NormalizeID is the canonical key used for item lookups. Item ids are case-insensitive.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
