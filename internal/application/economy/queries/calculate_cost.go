package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/domain/costing"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
)

// CalculateCostQuery asks for the unit production cost of one item
type CalculateCostQuery struct {
	ItemID string
	Salary *float64           // nil uses the configured default salary
	Prices *market.PriceTable // nil uses the cached market prices
}

// CalculateCostResponse is the cost and its breakdown
type CalculateCostResponse struct {
	ItemID    string
	Salary    float64
	Cost      float64
	Breakdown *costing.CostNode
}

// CalculateCostHandler handles CalculateCostQuery
type CalculateCostHandler struct {
	env Environment
}

// NewCalculateCostHandler creates a new handler
func NewCalculateCostHandler(env Environment) *CalculateCostHandler {
	return &CalculateCostHandler{env: env}
}

// Handle executes the query
func (h *CalculateCostHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*CalculateCostQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CalculateCostQuery")
	}
	if query.ItemID == "" {
		return nil, fmt.Errorf("item id is required")
	}

	prices, err := h.env.prices(ctx, query.Prices)
	if err != nil {
		return nil, err
	}

	salary := h.env.salary(query.Salary)
	resolver, err := costing.NewResolver(h.env.Catalog, prices, salary, h.env.Defaults)
	if err != nil {
		return nil, err
	}

	node, err := resolver.Explain(query.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cost of %s: %w", query.ItemID, err)
	}

	return &CalculateCostResponse{
		ItemID:    h.env.Catalog.CanonicalID(query.ItemID),
		Salary:    salary,
		Cost:      node.UnitCost,
		Breakdown: node,
	}, nil
}
