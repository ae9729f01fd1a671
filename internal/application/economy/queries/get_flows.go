package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/network"
	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
)

// GetFlowsQuery computes the per-item production/consumption balance of a facility set.
// Flows do not depend on prices.
type GetFlowsQuery struct {
	Facilities []production.FacilityParams
}

// GetFlowsResponse lists flows sorted by production, highest first
type GetFlowsResponse struct {
	Flows []network.NetworkFlowEntry
}

// GetFlowsHandler handles GetFlowsQuery
type GetFlowsHandler struct {
	env Environment
}

// NewGetFlowsHandler creates a new handler
func NewGetFlowsHandler(env Environment) *GetFlowsHandler {
	return &GetFlowsHandler{env: env}
}

// Handle executes the query
func (h *GetFlowsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetFlowsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetFlowsQuery")
	}

	facilities, err := h.env.facilities(query.Facilities)
	if err != nil {
		return nil, err
	}

	// Prices do not affect output rates
	projections := production.ProjectAll(facilities, h.env.Catalog, market.EmptyPriceTable(), h.env.Defaults)
	return &GetFlowsResponse{
		Flows: network.Flows(network.FromProjections(projections), h.env.Catalog),
	}, nil
}
