package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
)

// ProjectFacilitiesQuery projects daily output and costs for each facility
type ProjectFacilitiesQuery struct {
	Facilities []production.FacilityParams
	Prices     *market.PriceTable
}

// ProjectFacilitiesResponse holds one projection per facility, in input order
type ProjectFacilitiesResponse struct {
	Projections []production.Projection
}

// ProjectFacilitiesHandler handles ProjectFacilitiesQuery
type ProjectFacilitiesHandler struct {
	env Environment
}

// NewProjectFacilitiesHandler creates a new handler
func NewProjectFacilitiesHandler(env Environment) *ProjectFacilitiesHandler {
	return &ProjectFacilitiesHandler{env: env}
}

// Handle executes the query
func (h *ProjectFacilitiesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ProjectFacilitiesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ProjectFacilitiesQuery")
	}

	facilities, err := h.env.facilities(query.Facilities)
	if err != nil {
		return nil, err
	}

	prices, err := h.env.prices(ctx, query.Prices)
	if err != nil {
		return nil, err
	}

	return &ProjectFacilitiesResponse{
		Projections: production.ProjectAll(facilities, h.env.Catalog, prices, h.env.Defaults),
	}, nil
}
