package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/metrics"
	"github.com/andrescamacho/warera-economy-go/internal/application/common"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/network"
	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
)

// ReconcileNetworkQuery reconciles a facility set in one accounting mode
type ReconcileNetworkQuery struct {
	Facilities []production.FacilityParams
	Mode       network.Mode
	Prices     *market.PriceTable
	SortBy     network.SortKey // empty keeps first-seen order
	Ascending  bool
}

// ReconcileNetworkResponse carries the report and the projections it was built from
type ReconcileNetworkResponse struct {
	Report      *network.Report
	Projections []production.Projection
}

// ReconcileNetworkHandler handles ReconcileNetworkQuery
type ReconcileNetworkHandler struct {
	env Environment
}

// NewReconcileNetworkHandler creates a new handler
func NewReconcileNetworkHandler(env Environment) *ReconcileNetworkHandler {
	return &ReconcileNetworkHandler{env: env}
}

// Handle executes the query
func (h *ReconcileNetworkHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ReconcileNetworkQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReconcileNetworkQuery")
	}

	mode := query.Mode
	if mode == "" {
		mode = network.ModeStandard
	}

	facilities, err := h.env.facilities(query.Facilities)
	if err != nil {
		return nil, err
	}

	prices, err := h.env.prices(ctx, query.Prices)
	if err != nil {
		return nil, err
	}

	projections := production.ProjectAll(facilities, h.env.Catalog, prices, h.env.Defaults)
	report, err := network.Reconcile(network.FromProjections(projections), h.env.Catalog, prices, mode, h.env.Defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile network: %w", err)
	}

	if query.SortBy != "" {
		report.Items = network.SortStats(report.Items, query.SortBy, query.Ascending)
	}

	metrics.RecordNetworkReport(string(mode), len(facilities), report.GrandTotalProfit)
	common.LoggerFromContext(ctx).Log("DEBUG", "Network reconciled", map[string]interface{}{
		"mode":        string(mode),
		"facilities":  len(facilities),
		"grand_total": report.GrandTotalProfit,
	})

	return &ReconcileNetworkResponse{Report: report, Projections: projections}, nil
}
