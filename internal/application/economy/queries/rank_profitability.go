package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/metrics"
	"github.com/andrescamacho/warera-economy-go/internal/application/common"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/domain/costing"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
)

// RankProfitabilityQuery ranks every catalog item by net profit
type RankProfitabilityQuery struct {
	Salary *float64
	Prices *market.PriceTable
	Limit  int // 0 returns every record
}

// RankProfitabilityResponse is the ranking, best first
type RankProfitabilityResponse struct {
	Salary  float64
	Records []costing.ProfitabilityRecord
}

// RankProfitabilityHandler handles RankProfitabilityQuery
type RankProfitabilityHandler struct {
	env Environment
}

// NewRankProfitabilityHandler creates a new handler
func NewRankProfitabilityHandler(env Environment) *RankProfitabilityHandler {
	return &RankProfitabilityHandler{env: env}
}

// Handle executes the query
func (h *RankProfitabilityHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*RankProfitabilityQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RankProfitabilityQuery")
	}

	prices, err := h.env.prices(ctx, query.Prices)
	if err != nil {
		return nil, err
	}

	salary := h.env.salary(query.Salary)
	records, err := costing.Rank(h.env.Catalog, salary, prices, h.env.Defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to rank items: %w", err)
	}

	for _, r := range records {
		metrics.RecordRanking(r.Recipe.ID(), r.NetProfit, r.ProfitMargin)
	}

	if query.Limit > 0 && query.Limit < len(records) {
		records = records[:query.Limit]
	}

	common.LoggerFromContext(ctx).Log("DEBUG", "Ranked catalog", map[string]interface{}{
		"items":  len(records),
		"salary": salary,
	})

	return &RankProfitabilityResponse{Salary: salary, Records: records}, nil
}
