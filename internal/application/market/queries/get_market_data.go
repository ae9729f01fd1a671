package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/warera-economy-go/internal/application/market/services"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
)

// MarketDataProvider is the part of the price cache this query needs
type MarketDataProvider interface {
	GetMarketData(ctx context.Context, force bool) (*services.MarketData, error)
}

// GetMarketDataQuery returns the cached price snapshot, refreshing it when stale or forced
type GetMarketDataQuery struct {
	Force       bool
	Token       string // optional per-request session token
	Fingerprint string
}

// GetMarketDataResponse is the price snapshot plus refresh status
type GetMarketDataResponse struct {
	Prices     []market.MarketPrice
	Timestamp  time.Time
	WasUpdated bool
	Stale      bool
	Error      string
}

// GetMarketDataHandler handles GetMarketDataQuery
type GetMarketDataHandler struct {
	provider MarketDataProvider
}

// NewGetMarketDataHandler creates a new handler
func NewGetMarketDataHandler(provider MarketDataProvider) *GetMarketDataHandler {
	return &GetMarketDataHandler{provider: provider}
}

// Handle executes the query
func (h *GetMarketDataHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetMarketDataQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetMarketDataQuery")
	}

	data, err := h.provider.GetMarketData(ctx, query.Force)
	if err != nil {
		return nil, fmt.Errorf("failed to get market data: %w", err)
	}

	return &GetMarketDataResponse{
		Prices:     data.Prices,
		Timestamp:  data.Timestamp,
		WasUpdated: data.WasUpdated,
		Stale:      data.Stale,
		Error:      data.ErrorTag,
	}, nil
}
