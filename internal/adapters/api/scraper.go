package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/warera-economy-go/internal/application/common"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

const itemTradingProcedure = "itemTrading.getItemTrading"

// Scraper fetches per-item trading prices one item at a time
type Scraper struct {
	client *Client
	pacer  *rate.Limiter
	clock  shared.Clock
}

// NewScraper creates a scraper that issues at most one item request per delay
// If clock is nil, uses RealClock
func NewScraper(client *Client, delay time.Duration, clock shared.Clock) *Scraper {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Scraper{
		client: client,
		pacer:  rate.NewLimiter(limit, 1),
		clock:  clock,
	}
}

// FetchPrices scrapes every requested item. A rejected session aborts the whole
// scrape with ErrTokenExpired; any other per-item failure skips that item.
func (s *Scraper) FetchPrices(ctx context.Context, itemIDs []string) ([]market.MarketPrice, error) {
	logger := common.LoggerFromContext(ctx)

	if !s.client.HasToken(ctx) {
		return nil, ErrTokenMissing
	}

	logger.Log("INFO", "Scraping market prices", map[string]interface{}{
		"items": len(itemIDs),
	})

	prices := make([]market.MarketPrice, 0, len(itemIDs))
	for _, id := range itemIDs {
		if err := s.pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("scrape cancelled: %w", err)
		}

		data, err := s.client.Query(ctx, itemTradingProcedure, map[string]string{"itemCode": id})
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				logger.Log("WARNING", "Session token rejected during scrape", map[string]interface{}{
					"item": id,
				})
				return nil, ErrTokenExpired
			}
			if ctx.Err() != nil {
				return nil, fmt.Errorf("scrape cancelled: %w", ctx.Err())
			}
			logger.Log("WARNING", "Failed to fetch item price", map[string]interface{}{
				"item":  id,
				"error": err.Error(),
			})
			continue
		}

		if !data.Exists() {
			logger.Log("WARNING", "Invalid tRPC structure for item", map[string]interface{}{
				"item": id,
			})
			continue
		}

		prices = append(prices, market.MarketPrice{
			ProductID:    id,
			AveragePrice: tradingPrice(data),
			LastUpdated:  s.clock.Now(),
		})
	}

	return prices, nil
}

// tradingPrice prefers the current value, then the last traded price, else 0
func tradingPrice(data gjson.Result) float64 {
	if v := data.Get("currentValue").Float(); v > 0 {
		return v
	}
	if v := data.Get("lastPrice").Float(); v > 0 {
		return v
	}
	return 0
}
