package api

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

// FetchPriceMap reads the whole item -> price map in one call
func (c *Client) FetchPriceMap(ctx context.Context) (map[string]float64, error) {
	data, err := c.Query(ctx, "itemTrading.getPrices", map[string]interface{}{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price map: %w", err)
	}

	prices := make(map[string]float64)
	if !data.IsObject() {
		return prices, nil
	}

	data.ForEach(func(key, value gjson.Result) bool {
		price := value.Float()
		if value.IsObject() {
			price = tradingPrice(value)
			if price == 0 {
				price = value.Get("averagePrice").Float()
			}
		}
		if price >= 0 {
			prices[recipe.NormalizeID(key.String())] = price
		}
		return true
	})

	return prices, nil
}
