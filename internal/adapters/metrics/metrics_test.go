package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/domain/costing"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

type staticStore struct {
	snapshot *market.Snapshot
}

func (s *staticStore) Load(ctx context.Context) (*market.Snapshot, error) { return s.snapshot, nil }
func (s *staticStore) Save(ctx context.Context, snapshot *market.Snapshot) error {
	s.snapshot = snapshot
	return nil
}

type rankQuery struct{}

func TestQueryName(t *testing.T) {
	assert.Equal(t, "rankQuery", queryName(&rankQuery{}))
	assert.Equal(t, "rankQuery", queryName(rankQuery{}))
	assert.Equal(t, "unknown", queryName(nil))
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{shared.NewValidationError("limit", "must not be negative"), OutcomeInvalid},
		{fmt.Errorf("rank: %w", costing.ErrInvalidSalary), OutcomeInvalid},
		{shared.NewNotFoundError("item", "unobtainium"), OutcomeNotFound},
		{&recipe.CyclicRecipeError{Item: "egg", Chain: []string{"egg", "hen", "egg"}}, OutcomeCyclicRecipe},
		{fmt.Errorf("fetch: %w", market.ErrTokenExpired), OutcomeTokenExpired},
		{context.Canceled, OutcomeCanceled},
		{errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err), "%v", tt.err)
	}
}

func TestQueryMetricsMiddleware_RecordsOutcome(t *testing.T) {
	// Arrange
	collector := NewQueryMetricsCollector()
	mw := QueryMetricsMiddleware(collector)

	// Act
	_, err := mw(context.Background(), &rankQuery{}, func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return nil, costing.ErrInvalidSalary
	})
	_, _ = mw(context.Background(), &rankQuery{}, func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return "ok", nil
	})

	// Assert
	assert.ErrorIs(t, err, costing.ErrInvalidSalary)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.queriesTotal.WithLabelValues("rankQuery", OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.queriesTotal.WithLabelValues("rankQuery", OutcomeOK)))
}

func TestQueryMetricsMiddleware_NilCollector(t *testing.T) {
	mw := QueryMetricsMiddleware(nil)

	resp, err := mw(context.Background(), &rankQuery{}, func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestUpstreamMetricsCollector(t *testing.T) {
	collector := NewUpstreamMetricsCollector()

	collector.RecordCall("item.getPrices", 200, 120*time.Millisecond)
	collector.RecordCall("item.getPrices", 503, time.Second)
	collector.RecordCall("item.getPrices", 502, time.Second)
	collector.RecordRetry("item.getPrices", "503")

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.callsTotal.WithLabelValues("item.getPrices", "2xx")))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.callsTotal.WithLabelValues("item.getPrices", "5xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.retriesTotal.WithLabelValues("item.getPrices", "503")))

	collector.RecordBreakerState("open")
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.breakerOpen))
	collector.RecordBreakerState("probing")
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.breakerOpen))
	collector.RecordBreakerState("closed")
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.breakerOpen))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(429))
	assert.Equal(t, "other", statusClass(0))
}

func TestMarketMetricsCollector_SnapshotGauges(t *testing.T) {
	// Arrange
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := shared.NewMockClock(now)
	store := &staticStore{snapshot: market.NewSnapshot([]market.MarketPrice{
		{ProductID: "bread", AveragePrice: 5.5},
		{ProductID: "grain", AveragePrice: 0.75},
	}, now.Add(-30*time.Minute))}
	collector := NewMarketMetricsCollector(store, clock)

	// Act
	collector.updateSnapshotMetrics(context.Background())

	// Assert
	assert.Equal(t, 1800.0, testutil.ToFloat64(collector.snapshotAge))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.snapshotItems))
	assert.Equal(t, 5.5, testutil.ToFloat64(collector.marketPrice.WithLabelValues("bread")))
}

func TestMarketMetricsCollector_RecordScrapeStatus(t *testing.T) {
	collector := NewMarketMetricsCollector(nil, nil)

	collector.RecordScrape(10, 1, time.Second, nil)
	collector.RecordScrape(0, 0, time.Second, market.ErrTokenExpired)
	collector.RecordScrape(0, 0, time.Second, errors.New("network down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.scrapesTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.scrapesTotal.WithLabelValues("token_expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.scrapesTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.scrapeItemsFailed))
	assert.Equal(t, 10.0, testutil.ToFloat64(collector.snapshotItems))
}

func TestRegister_NoRegistry(t *testing.T) {
	Registry = nil

	assert.NoError(t, NewEconomyMetricsCollector().Register())
	assert.NoError(t, NewMarketMetricsCollector(nil, nil).Register())
	assert.False(t, IsEnabled())
}

func TestRegister_WithRegistry(t *testing.T) {
	InitRegistry()
	t.Cleanup(func() { Registry = nil })

	economy := NewEconomyMetricsCollector()
	require.NoError(t, economy.Register())
	require.NoError(t, NewUpstreamMetricsCollector().Register())
	require.NoError(t, NewQueryMetricsCollector().Register())

	economy.RecordNetworkReport("supply_chain", 3, 42)

	assert.True(t, IsEnabled())
	assert.Equal(t, 42.0, testutil.ToFloat64(economy.networkProfit.WithLabelValues("supply_chain")))
}

func TestGlobalRecorders_NoCollector(t *testing.T) {
	SetGlobalMarketCollector(nil)
	SetGlobalEconomyCollector(nil)

	assert.NotPanics(t, func() {
		RecordCacheLookup("fresh")
		RecordScrape(1, 0, time.Second, nil)
		RecordRanking("bread", 1, 2)
		RecordNetworkReport("standard", 1, 1)
	})
}
