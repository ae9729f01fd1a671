package metrics

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

// MarketMetricsCollector handles price cache and scraper metrics
type MarketMetricsCollector struct {
	// Dependencies
	store market.SnapshotStore
	clock shared.Clock

	// Cache Metrics
	cacheLookupsTotal *prometheus.CounterVec
	snapshotAge       prometheus.Gauge
	snapshotItems     prometheus.Gauge

	// Scraper Metrics
	scrapesTotal      *prometheus.CounterVec
	scrapeDuration    prometheus.Histogram
	scrapeItemsFailed prometheus.Counter
	marketPrice       *prometheus.GaugeVec

	// Lifecycle
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	// Configuration
	pollInterval time.Duration
}

// NewMarketMetricsCollector creates a new market metrics collector
// If clock is nil, uses RealClock (production behavior)
func NewMarketMetricsCollector(store market.SnapshotStore, clock shared.Clock) *MarketMetricsCollector {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &MarketMetricsCollector{
		store: store,
		clock: clock,

		cacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "price_cache_lookups_total",
				Help:      "Price requests by how they were served",
			},
			[]string{"outcome"},
		),
		snapshotAge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "price_snapshot_age_seconds",
				Help:      "Age of the stored price snapshot",
			},
		),
		snapshotItems: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "price_snapshot_items",
				Help:      "Number of items in the stored price snapshot",
			},
		),

		scrapesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "scrapes_total",
				Help:      "Total number of price scrapes by status",
			},
			[]string{"status"},
		),
		scrapeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "scrape_duration_seconds",
				Help:      "Full price scrape duration distribution",
				Buckets:   []float64{1, 2, 5, 10, 20, 30, 60},
			},
		),
		scrapeItemsFailed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "scrape_items_failed_total",
				Help:      "Items skipped during scrapes because their fetch failed",
			},
		),
		marketPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "market_price",
				Help:      "Latest average market price per item",
			},
			[]string{"item"},
		),

		pollInterval: 60 * time.Second,
	}
}

// Register registers all market metrics with the Prometheus registry
func (c *MarketMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.cacheLookupsTotal,
		c.snapshotAge,
		c.snapshotItems,
		c.scrapesTotal,
		c.scrapeDuration,
		c.scrapeItemsFailed,
		c.marketPrice,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// Start begins polling the snapshot store for price and age gauges
func (c *MarketMetricsCollector) Start(ctx context.Context) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.pollMetrics(c.pollInterval)
}

// Stop stops the polling goroutine and waits for it to exit
func (c *MarketMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

func (c *MarketMetricsCollector) pollMetrics(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial update
	c.updateSnapshotMetrics(c.ctx)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.updateSnapshotMetrics(c.ctx)
		}
	}
}

// updateSnapshotMetrics refreshes the gauges from the stored snapshot
func (c *MarketMetricsCollector) updateSnapshotMetrics(ctx context.Context) {
	if c.store == nil {
		return
	}

	snapshot, err := c.store.Load(ctx)
	if err != nil {
		log.Printf("market metrics: failed to load snapshot: %v", err)
		return
	}
	if snapshot == nil {
		c.snapshotItems.Set(0)
		return
	}

	c.snapshotAge.Set(snapshot.Age(c.clock.Now()).Seconds())
	c.snapshotItems.Set(float64(len(snapshot.Prices)))
	for _, p := range snapshot.Prices {
		c.marketPrice.WithLabelValues(p.ProductID).Set(p.AveragePrice)
	}
}

// RecordCacheLookup records how a price request was served
func (c *MarketMetricsCollector) RecordCacheLookup(outcome string) {
	c.cacheLookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordScrape records a scrape event (called from the price cache service)
func (c *MarketMetricsCollector) RecordScrape(itemsScraped int, itemsFailed int, duration time.Duration, err error) {
	status := "success"
	if errors.Is(err, market.ErrTokenExpired) {
		status = "token_expired"
	} else if err != nil {
		status = "error"
	} else {
		c.snapshotItems.Set(float64(itemsScraped))
	}

	c.scrapesTotal.WithLabelValues(status).Inc()
	c.scrapeDuration.Observe(duration.Seconds())
	c.scrapeItemsFailed.Add(float64(itemsFailed))
}
