package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/metrics"
	"github.com/andrescamacho/warera-economy-go/internal/application/common"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

// Cache lookup outcomes reported to metrics
const (
	LookupHit    = "hit"
	LookupStale  = "stale"
	LookupMiss   = "miss"
	LookupForced = "forced"
)

const refreshKey = "market-refresh"

// ErrNoPricesScraped keeps an empty scrape from replacing a usable snapshot
var ErrNoPricesScraped = errors.New("no prices scraped")

// MarketData is what callers get back from the price cache
type MarketData struct {
	Prices     []market.MarketPrice
	Timestamp  time.Time
	WasUpdated bool
	Stale      bool   // served from an expired snapshot while a refresh runs
	ErrorTag   string // set when a refresh failed; Prices then hold the last good data
}

// PriceCacheOptions tunes the cache policy
type PriceCacheOptions struct {
	StaleAfter        time.Duration
	BackgroundRefresh bool
}

// PriceCacheService serves the latest price snapshot and refreshes it from
// the scraper when it is stale. At most one refresh runs at a time.
type PriceCacheService struct {
	source  market.PriceSource
	store   market.SnapshotStore
	catalog *recipe.Catalog
	clock   shared.Clock
	opts    PriceCacheOptions

	group      singleflight.Group
	background sync.WaitGroup

	mu        sync.RWMutex
	overrides map[string]float64
}

// NewPriceCacheService creates the service
// If clock is nil, uses RealClock
func NewPriceCacheService(
	source market.PriceSource,
	store market.SnapshotStore,
	catalog *recipe.Catalog,
	clock shared.Clock,
	opts PriceCacheOptions,
) *PriceCacheService {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = market.DefaultStaleAfter
	}
	return &PriceCacheService{
		source:    source,
		store:     store,
		catalog:   catalog,
		clock:     clock,
		opts:      opts,
		overrides: make(map[string]float64),
	}
}

// SetOverrides replaces the manual price overrides merged by CurrentPrices
func (s *PriceCacheService) SetOverrides(overrides map[string]float64) {
	copied := make(map[string]float64, len(overrides))
	for id, p := range overrides {
		copied[id] = p
	}
	s.mu.Lock()
	s.overrides = copied
	s.mu.Unlock()
}

// GetMarketData returns cached prices when they are fresh and force is false,
// otherwise refreshes them. A failed refresh is reported through ErrorTag with
// the last good prices; only a nil catalog yields a Go error.
func (s *PriceCacheService) GetMarketData(ctx context.Context, force bool) (*MarketData, error) {
	logger := common.LoggerFromContext(ctx)

	if s.catalog == nil {
		return nil, errors.New("price cache has no recipe catalog")
	}

	cached, err := s.store.Load(ctx)
	if err != nil {
		logger.Log("WARNING", "Failed to load price snapshot, treating as empty", map[string]interface{}{
			"error": err.Error(),
		})
		cached = nil
	}

	now := s.clock.Now()
	if !force && cached != nil && !cached.IsStale(now, s.opts.StaleAfter) {
		metrics.RecordCacheLookup(LookupHit)
		return fromSnapshot(cached, false), nil
	}

	if !force && cached != nil && s.opts.BackgroundRefresh {
		metrics.RecordCacheLookup(LookupStale)
		s.refreshInBackground(ctx)
		data := fromSnapshot(cached, false)
		data.Stale = true
		return data, nil
	}

	if force {
		metrics.RecordCacheLookup(LookupForced)
	} else {
		metrics.RecordCacheLookup(LookupMiss)
	}

	fresh, err := s.refresh(ctx)
	if err != nil {
		logger.Log("WARNING", "Price refresh failed, serving cached data", map[string]interface{}{
			"error":      err.Error(),
			"has_cached": cached != nil,
		})
		data := fromSnapshot(cached, false)
		data.ErrorTag = market.ErrorTag(err)
		return data, nil
	}

	return fromSnapshot(fresh, true), nil
}

// CurrentPrices returns the cached prices merged with the manual overrides
func (s *PriceCacheService) CurrentPrices(ctx context.Context) (market.PriceTable, error) {
	data, err := s.GetMarketData(ctx, false)
	if err != nil {
		return market.PriceTable{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return market.MergePrices(data.Prices, s.overrides)
}

// Wait blocks until background refreshes started so far have finished
func (s *PriceCacheService) Wait() {
	s.background.Wait()
}

func (s *PriceCacheService) refreshInBackground(ctx context.Context) {
	s.background.Add(1)
	// The refresh outlives the request that triggered it
	bgCtx := context.WithoutCancel(ctx)
	go func() {
		defer s.background.Done()
		if _, err := s.refresh(bgCtx); err != nil {
			common.LoggerFromContext(bgCtx).Log("WARNING", "Background price refresh failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()
}

// refresh scrapes and saves a new snapshot; concurrent callers share one scrape
func (s *PriceCacheService) refresh(ctx context.Context) (*market.Snapshot, error) {
	v, err, joined := s.group.Do(refreshKey, func() (interface{}, error) {
		return s.scrape(ctx)
	})
	if joined {
		common.LoggerFromContext(ctx).Log("DEBUG", "Joined in-flight price refresh", nil)
	}
	if err != nil {
		return nil, err
	}
	return v.(*market.Snapshot), nil
}

func (s *PriceCacheService) scrape(ctx context.Context) (*market.Snapshot, error) {
	logger := common.LoggerFromContext(ctx)
	items := s.catalog.ItemIDs()

	start := s.clock.Now()
	prices, err := s.source.FetchPrices(ctx, items)
	duration := s.clock.Now().Sub(start)

	if err == nil && len(prices) == 0 && len(items) > 0 {
		err = ErrNoPricesScraped
	}
	metrics.RecordScrape(len(prices), len(items)-len(prices), duration, err)
	if err != nil {
		return nil, err
	}

	snapshot := market.NewSnapshot(prices, s.clock.Now())
	if err := s.store.Save(ctx, snapshot); err != nil {
		// The fresh prices are still served; the next call scrapes again
		logger.Log("ERROR", "Failed to save price snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Log("INFO", "Market prices refreshed", map[string]interface{}{
		"items":   len(prices),
		"skipped": len(items) - len(prices),
	})
	return snapshot, nil
}

func fromSnapshot(snapshot *market.Snapshot, updated bool) *MarketData {
	if snapshot == nil {
		return &MarketData{Prices: []market.MarketPrice{}, WasUpdated: updated}
	}
	prices := make([]market.MarketPrice, len(snapshot.Prices))
	copy(prices, snapshot.Prices)
	return &MarketData{
		Prices:     prices,
		Timestamp:  snapshot.Timestamp,
		WasUpdated: updated,
	}
}
