package api

import (
	"context"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/warera-economy-go/internal/application/common"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

const (
	// DefaultDepositBonus applies when a region deposit matches but carries no percentage
	DefaultDepositBonus = 30.0
	// DefaultStrategicBonus applies when a country specialises in an item but carries no percentage
	DefaultStrategicBonus = 20.0
)

// Region is the subset of region data used for production bonuses
type Region struct {
	ID           string
	Name         string
	CountryID    string
	DepositType  string
	DepositBonus float64
}

// Country is the subset of country data used for production bonuses
type Country struct {
	ID              string
	Name            string
	SpecializedItem string
	StrategicBonus  float64
}

// RegionDirectory caches the region and country lists with a TTL
type RegionDirectory struct {
	client *Client
	clock  shared.Clock
	ttl    time.Duration

	mu          sync.RWMutex
	regions     map[string]Region
	countries   map[string]Country
	refreshedAt time.Time
}

// NewRegionDirectory creates a lazily refreshed directory
// If clock is nil, uses RealClock
func NewRegionDirectory(client *Client, ttl time.Duration, clock shared.Clock) *RegionDirectory {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RegionDirectory{
		client:    client,
		clock:     clock,
		ttl:       ttl,
		regions:   make(map[string]Region),
		countries: make(map[string]Country),
	}
}

// Ensure refreshes both lists when they are stale or empty.
// A failed refresh keeps the previous data and is only logged.
func (d *RegionDirectory) Ensure(ctx context.Context) {
	d.mu.RLock()
	fresh := len(d.regions) > 0 && d.clock.Now().Sub(d.refreshedAt) < d.ttl
	d.mu.RUnlock()
	if fresh {
		return
	}

	logger := common.LoggerFromContext(ctx)

	var regionsJSON, countriesJSON gjson.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		regionsJSON, err = d.client.GetJSON(gctx, "/regions")
		return err
	})
	g.Go(func() error {
		var err error
		countriesJSON, err = d.client.GetJSON(gctx, "/countries")
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Log("WARNING", "Failed to refresh region directory", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	regions := parseRegions(regionsJSON)
	countries := parseCountries(countriesJSON)

	d.mu.Lock()
	d.regions = regions
	d.countries = countries
	d.refreshedAt = d.clock.Now()
	d.mu.Unlock()

	logger.Log("INFO", "Region directory refreshed", map[string]interface{}{
		"regions":   len(regions),
		"countries": len(countries),
	})
}

// Region returns a region by id
func (d *RegionDirectory) Region(id string) (Region, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.regions[id]
	return r, ok
}

// Country returns a country by id
func (d *RegionDirectory) Country(id string) (Country, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.countries[id]
	return c, ok
}

func parseRegions(list gjson.Result) map[string]Region {
	regions := make(map[string]Region)
	for _, r := range list.Array() {
		id := r.Get("_id").String()
		if id == "" {
			continue
		}
		regions[id] = Region{
			ID:           id,
			Name:         r.Get("name").String(),
			CountryID:    r.Get("country").String(),
			DepositType:  r.Get("deposit.type").String(),
			DepositBonus: r.Get("deposit.bonusPercent").Float(),
		}
	}
	return regions
}

func parseCountries(list gjson.Result) map[string]Country {
	countries := make(map[string]Country)
	for _, c := range list.Array() {
		id := c.Get("_id").String()
		if id == "" {
			continue
		}
		countries[id] = Country{
			ID:              id,
			Name:            c.Get("name").String(),
			SpecializedItem: c.Get("specializedItem").String(),
			StrategicBonus:  c.Get("strategicResources.bonuses.productionPercent").Float(),
		}
	}
	return countries
}
