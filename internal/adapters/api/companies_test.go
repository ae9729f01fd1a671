package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// byField answers a procedure from a table keyed by one input field
func byField(field string, table map[string]interface{}) procedureFunc {
	return func(in gjson.Result) (interface{}, int) {
		return table[in.Get(field).String()], http.StatusOK
	}
}

func seedCompanies(f *fakeWarEra) {
	f.on("worker.getWorkers", ok(map[string]interface{}{
		"workersPerCompany": []interface{}{
			map[string]interface{}{
				"company": map[string]interface{}{"_id": "c1", "itemCode": "bread"},
				"workers": []interface{}{
					map[string]interface{}{"user": "w1", "fidelity": 10, "wage": 0.2},
					map[string]interface{}{"user": "w2", "fidelity": 0, "wage": 0.1},
				},
			},
			map[string]interface{}{
				"company": map[string]interface{}{"_id": "c2", "itemCode": "steel"},
				"workers": []interface{}{},
			},
			map[string]interface{}{
				"company": map[string]interface{}{"_id": "c3"},
			},
		},
	}))
	f.on("company.getRecommendedRegionIdsByItemCode", byField("itemCode", map[string]interface{}{
		"bread": []interface{}{map[string]interface{}{"regionId": "r1", "bonus": 15}},
		"steel": []interface{}{map[string]interface{}{"regionId": "r9", "bonus": 99}},
	}))
	f.on("company.getById", byField("companyId", map[string]interface{}{
		"c1": map[string]interface{}{
			"_id": "c1", "name": "Bakery", "itemCode": "bread", "region": "r1",
			"activeUpgradeLevels": map[string]interface{}{"automatedEngine": 9, "storage": 2},
			"production":          12,
		},
		"c2": map[string]interface{}{
			"_id": "c2", "name": "Mill", "itemCode": "steel", "region": "r2", "country": "k0",
		},
		"c3": map[string]interface{}{"_id": "c3", "name": "Empty"},
	}))
	f.on("user.getUserLite", byField("userId", map[string]interface{}{
		"w1": map[string]interface{}{
			"username": "alice",
			"skills": map[string]interface{}{
				"energy":     map[string]interface{}{"level": 5},
				"production": map[string]interface{}{"level": 4},
			},
		},
		"w2": map[string]interface{}{
			"username": "bob",
			"skills":   map[string]interface{}{"energy": map[string]interface{}{"total": 120}},
		},
	}))
	f.onJSON("/regions", []interface{}{
		map[string]interface{}{"_id": "r1", "name": "North", "country": "k1"},
		map[string]interface{}{"_id": "r2", "name": "South", "country": "k1", "deposit": map[string]interface{}{"type": "steel"}},
	})
	f.onJSON("/countries", []interface{}{
		map[string]interface{}{
			"_id": "k1", "name": "Ironland", "specializedItem": "steel",
			"strategicResources": map[string]interface{}{"bonuses": map[string]interface{}{"productionPercent": 25}},
		},
	})
}

func TestCompanyLoader_FetchFacilities(t *testing.T) {
	// Arrange
	f := newFakeWarEra(t)
	seedCompanies(f)
	client, clock := newTestClient(f, 0)
	loader := NewCompanyLoader(client, NewRegionDirectory(client, time.Hour, clock))

	// Act
	facilities, err := loader.FetchFacilities(context.Background(), "me")

	// Assert
	require.NoError(t, err)
	require.Len(t, facilities, 2, "company without a product is skipped")

	bakery := facilities[0]
	assert.Equal(t, "c1", bakery.ID)
	assert.Equal(t, "Bakery", bakery.Name)
	assert.Equal(t, "bread", bakery.OutputItemID)
	assert.Equal(t, 7, bakery.AutomationLevel, "engine level is clamped")
	assert.Equal(t, 2, bakery.StorageLevel)
	assert.Equal(t, 15.0, bakery.ProductionBonus.Value(), "recommended region bonus wins")
	assert.Equal(t, 12.0, bakery.CurrentStock)
	require.Len(t, bakery.Workers, 2)

	alice := bakery.Workers[0]
	assert.Equal(t, "w1", alice.ID())
	assert.Equal(t, "alice", alice.Name())
	assert.Equal(t, 80.0, alice.Energy())
	assert.Equal(t, 22.0, alice.Skill())
	assert.Equal(t, 10.0, alice.Loyalty().Value())
	assert.Equal(t, 0.2, alice.WagePerWorkPoint())

	bob := bakery.Workers[1]
	assert.Equal(t, 120.0, bob.Energy())
	assert.Equal(t, 10.0, bob.Skill())

	mill := facilities[1]
	assert.Equal(t, 1, mill.AutomationLevel)
	assert.Equal(t, 1, mill.StorageLevel)
	assert.Equal(t, 55.0, mill.ProductionBonus.Value(), "default deposit plus country strategic bonus")
	assert.Empty(t, mill.Workers)
}

func TestCompanyLoader_NoCompanies(t *testing.T) {
	f := newFakeWarEra(t)
	f.on("worker.getWorkers", ok(map[string]interface{}{"workersPerCompany": []interface{}{}}))
	client, clock := newTestClient(f, 0)
	loader := NewCompanyLoader(client, NewRegionDirectory(client, time.Hour, clock))

	facilities, err := loader.FetchFacilities(context.Background(), "me")

	require.NoError(t, err)
	assert.Empty(t, facilities)
	assert.Equal(t, 1, f.requestCount(), "region lists are not fetched without companies")
}

func TestRegionDirectory_RefreshesOnlyWhenStale(t *testing.T) {
	// Arrange
	f := newFakeWarEra(t)
	seedCompanies(f)
	client, clock := newTestClient(f, 0)
	dir := NewRegionDirectory(client, time.Hour, clock)

	// Act
	dir.Ensure(context.Background())
	dir.Ensure(context.Background())

	// Assert
	assert.Equal(t, 2, f.requestCount())
	region, ok := dir.Region("r2")
	require.True(t, ok)
	assert.Equal(t, "steel", region.DepositType)
	country, ok := dir.Country("k1")
	require.True(t, ok)
	assert.Equal(t, 25.0, country.StrategicBonus)

	clock.Advance(time.Hour)
	dir.Ensure(context.Background())
	assert.Equal(t, 4, f.requestCount())
}

func TestRegionDirectory_KeepsDataWhenRefreshFails(t *testing.T) {
	f := newFakeWarEra(t)
	seedCompanies(f)
	client, clock := newTestClient(f, 0)
	dir := NewRegionDirectory(client, time.Minute, clock)
	dir.Ensure(context.Background())

	f.dropJSON("/countries")
	clock.Advance(time.Hour)
	dir.Ensure(context.Background())

	_, ok := dir.Region("r1")
	assert.True(t, ok)
}
