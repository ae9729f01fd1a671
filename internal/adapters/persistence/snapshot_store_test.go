package persistence_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/test/helpers"
)

func sampleSnapshot() *market.Snapshot {
	return market.NewSnapshot([]market.MarketPrice{
		{ProductID: "bread", AveragePrice: 5.2, LastUpdated: helpers.FixedTime},
		{ProductID: "grain", AveragePrice: 0.8, LastUpdated: helpers.FixedTime},
	}, helpers.FixedTime)
}

// storesUnderTest runs the same contract against both backends
func storesUnderTest(t *testing.T) map[string]market.SnapshotStore {
	return map[string]market.SnapshotStore{
		"file":     persistence.NewFileSnapshotStore(filepath.Join(t.TempDir(), "cache", "market-cache.json")),
		"database": persistence.NewSnapshotRepository(helpers.NewTestDB(t)),
	}
}

func TestSnapshotStore_LoadEmpty(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			// Act
			snapshot, err := store.Load(context.Background())

			// Assert
			require.NoError(t, err)
			assert.Nil(t, snapshot)
		})
	}
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()

			// Act
			require.NoError(t, store.Save(ctx, sampleSnapshot()))
			loaded, err := store.Load(ctx)

			// Assert
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.WithinDuration(t, helpers.FixedTime, loaded.Timestamp, time.Second)

			table, err := loaded.PriceTable()
			require.NoError(t, err)
			price, ok := table.Lookup("bread")
			assert.True(t, ok)
			assert.InDelta(t, 5.2, price, 1e-9)
			assert.Equal(t, 2, table.Len())
		})
	}
}

func TestSnapshotStore_SaveReplacesPrevious(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, sampleSnapshot()))

			later := helpers.FixedTime.Add(2 * time.Hour)
			next := market.NewSnapshot([]market.MarketPrice{
				{ProductID: "steel", AveragePrice: 12, LastUpdated: later},
			}, later)

			// Act
			require.NoError(t, store.Save(ctx, next))
			loaded, err := store.Load(ctx)

			// Assert
			require.NoError(t, err)
			require.Len(t, loaded.Prices, 1)
			assert.Equal(t, "steel", loaded.Prices[0].ProductID)
			assert.WithinDuration(t, later, loaded.Timestamp, time.Second)
		})
	}
}

func TestSnapshotStore_SaveNil(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, store.Save(context.Background(), nil))
		})
	}
}

func TestFileSnapshotStore_CorruptFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "market-cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	store := persistence.NewFileSnapshotStore(path)

	// Act
	_, err := store.Load(context.Background())

	// Assert
	assert.Error(t, err)
}

func TestFileSnapshotStore_WireFormat(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "market-cache.json")
	store := persistence.NewFileSnapshotStore(path)

	// Act
	require.NoError(t, store.Save(context.Background(), sampleSnapshot()))

	// Assert
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"productId": "bread"`)
	assert.Contains(t, string(data), `"averagePrice": 5.2`)
	assert.Contains(t, string(data), `"timestamp"`)
}
