package market

import (
	"context"
)

// SnapshotStore persists the single latest price snapshot.
// Load returns (nil, nil) when nothing has been stored yet.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}

// PriceSource fetches current prices for the given items from upstream
type PriceSource interface {
	FetchPrices(ctx context.Context, itemIDs []string) ([]MarketPrice, error)
}
