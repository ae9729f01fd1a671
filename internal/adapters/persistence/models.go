package persistence

import (
	"time"
)

// PlayerModel represents the players table
// Only the username to id mapping is stored; company data is always fetched fresh from the API
type PlayerModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Username   string    `gorm:"column:username;uniqueIndex;not null"` // lower-cased
	ResolvedAt time.Time `gorm:"column:resolved_at;not null"`
}

func (PlayerModel) TableName() string {
	return "players"
}

// PriceSnapshotModel represents the price_snapshots table
// A single row (id = 1) holds the capture time of the latest scrape
type PriceSnapshotModel struct {
	ID        int       `gorm:"column:id;primaryKey"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
}

func (PriceSnapshotModel) TableName() string {
	return "price_snapshots"
}

// MarketPriceModel represents the market_prices table
// One row per item of the latest snapshot
type MarketPriceModel struct {
	ProductID    string    `gorm:"column:product_id;primaryKey"`
	AveragePrice float64   `gorm:"column:average_price;not null"`
	LastUpdated  time.Time `gorm:"column:last_updated;not null"`
}

func (MarketPriceModel) TableName() string {
	return "market_prices"
}
